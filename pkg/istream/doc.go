// Package istream implements the delimiter- and byte-count-mode stream
// reassembler (C13): bytes pushed in via Consume accumulate until a
// frame boundary is found, at which point the owning gobj is sent the
// configured emit event and a fresh buffer takes over.
package istream
