// Package persist provides the reference attr.Persistence
// implementation backed by go.etcd.io/bbolt, one bucket per unique
// gobj name, values JSON-encoded.
package persist
