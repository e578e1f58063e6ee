// Package istream implements the stream reassembler (C13): a growable
// buffer attached to a consumer gobj that fires an emit event once a
// delimiter is seen or a target byte count is reached.
package istream

import (
	"bytes"
	"fmt"

	"github.com/cuemby/gobjkernel/pkg/gobjerr"
	"github.com/cuemby/gobjkernel/pkg/pubsub"
	"github.com/cuemby/gobjkernel/pkg/types"
)

// Consumer is the gobj surface a reassembler sends its emit event to.
type Consumer interface {
	SendEvent(event string, kw types.KW, src pubsub.Endpoint) (types.KW, error)
}

// Reassembler accumulates bytes and fires EmitEvent on its owner when a
// frame boundary is reached (spec.md §4.13).
type Reassembler struct {
	owner     Consumer
	emitEvent string

	delimiter []byte
	byteCount int // 0 when operating in delimiter mode

	buf bytes.Buffer
}

// NewDelimited configures a reassembler in delimiter mode: after every
// append, the tail of the buffer is checked against delimiter.
func NewDelimited(owner Consumer, delimiter []byte, emitEvent string) (*Reassembler, error) {
	if len(delimiter) == 0 {
		return nil, fmt.Errorf("istream: empty delimiter: %w", gobjerr.ErrArgument)
	}
	if emitEvent == "" {
		return nil, fmt.Errorf("istream: empty emit event: %w", gobjerr.ErrArgument)
	}
	return &Reassembler{owner: owner, delimiter: delimiter, emitEvent: emitEvent}, nil
}

// NewCounted configures a reassembler in byte-count mode: it fires as
// soon as the buffer reaches byteCount bytes.
func NewCounted(owner Consumer, byteCount int, emitEvent string) (*Reassembler, error) {
	if byteCount <= 0 {
		return nil, fmt.Errorf("istream: non-positive byte_count: %w", gobjerr.ErrArgument)
	}
	if emitEvent == "" {
		return nil, fmt.Errorf("istream: empty emit event: %w", gobjerr.ErrArgument)
	}
	return &Reassembler{owner: owner, byteCount: byteCount, emitEvent: emitEvent}, nil
}

// Consume appends data to the internal buffer and fires the emit event
// for every complete frame found, repeatedly, since one Consume call
// may carry more than one frame's worth of bytes.
func (r *Reassembler) Consume(data []byte) error {
	r.buf.Write(data)
	for {
		fired, err := r.tryFire()
		if err != nil {
			return err
		}
		if !fired {
			return nil
		}
	}
}

func (r *Reassembler) tryFire() (bool, error) {
	if r.delimiter != nil {
		content := r.buf.Bytes()
		idx := bytes.Index(content, r.delimiter)
		if idx < 0 {
			return false, nil
		}
		frame := append([]byte(nil), content[:idx]...)
		rest := append([]byte(nil), content[idx+len(r.delimiter):]...)
		r.buf.Reset()
		r.buf.Write(rest)
		return true, r.emit(frame)
	}

	if r.buf.Len() < r.byteCount {
		return false, nil
	}
	content := r.buf.Bytes()
	frame := append([]byte(nil), content[:r.byteCount]...)
	rest := append([]byte(nil), content[r.byteCount:]...)
	r.buf.Reset()
	r.buf.Write(rest)
	return true, r.emit(frame)
}

func (r *Reassembler) emit(frame []byte) error {
	var noSrc pubsub.Endpoint
	_, err := r.owner.SendEvent(r.emitEvent, types.KW{"frame": frame}, noSrc)
	if err != nil {
		return fmt.Errorf("istream: emit %q: %w", r.emitEvent, err)
	}
	return nil
}

// Pending reports the number of bytes currently buffered, awaiting a
// frame boundary.
func (r *Reassembler) Pending() int { return r.buf.Len() }

// Reset discards any buffered bytes, used when a connection resets and
// partial frames should not carry over.
func (r *Reassembler) Reset() { r.buf.Reset() }
