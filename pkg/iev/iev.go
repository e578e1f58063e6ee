// Package iev implements the inter-event wire codec (C12): turning an
// event name and kw into a JSON envelope, and that envelope to and from
// a byte buffer suitable for a socket or queue transport.
package iev

import (
	"encoding/json"
	"fmt"

	"github.com/cuemby/gobjkernel/pkg/gobjerr"
	"github.com/cuemby/gobjkernel/pkg/types"
)

// MaxEventNameBytes bounds the event name carried in an envelope
// (spec.md §4.12 "The event name is bounded to 63 bytes").
const MaxEventNameBytes = 63

// Envelope is the neutral wire shape of one inter-event.
type Envelope struct {
	Event string `json:"event"`
	KW    types.KW `json:"kw"`
}

// Create builds an envelope from an event name and kw, dropping any
// top-level value that neutralize does not keep (binary handles,
// channels, funcs, and map or slice types other than types.KW and
// []any); strings, numbers, bools, nulls, types.KW maps and []any slices
// survive onto the wire (spec.md §4.12 "binary handles removed; strings
// and numbers preserved").
func Create(event string, kw types.KW) (Envelope, error) {
	if len(event) > MaxEventNameBytes {
		return Envelope{}, fmt.Errorf("iev_create: event name %q exceeds %d bytes: %w", event, MaxEventNameBytes, gobjerr.ErrArgument)
	}
	return Envelope{Event: event, KW: neutralize(kw)}, nil
}

// ToBuffer serializes an envelope to bytes.
func ToBuffer(env Envelope) ([]byte, error) {
	b, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("iev_to_buffer: %w", err)
	}
	return b, nil
}

// FromBuffer parses bytes back into an event name and kw.
func FromBuffer(buf []byte) (event string, kw types.KW, err error) {
	var env Envelope
	if err := json.Unmarshal(buf, &env); err != nil {
		return "", nil, fmt.Errorf("iev_from_buffer: %w", err)
	}
	if len(env.Event) > MaxEventNameBytes {
		return "", nil, fmt.Errorf("iev_from_buffer: event name %q exceeds %d bytes: %w", env.Event, MaxEventNameBytes, gobjerr.ErrArgument)
	}
	return env.Event, env.KW, nil
}

// neutralize drops values that do not have a stable JSON shape —
// funcs, channels, and other gobj-internal handles — leaving strings,
// numbers, bools, nulls, types.KW maps and []any slices intact. Only
// top-level values are checked; any other map or slice type (a plain
// map[string]any, a []string) is dropped as well.
func neutralize(kw types.KW) types.KW {
	if kw == nil {
		return types.KW{}
	}
	out := make(types.KW, len(kw))
	for k, v := range kw {
		if neutral(v) {
			out[k] = v
		}
	}
	return out
}

func neutral(v any) bool {
	switch v.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64,
		nil:
		return true
	case types.KW:
		return true
	case []any:
		return true
	default:
		return false
	}
}
