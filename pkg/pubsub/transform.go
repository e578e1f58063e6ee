package pubsub

import (
	"github.com/cuemby/gobjkernel/pkg/log"
	"github.com/cuemby/gobjkernel/pkg/types"
)

// TransformFunc is a named kw → kw' function applied during publication
// (spec.md §4.10 "Transformation filter").
type TransformFunc func(types.KW) types.KW

// RegisterTransform adds fn to the process-wide transform table under name.
func (e *Engine) RegisterTransform(name string, fn TransformFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transforms[name] = fn
}

// applyTransforms runs the subscription's __config__.__trans_filter__
// entries, in order, against kw. __trans_filter__ may be a string, an
// ordered []string, or a map whose keys name filters applied in
// unspecified (map) order — spec.md §4.10.
func applyTransforms(e *Engine, rec *Subscription, kw types.KW) types.KW {
	if rec.Config == nil {
		return kw
	}
	raw, ok := rec.Config["__trans_filter__"]
	if !ok {
		return kw
	}

	names := transformNames(raw)
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, name := range names {
		fn, ok := e.transforms[name]
		if !ok {
			log.WithComponent("pubsub").Error().Str("transform", name).Msg("unknown transformation filter")
			continue
		}
		kw = fn(kw)
	}
	return kw
}

func transformNames(raw any) []string {
	switch v := raw.(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case types.KW:
		out := make([]string, 0, len(v))
		for k := range v {
			out = append(out, k)
		}
		return out
	case map[string]any:
		out := make([]string, 0, len(v))
		for k := range v {
			out = append(out, k)
		}
		return out
	default:
		return nil
	}
}

// webixTransform wraps kw in the webix envelope shape used by commands
// and stats (spec.md §4.10, GLOSSARY "Webix envelope").
func webixTransform(kw types.KW) types.KW {
	return types.KW{
		"result":  0,
		"comment": "",
		"schema":  nil,
		"data":    kw,
	}
}
