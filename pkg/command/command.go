// Package command implements the command dispatcher (C9, spec.md §4.8):
// parsing a text-or-kw command against a class's command schema and
// either invoking a direct handler or redirecting into the FSM engine.
package command

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cuemby/gobjkernel/pkg/gclass"
	"github.com/cuemby/gobjkernel/pkg/gobjerr"
	"github.com/cuemby/gobjkernel/pkg/monitor"
	"github.com/cuemby/gobjkernel/pkg/pubsub"
	"github.com/cuemby/gobjkernel/pkg/schema"
	"github.com/cuemby/gobjkernel/pkg/types"
)

// Target is the gobj surface the dispatcher needs: its class (for the
// command schema) and a way to re-enter the FSM for a redirect.
type Target interface {
	Class() *gclass.Class
	SendEvent(event string, kw types.KW, src pubsub.Endpoint) (types.KW, error)
	Name() string
}

// Pending is returned by Dispatch when the matched entry has no direct
// handler: the command was redirected to an FSM event and the caller
// should treat the response as asynchronous (spec.md §4.8 "the call
// returns pending (null)").
var Pending = types.KW(nil)

// Parse splits a command string into its first token (the command name)
// and the remaining tokens, per spec.md §4.8 step 1.
func Parse(command string) (name string, rest []string) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}

// Dispatch implements command(target, command, kw) (spec.md §4.8).
func Dispatch(target Target, command string, kw types.KW) (types.KW, error) {
	name, tokens := Parse(command)
	if name == "" {
		return nil, fmt.Errorf("command: empty command: %w", gobjerr.ErrArgument)
	}
	schemaDesc := target.Class().Commands
	if schemaDesc == nil {
		return nil, fmt.Errorf("command %q: class %q has no command schema: %w", name, target.Class().Name, gobjerr.ErrNotFound)
	}
	entry, ok := schemaDesc.Find(name)
	if !ok {
		return nil, fmt.Errorf("command %q: not found on class %q: %w", name, target.Class().Name, gobjerr.ErrNotFound)
	}

	cmdKW, err := buildKW(schemaDesc, entry, tokens, kw)
	if err != nil {
		return nil, fmt.Errorf("command %q: %w", name, err)
	}
	monitor.AuditCommand(name, cmdKW)

	if entry.Handler != nil {
		return entry.Handler(cmdKW)
	}

	event := entry.Name
	if len(entry.Alias) > 0 {
		event = entry.Alias[0]
	}
	var noSrc pubsub.Endpoint
	if _, err := target.SendEvent(event, cmdKW, noSrc); err != nil {
		return nil, fmt.Errorf("command %q: redirect to %q: %w", name, event, err)
	}
	return Pending, nil
}

// buildKW implements steps 2-6 of spec.md §4.8: positional consumption
// of required entries, kw/default fallback for the rest, typed parsing
// of remaining key=value tokens, and merge of leftover kw keys.
func buildKW(desc *schema.Desc, matched *schema.Field, tokens []string, kw types.KW) (types.KW, error) {
	out := make(types.KW)
	consumed := make(map[int]bool)
	tokenIdx := 0

	for i := range desc.Fields {
		f := &desc.Fields[i]
		if f.Flags.Has(types.AttrNotAccess) {
			continue
		}
		if f.Flags.Has(types.AttrRequired) {
			if tokenIdx < len(tokens) && !strings.Contains(tokens[tokenIdx], "=") {
				v, err := parseTyped(f.Type, tokens[tokenIdx])
				if err != nil {
					return nil, fmt.Errorf("param %q: %w", f.Name, err)
				}
				out[f.Name] = v
				consumed[tokenIdx] = true
				tokenIdx++
				continue
			}
			if v, ok := kw[f.Name]; ok {
				out[f.Name] = v
				continue
			}
			return nil, fmt.Errorf("missing required param %q: %w", f.Name, gobjerr.ErrArgument)
		}
		if v, ok := kw[f.Name]; ok {
			out[f.Name] = v
		} else {
			out[f.Name] = f.Default
		}
	}

	for i := tokenIdx; i < len(tokens); i++ {
		tok := tokens[i]
		eq := strings.IndexByte(tok, '=')
		if eq < 0 {
			return nil, fmt.Errorf("unconsumed input %q: %w", tok, gobjerr.ErrArgument)
		}
		key, raw := tok[:eq], tok[eq+1:]
		f, ok := desc.Find(key)
		if !ok {
			if matched.Wild {
				out[key] = raw
				continue
			}
			return nil, fmt.Errorf("unknown param %q: %w", key, gobjerr.ErrArgument)
		}
		v, err := parseTyped(f.Type, raw)
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", key, err)
		}
		out[f.Name] = v
	}

	for k, v := range kw {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}

	return out, nil
}

func parseTyped(t types.SemType, raw string) (any, error) {
	switch t {
	case types.TypeJSON:
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("json parse: %w", err)
		}
		return v, nil
	case types.TypeBoolean:
		switch raw {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		default:
			return nil, fmt.Errorf("boolean parse %q: %w", raw, gobjerr.ErrArgument)
		}
	case types.TypeInt32, types.TypeInt64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("int parse %q: %w", raw, gobjerr.ErrArgument)
		}
		return n, nil
	case types.TypeUint32, types.TypeUint64:
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("uint parse %q: %w", raw, gobjerr.ErrArgument)
		}
		return n, nil
	case types.TypeReal:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("float parse %q: %w", raw, gobjerr.ErrArgument)
		}
		return n, nil
	default:
		return raw, nil
	}
}

// Doc renders a textual listing of a class's commands, optionally
// filtered to one command name (spec.md §4.8 "class-wide documentation
// builder").
func Doc(desc *schema.Desc, filter string) string {
	var b strings.Builder
	for _, f := range desc.Fields {
		if filter != "" && !strings.EqualFold(f.Name, filter) {
			continue
		}
		fmt.Fprintf(&b, "%s", f.Name)
		if len(f.Alias) > 0 {
			fmt.Fprintf(&b, " (aka %s)", strings.Join(f.Alias, ", "))
		}
		fmt.Fprintf(&b, " : %s", f.Type)
		if f.Flags.Has(types.AttrRequired) {
			b.WriteString(" [required]")
		}
		if f.Wild {
			b.WriteString(" [wild]")
		}
		if f.Description != "" {
			fmt.Fprintf(&b, " — %s", f.Description)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
