// Package authz implements authorization and authentication dispatch
// (C10): the same schema-driven shape as pkg/command, keyed on a global
// or per-class authorization schema, with pluggable checkers and a
// documented default-allow fallback.
package authz

import (
	"fmt"
	"os/user"
	"strings"
	"sync"

	"github.com/cuemby/gobjkernel/pkg/command"
	"github.com/cuemby/gobjkernel/pkg/gclass"
	"github.com/cuemby/gobjkernel/pkg/gobjerr"
	"github.com/cuemby/gobjkernel/pkg/monitor"
	"github.com/cuemby/gobjkernel/pkg/pubsub"
	"github.com/cuemby/gobjkernel/pkg/schema"
	"github.com/cuemby/gobjkernel/pkg/types"
)

// Target is the gobj surface the dispatcher needs.
type Target interface {
	Class() *gclass.Class
	PrivateData() any
	Name() string
}

// Checker decides whether kw satisfies authzName for the calling src.
// A Checker returning (allowed, handled=false) defers to the default
// answer (allowed); handled=true makes its allowed value the answer.
type Checker func(target Target, authzName string, kw types.KW, src pubsub.Endpoint) (allowed bool, handled bool)

// Identity is the result of an authentication attempt.
type Identity struct {
	User   string
	Source string // "os" when returned by the default OS-identity fallback
}

var (
	mu               sync.RWMutex
	globalChecker    Checker
	authenticateFunc func(kw types.KW) (Identity, error)
)

// RegisterGlobalChecker installs the process-wide authz checker
// consulted when a class declares no on_authz_check hook (spec.md §4.9
// "a global authz checker may be registered").
func RegisterGlobalChecker(c Checker) {
	mu.Lock()
	defer mu.Unlock()
	globalChecker = c
}

// RegisterAuthenticateParser installs the single global authenticate
// callback (spec.md §4.9 "Authentication shares the same pluggability:
// a single global authenticate_parser callback").
func RegisterAuthenticateParser(f func(kw types.KW) (Identity, error)) {
	mu.Lock()
	defer mu.Unlock()
	authenticateFunc = f
}

// Authenticate runs the registered authenticate_parser, or, absent one,
// returns a success carrying the OS user identity.
func Authenticate(kw types.KW) (Identity, error) {
	mu.RLock()
	f := authenticateFunc
	mu.RUnlock()
	if f != nil {
		return f(kw)
	}
	u, err := user.Current()
	if err != nil {
		return Identity{}, fmt.Errorf("authenticate: os identity: %w", err)
	}
	return Identity{User: u.Username, Source: "os"}, nil
}

// UserHasAuthz implements user_has_authz(gobj, authz, kw, src): it
// parses the authz command with the same positional/kw rules as
// pkg/command (only boolean params are typed; every other type is kept
// as the raw string token), then
// asks the class's on_authz_check hook or, absent one, the registered
// global checker. With neither present the default answer is allowed
// — intentional, documented local-only behavior (spec.md §4.9).
func UserHasAuthz(target Target, authzCommand string, kw types.KW, src pubsub.Endpoint) (bool, error) {
	name, tokens := command.Parse(authzCommand)
	if name == "" {
		return false, fmt.Errorf("authz: empty authorization name: %w", gobjerr.ErrArgument)
	}
	desc := target.Class().Authz
	if desc == nil {
		return defaultAnswer(target, name, kw, src), nil
	}
	entry, ok := desc.Find(name)
	if !ok {
		return false, fmt.Errorf("authz %q: not found on class %q: %w", name, target.Class().Name, gobjerr.ErrNotFound)
	}

	authzKW, err := buildKW(desc, entry, tokens, kw)
	if err != nil {
		return false, fmt.Errorf("authz %q: %w", name, err)
	}

	srcID := ""
	if src != nil {
		srcID = src.ID()
	}
	var allowed bool
	if target.Class().Hooks.OnAuthzCheck != nil {
		allowed = target.Class().Hooks.OnAuthzCheck(target.PrivateData(), name, authzKW, srcID)
	} else {
		allowed = defaultAnswer(target, name, authzKW, src)
	}
	monitor.AuditCommand("authz:"+name, authzKW)
	return allowed, nil
}

func defaultAnswer(target Target, authzName string, kw types.KW, src pubsub.Endpoint) bool {
	mu.RLock()
	checker := globalChecker
	mu.RUnlock()
	if checker != nil {
		if allowed, handled := checker(target, authzName, kw, src); handled {
			return allowed
		}
	}
	return true
}

// buildKW mirrors command.buildKW's positional/kw merge, kept local so
// pkg/authz has no compile-time dependency on pkg/command's unexported
// helpers. Its parseTyped converts booleans only; json and numeric
// params are not parsed and stay raw strings.
func buildKW(desc *schema.Desc, matched *schema.Field, tokens []string, kw types.KW) (types.KW, error) {
	out := make(types.KW)
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
	case types.TypeBoolean:
		switch raw {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		default:
			return nil, fmt.Errorf("boolean parse %q: %w", raw, gobjerr.ErrArgument)
		}
	default:
		return raw, nil
	}
}
