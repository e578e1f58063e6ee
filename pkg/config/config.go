// Package config loads the process-wide global settings JSON/YAML and
// resolves name-scoped attribute overrides and variable expansion
// against it (spec.md §5 "Configuration").
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/cuemby/gobjkernel/pkg/gobjerr"
	"github.com/cuemby/gobjkernel/pkg/types"
	"gopkg.in/yaml.v3"
)

// Settings is the parsed global settings document: a flat map whose
// keys may be "<gclass-name-or-gobj-name>.<attr>" or
// "<gclass-name-or-gobj-name>.kw" (a nested block), plus the reserved
// "__json_config_variables__" sub-object.
type Settings struct {
	raw       types.KW
	variables types.KW
}

const variablesKey = "__json_config_variables__"

// Load reads settings from a YAML (or JSON, a YAML subset) file.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}
	return Parse(data)
}

// Parse builds Settings from raw YAML/JSON bytes.
func Parse(data []byte) (*Settings, error) {
	var raw types.KW
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	s := &Settings{raw: raw, variables: types.KW{}}
	if v, ok := raw[variablesKey]; ok {
		if m, ok := v.(types.KW); ok {
			s.variables = m
		} else if m, ok := v.(map[string]any); ok {
			s.variables = types.KW(m)
		}
	}
	return s, nil
}

// BuiltinVars returns the process built-in variables (spec.md §5
// "augmented by built-in process variables"): __hostname__,
// __yuno_role__, __yuno_name__, __realm_id__.
func BuiltinVars(yunoRole, yunoName, realmID string) types.KW {
	host, _ := os.Hostname()
	return types.KW{
		"__hostname__":  host,
		"__yuno_role__": yunoRole,
		"__yuno_name__": yunoName,
		"__realm_id__":  realmID,
	}
}

// ForObject returns the merged config kw applicable to a named object:
// entries keyed "<className>.<attr>"/"<className>.kw" and
// "<gobjName>.<attr>"/"<gobjName>.kw" both apply, gobj-name entries
// taking precedence over class-name entries when both set the same key.
func (s *Settings) ForObject(className, gobjName string, builtins types.KW) types.KW {
	out := make(types.KW)
	s.collectScope(className, out)
	s.collectScope(gobjName, out)
	return s.expandAll(out, builtins)
}

func (s *Settings) collectScope(scope string, out types.KW) {
	if scope == "" {
		return
	}
	prefix := scope + "."
	for k, v := range s.raw {
		if k == variablesKey {
			continue
		}
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		attr := strings.TrimPrefix(k, prefix)
		if attr == "kw" {
			if nested, ok := v.(types.KW); ok {
				for nk, nv := range nested {
					out[nk] = nv
				}
				continue
			}
			if nested, ok := v.(map[string]any); ok {
				for nk, nv := range nested {
					out[nk] = nv
				}
				continue
			}
		}
		out[attr] = v
	}
}

var varRef = regexp.MustCompile(`\$\{([A-Za-z0-9_]+)\}|__[A-Za-z0-9_]+__`)

func (s *Settings) expandAll(kw types.KW, builtins types.KW) types.KW {
	out := make(types.KW, len(kw))
	for k, v := range kw {
		if str, ok := v.(string); ok {
			out[k] = s.expandString(str, builtins)
			continue
		}
		out[k] = v
	}
	return out
}

// expandString resolves ${name} and bare __name__ references against
// the document's __json_config_variables__ block augmented with
// builtins; an unresolved reference is left untouched.
func (s *Settings) expandString(in string, builtins types.KW) string {
	return varRef.ReplaceAllStringFunc(in, func(tok string) string {
		name := tok
		if strings.HasPrefix(tok, "${") {
			name = strings.TrimSuffix(strings.TrimPrefix(tok, "${"), "}")
		}
		if v, ok := builtins[name]; ok {
			return fmt.Sprintf("%v", v)
		}
		if v, ok := s.variables[name]; ok {
			return fmt.Sprintf("%v", v)
		}
		return tok
	})
}

// Get returns a raw top-level key, used for non-scoped process settings.
func (s *Settings) Get(key string) (any, bool) {
	v, ok := s.raw[key]
	return v, ok
}

// MustGetString is a convenience accessor for required string settings.
func (s *Settings) MustGetString(key string) (string, error) {
	v, ok := s.Get(key)
	if !ok {
		return "", fmt.Errorf("config: missing key %q: %w", key, gobjerr.ErrNotFound)
	}
	str, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("config: key %q is not a string: %w", key, gobjerr.ErrArgument)
	}
	return str, nil
}
