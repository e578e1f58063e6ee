// Package config loads and resolves the global settings document:
// name-scoped overrides keyed "<class-or-gobj-name>.<attr>" (or
// ".kw" for a nested block), and "${name}"/"__name__"-style variable
// expansion against __json_config_variables__ augmented with the
// process's built-in variables.
package config
