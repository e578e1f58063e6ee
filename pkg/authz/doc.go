// Package authz implements authorization dispatch (C10) and the single
// global authentication callback: user_has_authz parses an
// authorization command with the same positional/kw rules pkg/command
// uses (typing booleans only), then asks a class's on_authz_check hook or a registered global
// checker, defaulting to allowed when neither is configured.
package authz
