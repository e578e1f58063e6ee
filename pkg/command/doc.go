// Package command implements schema-driven command dispatch (C9): a
// text command line or a pre-parsed kw is matched against a class's
// command schema, typed and defaulted, then either handed to a direct
// handler or redirected into the FSM as an event on the same gobj.
package command
