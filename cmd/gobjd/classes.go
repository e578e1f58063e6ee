package main

import (
	"fmt"

	"github.com/cuemby/gobjkernel/pkg/gclass"
	"github.com/cuemby/gobjkernel/pkg/schema"
	"github.com/cuemby/gobjkernel/pkg/types"
)

// newSupervisorClass builds the single root (yuno) class. It carries no
// FSM states of its own beyond "ready" — its role is to own the tree,
// not to react to events.
func newSupervisorClass() *gclass.Class {
	return &gclass.Class{
		Name: "supervisor",
		FSM: &gclass.FSM{
			States: []gclass.State{
				{Name: "ready"},
			},
			InputEvents: []gclass.EventDesc{},
		},
		AttrSchema: &schema.Desc{
			Fields: []schema.Field{
				{Name: "realm_id", Type: types.TypeString, Flags: types.AttrReadable | types.AttrWritable},
			},
		},
		Hooks: gclass.Hooks{
			OnCreate: func(priv any, kw types.KW) error { return nil },
		},
	}
}

// newWorkerClass builds the demo service class: a two-state FSM
// (idle/running) driven by "start"/"tick"/"stop" events, a command
// schema redirecting "begin"/"halt" to those same events, and an authz
// schema gating the "halt" command.
func newWorkerClass() *gclass.Class {
	class := &gclass.Class{
		Name: "worker",
		FSM: &gclass.FSM{
			InputEvents: []gclass.EventDesc{
				{Name: "start"},
				{Name: "tick"},
				{Name: "stop"},
			},
			OutputEvents: []gclass.EventDesc{
				{Name: "tick_done"},
			},
			States: []gclass.State{
				{
					Name: "idle",
					Transitions: []gclass.Transition{
						{Event: "start", NextState: "running", Action: actionStart},
					},
				},
				{
					Name: "running",
					Transitions: []gclass.Transition{
						{Event: "tick", Action: actionTick},
						{Event: "stop", NextState: "idle", Action: actionStop},
					},
				},
			},
		},
		AttrSchema: &schema.Desc{
			Fields: []schema.Field{
				{Name: "ticks", Type: types.TypeInt64, Flags: types.AttrReadable | types.AttrStats, Default: int64(0)},
			},
		},
		Commands: &schema.Desc{
			Fields: []schema.Field{
				{Name: "begin", Alias: []string{"start"}},
				{Name: "halt", Alias: []string{"stop"}},
			},
		},
		Authz: &schema.Desc{
			Fields: []schema.Field{
				{Name: "halt"},
			},
		},
		Hooks: gclass.Hooks{
			OnCreate: func(priv any, kw types.KW) error { return nil },
		},
	}
	return class
}

func actionStart(kw types.KW, src string) (types.KW, error) {
	return types.KW{"started_by": src}, nil
}

func actionTick(kw types.KW, src string) (types.KW, error) {
	return types.KW{"ok": true}, nil
}

func actionStop(kw types.KW, src string) (types.KW, error) {
	reason, _ := kw["reason"].(string)
	return types.KW{"stopped_by": src, "reason": fmt.Sprintf("%v", reason)}, nil
}
