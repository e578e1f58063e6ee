package gclass

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func simpleClass(name string) *Class {
	return &Class{
		Name: name,
		FSM: &FSM{
			States:      []State{{Name: "idle"}},
			InputEvents: nil,
		},
	}
}

func TestRegisterIsIdempotent(t *testing.T) {
	r := NewRegistry()
	c := simpleClass("door")
	require.NoError(t, r.Register(c))
	require.NoError(t, r.Register(c))
	got, ok := r.Find("door")
	assert.True(t, ok)
	assert.Same(t, c, got)
}

func TestRegisterRejectsBadName(t *testing.T) {
	r := NewRegistry()
	err := r.Register(simpleClass("bad.name"))
	assert.ErrorContains(t, err, "invalid class")
	err = r.Register(simpleClass("bad`name"))
	assert.Error(t, err)
}

func TestYunoClassRegisteredOnce(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterYuno("test_role", simpleClass("yuno")))
	err := r.RegisterYuno("test_role", simpleClass("yuno2"))
	assert.ErrorContains(t, err, "already registered")
}

func TestFSMValidateCatchesUnknownNextState(t *testing.T) {
	fsm := &FSM{
		States: []State{
			{Name: "idle", Transitions: []Transition{{Event: "go", NextState: "missing"}}},
		},
		InputEvents: []EventDesc{{Name: "go"}},
	}
	err := fsm.Validate()
	assert.ErrorContains(t, err, "unknown next_state")
}

func TestFSMValidateCatchesUndeclaredEvent(t *testing.T) {
	fsm := &FSM{
		States:      []State{{Name: "idle", Transitions: []Transition{{Event: "go"}}}},
		InputEvents: nil,
	}
	err := fsm.Validate()
	assert.ErrorContains(t, err, "not declared as input event")
}
