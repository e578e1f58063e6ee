package fsm

import (
	"testing"

	"github.com/cuemby/gobjkernel/pkg/gclass"
	"github.com/cuemby/gobjkernel/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGobj struct {
	class     *gclass.Class
	stateIdx  int
	running   bool
	destroyed bool
	published []types.KW
}

func (f *fakeGobj) Class() *gclass.Class               { return f.class }
func (f *fakeGobj) PrivateData() any                   { return nil }
func (f *fakeGobj) StateIndex() int                    { return f.stateIdx }
func (f *fakeGobj) CommitTransition(idx int, _ string) { f.stateIdx = idx }
func (f *fakeGobj) IsAlive() bool                      { return !f.destroyed }
func (f *fakeGobj) IsRunning() bool                    { return f.running }
func (f *fakeGobj) Name() string                       { return "x" }
func (f *fakeGobj) Publish(event string, kw types.KW) (int, error) {
	f.published = append(f.published, types.KW{"event": event, "kw": kw})
	return 0, nil
}

func twoStateClass() *gclass.Class {
	return &gclass.Class{
		Name: "C",
		FSM: &gclass.FSM{
			States: []gclass.State{
				{Name: "idle", Transitions: []gclass.Transition{
					{Event: "go", NextState: "busy", Action: func(kw types.KW, src string) (types.KW, error) { return kw, nil }},
				}},
				{Name: "busy"},
			},
			InputEvents: []gclass.EventDesc{{Name: "go"}},
		},
	}
}

func TestDispatchCommitsAndPublishesWhenRunning(t *testing.T) {
	g := &fakeGobj{class: twoStateClass(), running: true}
	_, err := Dispatch(g, g, "go", types.KW{}, "")
	require.NoError(t, err)
	assert.Equal(t, 1, g.stateIdx)
	require.Len(t, g.published, 1)
	assert.Equal(t, StateChangedEvent, g.published[0]["event"])
	kw := g.published[0]["kw"].(types.KW)
	assert.Equal(t, "idle", kw["previous_state"])
	assert.Equal(t, "busy", kw["current_state"])
}

func TestDispatchNoPublishWhenNotRunning(t *testing.T) {
	g := &fakeGobj{class: twoStateClass(), running: false}
	_, err := Dispatch(g, g, "go", types.KW{}, "")
	require.NoError(t, err)
	assert.Empty(t, g.published)
}

func TestDispatchUndeclaredEvent(t *testing.T) {
	g := &fakeGobj{class: twoStateClass(), running: true}
	_, err := Dispatch(g, g, "unknown", types.KW{}, "")
	assert.ErrorContains(t, err, "input event not defined")
}

func TestDispatchNotAccepted(t *testing.T) {
	g := &fakeGobj{class: twoStateClass(), running: true, stateIdx: 1} // busy has no transitions
	g.class.FSM.InputEvents = append(g.class.FSM.InputEvents, gclass.EventDesc{Name: "go"})
	_, err := Dispatch(g, g, "go", types.KW{}, "")
	assert.ErrorContains(t, err, "refused")
	assert.Equal(t, 1, g.stateIdx, "state unchanged on refusal")
}

func TestDispatchOnDestroyedReturnsNoGobj(t *testing.T) {
	g := &fakeGobj{class: twoStateClass(), destroyed: true}
	_, err := Dispatch(g, g, "go", types.KW{}, "")
	assert.ErrorContains(t, err, "no gobj")
}

func TestDispatchCaseInsensitive(t *testing.T) {
	g := &fakeGobj{class: twoStateClass(), running: true}
	g.class.FSM.InputEvents[0].Name = "GO"
	_, err := Dispatch(g, g, "go", types.KW{}, "")
	require.NoError(t, err)
	assert.Equal(t, 1, g.stateIdx)
}
