package pubsub

import (
	"testing"

	"github.com/cuemby/gobjkernel/pkg/gclass"
	"github.com/cuemby/gobjkernel/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEP struct {
	id        string
	class     *gclass.Class
	destroyed bool
	received  []types.KW
}

func newFakeEP(id string) *fakeEP {
	return &fakeEP{id: id, class: &gclass.Class{Name: id, FSM: &gclass.FSM{}}}
}

func (f *fakeEP) ID() string          { return f.id }
func (f *fakeEP) Destroyed() bool     { return f.destroyed }
func (f *fakeEP) Class() *gclass.Class { return f.class }
func (f *fakeEP) PrivateData() any    { return nil }
func (f *fakeEP) SendEvent(event string, kw types.KW, src Endpoint) (types.KW, error) {
	f.received = append(f.received, types.KW{"__event__": event, "kw": kw})
	return nil, nil
}

func TestSubscribeIdempotent(t *testing.T) {
	e := NewEngine()
	x, y := newFakeEP("x"), newFakeEP("y")
	_, err := e.Subscribe(x, y, "data", SubscribeOpts{})
	require.NoError(t, err)
	_, err = e.Subscribe(x, y, "data", SubscribeOpts{})
	require.NoError(t, err)
	assert.Len(t, e.SubscriptionsOf(x), 1)
}

func TestPublishFilterSelectsRecipients(t *testing.T) {
	e := NewEngine()
	x, y := newFakeEP("x"), newFakeEP("y")
	_, err := e.Subscribe(x, y, "data", SubscribeOpts{Filter: types.KW{"kind": "alert"}})
	require.NoError(t, err)

	_, _ = e.Publish(x, "data", types.KW{"kind": "info"})
	assert.Empty(t, y.received)

	_, _ = e.Publish(x, "data", types.KW{"kind": "alert", "value": 1})
	require.Len(t, y.received, 1)
	kw := y.received[0]["kw"].(types.KW)
	assert.Equal(t, "alert", kw["kind"])
	assert.Equal(t, 1, kw["value"])
}

func TestPublishRename(t *testing.T) {
	e := NewEngine()
	x, y := newFakeEP("x"), newFakeEP("y")
	_, err := e.Subscribe(x, y, "raw", SubscribeOpts{RenamedEvent: "cooked"})
	require.NoError(t, err)

	_, _ = e.Publish(x, "raw", types.KW{"n": 1})
	require.Len(t, y.received, 1)
	assert.Equal(t, "cooked", y.received[0]["__event__"])
	kw := y.received[0]["kw"].(types.KW)
	assert.Equal(t, "raw", kw["__original_event_name__"])
}

func TestUnsubscribeHardRequiresForce(t *testing.T) {
	e := NewEngine()
	x, y := newFakeEP("x"), newFakeEP("y")
	_, err := e.Subscribe(x, y, "data", SubscribeOpts{Flags: FlagHard})
	require.NoError(t, err)

	err = e.Unsubscribe(x, y, "data", SubscribeOpts{}, false)
	assert.Error(t, err)
	assert.Len(t, e.SubscriptionsOf(x), 1)

	err = e.Unsubscribe(x, y, "data", SubscribeOpts{}, true)
	require.NoError(t, err)
	assert.Empty(t, e.SubscriptionsOf(x))
}

func TestDestroyEndpointTearsDownBothSides(t *testing.T) {
	e := NewEngine()
	x, y := newFakeEP("x"), newFakeEP("y")
	_, err := e.Subscribe(x, y, "data", SubscribeOpts{})
	require.NoError(t, err)

	e.DestroyEndpoint(y)
	assert.Empty(t, e.SubscriptionsOf(x))
	assert.Empty(t, e.SubscribingsOf(y))
}

func TestShareKWDeliversSameReference(t *testing.T) {
	e := NewEngine()
	x, y, z := newFakeEP("x"), newFakeEP("y"), newFakeEP("z")
	_, err := e.Subscribe(x, y, "data", SubscribeOpts{Flags: FlagShareKW})
	require.NoError(t, err)
	_, err = e.Subscribe(x, z, "data", SubscribeOpts{})
	require.NoError(t, err)

	kw := types.KW{"n": 1}
	_, _ = e.Publish(x, "data", kw)

	yKW := y.received[0]["kw"].(types.KW)
	zKW := z.received[0]["kw"].(types.KW)
	yKW["mutated"] = true
	_, sharedMutated := kw["mutated"]
	assert.True(t, sharedMutated, "share_kw subscriber should see the original map")
	_, clonedMutated := zKW["mutated"]
	assert.False(t, clonedMutated, "non-shared subscriber should have its own clone")
}

func TestWebixTransform(t *testing.T) {
	e := NewEngine()
	x, y := newFakeEP("x"), newFakeEP("y")
	_, err := e.Subscribe(x, y, "data", SubscribeOpts{Config: types.KW{"__trans_filter__": "webix"}})
	require.NoError(t, err)

	_, _ = e.Publish(x, "data", types.KW{"n": 1})
	kw := y.received[0]["kw"].(types.KW)
	assert.Equal(t, 0, kw["result"])
	data := kw["data"].(types.KW)
	assert.Equal(t, 1, data["n"])
}
