package command

import (
	"testing"

	"github.com/cuemby/gobjkernel/pkg/gclass"
	"github.com/cuemby/gobjkernel/pkg/pubsub"
	"github.com/cuemby/gobjkernel/pkg/schema"
	"github.com/cuemby/gobjkernel/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTarget struct {
	class     *gclass.Class
	lastEvent string
	lastKW    types.KW
}

func (f *fakeTarget) Class() *gclass.Class { return f.class }
func (f *fakeTarget) Name() string         { return "fake" }
func (f *fakeTarget) SendEvent(event string, kw types.KW, src pubsub.Endpoint) (types.KW, error) {
	f.lastEvent = event
	f.lastKW = kw
	return types.KW{}, nil
}

func TestDispatchDirectHandler(t *testing.T) {
	var handled types.KW
	desc := &schema.Desc{Fields: []schema.Field{
		{Name: "greet", Type: types.TypeString, Flags: types.AttrRequired,
			Handler: func(kw types.KW) (types.KW, error) { handled = kw; return types.KW{"ok": true}, nil }},
	}}
	target := &fakeTarget{class: &gclass.Class{Name: "c", Commands: desc}}

	result, err := Dispatch(target, "greet world", nil)
	require.NoError(t, err)
	assert.Equal(t, types.KW{"ok": true}, result)
	assert.Equal(t, "world", handled["greet"])
}

func TestDispatchRedirect(t *testing.T) {
	// S6: a schema entry with no direct handler and an alias redirects
	// through send_event and reports pending.
	desc := &schema.Desc{Fields: []schema.Field{
		{Name: "poke", Type: types.TypeString, Alias: []string{"poke_event"}},
	}}
	target := &fakeTarget{class: &gclass.Class{Name: "c", Commands: desc}}

	result, err := Dispatch(target, "poke", types.KW{"n": 1})
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, "poke_event", target.lastEvent)
	assert.Equal(t, 1, target.lastKW["n"])
}

func TestDispatchMissingRequired(t *testing.T) {
	desc := &schema.Desc{Fields: []schema.Field{
		{Name: "greet", Type: types.TypeString, Flags: types.AttrRequired},
	}}
	target := &fakeTarget{class: &gclass.Class{Name: "c", Commands: desc}}

	_, err := Dispatch(target, "greet", nil)
	assert.Error(t, err)
}

func TestDispatchTypedKeyValue(t *testing.T) {
	var handled types.KW
	desc := &schema.Desc{Fields: []schema.Field{
		{Name: "set", Type: types.TypeString, Flags: types.AttrRequired,
			Handler: func(kw types.KW) (types.KW, error) { handled = kw; return nil, nil }},
		{Name: "count", Type: types.TypeInt64},
	}}
	target := &fakeTarget{class: &gclass.Class{Name: "c", Commands: desc}}

	_, err := Dispatch(target, "set thing count=3", nil)
	require.NoError(t, err)
	assert.Equal(t, "thing", handled["set"])
	assert.Equal(t, int64(3), handled["count"])
}

func TestDispatchUnknownCommand(t *testing.T) {
	desc := &schema.Desc{}
	target := &fakeTarget{class: &gclass.Class{Name: "c", Commands: desc}}
	_, err := Dispatch(target, "nope", nil)
	assert.Error(t, err)
}
