package gobj

import (
	"testing"

	"github.com/cuemby/gobjkernel/pkg/fsm"
	"github.com/cuemby/gobjkernel/pkg/gclass"
	"github.com/cuemby/gobjkernel/pkg/pubsub"
	"github.com/cuemby/gobjkernel/pkg/schema"
	"github.com/cuemby/gobjkernel/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// priv is the per-instance state attached by every test class's on_create.
type priv struct {
	startCount int
	lastKW     types.KW
}

func emptySchema() *schema.Desc { return &schema.Desc{} }

func rootClass(t *testing.T) *gclass.Class {
	t.Helper()
	return &gclass.Class{
		Name:       "root_class",
		AttrSchema: emptySchema(),
		FSM:        &gclass.FSM{States: []gclass.State{{Name: "st0"}}},
		Hooks: gclass.Hooks{
			OnCreate: func(p any, kw types.KW) error { return nil },
			OnStart:  func(p any) error { p.(*priv).startCount++; return nil },
			OnStop:   func(p any) error { return nil },
		},
	}
}

func serviceClass(t *testing.T) *gclass.Class {
	t.Helper()
	return &gclass.Class{
		Name:       "service_class",
		AttrSchema: emptySchema(),
		FSM:        &gclass.FSM{States: []gclass.State{{Name: "st0"}}},
		Hooks: gclass.Hooks{
			OnCreate: func(p any, kw types.KW) error { return nil },
			OnStart:  func(p any) error { p.(*priv).startCount++; return nil },
			OnStop:   func(p any) error { return nil },
		},
	}
}

func TestHierarchicalStartStop(t *testing.T) {
	// S1: classes A (yuno) and B (service); start_tree/stop_tree toggle
	// both running, each on_start ran exactly once.
	rt := New()
	classA := rootClass(t)
	classB := serviceClass(t)
	require.NoError(t, rt.Classes.Register(classA))
	require.NoError(t, rt.Classes.Register(classB))
	require.NoError(t, rt.Classes.RegisterYuno("root", classA))

	rootPriv := &priv{}
	root, err := rt.Create(CreateOpts{Name: "root", Class: classA})
	require.NoError(t, err)
	root.SetPrivateData(rootPriv)

	svcPriv := &priv{}
	svc, err := rt.Create(CreateOpts{Name: "svc", Class: classB, Parent: root, AsService: true})
	require.NoError(t, err)
	svc.SetPrivateData(svcPriv)

	require.NoError(t, StartTree(root))
	assert.True(t, root.Running())
	assert.True(t, svc.Running())
	assert.Equal(t, 1, rootPriv.startCount)
	assert.Equal(t, 1, svcPriv.startCount)

	require.NoError(t, StopTree(root))
	assert.False(t, root.Running())
	assert.False(t, svc.Running())
}

func twoStateClass() *gclass.Class {
	c := &gclass.Class{
		Name:       "c_class",
		AttrSchema: emptySchema(),
		FSM: &gclass.FSM{
			States: []gclass.State{
				{Name: "idle", Transitions: []gclass.Transition{
					{Event: "go", NextState: "busy", Action: func(kw types.KW, src string) (types.KW, error) {
						return types.KW{}, nil
					}},
				}},
				{Name: "busy"},
			},
			InputEvents:  []gclass.EventDesc{{Name: "go"}},
			OutputEvents: []gclass.EventDesc{{Name: fsm.StateChangedEvent, Flags: gclass.EventSystem}},
		},
		Hooks: gclass.Hooks{
			OnCreate: func(p any, kw types.KW) error { return nil },
		},
	}
	return c
}

// observerClass builds a class whose sole input event is state_changed;
// its action records the delivered kw into the closed-over priv, since
// gclass.Action carries no instance handle of its own.
func observerClass(p *priv) *gclass.Class {
	return &gclass.Class{
		Name:       "observer_class",
		AttrSchema: emptySchema(),
		FSM: &gclass.FSM{
			States: []gclass.State{
				{Name: "st0", Transitions: []gclass.Transition{
					{Event: fsm.StateChangedEvent, Action: func(kw types.KW, src string) (types.KW, error) {
						p.lastKW = kw
						return kw, nil
					}},
					{Event: "data"},
				}},
			},
			InputEvents: []gclass.EventDesc{{Name: fsm.StateChangedEvent}, {Name: "data"}},
		},
		Hooks: gclass.Hooks{
			OnCreate: func(p any, kw types.KW) error { return nil },
		},
	}
}

func newYunoRuntime(t *testing.T) (*Runtime, *Gobj) {
	t.Helper()
	rt := New()
	class := rootClass(t)
	require.NoError(t, rt.Classes.Register(class))
	require.NoError(t, rt.Classes.RegisterYuno("root", class))
	root, err := rt.Create(CreateOpts{Name: "root", Class: class})
	require.NoError(t, err)
	root.SetPrivateData(&priv{})
	return rt, root
}

func TestTransitionAndPublish(t *testing.T) {
	// S2: go moves idle -> busy and publishes state_changed while running.
	rt, root := newYunoRuntime(t)
	classC := twoStateClass()
	obsPriv := &priv{}
	classObs := observerClass(obsPriv)
	require.NoError(t, rt.Classes.Register(classC))
	require.NoError(t, rt.Classes.Register(classObs))

	x, err := rt.Create(CreateOpts{Name: "x", Class: classC, Parent: root})
	require.NoError(t, err)
	require.NoError(t, Start(x))

	obs, err := rt.Create(CreateOpts{Name: "obs", Class: classObs, Parent: root})
	require.NoError(t, err)
	obs.SetPrivateData(obsPriv)

	_, err = rt.Pubsub.Subscribe(x, obs, fsm.StateChangedEvent, pubsub.SubscribeOpts{})
	require.NoError(t, err)

	result, err := x.Send("go", types.KW{}, nil)
	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, "busy", x.StateName())
	assert.Equal(t, "idle", x.PrevStateName())

	require.NotNil(t, obsPriv.lastKW)
	assert.Equal(t, "idle", obsPriv.lastKW["previous_state"])
	assert.Equal(t, "busy", obsPriv.lastKW["current_state"])
}

func TestIdempotentSubscribe(t *testing.T) {
	// S5: subscribing twice with identical parameters collapses to one
	// record and fires on_subscription_added exactly once.
	rt, root := newYunoRuntime(t)
	addedCount := 0
	classPub := &gclass.Class{
		Name:       "pub_class",
		AttrSchema: emptySchema(),
		FSM:        &gclass.FSM{States: []gclass.State{{Name: "st0"}}},
		Hooks: gclass.Hooks{
			OnCreate:            func(p any, kw types.KW) error { return nil },
			OnSubscriptionAdded: func(p any) int { addedCount++; return 0 },
		},
	}
	subPriv := &priv{}
	classSub := observerClass(subPriv)
	require.NoError(t, rt.Classes.Register(classPub))
	require.NoError(t, rt.Classes.Register(classSub))

	x, err := rt.Create(CreateOpts{Name: "x", Class: classPub, Parent: root})
	require.NoError(t, err)
	y, err := rt.Create(CreateOpts{Name: "y", Class: classSub, Parent: root})
	require.NoError(t, err)
	y.SetPrivateData(subPriv)

	_, err = rt.Pubsub.Subscribe(x, y, "data", pubsub.SubscribeOpts{})
	require.NoError(t, err)
	_, err = rt.Pubsub.Subscribe(x, y, "data", pubsub.SubscribeOpts{})
	require.NoError(t, err)

	assert.Len(t, rt.Pubsub.SubscriptionsOf(x), 1)
	assert.Equal(t, 1, addedCount)
}

func TestDestroyRemovesFromRegistriesAndParent(t *testing.T) {
	// P1/P3: after destroy, the parent no longer lists the child and the
	// gobj is unreachable via its registries.
	rt, root := newYunoRuntime(t)
	classB := serviceClass(t)
	require.NoError(t, rt.Classes.Register(classB))

	svc, err := rt.Create(CreateOpts{Name: "svc", Class: classB, Parent: root, AsService: true})
	require.NoError(t, err)
	svc.SetPrivateData(&priv{})

	require.NoError(t, Destroy(svc))
	assert.True(t, svc.Destroyed())
	assert.Empty(t, root.Children())
	_, ok := rt.FindService("svc")
	assert.False(t, ok)
}

func TestStartTreeStopTreeSymmetryHonorsDisabled(t *testing.T) {
	// P9: a disabled subtree is skipped by both start_tree and stop_tree.
	rt, root := newYunoRuntime(t)
	classB := serviceClass(t)
	require.NoError(t, rt.Classes.Register(classB))

	svc, err := rt.Create(CreateOpts{Name: "svc", Class: classB, Parent: root, AsService: true, Disabled: true})
	require.NoError(t, err)
	svc.SetPrivateData(&priv{})

	require.NoError(t, StartTree(root))
	assert.True(t, root.Running())
	assert.False(t, svc.Running())

	require.NoError(t, StopTree(root))
	assert.False(t, root.Running())
}
