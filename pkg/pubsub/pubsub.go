// Package pubsub implements the subscription engine (C7, spec.md §4.6):
// subscription records, identity/filter matching, subscribe/unsubscribe,
// and publication traversal with the pre-filter → selection-filter →
// local-key-removal → transform → global-merge pipeline.
//
// It operates against the Endpoint interface rather than the concrete
// pkg/gobj.Gobj type (the same seam pkg/fsm draws against Dispatchable)
// so the engine has no import-cycle dependency on the tree/lifecycle
// layer that owns it.
package pubsub

import (
	"reflect"
	"sync"

	"github.com/cuemby/gobjkernel/pkg/gclass"
	"github.com/cuemby/gobjkernel/pkg/gobjerr"
	"github.com/cuemby/gobjkernel/pkg/log"
	"github.com/cuemby/gobjkernel/pkg/monitor"
	"github.com/cuemby/gobjkernel/pkg/types"
	"github.com/google/uuid"
)

// Endpoint is the publisher/subscriber surface the engine needs.
type Endpoint interface {
	ID() string
	Destroyed() bool
	Class() *gclass.Class
	PrivateData() any
	SendEvent(event string, kw types.KW, src Endpoint) (types.KW, error)
}

// Flag is one bit of a subscription's flag set (spec.md §3).
type Flag uint32

const (
	FlagRenamed Flag = 1 << iota
	FlagHard
	FlagFirstShot
	FlagShareKW
	FlagOwnEvent
)

// Subscription is the joint record linking a publisher and a subscriber
// (spec.md §3 "Subscription record").
type Subscription struct {
	ID           string
	Publisher    Endpoint
	Subscriber   Endpoint
	Event        string // "" means "any"
	RenamedEvent string
	Flags        Flag
	Config       types.KW
	Global       types.KW
	Local        types.KW
	Filter       types.KW
}

func (s *Subscription) has(f Flag) bool { return s.Flags&f == f }

// identityKey is used for the "exactly matches an existing record"
// idempotent-subscribe check (spec.md §4.6 "Subscribe").
func (s *Subscription) identityKey() string {
	return s.Publisher.ID() + "|" + s.Subscriber.ID() + "|" + s.Event
}

func (s *Subscription) identityEqual(other *Subscription) bool {
	return s.identityKey() == other.identityKey() &&
		reflect.DeepEqual(normalize(s.Config), normalize(other.Config)) &&
		reflect.DeepEqual(normalize(s.Global), normalize(other.Global)) &&
		reflect.DeepEqual(normalize(s.Local), normalize(other.Local)) &&
		reflect.DeepEqual(normalize(s.Filter), normalize(other.Filter))
}

func normalize(kw types.KW) types.KW {
	if kw == nil {
		return types.KW{}
	}
	return kw
}

// Engine is the process-wide subscription registry (spec.md §9 "global
// mutable state" grouped into one context). It is the single source of
// truth for subscriptions/subscribings — pkg/gobj.Gobj does not keep its
// own copies, it asks the shared Engine.
type Engine struct {
	mu          sync.Mutex
	byPublisher map[string][]*Subscription
	bySubscriber map[string][]*Subscription
	transforms  map[string]TransformFunc
}

// NewEngine builds an Engine with the builtin "webix" transform registered.
func NewEngine() *Engine {
	e := &Engine{
		byPublisher:  make(map[string][]*Subscription),
		bySubscriber: make(map[string][]*Subscription),
		transforms:   make(map[string]TransformFunc),
	}
	e.RegisterTransform("webix", webixTransform)
	return e
}

// SubscribeOpts carries the optional fields of Subscribe.
type SubscribeOpts struct {
	RenamedEvent string
	Flags        Flag
	Config       types.KW
	Global       types.KW
	Local        types.KW
	Filter       types.KW
}

// Subscribe creates (or idempotently replaces) a subscription of sub to
// pub's event, per spec.md §4.6 "Subscribe". Returns the created record.
func (e *Engine) Subscribe(pub, sub Endpoint, event string, opts SubscribeOpts) (*Subscription, error) {
	if pub == nil || sub == nil {
		return nil, gobjerr.ErrArgument
	}
	if pub.Destroyed() || sub.Destroyed() {
		return nil, gobjerr.ErrNoGobj
	}

	rec := &Subscription{
		ID:           uuid.NewString(),
		Publisher:    pub,
		Subscriber:   sub,
		Event:        event,
		RenamedEvent: opts.RenamedEvent,
		Flags:        opts.Flags,
		Config:       opts.Config,
		Global:       opts.Global,
		Local:        opts.Local,
		Filter:       opts.Filter,
	}
	if rec.RenamedEvent != "" {
		rec.Flags |= FlagRenamed
	}

	e.mu.Lock()
	existingCount := len(e.byPublisher[pub.ID()])
	for _, old := range e.byPublisher[pub.ID()] {
		if old.identityEqual(rec) {
			e.removeLocked(old)
			break
		}
	}
	e.mu.Unlock()

	if pub.Class().Hooks.OnSubscriptionAdded != nil && existingCount == 0 {
		if pub.Class().Hooks.OnSubscriptionAdded(pub.PrivateData()) < 0 {
			return nil, gobjerr.ErrState
		}
	}

	e.mu.Lock()
	e.byPublisher[pub.ID()] = append(e.byPublisher[pub.ID()], rec)
	e.bySubscriber[sub.ID()] = append(e.bySubscriber[sub.ID()], rec)
	e.mu.Unlock()

	return rec, nil
}

// Unsubscribe removes the subscription matching (pub, event, the four
// maps, sub) using the same strict identity match as idempotent
// subscribe. force overrides the hard-subscription protection.
func (e *Engine) Unsubscribe(pub, sub Endpoint, event string, opts SubscribeOpts, force bool) error {
	probe := &Subscription{Publisher: pub, Subscriber: sub, Event: event,
		Config: opts.Config, Global: opts.Global, Local: opts.Local, Filter: opts.Filter}

	e.mu.Lock()
	var found *Subscription
	for _, rec := range e.byPublisher[pub.ID()] {
		if rec.identityEqual(probe) {
			found = rec
			break
		}
	}
	e.mu.Unlock()

	if found == nil {
		return gobjerr.ErrNotFound
	}
	return e.UnsubscribeHandle(found, force)
}

// UnsubscribeHandle removes rec directly, refusing hard subscriptions
// unless force is set.
func (e *Engine) UnsubscribeHandle(rec *Subscription, force bool) error {
	if rec.has(FlagHard) && !force {
		return gobjerr.ErrState
	}
	e.mu.Lock()
	e.removeLocked(rec)
	e.mu.Unlock()

	if rec.Publisher.Class().Hooks.OnSubscriptionDeleted != nil {
		e.mu.Lock()
		remaining := len(e.byPublisher[rec.Publisher.ID()])
		e.mu.Unlock()
		if remaining == 0 {
			rec.Publisher.Class().Hooks.OnSubscriptionDeleted(rec.Publisher.PrivateData())
		}
	}
	return nil
}

// removeLocked deletes rec from both index maps. Caller holds e.mu.
func (e *Engine) removeLocked(rec *Subscription) {
	e.byPublisher[rec.Publisher.ID()] = removeRec(e.byPublisher[rec.Publisher.ID()], rec)
	e.bySubscriber[rec.Subscriber.ID()] = removeRec(e.bySubscriber[rec.Subscriber.ID()], rec)
}

func removeRec(list []*Subscription, rec *Subscription) []*Subscription {
	out := list[:0]
	for _, r := range list {
		if r != rec {
			out = append(out, r)
		}
	}
	return out
}

// DestroyEndpoint tears down every subscription touching e, forcing
// removal of hard subscriptions (spec.md §4.3 "Subscriptions are
// dropped via hard=force unsubscribe").
func (e *Engine) DestroyEndpoint(ep Endpoint) {
	e.mu.Lock()
	var all []*Subscription
	all = append(all, e.byPublisher[ep.ID()]...)
	all = append(all, e.bySubscriber[ep.ID()]...)
	e.mu.Unlock()

	seen := make(map[*Subscription]bool)
	for _, rec := range all {
		if seen[rec] {
			continue
		}
		seen[rec] = true
		_ = e.UnsubscribeHandle(rec, true)
	}
}

// SubscriptionsOf returns the publisher-side list for pub, in insertion order.
func (e *Engine) SubscriptionsOf(pub Endpoint) []*Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Subscription, len(e.byPublisher[pub.ID()]))
	copy(out, e.byPublisher[pub.ID()])
	return out
}

// SubscribingsOf returns the subscriber-side list for sub, in insertion order.
func (e *Engine) SubscribingsOf(sub Endpoint) []*Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Subscription, len(e.bySubscriber[sub.ID()]))
	copy(out, e.bySubscriber[sub.ID()])
	return out
}

// FindSubscriptions returns publisher-side records filtered by the
// non-nil parameters using submatch (spec.md §4.6 "Subscription
// enumeration").
func (e *Engine) FindSubscriptions(pub Endpoint, event *string, kw types.KW, sub Endpoint) []*Subscription {
	var out []*Subscription
	for _, rec := range e.SubscriptionsOf(pub) {
		if event != nil && rec.Event != *event {
			continue
		}
		if sub != nil && rec.Subscriber.ID() != sub.ID() {
			continue
		}
		if kw != nil && !submatch(rec.Filter, kw) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// FindSubscribings returns subscriber-side records filtered the same way.
func (e *Engine) FindSubscribings(sub Endpoint, event *string, kw types.KW, pub Endpoint) []*Subscription {
	var out []*Subscription
	for _, rec := range e.SubscribingsOf(sub) {
		if event != nil && rec.Event != *event {
			continue
		}
		if pub != nil && rec.Publisher.ID() != pub.ID() {
			continue
		}
		if kw != nil && !submatch(rec.Filter, kw) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// submatch is the default kw_match_simple predicate: every entry of
// pattern must appear (recursively, for nested maps) in msg.
func submatch(pattern, msg types.KW) bool {
	for k, want := range pattern {
		got, ok := msg[k]
		if !ok {
			return false
		}
		if wantMap, isMap := asKW(want); isMap {
			gotMap, ok := asKW(got)
			if !ok || !submatch(wantMap, gotMap) {
				return false
			}
			continue
		}
		if !reflect.DeepEqual(want, got) {
			return false
		}
	}
	return true
}

func asKW(v any) (types.KW, bool) {
	switch vv := v.(type) {
	case types.KW:
		return vv, true
	case map[string]any:
		return types.KW(vv), true
	default:
		return nil, false
	}
}

// Publish implements publish(publisher, event, kw) (spec.md §4.6).
func (e *Engine) Publish(pub Endpoint, event string, kw types.KW) (int, error) {
	if pub.Destroyed() {
		return 0, gobjerr.ErrNoGobj
	}

	hooks := pub.Class().Hooks
	if hooks.OnPublishEvent != nil {
		switch r := hooks.OnPublishEvent(pub.PrivateData(), event, kw); {
		case r < 0:
			return 0, nil // own & stop
		case r == 0:
			return 0, nil // continue without default publish
		}
	}

	subs := e.SubscriptionsOf(pub)
	delivered := 0
	total := 0

	for _, rec := range subs {
		if hooks.OnPublicationPreFilter != nil {
			if r := hooks.OnPublicationPreFilter(pub.PrivateData(), event, kw); r < 0 {
				break
			} else if r == 0 {
				continue
			}
		}

		if rec.Subscriber.Destroyed() {
			continue
		}
		if rec.Event != "" && rec.Event != event {
			continue
		}

		deliveredEvent := event
		deliverKW := pickKW(rec, kw)
		if rec.has(FlagRenamed) {
			deliveredEvent = rec.RenamedEvent
			global := normalize(rec.Global).Clone()
			global["__original_event_name__"] = event
			rec.Global = global
		}

		if hooks.OnPublicationFilter != nil {
			r := hooks.OnPublicationFilter(pub.PrivateData(), deliveredEvent, deliverKW)
			if r < 0 {
				break
			} else if r == 0 {
				continue
			}
		} else if rec.Filter != nil && !submatch(rec.Filter, deliverKW) {
			continue
		}

		if inputDesc, ok := eventDescFor(pub.Class(), event); ok && inputDesc.Flags&gclass.EventSystem != 0 {
			if _, declared := rec.Subscriber.Class().FSM.InputEvent(deliveredEvent); !declared {
				continue
			}
		}

		deliverKW.DeleteKeys(keysOf(rec.Local))
		deliverKW = applyTransforms(e, rec, deliverKW)
		deliverKW.Merge(normalize(rec.Global))

		total++
		if _, err := rec.Subscriber.SendEvent(deliveredEvent, deliverKW, pub); err == nil {
			delivered++
		}

		if rec.has(FlagFirstShot) {
			_ = e.UnsubscribeHandle(rec, true)
		}

		if pub.Destroyed() {
			break
		}
	}

	monitor.MonitorEvent("publish", event, pub.ID(), "")
	if total == 0 {
		monitor.MonitorEvent("publish_zero_subscribers", event, pub.ID(), "")
		if desc, ok := eventDescFor(pub.Class(), event); !ok || desc.Flags&gclass.EventNoWarnSubs == 0 {
			log.WithComponent("pubsub").Warn().Str("event", event).Str("publisher", pub.ID()).Msg("publish with zero subscribers")
		}
	}

	return delivered, nil
}

func eventDescFor(c *gclass.Class, event string) (gclass.EventDesc, bool) {
	for _, d := range c.FSM.OutputEvents {
		if d.Name == event {
			return d, true
		}
	}
	return c.FSM.InputEvent(event)
}

func pickKW(rec *Subscription, kw types.KW) types.KW {
	if rec.has(FlagShareKW) {
		return kw
	}
	return kw.Clone()
}

func keysOf(kw types.KW) []string {
	if kw == nil {
		return nil
	}
	out := make([]string, 0, len(kw))
	for k := range kw {
		out = append(out, k)
	}
	return out
}
