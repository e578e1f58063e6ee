package gclass

import (
	"fmt"
	"sync"

	"github.com/cuemby/gobjkernel/pkg/gobjerr"
)

// Registry is the process-wide class table (spec.md §3 "classes":
// mapping class-name → descriptor). Registering the same class twice is
// a no-op; the yuno class may only be registered via RegisterYuno, which
// refuses to run twice.
type Registry struct {
	mu        sync.RWMutex
	classes   map[string]*Class
	yunoClass *Class
}

// NewRegistry builds an empty class registry.
func NewRegistry() *Registry {
	return &Registry{classes: make(map[string]*Class)}
}

// Register adds class to the registry. A second Register call for a
// class of the same name is a silent no-op (spec.md §4.2).
func (r *Registry) Register(class *Class) error {
	if class == nil || !ValidName(class.Name, true) {
		return fmt.Errorf("invalid class: %w", gobjerr.ErrArgument)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.classes[class.Name]; exists {
		return nil
	}
	r.classes[class.Name] = class
	return nil
}

// RegisterYuno registers class as the single yuno class for role. It
// refuses to run a second time in the lifetime of the registry.
func (r *Registry) RegisterYuno(role string, class *Class) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.yunoClass != nil {
		return fmt.Errorf("yuno class already registered: %w", gobjerr.ErrState)
	}
	if class == nil || !ValidName(class.Name, true) {
		return fmt.Errorf("invalid yuno class: %w", gobjerr.ErrArgument)
	}
	r.classes[class.Name] = class
	r.yunoClass = class
	return nil
}

// YunoClass returns the registered yuno class, or nil if none yet.
func (r *Registry) YunoClass() *Class {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.yunoClass
}

// Find looks up a class by name.
func (r *Registry) Find(name string) (*Class, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.classes[name]
	return c, ok
}

// Walk calls f for every registered class, in unspecified order.
func (r *Registry) Walk(f func(*Class)) {
	r.mu.RLock()
	classes := make([]*Class, 0, len(r.classes))
	for _, c := range r.classes {
		classes = append(classes, c)
	}
	r.mu.RUnlock()
	for _, c := range classes {
		f(c)
	}
}
