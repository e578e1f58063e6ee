package gobj

import "github.com/cuemby/gobjkernel/pkg/attr"

// Gobj implements attr.Delegate so another gobj can point its attribute
// store's bottom chain at it (spec.md §4.3 "Bottom chain").
var _ attr.Delegate = (*Gobj)(nil)

func (g *Gobj) Read(name string) (any, error)        { return g.attrs.Read(name) }
func (g *Gobj) Write(name string, value any) error    { return g.attrs.Write(name, value) }
func (g *Gobj) Has(name string) bool                  { return g.attrs.Has(name) }

// SetBottom points g's attribute delegation at b, per spec.md §4.3
// "set_bottom(g) points one gobj at another". Passing nil clears it.
func (g *Gobj) SetBottom(b *Gobj) {
	g.mu.Lock()
	g.bottom = b
	g.mu.Unlock()
	if b != nil {
		g.attrs.SetBottom(b)
	} else {
		g.attrs.SetBottom(nil)
	}
}
