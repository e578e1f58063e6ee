package gobj

import "strconv"

// ShortName returns the gobj's own name.
func (g *Gobj) ShortName() string { return g.name }

// FullName returns the slash-joined path from the yuno to this gobj,
// cached and invalidated whenever tree topology changes (spec.md §3
// "Derived caches: full-name, short-name, snmp-oid string; invalidated
// when tree topology changes").
func (g *Gobj) FullName() string {
	g.mu.Lock()
	if g.cacheValid {
		defer g.mu.Unlock()
		return g.fullNameCache
	}
	g.mu.Unlock()
	g.rebuildCaches()
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fullNameCache
}

// SnmpOID returns a dotted numeric path built from each ancestor's
// insertion index, in the style of original_source's gobj_snmp_oid.
func (g *Gobj) SnmpOID() string {
	g.mu.Lock()
	if g.cacheValid {
		defer g.mu.Unlock()
		return g.snmpOIDCache
	}
	g.mu.Unlock()
	g.rebuildCaches()
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snmpOIDCache
}

func (g *Gobj) rebuildCaches() {
	full := g.name
	oid := strconv.Itoa(indexInParent(g))
	for p := g.Parent(); p != nil; p = p.Parent() {
		full = p.name + "/" + full
		oid = strconv.Itoa(indexInParent(p)) + "." + oid
	}
	g.mu.Lock()
	g.fullNameCache = full
	g.snmpOIDCache = oid
	g.shortNameCache = g.name
	g.cacheValid = true
	g.mu.Unlock()
}

func indexInParent(g *Gobj) int {
	p := g.Parent()
	if p == nil {
		return 0
	}
	for i, c := range p.Children() {
		if c == g {
			return i
		}
	}
	return -1
}

// invalidateCaches marks this gobj's and every descendant's derived
// name caches stale. Called on reparent (spec.md §3).
func (g *Gobj) invalidateCaches() {
	g.mu.Lock()
	g.cacheValid = false
	kids := append([]*Gobj(nil), g.children...)
	g.mu.Unlock()
	for _, c := range kids {
		c.invalidateCaches()
	}
}
