// Package comms works out which units share a communications network and
// can pass targeting data to each other.
package comms

import (
	"github.com/hexline/server/internal/world"
)

// Units is the live unit source.
type Units interface {
	Snapshot() []world.Unit
}

// SideFunc reports whether two units fight on the same side.
type SideFunc func(a, b world.Unit) bool

// SameOwner is the default SideFunc.
func SameOwner(a, b world.Unit) bool { return a.OwnerID() == b.OwnerID() }

// Family is the kind of network computer a unit carries.
type Family int

const (
	FamilyNone Family = iota
	// FamilyC3 is the master/slave hierarchy.
	FamilyC3
	// FamilyC3i is the peer network sharing a named network id.
	FamilyC3i
	FamilyNova
)

// FamilyOf returns the network family of u.
func FamilyOf(u world.Unit) Family {
	switch {
	case u.Has(world.CapC3i):
		return FamilyC3i
	case u.Has(world.CapNovaCEWS):
		return FamilyNova
	case u.Has(world.CapC3Master), u.Has(world.CapC3Slave), u.Has(world.CapC3Hub):
		return FamilyC3
	}
	return FamilyNone
}

// Resolver answers network membership queries over the live units. Each
// query walks a point-in-time snapshot, so it is O(n) per hop and never
// caches.
type Resolver struct {
	units    Units
	sameSide SideFunc
}

// NewResolver returns a resolver; a nil sameSide means SameOwner.
func NewResolver(units Units, sameSide SideFunc) *Resolver {
	if sameSide == nil {
		sameSide = SameOwner
	}
	return &Resolver{units: units, sameSide: sameSide}
}

// Linked is the raw pairwise predicate: both units are up, on the same side,
// carry the same computer family, and either share a named network id or are
// directly joined by a master link. It is symmetric but not transitive.
func (r *Resolver) Linked(a, b world.Unit) bool {
	if a.ID() == b.ID() || !a.Active() || !b.Active() || !r.sameSide(a, b) {
		return false
	}
	fa := FamilyOf(a)
	if fa == FamilyNone || fa != FamilyOf(b) {
		return false
	}
	if a.NetworkID() != "" && a.NetworkID() == b.NetworkID() {
		return true
	}
	return fa == FamilyC3 && (a.MasterID() == b.ID() || b.MasterID() == a.ID())
}

// MembersOf returns u followed by every unit reachable from it through
// Linked, in collection order.
func (r *Resolver) MembersOf(u world.Unit) []world.Unit {
	if u == nil {
		return nil
	}
	units := r.units.Snapshot()
	in := map[int]bool{u.ID(): true}
	queue := []world.Unit{u}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, other := range units {
			if !in[other.ID()] && r.Linked(cur, other) {
				in[other.ID()] = true
				queue = append(queue, other)
			}
		}
	}

	members := []world.Unit{u}
	for _, other := range units {
		if other.ID() != u.ID() && in[other.ID()] {
			members = append(members, other)
		}
	}
	return members
}

// IsRoot reports whether u heads its hierarchy: a master with no master of
// its own.
func IsRoot(u world.Unit) bool {
	m := u.MasterID()
	return u.Has(world.CapC3Master) && (m == world.NoUnit || m == u.ID())
}

// SubordinatesOf returns the units u commands. Hubs and roots command their
// whole network; any other unit only its direct slaves.
func (r *Resolver) SubordinatesOf(u world.Unit) []world.Unit {
	if u == nil {
		return nil
	}
	if u.Has(world.CapC3Hub) || IsRoot(u) {
		return r.MembersOf(u)
	}
	var out []world.Unit
	for _, other := range r.units.Snapshot() {
		if other.ID() != u.ID() && other.MasterID() == u.ID() && !other.Destroyed() {
			out = append(out, other)
		}
	}
	return out
}

// OnSameNetwork reports whether a and b belong to one network.
func (r *Resolver) OnSameNetwork(a, b world.Unit) bool {
	for _, m := range r.MembersOf(a) {
		if m.ID() == b.ID() {
			return a.ID() != b.ID() || FamilyOf(a) != FamilyNone
		}
	}
	return false
}
