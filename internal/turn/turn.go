package turn

import (
	"fmt"

	"github.com/hexline/server/internal/phase"
	"github.com/hexline/server/internal/world"
)

// AnyPlayer marks a turn that is not bound to a single player.
const AnyPlayer = -1

// View is what a turn needs to judge a unit.
type View interface {
	Phase() phase.Phase
	Get(id int) world.Unit
}

// Turn selects which units may act next.
type Turn interface {
	// PlayerID is the player who acts, or AnyPlayer.
	PlayerID() int
	// Claims reports whether u is the kind of unit this turn is for,
	// regardless of whether it can still act.
	Claims(u world.Unit) bool
	// ValidUnit reports whether u may act on this turn right now.
	ValidUnit(u world.Unit, v View) bool
	String() string
}

func selectable(u world.Unit, v View) bool {
	return u.EligibleFor(v.Phase()) && !u.Done()
}

// PlayerTurn lets the player act with any of their units.
type PlayerTurn struct {
	Player int
}

func (t PlayerTurn) PlayerID() int            { return t.Player }
func (t PlayerTurn) Claims(u world.Unit) bool { return u.OwnerID() == t.Player }
func (t PlayerTurn) ValidUnit(u world.Unit, v View) bool {
	return t.Claims(u) && selectable(u, v)
}

func (t PlayerTurn) String() string { return fmt.Sprintf("player %d", t.Player) }

// UnitTurn is reserved for one unit.
type UnitTurn struct {
	Player int
	Unit   int
}

func (t UnitTurn) PlayerID() int            { return t.Player }
func (t UnitTurn) Claims(u world.Unit) bool { return u.ID() == t.Unit }
func (t UnitTurn) ValidUnit(u world.Unit, v View) bool {
	return t.Claims(u) && selectable(u, v)
}

func (t UnitTurn) String() string { return fmt.Sprintf("unit %d (player %d)", t.Unit, t.Player) }

// KindMask is a set of unit kinds.
type KindMask uint16

// MaskOf builds a mask from kinds.
func MaskOf(kinds ...world.Kind) KindMask {
	var m KindMask
	for _, k := range kinds {
		m |= 1 << k
	}
	return m
}

// AllKinds matches every unit kind.
const AllKinds KindMask = 1<<16 - 1

// Has reports whether k is in the mask.
func (m KindMask) Has(k world.Kind) bool { return m&(1<<k) != 0 }

// Only reports whether the mask is exactly {k}.
func (m KindMask) Only(k world.Kind) bool { return m == MaskOf(k) }

// ClassTurn lets the player act with one unit of the given kinds.
type ClassTurn struct {
	Player int
	Kinds  KindMask
}

func (t ClassTurn) PlayerID() int { return t.Player }

func (t ClassTurn) Claims(u world.Unit) bool {
	return u.OwnerID() == t.Player && t.Kinds.Has(u.Kind())
}

func (t ClassTurn) ValidUnit(u world.Unit, v View) bool {
	return t.Claims(u) && selectable(u, v)
}

func (t ClassTurn) String() string { return fmt.Sprintf("player %d kinds %#x", t.Player, uint16(t.Kinds)) }

// StrandedTurn lets any player unload units stuck aboard an immobile carrier.
type StrandedTurn struct{}

func (StrandedTurn) PlayerID() int { return AnyPlayer }

func (StrandedTurn) Claims(u world.Unit) bool {
	return u.TransportID() != world.NoUnit
}

func (t StrandedTurn) ValidUnit(u world.Unit, v View) bool {
	if !t.Claims(u) || u.Done() || u.Destroyed() {
		return false
	}
	carrier := v.Get(u.TransportID())
	return carrier != nil && carrier.Has(world.CapImmobile)
}

func (StrandedTurn) String() string { return "unload stranded" }
