package world

import (
	"slices"

	"github.com/hexline/server/internal/phase"
)

// NoUnit is the id returned when no unit matches.
const NoUnit = -1

// Coord is a board cell.
type Coord struct {
	X, Y int
}

// Kind is the closed set of unit kinds the engine groups turns by.
type Kind uint8

const (
	KindOther Kind = iota
	KindMek
	KindVehicle
	KindInfantry
	KindProtomek
	KindAerospace
)

var kindNames = map[Kind]string{
	KindOther:     "other",
	KindMek:       "mek",
	KindVehicle:   "vehicle",
	KindInfantry:  "infantry",
	KindProtomek:  "protomek",
	KindAerospace: "aerospace",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "other"
}

// ParseKind maps a kind name to its value.
func ParseKind(s string) (Kind, bool) {
	for k, n := range kindNames {
		if n == s {
			return k, true
		}
	}
	return KindOther, false
}

// Capability is a bit set of traits the engine queries instead of inspecting
// concrete unit types.
type Capability uint32

const (
	CapC3Master Capability = 1 << iota
	CapC3Slave
	CapC3i
	CapNovaCEWS
	CapC3Hub
	CapAirborne
	CapHomingAmmo
	CapImmobile
	CapProne
	CapSingleLimb
	CapExtraPhysical
)

var capNames = map[string]Capability{
	"c3_master":      CapC3Master,
	"c3_slave":       CapC3Slave,
	"c3i":            CapC3i,
	"nova_cews":      CapNovaCEWS,
	"c3_hub":         CapC3Hub,
	"airborne":       CapAirborne,
	"homing_ammo":    CapHomingAmmo,
	"immobile":       CapImmobile,
	"prone":          CapProne,
	"single_limb":    CapSingleLimb,
	"extra_physical": CapExtraPhysical,
}

// ParseCapability maps a capability name to its flag.
func ParseCapability(s string) (Capability, bool) {
	c, ok := capNames[s]
	return c, ok
}

// Removal tags a unit that left play.
type Removal int

const (
	RemovalNone Removal = iota
	RemovalSalvageable
	RemovalDevastated
	RemovalEjected
	RemovalCaptured
	RemovalInRetreat
	RemovalPushed
	RemovalNeverJoined
)

var removalNames = map[Removal]string{
	RemovalNone:        "none",
	RemovalSalvageable: "salvageable",
	RemovalDevastated:  "devastated",
	RemovalEjected:     "ejected",
	RemovalCaptured:    "captured",
	RemovalInRetreat:   "in_retreat",
	RemovalPushed:      "pushed",
	RemovalNeverJoined: "never_joined",
}

func (r Removal) String() string {
	if s, ok := removalNames[r]; ok {
		return s
	}
	return "none"
}

// Unit is the engine's view of a piece on the board. Implementations own
// their combat state; the engine only reads these accessors and writes id,
// placement, turn completion and removal tags.
type Unit interface {
	ID() int
	SetID(id int)
	OwnerID() int
	Kind() Kind
	// Positions returns every cell the unit occupies; empty when off board.
	Positions() []Coord
	Place(at []Coord)
	Deployed() bool
	Has(c Capability) bool
	Targetable() bool
	EligibleFor(p phase.Phase) bool
	Done() bool
	SetDone(done bool)
	// Active is false while the unit is disabled, e.g. an unconscious pilot.
	Active() bool
	Destroyed() bool
	NetworkID() string
	MasterID() int
	TransportID() int
	Removal() Removal
	SetRemoval(r Removal)
}

// Damageable is implemented by units that track their own structure. The
// resolution step applies hits through it.
type Damageable interface {
	// TakeDamage applies n points and reports whether the unit is now destroyed.
	TakeDamage(n int) bool
}

// Board answers the read-only geometry questions the engine asks.
type Board interface {
	Contains(c Coord) bool
	Adjacent(c Coord) []Coord
}

// Piece is a plain mutable Unit used for scenarios and tests.
type Piece struct {
	Num          int
	Owner        int
	Class        Kind
	Cells        []Coord
	Caps         Capability
	IsDeployed   bool
	IsDone       bool
	Disabled     bool
	IsDestroyed  bool
	Untargetable bool
	Network      string
	Master       int
	Transport    int
	Removed      Removal
	Structure    int
}

// DefaultStructure is the damage a new piece absorbs before it is destroyed.
const DefaultStructure = 10

// NewPiece returns a deployed piece with no network master and no carrier.
func NewPiece(id, owner int, kind Kind, at ...Coord) *Piece {
	return &Piece{
		Num:        id,
		Owner:      owner,
		Class:      kind,
		Cells:      at,
		IsDeployed: len(at) > 0,
		Master:     NoUnit,
		Transport:  NoUnit,
		Structure:  DefaultStructure,
	}
}

func (p *Piece) ID() int               { return p.Num }
func (p *Piece) SetID(id int)          { p.Num = id }
func (p *Piece) OwnerID() int          { return p.Owner }
func (p *Piece) Kind() Kind            { return p.Class }
func (p *Piece) Positions() []Coord    { return slices.Clone(p.Cells) }
func (p *Piece) Deployed() bool        { return p.IsDeployed }
func (p *Piece) Has(c Capability) bool { return p.Caps&c != 0 }
func (p *Piece) Targetable() bool      { return !p.Untargetable && !p.IsDestroyed && p.IsDeployed }
func (p *Piece) Done() bool            { return p.IsDone }
func (p *Piece) SetDone(done bool)     { p.IsDone = done }
func (p *Piece) Active() bool          { return !p.Disabled && !p.IsDestroyed }
func (p *Piece) Destroyed() bool       { return p.IsDestroyed }
func (p *Piece) NetworkID() string     { return p.Network }
func (p *Piece) MasterID() int         { return p.Master }
func (p *Piece) TransportID() int      { return p.Transport }
func (p *Piece) Removal() Removal      { return p.Removed }
func (p *Piece) SetRemoval(r Removal)  { p.Removed = r }

// Place moves the piece; placing on at least one cell deploys it.
func (p *Piece) Place(at []Coord) {
	p.Cells = slices.Clone(at)
	if len(at) > 0 {
		p.IsDeployed = true
	}
}

// TakeDamage applies n points of damage. A piece at zero structure is destroyed.
func (p *Piece) TakeDamage(n int) bool {
	if p.IsDestroyed || n <= 0 {
		return p.IsDestroyed
	}
	p.Structure -= n
	if p.Structure <= 0 {
		p.Structure = 0
		p.IsDestroyed = true
	}
	return p.IsDestroyed
}

// EligibleFor reports whether the piece may take a turn in the phase,
// ignoring whether it has already acted.
func (p *Piece) EligibleFor(ph phase.Phase) bool {
	if p.IsDestroyed {
		return false
	}
	switch ph {
	case phase.Deployment:
		return !p.IsDeployed && p.Transport == NoUnit
	case phase.Movement, phase.Firing:
		return p.IsDeployed && !p.Disabled && p.Transport == NoUnit
	case phase.Physical:
		return p.IsDeployed && !p.Disabled && !p.Has(CapAirborne)
	case phase.Targeting, phase.Offboard:
		return p.IsDeployed && !p.Disabled && p.Has(CapHomingAmmo)
	}
	return false
}
