package action

import (
	"fmt"

	"github.com/hexline/server/internal/world"
)

// Kind tags the variant of a declared action.
type Kind int

const (
	KindWeaponAttack Kind = iota
	KindCharge
	// KindDisplacement is a jump onto the target from above.
	KindDisplacement
	KindRam
	// KindRollRequest asks for a piloting or control roll.
	KindRollRequest
	// KindTeleMissile is a tele-operated munition attack.
	KindTeleMissile
	KindSearchlight
	KindPunch
	KindKick
	KindPush
	KindClub
)

var kindNames = [...]string{
	KindWeaponAttack: "weapon",
	KindCharge:       "charge",
	KindDisplacement: "displacement",
	KindRam:          "ram",
	KindRollRequest:  "roll",
	KindTeleMissile:  "tele_missile",
	KindSearchlight:  "searchlight",
	KindPunch:        "punch",
	KindKick:         "kick",
	KindPush:         "push",
	KindClub:         "club",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Physical reports whether the action is a physical attack and counts against
// the per-unit physical limit. Searchlights are declared in the physical
// phase but never count.
func (k Kind) Physical() bool {
	switch k {
	case KindCharge, KindDisplacement, KindRam, KindPunch, KindKick, KindPush, KindClub:
		return true
	}
	return false
}

// Limb is the side a limb attack is made with.
type Limb int

const (
	LimbNone Limb = iota
	LimbLeft
	LimbRight
	LimbBoth
)

func (l Limb) String() string {
	switch l {
	case LimbLeft:
		return "left"
	case LimbRight:
		return "right"
	case LimbBoth:
		return "both"
	}
	return "none"
}

// Impossible is the to-hit target of an attack that cannot succeed.
const Impossible = 13

// Estimate is the resolver's to-hit target number and damage for one side of
// an attack.
type Estimate struct {
	Side   Limb
	ToHit  int
	Damage int
}

// Expected returns hit probability times damage.
func (e Estimate) Expected() float64 {
	return HitProbability(e.ToHit) * float64(e.Damage)
}

// Action is one declared, unresolved action.
type Action struct {
	Kind     Kind
	UnitID   int
	TargetID int
	// Target is the aimed coordinate for actions against a hex, not a unit.
	Target   world.Coord
	WeaponID int
	Limb     Limb
	// Sides holds the left and right estimates once PairSides ran.
	Sides  [2]Estimate
	Paired bool
}

func (a *Action) String() string {
	if a.Limb != LimbNone {
		return fmt.Sprintf("%s %s by %d on %d", a.Limb, a.Kind, a.UnitID, a.TargetID)
	}
	return fmt.Sprintf("%s by %d on %d", a.Kind, a.UnitID, a.TargetID)
}

// Estimates returns the estimates the action resolves with: one per side
// for a two-limb attack, otherwise the single estimate for its limb.
func (a *Action) Estimates() []Estimate {
	switch a.Limb {
	case LimbBoth:
		return a.Sides[:]
	case LimbRight:
		return a.Sides[1:]
	}
	return a.Sides[:1]
}

// twoSided reports whether the attack can be made with either limb.
func (a *Action) twoSided() bool {
	return (a.Kind == KindPunch || a.Kind == KindKick) && a.Limb == LimbBoth
}

// twoD6 holds the number of ways to roll each total on 2d6, indexed by total.
var twoD6 = [13]int{0, 0, 1, 2, 3, 4, 5, 6, 5, 4, 3, 2, 1}

// HitProbability is the chance that 2d6 meets or beats target number tn.
func HitProbability(tn int) float64 {
	switch {
	case tn <= 2:
		return 1
	case tn > 12:
		return 0
	}
	ways := 0
	for t := tn; t <= 12; t++ {
		ways += twoD6[t]
	}
	return float64(ways) / 36
}
