package action

import (
	"go.uber.org/zap"

	"github.com/hexline/server/internal/world"
)

// PairSides asks r for the estimates of every declared action before any of
// them resolves. Two-limb punches and kicks get both sides estimated; when
// the attacker can only use one limb (prone, or built with a single usable
// limb) the side with the higher expected damage is picked.
func (l *Ledger) PairSides(r Resolver, lookup Lookup) {
	for _, a := range l.actions {
		switch {
		case a.twoSided():
			left, right := r.Estimate(a, LimbLeft), r.Estimate(a, LimbRight)
			a.Sides = [2]Estimate{left, right}
			if u := lookup(a.UnitID); u != nil && singleLimb(u) {
				a.Limb = BetterSide(left, right)
				l.log.Debug("limb side chosen",
					zap.Int("unit", a.UnitID),
					zap.String("side", a.Limb.String()),
				)
			}
		case a.Limb == LimbRight:
			a.Sides[1] = r.Estimate(a, LimbRight)
		default:
			a.Sides[0] = r.Estimate(a, a.Limb)
		}
		a.Paired = true
	}
}

func singleLimb(u world.Unit) bool {
	return u.Has(world.CapProne) || u.Has(world.CapSingleLimb)
}

// BetterSide returns the side with the higher P(hit) x damage; left wins ties.
func BetterSide(left, right Estimate) Limb {
	if right.Expected() > left.Expected() {
		return LimbRight
	}
	return LimbLeft
}
