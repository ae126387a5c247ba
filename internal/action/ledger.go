package action

import (
	"slices"

	"go.uber.org/zap"

	"github.com/hexline/server/internal/world"
)

// Lookup resolves a unit id against the live units; nil when gone.
type Lookup func(id int) world.Unit

// Resolver is the combat collaborator: it estimates one side of an attack.
type Resolver interface {
	Estimate(a *Action, side Limb) Estimate
}

// Ledger holds the actions declared in the current phase, plus the charge
// and ram queues that outlive a single phase. Actions stay in declaration
// order. Eligibility is the caller's concern; the ledger only dedupes and
// purges.
type Ledger struct {
	actions []*Action
	charges []*Action
	rams    []*Action
	log     *zap.Logger
}

func NewLedger(log *zap.Logger) *Ledger {
	return &Ledger{log: log}
}

// Declare appends a.
func (l *Ledger) Declare(a *Action) {
	l.actions = append(l.actions, a)
}

// All returns the actions declared this phase.
func (l *Ledger) All() []*Action { return slices.Clone(l.actions) }

func (l *Ledger) Len() int { return len(l.actions) }

// Clear drops every declared action. Charge and ram queues are kept.
func (l *Ledger) Clear() { l.actions = l.actions[:0] }

// RemoveAllBy drops every action declared by unitID and returns how many went.
func (l *Ledger) RemoveAllBy(unitID int) int {
	before := len(l.actions)
	l.actions = slices.DeleteFunc(l.actions, func(a *Action) bool {
		return a.UnitID == unitID
	})
	return before - len(l.actions)
}

// RemoveInvalid drops actions whose unit is gone, destroyed or inactive.
// A displacement by an inactive unit stays so that it resolves as a failed
// jump.
func (l *Ledger) RemoveInvalid(lookup Lookup) int {
	before := len(l.actions)
	l.actions = slices.DeleteFunc(l.actions, func(a *Action) bool {
		u := lookup(a.UnitID)
		if u == nil || u.Destroyed() {
			return true
		}
		if !u.Active() {
			return a.Kind != KindDisplacement
		}
		return false
	})
	if n := before - len(l.actions); n > 0 {
		l.log.Debug("invalid actions purged", zap.Int("count", n))
		return n
	}
	return 0
}

// DedupePhysical keeps the first allowed physical attacks by unitID in
// declaration order and drops the rest. Non-physical actions are untouched.
func (l *Ledger) DedupePhysical(unitID, allowed int) int {
	seen := 0
	before := len(l.actions)
	l.actions = slices.DeleteFunc(l.actions, func(a *Action) bool {
		if a.UnitID != unitID || !a.Kind.Physical() {
			return false
		}
		seen++
		return seen > allowed
	})
	return before - len(l.actions)
}

// Attackers returns the ids of units with declared actions, in order of
// first declaration.
func (l *Ledger) Attackers() []int {
	var ids []int
	for _, a := range l.actions {
		if !slices.Contains(ids, a.UnitID) {
			ids = append(ids, a.UnitID)
		}
	}
	return ids
}

func (l *Ledger) AddCharge(a *Action) { l.charges = append(l.charges, a) }
func (l *Ledger) Charges() []*Action  { return slices.Clone(l.charges) }
func (l *Ledger) ResetCharges()       { l.charges = nil }
func (l *Ledger) AddRam(a *Action)    { l.rams = append(l.rams, a) }
func (l *Ledger) Rams() []*Action     { return slices.Clone(l.rams) }
func (l *Ledger) ResetRams()          { l.rams = nil }
func (l *Ledger) PendingQueues() int  { return len(l.charges) + len(l.rams) }

// ResetAll empties the ledger and both queues.
func (l *Ledger) ResetAll() {
	l.Clear()
	l.ResetCharges()
	l.ResetRams()
}
