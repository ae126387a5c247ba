package game

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/hexline/server/internal/core/event"
	"github.com/hexline/server/internal/phase"
	"github.com/hexline/server/internal/turn"
	"github.com/hexline/server/internal/victory"
	"github.com/hexline/server/internal/world"
)

// SetPhase enters p, applies its entry effects and fires one PhaseChanged.
//
// Entering the lounge resets the whole game. Entering initiative starts a new
// round. Phases that collect actions start with an empty ledger; initiative,
// physical report and end also empty the charge and ram queues.
func (e *Engine) SetPhase(p phase.Phase) {
	old := e.phase
	e.phase = p

	if p == phase.Lounge {
		e.reset()
	}
	if p == phase.Initiative {
		e.round++
	}
	if p.ClearsActions() {
		e.actions.Clear()
	}
	if p.ClearsCharges() {
		e.actions.ResetCharges()
		e.actions.ResetRams()
	}

	e.log.Debug("phase changed",
		zap.String("from", old.String()),
		zap.String("to", p.String()),
		zap.Int("round", e.round),
	)
	event.Emit(e.bus, event.PhaseChanged{Old: old, New: p})
}

// reset returns the engine to a fresh lounge. The unit id counter keeps
// counting so ids are never reused within a game.
func (e *Engine) reset() {
	e.round = 0
	e.units.SetAll(nil)
	e.units.ClearOutOfPlay()
	e.turns.Reset()
	e.actions.ResetAll()
	e.order = nil
	clear(e.teams)
	e.minefields = nil
	e.flares = nil
	e.reports = nil
	e.inFlight = nil
	e.victory.Reset()
	e.ended = false
	e.winnerPlayer, e.winnerTeam = victory.None, victory.None
	for _, p := range e.players {
		p.Done = false
		p.SetAdmitsDefeat(false)
	}
}

// IsPlayable reports whether phase p has anything for players to do.
// Initiative and end are bookkeeping only. Turn phases need turns left, and
// the indirect fire phases also need guided ordnance aboard a unit or in
// flight.
func (e *Engine) IsPlayable(p phase.Phase) bool {
	switch {
	case p == phase.Initiative, p == phase.End:
		return false
	case p == phase.Targeting, p == phase.Offboard:
		return e.turns.Phase() == p && e.turns.HasMore() && (e.hasGuidedOrdnance() || len(e.inFlight) > 0)
	case p.HasTurns():
		return e.turns.Phase() == p && e.turns.HasMore()
	}
	return true
}

func (e *Engine) hasGuidedOrdnance() bool {
	for range e.units.Select(func(u world.Unit) bool {
		return u.Has(world.CapHomingAmmo) && !u.Destroyed()
	}) {
		return true
	}
	return false
}

// IsSkippable reports whether the current turn can be passed over: its
// player is a ghost, or none of the player's units can act on it.
func (e *Engine) IsSkippable() bool {
	t := e.turns.Current()
	if t == nil {
		return true
	}
	if p := e.players[t.PlayerID()]; p != nil && p.Ghost {
		return true
	}
	switch e.phase {
	case phase.DeployMinefields, phase.SetArtilleryAutohit:
		return false
	}
	return e.turns.Next(world.NoUnit) == world.NoUnit
}

// RollInitiative rolls initiative for the teams, or for every live unit in
// individual initiative mode, and keeps the order for the turn builds of the
// round. rerolls lists the OrderIDs asking for a reroll; nil is a fresh roll.
func (e *Engine) RollInitiative(rerolls []int) []turn.Orderable {
	var items []turn.Orderable
	if e.opts.IndividualInitiative {
		var live []world.Unit
		for u := range e.units.Select(func(u world.Unit) bool { return !u.Destroyed() }) {
			live = append(live, u)
		}
		items = e.turns.UnitOrderables(live)
	} else {
		for _, t := range e.Teams() {
			items = append(items, t)
		}
	}

	comp := e.opts.InitStreakCompensation
	order := e.turns.RollInitiative(items, rerolls, comp)
	if comp && rerolls == nil {
		turn.ApplyCompensation(order)
	}
	e.order = order

	for _, o := range order {
		e.AddReport(fmt.Sprintf("initiative %d: %s", o.OrderID(), o.Init()))
	}
	return order
}

// Order returns the initiative order of the round, winner first.
func (e *Engine) Order() []turn.Orderable { return e.order }

// PrepareTurns marks every unit ready to act and builds the turn list for
// the current phase.
func (e *Engine) PrepareTurns() []turn.Turn {
	for _, u := range e.units.Snapshot() {
		u.SetDone(false)
	}
	for _, p := range e.players {
		p.Done = false
	}

	switch e.phase {
	case phase.DeployMinefields, phase.SetArtilleryAutohit:
		var turns []turn.Turn
		for _, p := range e.Players() {
			if p.Observer || (e.phase == phase.DeployMinefields && p.Mines == 0) {
				continue
			}
			turns = append(turns, turn.PlayerTurn{Player: p.ID})
		}
		e.turns.SetTurns(e.phase, turns)
		return turns
	}

	order := e.order
	if len(order) == 0 {
		for _, t := range e.Teams() {
			order = append(order, t)
		}
	}
	return e.turns.Build(e.phase, order)
}

// NextTurn advances to the next turn and fires TurnChanged. It returns nil
// once the phase has no turns left.
func (e *Engine) NextTurn() turn.Turn {
	oldPlayer := turn.AnyPlayer
	if t := e.turns.Current(); t != nil {
		oldPlayer = t.PlayerID()
	}
	t := e.turns.Advance()
	newPlayer := turn.AnyPlayer
	if t != nil {
		newPlayer = t.PlayerID()
	}
	event.Emit(e.bus, event.TurnChanged{OldPlayer: oldPlayer, NewPlayer: newPlayer})
	return t
}

// EndUnitTurn marks the unit as having acted this phase.
func (e *Engine) EndUnitTurn(id int) error {
	u := e.units.Get(id)
	if u == nil {
		return fmt.Errorf("end turn of unit %d: %w", id, ErrUnknownUnit)
	}
	u.SetDone(true)
	e.units.Replace(id, u)
	return nil
}
