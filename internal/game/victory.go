package game

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/hexline/server/internal/core/event"
	"github.com/hexline/server/internal/victory"
	"github.com/hexline/server/internal/world"
)

// DeclareForcedVictory has playerID claim the game. Every other player must
// admit defeat again before it takes effect.
func (e *Engine) DeclareForcedVictory(playerID int) error {
	p := e.players[playerID]
	if p == nil {
		return fmt.Errorf("declare victory for %d: %w", playerID, ErrUnknownPlayer)
	}
	team := victory.None
	if p.Team > TeamNone {
		team = p.Team
	}
	e.victory.DeclareForced(playerID, team, e.participants())
	e.AddReport(fmt.Sprintf("%s declares victory", p.Name))
	return nil
}

// AdmitDefeat records whether playerID concedes.
func (e *Engine) AdmitDefeat(playerID int, admit bool) error {
	p := e.players[playerID]
	if p == nil {
		return fmt.Errorf("admit defeat for %d: %w", playerID, ErrUnknownPlayer)
	}
	p.SetAdmitsDefeat(admit)
	return nil
}

// CancelVictory withdraws a forced-victory declaration.
func (e *Engine) CancelVictory() { e.victory.Cancel() }

// CheckVictory ends the game when a forced victory is accepted or only one
// side still fields units. It reports whether the game is over.
func (e *Engine) CheckVictory() bool {
	if e.ended {
		return true
	}
	if e.victory.IsForcedVictoryReady(e.participants(), e.opts.AllowEarlyTermination) {
		e.end(e.victory.Player(), e.victory.Team())
		return true
	}

	var forces []victory.Standing
	sides := make(map[int]bool)
	for _, p := range e.Players() {
		if p.Observer {
			continue
		}
		sides[p.TeamID()] = true
		forces = append(forces, victory.Standing{
			Player:   p.ID,
			Team:     p.Team,
			HasUnits: e.fieldsUnits(p.ID),
		})
	}
	if len(sides) < 2 {
		return false
	}
	if player, team, ok := victory.LastStanding(forces); ok {
		e.end(player, team)
		return true
	}
	return false
}

func (e *Engine) fieldsUnits(playerID int) bool {
	for range e.units.Select(func(u world.Unit) bool {
		return u.OwnerID() == playerID && !u.Destroyed()
	}) {
		return true
	}
	return false
}

func (e *Engine) end(player, team int) {
	e.ended = true
	e.winnerPlayer, e.winnerTeam = player, team
	e.log.Info("game ended",
		zap.Stringer("game", e.id),
		zap.Int("round", e.round),
		zap.Int("winner", player),
		zap.Int("team", team),
	)
	event.Emit(e.bus, event.GameEnded{WinnerPlayer: player, WinnerTeam: team})
}

// Ended reports whether the game is over.
func (e *Engine) Ended() bool { return e.ended }

// Winner returns the winning player and team, victory.None when unknown.
func (e *Engine) Winner() (player, team int) { return e.winnerPlayer, e.winnerTeam }
