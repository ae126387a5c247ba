package round

import (
	"context"

	"go.uber.org/zap"

	"github.com/hexline/server/internal/action"
	"github.com/hexline/server/internal/data"
	"github.com/hexline/server/internal/game"
	"github.com/hexline/server/internal/phase"
	"github.com/hexline/server/internal/turn"
	"github.com/hexline/server/internal/world"
)

// AutoPlayer is a TurnHandler for unattended games. It makes no tactical
// choices: units deploy on the first free cell, stand still, fire at the
// first enemy they can target and punch whatever stands next to them.
type AutoPlayer struct {
	board *data.HexBoard
	log   *zap.Logger
}

func NewAutoPlayer(board *data.HexBoard, log *zap.Logger) *AutoPlayer {
	return &AutoPlayer{board: board, log: log}
}

func (a *AutoPlayer) PlayTurn(_ context.Context, g *game.Engine, t turn.Turn) error {
	if pt, ok := t.(turn.PlayerTurn); ok && isPlayerPhase(g.Phase()) {
		if p := g.Player(pt.Player); p != nil {
			p.Done = true
		}
		return nil
	}

	for _, u := range a.actors(g, t) {
		if err := a.act(g, u); err != nil {
			return err
		}
		if err := g.EndUnitTurn(u.ID()); err != nil {
			return err
		}
	}
	return nil
}

func isPlayerPhase(p phase.Phase) bool {
	return p == phase.DeployMinefields || p == phase.SetArtilleryAutohit
}

// actors picks the units that act on t: one, or a whole group when grouped
// movement hands a single kind several moves per turn.
func (a *AutoPlayer) actors(g *game.Engine, t turn.Turn) []world.Unit {
	limit := 1
	if ct, ok := t.(turn.ClassTurn); ok && g.Phase() == phase.Movement {
		for k := world.KindOther; k <= world.KindAerospace; k++ {
			if ct.Kinds.Only(k) {
				limit = max(1, g.Turns().Grouping().Size(k))
			}
		}
	}

	var out []world.Unit
	for _, u := range g.Units().Snapshot() {
		if len(out) == limit {
			break
		}
		if t.ValidUnit(u, g.Turns()) {
			out = append(out, u)
		}
	}
	return out
}

func (a *AutoPlayer) act(g *game.Engine, u world.Unit) error {
	switch g.Phase() {
	case phase.Deployment:
		if at, ok := a.freeCell(g); ok {
			return g.MoveUnit(u.ID(), []world.Coord{at})
		}
		a.log.Debug("no room to deploy", zap.Int("unit", u.ID()))
	case phase.Firing:
		if target := a.firstEnemy(g, u, nil); target != nil {
			g.Actions().Declare(&action.Action{
				Kind:     action.KindWeaponAttack,
				UnitID:   u.ID(),
				TargetID: target.ID(),
			})
		}
	case phase.Physical:
		adjacent := make(map[int]bool)
		for _, c := range u.Positions() {
			for _, id := range g.UnitsAdjacent(c) {
				adjacent[id] = true
			}
		}
		if target := a.firstEnemy(g, u, adjacent); target != nil {
			g.Actions().Declare(&action.Action{
				Kind:     action.KindPunch,
				UnitID:   u.ID(),
				TargetID: target.ID(),
				Limb:     action.LimbBoth,
			})
		}
	}
	return nil
}

// firstEnemy returns the first targetable unit of another side, restricted
// to within when it is non-nil.
func (a *AutoPlayer) firstEnemy(g *game.Engine, u world.Unit, within map[int]bool) world.Unit {
	self := g.Player(u.OwnerID())
	for _, o := range g.Units().Snapshot() {
		if within != nil && !within[o.ID()] {
			continue
		}
		if !o.Targetable() || o.OwnerID() == u.OwnerID() {
			continue
		}
		if other := g.Player(o.OwnerID()); self != nil && other != nil && self.TeamID() == other.TeamID() {
			continue
		}
		return o
	}
	return nil
}

func (a *AutoPlayer) freeCell(g *game.Engine) (world.Coord, bool) {
	for y := 0; y < a.board.Height(); y++ {
		for x := 0; x < a.board.Width(); x++ {
			c := world.Coord{X: x, Y: y}
			if a.board.Passable(c) && !g.Units().IsOccupied(c, world.NoUnit) {
				return c, true
			}
		}
	}
	return world.Coord{}, false
}
