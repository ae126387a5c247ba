package round

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	coresys "github.com/hexline/server/internal/core/system"
	"github.com/hexline/server/internal/game"
	"github.com/hexline/server/internal/phase"
	"github.com/hexline/server/internal/turn"
)

// ErrNotInLounge is returned by Start when the game is already under way.
var ErrNotInLounge = errors.New("game is not in the lounge")

// TurnHandler plays one turn on behalf of whoever owns it.
type TurnHandler interface {
	PlayTurn(ctx context.Context, g *game.Engine, t turn.Turn) error
}

// TurnHandlerFunc adapts a function to TurnHandler.
type TurnHandlerFunc func(ctx context.Context, g *game.Engine, t turn.Turn) error

func (f TurnHandlerFunc) PlayTurn(ctx context.Context, g *game.Engine, t turn.Turn) error {
	return f(ctx, g, t)
}

// Driver walks the game through its phases: it builds the turns of each
// phase, hands them to the handler, and runs the systems bound to the phase.
// It stops when the game ends or the round limit is hit.
type Driver struct {
	game      *game.Engine
	runner    *coresys.Runner
	handler   TurnHandler
	maxRounds int
	log       *zap.Logger
	done      bool
}

// NewDriver creates a driver. maxRounds <= 0 plays until a side wins.
func NewDriver(g *game.Engine, runner *coresys.Runner, handler TurnHandler, maxRounds int, log *zap.Logger) *Driver {
	return &Driver{
		game:      g,
		runner:    runner,
		handler:   handler,
		maxRounds: maxRounds,
		log:       log,
	}
}

// Done reports whether the driver reached the victory phase.
func (d *Driver) Done() bool { return d.done }

// Start leaves the lounge. The engine must still be in it.
func (d *Driver) Start(ctx context.Context) error {
	if d.game.Phase() != phase.Lounge {
		return ErrNotInLounge
	}
	d.done = false
	d.log.Info("game starting",
		zap.Stringer("game", d.game.ID()),
		zap.Int("units", d.game.Units().Len()),
		zap.Int("players", len(d.game.Players())),
	)
	return d.Step(ctx)
}

// Step moves to the next phase and plays it out.
func (d *Driver) Step(ctx context.Context) error {
	if d.done {
		return nil
	}
	next := d.game.Phase().Next()
	if next == phase.Initiative && d.maxRounds > 0 && d.game.Round() >= d.maxRounds {
		d.log.Info("round limit reached", zap.Int("rounds", d.game.Round()))
		return d.finish(ctx)
	}
	d.game.SetPhase(next)

	switch {
	case next == phase.Initiative:
		d.game.RollInitiative(nil)
	case next.HasTurns():
		d.game.PrepareTurns()
	}

	if err := d.play(ctx, next); err != nil {
		return fmt.Errorf("%s: %w", next, err)
	}
	if err := d.runner.RunPhase(ctx, next); err != nil {
		return fmt.Errorf("%s systems: %w", next, err)
	}
	if d.game.Ended() {
		return d.finish(ctx)
	}
	return nil
}

// play hands every turn of p to the handler. Turns nobody can use are
// passed over.
func (d *Driver) play(ctx context.Context, p phase.Phase) error {
	if !p.HasTurns() || !d.game.IsPlayable(p) {
		return nil
	}
	for d.game.IsPlayable(p) {
		if err := ctx.Err(); err != nil {
			return err
		}
		t := d.game.NextTurn()
		if t == nil {
			break
		}
		if d.game.IsSkippable() {
			d.log.Debug("turn skipped", zap.Stringer("turn", t))
			continue
		}
		if err := d.handler.PlayTurn(ctx, d.game, t); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) finish(ctx context.Context) error {
	d.game.SetPhase(phase.Victory)
	d.done = true
	player, team := d.game.Winner()
	d.log.Info("game over",
		zap.Stringer("game", d.game.ID()),
		zap.Int("rounds", d.game.Round()),
		zap.Int("winner", player),
		zap.Int("team", team),
	)
	return d.runner.RunPhase(ctx, phase.Victory)
}

// Run plays the game from the lounge to the victory phase or until ctx is
// cancelled.
func (d *Driver) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}
	for !d.done {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := d.Step(ctx); err != nil {
			return err
		}
	}
	return nil
}
