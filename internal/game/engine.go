// Package game holds the authoritative state of one game: units, players,
// phase, turns and pending actions, and the rules that tie them together.
package game

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hexline/server/internal/action"
	"github.com/hexline/server/internal/comms"
	"github.com/hexline/server/internal/config"
	"github.com/hexline/server/internal/core/event"
	"github.com/hexline/server/internal/phase"
	"github.com/hexline/server/internal/turn"
	"github.com/hexline/server/internal/victory"
	"github.com/hexline/server/internal/world"
)

var (
	ErrNilOptions      = errors.New("nil options")
	ErrNilBoard        = errors.New("nil board")
	ErrDuplicatePlayer = errors.New("duplicate player")
	ErrUnknownPlayer   = errors.New("unknown player")
	ErrUnknownUnit     = errors.New("unknown unit")
	ErrOffBoard        = errors.New("position off board")
)

// Engine is the game-state engine. Round progression runs on one goroutine;
// only the unit registry may be read concurrently.
type Engine struct {
	id  uuid.UUID
	log *zap.Logger
	bus *event.Bus

	units   *world.Registry
	turns   *turn.Scheduler
	actions *action.Ledger
	comms   *comms.Resolver
	victory *victory.Tracker

	opts  config.Options
	board world.Board

	players map[int]*Player
	teams   map[int]*Team
	order   []turn.Orderable

	phase phase.Phase
	round int

	minefields []Minefield
	flares     []Flare
	reports    []Report
	inFlight   []*action.Action

	ended        bool
	winnerPlayer int
	winnerTeam   int
}

// New creates an engine in the lounge. seed drives every die roll.
func New(opts config.Options, seed int64, log *zap.Logger) *Engine {
	units := world.NewRegistry(log.Named("units"))
	e := &Engine{
		id:           uuid.New(),
		log:          log,
		bus:          event.NewBus(),
		units:        units,
		turns:        turn.NewScheduler(units, seed, log.Named("turns")),
		actions:      action.NewLedger(log.Named("actions")),
		victory:      victory.NewTracker(),
		opts:         opts,
		players:      make(map[int]*Player),
		teams:        make(map[int]*Team),
		phase:        phase.Lounge,
		winnerPlayer: victory.None,
		winnerTeam:   victory.None,
	}
	e.comms = comms.NewResolver(units, e.sameSide)
	e.turns.SetGrouping(groupingOf(opts))
	units.SetObserver(busObserver{bus: e.bus})
	return e
}

func (e *Engine) ID() uuid.UUID             { return e.id }
func (e *Engine) Bus() *event.Bus           { return e.bus }
func (e *Engine) Units() *world.Registry    { return e.units }
func (e *Engine) Turns() *turn.Scheduler    { return e.turns }
func (e *Engine) Actions() *action.Ledger   { return e.actions }
func (e *Engine) Comms() *comms.Resolver    { return e.comms }
func (e *Engine) Victory() *victory.Tracker { return e.victory }
func (e *Engine) Options() config.Options   { return e.opts }
func (e *Engine) Board() world.Board        { return e.board }
func (e *Engine) Phase() phase.Phase        { return e.phase }
func (e *Engine) Round() int                { return e.round }
func (e *Engine) Log() *zap.Logger          { return e.log }

// Lookup resolves a live unit by id; it satisfies action.Lookup.
func (e *Engine) Lookup(id int) world.Unit { return e.units.Get(id) }

func groupingOf(o config.Options) turn.Grouping {
	return turn.Grouping{
		IndividualInitiative: o.IndividualInitiative,
		InfantryMoveLater:    o.InfantryMoveLater,
		InfantryPerTurn:      o.InfantryPerTurn,
		ProtosPerTurn:        o.ProtosPerTurn,
		VehiclesPerTurn:      o.VehiclesPerTurn,
		MeksPerTurn:          o.MeksPerTurn,
		RemoveRemainder:      o.GroupRemovalRemainder,
	}
}

// SetOptions installs new rules. A nil value is refused and the current
// rules stay in force.
func (e *Engine) SetOptions(o *config.Options) error {
	if o == nil {
		e.log.Error("refusing nil options", zap.Stringer("game", e.id))
		return ErrNilOptions
	}
	old := e.opts
	e.opts = *o
	e.turns.SetGrouping(groupingOf(e.opts))
	next := e.opts
	event.Emit(e.bus, event.SettingsChanged{Old: &old, New: &next})
	return nil
}

// SetBoard installs the board. A nil board is refused.
func (e *Engine) SetBoard(b world.Board) error {
	if b == nil {
		e.log.Error("refusing nil board", zap.Stringer("game", e.id))
		return ErrNilBoard
	}
	e.board = b
	event.Emit(e.bus, event.BoardChanged{Board: b})
	return nil
}

// AddPlayer registers p.
func (e *Engine) AddPlayer(p *Player) error {
	if _, ok := e.players[p.ID]; ok {
		return fmt.Errorf("player %d: %w", p.ID, ErrDuplicatePlayer)
	}
	e.players[p.ID] = p
	return nil
}

// Player returns the player with id, or nil.
func (e *Engine) Player(id int) *Player { return e.players[id] }

// Players returns every player ordered by id.
func (e *Engine) Players() []*Player {
	out := make([]*Player, 0, len(e.players))
	for _, p := range e.players {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b *Player) int { return a.ID - b.ID })
	return out
}

func (e *Engine) participants() []victory.Participant {
	ps := e.Players()
	out := make([]victory.Participant, len(ps))
	for i, p := range ps {
		out[i] = p
	}
	return out
}

// Teams returns the initiative teams of the non-observer players, ordered by
// team id. Players without a team form a team of their own.
func (e *Engine) Teams() []*Team {
	for _, t := range e.teams {
		t.players = t.players[:0]
		t.init.Bonus = 0
	}
	for _, p := range e.Players() {
		if p.Observer {
			continue
		}
		id := p.TeamID()
		t := e.teams[id]
		if t == nil {
			t = &Team{ID: id}
			e.teams[id] = t
		}
		t.players = append(t.players, p.ID)
		t.init.Bonus = max(t.init.Bonus, p.InitBonus)
	}
	var out []*Team
	for _, t := range e.teams {
		if len(t.players) > 0 {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b *Team) int { return a.ID - b.ID })
	return out
}

func (e *Engine) sameSide(a, b world.Unit) bool {
	if a.OwnerID() == b.OwnerID() {
		return true
	}
	pa, pb := e.players[a.OwnerID()], e.players[b.OwnerID()]
	return pa != nil && pb != nil && pa.TeamID() == pb.TeamID()
}

// AddUnit places u in the game. The registry may give it a new id; the
// assigned id is returned.
func (e *Engine) AddUnit(u world.Unit) int {
	e.units.Add(u)
	return u.ID()
}

// MoveUnit moves a unit to new cells, deploying it if needed.
func (e *Engine) MoveUnit(id int, to []world.Coord) error {
	u := e.units.Get(id)
	if u == nil {
		return fmt.Errorf("move unit %d: %w", id, ErrUnknownUnit)
	}
	if e.board != nil {
		for _, c := range to {
			if !e.board.Contains(c) {
				return fmt.Errorf("move unit %d to %v: %w", id, c, ErrOffBoard)
			}
		}
	}
	from := u.Positions()
	u.Place(to)
	e.units.Moved(id, from)
	return nil
}

// RemoveUnit takes a unit out of play, drops its pending actions and the
// turn it would have used. Unknown ids are a logged no-op.
func (e *Engine) RemoveUnit(id int, why world.Removal) bool {
	u := e.units.Get(id)
	if !e.units.Remove(id, why) {
		return false
	}
	e.actions.RemoveAllBy(id)
	if e.turns.RemoveFor(u) {
		e.log.Debug("turn dropped for removed unit", zap.Int("unit", id))
	}
	return true
}

// UnitsAdjacent returns the ids of units on the cells next to c.
func (e *Engine) UnitsAdjacent(c world.Coord) []int {
	if e.board == nil {
		return nil
	}
	var ids []int
	for _, n := range e.board.Adjacent(c) {
		ids = append(ids, e.units.UnitsAt(n)...)
	}
	return ids
}

// Shutdown stops event delivery and waits for deliveries in progress.
func (e *Engine) Shutdown() {
	e.bus.Shutdown()
}
