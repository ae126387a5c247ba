package game

import (
	"slices"

	"go.uber.org/zap"

	"github.com/hexline/server/internal/action"
	"github.com/hexline/server/internal/core/event"
	"github.com/hexline/server/internal/phase"
	"github.com/hexline/server/internal/world"
)

// Minefield is a mined cell.
type Minefield struct {
	At      world.Coord
	Owner   int
	Density int
}

// Flare lights a cell for a number of rounds.
type Flare struct {
	At     world.Coord
	Rounds int
}

// Report is one line of the round report.
type Report struct {
	Round int
	Phase phase.Phase
	Text  string
}

// AddMinefield lays a minefield and spends one of the owner's mines.
func (e *Engine) AddMinefield(m Minefield) {
	e.minefields = append(e.minefields, m)
	if p := e.players[m.Owner]; p != nil && p.Mines > 0 {
		p.Mines--
	}
}

// MinefieldsAt returns the minefields on c.
func (e *Engine) MinefieldsAt(c world.Coord) []Minefield {
	var out []Minefield
	for _, m := range e.minefields {
		if m.At == c {
			out = append(out, m)
		}
	}
	return out
}

func (e *Engine) Minefields() []Minefield { return slices.Clone(e.minefields) }

// ClearMinefield removes every minefield on c.
func (e *Engine) ClearMinefield(c world.Coord) {
	e.minefields = slices.DeleteFunc(e.minefields, func(m Minefield) bool { return m.At == c })
}

func (e *Engine) AddFlare(f Flare) { e.flares = append(e.flares, f) }
func (e *Engine) Flares() []Flare  { return slices.Clone(e.flares) }

// AgeFlares burns every flare down by one round and drops the spent ones.
func (e *Engine) AgeFlares() int {
	kept := e.flares[:0]
	for _, f := range e.flares {
		f.Rounds--
		if f.Rounds > 0 {
			kept = append(kept, f)
		}
	}
	burnt := len(e.flares) - len(kept)
	e.flares = kept
	return burnt
}

// IsLit reports whether a flare lights c.
func (e *Engine) IsLit(c world.Coord) bool {
	return slices.ContainsFunc(e.flares, func(f Flare) bool { return f.At == c })
}

// Launch records guided ordnance in flight; it lands in a later phase.
func (e *Engine) Launch(a *action.Action) {
	e.inFlight = append(e.inFlight, a)
}

func (e *Engine) InFlight() []*action.Action { return slices.Clone(e.inFlight) }

// Land returns the ordnance in flight and clears it.
func (e *Engine) Land() []*action.Action {
	out := e.inFlight
	e.inFlight = nil
	return out
}

// AddReport appends a line to the current round's report and fires
// ReportAdded.
func (e *Engine) AddReport(text string) {
	r := Report{Round: e.round, Phase: e.phase, Text: text}
	e.reports = append(e.reports, r)
	e.log.Debug("report", zap.Int("round", r.Round), zap.String("text", text))
	event.Emit(e.bus, event.ReportAdded{Round: r.Round, Phase: r.Phase, Text: text})
}

func (e *Engine) Reports() []Report { return slices.Clone(e.reports) }

// ReportsFor returns the report lines of one round.
func (e *Engine) ReportsFor(round int) []Report {
	var out []Report
	for _, r := range e.reports {
		if r.Round == round {
			out = append(out, r)
		}
	}
	return out
}
