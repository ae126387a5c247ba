package event

import (
	"github.com/hexline/server/internal/config"
	"github.com/hexline/server/internal/phase"
	"github.com/hexline/server/internal/world"
)

type UnitAdded struct {
	Unit world.Unit
}

// UnitChanged carries the previous value when the unit was replaced; Old is
// nil for an in-place change such as a move.
type UnitChanged struct {
	Unit world.Unit
	Old  world.Unit
}

type UnitRemoved struct {
	Unit   world.Unit
	Reason world.Removal
}

// UnitsReplaced is fired once for a bulk replacement of every unit.
type UnitsReplaced struct {
	Count int
}

type PhaseChanged struct {
	Old phase.Phase
	New phase.Phase
}

// TurnChanged reports the player whose turn ended and the one whose turn
// begins. Either may be -1 when no player is bound.
type TurnChanged struct {
	OldPlayer int
	NewPlayer int
}

type BoardChanged struct {
	Board world.Board
}

type SettingsChanged struct {
	Old *config.Options
	New *config.Options
}

type GameEnded struct {
	WinnerPlayer int
	WinnerTeam   int
}

type ReportAdded struct {
	Round int
	Phase phase.Phase
	Text  string
}
