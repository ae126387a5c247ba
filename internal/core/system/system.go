package system

import (
	"context"

	"github.com/hexline/server/internal/phase"
)

// Stage orders the systems bound to the same game phase.
type Stage int

const (
	StageResolve Stage = iota // 0: settle declared actions
	StageCleanup              // 1: remove wrecks, age terrain effects
	StageVictory              // 2: end-of-game checks
	StagePersist              // 3: archive reports and casualties
)

// System is a piece of round logic the driver runs when its phase comes up.
type System interface {
	Phase() phase.Phase
	Stage() Stage
	Update(ctx context.Context) error
}
