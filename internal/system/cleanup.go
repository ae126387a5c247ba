package system

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	coresys "github.com/hexline/server/internal/core/system"
	"github.com/hexline/server/internal/game"
	"github.com/hexline/server/internal/phase"
	"github.com/hexline/server/internal/world"
)

// CleanupSystem takes destroyed units off the board and burns down flares
// at the end of each round.
type CleanupSystem struct {
	game *game.Engine
	log  *zap.Logger
}

func NewCleanupSystem(g *game.Engine, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{game: g, log: log}
}

func (s *CleanupSystem) Phase() phase.Phase   { return phase.End }
func (s *CleanupSystem) Stage() coresys.Stage { return coresys.StageCleanup }

func (s *CleanupSystem) Update(_ context.Context) error {
	var wrecks []int
	for u := range s.game.Units().Select(world.Unit.Destroyed) {
		wrecks = append(wrecks, u.ID())
	}
	for _, id := range wrecks {
		if s.game.RemoveUnit(id, world.RemovalSalvageable) {
			s.game.AddReport(fmt.Sprintf("unit %d is destroyed", id))
		}
	}
	if burnt := s.game.AgeFlares(); burnt > 0 || len(wrecks) > 0 {
		s.log.Debug("round cleanup",
			zap.Int("round", s.game.Round()),
			zap.Int("wrecks", len(wrecks)),
			zap.Int("flares_burnt", burnt),
		)
	}
	return nil
}
