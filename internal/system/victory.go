package system

import (
	"context"

	coresys "github.com/hexline/server/internal/core/system"
	"github.com/hexline/server/internal/game"
	"github.com/hexline/server/internal/phase"
)

// VictorySystem checks the end conditions once the round is cleaned up.
type VictorySystem struct {
	game *game.Engine
}

func NewVictorySystem(g *game.Engine) *VictorySystem {
	return &VictorySystem{game: g}
}

func (s *VictorySystem) Phase() phase.Phase   { return phase.End }
func (s *VictorySystem) Stage() coresys.Stage { return coresys.StageVictory }

func (s *VictorySystem) Update(_ context.Context) error {
	s.game.CheckVictory()
	return nil
}
