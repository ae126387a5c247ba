package system

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hexline/server/internal/action"
	coresys "github.com/hexline/server/internal/core/system"
	"github.com/hexline/server/internal/game"
	"github.com/hexline/server/internal/phase"
	"github.com/hexline/server/internal/world"
)

// ResolveSystem settles the attacks declared during a firing or physical
// phase. It runs in the matching report phase, after every turn is taken.
// Hit chance and damage come from the resolver; this system only purges,
// pairs, rolls and applies.
type ResolveSystem struct {
	game     *game.Engine
	resolver action.Resolver
	attack   phase.Phase
	log      *zap.Logger
}

// NewResolveSystem resolves the actions declared in attack (phase.Firing or
// phase.Physical).
func NewResolveSystem(g *game.Engine, r action.Resolver, attack phase.Phase, log *zap.Logger) *ResolveSystem {
	return &ResolveSystem{game: g, resolver: r, attack: attack, log: log}
}

func (s *ResolveSystem) Phase() phase.Phase   { return s.attack.Next() }
func (s *ResolveSystem) Stage() coresys.Stage { return coresys.StageResolve }

func (s *ResolveSystem) Update(ctx context.Context) error {
	ledger := s.game.Actions()
	ledger.RemoveInvalid(s.game.Lookup)

	if s.attack == phase.Physical {
		for _, id := range ledger.Attackers() {
			allowed := 1
			if u := s.game.Lookup(id); u != nil && u.Has(world.CapExtraPhysical) {
				allowed = 2
			}
			if n := ledger.DedupePhysical(id, allowed); n > 0 {
				s.log.Debug("extra physical attacks dropped", zap.Int("unit", id), zap.Int("count", n))
			}
		}
	}
	ledger.PairSides(s.resolver, s.game.Lookup)

	resolved := 0
	for _, a := range ledger.All() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !s.handles(a.Kind) {
			continue
		}
		for _, est := range a.Estimates() {
			s.roll(a, est)
		}
		resolved++
	}
	if resolved > 0 {
		s.log.Debug("attacks resolved",
			zap.String("phase", s.attack.String()),
			zap.Int("round", s.game.Round()),
			zap.Int("count", resolved),
		)
	}
	return nil
}

func (s *ResolveSystem) handles(k action.Kind) bool {
	if s.attack == phase.Physical {
		return k.Physical()
	}
	return k == action.KindWeaponAttack
}

func (s *ResolveSystem) roll(a *action.Action, est action.Estimate) {
	if est.ToHit >= action.Impossible {
		s.game.AddReport(fmt.Sprintf("unit %d %s on unit %d: impossible", a.UnitID, a.Kind, a.TargetID))
		return
	}
	roll := s.game.Turns().Roll2d6()
	if roll < est.ToHit {
		s.game.AddReport(fmt.Sprintf("unit %d %s on unit %d: needs %d, rolls %d, misses",
			a.UnitID, a.Kind, a.TargetID, est.ToHit, roll))
		return
	}

	target := s.game.Lookup(a.TargetID)
	d, ok := target.(world.Damageable)
	if !ok {
		s.game.AddReport(fmt.Sprintf("unit %d %s: target %d no longer on the board", a.UnitID, a.Kind, a.TargetID))
		return
	}
	destroyed := d.TakeDamage(est.Damage)
	s.game.Units().Replace(a.TargetID, target)
	text := fmt.Sprintf("unit %d %s on unit %d: needs %d, rolls %d, hits for %d",
		a.UnitID, a.Kind, a.TargetID, est.ToHit, roll, est.Damage)
	if destroyed {
		text += ", target destroyed"
	}
	s.game.AddReport(text)
}
