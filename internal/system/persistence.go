package system

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	coresys "github.com/hexline/server/internal/core/system"
	"github.com/hexline/server/internal/game"
	"github.com/hexline/server/internal/persist"
	"github.com/hexline/server/internal/phase"
	"github.com/hexline/server/internal/victory"
)

// Archive is the storage the persistence system writes to;
// *persist.ArchiveRepo in production.
type Archive interface {
	SaveGame(ctx context.Context, g persist.GameRow) error
	SaveReports(ctx context.Context, gameID uuid.UUID, reports []persist.ReportRow) error
	SaveCasualties(ctx context.Context, gameID uuid.UUID, rows []persist.CasualtyRow) error
}

// GameInfo is the fixed part of the archived game row.
type GameInfo struct {
	Name      string
	Scenario  string
	Seed      int64
	StartedAt time.Time
}

// PersistenceSystem archives the round's report lines and the units that
// left play. It runs once per round in the end report phase; Flush saves
// whatever is left when the game stops.
type PersistenceSystem struct {
	game    *game.Engine
	archive Archive
	info    GameInfo
	log     *zap.Logger
	timeout time.Duration

	savedReports    int
	savedCasualties int
}

func NewPersistenceSystem(g *game.Engine, archive Archive, info GameInfo, log *zap.Logger) *PersistenceSystem {
	return &PersistenceSystem{
		game:    g,
		archive: archive,
		info:    info,
		log:     log,
		timeout: 5 * time.Second,
	}
}

func (s *PersistenceSystem) Phase() phase.Phase   { return phase.EndReport }
func (s *PersistenceSystem) Stage() coresys.Stage { return coresys.StagePersist }

func (s *PersistenceSystem) Update(ctx context.Context) error {
	return s.save(ctx)
}

// Flush archives everything not yet saved, ignoring the round cadence.
// Called on shutdown and after the victory phase.
func (s *PersistenceSystem) Flush(ctx context.Context) error {
	return s.save(ctx)
}

func (s *PersistenceSystem) save(parent context.Context) error {
	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()

	id := s.game.ID()
	if err := s.archive.SaveGame(ctx, s.gameRow()); err != nil {
		s.log.Error("archive game failed", zap.Stringer("game", id), zap.Error(err))
		return err
	}

	reports := s.game.Reports()
	if s.savedReports > len(reports) {
		// The lounge wiped the log; start over.
		s.savedReports = 0
	}
	if pending := reports[s.savedReports:]; len(pending) > 0 {
		rows := make([]persist.ReportRow, len(pending))
		for i, r := range pending {
			rows[i] = persist.ReportRow{
				Round: r.Round,
				Phase: r.Phase.String(),
				Seq:   s.savedReports + i,
				Body:  r.Text,
			}
		}
		if err := s.archive.SaveReports(ctx, id, rows); err != nil {
			s.log.Error("archive reports failed", zap.Stringer("game", id), zap.Error(err))
			return err
		}
		s.savedReports = len(reports)
	}

	gone := s.game.Units().OutOfPlay()
	if s.savedCasualties > len(gone) {
		s.savedCasualties = 0
	}
	if pending := gone[s.savedCasualties:]; len(pending) > 0 {
		rows := make([]persist.CasualtyRow, len(pending))
		for i, u := range pending {
			rows[i] = persist.CasualtyRow{
				UnitID:  u.ID(),
				OwnerID: u.OwnerID(),
				Kind:    u.Kind().String(),
				Reason:  u.Removal().String(),
				Round:   s.game.Round(),
			}
		}
		if err := s.archive.SaveCasualties(ctx, id, rows); err != nil {
			s.log.Error("archive casualties failed", zap.Stringer("game", id), zap.Error(err))
			return err
		}
		s.savedCasualties = len(gone)
	}

	s.log.Debug("round archived",
		zap.Stringer("game", id),
		zap.Int("round", s.game.Round()),
		zap.Int("reports", s.savedReports),
		zap.Int("casualties", s.savedCasualties),
	)
	return nil
}

func (s *PersistenceSystem) gameRow() persist.GameRow {
	row := persist.GameRow{
		ID:           s.game.ID(),
		Name:         s.info.Name,
		Scenario:     s.info.Scenario,
		Seed:         s.info.Seed,
		Rounds:       s.game.Round(),
		WinnerPlayer: victory.None,
		WinnerTeam:   victory.None,
		StartedAt:    s.info.StartedAt,
	}
	if s.game.Ended() {
		now := time.Now()
		row.EndedAt = &now
		row.WinnerPlayer, row.WinnerTeam = s.game.Winner()
	}
	return row
}
