package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GameRow is one archived game.
type GameRow struct {
	ID           uuid.UUID
	Name         string
	Scenario     string
	Seed         int64
	Rounds       int
	WinnerPlayer int
	WinnerTeam   int
	StartedAt    time.Time
	EndedAt      *time.Time // nil while the game runs
}

// ReportRow is one line of a round report.
type ReportRow struct {
	Round int
	Phase string
	Seq   int
	Body  string
}

// CasualtyRow is a unit that left play.
type CasualtyRow struct {
	UnitID  int
	OwnerID int
	Kind    string
	Reason  string
	Round   int
}

// ArchiveRepo stores finished and running games for post-mortem reporting.
type ArchiveRepo struct {
	db *DB
}

func NewArchiveRepo(db *DB) *ArchiveRepo {
	return &ArchiveRepo{db: db}
}

// SaveGame inserts or updates the game row.
func (r *ArchiveRepo) SaveGame(ctx context.Context, g GameRow) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO games (id, name, scenario, seed, rounds, winner_player, winner_team, started_at, ended_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO UPDATE SET
		     rounds = EXCLUDED.rounds,
		     winner_player = EXCLUDED.winner_player,
		     winner_team = EXCLUDED.winner_team,
		     ended_at = EXCLUDED.ended_at`,
		g.ID.String(), g.Name, g.Scenario, g.Seed, g.Rounds, g.WinnerPlayer, g.WinnerTeam, g.StartedAt, g.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("save game %s: %w", g.ID, err)
	}
	return nil
}

// SaveReports writes report lines in one transaction. Lines already stored
// for the same round and sequence are left alone, so a round can be flushed
// more than once.
func (r *ArchiveRepo) SaveReports(ctx context.Context, gameID uuid.UUID, reports []ReportRow) error {
	if len(reports) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("reports begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, rep := range reports {
		if _, err := tx.Exec(ctx,
			`INSERT INTO round_reports (game_id, round, phase, seq, body)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (game_id, round, seq) DO NOTHING`,
			gameID.String(), rep.Round, rep.Phase, rep.Seq, rep.Body,
		); err != nil {
			return fmt.Errorf("reports insert: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// SaveCasualties writes the units that left play in one transaction.
func (r *ArchiveRepo) SaveCasualties(ctx context.Context, gameID uuid.UUID, rows []CasualtyRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("casualties begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, c := range rows {
		if _, err := tx.Exec(ctx,
			`INSERT INTO casualties (game_id, unit_id, owner_id, kind, reason, round)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (game_id, unit_id) DO NOTHING`,
			gameID.String(), c.UnitID, c.OwnerID, c.Kind, c.Reason, c.Round,
		); err != nil {
			return fmt.Errorf("casualties insert: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// LoadGame returns the archived game, or nil if there is none.
func (r *ArchiveRepo) LoadGame(ctx context.Context, id uuid.UUID) (*GameRow, error) {
	var g GameRow
	var raw string
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id::text, name, scenario, seed, rounds, winner_player, winner_team, started_at, ended_at
		 FROM games WHERE id = $1`, id.String(),
	).Scan(&raw, &g.Name, &g.Scenario, &g.Seed, &g.Rounds, &g.WinnerPlayer, &g.WinnerTeam, &g.StartedAt, &g.EndedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load game %s: %w", id, err)
	}
	if g.ID, err = uuid.Parse(raw); err != nil {
		return nil, fmt.Errorf("load game %s: %w", id, err)
	}
	return &g, nil
}

// LoadReports returns the report lines of a game in round order.
func (r *ArchiveRepo) LoadReports(ctx context.Context, gameID uuid.UUID) ([]ReportRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT round, phase, seq, body
		 FROM round_reports
		 WHERE game_id = $1
		 ORDER BY round, seq`, gameID.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ReportRow
	for rows.Next() {
		var rep ReportRow
		if err := rows.Scan(&rep.Round, &rep.Phase, &rep.Seq, &rep.Body); err != nil {
			return nil, err
		}
		result = append(result, rep)
	}
	return result, rows.Err()
}
