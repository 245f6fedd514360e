package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/swisscut/models"
)

var (
	ErrCutNotFound      = errors.New("cut not found")
	ErrCutAlreadyExists = errors.New("tournament already has a cut")
	ErrCutSeedConflict  = errors.New("cut seed conflict")
	ErrCutChanged       = errors.New("cut was changed by another request")
)

type CutRepository interface {
	// Create stores the cut and its seeds. cut.ID and the seed ids are filled in.
	Create(ctx context.Context, exec SQLExecutor, cut *models.Cut) error
	// AddMatches stores cut matches for a round. Player ids are mapped onto
	// the cut seats of the same cut.
	AddMatches(ctx context.Context, exec SQLExecutor, cutID int, matches []models.Match) error
	SetRound(ctx context.Context, exec SQLExecutor, cutID, round int) error
	// LockRound reads the stored round and holds the cut row until the
	// transaction in exec ends.
	LockRound(ctx context.Context, exec SQLExecutor, cutID int) (int, error)
}

type postgresCutRepository struct {
	db *sql.DB
}

func NewPostgresCutRepository(db *sql.DB) CutRepository {
	return &postgresCutRepository{db: db}
}

func (r *postgresCutRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresCutRepository) Create(ctx context.Context, exec SQLExecutor, cut *models.Cut) error {
	executor := r.getExecutor(exec)

	err := executor.QueryRowContext(ctx,
		`INSERT INTO cuts (tournament_id, num_players, rnd) VALUES ($1, $2, $3) RETURNING id`,
		cut.TournamentID, cut.NumPlayers, cut.Round,
	).Scan(&cut.ID)
	if err != nil {
		return fmt.Errorf("failed to create cut for tournament %d: %w", cut.TournamentID, mapPQError(err))
	}

	for i := range cut.Players {
		p := &cut.Players[i]
		p.CutID = cut.ID
		err := executor.QueryRowContext(ctx,
			`INSERT INTO cut_players (cut_id, player_id, seed) VALUES ($1, $2, $3) RETURNING id`,
			cut.ID, p.PlayerID, p.Seed,
		).Scan(&p.ID)
		if err != nil {
			return fmt.Errorf("failed to seed player %d: %w", p.PlayerID, mapPQError(err))
		}
	}
	return nil
}

func (r *postgresCutRepository) AddMatches(ctx context.Context, exec SQLExecutor, cutID int, matches []models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO cut_matches (cut_id, rnd, table_number, corp_player_id, runner_player_id, result, concluded, is_bye)
		VALUES (
			$1, $2, $3,
			(SELECT id FROM cut_players WHERE cut_id = $1 AND player_id = $4),
			(SELECT id FROM cut_players WHERE cut_id = $1 AND player_id = $5),
			$6, $7, $8)
		RETURNING id`

	for i := range matches {
		m := &matches[i]
		var runner interface{}
		if m.RunnerPlayerID != nil {
			runner = *m.RunnerPlayerID
		}
		var table interface{}
		if m.TableNumber != nil {
			table = *m.TableNumber
		}
		err := executor.QueryRowContext(ctx, query,
			cutID, m.Round, table, m.CorpPlayerID, runner, m.Result.String(), m.Concluded, m.IsBye,
		).Scan(&m.ID)
		if err != nil {
			return fmt.Errorf("failed to add cut match (round %d, table %d): %w", m.Round, m.Table(), mapPQError(err))
		}
	}
	return nil
}

func (r *postgresCutRepository) SetRound(ctx context.Context, exec SQLExecutor, cutID, round int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE cuts SET rnd = $1 WHERE id = $2`, round, cutID)
	if err != nil {
		return fmt.Errorf("failed to set cut %d round: %w", cutID, mapPQError(err))
	}
	return checkAffectedRows(result, ErrCutNotFound)
}

func (r *postgresCutRepository) LockRound(ctx context.Context, exec SQLExecutor, cutID int) (int, error) {
	executor := r.getExecutor(exec)
	var round int
	err := executor.QueryRowContext(ctx, `SELECT rnd FROM cuts WHERE id = $1 FOR UPDATE`, cutID).Scan(&round)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrCutNotFound
		}
		return 0, fmt.Errorf("failed to lock cut %d: %w", cutID, mapPQError(err))
	}
	return round, nil
}
