package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/swisscut/models"
)

var ErrTournamentNotFound = errors.New("tournament not found")

type TournamentRepository interface {
	// LoadSnapshot reads the tournament with its players, Swiss matches and cut
	// inside one read-only REPEATABLE READ transaction, so every round is seen
	// as of the same instant.
	LoadSnapshot(ctx context.Context, tournamentID int) (*models.Tournament, error)
	GetByID(ctx context.Context, exec SQLExecutor, tournamentID int) (*models.Tournament, error)
	ListIDs(ctx context.Context) ([]int, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentRepository) LoadSnapshot(ctx context.Context, tournamentID int) (_ *models.Tournament, err error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) && err == nil {
			err = fmt.Errorf("failed to close snapshot transaction: %w", rbErr)
		}
	}()

	t, err := r.GetByID(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.Players, err = listPlayers(ctx, tx, tournamentID); err != nil {
		return nil, err
	}
	if t.Matches, err = listMatches(ctx, tx, tournamentID); err != nil {
		return nil, err
	}
	if t.Cut, err = getCut(ctx, tx, tournamentID); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, tournamentID int) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `SELECT id, name, date, current_round, created_at FROM tournaments WHERE id = $1`

	var t models.Tournament
	err := executor.QueryRowContext(ctx, query, tournamentID).Scan(&t.ID, &t.Name, &t.Date, &t.CurrentRound, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", tournamentID, mapPQError(err))
	}
	return &t, nil
}

func (r *postgresTournamentRepository) ListIDs(ctx context.Context) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM tournaments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", mapPQError(err))
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan tournament id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Registration order is the final tie-break, so players come back by id.
func listPlayers(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Player, error) {
	query := `
		SELECT id, tournament_id, name, corp, runner
		FROM players
		WHERE tournament_id = $1
		ORDER BY id ASC`
	rows, err := exec.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players for tournament %d: %w", tournamentID, mapPQError(err))
	}
	defer rows.Close()

	players := make([]models.Player, 0)
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.ID, &p.TournamentID, &p.Name, &p.CorpIdentity, &p.RunnerIdentity); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating players: %w", err)
	}
	return players, nil
}

func listMatches(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Match, error) {
	query := `
		SELECT id, tournament_id, rnd, table_number, corp_player_id, runner_player_id, result, concluded, is_bye
		FROM matches
		WHERE tournament_id = $1
		ORDER BY rnd ASC, table_number ASC NULLS LAST, id ASC`
	rows, err := exec.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, mapPQError(err))
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		m.TournamentID = tournamentID
		matches = append(matches, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matches: %w", err)
	}
	return matches, nil
}

func getCut(ctx context.Context, exec SQLExecutor, tournamentID int) (*models.Cut, error) {
	var cut models.Cut
	err := exec.QueryRowContext(ctx,
		`SELECT id, tournament_id, num_players, rnd FROM cuts WHERE tournament_id = $1`, tournamentID,
	).Scan(&cut.ID, &cut.TournamentID, &cut.NumPlayers, &cut.Round)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cut for tournament %d: %w", tournamentID, mapPQError(err))
	}

	if cut.Players, err = listCutPlayers(ctx, exec, cut.ID); err != nil {
		return nil, err
	}
	if cut.Matches, err = listCutMatches(ctx, exec, cut.ID, tournamentID); err != nil {
		return nil, err
	}
	return &cut, nil
}

func listCutPlayers(ctx context.Context, exec SQLExecutor, cutID int) ([]models.CutPlayer, error) {
	rows, err := exec.QueryContext(ctx,
		`SELECT id, cut_id, player_id, seed FROM cut_players WHERE cut_id = $1 ORDER BY seed ASC`, cutID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cut players for cut %d: %w", cutID, mapPQError(err))
	}
	defer rows.Close()

	players := make([]models.CutPlayer, 0)
	for rows.Next() {
		var p models.CutPlayer
		if err := rows.Scan(&p.ID, &p.CutID, &p.PlayerID, &p.Seed); err != nil {
			return nil, fmt.Errorf("failed to scan cut player: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cut players: %w", err)
	}
	return players, nil
}

// Cut matches reference cut seats; the join resolves them back to player ids.
func listCutMatches(ctx context.Context, exec SQLExecutor, cutID, tournamentID int) ([]models.Match, error) {
	query := `
		SELECT cm.id, cm.rnd, cm.table_number, cp.player_id, rp.player_id, cm.result, cm.concluded, cm.is_bye
		FROM cut_matches cm
		JOIN cut_players cp ON cp.id = cm.corp_player_id
		LEFT JOIN cut_players rp ON rp.id = cm.runner_player_id
		WHERE cm.cut_id = $1
		ORDER BY cm.rnd ASC, cm.table_number ASC NULLS LAST, cm.id ASC`
	rows, err := exec.QueryContext(ctx, query, cutID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cut matches for cut %d: %w", cutID, mapPQError(err))
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		var (
			m      models.Match
			table  sql.NullInt64
			runner sql.NullInt64
			result string
		)
		if err := rows.Scan(&m.ID, &m.Round, &table, &m.CorpPlayerID, &runner, &result, &m.Concluded, &m.IsBye); err != nil {
			return nil, fmt.Errorf("failed to scan cut match: %w", err)
		}
		if m.Result, err = models.ParseResult(result); err != nil {
			return nil, fmt.Errorf("cut match %d: %w", m.ID, err)
		}
		m.TableNumber = nullableInt(table)
		m.RunnerPlayerID = nullableInt(runner)
		m.TournamentID = tournamentID
		m.EliminationGame = true
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cut matches: %w", err)
	}
	return matches, nil
}

func scanMatch(rowScanner interface{ Scan(...interface{}) error }) (*models.Match, error) {
	var (
		m      models.Match
		table  sql.NullInt64
		runner sql.NullInt64
		result string
	)
	if err := rowScanner.Scan(&m.ID, &m.TournamentID, &m.Round, &table, &m.CorpPlayerID, &runner, &result, &m.Concluded, &m.IsBye); err != nil {
		return nil, fmt.Errorf("failed to scan match: %w", err)
	}
	var err error
	if m.Result, err = models.ParseResult(result); err != nil {
		return nil, fmt.Errorf("match %d: %w", m.ID, err)
	}
	m.TableNumber = nullableInt(table)
	m.RunnerPlayerID = nullableInt(runner)
	return &m, nil
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
