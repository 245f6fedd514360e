package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/Dosada05/swisscut/models"
)

type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

var ErrSchemaMissing = errors.New("database schema is not initialised")

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError // Возвращаем переданную ошибку "не найдено"
	}
	return nil
}

// mapPQError переводит ошибки Postgres в ошибки репозитория.
func mapPQError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case "42P01": // undefined_table
		return fmt.Errorf("%w: %s", ErrSchemaMissing, pqErr.Message)
	}
	switch pqErr.Constraint {
	case "cuts_tournament_id_key":
		return ErrCutAlreadyExists
	case "cut_matches_round_table_key":
		return fmt.Errorf("%w: %s", ErrCutChanged, pqErr.Detail)
	case "cut_matches_no_draw":
		return models.ErrDrawInElimination
	case "cut_players_cut_id_player_id_key", "cut_players_cut_id_seed_key":
		return fmt.Errorf("%w: %s", ErrCutSeedConflict, pqErr.Detail)
	}
	return err
}
