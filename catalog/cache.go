package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Dosada05/swisscut/models"
)

const (
	datasetIdentities = "identities"
	datasetCards      = "cards"
)

// Store is the on-disk sqlite copy of the catalog. Each dataset carries the
// time it was fetched so the Catalog can decide when to refresh it.
type Store struct {
	db *sql.DB
}

func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create catalog cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog cache: %w", err)
	}
	// sqlite allows one writer; a single connection avoids SQLITE_BUSY on refresh.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS identities (
			name TEXT NOT NULL,
			side TEXT NOT NULL,
			faction TEXT NOT NULL,
			legal INTEGER NOT NULL DEFAULT 0
		);
		CREATE TABLE IF NOT EXISTS cards (
			title TEXT PRIMARY KEY,
			side TEXT NOT NULL,
			faction TEXT NOT NULL,
			type TEXT NOT NULL,
			influence INTEGER NOT NULL DEFAULT 0,
			stripped_title TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS fetches (
			dataset TEXT PRIMARY KEY,
			fetched_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create catalog tables: %w", err)
	}
	return nil
}

// FetchedAt returns when the dataset was last stored, false if never.
func (s *Store) FetchedAt(ctx context.Context, dataset string) (time.Time, bool, error) {
	var unix int64
	err := s.db.QueryRowContext(ctx, `SELECT fetched_at FROM fetches WHERE dataset = ?`, dataset).Scan(&unix)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read %s fetch time: %w", dataset, err)
	}
	return time.Unix(unix, 0), true, nil
}

func (s *Store) ReplaceIdentities(ctx context.Context, ids []Identity, fetchedAt time.Time) error {
	return s.replace(ctx, datasetIdentities, fetchedAt, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO identities (name, side, faction, legal) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, id := range ids {
			if _, err := stmt.ExecContext(ctx, id.Name, string(id.Side), id.Faction, id.Legal); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) ReplaceCards(ctx context.Context, cards []Card, fetchedAt time.Time) error {
	return s.replace(ctx, datasetCards, fetchedAt, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO cards (title, side, faction, type, influence, stripped_title)
			VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, c := range cards {
			if _, err := stmt.ExecContext(ctx, c.Title, string(c.Side), c.Faction, c.Type, c.Influence, c.StrippedTitle); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) replace(ctx context.Context, dataset string, fetchedAt time.Time, insert func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin %s refresh: %w", dataset, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM `+dataset); err != nil {
		return fmt.Errorf("failed to clear %s: %w", dataset, err)
	}
	if err = insert(tx); err != nil {
		return fmt.Errorf("failed to store %s: %w", dataset, err)
	}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO fetches (dataset, fetched_at) VALUES (?, ?)
		ON CONFLICT(dataset) DO UPDATE SET fetched_at = excluded.fetched_at`, dataset, fetchedAt.Unix()); err != nil {
		return fmt.Errorf("failed to stamp %s: %w", dataset, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s refresh: %w", dataset, err)
	}
	return nil
}

func (s *Store) Identities(ctx context.Context) ([]Identity, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, side, faction, legal FROM identities ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query identities: %w", err)
	}
	defer rows.Close()

	var out []Identity
	for rows.Next() {
		var id Identity
		var side string
		if err := rows.Scan(&id.Name, &side, &id.Faction, &id.Legal); err != nil {
			return nil, fmt.Errorf("failed to scan identity: %w", err)
		}
		id.Side = models.Side(side)
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating identities: %w", err)
	}
	return out, nil
}

func (s *Store) Cards(ctx context.Context) ([]Card, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT title, side, faction, type, influence, stripped_title FROM cards ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer rows.Close()

	var out []Card
	for rows.Next() {
		var c Card
		var side string
		if err := rows.Scan(&c.Title, &side, &c.Faction, &c.Type, &c.Influence, &c.StrippedTitle); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		c.Side = models.Side(side)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cards: %w", err)
	}
	return out, nil
}
