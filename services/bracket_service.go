package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/swisscut/brackets"
	"github.com/Dosada05/swisscut/models"
	"github.com/Dosada05/swisscut/repositories"
	"github.com/Dosada05/swisscut/standings"
)

type CutUpdatedPayload struct {
	TournamentID int            `json:"tournament_id"`
	Round        int            `json:"round"`
	Matches      []models.Match `json:"matches"`
	Message      string         `json:"message"`
}

// TxBeginner opens the transaction a cut change is written in. *sql.DB
// satisfies it.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type BracketService interface {
	// OpenCut seeds the top numPlayers of the current Swiss order and stores
	// the first elimination round.
	OpenCut(ctx context.Context, tournamentID, numPlayers int) (*models.Cut, error)
	// AdvanceCut stores the next elimination round once the latest one is
	// fully reported.
	AdvanceCut(ctx context.Context, tournamentID int) ([]models.Match, error)
}

type bracketService struct {
	db             TxBeginner
	tournamentRepo repositories.TournamentRepository
	cutRepo        repositories.CutRepository
	generator      brackets.BracketGenerator
	notifier       Notifier
	logger         *slog.Logger
}

func NewBracketService(
	db TxBeginner,
	tournamentRepo repositories.TournamentRepository,
	cutRepo repositories.CutRepository,
	notifier Notifier,
	logger *slog.Logger,
) BracketService {
	if logger == nil {
		logger = slog.Default()
	}
	return &bracketService{
		db:             db,
		tournamentRepo: tournamentRepo,
		cutRepo:        cutRepo,
		generator:      brackets.NewSingleEliminationGenerator(),
		notifier:       notifier,
		logger:         logger,
	}
}

// inTx runs fn in a transaction: commit when fn succeeds, rollback otherwise.
func (s *bracketService) inTx(ctx context.Context, fn func(tx *sql.Tx) error) (txErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.ErrorContext(ctx, "rollback failed", slog.Any("error", rbErr), slog.Any("cause", txErr))
				txErr = fmt.Errorf("transaction processing error: %w (rollback also failed: %v)", txErr, rbErr)
			}
		} else if cErr := tx.Commit(); cErr != nil {
			txErr = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()
	return fn(tx)
}

func (s *bracketService) OpenCut(ctx context.Context, tournamentID, numPlayers int) (*models.Cut, error) {
	if numPlayers < 2 {
		return nil, fmt.Errorf("%w: cut needs at least 2 players, got %d", ErrInvalidCutSize, numPlayers)
	}

	t, err := s.tournamentRepo.LoadSnapshot(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.HasCut() {
		return nil, ErrCutAlreadyExists
	}

	swiss, err := standings.Rank(t.Players, t.SwissMatches())
	if err != nil {
		return nil, integrityError(fmt.Errorf("tournament %d: %w", tournamentID, err))
	}
	seeds, err := brackets.SeedCut(swiss, numPlayers)
	if err != nil {
		if errors.Is(err, brackets.ErrNotEnoughSeeds) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCutSize, err)
		}
		return nil, err
	}
	firstRound, err := brackets.FirstRound(ctx, s.generator, tournamentID, seeds)
	if err != nil {
		return nil, integrityError(err)
	}

	cut := &models.Cut{
		TournamentID: tournamentID,
		NumPlayers:   numPlayers,
		Round:        1,
		Players:      seeds,
	}
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.cutRepo.Create(ctx, tx, cut); err != nil {
			return err
		}
		return s.cutRepo.AddMatches(ctx, tx, cut.ID, firstRound)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open cut for tournament %d: %w", tournamentID, err)
	}
	cut.Matches = firstRound

	s.logger.InfoContext(ctx, "cut opened",
		slog.Int("tournament_id", tournamentID),
		slog.Int("cut_id", cut.ID),
		slog.Int("num_players", numPlayers),
		slog.Int("first_round_matches", len(firstRound)))

	s.notify(tournamentID, 1, firstRound, fmt.Sprintf("Top %d cut opened", numPlayers))
	return cut, nil
}

func (s *bracketService) AdvanceCut(ctx context.Context, tournamentID int) ([]models.Match, error) {
	t, err := s.tournamentRepo.LoadSnapshot(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	bracket, err := brackets.NewBracket(t.Cut)
	if err != nil {
		return nil, integrityError(err)
	}

	next, err := bracket.NextRound(ctx, s.generator)
	if err != nil {
		return nil, integrityError(err)
	}
	if len(next) == 0 {
		return nil, integrityError(fmt.Errorf("%w: no pairings after round %d", brackets.ErrInvalidBracket, bracket.LatestRound()))
	}
	round := next[0].Round

	cutID, pairedFrom := t.Cut.ID, t.Cut.Round
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		// Пока строка cuts заблокирована, другой запрос не может продвинуть ту же сетку.
		stored, err := s.cutRepo.LockRound(ctx, tx, cutID)
		if err != nil {
			return err
		}
		if stored != pairedFrom {
			return fmt.Errorf("%w: cut is at round %d, pairings were built for round %d", ErrCutChanged, stored, pairedFrom)
		}
		if err := s.cutRepo.AddMatches(ctx, tx, cutID, next); err != nil {
			return err
		}
		return s.cutRepo.SetRound(ctx, tx, cutID, round)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to advance cut for tournament %d: %w", tournamentID, err)
	}

	s.logger.InfoContext(ctx, "cut advanced",
		slog.Int("tournament_id", tournamentID),
		slog.Int("cut_id", cutID),
		slog.Int("round", round))

	s.notify(tournamentID, round, next, fmt.Sprintf("Elimination round %d paired", round))
	return next, nil
}

func (s *bracketService) notify(tournamentID, round int, matches []models.Match, message string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(tournamentID, brackets.MessageCutUpdated, CutUpdatedPayload{
		TournamentID: tournamentID,
		Round:        round,
		Matches:      matches,
		Message:      message,
	})
	s.notifier.Notify(tournamentID, brackets.MessageStandingsUpdated, map[string]int{"tournament_id": tournamentID})
}
