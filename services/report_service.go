package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/swisscut/brackets"
	"github.com/Dosada05/swisscut/export"
	"github.com/Dosada05/swisscut/models"
	"github.com/Dosada05/swisscut/repositories"
	"github.com/Dosada05/swisscut/standings"
	"github.com/Dosada05/swisscut/storage"
)

// Notifier pushes a message to everyone watching a tournament.
type Notifier interface {
	Notify(tournamentID int, messageType string, payload interface{})
}

type ReportPublishedPayload struct {
	TournamentID int    `json:"tournament_id"`
	URL          string `json:"url"`
}

type ReportService interface {
	BuildReport(ctx context.Context, tournamentID int) (*export.Report, error)
	BuildReports(ctx context.Context, tournamentIDs []int) ([]*export.Report, error)
	PublishReport(ctx context.Context, tournamentID int) (*storage.UploadResult, error)
}

type reportService struct {
	tournamentRepo repositories.TournamentRepository
	uploader       storage.FileUploader
	notifier       Notifier
	logger         *slog.Logger
	// сколько отчётов собирается одновременно в BuildReports
	parallelism int
}

func NewReportService(
	tournamentRepo repositories.TournamentRepository,
	uploader storage.FileUploader,
	notifier Notifier,
	logger *slog.Logger,
) ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &reportService{
		tournamentRepo: tournamentRepo,
		uploader:       uploader,
		notifier:       notifier,
		logger:         logger,
		parallelism:    4,
	}
}

// assembleReport is the whole read path of an export: rank the Swiss rounds,
// rebuild the bracket if there is a cut, and fold both into the report.
func assembleReport(t *models.Tournament) (*export.Report, error) {
	swiss, err := standings.Rank(t.Players, t.SwissMatches())
	if err != nil {
		return nil, integrityError(fmt.Errorf("tournament %d: %w", t.ID, err))
	}

	var bracket *brackets.Bracket
	if t.HasCut() {
		if bracket, err = brackets.NewBracket(t.Cut); err != nil {
			return nil, integrityError(fmt.Errorf("tournament %d: %w", t.ID, err))
		}
	}

	report, err := export.Assemble(t, swiss, bracket)
	if err != nil {
		return nil, integrityError(fmt.Errorf("tournament %d: %w", t.ID, err))
	}
	return report, nil
}

func (s *reportService) BuildReport(ctx context.Context, tournamentID int) (*export.Report, error) {
	t, err := s.tournamentRepo.LoadSnapshot(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return assembleReport(t)
}

// BuildReports exports several tournaments concurrently. Each report reads its
// own snapshot and shares nothing with the others; the result keeps the order
// of tournamentIDs.
func (s *reportService) BuildReports(ctx context.Context, tournamentIDs []int) ([]*export.Report, error) {
	reports := make([]*export.Report, len(tournamentIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)
	for i, id := range tournamentIDs {
		i, id := i, id
		g.Go(func() error {
			report, err := s.BuildReport(gctx, id)
			if err != nil {
				return fmt.Errorf("report for tournament %d: %w", id, err)
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func (s *reportService) PublishReport(ctx context.Context, tournamentID int) (*storage.UploadResult, error) {
	if s.uploader == nil {
		return nil, ErrPublishingDisabled
	}

	report, err := s.BuildReport(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode report for tournament %d: %w", tournamentID, err)
	}

	uploaded, err := s.uploader.Upload(ctx, storage.ReportKey(tournamentID), "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to upload report for tournament %d: %w", tournamentID, err)
	}
	s.logger.InfoContext(ctx, "report published",
		slog.Int("tournament_id", tournamentID),
		slog.String("key", uploaded.Key),
		slog.String("url", uploaded.Location))

	if s.notifier != nil {
		s.notifier.Notify(tournamentID, brackets.MessageReportPublished, ReportPublishedPayload{
			TournamentID: tournamentID,
			URL:          uploaded.Location,
		})
	}
	return uploaded, nil
}
