package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/swisscut/brackets"
	"github.com/Dosada05/swisscut/catalog"
	"github.com/Dosada05/swisscut/export"
	"github.com/Dosada05/swisscut/models"
	"github.com/Dosada05/swisscut/repositories"
	"github.com/Dosada05/swisscut/standings"
)

// IdentityCatalog is the part of catalog.Catalog used to colour standings.
type IdentityCatalog interface {
	Identities(ctx context.Context) ([]catalog.Identity, error)
	Faction(ctx context.Context, identity string) (string, error)
}

type PlayerRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type StandingView struct {
	Rank           int     `json:"rank"`
	PlayerID       int     `json:"player_id"`
	Name           string  `json:"name"`
	CorpIdentity   string  `json:"corp_identity"`
	RunnerIdentity string  `json:"runner_identity"`
	CorpColor      string  `json:"corp_color"`
	RunnerColor    string  `json:"runner_color"`
	MatchPoints    int     `json:"match_points"`
	SOS            float64 `json:"sos"`
	ESOS           float64 `json:"esos"`
	SideBalance    int     `json:"side_balance"`
	SideBias       string  `json:"side_bias"`
}

type MatchView struct {
	ID              int        `json:"id"`
	Round           int        `json:"round"`
	TableNumber     *int       `json:"table_number"`
	Corp            PlayerRef  `json:"corp"`
	Runner          *PlayerRef `json:"runner"`
	Score           string     `json:"score"`
	Concluded       bool       `json:"concluded"`
	IsBye           bool       `json:"is_bye"`
	EliminationGame bool       `json:"elimination_game"`
}

type CutStandingView struct {
	Rank              int    `json:"rank"`
	Seed              int    `json:"seed"`
	PlayerID          int    `json:"player_id"`
	Name              string `json:"name"`
	EliminatedInRound int    `json:"eliminated_in_round,omitempty"`
}

// CutView is the cut at a glance. Champion stays nil until the final is
// reported.
type CutView struct {
	NumPlayers  int               `json:"num_players"`
	Round       int               `json:"round"`
	TotalRounds int               `json:"total_rounds"`
	Champion    *PlayerRef        `json:"champion"`
	Standings   []CutStandingView `json:"standings"`
}

type StandingsService interface {
	SwissStandings(ctx context.Context, tournamentID int) ([]StandingView, error)
	RoundMatches(ctx context.Context, tournamentID, round int) ([]MatchView, error)
	CutStandings(ctx context.Context, tournamentID int) (*CutView, error)
	CutRound(ctx context.Context, tournamentID, round int) ([]MatchView, error)
}

type standingsService struct {
	tournamentRepo repositories.TournamentRepository
	identities     IdentityCatalog
	logger         *slog.Logger
}

func NewStandingsService(tournamentRepo repositories.TournamentRepository, identities IdentityCatalog, logger *slog.Logger) StandingsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &standingsService{tournamentRepo: tournamentRepo, identities: identities, logger: logger}
}

// loadSnapshot reads the tournament while the identity catalog is warmed in
// parallel. A catalog failure only costs the faction colours.
func (s *standingsService) loadSnapshot(ctx context.Context, tournamentID int) (*models.Tournament, bool, error) {
	var (
		snapshot     *models.Tournament
		catalogReady bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snapshot, err = s.tournamentRepo.LoadSnapshot(gctx, tournamentID)
		return err
	})
	if s.identities != nil {
		g.Go(func() error {
			if _, err := s.identities.Identities(gctx); err != nil {
				s.logger.Warn("identity catalog unavailable", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
				return nil
			}
			catalogReady = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, false, err
	}
	return snapshot, catalogReady, nil
}

func (s *standingsService) factionColor(ctx context.Context, identity string) string {
	faction, err := s.identities.Faction(ctx, identity)
	if err != nil {
		return catalog.FactionColor("")
	}
	return catalog.FactionColor(faction)
}

func (s *standingsService) SwissStandings(ctx context.Context, tournamentID int) ([]StandingView, error) {
	t, catalogReady, err := s.loadSnapshot(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	ranked, err := standings.Rank(t.Players, t.SwissMatches())
	if err != nil {
		return nil, integrityError(fmt.Errorf("tournament %d: %w", tournamentID, err))
	}

	views := make([]StandingView, 0, len(ranked))
	for _, st := range ranked {
		v := StandingView{
			Rank:           st.Rank,
			PlayerID:       st.Player.ID,
			Name:           st.Player.Name,
			CorpIdentity:   st.Player.CorpIdentity,
			RunnerIdentity: st.Player.RunnerIdentity,
			CorpColor:      catalog.FactionColor(""),
			RunnerColor:    catalog.FactionColor(""),
			MatchPoints:    st.MatchPoints,
			SOS:            export.Decimal(st.SOS),
			ESOS:           export.Decimal(st.ESOS),
			SideBalance:    st.SideBalance,
			SideBias:       export.SideBiasLabel(st.SideBalance),
		}
		if catalogReady {
			v.CorpColor = s.factionColor(ctx, st.Player.CorpIdentity)
			v.RunnerColor = s.factionColor(ctx, st.Player.RunnerIdentity)
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *standingsService) RoundMatches(ctx context.Context, tournamentID, round int) ([]MatchView, error) {
	t, err := s.tournamentRepo.LoadSnapshot(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if round < 1 || round > t.CurrentRound {
		return nil, fmt.Errorf("%w: round %d of tournament %d", ErrRoundNotFound, round, tournamentID)
	}
	return matchViews(t, standings.RoundMatches(t.SwissMatches(), round))
}

func (s *standingsService) CutStandings(ctx context.Context, tournamentID int) (*CutView, error) {
	t, err := s.tournamentRepo.LoadSnapshot(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	bracket, err := brackets.NewBracket(t.Cut)
	if err != nil {
		return nil, integrityError(err)
	}

	cutStandings := bracket.Standings()
	views := make([]CutStandingView, 0, len(cutStandings))
	for _, cs := range cutStandings {
		p, _ := t.Player(cs.PlayerID)
		views = append(views, CutStandingView{
			Rank:              cs.Rank,
			Seed:              cs.Seed,
			PlayerID:          cs.PlayerID,
			Name:              p.Name,
			EliminatedInRound: cs.EliminatedInRound,
		})
	}

	view := &CutView{
		NumPlayers:  t.Cut.NumPlayers,
		Round:       bracket.LatestRound(),
		TotalRounds: bracket.TotalRounds(),
		Standings:   views,
	}
	if id, ok := bracket.Champion(); ok {
		p, _ := t.Player(id)
		view.Champion = &PlayerRef{ID: id, Name: p.Name}
	}
	return view, nil
}

func (s *standingsService) CutRound(ctx context.Context, tournamentID, round int) ([]MatchView, error) {
	t, err := s.tournamentRepo.LoadSnapshot(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	bracket, err := brackets.NewBracket(t.Cut)
	if err != nil {
		return nil, integrityError(err)
	}
	matches := bracket.Round(round)
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: cut round %d of tournament %d", ErrRoundNotFound, round, tournamentID)
	}
	return matchViews(t, matches)
}

func matchViews(t *models.Tournament, matches []models.Match) ([]MatchView, error) {
	views := make([]MatchView, 0, len(matches))
	for _, m := range matches {
		score := ""
		if m.Concluded {
			var err error
			if score, err = m.Outcome().Display(); err != nil {
				return nil, integrityError(fmt.Errorf("match %d: %w", m.ID, err))
			}
		}

		corp, _ := t.Player(m.CorpPlayerID)
		v := MatchView{
			ID:              m.ID,
			Round:           m.Round,
			TableNumber:     m.TableNumber,
			Corp:            PlayerRef{ID: corp.ID, Name: corp.Name},
			Score:           score,
			Concluded:       m.Concluded,
			IsBye:           m.IsBye,
			EliminationGame: m.EliminationGame,
		}
		if !m.IsBye && m.RunnerPlayerID != nil {
			runner, _ := t.Player(*m.RunnerPlayerID)
			v.Runner = &PlayerRef{ID: runner.ID, Name: runner.Name}
		}
		views = append(views, v)
	}
	return views, nil
}
