package export

import (
	"errors"
	"fmt"
	"math"

	"github.com/Dosada05/swisscut/brackets"
	"github.com/Dosada05/swisscut/models"
	"github.com/Dosada05/swisscut/standings"
)

const (
	UploadedFrom  = "AesopsTables"
	SchemaURL     = "http://steffens.org/nrtm/nrtm-schema.json"
	SourceRepoURL = "https://github.com/Chemscribbler/sass"
	dateLayout    = "2006-01-02"
)

type Report struct {
	Name               string              `json:"name"`
	CutToTop           int                 `json:"cutToTop"`
	PreliminaryRounds  int                 `json:"preliminaryRounds"`
	Players            []Player            `json:"players"`
	EliminationPlayers []EliminationPlayer `json:"eliminationPlayers"`
	Rounds             [][]Match           `json:"rounds"`
	UploadedFrom       string              `json:"uploadedFrom"`
	Date               string              `json:"date"`
	Links              []Link              `json:"links"`
}

type Player struct {
	ID                         int     `json:"id"`
	Name                       string  `json:"name"`
	Rank                       int     `json:"rank"`
	CorpIdentity               string  `json:"corpIdentity"`
	RunnerIdentity             string  `json:"runnerIdentity"`
	MatchPoints                int     `json:"matchPoints"`
	StrengthOfSchedule         float64 `json:"strengthOfSchedule"`
	ExtendedStrengthOfSchedule float64 `json:"extendedStrengthOfSchedule"`
	SideBalance                int     `json:"sideBalance"`
}

type EliminationPlayer struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Rank int    `json:"rank"`
	Seed int    `json:"seed"`
}

type Match struct {
	TableNumber     *int `json:"tableNumber"`
	Player1         Seat `json:"player1"`
	Player2         Seat `json:"player2"`
	IntentionalDraw bool `json:"intentionalDraw"`
	EliminationGame bool `json:"eliminationGame"`
}

type Seat struct {
	ID          *int        `json:"id"`
	Role        models.Side `json:"role"`
	CorpScore   *int        `json:"corpScore"`
	RunnerScore *int        `json:"runnerScore"`
}

type Link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

// Assemble folds a tournament snapshot and its already computed standings
// into the report. It does no ranking of its own: swiss must come from
// standings.Rank and bracket may be nil when the tournament has no cut.
func Assemble(t *models.Tournament, swiss []standings.Standing, bracket *brackets.Bracket) (*Report, error) {
	if t == nil {
		return nil, errors.New("export: nil tournament")
	}

	report := &Report{
		Name:               t.Name,
		PreliminaryRounds:  t.CurrentRound,
		Players:            make([]Player, 0, len(swiss)),
		EliminationPlayers: []EliminationPlayer{},
		Rounds:             [][]Match{},
		UploadedFrom:       UploadedFrom,
		Date:               t.Date.Format(dateLayout),
		Links: []Link{
			{Rel: "schemaderivedfrom", Href: SchemaURL},
			{Rel: "uploadedfrom", Href: SourceRepoURL},
		},
	}

	for _, s := range swiss {
		report.Players = append(report.Players, Player{
			ID:                         s.Player.ID,
			Name:                       s.Player.Name,
			Rank:                       s.Rank,
			CorpIdentity:               s.Player.CorpIdentity,
			RunnerIdentity:             s.Player.RunnerIdentity,
			MatchPoints:                s.MatchPoints,
			StrengthOfSchedule:         Decimal(s.SOS),
			ExtendedStrengthOfSchedule: Decimal(s.ESOS),
			SideBalance:                s.SideBalance,
		})
	}

	swissMatches := t.SwissMatches()
	for round := 1; round <= t.CurrentRound; round++ {
		matches, err := exportMatches(standings.RoundMatches(swissMatches, round), false)
		if err != nil {
			return nil, fmt.Errorf("export swiss round %d: %w", round, err)
		}
		report.Rounds = append(report.Rounds, matches)
	}

	if bracket == nil {
		return report, nil
	}

	report.CutToTop = bracket.Cut().NumPlayers
	for _, cs := range bracket.Standings() {
		p, _ := t.Player(cs.PlayerID)
		report.EliminationPlayers = append(report.EliminationPlayers, EliminationPlayer{
			ID:   cs.PlayerID,
			Name: p.Name,
			Rank: cs.Rank,
			Seed: cs.Seed,
		})
	}

	cutRounds := bracket.Cut().Round
	if latest := bracket.LatestRound(); latest > cutRounds {
		cutRounds = latest
	}
	for round := 1; round <= cutRounds; round++ {
		matches, err := exportMatches(bracket.ConcludedRound(round), true)
		if err != nil {
			return nil, fmt.Errorf("export cut round %d: %w", round, err)
		}
		report.Rounds = append(report.Rounds, matches)
	}

	return report, nil
}

func exportMatches(matches []models.Match, elimination bool) ([]Match, error) {
	out := make([]Match, 0, len(matches))
	for _, m := range matches {
		if !m.Concluded {
			continue
		}
		corpScore, err := m.SideScore(models.SideCorp)
		if err != nil {
			return nil, err
		}
		runnerScore, err := m.SideScore(models.SideRunner)
		if err != nil {
			return nil, err
		}

		corpID := m.CorpPlayerID
		var runnerID *int
		if !m.IsBye && m.RunnerPlayerID != nil {
			id := *m.RunnerPlayerID
			runnerID = &id
		}

		out = append(out, Match{
			TableNumber:     m.TableNumber,
			Player1:         Seat{ID: &corpID, Role: models.SideCorp, CorpScore: corpScore},
			Player2:         Seat{ID: runnerID, Role: models.SideRunner, RunnerScore: runnerScore},
			IntentionalDraw: !elimination && m.Result == models.ResultIntentionalDraw,
			EliminationGame: elimination,
		})
	}
	return out, nil
}

// Decimal rounds a tie-break value to three places so it serialises as a
// short plain number.
func Decimal(v float64) float64 {
	return math.Round(v*1000) / 1000
}
