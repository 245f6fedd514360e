package brackets

import (
	"context"
	"fmt"
	"sort"

	"github.com/Dosada05/swisscut/models"
	"github.com/Dosada05/swisscut/standings"
)

// CutStanding is a rank within the cut. Records are not reported, only the
// order and how far each player got.
type CutStanding struct {
	Rank     int `json:"rank"`
	Seed     int `json:"seed"`
	PlayerID int `json:"player_id"`
	// EliminatedInRound is 0 while the player is still alive.
	EliminatedInRound int `json:"eliminated_in_round,omitempty"`
}

// Bracket is a validated read-only view over a cut snapshot.
type Bracket struct {
	cut    models.Cut
	seeds  map[int]int
	rounds map[int][]models.Match
}

// NewBracket validates the cut records. A missing cut, or one configured with
// zero players, returns models.ErrNoCut.
func NewBracket(cut *models.Cut) (*Bracket, error) {
	if cut == nil || cut.NumPlayers <= 0 {
		return nil, models.ErrNoCut
	}

	b := &Bracket{
		cut:    *cut,
		seeds:  make(map[int]int, len(cut.Players)),
		rounds: make(map[int][]models.Match),
	}

	players := make([]models.CutPlayer, len(cut.Players))
	copy(players, cut.Players)
	sort.SliceStable(players, func(i, j int) bool { return players[i].Seed < players[j].Seed })
	b.cut.Players = players

	for _, p := range players {
		b.seeds[p.PlayerID] = p.Seed
	}

	for _, m := range cut.Matches {
		if err := validateCutMatch(m); err != nil {
			return nil, err
		}
		b.rounds[m.Round] = append(b.rounds[m.Round], m)
	}
	for r := range b.rounds {
		b.rounds[r] = standings.OrderByTable(b.rounds[r])
	}

	return b, nil
}

func validateCutMatch(m models.Match) error {
	if m.Result.IsDraw() {
		return fmt.Errorf("cut match %d (round %d): %w", m.ID, m.Round, models.ErrDrawInElimination)
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("cut %w", err)
	}
	return nil
}

func (b *Bracket) Cut() models.Cut { return b.cut }

// Seed returns the player's seed, 0 if the player is not in the cut.
func (b *Bracket) Seed(playerID int) int { return b.seeds[playerID] }

// Round returns every match of the cut round ordered by table.
func (b *Bracket) Round(round int) []models.Match {
	return b.rounds[round]
}

// ConcludedRound returns only the finished matches of the round.
func (b *Bracket) ConcludedRound(round int) []models.Match {
	var out []models.Match
	for _, m := range b.rounds[round] {
		if m.Concluded {
			out = append(out, m)
		}
	}
	return out
}

// LatestRound is the highest round with recorded matches, 0 before the cut starts.
func (b *Bracket) LatestRound() int {
	latest := 0
	for r := range b.rounds {
		if r > latest {
			latest = r
		}
	}
	return latest
}

// TotalRounds is the number of rounds needed to crown a winner.
func (b *Bracket) TotalRounds() int {
	rounds := 0
	for size := 1; size < len(b.cut.Players); size <<= 1 {
		rounds++
	}
	return rounds
}

func winner(m models.Match) (int, bool) {
	if !m.Concluded {
		return 0, false
	}
	if m.IsBye || m.Result == models.ResultCorpWin {
		return m.CorpPlayerID, true
	}
	if m.Result == models.ResultRunnerWin && m.RunnerPlayerID != nil {
		return *m.RunnerPlayerID, true
	}
	return 0, false
}

func loser(m models.Match) (int, bool) {
	if !m.Concluded || m.IsBye || m.RunnerPlayerID == nil {
		return 0, false
	}
	switch m.Result {
	case models.ResultCorpWin:
		return *m.RunnerPlayerID, true
	case models.ResultRunnerWin:
		return m.CorpPlayerID, true
	}
	return 0, false
}

// Standings ranks players still alive in seed order, followed by eliminated
// players, the ones who lasted longer first and seed breaking ties.
func (b *Bracket) Standings() []CutStanding {
	eliminated := make(map[int]int)
	for r, matches := range b.rounds {
		for _, m := range matches {
			if id, ok := loser(m); ok {
				eliminated[id] = r
			}
		}
	}

	out := make([]CutStanding, 0, len(b.cut.Players))
	for _, p := range b.cut.Players {
		out = append(out, CutStanding{
			Seed:              p.Seed,
			PlayerID:          p.PlayerID,
			EliminatedInRound: eliminated[p.PlayerID],
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, c := out[i], out[j]
		aliveA, aliveC := a.EliminatedInRound == 0, c.EliminatedInRound == 0
		if aliveA != aliveC {
			return aliveA
		}
		if a.EliminatedInRound != c.EliminatedInRound {
			return a.EliminatedInRound > c.EliminatedInRound
		}
		return a.Seed < c.Seed
	})

	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// NextRound pairs the winners of the latest round along the planned bracket
// tree: each slot of the next round is either a seed carried over by a bye or
// the winner of the source match the generator linked to it. The better seed
// takes the corp seat. With no rounds played it returns the opening round.
func (b *Bracket) NextRound(ctx context.Context, gen BracketGenerator) ([]models.Match, error) {
	latest := b.LatestRound()
	if latest == 0 {
		return FirstRound(ctx, gen, b.cut.TournamentID, b.cut.Players)
	}

	winners := make(map[string]int, len(b.rounds[latest]))
	for _, m := range b.rounds[latest] {
		id, ok := winner(m)
		if !ok {
			return nil, fmt.Errorf("round %d: %w", latest, ErrRoundIncomplete)
		}
		winners[matchUID(latest, m.Table())] = id
	}

	planned, err := gen.GenerateBracket(ctx, GenerateBracketParams{TournamentID: b.cut.TournamentID, Seeds: b.cut.Players})
	if err != nil {
		return nil, fmt.Errorf("generate %s bracket: %w", gen.GetName(), err)
	}

	var next []models.Match
	for _, bm := range planned {
		if bm.Round != latest+1 {
			continue
		}
		corp, err := slotPlayer(bm.Participant1ID, bm.SourceMatch1UID, winners)
		if err != nil {
			return nil, err
		}
		runner, err := slotPlayer(bm.Participant2ID, bm.SourceMatch2UID, winners)
		if err != nil {
			return nil, err
		}
		if b.seeds[runner] < b.seeds[corp] {
			corp, runner = runner, corp
		}
		table := bm.OrderInRound
		next = append(next, models.Match{
			TournamentID:    b.cut.TournamentID,
			Round:           latest + 1,
			TableNumber:     &table,
			CorpPlayerID:    corp,
			RunnerPlayerID:  &runner,
			EliminationGame: true,
		})
	}
	if len(next) == 0 {
		return nil, ErrBracketComplete
	}
	return next, nil
}

func slotPlayer(participantID *int, sourceUID *string, winners map[string]int) (int, error) {
	if participantID != nil {
		return *participantID, nil
	}
	if sourceUID == nil {
		return 0, fmt.Errorf("%w: empty slot in planned bracket", ErrInvalidBracket)
	}
	id, ok := winners[*sourceUID]
	if !ok {
		return 0, fmt.Errorf("%w: no result stored for %s", ErrInvalidBracket, *sourceUID)
	}
	return id, nil
}

// Champion returns the winner of the final once it is played.
func (b *Bracket) Champion() (int, bool) {
	latest := b.LatestRound()
	matches := b.rounds[latest]
	if latest == 0 || len(matches) != 1 {
		return 0, false
	}
	return winner(matches[0])
}
