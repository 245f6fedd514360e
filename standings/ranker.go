package standings

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/Dosada05/swisscut/models"
)

type Standing struct {
	Rank          int           `json:"rank"`
	Player        models.Player `json:"player"`
	MatchPoints   int           `json:"match_points"`
	SOS           float64       `json:"sos"`
	ESOS          float64       `json:"esos"`
	SideBalance   int           `json:"side_balance"`
	MatchesPlayed int           `json:"matches_played"`
	Opponents     []int         `json:"opponents,omitempty"`

	sos  *big.Rat
	esos *big.Rat
}

// ExactSOS returns the strength of schedule as an exact fraction.
func (s Standing) ExactSOS() *big.Rat { return ratOrZero(s.sos) }

func (s Standing) ExactESOS() *big.Rat { return ratOrZero(s.esos) }

type tally struct {
	points    int
	played    int
	opponents []int
}

// Rank orders the players by match points, then SOS, then ESOS. Only concluded
// Swiss matches count. Players left tied on all three keep the order they were
// passed in, which callers use for registration order.
func Rank(players []models.Player, matches []models.Match) ([]Standing, error) {
	tallies := make(map[int]*tally, len(players))
	get := func(id int) *tally {
		t, ok := tallies[id]
		if !ok {
			t = &tally{}
			tallies[id] = t
		}
		return t
	}

	for _, m := range matches {
		if !m.Concluded || m.EliminationGame {
			continue
		}
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("rank swiss standings: %w", err)
		}

		corpScore, err := m.Outcome().Score(models.SideCorp)
		if err != nil {
			return nil, fmt.Errorf("rank swiss standings: match %d: %w", m.ID, err)
		}
		corp := get(m.CorpPlayerID)
		corp.points += corpScore
		corp.played++

		if m.IsBye {
			continue
		}

		runnerScore, err := m.Outcome().Score(models.SideRunner)
		if err != nil {
			return nil, fmt.Errorf("rank swiss standings: match %d: %w", m.ID, err)
		}
		runner := get(*m.RunnerPlayerID)
		runner.points += runnerScore
		runner.played++

		corp.opponents = append(corp.opponents, *m.RunnerPlayerID)
		runner.opponents = append(runner.opponents, m.CorpPlayerID)
	}

	sos := make(map[int]*big.Rat, len(tallies))
	for id, t := range tallies {
		if len(t.opponents) == 0 {
			sos[id] = new(big.Rat)
			continue
		}
		sum := 0
		for _, opp := range t.opponents {
			sum += tallies[opp].points
		}
		sos[id] = big.NewRat(int64(sum), int64(len(t.opponents)))
	}

	balances := SideBalances(matches)

	result := make([]Standing, 0, len(players))
	for _, p := range players {
		t := get(p.ID)
		playerSOS := ratOrZero(sos[p.ID])

		playerESOS := new(big.Rat)
		if len(t.opponents) > 0 {
			for _, opp := range t.opponents {
				playerESOS.Add(playerESOS, ratOrZero(sos[opp]))
			}
			playerESOS.Quo(playerESOS, big.NewRat(int64(len(t.opponents)), 1))
		}

		result = append(result, Standing{
			Player:        p,
			MatchPoints:   t.points,
			MatchesPlayed: t.played,
			Opponents:     append([]int(nil), t.opponents...),
			SideBalance:   balances[p.ID],
			sos:           playerSOS,
			esos:          playerESOS,
			SOS:           ratFloat(playerSOS),
			ESOS:          ratFloat(playerESOS),
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.MatchPoints != b.MatchPoints {
			return a.MatchPoints > b.MatchPoints
		}
		if c := a.sos.Cmp(b.sos); c != 0 {
			return c > 0
		}
		return a.esos.Cmp(b.esos) > 0
	})

	for i := range result {
		result[i].Rank = i + 1
	}

	return result, nil
}

func ratOrZero(r *big.Rat) *big.Rat {
	if r == nil {
		return new(big.Rat)
	}
	return r
}

func ratFloat(r *big.Rat) float64 {
	f, _ := r.Float64()
	return f
}
