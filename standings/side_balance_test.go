package standings

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Dosada05/swisscut/models"
)

func TestSideBalance(t *testing.T) {
	const me = 1
	seated := func(corpGames, runnerGames int) []models.Match {
		var out []models.Match
		id := 0
		for i := 0; i < corpGames; i++ {
			id++
			out = append(out, game(id, id, me, 100+id, models.ResultCorpWin))
		}
		for i := 0; i < runnerGames; i++ {
			id++
			out = append(out, game(id, id, 100+id, me, models.ResultCorpWin))
		}
		return out
	}

	cases := []struct {
		name         string
		corp, runner int
		expected     int
	}{
		{"corp heavy", 3, 1, 2},
		{"runner heavy", 1, 3, -2},
		{"balanced", 2, 2, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			matches := seated(tc.corp, tc.runner)
			assert.Equal(t, tc.expected, SideBalance(me, matches))
			assert.Equal(t, tc.expected, SideBalances(matches)[me])
		})
	}
}

func TestSideBalanceSkipsPendingAndCut(t *testing.T) {
	pending := game(1, 1, 1, 2, models.ResultUnset)
	pending.Concluded = false
	cut := game(2, 1, 1, 2, models.ResultCorpWin)
	cut.EliminationGame = true

	matches := []models.Match{pending, cut, bye(3, 2, 1)}
	assert.Equal(t, 1, SideBalance(1, matches))
	assert.Equal(t, 0, SideBalance(2, matches))
}

func TestByeWithRecordedRunner(t *testing.T) {
	stray := bye(1, 1, 1)
	stray.RunnerPlayerID = intPtr(2)
	matches := []models.Match{stray}

	assert.Equal(t, 0, SideBalance(2, matches))
	assert.Equal(t, SideBalances(matches)[2], SideBalance(2, matches))

	players := []models.Player{{ID: 1, Name: "Ann"}, {ID: 2, Name: "Bob"}}
	_, err := Rank(players, matches)
	assert.ErrorIs(t, err, models.ErrByeWithOpponent)
}
