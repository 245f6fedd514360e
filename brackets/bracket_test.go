package brackets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/swisscut/models"
	"github.com/Dosada05/swisscut/standings"
)

func seedsFor(n int) []models.CutPlayer {
	out := make([]models.CutPlayer, n)
	for i := range out {
		// player ids are 100 + seed to keep them apart from seeds
		out[i] = models.CutPlayer{ID: i + 1, PlayerID: 101 + i, Seed: i + 1}
	}
	return out
}

func pairings(matches []models.Match) [][2]int {
	out := make([][2]int, len(matches))
	for i, m := range matches {
		runner := 0
		if m.RunnerPlayerID != nil {
			runner = *m.RunnerPlayerID - 100
		}
		out[i] = [2]int{m.CorpPlayerID - 100, runner}
	}
	return out
}

func conclude(matches []models.Match, results ...models.Result) []models.Match {
	out := make([]models.Match, len(matches))
	copy(out, matches)
	id := 0
	for i := range out {
		if out[i].IsBye {
			continue
		}
		out[i].Result = results[id]
		out[i].Concluded = true
		id++
	}
	return out
}

func TestFirstRoundStandardOrder(t *testing.T) {
	gen := NewSingleEliminationGenerator()

	round, err := FirstRound(context.Background(), gen, 1, seedsFor(8))
	require.NoError(t, err)

	assert.Equal(t, [][2]int{{1, 8}, {4, 5}, {2, 7}, {3, 6}}, pairings(round))
	for i, m := range round {
		assert.True(t, m.EliminationGame)
		assert.False(t, m.Concluded)
		assert.Equal(t, i+1, m.Table())
	}
}

func TestFirstRoundByesGoToTopSeeds(t *testing.T) {
	gen := NewSingleEliminationGenerator()

	round, err := FirstRound(context.Background(), gen, 1, seedsFor(6))
	require.NoError(t, err)

	assert.Equal(t, [][2]int{{1, 0}, {4, 5}, {2, 0}, {3, 6}}, pairings(round))
	assert.True(t, round[0].IsBye)
	assert.True(t, round[0].Concluded)
	assert.True(t, round[2].IsBye)
}

func TestGenerateBracketRejectsTooFewSeeds(t *testing.T) {
	_, err := NewSingleEliminationGenerator().GenerateBracket(context.Background(), GenerateBracketParams{Seeds: seedsFor(1)})
	assert.ErrorIs(t, err, ErrNotEnoughSeeds)
}

func TestGenerateBracketBuildsWholeTree(t *testing.T) {
	planned, err := NewSingleEliminationGenerator().GenerateBracket(context.Background(), GenerateBracketParams{Seeds: seedsFor(8)})
	require.NoError(t, err)
	require.Len(t, planned, 7)

	final := planned[len(planned)-1]
	assert.Equal(t, "R3M1", final.UID)
	assert.True(t, final.IsPlaceholder)
	require.NotNil(t, final.SourceMatch1UID)
	assert.Equal(t, "R2M1", *final.SourceMatch1UID)
}

func TestSeedCut(t *testing.T) {
	swiss := []standings.Standing{
		{Rank: 1, Player: models.Player{ID: 7}},
		{Rank: 2, Player: models.Player{ID: 3}},
		{Rank: 3, Player: models.Player{ID: 9}},
	}

	seeds, err := SeedCut(swiss, 2)
	require.NoError(t, err)
	assert.Equal(t, []models.CutPlayer{{PlayerID: 7, Seed: 1}, {PlayerID: 3, Seed: 2}}, seeds)

	_, err = SeedCut(swiss, 0)
	assert.ErrorIs(t, err, models.ErrNoCut)

	_, err = SeedCut(swiss, 4)
	assert.ErrorIs(t, err, ErrNotEnoughSeeds)
}

func TestNewBracketWithoutCut(t *testing.T) {
	_, err := NewBracket(nil)
	assert.ErrorIs(t, err, models.ErrNoCut)

	_, err = NewBracket(&models.Cut{NumPlayers: 0})
	assert.ErrorIs(t, err, models.ErrNoCut)
}

func TestConfiguredCutWithoutRounds(t *testing.T) {
	b, err := NewBracket(&models.Cut{NumPlayers: 8, Players: seedsFor(8)})
	require.NoError(t, err)

	got := b.Standings()
	require.Len(t, got, 8)
	for i, s := range got {
		assert.Equal(t, i+1, s.Rank)
		assert.Equal(t, i+1, s.Seed)
		assert.Zero(t, s.EliminatedInRound)
	}
	assert.Zero(t, b.LatestRound())
	assert.Empty(t, b.ConcludedRound(1))
	assert.Equal(t, 3, b.TotalRounds())
}

func TestNewBracketRejectsDraw(t *testing.T) {
	runner := 102
	cut := &models.Cut{
		NumPlayers: 2,
		Players:    seedsFor(2),
		Matches: []models.Match{{
			ID: 1, Round: 1, CorpPlayerID: 101, RunnerPlayerID: &runner,
			Result: models.ResultIntentionalDraw, Concluded: true, EliminationGame: true,
		}},
	}

	_, err := NewBracket(cut)
	assert.ErrorIs(t, err, models.ErrDrawInElimination)
}

func TestNewBracketRejectsMissingSeat(t *testing.T) {
	cut := &models.Cut{
		NumPlayers: 2,
		Players:    seedsFor(2),
		Matches: []models.Match{{
			ID: 1, Round: 1, CorpPlayerID: 101, Result: models.ResultCorpWin, Concluded: true, EliminationGame: true,
		}},
	}

	_, err := NewBracket(cut)
	assert.ErrorIs(t, err, models.ErrMissingSeat)
}

func TestBracketAdvancesToChampion(t *testing.T) {
	ctx := context.Background()
	gen := NewSingleEliminationGenerator()
	cut := &models.Cut{TournamentID: 1, NumPlayers: 4, Players: seedsFor(4)}

	b, err := NewBracket(cut)
	require.NoError(t, err)

	round1, err := b.NextRound(ctx, gen)
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{1, 4}, {2, 3}}, pairings(round1))

	// round 1 pending
	cut.Matches = round1
	b, err = NewBracket(cut)
	require.NoError(t, err)
	_, err = b.NextRound(ctx, gen)
	assert.ErrorIs(t, err, ErrRoundIncomplete)

	// seed 4 upsets seed 1, seed 2 wins
	cut.Matches = conclude(round1, models.ResultRunnerWin, models.ResultCorpWin)
	b, err = NewBracket(cut)
	require.NoError(t, err)

	round2, err := b.NextRound(ctx, gen)
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{2, 4}}, pairings(round2))
	assert.Equal(t, 2, round2[0].Round)

	cut.Matches = append(cut.Matches, conclude(round2, models.ResultRunnerWin)...)
	b, err = NewBracket(cut)
	require.NoError(t, err)

	champion, ok := b.Champion()
	require.True(t, ok)
	assert.Equal(t, 104, champion)

	_, err = b.NextRound(ctx, gen)
	assert.ErrorIs(t, err, ErrBracketComplete)

	got := b.Standings()
	order := make([]int, len(got))
	for i, s := range got {
		order[i] = s.Seed
	}
	// 4 champion, 2 lost the final, then 1 and 3 out in round 1
	assert.Equal(t, []int{4, 2, 1, 3}, order)
	assert.Equal(t, 2, got[1].EliminatedInRound)
}

func TestBracketRoundOrderedByTable(t *testing.T) {
	runner := func(v int) *int { return &v }
	t1, t2 := 1, 2
	cut := &models.Cut{
		NumPlayers: 4,
		Players:    seedsFor(4),
		Matches: []models.Match{
			{ID: 2, Round: 1, TableNumber: &t2, CorpPlayerID: 102, RunnerPlayerID: runner(103), EliminationGame: true},
			{ID: 1, Round: 1, TableNumber: &t1, CorpPlayerID: 101, RunnerPlayerID: runner(104), Result: models.ResultCorpWin, Concluded: true, EliminationGame: true},
		},
	}

	b, err := NewBracket(cut)
	require.NoError(t, err)

	round := b.Round(1)
	require.Len(t, round, 2)
	assert.Equal(t, 1, round[0].ID)

	concluded := b.ConcludedRound(1)
	require.Len(t, concluded, 1)
	assert.Equal(t, 1, concluded[0].ID)
}

func TestBracketSixPlayersFollowsPlannedTree(t *testing.T) {
	ctx := context.Background()
	gen := NewSingleEliminationGenerator()
	cut := &models.Cut{TournamentID: 1, NumPlayers: 6, Players: seedsFor(6)}

	round1, err := FirstRound(ctx, gen, 1, cut.Players)
	require.NoError(t, err)

	// 5 beats 4 from the runner seat, 3 beats 6
	cut.Matches = conclude(round1, models.ResultRunnerWin, models.ResultCorpWin)
	b, err := NewBracket(cut)
	require.NoError(t, err)

	round2, err := b.NextRound(ctx, gen)
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{1, 5}, {2, 3}}, pairings(round2))
	assert.Equal(t, 1, round2[0].Table())
	assert.Equal(t, 2, round2[1].Table())
	assert.Equal(t, 3, b.TotalRounds())
}

func TestNextRoundRejectsTablesOffThePlan(t *testing.T) {
	runner := 104
	table := 3
	cut := &models.Cut{
		TournamentID: 1,
		NumPlayers:   4,
		Players:      seedsFor(4),
		Matches: []models.Match{
			{ID: 1, Round: 1, TableNumber: &table, CorpPlayerID: 101, RunnerPlayerID: &runner, Result: models.ResultCorpWin, Concluded: true, EliminationGame: true},
		},
	}
	b, err := NewBracket(cut)
	require.NoError(t, err)

	_, err = b.NextRound(context.Background(), NewSingleEliminationGenerator())
	assert.ErrorIs(t, err, ErrInvalidBracket)
}
