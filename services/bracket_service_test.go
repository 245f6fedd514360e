package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/swisscut/brackets"
	"github.com/Dosada05/swisscut/models"
)

type cutFixture struct {
	repo     *fakeTournamentRepo
	cuts     *fakeCutRepo
	notifier *fakeNotifier
	svc      BracketService
}

func newCutFixture(t *testing.T) *cutFixture {
	repo := newFakeTournamentRepo(swissTournament())
	cuts := &fakeCutRepo{tournaments: repo}
	notifier := &fakeNotifier{}
	return &cutFixture{
		repo:     repo,
		cuts:     cuts,
		notifier: notifier,
		svc:      NewBracketService(memoryDB(t), repo, cuts, notifier, nil),
	}
}

func (f *cutFixture) reportCutRound(round int, results ...models.Result) {
	cut := f.repo.snapshots[7].Cut
	i := 0
	for j := range cut.Matches {
		m := &cut.Matches[j]
		if m.Round != round || m.IsBye {
			continue
		}
		m.Result = results[i]
		m.Concluded = true
		i++
	}
}

func TestOpenCutSeedsFromSwissOrder(t *testing.T) {
	f := newCutFixture(t)

	cut, err := f.svc.OpenCut(context.Background(), 7, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, cut.NumPlayers)
	assert.Equal(t, 1, cut.Round)

	var seeded []int
	for _, p := range cut.Players {
		seeded = append(seeded, p.PlayerID)
	}
	assert.Equal(t, []int{4, 1, 2, 3}, seeded)

	require.Len(t, cut.Matches, 2)
	assert.Equal(t, 4, cut.Matches[0].CorpPlayerID)
	assert.Equal(t, 3, *cut.Matches[0].RunnerPlayerID)
	assert.Equal(t, 1, cut.Matches[1].CorpPlayerID)
	assert.Equal(t, 2, *cut.Matches[1].RunnerPlayerID)

	stored := f.repo.snapshots[7].Cut
	require.NotNil(t, stored)
	assert.Len(t, stored.Matches, 2)

	assert.Equal(t, []string{brackets.MessageCutUpdated, brackets.MessageStandingsUpdated}, f.notifier.types())
}

func TestOpenCutRejectsBadSizes(t *testing.T) {
	f := newCutFixture(t)

	_, err := f.svc.OpenCut(context.Background(), 7, 1)
	assert.ErrorIs(t, err, ErrInvalidCutSize)

	_, err = f.svc.OpenCut(context.Background(), 7, 5)
	assert.ErrorIs(t, err, ErrInvalidCutSize)
	assert.ErrorIs(t, err, brackets.ErrNotEnoughSeeds)

	assert.Nil(t, f.repo.snapshots[7].Cut)
	assert.Empty(t, f.notifier.types())
}

func TestOpenCutTwice(t *testing.T) {
	f := newCutFixture(t)

	_, err := f.svc.OpenCut(context.Background(), 7, 2)
	require.NoError(t, err)

	_, err = f.svc.OpenCut(context.Background(), 7, 2)
	assert.ErrorIs(t, err, ErrCutAlreadyExists)
}

func TestOpenCutRepositoryFailure(t *testing.T) {
	f := newCutFixture(t)
	f.cuts.createErr = errors.New("connection reset")

	_, err := f.svc.OpenCut(context.Background(), 7, 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Empty(t, f.notifier.types())
}

func TestAdvanceCut(t *testing.T) {
	f := newCutFixture(t)
	ctx := context.Background()

	_, err := f.svc.AdvanceCut(ctx, 7)
	assert.ErrorIs(t, err, ErrNoCut)

	_, err = f.svc.OpenCut(ctx, 7, 4)
	require.NoError(t, err)

	_, err = f.svc.AdvanceCut(ctx, 7)
	assert.ErrorIs(t, err, ErrCutRoundIncomplete)

	// Dee beats Cal, Bob upsets Ann from the runner seat.
	f.reportCutRound(1, models.ResultCorpWin, models.ResultRunnerWin)

	final, err := f.svc.AdvanceCut(ctx, 7)
	require.NoError(t, err)
	require.Len(t, final, 1)
	assert.Equal(t, 2, final[0].Round)
	assert.Equal(t, 4, final[0].CorpPlayerID)
	assert.Equal(t, 2, *final[0].RunnerPlayerID)
	assert.Equal(t, 2, f.repo.snapshots[7].Cut.Round)

	f.reportCutRound(2, models.ResultRunnerWin)
	_, err = f.svc.AdvanceCut(ctx, 7)
	assert.ErrorIs(t, err, ErrCutComplete)

	cut, err := NewStandingsService(f.repo, nil, nil).CutStandings(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, cut.Champion)
	assert.Equal(t, "Bob", cut.Champion.Name)
	assert.Equal(t, 2, cut.Round)
}

func TestAdvanceCutLosesRaceToAnotherAdvance(t *testing.T) {
	f := newCutFixture(t)
	ctx := context.Background()

	_, err := f.svc.OpenCut(ctx, 7, 4)
	require.NoError(t, err)
	f.reportCutRound(1, models.ResultCorpWin, models.ResultRunnerWin)
	stored := len(f.repo.snapshots[7].Cut.Matches)
	sent := len(f.notifier.types())

	f.cuts.beforeLock = func(cut *models.Cut) { cut.Round = 2 }

	_, err = f.svc.AdvanceCut(ctx, 7)
	assert.ErrorIs(t, err, ErrCutChanged)
	assert.Len(t, f.repo.snapshots[7].Cut.Matches, stored)
	assert.Len(t, f.notifier.types(), sent)
}

func TestAdvanceCutRejectsDraw(t *testing.T) {
	f := newCutFixture(t)
	ctx := context.Background()

	_, err := f.svc.OpenCut(ctx, 7, 2)
	require.NoError(t, err)
	f.reportCutRound(1, models.ResultDraw)

	_, err = f.svc.AdvanceCut(ctx, 7)
	assert.ErrorIs(t, err, ErrDataIntegrity)
	assert.ErrorIs(t, err, models.ErrDrawInElimination)
}

func TestCutStandingsAfterFirstRound(t *testing.T) {
	f := newCutFixture(t)
	ctx := context.Background()

	_, err := f.svc.OpenCut(ctx, 7, 4)
	require.NoError(t, err)
	f.reportCutRound(1, models.ResultCorpWin, models.ResultRunnerWin)

	cut, err := NewStandingsService(f.repo, nil, nil).CutStandings(ctx, 7)
	require.NoError(t, err)
	views := cut.Standings

	var order []string
	for _, v := range views {
		order = append(order, v.Name)
	}
	assert.Equal(t, []string{"Dee", "Bob", "Ann", "Cal"}, order)
	assert.Zero(t, views[0].EliminatedInRound)
	assert.Equal(t, 1, views[2].EliminatedInRound)
	assert.Equal(t, 1, cut.Round)
	assert.Equal(t, 2, cut.TotalRounds)
	assert.Nil(t, cut.Champion)

	round, err := NewStandingsService(f.repo, nil, nil).CutRound(ctx, 7, 1)
	require.NoError(t, err)
	require.Len(t, round, 2)
	assert.Equal(t, "3 - 0", round[0].Score)
	assert.True(t, round[0].EliminationGame)
}
