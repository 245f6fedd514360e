package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/swisscut/models"
)

func TestSwissStandingsViews(t *testing.T) {
	repo := newFakeTournamentRepo(swissTournament())
	cat := &fakeCatalog{factions: map[string]string{
		"Jinteki: Restoring Humanity":       "jinteki",
		"Zahya Sadeghi: Versatile Smuggler": "criminal",
	}}
	svc := NewStandingsService(repo, cat, nil)

	views, err := svc.SwissStandings(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, views, 4)

	var order []string
	for _, v := range views {
		order = append(order, v.Name)
	}
	assert.Equal(t, []string{"Dee", "Ann", "Bob", "Cal"}, order)

	dee, ann := views[0], views[1]
	assert.Equal(t, 1, dee.Rank)
	assert.Equal(t, 6, dee.MatchPoints)
	assert.Equal(t, 1.5, dee.SOS)
	assert.Equal(t, "Runner +2", dee.SideBias)
	assert.Equal(t, "gray", dee.CorpColor)

	assert.Equal(t, 4.5, ann.SOS)
	assert.Equal(t, 1.5, ann.ESOS)
	assert.Equal(t, 2, ann.SideBalance)
	assert.Equal(t, "Corp +2", ann.SideBias)
	assert.Equal(t, "crimson", ann.CorpColor)
	assert.Equal(t, "royalblue", ann.RunnerColor)
}

func TestSwissStandingsWithoutCatalog(t *testing.T) {
	repo := newFakeTournamentRepo(swissTournament())
	svc := NewStandingsService(repo, &fakeCatalog{err: errors.New("netrunnerdb down")}, nil)

	views, err := svc.SwissStandings(context.Background(), 7)
	require.NoError(t, err)
	for _, v := range views {
		assert.Equal(t, "gray", v.CorpColor)
		assert.Equal(t, "gray", v.RunnerColor)
	}
}

func TestSwissStandingsUnknownTournament(t *testing.T) {
	svc := NewStandingsService(newFakeTournamentRepo(), nil, nil)
	_, err := svc.SwissStandings(context.Background(), 99)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestSwissStandingsBadResultIsIntegrityError(t *testing.T) {
	tournament := swissTournament()
	tournament.Matches[0].Result = models.Result(42)
	svc := NewStandingsService(newFakeTournamentRepo(tournament), nil, nil)

	_, err := svc.SwissStandings(context.Background(), 7)
	assert.ErrorIs(t, err, ErrDataIntegrity)
	assert.ErrorIs(t, err, models.ErrUnknownResult)
}

func TestRoundMatches(t *testing.T) {
	svc := NewStandingsService(newFakeTournamentRepo(swissTournament()), nil, nil)

	matches, err := svc.RoundMatches(context.Background(), 7, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, "Ann", matches[0].Corp.Name)
	require.NotNil(t, matches[0].Runner)
	assert.Equal(t, "Dee", matches[0].Runner.Name)
	assert.Equal(t, "0 - 3", matches[0].Score)
	assert.Equal(t, "3 - 0", matches[1].Score)

	_, err = svc.RoundMatches(context.Background(), 7, 3)
	assert.ErrorIs(t, err, ErrRoundNotFound)
}

func TestCutViewsWithoutCut(t *testing.T) {
	svc := NewStandingsService(newFakeTournamentRepo(swissTournament()), nil, nil)

	_, err := svc.CutStandings(context.Background(), 7)
	assert.ErrorIs(t, err, ErrNoCut)

	_, err = svc.CutRound(context.Background(), 7, 1)
	assert.ErrorIs(t, err, ErrNoCut)
}
