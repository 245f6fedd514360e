package brackets

import (
	"context"
	"fmt"

	"github.com/Dosada05/swisscut/models"
	"github.com/Dosada05/swisscut/standings"
)

// SeedCut takes the top n of the final Swiss order as seeds 1..n. The Swiss
// order is used as is.
func SeedCut(swiss []standings.Standing, n int) ([]models.CutPlayer, error) {
	if n <= 0 {
		return nil, models.ErrNoCut
	}
	if n < 2 || n > len(swiss) {
		return nil, fmt.Errorf("%w: cut of %d from %d players", ErrNotEnoughSeeds, n, len(swiss))
	}

	seeds := make([]models.CutPlayer, n)
	for i := 0; i < n; i++ {
		seeds[i] = models.CutPlayer{PlayerID: swiss[i].Player.ID, Seed: i + 1}
	}
	return seeds, nil
}

// FirstRound builds the opening cut round for the seeds. Byes come back as
// concluded matches so they advance their recipient like any other win.
func FirstRound(ctx context.Context, gen BracketGenerator, tournamentID int, seeds []models.CutPlayer) ([]models.Match, error) {
	planned, err := gen.GenerateBracket(ctx, GenerateBracketParams{TournamentID: tournamentID, Seeds: seeds})
	if err != nil {
		return nil, fmt.Errorf("generate %s bracket: %w", gen.GetName(), err)
	}

	var out []models.Match
	for _, bm := range planned {
		if bm.Round != 1 {
			continue
		}
		table := bm.OrderInRound
		m := models.Match{
			TournamentID:    tournamentID,
			Round:           1,
			TableNumber:     &table,
			EliminationGame: true,
		}
		switch {
		case bm.IsBye:
			m.CorpPlayerID = *bm.ByeParticipantID
			m.IsBye = true
			m.Concluded = true
			m.Result = models.ResultCorpWin
		case bm.Participant1ID != nil && bm.Participant2ID != nil:
			m.CorpPlayerID = *bm.Participant1ID
			runner := *bm.Participant2ID
			m.RunnerPlayerID = &runner
		default:
			return nil, fmt.Errorf("%w: first round match %s has no players", ErrInvalidBracket, bm.UID)
		}
		out = append(out, m)
	}
	return out, nil
}
