package standings

import "github.com/Dosada05/swisscut/models"

// SideBalance returns corp seats minus runner seats for the player over the
// concluded Swiss matches. A bye counts as a corp seat for its recipient.
func SideBalance(playerID int, matches []models.Match) int {
	balance := 0
	for _, m := range matches {
		if !m.Concluded || m.EliminationGame {
			continue
		}
		side, ok := m.SeatOf(playerID)
		if !ok {
			continue
		}
		if side == models.SideCorp {
			balance++
		} else {
			balance--
		}
	}
	return balance
}

// SideBalances computes SideBalance for every player seen in the matches.
func SideBalances(matches []models.Match) map[int]int {
	out := make(map[int]int)
	for _, m := range matches {
		if !m.Concluded || m.EliminationGame {
			continue
		}
		out[m.CorpPlayerID]++
		if !m.IsBye && m.RunnerPlayerID != nil {
			out[*m.RunnerPlayerID]--
		}
	}
	return out
}
