package models

import "fmt"

type Match struct {
	ID              int    `json:"id"`
	TournamentID    int    `json:"tournament_id"`
	Round           int    `json:"round"`
	TableNumber     *int   `json:"table_number,omitempty"`
	CorpPlayerID    int    `json:"corp_player_id"`
	RunnerPlayerID  *int   `json:"runner_player_id,omitempty"`
	Result          Result `json:"result"`
	Concluded       bool   `json:"concluded"`
	IsBye           bool   `json:"is_bye"`
	EliminationGame bool   `json:"elimination_game"`
}

// Outcome is the result used for scoring. A bye always resolves as a corp win
// for the recipient.
func (m Match) Outcome() Result {
	if m.IsBye {
		return ResultCorpWin
	}
	return m.Result
}

// SideScore returns the points earned by the side, or nil when nobody sat
// there (the runner seat of a bye).
func (m Match) SideScore(side Side) (*int, error) {
	if m.IsBye && side == SideRunner {
		return nil, nil
	}
	score, err := m.Outcome().Score(side)
	if err != nil {
		return nil, fmt.Errorf("match %d: %w", m.ID, err)
	}
	return &score, nil
}

// Validate checks the seating rules for a concluded match: a bye seats only
// its recipient, every other match seats both sides.
func (m Match) Validate() error {
	if m.IsBye && m.RunnerPlayerID != nil {
		return fmt.Errorf("match %d (round %d): %w", m.ID, m.Round, ErrByeWithOpponent)
	}
	if !m.IsBye && m.RunnerPlayerID == nil {
		return fmt.Errorf("match %d (round %d): %w", m.ID, m.Round, ErrMissingSeat)
	}
	if !m.Outcome().Valid() {
		return fmt.Errorf("match %d (round %d): %w", m.ID, m.Round, ErrUnknownResult)
	}
	return nil
}

// Opponent returns the other seat of the match for the player, false when the
// player did not play it or the match was a bye.
func (m Match) Opponent(playerID int) (int, bool) {
	if m.IsBye || m.RunnerPlayerID == nil {
		return 0, false
	}
	switch playerID {
	case m.CorpPlayerID:
		return *m.RunnerPlayerID, true
	case *m.RunnerPlayerID:
		return m.CorpPlayerID, true
	}
	return 0, false
}

// SeatOf reports which side the player occupied. The runner seat of a bye is
// empty whatever the record says.
func (m Match) SeatOf(playerID int) (Side, bool) {
	if m.CorpPlayerID == playerID {
		return SideCorp, true
	}
	if !m.IsBye && m.RunnerPlayerID != nil && *m.RunnerPlayerID == playerID {
		return SideRunner, true
	}
	return "", false
}

// Table returns the display table number, 0 when not assigned.
func (m Match) Table() int {
	if m.TableNumber == nil {
		return 0
	}
	return *m.TableNumber
}
