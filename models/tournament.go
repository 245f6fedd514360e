package models

import "time"

// Tournament is a read-only snapshot of one event: everything needed to rank
// the Swiss rounds and walk the cut, loaded in a single consistent read.
type Tournament struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Date         time.Time `json:"date" db:"date"`
	CurrentRound int       `json:"current_round" db:"current_round"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	Players []Player `json:"players,omitempty" db:"-"`
	Matches []Match  `json:"matches,omitempty" db:"-"`
	Cut     *Cut     `json:"cut,omitempty" db:"-"`
}

// SwissMatches returns the non-elimination matches in snapshot order.
func (t *Tournament) SwissMatches() []Match {
	out := make([]Match, 0, len(t.Matches))
	for _, m := range t.Matches {
		if !m.EliminationGame {
			out = append(out, m)
		}
	}
	return out
}

func (t *Tournament) Player(id int) (Player, bool) {
	for _, p := range t.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// HasCut reports whether a cut is configured. A cut with zero advancing
// players counts as no cut.
func (t *Tournament) HasCut() bool {
	return t.Cut != nil && t.Cut.NumPlayers > 0
}
