package models

type Cut struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	NumPlayers   int         `json:"num_players" db:"num_players"`
	Round        int         `json:"round" db:"rnd"`
	Players      []CutPlayer `json:"players,omitempty" db:"-"`
	Matches      []Match     `json:"matches,omitempty" db:"-"`
}

type CutPlayer struct {
	ID       int `json:"id" db:"id"`
	CutID    int `json:"cut_id" db:"cut_id"`
	PlayerID int `json:"player_id" db:"player_id"`
	Seed     int `json:"seed" db:"seed"`
}
