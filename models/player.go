package models

type Player struct {
	ID             int    `json:"id" db:"id"`
	TournamentID   int    `json:"tournament_id" db:"tournament_id"`
	Name           string `json:"name" db:"name"`
	CorpIdentity   string `json:"corp" db:"corp"`
	RunnerIdentity string `json:"runner" db:"runner"`
}
