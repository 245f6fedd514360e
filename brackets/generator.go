package brackets

import (
	"context"

	"github.com/Dosada05/swisscut/models"
)

type GenerateBracketParams struct {
	TournamentID int
	// Seeds must be ordered by seed, 1 first.
	Seeds []models.CutPlayer
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error)

	GetName() string
}
