package services

import (
	"errors"
	"fmt"

	"github.com/Dosada05/swisscut/brackets"
	"github.com/Dosada05/swisscut/models"
	"github.com/Dosada05/swisscut/repositories"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	ErrTournamentNotFound = repositories.ErrTournamentNotFound
	ErrRoundNotFound      = errors.New("round not found")

	// Ошибки сетки плей-офф
	ErrNoCut              = models.ErrNoCut
	ErrCutAlreadyExists   = repositories.ErrCutAlreadyExists
	ErrCutRoundIncomplete = brackets.ErrRoundIncomplete
	ErrCutComplete        = brackets.ErrBracketComplete
	ErrCutChanged         = repositories.ErrCutChanged
	ErrInvalidCutSize     = errors.New("cut size must be between 2 and the number of players")

	// Ошибки целостности данных
	ErrDataIntegrity = errors.New("tournament records are inconsistent")

	ErrPublishingDisabled = errors.New("report publishing is not configured")
)

// integrityError отмечает ошибки целостности, чтобы обработчики отдавали 422.
func integrityError(err error) error {
	if errors.Is(err, models.ErrUnknownResult) ||
		errors.Is(err, models.ErrDrawInElimination) ||
		errors.Is(err, models.ErrMissingSeat) ||
		errors.Is(err, models.ErrByeWithOpponent) ||
		errors.Is(err, brackets.ErrInvalidBracket) {
		return fmt.Errorf("%w: %w", ErrDataIntegrity, err)
	}
	return err
}
