package models

import "errors"

var (
	ErrUnknownResult = errors.New("unknown match result")
	ErrUnknownSide   = errors.New("unknown side")
	ErrResultPending = errors.New("match result is not set")

	// Ошибки целостности данных: запись есть, но противоречит правилам формата.
	ErrDrawInElimination = errors.New("draw recorded in an elimination match")
	ErrMissingSeat       = errors.New("non-bye match is missing a seated player")
	ErrByeWithOpponent   = errors.New("bye match has a runner-seat player")

	ErrNoCut = errors.New("tournament has no cut")
)
