package brackets

import "errors"

var (
	ErrNotEnoughSeeds  = errors.New("not enough players to seed the cut")
	ErrRoundIncomplete = errors.New("current cut round has unfinished matches")
	ErrBracketComplete = errors.New("cut bracket already has a winner")
	ErrInvalidBracket  = errors.New("cut bracket structure is inconsistent")
)
