package models

import (
	"fmt"
)

type Result int

const (
	ResultUnset Result = iota
	ResultCorpWin
	ResultRunnerWin
	ResultDraw
	ResultIntentionalDraw
)

type Side string

const (
	SideCorp   Side = "corp"
	SideRunner Side = "runner"
)

const (
	pointsWin  = 3
	pointsDraw = 1
	pointsLoss = 0
)

var resultNames = map[Result]string{
	ResultUnset:           "",
	ResultCorpWin:         "corp_win",
	ResultRunnerWin:       "runner_win",
	ResultDraw:            "draw",
	ResultIntentionalDraw: "intentional_draw",
}

// ParseResult decodes the storage form of a result. An empty string is an
// unset result.
func ParseResult(s string) (Result, error) {
	for r, name := range resultNames {
		if name == s {
			return r, nil
		}
	}
	return ResultUnset, fmt.Errorf("%w: %q", ErrUnknownResult, s)
}

func (r Result) Valid() bool {
	_, ok := resultNames[r]
	return ok
}

func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Result(%d)", int(r))
}

// Score returns the points the given side earns from the result.
func (r Result) Score(side Side) (int, error) {
	var corp, runner int
	switch r {
	case ResultCorpWin:
		corp, runner = pointsWin, pointsLoss
	case ResultRunnerWin:
		corp, runner = pointsLoss, pointsWin
	case ResultDraw, ResultIntentionalDraw:
		corp, runner = pointsDraw, pointsDraw
	case ResultUnset:
		return 0, ErrResultPending
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownResult, int(r))
	}

	switch side {
	case SideCorp:
		return corp, nil
	case SideRunner:
		return runner, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownSide, side)
	}
}

// Display renders the result as "corp - runner" points, empty when unset.
func (r Result) Display() (string, error) {
	if r == ResultUnset {
		return "", nil
	}
	corp, err := r.Score(SideCorp)
	if err != nil {
		return "", err
	}
	runner, err := r.Score(SideRunner)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d - %d", corp, runner), nil
}

func (r Result) IsDraw() bool {
	return r == ResultDraw || r == ResultIntentionalDraw
}
