package engine

import "errors"

var (
	ErrNotActive       = errors.New("draft not active")
	ErrChampionUsed    = errors.New("champion already used this game")
	ErrFearlessUsed    = errors.New("champion picked earlier in series")
	ErrWrongTurn       = errors.New("not your turn")
	ErrWrongSlot       = errors.New("wrong slot")
	ErrUnknownChampion = errors.New("unknown champion")
)

type Side string

const (
	SideBlue Side = "blue"
	SideRed  Side = "red"
)

// Other returns the opposite color.
func (s Side) Other() Side {
	if s == SideBlue {
		return SideRed
	}
	return SideBlue
}

func ParseSide(s string) (Side, bool) {
	switch Side(s) {
	case SideBlue:
		return SideBlue, true
	case SideRed:
		return SideRed, true
	default:
		return "", false
	}
}

type Kind string

const (
	KindBan  Kind = "ban"
	KindPick Kind = "pick"
)

// GameStatus is the lifecycle of one drafted game.
type GameStatus string

const (
	GamePending       GameStatus = "pending"
	GameInProgress    GameStatus = "in_progress"
	GameDraftComplete GameStatus = "draft_complete"
	GameCompleted     GameStatus = "completed"
)

// Committed is the subset of a persisted draft action the validator needs.
type Committed struct {
	Kind     Kind
	Side     Side
	Champion string
	Position int
}

// Candidate is a proposed ban or pick awaiting validation.
type Candidate struct {
	Side     Side
	Champion string
	Position int
}

// Validate decides whether a candidate action is legal given the game's
// committed actions. fearlessPicks holds champions picked in earlier games
// of the series and only applies when fearless is set. Checks run in a
// fixed order so callers get stable rejection reasons.
func Validate(status GameStatus, committed []Committed, fearless bool, fearlessPicks map[string]bool, cand Candidate) error {
	if status != GameInProgress {
		return ErrNotActive
	}

	for _, a := range committed {
		if a.Champion == cand.Champion {
			return ErrChampionUsed
		}
	}

	step, ok := EntryAt(cand.Position)
	if ok && step.Kind == KindPick && fearless && fearlessPicks[cand.Champion] {
		return ErrFearlessUsed
	}

	if !ok || cand.Position != len(committed) {
		return ErrWrongSlot
	}
	if step.Side != cand.Side {
		return ErrWrongTurn
	}
	return nil
}

// Complete reports whether every slot has been filled.
func Complete(committed []Committed) bool {
	return len(committed) >= TotalSteps
}
