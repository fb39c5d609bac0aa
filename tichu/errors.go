package tichu

import "errors"

var (
	ErrNotFound               = errors.New("not found")
	ErrFull                   = errors.New("game is full")
	ErrWrongStage             = errors.New("wrong stage for action")
	ErrNotYourTurn            = errors.New("action out of turn")
	ErrNotOwner               = errors.New("owner only action")
	ErrBadCombo               = errors.New("cards do not form a combo")
	ErrDoesNotBeat            = errors.New("combo does not beat the table")
	ErrMustFulfillWish        = errors.New("an active wish must be fulfilled")
	ErrAlreadyDecided         = errors.New("tichu call already decided")
	ErrAlreadySubmitted       = errors.New("trade already submitted")
	ErrInvalidTargets         = errors.New("invalid targets")
	ErrCardsNotHeld           = errors.New("cards not held")
	ErrInvalidName            = errors.New("invalid name")
	ErrTeamFull               = errors.New("team is full")
	ErrUnbalanced             = errors.New("teams must be two and two")
	ErrAlreadyOnTeam          = errors.New("already on that team")
	ErrNotOnTeam              = errors.New("not on that team")
	ErrCannotPassOnLead       = errors.New("cannot pass when leading")
	ErrMissingDragonRecipient = errors.New("dragon single needs a recipient")
)

type InvalidStateError string

func (e InvalidStateError) Error() string { return "invalid state: " + string(e) }

func ErrInvalidState(msg string) error { return InvalidStateError(msg) }
