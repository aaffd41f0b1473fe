package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/gearbox/internal/board"
)

// CommandError reports a command the simulation refused to apply.
type CommandError struct {
	Code    ErrorCode
	Message string
	At      board.Coordinate
}

// ErrorCode categorizes command errors.
type ErrorCode string

const (
	// ErrCodeNoGear: the command addressed an empty cell.
	ErrCodeNoGear ErrorCode = "NO_GEAR"

	// ErrCodePermanent: a move targeted a permanent gear.
	ErrCodePermanent ErrorCode = "PERMANENT"

	// ErrCodeUnknownCommand: the command kind is not tick, move or turn.
	ErrCodeUnknownCommand ErrorCode = "UNKNOWN_COMMAND"
)

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s (at %s)", e.Code, e.Message, e.At)
}

// Is matches the sentinel for the error's code.
func (e *CommandError) Is(target error) bool {
	switch target {
	case ErrNoGear:
		return e.Code == ErrCodeNoGear
	case ErrPermanent:
		return e.Code == ErrCodePermanent
	}
	return false
}

var (
	ErrNoGear    = errors.New("no gear at position")
	ErrPermanent = errors.New("gear is permanent")

	// ErrStopped is returned by Submit once the engine loop has exited.
	ErrStopped = errors.New("engine stopped")
)

func noGearError(at board.Coordinate) *CommandError {
	return &CommandError{Code: ErrCodeNoGear, Message: "no gear at position", At: at}
}

func permanentError(at board.Coordinate) *CommandError {
	return &CommandError{Code: ErrCodePermanent, Message: "permanent gears cannot move", At: at}
}
