package board

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDirection marks a direction outside the four cardinals.
	// Reaching it from Index, Opposite or Delta is a programming error.
	ErrInvalidDirection = errors.New("invalid direction")

	// ErrMoveRejected is matched by every *MoveRejectedError.
	ErrMoveRejected = errors.New("move rejected")

	// ErrUnknownUnit is returned when a unit is not stored in the grid.
	ErrUnknownUnit = errors.New("unit not on grid")
)

// RejectReason says why a move was refused.
type RejectReason string

const (
	RejectOutOfBounds RejectReason = "out_of_bounds"
	RejectOccupied    RejectReason = "occupied"
)

// MoveRejectedError reports a refused move. The grid is untouched.
type MoveRejectedError struct {
	From   Coordinate
	To     Coordinate
	Reason RejectReason
}

func (e *MoveRejectedError) Error() string {
	return fmt.Sprintf("move %s -> %s rejected: %s", e.From, e.To, e.Reason)
}

// Is lets errors.Is(err, ErrMoveRejected) match.
func (e *MoveRejectedError) Is(target error) bool {
	return target == ErrMoveRejected
}

// SetupError reports an invalid initial layout.
type SetupError struct {
	Index   int // index of the offending spec, -1 for grid-level problems
	Message string
}

func (e *SetupError) Error() string {
	if e.Index < 0 {
		return "grid setup: " + e.Message
	}
	return fmt.Sprintf("grid setup: gear[%d]: %s", e.Index, e.Message)
}
