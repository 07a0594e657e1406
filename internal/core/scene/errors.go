package scene

import "errors"

var (
	// ErrInvalidArgument reports caller misuse: nil children, self
	// attachment or detachment, nil or colliding identifiers.
	ErrInvalidArgument = errors.New("scene: invalid argument")

	// ErrIllegalState reports internal bookkeeping the invariants forbid.
	// It always indicates a defect in this package, never caller misuse,
	// and must be treated as fatal to the enclosing tick.
	ErrIllegalState = errors.New("scene: illegal state")
)
