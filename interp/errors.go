package interp

import "errors"

// Execution errors. Instructions wrap these with detail; match them with
// errors.Is.
var (
	ErrEmptyStack        = errors.New("pop from an empty stack")
	ErrTypeMismatch      = errors.New("type mismatch")
	ErrCloseOutsideBlock = errors.New("closing outside a block")
	ErrNotExecutable     = errors.New("can't execute")
	ErrNotNumber         = errors.New("text doesn't represent an integer")
	ErrEmptySideStack    = errors.New("pop from empty side stack")
	ErrUnboundVariable   = errors.New("unbound variable")
)
