package engine

import "errors"

var (
	ErrInvalidHandSize  = errors.New("invalid hand size")
	ErrInvalidCard      = errors.New("invalid card")
	ErrTerminalPosition = errors.New("terminal position")
	ErrInvalidDepth     = errors.New("invalid search depth")
	ErrIllegalMove      = errors.New("illegal move")
	ErrUndoOrder        = errors.New("undo token applied out of order")
)
