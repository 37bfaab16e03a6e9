package board

import "errors"

// Sentinel errors for recoverable failures. Check with errors.Is.
var (
	// ErrInvalidFEN indicates a malformed or unsupported FEN string.
	ErrInvalidFEN = errors.New("invalid FEN")

	// ErrInvalidSquare indicates a square label that is not on the board.
	ErrInvalidSquare = errors.New("invalid square")
)
