package chess

import "errors"

var (
	// ErrMalformedFEN reports structurally invalid FEN input.
	ErrMalformedFEN = errors.New("malformed fen")
	// ErrMalformedMove reports move text outside the coordinate grammar.
	ErrMalformedMove = errors.New("malformed move")
	// ErrIllegalMove reports a well-formed move that is not legal in the position.
	ErrIllegalMove = errors.New("illegal move")
	// ErrIllegalTransition reports a board invariant violation during Apply.
	// Reaching it with a move taken from LegalMoves is an engine bug.
	ErrIllegalTransition = errors.New("illegal transition")
)
