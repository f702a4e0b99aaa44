package chess

import (
	"fmt"
	"strings"
)

// Move is a fully resolved move. Castle and EnPassant are set by the
// generator; callers that build moves by hand should resolve them through
// ResolveMove instead.
type Move struct {
	From      Square
	To        Square
	Promotion PieceKind
	Castle    bool
	EnPassant bool
}

// String renders coordinate notation, e.g. "e2e4" or "e7e8q".
func (m Move) String() string {
	s := m.From.String() + m.To.String()
	if m.Promotion != NoKind {
		s += string(m.Promotion.letter())
	}
	return s
}

// MoveText is the parsed form of coordinate move text before it is matched
// against a position.
type MoveText struct {
	From      Square
	To        Square
	Promotion PieceKind
}

func (t MoveText) String() string {
	return Move{From: t.From, To: t.To, Promotion: t.Promotion}.String()
}

// ParseMoveText parses "<from><to>[promotion]". Surrounding whitespace is
// ignored and letters are case-insensitive.
func ParseMoveText(s string) (MoveText, error) {
	raw := s
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 4 && len(s) != 5 {
		return MoveText{}, fmt.Errorf("%w: %q", ErrMalformedMove, raw)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return MoveText{}, fmt.Errorf("%w: %q", ErrMalformedMove, raw)
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return MoveText{}, fmt.Errorf("%w: %q", ErrMalformedMove, raw)
	}
	t := MoveText{From: from, To: to}
	if len(s) == 5 {
		k, ok := kindFromPromotionLetter(s[4])
		if !ok {
			return MoveText{}, fmt.Errorf("%w: bad promotion piece in %q", ErrMalformedMove, raw)
		}
		t.Promotion = k
	}
	return t, nil
}

// ResolveMove parses text and returns the matching legal move of b.
func ResolveMove(b Board, text string) (Move, error) {
	t, err := ParseMoveText(text)
	if err != nil {
		return Move{}, err
	}
	return t.Resolve(b)
}

// Resolve finds the legal move of b with the same origin, destination and
// promotion piece.
func (t MoveText) Resolve(b Board) (Move, error) {
	for _, m := range LegalMoves(b) {
		if m.From == t.From && m.To == t.To && m.Promotion == t.Promotion {
			return m, nil
		}
	}
	return Move{}, fmt.Errorf("%w: %s in %s", ErrIllegalMove, t, b.FEN())
}
