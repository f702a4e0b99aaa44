// Package chess implements the rules of standard chess: board representation,
// FEN encoding, move generation and attack detection.
package chess

import (
	"fmt"
	"strings"
)

// Color identifies a side.
type Color uint8

const (
	White Color = iota
	Black
)

// Other returns the opposing side.
func (c Color) Other() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// PieceKind is the type of a piece regardless of color.
type PieceKind uint8

const (
	NoKind PieceKind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var kindLetters = [...]byte{NoKind: '.', Pawn: 'p', Knight: 'n', Bishop: 'b', Rook: 'r', Queen: 'q', King: 'k'}

// letter is the lower-case FEN letter of k, or '?' outside the known kinds.
func (k PieceKind) letter() byte {
	if int(k) >= len(kindLetters) {
		return '?'
	}
	return kindLetters[k]
}

func (k PieceKind) String() string {
	switch k {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return "none"
	}
}

// Piece is a colored piece. The zero value is an empty square.
type Piece struct {
	Color Color
	Kind  PieceKind
}

// NoPiece marks an empty square.
var NoPiece = Piece{}

func (p Piece) IsEmpty() bool { return p.Kind == NoKind }

// Letter returns the FEN letter: upper case for white, lower case for black.
func (p Piece) Letter() byte {
	c := p.Kind.letter()
	if p.Color == White && p.Kind != NoKind {
		c -= 'a' - 'A'
	}
	return c
}

func (p Piece) String() string {
	if p.IsEmpty() {
		return "empty"
	}
	return p.Color.String() + " " + p.Kind.String()
}

func pieceFromLetter(c byte) (Piece, bool) {
	color := Black
	if c >= 'A' && c <= 'Z' {
		color = White
		c += 'a' - 'A'
	}
	for k := Pawn; k <= King; k++ {
		if kindLetters[k] == c {
			return Piece{Color: color, Kind: k}, true
		}
	}
	return NoPiece, false
}

func kindFromPromotionLetter(c byte) (PieceKind, bool) {
	switch c {
	case 'q':
		return Queen, true
	case 'r':
		return Rook, true
	case 'b':
		return Bishop, true
	case 'n':
		return Knight, true
	}
	return NoKind, false
}

// Square indexes the board from a1 (0) to h8 (63).
type Square int8

// NoSquare is the absent square, e.g. no en-passant target.
const NoSquare Square = -1

// NewSquare builds a square from zero-based file and rank. Out of range
// coordinates return NoSquare.
func NewSquare(file, rank int) Square {
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare
	}
	return Square(rank*8 + file)
}

func (s Square) File() int { return int(s) % 8 }
func (s Square) Rank() int { return int(s) / 8 }

// Valid reports whether s lies on the board.
func (s Square) Valid() bool { return s >= 0 && s < 64 }

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return string([]byte{byte('a' + s.File()), byte('1' + s.Rank())})
}

// offset returns the square df files and dr ranks away, or false when the
// step leaves the board.
func (s Square) offset(df, dr int) (Square, bool) {
	f, r := s.File()+df, s.Rank()+dr
	if f < 0 || f > 7 || r < 0 || r > 7 {
		return NoSquare, false
	}
	return Square(r*8 + f), true
}

// ParseSquare parses coordinates like "e4".
func ParseSquare(s string) (Square, error) {
	s = strings.TrimSpace(s)
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return NoSquare, fmt.Errorf("invalid square %q", s)
	}
	return NewSquare(int(s[0]-'a'), int(s[1]-'1')), nil
}

// CastlingRights holds the four independent castling flags.
type CastlingRights uint8

const (
	WhiteKingSide CastlingRights = 1 << iota
	WhiteQueenSide
	BlackKingSide
	BlackQueenSide

	NoCastling  CastlingRights = 0
	AllCastling                = WhiteKingSide | WhiteQueenSide | BlackKingSide | BlackQueenSide
)

func (c CastlingRights) Has(r CastlingRights) bool { return c&r == r }

func (c CastlingRights) String() string {
	if c == NoCastling {
		return "-"
	}
	var b strings.Builder
	if c.Has(WhiteKingSide) {
		b.WriteByte('K')
	}
	if c.Has(WhiteQueenSide) {
		b.WriteByte('Q')
	}
	if c.Has(BlackKingSide) {
		b.WriteByte('k')
	}
	if c.Has(BlackQueenSide) {
		b.WriteByte('q')
	}
	return b.String()
}

func kingSideRight(c Color) CastlingRights {
	if c == White {
		return WhiteKingSide
	}
	return BlackKingSide
}

func queenSideRight(c Color) CastlingRights {
	if c == White {
		return WhiteQueenSide
	}
	return BlackQueenSide
}

// homeRank is the back rank of a side.
func homeRank(c Color) int {
	if c == White {
		return 0
	}
	return 7
}

// pawnDir is the rank delta of a forward pawn step.
func pawnDir(c Color) int {
	if c == White {
		return 1
	}
	return -1
}
