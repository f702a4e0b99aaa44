package chess

import "fmt"

// Board is a complete chess position. It is a value type: transitions return a
// new Board and never modify the receiver.
type Board struct {
	squares  [64]Piece
	turn     Color
	castling CastlingRights
	epSquare Square
	halfmove int
	fullmove int
}

var backRank = [8]PieceKind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// StartingBoard returns the standard initial position.
func StartingBoard() Board {
	b := Board{turn: White, castling: AllCastling, epSquare: NoSquare, fullmove: 1}
	for f := 0; f < 8; f++ {
		b.squares[NewSquare(f, 0)] = Piece{White, backRank[f]}
		b.squares[NewSquare(f, 1)] = Piece{White, Pawn}
		b.squares[NewSquare(f, 6)] = Piece{Black, Pawn}
		b.squares[NewSquare(f, 7)] = Piece{Black, backRank[f]}
	}
	return b
}

func (b Board) PieceAt(sq Square) Piece {
	if !sq.Valid() {
		return NoPiece
	}
	return b.squares[sq]
}

func (b Board) SideToMove() Color { return b.turn }
func (b Board) Castling() CastlingRights { return b.castling }
func (b Board) EnPassant() Square { return b.epSquare }
func (b Board) HalfmoveClock() int { return b.halfmove }
func (b Board) FullmoveNumber() int { return b.fullmove }
func (b Board) String() string { return b.FEN() }
func (b Board) kingOf(c Color) Piece { return Piece{Color: c, Kind: King} }
func (b Board) occupied(sq Square) bool { return !b.squares[sq].IsEmpty() }
func (b Board) ownedBy(sq Square, c Color) bool {
	p := b.squares[sq]
	return !p.IsEmpty() && p.Color == c
}

// KingSquare returns the square of c's king, or NoSquare if there is none.
func (b Board) KingSquare(c Color) Square {
	k := b.kingOf(c)
	for i, p := range b.squares {
		if p == k {
			return Square(i)
		}
	}
	return NoSquare
}

func (b Board) countKings(c Color) int {
	n := 0
	k := b.kingOf(c)
	for _, p := range b.squares {
		if p == k {
			n++
		}
	}
	return n
}

// InCheck reports whether the side to move is in check.
func (b Board) InCheck() bool {
	return b.kingAttacked(b.turn)
}

func (b Board) kingAttacked(c Color) bool {
	ks := b.KingSquare(c)
	if ks == NoSquare {
		return false
	}
	return IsSquareAttacked(b, ks, c.Other())
}

// PositionKey identifies a position for repetition purposes. Move counters are
// excluded and the en-passant square only counts when a capture onto it is
// actually legal.
type PositionKey struct {
	squares  [64]Piece
	turn     Color
	castling CastlingRights
	epSquare Square
}

func (b Board) Key() PositionKey {
	key := PositionKey{squares: b.squares, turn: b.turn, castling: b.castling, epSquare: NoSquare}
	if b.epSquare != NoSquare {
		for _, m := range LegalMoves(b) {
			if m.EnPassant {
				key.epSquare = b.epSquare
				break
			}
		}
	}
	return key
}

// Apply returns the board after m. It verifies that m is internally
// consistent with the position and that the mover's king is not left
// attacked; it does not check that m is reachable by the movement rules.
func (b Board) Apply(m Move) (Board, error) {
	if err := b.checkTransition(m); err != nil {
		return b, err
	}
	nb := b.applyUnchecked(m)
	if nb.kingAttacked(b.turn) {
		return b, fmt.Errorf("%w: %s leaves the %s king attacked", ErrIllegalTransition, m, b.turn)
	}
	if nb.countKings(White) != 1 || nb.countKings(Black) != 1 {
		return b, fmt.Errorf("%w: %s breaks the king count", ErrIllegalTransition, m)
	}
	return nb, nil
}

func (b Board) checkTransition(m Move) error {
	if !m.From.Valid() || !m.To.Valid() || m.From == m.To {
		return fmt.Errorf("%w: bad squares in %s", ErrIllegalTransition, m)
	}
	mover := b.squares[m.From]
	if mover.IsEmpty() {
		return fmt.Errorf("%w: no piece on %s", ErrIllegalTransition, m.From)
	}
	if mover.Color != b.turn {
		return fmt.Errorf("%w: %s on %s is not the side to move", ErrIllegalTransition, mover, m.From)
	}
	target := b.squares[m.To]
	if !target.IsEmpty() {
		if target.Color == b.turn {
			return fmt.Errorf("%w: %s captures own piece", ErrIllegalTransition, m)
		}
		if target.Kind == King {
			return fmt.Errorf("%w: %s captures a king", ErrIllegalTransition, m)
		}
	}

	lastRank := homeRank(b.turn.Other())
	switch {
	case m.Promotion != NoKind:
		if mover.Kind != Pawn || m.To.Rank() != lastRank {
			return fmt.Errorf("%w: promotion outside the last rank in %s", ErrIllegalTransition, m)
		}
		if m.Promotion < Knight || m.Promotion > Queen {
			return fmt.Errorf("%w: cannot promote to %s", ErrIllegalTransition, m.Promotion)
		}
	case mover.Kind == Pawn && m.To.Rank() == lastRank:
		return fmt.Errorf("%w: pawn reaches the last rank without promotion in %s", ErrIllegalTransition, m)
	}

	if m.EnPassant {
		if mover.Kind != Pawn || m.To != b.epSquare || !target.IsEmpty() {
			return fmt.Errorf("%w: bad en passant %s", ErrIllegalTransition, m)
		}
		captured := b.squares[NewSquare(m.To.File(), m.From.Rank())]
		if captured != (Piece{b.turn.Other(), Pawn}) {
			return fmt.Errorf("%w: en passant %s without a pawn to capture", ErrIllegalTransition, m)
		}
	}

	if m.Castle {
		rank := homeRank(b.turn)
		if mover.Kind != King || m.From != NewSquare(4, rank) || m.To.Rank() != rank {
			return fmt.Errorf("%w: bad castle %s", ErrIllegalTransition, m)
		}
		rookFrom, _ := castleRookSquares(m)
		if b.squares[rookFrom] != (Piece{b.turn, Rook}) {
			return fmt.Errorf("%w: castle %s without a rook on %s", ErrIllegalTransition, m, rookFrom)
		}
	}
	return nil
}

// castleRookSquares returns the rook's origin and destination for a castling
// king move.
func castleRookSquares(m Move) (from, to Square) {
	rank := m.From.Rank()
	if m.To.File() == 6 {
		return NewSquare(7, rank), NewSquare(5, rank)
	}
	return NewSquare(0, rank), NewSquare(3, rank)
}

// rightsLostAt maps corner and king squares to the castling rights that
// disappear when a piece leaves or lands on them.
var rightsLostAt = map[Square]CastlingRights{
	0:  WhiteQueenSide,
	7:  WhiteKingSide,
	4:  WhiteKingSide | WhiteQueenSide,
	56: BlackQueenSide,
	63: BlackKingSide,
	60: BlackKingSide | BlackQueenSide,
}

func (b Board) applyUnchecked(m Move) Board {
	nb := b
	mover := nb.squares[m.From]
	captured := nb.squares[m.To]
	pawnMove := mover.Kind == Pawn

	nb.squares[m.From] = NoPiece
	if m.EnPassant {
		capSq := NewSquare(m.To.File(), m.From.Rank())
		captured = nb.squares[capSq]
		nb.squares[capSq] = NoPiece
	}
	if m.Promotion != NoKind {
		mover.Kind = m.Promotion
	}
	nb.squares[m.To] = mover
	if m.Castle {
		rf, rt := castleRookSquares(m)
		nb.squares[rt] = nb.squares[rf]
		nb.squares[rf] = NoPiece
	}

	nb.castling &^= rightsLostAt[m.From] | rightsLostAt[m.To]

	nb.epSquare = NoSquare
	if pawnMove && (m.To.Rank()-m.From.Rank() == 2 || m.From.Rank()-m.To.Rank() == 2) {
		nb.epSquare = NewSquare(m.From.File(), (m.From.Rank()+m.To.Rank())/2)
	}

	if pawnMove || !captured.IsEmpty() {
		nb.halfmove = 0
	} else {
		nb.halfmove++
	}
	if b.turn == Black {
		nb.fullmove++
	}
	nb.turn = b.turn.Other()
	return nb
}
