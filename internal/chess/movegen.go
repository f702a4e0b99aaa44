package chess

var promotionKinds = [4]PieceKind{Queen, Rook, Bishop, Knight}

// PseudoLegalMoves lists every move that follows the movement rules of the
// pieces of the side to move, ignoring whether the mover's king ends up
// attacked. Castling is the exception: it is only produced when the king's
// origin, transit and destination squares are all safe.
func PseudoLegalMoves(b Board) []Move {
	moves := make([]Move, 0, 48)
	us := b.turn
	for i, p := range b.squares {
		if p.IsEmpty() || p.Color != us {
			continue
		}
		from := Square(i)
		switch p.Kind {
		case Pawn:
			moves = b.pawnMoves(moves, from)
		case Knight:
			moves = b.stepMoves(moves, from, knightDeltas[:])
		case Bishop:
			moves = b.slideMoves(moves, from, bishopDirs[:])
		case Rook:
			moves = b.slideMoves(moves, from, rookDirs[:])
		case Queen:
			moves = b.slideMoves(moves, from, rookDirs[:])
			moves = b.slideMoves(moves, from, bishopDirs[:])
		case King:
			moves = b.stepMoves(moves, from, kingDeltas[:])
			moves = b.castleMoves(moves, from)
		}
	}
	return moves
}

// LegalMoves filters PseudoLegalMoves down to the moves that do not leave
// the mover's king attacked.
func LegalMoves(b Board) []Move {
	pseudo := PseudoLegalMoves(b)
	legal := pseudo[:0]
	for _, m := range pseudo {
		if !b.applyUnchecked(m).kingAttacked(b.turn) {
			legal = append(legal, m)
		}
	}
	return legal
}

// HasLegalMove reports whether the side to move has at least one legal move.
func HasLegalMove(b Board) bool {
	for _, m := range PseudoLegalMoves(b) {
		if !b.applyUnchecked(m).kingAttacked(b.turn) {
			return true
		}
	}
	return false
}

func (b Board) canLand(sq Square) bool {
	p := b.squares[sq]
	return p.IsEmpty() || (p.Color != b.turn && p.Kind != King)
}

func (b Board) stepMoves(moves []Move, from Square, deltas []delta) []Move {
	for _, d := range deltas {
		to, ok := from.offset(d.df, d.dr)
		if ok && b.canLand(to) {
			moves = append(moves, Move{From: from, To: to})
		}
	}
	return moves
}

func (b Board) slideMoves(moves []Move, from Square, dirs []delta) []Move {
	for _, d := range dirs {
		cur := from
		for {
			to, ok := cur.offset(d.df, d.dr)
			if !ok {
				break
			}
			if b.occupied(to) {
				if b.canLand(to) {
					moves = append(moves, Move{From: from, To: to})
				}
				break
			}
			moves = append(moves, Move{From: from, To: to})
			cur = to
		}
	}
	return moves
}

func (b Board) pawnMoves(moves []Move, from Square) []Move {
	us := b.turn
	dir := pawnDir(us)
	lastRank := homeRank(us.Other())

	add := func(to Square, ep bool) {
		if to.Rank() == lastRank {
			for _, k := range promotionKinds {
				moves = append(moves, Move{From: from, To: to, Promotion: k})
			}
			return
		}
		moves = append(moves, Move{From: from, To: to, EnPassant: ep})
	}

	if one, ok := from.offset(0, dir); ok && !b.occupied(one) {
		add(one, false)
		startRank := homeRank(us) + dir
		if from.Rank() == startRank {
			if two, ok := from.offset(0, 2*dir); ok && !b.occupied(two) {
				add(two, false)
			}
		}
	}
	for _, df := range [2]int{-1, 1} {
		to, ok := from.offset(df, dir)
		if !ok {
			continue
		}
		if to == b.epSquare && !b.occupied(to) {
			if b.squares[NewSquare(to.File(), from.Rank())] == (Piece{us.Other(), Pawn}) {
				add(to, true)
			}
			continue
		}
		if t := b.squares[to]; !t.IsEmpty() && t.Color != us && t.Kind != King {
			add(to, false)
		}
	}
	return moves
}

func (b Board) castleMoves(moves []Move, from Square) []Move {
	us := b.turn
	rank := homeRank(us)
	if from != NewSquare(4, rank) {
		return moves
	}
	them := us.Other()
	if IsSquareAttacked(b, from, them) {
		return moves
	}
	rook := Piece{us, Rook}

	if b.castling.Has(kingSideRight(us)) && b.squares[NewSquare(7, rank)] == rook {
		f, g := NewSquare(5, rank), NewSquare(6, rank)
		if !b.occupied(f) && !b.occupied(g) &&
			!IsSquareAttacked(b, f, them) && !IsSquareAttacked(b, g, them) {
			moves = append(moves, Move{From: from, To: g, Castle: true})
		}
	}
	if b.castling.Has(queenSideRight(us)) && b.squares[NewSquare(0, rank)] == rook {
		d, c, bsq := NewSquare(3, rank), NewSquare(2, rank), NewSquare(1, rank)
		if !b.occupied(d) && !b.occupied(c) && !b.occupied(bsq) &&
			!IsSquareAttacked(b, d, them) && !IsSquareAttacked(b, c, them) {
			moves = append(moves, Move{From: from, To: c, Castle: true})
		}
	}
	return moves
}
