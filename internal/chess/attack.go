package chess

type delta struct{ df, dr int }

var (
	knightDeltas = [8]delta{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingDeltas   = [8]delta{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	rookDirs     = [4]delta{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopDirs   = [4]delta{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// IsSquareAttacked reports whether any piece of color by attacks sq. Pawns
// count only their diagonal captures. Off-board squares are never attacked.
func IsSquareAttacked(b Board, sq Square, by Color) bool {
	if !sq.Valid() {
		return false
	}
	// a pawn of by attacks sq from one rank behind it
	for _, df := range [2]int{-1, 1} {
		if from, ok := sq.offset(df, -pawnDir(by)); ok && b.squares[from] == (Piece{by, Pawn}) {
			return true
		}
	}
	for _, d := range knightDeltas {
		if from, ok := sq.offset(d.df, d.dr); ok && b.squares[from] == (Piece{by, Knight}) {
			return true
		}
	}
	for _, d := range kingDeltas {
		if from, ok := sq.offset(d.df, d.dr); ok && b.squares[from] == (Piece{by, King}) {
			return true
		}
	}
	if slidingAttack(b, sq, by, rookDirs[:], Rook) {
		return true
	}
	return slidingAttack(b, sq, by, bishopDirs[:], Bishop)
}

func slidingAttack(b Board, sq Square, by Color, dirs []delta, kind PieceKind) bool {
	for _, d := range dirs {
		cur := sq
		for {
			next, ok := cur.offset(d.df, d.dr)
			if !ok {
				break
			}
			p := b.squares[next]
			if !p.IsEmpty() {
				if p.Color == by && (p.Kind == kind || p.Kind == Queen) {
					return true
				}
				break
			}
			cur = next
		}
	}
	return false
}
