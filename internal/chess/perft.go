package chess

// Perft counts the leaf nodes of the legal move tree of b to the given depth.
func Perft(b Board, depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	moves := LegalMoves(b)
	if depth == 1 {
		return uint64(len(moves))
	}
	var n uint64
	for _, m := range moves {
		n += Perft(b.applyUnchecked(m), depth-1)
	}
	return n
}

// Divide returns the perft count below each legal move of b, keyed by the
// move in coordinate notation.
func Divide(b Board, depth int) map[string]uint64 {
	out := make(map[string]uint64)
	if depth <= 0 {
		return out
	}
	for _, m := range LegalMoves(b) {
		out[m.String()] = Perft(b.applyUnchecked(m), depth-1)
	}
	return out
}
