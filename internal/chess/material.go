package chess

// InsufficientMaterial reports whether neither side can possibly deliver
// mate: king against king, king and a single minor piece against king, or
// kings with bishops only where every bishop stands on the same square color.
func InsufficientMaterial(b Board) bool {
	var minors, knights int
	bishopColors := [2]bool{}
	for i, p := range b.squares {
		switch p.Kind {
		case NoKind, King:
		case Knight:
			minors++
			knights++
		case Bishop:
			minors++
			sq := Square(i)
			bishopColors[(sq.File()+sq.Rank())%2] = true
		default:
			return false
		}
	}
	switch {
	case minors <= 1:
		return true
	case knights > 0:
		return false
	default:
		return !(bishopColors[0] && bishopColors[1])
	}
}
