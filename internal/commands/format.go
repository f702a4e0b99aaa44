package commands

import (
	"strings"

	"github.com/park285/rusty-chess-go/internal/chess"
)

// FormatBoard draws fen as an 8x8 text diagram, rank 8 on top, followed by
// the FEN itself. Unparseable input is returned as is.
func FormatBoard(fen string) string {
	b, err := chess.ParseFEN(fen)
	if err != nil {
		return fen
	}
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		sb.WriteByte(byte('1' + rank))
		sb.WriteByte(' ')
		for file := 0; file < 8; file++ {
			sb.WriteByte(' ')
			sb.WriteByte(b.PieceAt(chess.NewSquare(file, rank)).Letter())
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("   a b c d e f g h\n")
	sb.WriteString(fen)
	return sb.String()
}

// formatMoves lays moves out eight per line.
func formatMoves(moves []string) string {
	var sb strings.Builder
	for i, m := range moves {
		switch {
		case i == 0:
		case i%8 == 0:
			sb.WriteByte('\n')
		default:
			sb.WriteByte(' ')
		}
		sb.WriteString(m)
	}
	return sb.String()
}
