package chess

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN of the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN decodes a six-field FEN string. Besides the syntax it rejects
// positions no game can reach: a king count other than one per side, pawns
// on the first or last rank, or the side not to move standing in check.
func ParseFEN(fen string) (Board, error) {
	fields := strings.Fields(fen)
	if len(fields) != 6 {
		return Board{}, fmt.Errorf("%w: want 6 fields, got %d", ErrMalformedFEN, len(fields))
	}
	var b Board

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return Board{}, fmt.Errorf("%w: want 8 ranks, got %d", ErrMalformedFEN, len(ranks))
	}
	for i, row := range ranks {
		rank := 7 - i
		file := 0
		for j := 0; j < len(row); j++ {
			c := row[j]
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				if file > 8 {
					break
				}
				continue
			}
			p, ok := pieceFromLetter(c)
			if !ok {
				return Board{}, fmt.Errorf("%w: unknown piece %q", ErrMalformedFEN, c)
			}
			if file > 7 {
				file++
				break
			}
			b.squares[NewSquare(file, rank)] = p
			file++
		}
		if file != 8 {
			return Board{}, fmt.Errorf("%w: rank %d does not describe 8 squares", ErrMalformedFEN, rank+1)
		}
	}

	switch fields[1] {
	case "w":
		b.turn = White
	case "b":
		b.turn = Black
	default:
		return Board{}, fmt.Errorf("%w: side to move %q", ErrMalformedFEN, fields[1])
	}

	if fields[2] != "-" {
		for j := 0; j < len(fields[2]); j++ {
			var r CastlingRights
			switch fields[2][j] {
			case 'K':
				r = WhiteKingSide
			case 'Q':
				r = WhiteQueenSide
			case 'k':
				r = BlackKingSide
			case 'q':
				r = BlackQueenSide
			default:
				return Board{}, fmt.Errorf("%w: castling field %q", ErrMalformedFEN, fields[2])
			}
			if b.castling.Has(r) {
				return Board{}, fmt.Errorf("%w: castling field %q repeats a right", ErrMalformedFEN, fields[2])
			}
			b.castling |= r
		}
	}

	b.epSquare = NoSquare
	if fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil {
			return Board{}, fmt.Errorf("%w: en passant field %q", ErrMalformedFEN, fields[3])
		}
		want := 5
		if b.turn == Black {
			want = 2
		}
		if sq.Rank() != want {
			return Board{}, fmt.Errorf("%w: en passant square %s does not fit %s to move", ErrMalformedFEN, sq, b.turn)
		}
		b.epSquare = sq
	}

	var err error
	if b.halfmove, err = parseCounter(fields[4]); err != nil {
		return Board{}, fmt.Errorf("%w: halfmove clock %q", ErrMalformedFEN, fields[4])
	}
	if b.fullmove, err = parseCounter(fields[5]); err != nil || b.fullmove < 1 {
		return Board{}, fmt.Errorf("%w: fullmove number %q", ErrMalformedFEN, fields[5])
	}

	if err := b.validate(); err != nil {
		return Board{}, err
	}
	return b, nil
}

func parseCounter(s string) (int, error) {
	for j := 0; j < len(s); j++ {
		if s[j] < '0' || s[j] > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(s)
}

func (b Board) validate() error {
	if n := b.countKings(White); n != 1 {
		return fmt.Errorf("%w: %d white kings", ErrMalformedFEN, n)
	}
	if n := b.countKings(Black); n != 1 {
		return fmt.Errorf("%w: %d black kings", ErrMalformedFEN, n)
	}
	for f := 0; f < 8; f++ {
		if b.squares[NewSquare(f, 0)].Kind == Pawn || b.squares[NewSquare(f, 7)].Kind == Pawn {
			return fmt.Errorf("%w: pawn on the first or last rank", ErrMalformedFEN)
		}
	}
	if b.kingAttacked(b.turn.Other()) {
		return fmt.Errorf("%w: %s is in check with %s to move", ErrMalformedFEN, b.turn.Other(), b.turn)
	}
	return nil
}

// FEN encodes b as a six-field FEN string.
func (b Board) FEN() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			p := b.squares[NewSquare(file, rank)]
			if p.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(p.Letter())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
	side := "w"
	if b.turn == Black {
		side = "b"
	}
	fmt.Fprintf(&sb, " %s %s %s %d %d", side, b.castling, b.epSquare, b.halfmove, b.fullmove)
	return sb.String()
}
