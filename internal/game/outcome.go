package game

import "github.com/park285/rusty-chess-go/internal/chess"

// Kind classifies the state of a game.
type Kind uint8

const (
	InProgress Kind = iota
	Checkmate
	Stalemate
	DrawFiftyMove
	DrawRepetition
	DrawInsufficientMaterial
	Resignation
)

var kindNames = map[Kind]string{
	InProgress:               "in_progress",
	Checkmate:                "checkmate",
	Stalemate:                "stalemate",
	DrawFiftyMove:            "draw_fifty_move",
	DrawRepetition:           "draw_repetition",
	DrawInsufficientMaterial: "draw_insufficient_material",
	Resignation:              "resignation",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return InProgress, false
}

// Outcome is the result of a game. Winner is meaningful only for
// Checkmate and Resignation.
type Outcome struct {
	Kind   Kind
	Winner chess.Color
}

func (o Outcome) IsTerminal() bool { return o.Kind != InProgress }

// IsDecisive reports whether the game ended with a winner.
func (o Outcome) IsDecisive() bool { return o.Kind == Checkmate || o.Kind == Resignation }

func (o Outcome) String() string {
	if o.IsDecisive() {
		return o.Kind.String() + ":" + o.Winner.String()
	}
	return o.Kind.String()
}
