package session

import (
	"github.com/park285/rusty-chess-go/internal/game"
	"github.com/park285/rusty-chess-go/pkg/chessdto"
)

// OutcomeDTO converts an outcome to its wire form.
func OutcomeDTO(o game.Outcome) chessdto.OutcomeResponse {
	r := chessdto.OutcomeResponse{Outcome: o.Kind.String(), Terminal: o.IsTerminal()}
	if o.IsDecisive() {
		r.Winner = o.Winner.String()
	}
	return r
}

// DTO converts s to its wire form.
func (s Snapshot) DTO() chessdto.SessionState {
	o := OutcomeDTO(s.Outcome)
	return chessdto.SessionState{
		SessionID:  s.SessionID,
		Generation: s.Generation,
		Ply:        s.Ply,
		FEN:        s.FEN,
		Outcome:    o.Outcome,
		Winner:     o.Winner,
		LastMove:   s.LastMove,
		UpdatedAt:  s.UpdatedAt,
	}
}
