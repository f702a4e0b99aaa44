package chessdto

import "time"

// BoardState is returned by GET /board and a successful POST /move.
type BoardState struct {
	BoardFEN string `json:"board_fen"`
}

type OutcomeResponse struct {
	Outcome  string `json:"outcome"`
	Winner   string `json:"winner,omitempty"`
	Terminal bool   `json:"terminal"`
	Message  string `json:"message,omitempty"`
}

// SessionState describes the shared game as published to observers.
type SessionState struct {
	SessionID  string    `json:"session_id"`
	Generation uint64    `json:"generation"`
	Ply        int       `json:"ply"`
	FEN        string    `json:"fen"`
	Outcome    string    `json:"outcome"`
	Winner     string    `json:"winner,omitempty"`
	LastMove   string    `json:"last_move,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}
