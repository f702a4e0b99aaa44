package chessdto

// LegalMovesResponse is returned by GET /moves.
type LegalMovesResponse struct {
	BoardFEN string   `json:"board_fen"`
	Moves    []string `json:"moves"`
}
