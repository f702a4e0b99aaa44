package chessdto

// MoveRequest is the body of POST /move.
type MoveRequest struct {
	ChessMove string `json:"chess_move"`
}

// ResignRequest is the body of POST /resign. Color is "white" or "black".
type ResignRequest struct {
	Color string `json:"color"`
}
