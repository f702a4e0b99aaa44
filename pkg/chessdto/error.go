package chessdto

// Error codes returned in DomainError.Code.
const (
	CodeMalformedMove = "malformed_move"
	CodeIllegalMove   = "illegal_move"
	CodeGameOver      = "game_over"
	CodeBadRequest    = "bad_request"
	CodeInternal      = "internal"
)

type DomainError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "chess service error"
}
