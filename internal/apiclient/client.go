// Package apiclient is a fasthttp client for the chess HTTP API.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/park285/rusty-chess-go/internal/chess"
	"github.com/park285/rusty-chess-go/internal/game"
	"github.com/park285/rusty-chess-go/pkg/chessdto"
)

type Client struct {
	baseURL string
	http    *fasthttp.Client

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) { c.http.MaxConnsPerHost = n }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

// WithDial replaces the dialer, e.g. with an in-memory listener in tests.
func WithDial(dial fasthttp.DialFunc) Option {
	return func(c *Client) { c.http.Dial = dial }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 16},
		defaultTimeout: 10 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-2xx answer of the server. Domain errors unwrap to the
// matching rules sentinel, so errors.Is works the same against a remote
// session as against a local one.
type APIError struct {
	Status int
	Domain chessdto.DomainError
}

func (e *APIError) Error() string {
	return fmt.Sprintf("chess api error: status=%d code=%s: %s", e.Status, e.Domain.Code, e.Domain.Error())
}

func (e *APIError) Unwrap() error {
	switch e.Domain.Code {
	case chessdto.CodeGameOver:
		return game.ErrGameOver
	case chessdto.CodeIllegalMove:
		return chess.ErrIllegalMove
	case chessdto.CodeMalformedMove:
		return chess.ErrMalformedMove
	}
	return nil
}

// Board returns the FEN of the current position.
func (c *Client) Board(ctx context.Context) (string, error) {
	var st chessdto.BoardState
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/board", nil, &st, true); err != nil {
		return "", err
	}
	return st.BoardFEN, nil
}

// Move submits a move and returns the resulting FEN.
func (c *Client) Move(ctx context.Context, move string) (string, error) {
	var st chessdto.BoardState
	req := chessdto.MoveRequest{ChessMove: move}
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/move", req, &st, false); err != nil {
		return "", err
	}
	return st.BoardFEN, nil
}

func (c *Client) LegalMoves(ctx context.Context) (*chessdto.LegalMovesResponse, error) {
	var resp chessdto.LegalMovesResponse
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/moves", nil, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Outcome(ctx context.Context) (*chessdto.OutcomeResponse, error) {
	var resp chessdto.OutcomeResponse
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/outcome", nil, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) State(ctx context.Context) (*chessdto.SessionState, error) {
	var resp chessdto.SessionState
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/state", nil, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Reset(ctx context.Context) (*chessdto.SessionState, error) {
	var resp chessdto.SessionState
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/reset", nil, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Resign(ctx context.Context, color string) (*chessdto.SessionState, error) {
	var resp chessdto.SessionState
	req := chessdto.ResignRequest{Color: color}
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/resign", req, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any, retry bool) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	req.Header.SetContentType("application/json")
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		req.SetBody(payload)
	}

	attempts := 1
	if retry && c.retryMax > 1 {
		attempts = c.retryMax
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx)); err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
		} else if status := resp.StatusCode(); status < 200 || status >= 300 {
			apiErr := &APIError{Status: status}
			if json.Unmarshal(resp.Body(), &apiErr.Domain) != nil || apiErr.Domain.Code == "" {
				apiErr.Domain = chessdto.DomainError{Message: truncate(string(resp.Body()), 512)}
			}
			if !shouldRetryStatus(status) {
				return apiErr
			}
			lastErr = apiErr
		} else {
			if out != nil {
				if err := json.Unmarshal(resp.Body(), out); err != nil {
					return fmt.Errorf("decode response: %w", err)
				}
			}
			return nil
		}

		if attempt < attempts {
			if err := sleepWithContext(ctx, backoffDuration(attempt)); err != nil {
				return lastErr
			}
		}
	}
	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return lastErr
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	return time.Duration(1<<uint(attempt-1)) * 100 * time.Millisecond
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
