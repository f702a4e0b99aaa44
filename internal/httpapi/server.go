// Package httpapi exposes the shared session over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/rusty-chess-go/internal/chess"
	"github.com/park285/rusty-chess-go/internal/game"
	"github.com/park285/rusty-chess-go/internal/msgcat"
	"github.com/park285/rusty-chess-go/internal/render"
	"github.com/park285/rusty-chess-go/internal/session"
	"github.com/park285/rusty-chess-go/pkg/chessdto"
)

type Server struct {
	coord      *session.Coordinator
	renderer   render.BoardRenderer
	msgs       *msgcat.Catalog
	logger     *zap.Logger
	corsOrigin string
	srv        *fasthttp.Server
}

type Option func(*Server)

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithRenderer(r render.BoardRenderer) Option {
	return func(s *Server) { s.renderer = r }
}

func WithCatalog(c *msgcat.Catalog) Option {
	return func(s *Server) { s.msgs = c }
}

// WithCORSOrigin sets Access-Control-Allow-Origin. Empty disables CORS
// headers.
func WithCORSOrigin(origin string) Option {
	return func(s *Server) { s.corsOrigin = strings.TrimSpace(origin) }
}

func NewServer(coord *session.Coordinator, opts ...Option) *Server {
	s := &Server{
		coord:      coord,
		renderer:   render.NewPNGRenderer(),
		logger:     zap.NewNop(),
		corsOrigin: "*",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.msgs == nil {
		s.msgs = msgcat.MustDefault()
	}
	s.srv = &fasthttp.Server{
		Handler:      s.Handler(),
		Name:         "rusty-chess",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) ListenAndServe(addr string) error { return s.srv.ListenAndServe(addr) }

func (s *Server) Serve(ln net.Listener) error { return s.srv.Serve(ln) }

func (s *Server) Shutdown(ctx context.Context) error { return s.srv.ShutdownWithContext(ctx) }

// Handler routes requests. It is exported for embedding in other servers.
func (s *Server) Handler() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		s.setCORS(ctx)
		if ctx.IsOptions() {
			ctx.SetStatusCode(fasthttp.StatusNoContent)
			return
		}
		s.route(ctx)
		s.logger.Debug("http_request",
			zap.ByteString("method", ctx.Method()),
			zap.ByteString("path", ctx.Path()),
			zap.Int("status", ctx.Response.StatusCode()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

func (s *Server) route(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	switch {
	case path == "/board" && ctx.IsGet():
		s.handleBoard(ctx)
	case path == "/move" && ctx.IsPost():
		s.handleMove(ctx)
	case path == "/moves" && ctx.IsGet():
		s.handleMoves(ctx)
	case path == "/outcome" && ctx.IsGet():
		s.handleOutcome(ctx)
	case path == "/state" && ctx.IsGet():
		writeJSON(ctx, fasthttp.StatusOK, s.coord.Snapshot().DTO())
	case path == "/board.png" && ctx.IsGet():
		s.handleBoardPNG(ctx)
	case path == "/reset" && ctx.IsPost():
		s.handleReset(ctx)
	case path == "/resign" && ctx.IsPost():
		s.handleResign(ctx)
	case path == "/healthz":
		ctx.SetContentType("text/plain; charset=utf-8")
		ctx.SetBodyString("ok")
	default:
		ctx.Error("not found", fasthttp.StatusNotFound)
	}
}

func (s *Server) setCORS(ctx *fasthttp.RequestCtx) {
	if s.corsOrigin == "" {
		return
	}
	h := &ctx.Response.Header
	h.Set("Access-Control-Allow-Origin", s.corsOrigin)
	h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
	h.Set("Access-Control-Max-Age", "3600")
}

func (s *Server) handleBoard(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusOK, chessdto.BoardState{BoardFEN: s.coord.CurrentFEN()})
}

func (s *Server) handleMove(ctx *fasthttp.RequestCtx) {
	var req chessdto.MoveRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		s.badRequest(ctx, err)
		return
	}
	fen, err := s.coord.ApplyMove(ctx, req.ChessMove)
	if err != nil {
		s.writeDomainError(ctx, req.ChessMove, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, chessdto.BoardState{BoardFEN: fen})
}

func (s *Server) handleMoves(ctx *fasthttp.RequestCtx) {
	var resp chessdto.LegalMovesResponse
	_ = s.coord.Read(func(v session.View) error {
		resp.BoardFEN = v.CurrentFEN()
		resp.Moves = make([]string, 0, 40)
		for _, m := range v.LegalMoves() {
			resp.Moves = append(resp.Moves, m.String())
		}
		return nil
	})
	writeJSON(ctx, fasthttp.StatusOK, resp)
}

func (s *Server) handleOutcome(ctx *fasthttp.RequestCtx) {
	var resp chessdto.OutcomeResponse
	_ = s.coord.Read(func(v session.View) error {
		o := v.Outcome()
		resp = session.OutcomeDTO(o)
		resp.Message = s.msgs.Outcome(o, v.Board().SideToMove())
		return nil
	})
	writeJSON(ctx, fasthttp.StatusOK, resp)
}

func (s *Server) handleBoardPNG(ctx *fasthttp.RequestCtx) {
	var (
		board chess.Board
		opts  render.Options
	)
	_ = s.coord.Read(func(v session.View) error {
		board = v.Board()
		if m, ok := v.LastMove(); ok {
			opts.Highlight = &render.Highlight{From: m.From, To: m.To}
		}
		opts.Caption = s.msgs.Outcome(v.Outcome(), board.SideToMove())
		return nil
	})
	opts.Flip = strings.EqualFold(string(ctx.QueryArgs().Peek("orientation")), "black")

	png, err := s.renderer.RenderPNG(ctx, board, opts)
	if err != nil {
		s.logger.Error("chess_render_failed", zap.Error(err))
		writeJSON(ctx, fasthttp.StatusInternalServerError, chessdto.DomainError{
			Code:    chessdto.CodeInternal,
			Message: s.msgs.Text("error.internal", nil, "internal error"),
		})
		return
	}
	ctx.SetContentType("image/png")
	ctx.Response.Header.Set("Cache-Control", "no-store")
	ctx.SetBody(png)
}

func (s *Server) handleReset(ctx *fasthttp.RequestCtx) {
	snap, err := s.coord.Reset(ctx)
	if err != nil {
		s.logger.Error("chess_reset_failed", zap.Error(err))
		writeJSON(ctx, fasthttp.StatusInternalServerError, chessdto.DomainError{Code: chessdto.CodeInternal, Message: err.Error()})
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, snap.DTO())
}

func (s *Server) handleResign(ctx *fasthttp.RequestCtx) {
	var req chessdto.ResignRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		s.badRequest(ctx, err)
		return
	}
	var loser chess.Color
	switch strings.ToLower(strings.TrimSpace(req.Color)) {
	case "white":
		loser = chess.White
	case "black":
		loser = chess.Black
	default:
		s.badRequest(ctx, errors.New("color must be white or black"))
		return
	}
	snap, err := s.coord.Resign(ctx, loser)
	if err != nil {
		s.writeDomainError(ctx, "", err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, snap.DTO())
}

func (s *Server) badRequest(ctx *fasthttp.RequestCtx, err error) {
	writeJSON(ctx, fasthttp.StatusBadRequest, chessdto.DomainError{
		Code:    chessdto.CodeBadRequest,
		Message: s.msgs.Text("error.bad_request", map[string]any{"Detail": err.Error()}, err.Error()),
	})
}

// writeDomainError maps rules errors to 400 responses. ErrGameOver is tested
// first because it also matches ErrIllegalMove.
func (s *Server) writeDomainError(ctx *fasthttp.RequestCtx, move string, err error) {
	var code string
	data := map[string]any{"Move": move}
	switch {
	case errors.Is(err, game.ErrGameOver):
		code = chessdto.CodeGameOver
		data["Outcome"] = s.coord.Outcome().String()
	case errors.Is(err, chess.ErrMalformedMove):
		code = chessdto.CodeMalformedMove
	case errors.Is(err, chess.ErrIllegalMove):
		code = chessdto.CodeIllegalMove
	default:
		s.logger.Error("chess_unexpected_error", zap.Error(err))
		writeJSON(ctx, fasthttp.StatusInternalServerError, chessdto.DomainError{Code: chessdto.CodeInternal, Message: err.Error()})
		return
	}
	writeJSON(ctx, fasthttp.StatusBadRequest, chessdto.DomainError{
		Code:    code,
		Message: s.msgs.Text("error."+code, data, err.Error()),
	})
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		ctx.Error("encode response", fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}
