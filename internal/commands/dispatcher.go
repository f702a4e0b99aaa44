// Package commands turns text commands into operations on a chess session.
// The same dispatcher drives the in-process game and the HTTP API.
package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/park285/rusty-chess-go/internal/chess"
	"github.com/park285/rusty-chess-go/internal/game"
	"github.com/park285/rusty-chess-go/internal/msgcat"
	"github.com/park285/rusty-chess-go/pkg/chessdto"
)

// Reply is the answer to one command line.
type Reply struct {
	Text string
	Quit bool
}

type Dispatcher struct {
	backend Backend
	msgs    *msgcat.Catalog
	logger  *zap.Logger
}

func NewDispatcher(backend Backend, msgs *msgcat.Catalog, logger *zap.Logger) *Dispatcher {
	if msgs == nil {
		msgs = msgcat.MustDefault()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{backend: backend, msgs: msgs, logger: logger}
}

// Welcome is the banner printed before the first prompt.
func (d *Dispatcher) Welcome(ctx context.Context) string {
	st, err := d.backend.State(ctx)
	if err != nil {
		return d.msgs.Text("cli.help", nil, "")
	}
	return d.msgs.Text("cli.welcome", map[string]any{"Session": st.SessionID}, st.SessionID)
}

// Handle runs one command line. Rule violations are reported in the reply
// text; the returned error is reserved for backend failures.
func (d *Dispatcher) Handle(ctx context.Context, line string) (Reply, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Reply{}, nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "get_board", "board":
		fen, err := d.backend.Board(ctx)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Text: FormatBoard(fen)}, nil
	case "make_move", "move":
		if len(args) != 1 {
			return Reply{Text: d.msgs.Text("cli.usage_move", nil, "usage: make_move <move>")}, nil
		}
		return d.move(ctx, args[0])
	case "moves":
		moves, err := d.backend.LegalMoves(ctx)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Text: formatMoves(moves)}, nil
	case "outcome", "status":
		o, err := d.backend.Outcome(ctx)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Text: outcomeText(o)}, nil
	case "resign":
		if len(args) != 1 {
			return Reply{Text: d.msgs.Text("cli.usage_resign", nil, "usage: resign white|black")}, nil
		}
		return d.resign(ctx, args[0])
	case "reset", "new":
		if _, err := d.backend.Reset(ctx); err != nil {
			return Reply{}, err
		}
		return Reply{Text: d.msgs.Text("cli.reset", nil, "new game")}, nil
	case "help", "?":
		return Reply{Text: strings.TrimRight(d.msgs.Text("cli.help", nil, ""), "\n")}, nil
	case "quit", "exit":
		return Reply{Quit: true}, nil
	}

	if len(args) == 0 {
		if _, err := chess.ParseMoveText(cmd); err == nil {
			return d.move(ctx, cmd)
		}
	}
	return Reply{Text: d.msgs.Text("cli.unknown", map[string]any{"Command": fields[0]}, "unknown command")}, nil
}

func (d *Dispatcher) move(ctx context.Context, text string) (Reply, error) {
	fen, err := d.backend.Move(ctx, text)
	if err != nil {
		if msg, ok := d.ruleError(ctx, text, err); ok {
			return Reply{Text: msg}, nil
		}
		return Reply{}, err
	}
	out := FormatBoard(fen)
	o, err := d.backend.Outcome(ctx)
	if err != nil {
		d.logger.Warn("chess_cli_outcome_failed", zap.Error(err))
		return Reply{Text: out}, nil
	}
	return Reply{Text: out + "\n" + outcomeText(o)}, nil
}

func (d *Dispatcher) resign(ctx context.Context, color string) (Reply, error) {
	var loser chess.Color
	switch strings.ToLower(color) {
	case "white", "w":
		loser = chess.White
	case "black", "b":
		loser = chess.Black
	default:
		return Reply{Text: d.msgs.Text("cli.usage_resign", nil, "usage: resign white|black")}, nil
	}
	if _, err := d.backend.Resign(ctx, loser); err != nil {
		if msg, ok := d.ruleError(ctx, "", err); ok {
			return Reply{Text: msg}, nil
		}
		return Reply{}, err
	}
	o, err := d.backend.Outcome(ctx)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: outcomeText(o)}, nil
}

// ruleError renders err when it is a rules rejection.
func (d *Dispatcher) ruleError(ctx context.Context, move string, err error) (string, bool) {
	data := map[string]any{"Move": move}
	var code string
	switch {
	case errors.Is(err, game.ErrGameOver):
		code = chessdto.CodeGameOver
		if o, oerr := d.backend.Outcome(ctx); oerr == nil {
			data["Outcome"] = o.Outcome
		}
	case errors.Is(err, chess.ErrMalformedMove):
		code = chessdto.CodeMalformedMove
	case errors.Is(err, chess.ErrIllegalMove):
		code = chessdto.CodeIllegalMove
	default:
		return "", false
	}
	return d.msgs.Text("error."+code, data, err.Error()), true
}

func outcomeText(o chessdto.OutcomeResponse) string {
	if o.Message != "" {
		return o.Message
	}
	if o.Winner != "" {
		return fmt.Sprintf("%s (%s)", o.Outcome, o.Winner)
	}
	return o.Outcome
}
