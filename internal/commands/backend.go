package commands

import (
	"context"

	"github.com/park285/rusty-chess-go/internal/apiclient"
	"github.com/park285/rusty-chess-go/internal/chess"
	"github.com/park285/rusty-chess-go/internal/msgcat"
	"github.com/park285/rusty-chess-go/internal/session"
	"github.com/park285/rusty-chess-go/pkg/chessdto"
)

// Backend is the game the commands operate on, either in process or behind
// the HTTP API.
type Backend interface {
	Board(ctx context.Context) (string, error)
	Move(ctx context.Context, text string) (string, error)
	LegalMoves(ctx context.Context) ([]string, error)
	Outcome(ctx context.Context) (chessdto.OutcomeResponse, error)
	State(ctx context.Context) (chessdto.SessionState, error)
	Reset(ctx context.Context) (chessdto.SessionState, error)
	Resign(ctx context.Context, loser chess.Color) (chessdto.SessionState, error)
}

// LocalBackend runs commands against a coordinator in the same process.
type LocalBackend struct {
	coord *session.Coordinator
	msgs  *msgcat.Catalog
}

func NewLocalBackend(coord *session.Coordinator, msgs *msgcat.Catalog) *LocalBackend {
	if msgs == nil {
		msgs = msgcat.MustDefault()
	}
	return &LocalBackend{coord: coord, msgs: msgs}
}

func (b *LocalBackend) Board(context.Context) (string, error) {
	return b.coord.CurrentFEN(), nil
}

func (b *LocalBackend) Move(ctx context.Context, text string) (string, error) {
	return b.coord.ApplyMove(ctx, text)
}

func (b *LocalBackend) LegalMoves(context.Context) ([]string, error) {
	var out []string
	err := b.coord.Read(func(v session.View) error {
		for _, m := range v.LegalMoves() {
			out = append(out, m.String())
		}
		return nil
	})
	return out, err
}

func (b *LocalBackend) Outcome(context.Context) (chessdto.OutcomeResponse, error) {
	var resp chessdto.OutcomeResponse
	err := b.coord.Read(func(v session.View) error {
		o := v.Outcome()
		resp = session.OutcomeDTO(o)
		resp.Message = b.msgs.Outcome(o, v.Board().SideToMove())
		return nil
	})
	return resp, err
}

func (b *LocalBackend) State(context.Context) (chessdto.SessionState, error) {
	return b.coord.Snapshot().DTO(), nil
}

func (b *LocalBackend) Reset(ctx context.Context) (chessdto.SessionState, error) {
	snap, err := b.coord.Reset(ctx)
	if err != nil {
		return chessdto.SessionState{}, err
	}
	return snap.DTO(), nil
}

func (b *LocalBackend) Resign(ctx context.Context, loser chess.Color) (chessdto.SessionState, error) {
	snap, err := b.coord.Resign(ctx, loser)
	if err != nil {
		return chessdto.SessionState{}, err
	}
	return snap.DTO(), nil
}

// RemoteBackend forwards commands to a chess server.
type RemoteBackend struct {
	client *apiclient.Client
}

func NewRemoteBackend(client *apiclient.Client) *RemoteBackend {
	return &RemoteBackend{client: client}
}

func (b *RemoteBackend) Board(ctx context.Context) (string, error) { return b.client.Board(ctx) }

func (b *RemoteBackend) Move(ctx context.Context, text string) (string, error) {
	return b.client.Move(ctx, text)
}

func (b *RemoteBackend) LegalMoves(ctx context.Context) ([]string, error) {
	resp, err := b.client.LegalMoves(ctx)
	if err != nil {
		return nil, err
	}
	return resp.Moves, nil
}

func (b *RemoteBackend) Outcome(ctx context.Context) (chessdto.OutcomeResponse, error) {
	resp, err := b.client.Outcome(ctx)
	if err != nil {
		return chessdto.OutcomeResponse{}, err
	}
	return *resp, nil
}

func (b *RemoteBackend) State(ctx context.Context) (chessdto.SessionState, error) {
	return deref(b.client.State(ctx))
}

func (b *RemoteBackend) Reset(ctx context.Context) (chessdto.SessionState, error) {
	return deref(b.client.Reset(ctx))
}

func (b *RemoteBackend) Resign(ctx context.Context, loser chess.Color) (chessdto.SessionState, error) {
	return deref(b.client.Resign(ctx, loser.String()))
}

func deref(st *chessdto.SessionState, err error) (chessdto.SessionState, error) {
	if err != nil {
		return chessdto.SessionState{}, err
	}
	return *st, nil
}
