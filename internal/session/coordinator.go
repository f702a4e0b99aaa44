// Package session hosts the single shared game and serializes every access
// to it.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/park285/rusty-chess-go/internal/chess"
	"github.com/park285/rusty-chess-go/internal/game"
)

// View is the read-only surface of a game handed to Read callbacks.
type View interface {
	CurrentFEN() string
	Board() chess.Board
	Outcome() game.Outcome
	LegalMoves() []chess.Move
	Record() []game.Entry
	Plies() int
	LastMove() (chess.Move, bool)
}

// Snapshot is the externally visible state after a mutation. Generation
// grows on every Reset; together with Ply it orders snapshots of a session.
type Snapshot struct {
	SessionID  string
	Generation uint64
	Ply        int
	FEN        string
	Outcome    game.Outcome
	LastMove   string
	UpdatedAt  time.Time
}

// Newer reports whether s supersedes other.
func (s Snapshot) Newer(other Snapshot) bool {
	if s.Generation != other.Generation {
		return s.Generation > other.Generation
	}
	return s.Ply > other.Ply
}

// Observer receives a snapshot after every successful mutation. It runs
// outside the coordinator lock and may block.
type Observer interface {
	Observe(ctx context.Context, s Snapshot) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, s Snapshot) error

func (f ObserverFunc) Observe(ctx context.Context, s Snapshot) error { return f(ctx, s) }

// Coordinator owns exactly one game. Reads share the lock, mutations hold it
// exclusively, so a reader never sees a half-applied move.
type Coordinator struct {
	mu         sync.RWMutex
	id         string
	generation uint64
	updatedAt  time.Time
	startFEN   string
	game       *game.Game

	logger    *zap.Logger
	observers []Observer
	now       func() time.Time
}

type Option func(*Coordinator)

func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(c *Coordinator) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// WithStartFEN makes the session (and every Reset) start from fen instead of
// the standard initial position.
func WithStartFEN(fen string) Option {
	return func(c *Coordinator) { c.startFEN = fen }
}

// WithSessionID overrides the generated session id.
func WithSessionID(id string) Option {
	return func(c *Coordinator) { c.id = id }
}

func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a coordinator hosting a fresh game.
func New(opts ...Option) (*Coordinator, error) {
	c := &Coordinator{
		id:       uuid.NewString(),
		startFEN: chess.StartFEN,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	g, err := game.NewFromFEN(c.startFEN)
	if err != nil {
		return nil, fmt.Errorf("start position: %w", err)
	}
	c.game = g
	c.updatedAt = c.now()
	return c, nil
}

func (c *Coordinator) ID() string { return c.id }

// Read runs fn with shared access to the game. fn must not retain v.
func (c *Coordinator) Read(fn func(v View) error) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return fn(readOnly{g: c.game})
}

// readOnly exposes the View methods of a game and nothing else, so a
// reader cannot reach the mutating methods through a type assertion.
type readOnly struct{ g *game.Game }

func (r readOnly) CurrentFEN() string           { return r.g.CurrentFEN() }
func (r readOnly) Board() chess.Board           { return r.g.Board() }
func (r readOnly) Outcome() game.Outcome        { return r.g.Outcome() }
func (r readOnly) LegalMoves() []chess.Move     { return r.g.LegalMoves() }
func (r readOnly) Record() []game.Entry         { return r.g.Record() }
func (r readOnly) Plies() int                   { return r.g.Plies() }
func (r readOnly) LastMove() (chess.Move, bool) { return r.g.LastMove() }

// Mutate runs fn with exclusive access to the game. When fn succeeds the
// resulting snapshot is delivered to the observers after the lock has been
// released.
func (c *Coordinator) Mutate(ctx context.Context, fn func(g *game.Game) error) error {
	_, err := c.mutate(ctx, fn)
	return err
}

func (c *Coordinator) mutate(ctx context.Context, fn func(g *game.Game) error) (Snapshot, error) {
	snap, observers, err := c.apply(fn)
	if err != nil {
		return Snapshot{}, err
	}
	c.notify(ctx, observers, snap)
	return snap, nil
}

// apply runs fn under the write lock. The lock is released even if fn
// panics.
func (c *Coordinator) apply(fn func(g *game.Game) error) (Snapshot, []Observer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := fn(c.game); err != nil {
		return Snapshot{}, nil, err
	}
	c.updatedAt = c.now()
	return c.snapshotLocked(), c.observers, nil
}

func (c *Coordinator) notify(ctx context.Context, observers []Observer, snap Snapshot) {
	for _, o := range observers {
		if err := o.Observe(ctx, snap); err != nil {
			c.logger.Warn("chess_observer_failed",
				zap.String("session_id", snap.SessionID),
				zap.Uint64("generation", snap.Generation),
				zap.Int("ply", snap.Ply),
				zap.Error(err),
			)
		}
	}
}

func (c *Coordinator) snapshotLocked() Snapshot {
	s := Snapshot{
		SessionID:  c.id,
		Generation: c.generation,
		Ply:        c.game.Plies(),
		FEN:        c.game.CurrentFEN(),
		Outcome:    c.game.Outcome(),
		UpdatedAt:  c.updatedAt,
	}
	if m, ok := c.game.LastMove(); ok {
		s.LastMove = m.String()
	}
	return s
}

// Snapshot returns the current state.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

// CurrentFEN returns the FEN of the current position.
func (c *Coordinator) CurrentFEN() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.game.CurrentFEN()
}

func (c *Coordinator) Outcome() game.Outcome {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.game.Outcome()
}

// ApplyMove plays text on the shared game and returns the new FEN.
func (c *Coordinator) ApplyMove(ctx context.Context, text string) (string, error) {
	var fen string
	snap, err := c.mutate(ctx, func(g *game.Game) error {
		var err error
		fen, err = g.ApplyMove(text)
		return err
	})
	if err != nil {
		c.logger.Info("chess_move_rejected",
			zap.String("session_id", c.id),
			zap.String("move", text),
			zap.Error(err),
		)
		return "", err
	}
	c.logger.Info("chess_move",
		zap.String("session_id", snap.SessionID),
		zap.Int("ply", snap.Ply),
		zap.String("last_uci", snap.LastMove),
		zap.String("outcome", snap.Outcome.String()),
	)
	return fen, nil
}

// Reset replaces the game with a fresh one from the start position.
func (c *Coordinator) Reset(ctx context.Context) (Snapshot, error) {
	snap, err := c.mutate(ctx, func(g *game.Game) error {
		fresh, err := game.NewFromFEN(c.startFEN)
		if err != nil {
			return err
		}
		*g = *fresh
		c.generation++
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	c.logger.Info("chess_reset",
		zap.String("session_id", snap.SessionID),
		zap.Uint64("generation", snap.Generation),
	)
	return snap, nil
}

// Resign ends the game with loser resigning.
func (c *Coordinator) Resign(ctx context.Context, loser chess.Color) (Snapshot, error) {
	snap, err := c.mutate(ctx, func(g *game.Game) error { return g.Resign(loser) })
	if err != nil {
		return Snapshot{}, err
	}
	c.logger.Info("chess_resign",
		zap.String("session_id", snap.SessionID),
		zap.String("loser", loser.String()),
		zap.String("outcome", snap.Outcome.String()),
	)
	return snap, nil
}
