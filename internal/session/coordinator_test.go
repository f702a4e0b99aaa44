package session

import (
    "context"
    "errors"
    "sync"
    "sync/atomic"
    "testing"
    "time"

    "github.com/park285/rusty-chess-go/internal/chess"
    "github.com/park285/rusty-chess-go/internal/game"
)

func newCoordinator(t *testing.T, opts ...Option) *Coordinator {
    t.Helper()
    c, err := New(opts...)
    if err != nil { t.Fatalf("New: %v", err) }
    return c
}

func TestNewRejectsBadStart(t *testing.T) {
    if _, err := New(WithStartFEN("not a fen")); !errors.Is(err, chess.ErrMalformedFEN) { t.Fatalf("err = %v", err) }
}

func TestQueryAndMove(t *testing.T) {
    c := newCoordinator(t)
    if c.ID() == "" { t.Fatalf("empty session id") }
    if c.CurrentFEN() != chess.StartFEN { t.Fatalf("fen = %q", c.CurrentFEN()) }
    fen, err := c.ApplyMove(context.Background(), "e2e4")
    if err != nil { t.Fatalf("ApplyMove: %v", err) }
    if fen != c.CurrentFEN() { t.Fatalf("returned fen %q differs from current %q", fen, c.CurrentFEN()) }
    if _, err := c.ApplyMove(context.Background(), "e2e4"); !errors.Is(err, chess.ErrIllegalMove) { t.Fatalf("err = %v", err) }
    if c.CurrentFEN() != fen { t.Fatalf("rejected move changed the game") }
}

// Exactly one of several racing submissions of the only legal move wins.
func TestConcurrentOnlyMove(t *testing.T) {
    c := newCoordinator(t, WithStartFEN("7k/8/8/8/8/8/6q1/7K w - - 0 1"))
    const n = 16
    var wins, illegal atomic.Int32
    var wg sync.WaitGroup
    start := make(chan struct{})
    for i := 0; i < n; i++ {
        wg.Add(1)
        go func() {
            defer wg.Done()
            <-start
            _, err := c.ApplyMove(context.Background(), "h1g2")
            switch {
            case err == nil:
                wins.Add(1)
            case errors.Is(err, chess.ErrIllegalMove):
                illegal.Add(1)
            default:
                t.Errorf("unexpected error: %v", err)
            }
        }()
    }
    close(start)
    wg.Wait()
    if wins.Load() != 1 || illegal.Load() != n-1 { t.Fatalf("wins=%d illegal=%d", wins.Load(), illegal.Load()) }
    if c.Snapshot().Ply != 1 { t.Fatalf("ply = %d", c.Snapshot().Ply) }
}

func TestConcurrentSameMoveFromStart(t *testing.T) {
    c := newCoordinator(t)
    var wins atomic.Int32
    var wg sync.WaitGroup
    for i := 0; i < 8; i++ {
        wg.Add(1)
        go func() {
            defer wg.Done()
            if _, err := c.ApplyMove(context.Background(), "e2e4"); err == nil { wins.Add(1) }
        }()
    }
    wg.Wait()
    if wins.Load() != 1 { t.Fatalf("wins = %d", wins.Load()) }
}

// Readers only ever observe FENs that belong to the game record.
func TestReadersSeeWholeMoves(t *testing.T) {
    c := newCoordinator(t)
    moves := []string{"e2e4", "e7e5", "g1f3", "b8c6", "f1b5", "a7a6", "b5a4", "g8f6"}
    valid := map[string]bool{chess.StartFEN: true}
    g := game.New()
    for _, mv := range moves {
        fen, err := g.ApplyMove(mv)
        if err != nil { t.Fatalf("ApplyMove(%s): %v", mv, err) }
        valid[fen] = true
    }

    var wg sync.WaitGroup
    done := make(chan struct{})
    for i := 0; i < 4; i++ {
        wg.Add(1)
        go func() {
            defer wg.Done()
            for {
                select {
                case <-done:
                    return
                default:
                }
                _ = c.Read(func(v View) error {
                    if fen := v.CurrentFEN(); !valid[fen] { t.Errorf("reader saw unexpected fen %q", fen) }
                    return nil
                })
            }
        }()
    }
    for _, mv := range moves {
        if _, err := c.ApplyMove(context.Background(), mv); err != nil { t.Fatalf("ApplyMove(%s): %v", mv, err) }
    }
    close(done)
    wg.Wait()
}

func TestObserverRunsOutsideLock(t *testing.T) {
    var c *Coordinator
    var got []Snapshot
    obs := ObserverFunc(func(ctx context.Context, s Snapshot) error {
        // would deadlock if the write lock were still held
        if fen := c.CurrentFEN(); fen != s.FEN { t.Errorf("observer fen %q, snapshot %q", fen, s.FEN) }
        got = append(got, s)
        return nil
    })
    c = newCoordinator(t, WithObserver(obs), WithSessionID("s1"))
    if _, err := c.ApplyMove(context.Background(), "d2d4"); err != nil { t.Fatalf("ApplyMove: %v", err) }
    if _, err := c.ApplyMove(context.Background(), "zz"); err == nil { t.Fatalf("expected malformed move") }
    if len(got) != 1 { t.Fatalf("observer calls = %d", len(got)) }
    if got[0].SessionID != "s1" || got[0].Ply != 1 || got[0].LastMove != "d2d4" { t.Fatalf("snapshot = %+v", got[0]) }
}

func TestObserverErrorDoesNotFailMove(t *testing.T) {
    obs := ObserverFunc(func(context.Context, Snapshot) error { return errors.New("down") })
    c := newCoordinator(t, WithObserver(obs))
    if _, err := c.ApplyMove(context.Background(), "e2e4"); err != nil { t.Fatalf("ApplyMove: %v", err) }
}

func TestResetBumpsGeneration(t *testing.T) {
    c := newCoordinator(t)
    ctx := context.Background()
    if _, err := c.ApplyMove(ctx, "e2e4"); err != nil { t.Fatalf("ApplyMove: %v", err) }
    before := c.Snapshot()
    snap, err := c.Reset(ctx)
    if err != nil { t.Fatalf("Reset: %v", err) }
    if snap.Generation != before.Generation+1 || snap.Ply != 0 || snap.FEN != chess.StartFEN { t.Fatalf("snapshot = %+v", snap) }
    if !snap.Newer(before) || before.Newer(snap) { t.Fatalf("reset snapshot should supersede %+v", before) }
    if snap.SessionID != before.SessionID { t.Fatalf("session id changed") }
}

func TestResign(t *testing.T) {
    c := newCoordinator(t)
    ctx := context.Background()
    snap, err := c.Resign(ctx, chess.White)
    if err != nil { t.Fatalf("Resign: %v", err) }
    if snap.Outcome != (game.Outcome{Kind: game.Resignation, Winner: chess.Black}) { t.Fatalf("outcome = %v", snap.Outcome) }
    if _, err := c.ApplyMove(ctx, "e2e4"); !errors.Is(err, game.ErrGameOver) { t.Fatalf("err = %v", err) }
    if _, err := c.Resign(ctx, chess.Black); !errors.Is(err, game.ErrGameOver) { t.Fatalf("second resign err = %v", err) }
}

func TestMutateErrorSkipsObservers(t *testing.T) {
    calls := 0
    c := newCoordinator(t, WithObserver(ObserverFunc(func(context.Context, Snapshot) error { calls++; return nil })))
    boom := errors.New("boom")
    if err := c.Mutate(context.Background(), func(*game.Game) error { return boom }); !errors.Is(err, boom) { t.Fatalf("err = %v", err) }
    if calls != 0 { t.Fatalf("observer called %d times", calls) }
}

func TestPanickingMutateReleasesLock(t *testing.T) {
    c := newCoordinator(t)
    func() {
        defer func() {
            if recover() == nil { t.Fatalf("expected the callback panic to propagate") }
        }()
        _ = c.Mutate(context.Background(), func(*game.Game) error { panic("boom") })
    }()

    done := make(chan string, 1)
    go func() { done <- c.CurrentFEN() }()
    select {
    case fen := <-done:
        if fen != chess.StartFEN { t.Fatalf("fen = %q", fen) }
    case <-time.After(2 * time.Second):
        t.Fatalf("CurrentFEN blocked after a panicking Mutate callback")
    }
    if _, err := c.ApplyMove(context.Background(), "e2e4"); err != nil { t.Fatalf("ApplyMove after panic: %v", err) }
}

func TestReadViewCannotMutate(t *testing.T) {
    c := newCoordinator(t)
    err := c.Read(func(v View) error {
        if _, ok := v.(*game.Game); ok { t.Fatalf("view exposes the game") }
        if _, ok := v.(interface{ ApplyMove(string) (string, error) }); ok { t.Fatalf("view exposes ApplyMove") }
        if _, ok := v.(interface{ Resign(chess.Color) error }); ok { t.Fatalf("view exposes Resign") }
        if v.CurrentFEN() != chess.StartFEN || len(v.LegalMoves()) != 20 || v.Plies() != 0 { t.Fatalf("view does not reflect the game") }
        return nil
    })
    if err != nil { t.Fatalf("Read: %v", err) }
}
