package game

import (
    "errors"
    "testing"

    "github.com/park285/rusty-chess-go/internal/chess"
)

func mustApply(t *testing.T, g *Game, moves ...string) {
    t.Helper()
    for _, mv := range moves {
        if _, err := g.ApplyMove(mv); err != nil { t.Fatalf("ApplyMove(%s): %v", mv, err) }
    }
}

func mustGame(t *testing.T, fen string) *Game {
    t.Helper()
    g, err := NewFromFEN(fen)
    if err != nil { t.Fatalf("NewFromFEN: %v", err) }
    return g
}

func TestNewGame(t *testing.T) {
    g := New()
    if g.CurrentFEN() != chess.StartFEN { t.Fatalf("fen = %q", g.CurrentFEN()) }
    if g.Outcome().IsTerminal() { t.Fatalf("new game is terminal: %v", g.Outcome()) }
    if n := len(g.LegalMoves()); n != 20 { t.Fatalf("legal moves = %d", n) }
}

func TestApplyMoveReturnsFEN(t *testing.T) {
    g := New()
    fen, err := g.ApplyMove("e2e4")
    if err != nil { t.Fatalf("ApplyMove: %v", err) }
    want := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"
    if fen != want || g.CurrentFEN() != want { t.Fatalf("fen = %q, want %q", fen, want) }
    if g.Plies() != 1 { t.Fatalf("plies = %d", g.Plies()) }
    last, ok := g.LastMove()
    if !ok || last.String() != "e2e4" { t.Fatalf("last move = %v %v", last, ok) }
    rec := g.Record()
    if rec[0].Board != chess.StartingBoard() { t.Fatalf("record holds the wrong board") }
}

func TestRejectedMovesLeaveStateUntouched(t *testing.T) {
    g := New()
    mustApply(t, g, "e2e4")
    before := g.CurrentFEN()
    cases := map[string]error{
        "e2e4":  chess.ErrIllegalMove,
        "e4e5":  chess.ErrIllegalMove,
        "zz":    chess.ErrMalformedMove,
        "e7e5x": chess.ErrMalformedMove,
    }
    for mv, want := range cases {
        if _, err := g.ApplyMove(mv); !errors.Is(err, want) { t.Errorf("ApplyMove(%q) err = %v, want %v", mv, err, want) }
    }
    if g.CurrentFEN() != before || g.Plies() != 1 { t.Fatalf("state changed: %s plies=%d", g.CurrentFEN(), g.Plies()) }
}

func TestCheckmate(t *testing.T) {
    g := New()
    mustApply(t, g, "f2f3", "e7e5", "g2g4", "d8h4")
    want := Outcome{Kind: Checkmate, Winner: chess.Black}
    if g.Outcome() != want { t.Fatalf("outcome = %v", g.Outcome()) }
    if g.Outcome().String() != "checkmate:black" { t.Fatalf("outcome string = %q", g.Outcome()) }
}

func TestTerminalLock(t *testing.T) {
    g := New()
    mustApply(t, g, "f2f3", "e7e5", "g2g4", "d8h4")
    fen := g.CurrentFEN()
    _, err := g.ApplyMove("a2a3")
    if !errors.Is(err, ErrGameOver) || !errors.Is(err, chess.ErrIllegalMove) { t.Fatalf("err = %v", err) }
    if g.CurrentFEN() != fen || g.Plies() != 4 { t.Fatalf("terminal game changed") }
    if g.LegalMoves() != nil { t.Fatalf("terminal game offers moves") }
    if err := g.Resign(chess.White); !errors.Is(err, ErrGameOver) { t.Fatalf("Resign after mate err = %v", err) }
}

func TestLoadedTerminalPosition(t *testing.T) {
    g := mustGame(t, "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
    if g.Outcome() != (Outcome{Kind: Checkmate, Winner: chess.Black}) { t.Fatalf("outcome = %v", g.Outcome()) }
    if _, err := g.ApplyMove("a2a3"); !errors.Is(err, ErrGameOver) { t.Fatalf("err = %v", err) }
}

func TestStalemate(t *testing.T) {
    g := mustGame(t, "k7/8/8/2Q5/8/8/8/K7 w - - 0 1")
    mustApply(t, g, "c5b6")
    if g.Outcome().Kind != Stalemate { t.Fatalf("outcome = %v", g.Outcome()) }

    loaded := mustGame(t, "k7/8/1Q6/8/8/8/8/K7 b - - 0 1")
    if loaded.Outcome().Kind != Stalemate { t.Fatalf("loaded outcome = %v", loaded.Outcome()) }
}

func TestFiftyMoveFromClock(t *testing.T) {
    g := mustGame(t, "4k3/8/8/8/8/8/8/R3K3 w - - 98 80")
    mustApply(t, g, "a1a2")
    if g.Outcome().IsTerminal() { t.Fatalf("terminal at halfmove 99: %v", g.Outcome()) }
    mustApply(t, g, "e8d8")
    if g.Outcome().Kind != DrawFiftyMove { t.Fatalf("outcome = %v", g.Outcome()) }
}

func TestCheckmateBeatsFiftyMove(t *testing.T) {
    g := mustGame(t, "6k1/5ppp/8/8/8/8/8/R5K1 w - - 99 60")
    mustApply(t, g, "a1a8")
    if g.Outcome() != (Outcome{Kind: Checkmate, Winner: chess.White}) { t.Fatalf("outcome = %v", g.Outcome()) }
}

// Plays 100 quiet plies that never repeat a position or give check.
func TestFiftyMoveAfterHundredQuietPlies(t *testing.T) {
    g := mustGame(t, "r3k3/8/8/8/8/8/8/R3K3 w - - 0 1")
    seen := map[chess.PositionKey]bool{g.Board().Key(): true}
    for ply := 1; ply <= 100; ply++ {
        b := g.Board()
        played := false
        for _, m := range g.LegalMoves() {
            if !b.PieceAt(m.To).IsEmpty() || b.PieceAt(m.From).Kind == chess.Pawn { continue }
            probe := g.Clone()
            mustApply(t, probe, m.String())
            if seen[probe.Board().Key()] || probe.Board().InCheck() { continue }
            if k := probe.Outcome().Kind; k != InProgress && k != DrawFiftyMove { continue }
            mustApply(t, g, m.String())
            seen[g.Board().Key()] = true
            played = true
            break
        }
        if !played { t.Fatalf("no quiet move at ply %d: %s", ply, g.CurrentFEN()) }
        if ply < 100 && g.Outcome().IsTerminal() { t.Fatalf("terminal at ply %d: %v", ply, g.Outcome()) }
    }
    if g.Board().HalfmoveClock() != 100 { t.Fatalf("halfmove = %d", g.Board().HalfmoveClock()) }
    if g.Outcome().Kind != DrawFiftyMove { t.Fatalf("outcome = %v", g.Outcome()) }
}

func TestThreefoldRepetition(t *testing.T) {
    g := New()
    shuffle := []string{"g1f3", "g8f6", "f3g1", "f6g8"}
    mustApply(t, g, shuffle...)
    mustApply(t, g, shuffle[:3]...)
    if g.Outcome().IsTerminal() { t.Fatalf("terminal before the third occurrence: %v", g.Outcome()) }
    mustApply(t, g, shuffle[3])
    if g.Outcome().Kind != DrawRepetition { t.Fatalf("outcome = %v", g.Outcome()) }
    if g.Plies() != 8 { t.Fatalf("plies = %d", g.Plies()) }
}

func TestInsufficientMaterial(t *testing.T) {
    g := mustGame(t, "8/8/2k5/8/8/3pK3/8/8 w - - 0 1")
    mustApply(t, g, "e3d3")
    if g.Outcome().Kind != DrawInsufficientMaterial { t.Fatalf("outcome = %v", g.Outcome()) }
}

func TestResign(t *testing.T) {
    g := New()
    mustApply(t, g, "e2e4")
    if err := g.Resign(chess.Black); err != nil { t.Fatalf("Resign: %v", err) }
    if g.Outcome() != (Outcome{Kind: Resignation, Winner: chess.White}) { t.Fatalf("outcome = %v", g.Outcome()) }
    if _, err := g.ApplyMove("e7e5"); !errors.Is(err, ErrGameOver) { t.Fatalf("err = %v", err) }
}

func TestCloneIsIndependent(t *testing.T) {
    g := New()
    mustApply(t, g, "e2e4")
    c := g.Clone()
    mustApply(t, c, "e7e5")
    if g.Plies() != 1 || c.Plies() != 2 { t.Fatalf("plies g=%d c=%d", g.Plies(), c.Plies()) }
    if g.CurrentFEN() == c.CurrentFEN() { t.Fatalf("clone shares the board") }
}

func TestKindRoundTrip(t *testing.T) {
    for k := InProgress; k <= Resignation; k++ {
        got, ok := ParseKind(k.String())
        if !ok || got != k { t.Fatalf("ParseKind(%q) = %v %v", k, got, ok) }
    }
}
