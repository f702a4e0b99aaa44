package chess

import (
    "math/rand"
    "strings"
    "testing"

    nchess "github.com/corentings/chess/v2"
)

// placement, side to move and castling rights
func fenPrefix(fen string) string {
    f := strings.Fields(fen)
    if len(f) < 3 { return fen }
    return strings.Join(f[:3], " ")
}

func referenceGame(t *testing.T, fen string) *nchess.Game {
    t.Helper()
    opt, err := nchess.FEN(fen)
    if err != nil { t.Fatalf("reference FEN(%q): %v", fen, err) }
    return nchess.NewGame(opt)
}

// Random playouts checked move by move against an independent implementation.
func TestLegalMovesMatchReference(t *testing.T) {
    starts := []string{
        StartFEN,
        kiwipete,
        "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
        "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
        "rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
    }
    rng := rand.New(rand.NewSource(7))
    for _, start := range starts {
        for game := 0; game < 4; game++ {
            b := mustFEN(t, start)
            ref := referenceGame(t, start)
            for ply := 0; ply < 120; ply++ {
                moves := LegalMoves(b)
                if len(moves) == 0 || ref.Outcome() != nchess.NoOutcome || InsufficientMaterial(b) || b.HalfmoveClock() >= 100 { break }
                if got, want := len(moves), len(ref.ValidMoves()); got != want {
                    t.Fatalf("%s: %d legal moves, reference has %d", b.FEN(), got, want)
                }
                for _, m := range moves {
                    probe := ref.Clone()
                    if err := probe.PushNotationMove(m.String(), nchess.UCINotation{}, nil); err != nil {
                        t.Fatalf("%s: reference rejects %s: %v", b.FEN(), m, err)
                    }
                }
                m := moves[rng.Intn(len(moves))]
                nb, err := b.Apply(m)
                if err != nil { t.Fatalf("Apply(%s): %v", m, err) }
                if err := ref.PushNotationMove(m.String(), nchess.UCINotation{}, nil); err != nil { t.Fatalf("reference push %s: %v", m, err) }
                b = nb
                if got, want := fenPrefix(b.FEN()), fenPrefix(ref.FEN()); got != want {
                    t.Fatalf("after %s: fen %q, reference %q", m, got, want)
                }
            }
        }
    }
}

func TestFoolsMateMatchesReference(t *testing.T) {
    ref := nchess.NewGame()
    b := StartingBoard()
    for _, mv := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
        if err := ref.PushNotationMove(mv, nchess.UCINotation{}, nil); err != nil { t.Fatalf("reference push %s: %v", mv, err) }
        b = play(t, b, mv)
    }
    if ref.Outcome() != nchess.BlackWon { t.Fatalf("reference outcome = %v", ref.Outcome()) }
    if !b.InCheck() || HasLegalMove(b) { t.Fatalf("expected checkmate at %s", b.FEN()) }
}
