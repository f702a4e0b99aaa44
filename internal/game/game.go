// Package game drives a single chess game: it validates moves against the
// rules engine, keeps the move record and detects the end of the game.
package game

import (
	"fmt"

	"github.com/park285/rusty-chess-go/internal/chess"
)

// ErrGameOver is returned for moves submitted after the game has ended.
var ErrGameOver = fmt.Errorf("%w: game is over", chess.ErrIllegalMove)

// Entry is one element of the game record: the board before the move and
// the move itself.
type Entry struct {
	Board chess.Board
	Move  chess.Move
}

// Game is not safe for concurrent use; session.Coordinator serializes
// access to it.
type Game struct {
	board   chess.Board
	record  []Entry
	outcome Outcome
	// occurrences of each position since the game was created
	seen map[chess.PositionKey]int
}

// New starts a game from the standard initial position.
func New() *Game {
	return fromBoard(chess.StartingBoard())
}

// NewFromFEN starts a game from an arbitrary position. The outcome of the
// loaded position is evaluated immediately, so a mated or stalemated
// position is terminal from the start.
func NewFromFEN(fen string) (*Game, error) {
	b, err := chess.ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	return fromBoard(b), nil
}

func fromBoard(b chess.Board) *Game {
	g := &Game{board: b, seen: map[chess.PositionKey]int{b.Key(): 1}}
	g.outcome = g.evaluate()
	return g
}

func (g *Game) Board() chess.Board { return g.board }

// CurrentFEN returns the FEN of the current position.
func (g *Game) CurrentFEN() string { return g.board.FEN() }

func (g *Game) Outcome() Outcome { return g.outcome }

func (g *Game) SideToMove() chess.Color { return g.board.SideToMove() }

// LegalMoves returns the legal moves of the current position, or nil once
// the game is over.
func (g *Game) LegalMoves() []chess.Move {
	if g.outcome.IsTerminal() {
		return nil
	}
	return chess.LegalMoves(g.board)
}

// Record returns a copy of the moves played so far.
func (g *Game) Record() []Entry {
	out := make([]Entry, len(g.record))
	copy(out, g.record)
	return out
}

// Plies is the number of moves played.
func (g *Game) Plies() int { return len(g.record) }

// LastMove returns the most recent move, if any.
func (g *Game) LastMove() (chess.Move, bool) {
	if len(g.record) == 0 {
		return chess.Move{}, false
	}
	return g.record[len(g.record)-1].Move, true
}

// ApplyMove plays a move given in coordinate notation and returns the FEN of
// the resulting position. A rejected move leaves the game untouched.
func (g *Game) ApplyMove(text string) (string, error) {
	if g.outcome.IsTerminal() {
		return "", fmt.Errorf("%w (%s)", ErrGameOver, g.outcome)
	}
	t, err := chess.ParseMoveText(text)
	if err != nil {
		return "", err
	}
	m, err := t.Resolve(g.board)
	if err != nil {
		return "", err
	}
	g.commit(m)
	return g.board.FEN(), nil
}

func (g *Game) commit(m chess.Move) {
	next, err := g.board.Apply(m)
	if err != nil {
		// m came from LegalMoves, so this is an engine fault
		panic(fmt.Sprintf("game: legal move %s rejected at %s: %v", m, g.board.FEN(), err))
	}
	g.record = append(g.record, Entry{Board: g.board, Move: m})
	g.board = next
	g.seen[next.Key()]++
	g.outcome = g.evaluate()
}

// evaluate checks the end conditions in priority order.
func (g *Game) evaluate() Outcome {
	b := g.board
	if !chess.HasLegalMove(b) {
		if b.InCheck() {
			return Outcome{Kind: Checkmate, Winner: b.SideToMove().Other()}
		}
		return Outcome{Kind: Stalemate}
	}
	if b.HalfmoveClock() >= 100 {
		return Outcome{Kind: DrawFiftyMove}
	}
	if g.seen[b.Key()] >= 3 {
		return Outcome{Kind: DrawRepetition}
	}
	if chess.InsufficientMaterial(b) {
		return Outcome{Kind: DrawInsufficientMaterial}
	}
	return Outcome{Kind: InProgress}
}

// Resign ends the game in favor of the opponent of loser.
func (g *Game) Resign(loser chess.Color) error {
	if g.outcome.IsTerminal() {
		return fmt.Errorf("%w (%s)", ErrGameOver, g.outcome)
	}
	g.outcome = Outcome{Kind: Resignation, Winner: loser.Other()}
	return nil
}

// Clone returns an independent copy of g.
func (g *Game) Clone() *Game {
	c := &Game{
		board:   g.board,
		record:  g.Record(),
		outcome: g.outcome,
		seen:    make(map[chess.PositionKey]int, len(g.seen)),
	}
	for k, v := range g.seen {
		c.seen[k] = v
	}
	return c
}
