package msgcat

import (
    "github.com/park285/rusty-chess-go/internal/chess"
    "github.com/park285/rusty-chess-go/internal/game"
)

// Outcome describes o for players; toMove names the side to move while the
// game is in progress.
func (c *Catalog) Outcome(o game.Outcome, toMove chess.Color) string {
    data := map[string]any{
        "Side":   toMove.String(),
        "Winner": o.Winner.String(),
        "Loser":  o.Winner.Other().String(),
    }
    return c.Text("outcome."+o.Kind.String(), data, o.String())
}
