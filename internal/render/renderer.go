// Package render draws a board position as a PNG image.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"math"
	"strings"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/park285/rusty-chess-go/internal/chess"
)

// Highlight marks the origin and destination of the last move.
type Highlight struct {
	From chess.Square
	To   chess.Square
}

type Options struct {
	Highlight *Highlight
	// Caption is drawn above the board, e.g. "white to move".
	Caption string
	// Flip draws the board from black's side.
	Flip bool
}

type BoardRenderer interface {
	RenderPNG(ctx context.Context, b chess.Board, opts Options) ([]byte, error)
}

type pngRenderer struct {
	squareSize int
}

func NewPNGRenderer() BoardRenderer {
	return &pngRenderer{squareSize: 64}
}

const (
	sideMargin    = 28
	captionHeight = 36
	bottomMargin  = 28
)

var (
	lightSquare         = color.RGBA{233, 207, 163, 255}
	darkSquare          = color.RGBA{187, 136, 96, 255}
	backgroundColor     = color.RGBA{28, 31, 46, 255}
	whiteMoveFill       = color.NRGBA{R: 255, G: 228, B: 120, A: 140}
	blackMoveArrow      = color.NRGBA{R: 148, G: 207, B: 255, A: 170}
	neutralMoveArrow    = color.NRGBA{R: 182, G: 184, B: 190, A: 140}
	captionTextColor    = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	coordinateTextColor = color.NRGBA{R: 8, G: 214, B: 120, A: 255}
)

// geometry maps board squares to pixels.
type geometry struct {
	size   int
	origin image.Point
	flip   bool
}

func (g geometry) rect(sq chess.Square) image.Rectangle {
	col, row := sq.File(), 7-sq.Rank()
	if g.flip {
		col, row = 7-col, 7-row
	}
	x := g.origin.X + col*g.size
	y := g.origin.Y + row*g.size
	return image.Rect(x, y, x+g.size, y+g.size)
}

func (g geometry) center(sq chess.Square) (float64, float64) {
	r := g.rect(sq)
	return float64(r.Min.X) + float64(g.size)/2, float64(r.Min.Y) + float64(g.size)/2
}

func (r *pngRenderer) RenderPNG(ctx context.Context, b chess.Board, opts Options) ([]byte, error) {
	boardSize := r.squareSize * 8
	g := geometry{size: r.squareSize, origin: image.Pt(sideMargin, captionHeight), flip: opts.Flip}
	img := image.NewRGBA(image.Rect(0, 0, boardSize+2*sideMargin, captionHeight+boardSize+bottomMargin))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, imagedraw.Src)

	for i := 0; i < 64; i++ {
		sq := chess.Square(i)
		clr := lightSquare
		if (sq.File()+sq.Rank())%2 == 0 {
			clr = darkSquare
		}
		imagedraw.Draw(img, g.rect(sq), image.NewUniform(clr), image.Point{}, imagedraw.Src)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if h := opts.Highlight; h != nil && b.PieceAt(h.To).Color == chess.White && !b.PieceAt(h.To).IsEmpty() {
		drawOverlay(img, g.rect(h.From), whiteMoveFill)
		drawOverlay(img, g.rect(h.To), whiteMoveFill)
	}
	for i := 0; i < 64; i++ {
		sq := chess.Square(i)
		p := b.PieceAt(sq)
		if p.IsEmpty() {
			continue
		}
		pieceImg, err := renderPieceImage(p, r.squareSize)
		if err != nil {
			return nil, err
		}
		rect := g.rect(sq)
		imagedraw.Draw(img, rect, pieceImg, image.Point{}, imagedraw.Over)
	}
	if h := opts.Highlight; h != nil {
		switch p := b.PieceAt(h.To); {
		case p.IsEmpty():
			drawArrow(img, g, h.From, h.To, neutralMoveArrow)
		case p.Color == chess.Black:
			drawArrow(img, g, h.From, h.To, blackMoveArrow)
		}
	}

	drawCoordinates(img, g)
	drawCaption(img, opts.Caption, captionHeight)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawOverlay(img *image.RGBA, rect image.Rectangle, clr color.Color) {
	imagedraw.Draw(img, rect, image.NewUniform(clr), image.Point{}, imagedraw.Over)
}

// drawArrow fills an arrow polygon from the center of from to the center of to.
func drawArrow(img *image.RGBA, g geometry, from, to chess.Square, clr color.Color) {
	if from == to || !from.Valid() || !to.Valid() {
		return
	}
	sx, sy := g.center(from)
	ex, ey := g.center(to)
	dx, dy := ex-sx, ey-sy
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	ux, uy := dx/length, dy/length
	px, py := -uy, ux

	size := float64(g.size)
	shaft := length - size*0.45
	if shaft < size*0.35 {
		shaft = length * 0.6
	}
	half := size * 0.09
	head := size * 0.16
	bx, by := sx+ux*shaft, sy+uy*shaft

	pts := [][2]float64{
		{sx + px*half, sy + py*half},
		{bx + px*half, by + py*half},
		{bx + px*head, by + py*head},
		{ex, ey},
		{bx - px*head, by - py*head},
		{bx - px*half, by - py*half},
		{sx - px*half, sy - py*half},
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	filler := rasterx.NewFiller(w, h, scanner)
	filler.SetColor(clr)
	filler.Start(rasterx.ToFixedP(pts[0][0], pts[0][1]))
	for _, p := range pts[1:] {
		filler.Line(rasterx.ToFixedP(p[0], p[1]))
	}
	filler.Stop(true)
	filler.Draw()
}

func drawCoordinates(img *image.RGBA, g geometry) {
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: img, Src: image.NewUniform(coordinateTextColor), Face: face}
	ascent := face.Metrics().Ascent.Ceil()
	for i := 0; i < 8; i++ {
		rankRect := g.rect(chess.NewSquare(0, i))
		drawCentered(d, string(rune('1'+i)), rankRect.Min.X-sideMargin/2, rankRect.Min.Y+g.size/2+ascent/2)

		fileRect := g.rect(chess.NewSquare(i, 0))
		bottom := g.origin.Y + 8*g.size
		drawCentered(d, string(rune('a'+i)), fileRect.Min.X+g.size/2, bottom+(bottomMargin+ascent)/2)
	}
}

func drawCaption(img *image.RGBA, caption string, height int) {
	caption = strings.TrimSpace(caption)
	if caption == "" {
		return
	}
	d := &font.Drawer{Dst: img, Src: image.NewUniform(captionTextColor), Face: basicfont.Face7x13}
	ascent := basicfont.Face7x13.Metrics().Ascent.Ceil()
	drawCentered(d, caption, img.Bounds().Dx()/2, (height+ascent)/2)
}

func drawCentered(d *font.Drawer, text string, centerX, baseline int) {
	width := d.MeasureString(text).Round()
	d.Dot = fixed.P(centerX-width/2, baseline)
	d.DrawString(text)
}
