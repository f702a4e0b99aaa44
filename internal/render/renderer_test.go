package render

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"

	"github.com/park285/rusty-chess-go/internal/chess"
)

func decode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	return img
}

func TestRenderStartingBoard(t *testing.T) {
	r := NewPNGRenderer()
	data, err := r.RenderPNG(context.Background(), chess.StartingBoard(), Options{Caption: "white to move"})
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	img := decode(t, data)
	want := image.Rect(0, 0, 64*8+2*sideMargin, captionHeight+64*8+bottomMargin)
	if img.Bounds() != want {
		t.Fatalf("bounds = %v, want %v", img.Bounds(), want)
	}

	g := geometry{size: 64, origin: image.Pt(sideMargin, captionHeight)}
	// e4 is empty: its center pixel is the plain square color
	e4 := g.rect(chess.NewSquare(4, 3))
	cr, cg, cb, _ := img.At(e4.Min.X+32, e4.Min.Y+32).RGBA()
	lr, lg, lb, _ := lightSquare.RGBA()
	if cr != lr || cg != lg || cb != lb {
		t.Fatalf("e4 center is not the light square color")
	}
	// e2 holds a white pawn drawn over the light square
	e2 := g.rect(chess.NewSquare(4, 1))
	pr, pg, pb, _ := img.At(e2.Min.X+32, e2.Min.Y+44).RGBA()
	if pr == lr && pg == lg && pb == lb {
		t.Fatalf("e2 shows no piece")
	}
}

func TestRenderHighlightAndFlip(t *testing.T) {
	b, err := chess.ParseFEN("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	opts := Options{Highlight: &Highlight{From: chess.NewSquare(4, 1), To: chess.NewSquare(4, 3)}, Flip: true}
	data, err := NewPNGRenderer().RenderPNG(context.Background(), b, opts)
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	img := decode(t, data)
	g := geometry{size: 64, origin: image.Pt(sideMargin, captionHeight), flip: true}
	e2 := g.rect(chess.NewSquare(4, 1))
	cr, cg, cb, _ := img.At(e2.Min.X+2, e2.Min.Y+2).RGBA()
	lr, lg, lb, _ := lightSquare.RGBA()
	if cr == lr && cg == lg && cb == lb {
		t.Fatalf("e2 is not highlighted")
	}
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewPNGRenderer().RenderPNG(ctx, chess.StartingBoard(), Options{}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestAllPiecesRasterize(t *testing.T) {
	for _, c := range []chess.Color{chess.White, chess.Black} {
		for k := chess.Pawn; k <= chess.King; k++ {
			p := chess.Piece{Color: c, Kind: k}
			img, err := renderPieceImage(p, 48)
			if err != nil {
				t.Fatalf("renderPieceImage(%v): %v", p, err)
			}
			if img.Bounds().Dx() != 48 {
				t.Fatalf("%v: width %d", p, img.Bounds().Dx())
			}
			if _, _, _, a := img.At(24, 40).RGBA(); a == 0 {
				t.Fatalf("%v: base not drawn", p)
			}
		}
	}
	if _, err := pieceSVG(chess.NoPiece); err == nil {
		t.Fatalf("expected error for the empty piece")
	}
}
