package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/park285/rusty-chess-go/internal/chess"
)

// Piece outlines on a 45x45 canvas.
var pieceShapes = map[chess.PieceKind][]string{
	chess.Pawn: {
		`<path d="M15,35 C15,28 18,23 22.5,20 C27,23 30,28 30,35 Z"/>`,
		`<circle cx="22.5" cy="13" r="5.5"/>`,
	},
	chess.Knight: {
		`<path d="M13,35 L15,27 C13,21 15,13 22,9 L23,5 L26,10 C31,13 34,20 32,35 Z"/>`,
		`<path d="M14,22 L22,17 L21,23 Z"/>`,
	},
	chess.Bishop: {
		`<path d="M15,35 C15,29 17,24 19,21 C15,18 16,11 22.5,8 C29,11 30,18 26,21 C28,24 30,29 30,35 Z"/>`,
		`<circle cx="22.5" cy="6" r="2.5"/>`,
	},
	chess.Rook: {
		`<path d="M11,35 L11,31 L14,31 L14,17 L11,17 L11,10 L15,10 L15,13 L19,13 L19,10 L26,10 L26,13 L30,13 L30,10 L34,10 L34,17 L31,17 L31,31 L34,31 L34,35 Z"/>`,
	},
	chess.Queen: {
		`<path d="M10,35 L12,20 L16,27 L18,14 L22.5,26 L27,14 L29,27 L33,20 L35,35 Z"/>`,
		`<circle cx="12" cy="18" r="2"/>`,
		`<circle cx="18" cy="12" r="2"/>`,
		`<circle cx="27" cy="12" r="2"/>`,
		`<circle cx="33" cy="18" r="2"/>`,
	},
	chess.King: {
		`<path d="M13,35 C12,28 14,22 22.5,20 C31,22 33,28 32,35 Z"/>`,
		`<path d="M21,6 L24,6 L24,10 L28,10 L28,13 L24,13 L24,19 L21,19 L21,13 L17,13 L17,10 L21,10 Z"/>`,
	},
}

const pieceBase = `<path d="M9,39 L36,39 L36,35 L9,35 Z"/>`

// pieceSVG builds the SVG document of p with the style set on every element.
func pieceSVG(p chess.Piece) ([]byte, error) {
	shapes, ok := pieceShapes[p.Kind]
	if !ok {
		return nil, fmt.Errorf("no shape for %s", p)
	}
	fill, stroke := "#ffffff", "#1a1a1a"
	if p.Color == chess.Black {
		fill, stroke = "#1a1a1a", "#e6e6e6"
	}
	style := fmt.Sprintf(` fill="%s" stroke="%s" stroke-width="1.5"`, fill, stroke)

	var sb strings.Builder
	sb.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" width="45" height="45" viewBox="0 0 45 45">`)
	for _, el := range append([]string{pieceBase}, shapes...) {
		sb.WriteString(strings.TrimSuffix(el, "/>") + style + "/>")
	}
	sb.WriteString(`</svg>`)
	return []byte(sb.String()), nil
}

type pieceCacheKey struct {
	piece chess.Piece
	size  int
}

var (
	pieceCache   = map[pieceCacheKey]image.Image{}
	pieceCacheMu sync.RWMutex
)

func renderPieceImage(piece chess.Piece, size int) (image.Image, error) {
	key := pieceCacheKey{piece: piece, size: size}

	pieceCacheMu.RLock()
	if img, ok := pieceCache[key]; ok {
		pieceCacheMu.RUnlock()
		return img, nil
	}
	pieceCacheMu.RUnlock()

	data, err := pieceSVG(piece)
	if err != nil {
		return nil, err
	}
	icon, err := oksvg.ReadIconStream(strings.NewReader(string(data)))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	pieceCacheMu.Lock()
	pieceCache[key] = img
	pieceCacheMu.Unlock()
	return img, nil
}
