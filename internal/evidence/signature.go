package evidence

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
)

// Point is a canvas coordinate in pixels.
type Point struct {
	X int
	Y int
}

// SignatureRecorder is a stateful stroke recorder: Begin starts a stroke
// at a coordinate, Extend accumulates line segments while the pointer is
// down, End releases, Clear resets to a blank canvas. Encode rasterizes
// the strokes to a PNG data URL. No signature quality is validated;
// non-blank is the only contract.
type SignatureRecorder struct {
	width   int
	height  int
	strokes [][]Point
	down    bool
}

const (
	defaultCanvasWidth  = 400
	defaultCanvasHeight = 150
)

// inkColor matches the dark navy pen of the driver app canvas.
var inkColor = color.RGBA{R: 0x0A, G: 0x22, B: 0x39, A: 0xFF}

// ErrBlankSignature is returned when encoding a recorder with no drawn
// segments.
var ErrBlankSignature = errors.New("signature is blank")

// NewSignatureRecorder creates a recorder with the given canvas size.
// Non-positive dimensions fall back to the default canvas.
func NewSignatureRecorder(width, height int) *SignatureRecorder {
	if width <= 0 {
		width = defaultCanvasWidth
	}
	if height <= 0 {
		height = defaultCanvasHeight
	}
	return &SignatureRecorder{width: width, height: height}
}

// Begin starts a new stroke at p. A Begin while a stroke is open ends the
// previous stroke first.
func (r *SignatureRecorder) Begin(p Point) {
	if r.down {
		r.End()
	}
	r.down = true
	r.strokes = append(r.strokes, []Point{r.clamp(p)})
}

// Extend appends a line segment to the open stroke. Ignored when the
// pointer is not down.
func (r *SignatureRecorder) Extend(p Point) {
	if !r.down || len(r.strokes) == 0 {
		return
	}
	last := len(r.strokes) - 1
	r.strokes[last] = append(r.strokes[last], r.clamp(p))
}

// End releases the pointer, closing the current stroke.
func (r *SignatureRecorder) End() {
	r.down = false
}

// Clear resets the recorder to a blank canvas.
func (r *SignatureRecorder) Clear() {
	r.strokes = nil
	r.down = false
}

// Blank reports whether nothing has been drawn. A stroke needs at least
// one segment (two points) to leave ink.
func (r *SignatureRecorder) Blank() bool {
	for _, s := range r.strokes {
		if len(s) >= 2 {
			return false
		}
	}
	return true
}

// Encode rasterizes the strokes and returns the signature payload with
// the signer name attached. A blank canvas yields ErrBlankSignature.
func (r *SignatureRecorder) Encode(signerName string) (Signature, error) {
	if r.Blank() {
		return Signature{}, ErrBlankSignature
	}

	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	for i := range img.Pix {
		img.Pix[i] = 0xFF // white background
	}
	for _, stroke := range r.strokes {
		for i := 1; i < len(stroke); i++ {
			drawSegment(img, stroke[i-1], stroke[i])
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Signature{}, err
	}
	data := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
	return Signature{Data: data, SignerName: signerName}, nil
}

func (r *SignatureRecorder) clamp(p Point) Point {
	if p.X < 0 {
		p.X = 0
	}
	if p.X >= r.width {
		p.X = r.width - 1
	}
	if p.Y < 0 {
		p.Y = 0
	}
	if p.Y >= r.height {
		p.Y = r.height - 1
	}
	return p
}

// drawSegment draws a 2px line between two points (Bresenham with a
// neighbor pixel for weight, matching the canvas line width).
func drawSegment(img *image.RGBA, a, b Point) {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	err := dx + dy
	x, y := a.X, a.Y
	for {
		setInk(img, x, y)
		setInk(img, x+1, y)
		setInk(img, x, y+1)
		if x == b.X && y == b.Y {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func setInk(img *image.RGBA, x, y int) {
	if image.Pt(x, y).In(img.Rect) {
		img.SetRGBA(x, y, inkColor)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
