// Package album composes generated frames into a single collage image, the
// shareable artifact produced after a batch run.
package album

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"math"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/woodchen-ink/aice-ps/internal/editor"
)

// labelStripHeight is the bar drawn along the bottom of a labeled cell.
const labelStripHeight = 24

// ErrNoFrames is returned when there is nothing to compose.
var ErrNoFrames = errors.New("album: no frames to compose")

// Frame is one cell of the collage.
type Frame struct {
	Label    string
	Artifact editor.Artifact
}

// Options controls the collage layout. Zero values pick sensible defaults:
// a near-square grid of 512px cells with a 16px gutter on a white
// background.
type Options struct {
	Columns    int
	CellWidth  int
	CellHeight int
	Margin     int
	Background color.Color
	// Quality is the JPEG quality of the composed output, 1-100.
	Quality int
}

func (o Options) withDefaults(frames int) Options {
	if o.Columns <= 0 {
		o.Columns = int(math.Ceil(math.Sqrt(float64(frames))))
	}
	if o.CellWidth <= 0 {
		o.CellWidth = 512
	}
	if o.CellHeight <= 0 {
		o.CellHeight = 512
	}
	if o.Margin < 0 {
		o.Margin = 0
	} else if o.Margin == 0 {
		o.Margin = 16
	}
	if o.Background == nil {
		o.Background = color.White
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = 90
	}
	return o
}

// Compose lays the frames out row by row in queue order and returns the
// encoded collage. Frames with undecodable bytes are skipped; composing
// fails only when no frame could be placed.
func Compose(frames []Frame, opts Options) (editor.Artifact, error) {
	if len(frames) == 0 {
		return editor.Artifact{}, ErrNoFrames
	}
	opts = opts.withDefaults(len(frames))

	type placed struct {
		img   image.Image
		label string
	}
	decoded := make([]placed, 0, len(frames))
	for _, f := range frames {
		img, _, err := image.Decode(bytes.NewReader(f.Artifact.Data))
		if err != nil {
			continue
		}
		decoded = append(decoded, placed{img: img, label: f.Label})
	}
	if len(decoded) == 0 {
		return editor.Artifact{}, fmt.Errorf("album: none of %d frames decoded", len(frames))
	}

	cols := opts.Columns
	if cols > len(decoded) {
		cols = len(decoded)
	}
	rows := (len(decoded) + cols - 1) / cols
	width := cols*opts.CellWidth + (cols+1)*opts.Margin
	height := rows*opts.CellHeight + (rows+1)*opts.Margin

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{opts.Background}, image.Point{}, draw.Src)

	for i, p := range decoded {
		col := i % cols
		row := i / cols
		cell := image.Rect(
			opts.Margin+col*(opts.CellWidth+opts.Margin),
			opts.Margin+row*(opts.CellHeight+opts.Margin),
			opts.Margin+col*(opts.CellWidth+opts.Margin)+opts.CellWidth,
			opts.Margin+row*(opts.CellHeight+opts.Margin)+opts.CellHeight,
		)
		drawScaled(canvas, cell, p.img)
		if p.label != "" {
			drawLabel(canvas, cell, p.label)
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return editor.Artifact{}, fmt.Errorf("album: encode collage: %w", err)
	}
	return editor.Artifact{Data: buf.Bytes(), MimeType: "image/jpeg"}, nil
}

// drawLabel paints a translucent strip along the bottom of the cell and
// centers the label text on it.
func drawLabel(dst *image.RGBA, cell image.Rectangle, label string) {
	stripH := labelStripHeight
	if stripH > cell.Dy() {
		stripH = cell.Dy()
	}
	strip := image.Rect(cell.Min.X, cell.Max.Y-stripH, cell.Max.X, cell.Max.Y)
	draw.Draw(dst, strip, &image.Uniform{color.RGBA{A: 160}}, image.Point{}, draw.Over)

	face := basicfont.Face7x13
	d := font.Drawer{
		Dst:  dst,
		Src:  image.White,
		Face: face,
	}
	width := d.MeasureString(label)
	d.Dot = fixed.Point26_6{
		X: fixed.I(strip.Min.X+strip.Dx()/2) - width/2,
		Y: fixed.I(strip.Max.Y - (stripH-face.Ascent)/2),
	}
	d.DrawString(label)
}

// drawScaled fits src inside cell, preserving aspect ratio, using
// nearest-neighbor sampling. Frames come straight from a generative model,
// so reconstruction quality beyond that is not worth a resampling
// dependency.
func drawScaled(dst *image.RGBA, cell image.Rectangle, src image.Image) {
	sb := src.Bounds()
	if sb.Empty() || cell.Empty() {
		return
	}
	scale := math.Min(
		float64(cell.Dx())/float64(sb.Dx()),
		float64(cell.Dy())/float64(sb.Dy()),
	)
	w := int(float64(sb.Dx()) * scale)
	h := int(float64(sb.Dy()) * scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	offX := cell.Min.X + (cell.Dx()-w)/2
	offY := cell.Min.Y + (cell.Dy()-h)/2

	for y := 0; y < h; y++ {
		sy := sb.Min.Y + y*sb.Dy()/h
		for x := 0; x < w; x++ {
			sx := sb.Min.X + x*sb.Dx()/w
			dst.Set(offX+x, offY+y, src.At(sx, sy))
		}
	}
}
