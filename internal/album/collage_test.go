package album

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/woodchen-ink/aice-ps/internal/editor"
)

func frame(t *testing.T, w, h int, c color.Color) Frame {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode frame: %v", err)
	}
	return Frame{Artifact: editor.Artifact{Data: buf.Bytes(), MimeType: "image/png"}}
}

func TestComposeGridDimensions(t *testing.T) {
	frames := []Frame{
		frame(t, 64, 64, color.RGBA{R: 255, A: 255}),
		frame(t, 64, 64, color.RGBA{G: 255, A: 255}),
		frame(t, 64, 64, color.RGBA{B: 255, A: 255}),
		frame(t, 64, 64, color.RGBA{R: 255, G: 255, A: 255}),
	}

	out, err := Compose(frames, Options{Columns: 2, CellWidth: 100, CellHeight: 100, Margin: 10})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if out.MimeType != "image/jpeg" {
		t.Fatalf("mime = %s, want image/jpeg", out.MimeType)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(out.Data))
	if err != nil {
		t.Fatalf("decode collage: %v", err)
	}
	// 2 columns, 2 rows: 2*100 cells + 3*10 gutters per axis.
	if cfg.Width != 230 || cfg.Height != 230 {
		t.Fatalf("collage size = %dx%d, want 230x230", cfg.Width, cfg.Height)
	}
}

func TestComposeDrawsLabels(t *testing.T) {
	plain := []Frame{
		frame(t, 64, 64, color.RGBA{R: 255, A: 255}),
		frame(t, 64, 64, color.RGBA{G: 255, A: 255}),
	}
	labeled := make([]Frame, len(plain))
	copy(labeled, plain)
	labeled[0].Label = "1950s"
	labeled[1].Label = "1960s"

	opts := Options{Columns: 2, CellWidth: 100, CellHeight: 100, Margin: 10}
	without, err := Compose(plain, opts)
	if err != nil {
		t.Fatalf("Compose unlabeled: %v", err)
	}
	with, err := Compose(labeled, opts)
	if err != nil {
		t.Fatalf("Compose labeled: %v", err)
	}
	if bytes.Equal(without.Data, with.Data) {
		t.Fatal("labeled collage is identical to the unlabeled one")
	}

	// The strip must darken pixels at the bottom of the first cell: the
	// unlabeled collage is pure red there.
	img, _, err := image.Decode(bytes.NewReader(with.Data))
	if err != nil {
		t.Fatalf("decode labeled collage: %v", err)
	}
	r, _, _, _ := img.At(15, 105).RGBA()
	if r>>8 > 200 {
		t.Fatalf("bottom of first cell still full red (r=%d), label strip not drawn", r>>8)
	}
}

func TestComposeSkipsUndecodableFrames(t *testing.T) {
	frames := []Frame{
		frame(t, 32, 32, color.Black),
		{Artifact: editor.Artifact{Data: []byte("not an image"), MimeType: "image/png"}},
	}
	if _, err := Compose(frames, Options{}); err != nil {
		t.Fatalf("Compose with one bad frame: %v", err)
	}
}

func TestComposeRejectsEmptyInput(t *testing.T) {
	if _, err := Compose(nil, Options{}); !errors.Is(err, ErrNoFrames) {
		t.Fatalf("expected ErrNoFrames, got %v", err)
	}
	bad := []Frame{{Artifact: editor.Artifact{Data: []byte("junk")}}}
	if _, err := Compose(bad, Options{}); err == nil {
		t.Fatalf("expected error when nothing decodes")
	}
}
