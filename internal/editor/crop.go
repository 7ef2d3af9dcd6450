package editor

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	_ "image/gif"
	_ "image/jpeg"
)

// cropArtifact cuts rect out of the source image and re-encodes it as PNG.
// The region is clamped to the image bounds; a selection that leaves nothing
// is rejected.
func cropArtifact(source Artifact, rect image.Rectangle) (Artifact, error) {
	img, _, err := image.Decode(bytes.NewReader(source.Data))
	if err != nil {
		return Artifact{}, fmt.Errorf("decode image: %w", err)
	}

	region := rect.Canon().Intersect(img.Bounds())
	if region.Empty() {
		return Artifact{}, ErrInvalidCrop
	}

	out := image.NewRGBA(image.Rect(0, 0, region.Dx(), region.Dy()))
	draw.Draw(out, out.Bounds(), img, region.Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return Artifact{}, fmt.Errorf("encode crop: %w", err)
	}
	return Artifact{Data: buf.Bytes(), MimeType: "image/png"}, nil
}
