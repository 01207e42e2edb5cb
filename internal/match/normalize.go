package match

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"

	"github.com/kozaktomas/face-attendance/internal/recognizer"
)

// NormalizeFace converts a raw detector crop into a JPEG the embedding model
// accepts. The detector's output format is not guaranteed: values may be in
// [0,1] instead of [0,255], and the channel order is the reverse of what the
// embedding model expects. Both are corrected here, and the crop is resized
// to edge x edge (skipped when edge <= 0).
func NormalizeFace(face recognizer.Face, edge int) ([]byte, error) {
	if face.Channels != 3 {
		return nil, fmt.Errorf("unsupported channel count %d", face.Channels)
	}
	if face.Width <= 0 || face.Height <= 0 {
		return nil, fmt.Errorf("invalid crop size %dx%d", face.Width, face.Height)
	}
	if len(face.Pixels) != face.Width*face.Height*face.Channels {
		return nil, fmt.Errorf("pixel buffer size %d does not match %dx%dx%d",
			len(face.Pixels), face.Width, face.Height, face.Channels)
	}

	// Detect the value range: crops normalized to [0,1] must be rescaled.
	var maxVal float32
	for _, p := range face.Pixels {
		if p > maxVal {
			maxVal = p
		}
	}
	scale := float32(1)
	if maxVal <= 1 {
		scale = 255
	}

	img := image.NewRGBA(image.Rect(0, 0, face.Width, face.Height))
	for y := 0; y < face.Height; y++ {
		for x := 0; x < face.Width; x++ {
			i := (y*face.Width + x) * 3
			// Channel order is reversed relative to the model's expectation.
			r := clampByte(face.Pixels[i+2] * scale)
			g := clampByte(face.Pixels[i+1] * scale)
			b := clampByte(face.Pixels[i] * scale)
			o := img.PixOffset(x, y)
			img.Pix[o] = r
			img.Pix[o+1] = g
			img.Pix[o+2] = b
			img.Pix[o+3] = 0xFF
		}
	}

	out := image.Image(img)
	if edge > 0 && (face.Width != edge || face.Height != edge) {
		resized := image.NewRGBA(image.Rect(0, 0, edge, edge))
		draw.CatmullRom.Scale(resized, resized.Bounds(), img, img.Bounds(), draw.Over, nil)
		out = resized
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("encoding face crop: %w", err)
	}
	return buf.Bytes(), nil
}

func clampByte(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
