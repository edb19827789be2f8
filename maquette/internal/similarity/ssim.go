// CLAUDE:SUMMARY Structural similarity (SSIM) scoring between original and clone screenshots.
// Package similarity scores how closely a rendered clone matches the
// original page screenshot using SSIM over the luminance channel.
package similarity

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/draw"
)

// SSIM constants for 8-bit images: C1 = (K1*L)^2, C2 = (K2*L)^2 with
// K1=0.01, K2=0.03, L=255.
const (
	c1 = (0.01 * 255) * (0.01 * 255)
	c2 = (0.03 * 255) * (0.03 * 255)

	windowSize = 8
)

// ErrDimensionMismatch is returned when the two images cannot be compared
// because their dimensions differ. The orchestrator treats this as
// "no score", not as a failed run.
var ErrDimensionMismatch = fmt.Errorf("similarity: image dimensions differ")

// Score computes the mean SSIM between two PNG-encoded images of equal
// dimensions. The result is in [0, 1]; identical images score 1.0.
func Score(origPNG, clonePNG []byte) (float64, error) {
	a, err := decodeGray(origPNG)
	if err != nil {
		return 0, fmt.Errorf("similarity: decode original: %w", err)
	}
	b, err := decodeGray(clonePNG)
	if err != nil {
		return 0, fmt.Errorf("similarity: decode clone: %w", err)
	}
	if a.Bounds().Dx() != b.Bounds().Dx() || a.Bounds().Dy() != b.Bounds().Dy() {
		return 0, fmt.Errorf("%w: %dx%d vs %dx%d", ErrDimensionMismatch,
			a.Bounds().Dx(), a.Bounds().Dy(), b.Bounds().Dx(), b.Bounds().Dy())
	}
	return meanSSIM(a, b), nil
}

// Downscale re-encodes a PNG screenshot at the given width, preserving
// aspect ratio. Both screenshots are downscaled to the same width before
// scoring so full-page captures of slightly different heights still compare.
func Downscale(pngData []byte, width int) ([]byte, error) {
	src, err := png.Decode(bytes.NewReader(pngData))
	if err != nil {
		return nil, fmt.Errorf("similarity: decode: %w", err)
	}
	sb := src.Bounds()
	if sb.Dx() <= width {
		return pngData, nil
	}
	height := sb.Dy() * width / sb.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, sb, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("similarity: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// CropToMatch crops both images to their common top-left region so two
// full-page captures of different heights become comparable. Returns
// re-encoded PNGs.
func CropToMatch(aPNG, bPNG []byte) ([]byte, []byte, error) {
	a, err := png.Decode(bytes.NewReader(aPNG))
	if err != nil {
		return nil, nil, fmt.Errorf("similarity: decode: %w", err)
	}
	b, err := png.Decode(bytes.NewReader(bPNG))
	if err != nil {
		return nil, nil, fmt.Errorf("similarity: decode: %w", err)
	}

	w := min(a.Bounds().Dx(), b.Bounds().Dx())
	h := min(a.Bounds().Dy(), b.Bounds().Dy())
	if w < windowSize || h < windowSize {
		return nil, nil, fmt.Errorf("similarity: common region %dx%d too small", w, h)
	}

	ac, err := encodeCrop(a, w, h)
	if err != nil {
		return nil, nil, err
	}
	bc, err := encodeCrop(b, w, h)
	if err != nil {
		return nil, nil, err
	}
	return ac, bc, nil
}

func encodeCrop(src image.Image, w, h int) ([]byte, error) {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Copy(dst, image.Point{}, src, image.Rect(
		src.Bounds().Min.X, src.Bounds().Min.Y,
		src.Bounds().Min.X+w, src.Bounds().Min.Y+h), draw.Over, nil)
	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("similarity: encode: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeGray(data []byte) (*image.Gray, error) {
	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if g, ok := src.(*image.Gray); ok {
		return g, nil
	}
	b := src.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Copy(gray, image.Point{}, src, b, draw.Over, nil)
	return gray, nil
}

// meanSSIM averages per-window SSIM over non-overlapping 8x8 windows.
// Partial windows at the right/bottom edges are skipped.
func meanSSIM(a, b *image.Gray) float64 {
	w, h := a.Bounds().Dx(), a.Bounds().Dy()
	if w < windowSize || h < windowSize {
		// Too small for windowing; fall back to a single whole-image window.
		return windowSSIM(a, b, 0, 0, w, h)
	}

	var sum float64
	var n int
	for y := 0; y+windowSize <= h; y += windowSize {
		for x := 0; x+windowSize <= w; x += windowSize {
			sum += windowSSIM(a, b, x, y, windowSize, windowSize)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func windowSSIM(a, b *image.Gray, x0, y0, w, h int) float64 {
	n := float64(w * h)
	if n == 0 {
		return 0
	}

	var sumA, sumB float64
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			sumA += float64(a.GrayAt(x, y).Y)
			sumB += float64(b.GrayAt(x, y).Y)
		}
	}
	muA := sumA / n
	muB := sumB / n

	var varA, varB, cov float64
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			da := float64(a.GrayAt(x, y).Y) - muA
			db := float64(b.GrayAt(x, y).Y) - muB
			varA += da * da
			varB += db * db
			cov += da * db
		}
	}
	varA /= n - 1
	varB /= n - 1
	cov /= n - 1

	num := (2*muA*muB + c1) * (2*cov + c2)
	den := (muA*muA + muB*muB + c1) * (varA + varB + c2)
	return num / den
}
