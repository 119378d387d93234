package ocr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"math"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedImage is returned for input that no registered decoder reads.
var ErrUnsupportedImage = errors.New("unsupported image")

type PreprocessOptions struct {
	// MinWidth upscales narrower images; 0 disables scaling.
	MinWidth int
	// Denoise applies a 3x3 median filter.
	Denoise bool
}

var DefaultPreprocess = PreprocessOptions{MinWidth: 1000, Denoise: true}

const (
	// MaxPixels bounds both the declared input size and the upscaled output.
	MaxPixels = 40_000_000
	// MaxUpscale bounds the enlargement factor applied to narrow images.
	MaxUpscale = 4.0
)

// Preprocess decodes a card photo, converts it to grayscale, optionally
// upscales and denoises it, and returns PNG bytes for the OCR engine.
func Preprocess(data []byte, opts PreprocessOptions) ([]byte, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %s image is %dx%d", ErrUnsupportedImage, format, cfg.Width, cfg.Height)
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedImage, err)
	}
	b := src.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: empty %s image", ErrUnsupportedImage, format)
	}

	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), src, b.Min, draw.Src)

	if opts.MinWidth > 0 && gray.Bounds().Dx() < opts.MinWidth {
		gray = upscale(gray, opts.MinWidth)
	}
	if opts.Denoise {
		gray = median3(gray)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// upscale enlarges g towards width, keeping the aspect ratio. The factor is
// capped at MaxUpscale and the result at MaxPixels.
func upscale(g *image.Gray, width int) *image.Gray {
	b := g.Bounds()
	factor := math.Min(float64(width)/float64(b.Dx()), MaxUpscale)
	w := int(math.Round(float64(b.Dx()) * factor))
	h := int(math.Round(float64(b.Dy()) * factor))
	if w <= b.Dx() || int64(w)*int64(h) > MaxPixels {
		return g
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewGray(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), g, b, draw.Src, nil)
	return dst
}

// median3 replaces each pixel with the median of its 3x3 neighbourhood,
// clamping at the edges.
func median3(g *image.Gray) *image.Gray {
	b := g.Bounds()
	out := image.NewGray(b)
	var win [9]uint8
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			n := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					px, py := clamp(x+dx, b.Min.X, b.Max.X-1), clamp(y+dy, b.Min.Y, b.Max.Y-1)
					win[n] = g.GrayAt(px, py).Y
					n++
				}
			}
			for i := 1; i < len(win); i++ {
				for j := i; j > 0 && win[j] < win[j-1]; j-- {
					win[j], win[j-1] = win[j-1], win[j]
				}
			}
			out.Pix[out.PixOffset(x, y)] = win[4]
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
