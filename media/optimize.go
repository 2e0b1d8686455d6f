package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// MaxDimension bounds the longer side of a stored photo.
	MaxDimension = 400
	// JPEGQuality is the re-encode quality.
	JPEGQuality = 85
	// MaxImageBytes caps a downloaded or uploaded image body.
	MaxImageBytes = 10 << 20
	// MaxPixels caps width*height before decoding.
	MaxPixels = 89_478_485
)

// ErrImageTooLarge is returned for images over MaxImageBytes or MaxPixels.
var ErrImageTooLarge = errors.New("image is too large")

// Optimize decodes an image from r, flattens any transparency onto white,
// downsizes it to fit within MaxDimension, and writes a JPEG to w.
//
// The header is checked against MaxPixels before any pixel data is decoded,
// and only the output-sized canvas is allocated.
func Optimize(r io.Reader, w io.Writer) error {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	if len(data) > MaxImageBytes {
		return ErrImageTooLarge
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}

	b := src.Bounds()
	width, height := fitWithin(b.Dx(), b.Dy(), MaxDimension)

	// Compositing over a white canvas flattens transparency while scaling.
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	if width == b.Dx() && height == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	}

	if err := jpeg.Encode(w, dst, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return fmt.Errorf("encode %s as jpeg: %w", format, err)
	}
	return nil
}

// fitWithin scales (w, h) down so neither side exceeds max, keeping the
// aspect ratio. Images already within bounds are returned unchanged.
func fitWithin(w, h, max int) (int, int) {
	if w <= max && h <= max {
		return w, h
	}
	if w >= h {
		nh := h * max / w
		if nh < 1 {
			nh = 1
		}
		return max, nh
	}
	nw := w * max / h
	if nw < 1 {
		nw = 1
	}
	return nw, max
}
