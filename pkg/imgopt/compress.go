package imgopt

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif" // register decoder
	"image/jpeg"
	_ "image/png" // register decoder
	"os"

	"gitlab.com/tozd/go/errors"
	xdraw "golang.org/x/image/draw"

	errmsg "github.com/siyuan-infoblox/dartfix/pkg/errors"
)

// Options control how an image is re-encoded
type Options struct {
	Quality   int // JPEG quality, 0-100; values below 1 encode as 1
	MaxWidth  int
	MaxHeight int
}

// Validate checks the option ranges
func (o Options) Validate() error {
	if o.Quality < 0 || o.Quality > 100 {
		return errors.Errorf("%w: quality %d out of range 0-100", errmsg.ErrInvalidConfig, o.Quality)
	}
	if o.MaxWidth <= 0 || o.MaxHeight <= 0 {
		return errors.Errorf("%w: max size %dx%d must be positive", errmsg.ErrInvalidConfig, o.MaxWidth, o.MaxHeight)
	}
	return nil
}

// Result describes one compressed image
type Result struct {
	OriginalSize   int64
	CompressedSize int64
	Width, Height  int // dimensions after resizing
	Written        bool
}

// Reduction returns the size reduction in percent; negative when the output grew
func (r Result) Reduction() float64 {
	if r.OriginalSize == 0 {
		return 0
	}
	return float64(r.OriginalSize-r.CompressedSize) / float64(r.OriginalSize) * 100
}

// FitWithin returns w x h scaled down to fit inside maxW x maxH, keeping the
// aspect ratio. Images that already fit are returned unchanged.
func FitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	scale := float64(maxW) / float64(w)
	if s := float64(maxH) / float64(h); s < scale {
		scale = s
	}
	nw := int(float64(w)*scale + 0.5)
	nh := int(float64(h)*scale + 0.5)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	return nw, nh
}

// flatten draws img onto an opaque white canvas, dropping any alpha channel
func flatten(img image.Image) *image.RGBA {
	b := img.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(canvas, canvas.Bounds(), img, b.Min, draw.Over)
	return canvas
}

// Encode flattens, downsizes and JPEG-encodes img
func Encode(img image.Image, opts Options) ([]byte, image.Rectangle, error) {
	rgb := flatten(img)

	w, h := FitWithin(rgb.Bounds().Dx(), rgb.Bounds().Dy(), opts.MaxWidth, opts.MaxHeight)
	out := rgb
	if w != rgb.Bounds().Dx() || h != rgb.Bounds().Dy() {
		out = image.NewRGBA(image.Rect(0, 0, w, h))
		xdraw.CatmullRom.Scale(out, out.Bounds(), rgb, rgb.Bounds(), xdraw.Src, nil)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return nil, image.Rectangle{}, errors.Errorf("%s: %w", errmsg.ErrMsgFailedToEncodeImage, err)
	}
	return buf.Bytes(), out.Bounds(), nil
}

// Recode decodes the image at src and re-encodes it in memory
func Recode(src string, opts Options) ([]byte, Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, Result{}, err
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return nil, Result{}, errors.Errorf("%s: %w", errmsg.ErrMsgFailedToOpenImage, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, Result{}, errors.Errorf("%s: %w", errmsg.ErrMsgFailedToDecodeImage, err)
	}

	encoded, bounds, err := Encode(img, opts)
	if err != nil {
		return nil, Result{}, err
	}

	return encoded, Result{
		OriginalSize:   int64(len(data)),
		CompressedSize: int64(len(encoded)),
		Width:          bounds.Dx(),
		Height:         bounds.Dy(),
	}, nil
}

// Compress re-encodes the image at src as JPEG into dst. src and dst may be
// the same path; the source is fully decoded before dst is written.
func Compress(src, dst string, opts Options) (Result, error) {
	encoded, res, err := Recode(src, opts)
	if err != nil {
		return res, err
	}
	if err := writeLike(src, dst, encoded); err != nil {
		return res, err
	}
	res.Written = true
	return res, nil
}

// writeLike writes data to dst using the permissions of src
func writeLike(src, dst string, data []byte) error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(src); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(dst, data, mode); err != nil {
		return errors.Errorf("%s: %w", errmsg.ErrMsgFailedToWriteFile, err)
	}
	return nil
}
