package imgopt

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	fcolor "github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	errmsg "github.com/siyuan-infoblox/dartfix/pkg/errors"
	"github.com/siyuan-infoblox/dartfix/pkg/log"
)

var testOptions = Options{Quality: 70, MaxWidth: 600, MaxHeight: 400}

// noisyImage returns a deterministic high-entropy image that compresses poorly
func noisyImage(w, h int) *image.RGBA {
	rng := rand.New(rand.NewSource(42))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256)), 255})
		}
	}
	return img
}

func writeJPEG(t *testing.T, path string, img image.Image, quality int) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func decodeFile(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, format, err := image.Decode(f)
	require.NoError(t, err)
	require.Equal(t, "jpeg", format)
	return img
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		maxW, maxH   int
		wantW, wantH int
	}{
		{"already fits", 300, 200, 600, 400, 300, 200},
		{"exact fit", 600, 400, 600, 400, 600, 400},
		{"landscape", 1200, 800, 600, 400, 600, 400},
		{"square limited by height", 1000, 1000, 600, 400, 400, 400},
		{"tall", 400, 1600, 600, 400, 100, 400},
		{"wide", 3000, 100, 600, 400, 600, 20},
		{"never below one pixel", 10000, 1, 600, 400, 600, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			w, h := FitWithin(tt.w, tt.h, tt.maxW, tt.maxH)
			req.Equal(tt.wantW, w, "width")
			req.Equal(tt.wantH, h, "height")
		})
	}
}

func TestOptions_Validate(t *testing.T) {
	req := require.New(t)
	req.NoError(testOptions.Validate())

	req.NoError(Options{Quality: 0, MaxWidth: 1, MaxHeight: 1}.Validate())

	err := Options{Quality: -1, MaxWidth: 1, MaxHeight: 1}.Validate()
	req.True(errors.Is(err, errmsg.ErrInvalidConfig))

	err = Options{Quality: 101, MaxWidth: 1, MaxHeight: 1}.Validate()
	req.Error(err)

	err = Options{Quality: 50, MaxWidth: 0, MaxHeight: 1}.Validate()
	req.Error(err)
}

func TestCompress(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "Nurse.jpg")
	writeJPEG(t, src, noisyImage(1200, 800), 100)

	dst := filepath.Join(dir, "Nurse.small.jpg")
	res, err := Compress(src, dst, testOptions)
	req.NoError(err)
	req.True(res.Written)
	req.Equal(600, res.Width)
	req.Equal(400, res.Height)
	req.Less(res.CompressedSize, res.OriginalSize)
	req.Greater(res.Reduction(), 0.0)

	info, err := os.Stat(dst)
	req.NoError(err)
	req.Equal(res.CompressedSize, info.Size())

	img := decodeFile(t, dst)
	req.Equal(image.Rect(0, 0, 600, 400), img.Bounds())
}

func TestCompress_inPlace(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "ChatBG.jpg")
	writeJPEG(t, path, noisyImage(800, 800), 95)

	res, err := Compress(path, path, testOptions)
	req.NoError(err)
	req.Equal(400, res.Width)
	req.Equal(400, res.Height)

	img := decodeFile(t, path)
	req.Equal(image.Rect(0, 0, 400, 400), img.Bounds())
}

func TestCompress_flattensAlpha(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "logo.png")

	transparent := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	var buf bytes.Buffer
	req.NoError(png.Encode(&buf, transparent))
	req.NoError(os.WriteFile(src, buf.Bytes(), 0644))

	dst := filepath.Join(dir, "logo.jpg")
	res, err := Compress(src, dst, Options{Quality: 100, MaxWidth: 600, MaxHeight: 400})
	req.NoError(err)
	req.Equal(16, res.Width)

	r, g, b, _ := decodeFile(t, dst).At(8, 8).RGBA()
	req.Greater(r>>8, uint32(250))
	req.Greater(g>>8, uint32(250))
	req.Greater(b>>8, uint32(250))
}

func TestCompress_errors(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()

	_, err := Compress(filepath.Join(dir, "missing.jpg"), filepath.Join(dir, "out.jpg"), testOptions)
	req.Error(err)
	req.Contains(err.Error(), errmsg.ErrMsgFailedToOpenImage)

	corrupt := filepath.Join(dir, "corrupt.jpg")
	req.NoError(os.WriteFile(corrupt, []byte("definitely not a jpeg"), 0644))
	_, err = Compress(corrupt, corrupt, testOptions)
	req.Error(err)
	req.Contains(err.Error(), errmsg.ErrMsgFailedToDecodeImage)

	data, err := os.ReadFile(corrupt)
	req.NoError(err)
	req.Equal("definitely not a jpeg", string(data), "failed compression must not touch the file")

	_, err = Compress(corrupt, corrupt, Options{})
	req.True(errors.Is(err, errmsg.ErrInvalidConfig))
}

func TestOptimizer_Run(t *testing.T) {
	req := require.New(t)
	fcolor.NoColor = true
	console := &bytes.Buffer{}
	ctx := log.NewContext(context.Background(), log.New(console, &bytes.Buffer{}, zerolog.DebugLevel))

	root := t.TempDir()
	writeJPEG(t, filepath.Join(root, "Booking.jpg"), noisyImage(1200, 800), 100)
	writeJPEG(t, filepath.Join(root, "icons", "small.jpg"), noisyImage(8, 8), 90)
	req.NoError(os.WriteFile(filepath.Join(root, "SBG.jpg"), bytes.Repeat([]byte{0xff}, 4096), 0644))
	req.NoError(os.WriteFile(filepath.Join(root, "notes.txt"), []byte("not an image"), 0644))

	opt, err := NewOptimizer(OptimizerConfig{
		Options:    testOptions,
		MinSize:    2048,
		Extensions: []string{".jpg"},
	})
	req.NoError(err)

	summary, err := opt.Run(ctx, root)
	req.NoError(err)
	req.Equal(3, summary.Total)
	req.Equal(1, summary.Changed)
	req.Equal(1, summary.Skipped)
	req.Equal(1, summary.Failed)
	req.Equal(errmsg.ExitPartialFailure, errmsg.ExitCode(summary.Err()))
	req.Positive(opt.Saved())

	img := decodeFile(t, filepath.Join(root, "Booking.jpg"))
	req.Equal(image.Rect(0, 0, 600, 400), img.Bounds())

	out := console.String()
	req.Contains(out, "✓ Booking.jpg")
	req.Contains(out, "✗ SBG.jpg")
	req.Contains(out, "• icons/small.jpg")
	req.Contains(out, "below threshold")
	req.Contains(out, "Optimized 1 images out of 3")
	req.Contains(out, "1 files had errors")

	leftovers, err := filepath.Glob(filepath.Join(root, ".*.dartfix"))
	req.NoError(err)
	req.Empty(leftovers)
}

func TestOptimizer_Run_notSmaller(t *testing.T) {
	req := require.New(t)
	fcolor.NoColor = true
	console := &bytes.Buffer{}
	ctx := log.NewContext(context.Background(), log.New(console, &bytes.Buffer{}, zerolog.InfoLevel))

	root := t.TempDir()
	path := filepath.Join(root, "thumb.jpg")
	writeJPEG(t, path, noisyImage(8, 8), 10)
	before, err := os.ReadFile(path)
	req.NoError(err)

	opt, err := NewOptimizer(OptimizerConfig{
		Options:    Options{Quality: 95, MaxWidth: 600, MaxHeight: 400},
		Extensions: []string{".jpg"},
	})
	req.NoError(err)

	summary, err := opt.Run(ctx, root)
	req.NoError(err)
	req.Equal(1, summary.Skipped)
	req.Zero(opt.Saved())
	req.Contains(console.String(), "• thumb.jpg")
	req.Contains(console.String(), "not smaller")

	after, err := os.ReadFile(path)
	req.NoError(err)
	req.Equal(before, after)

	entries, err := os.ReadDir(root)
	req.NoError(err)
	req.Len(entries, 1, "temporary output must be removed")
}

func TestOptimizer_Run_dryRun(t *testing.T) {
	req := require.New(t)
	ctx := log.NewContext(context.Background(), log.Nop())
	root := t.TempDir()
	path := filepath.Join(root, "Specialist.jpg")
	writeJPEG(t, path, noisyImage(1200, 800), 100)

	before, err := os.ReadFile(path)
	req.NoError(err)

	opt, err := NewOptimizer(OptimizerConfig{Options: testOptions, Extensions: []string{".jpg"}, DryRun: true})
	req.NoError(err)
	summary, err := opt.Run(ctx, root)
	req.NoError(err)
	req.Equal(1, summary.Changed)

	after, err := os.ReadFile(path)
	req.NoError(err)
	req.Equal(before, after)
}

func TestOptimizer_Run_missingRoot(t *testing.T) {
	req := require.New(t)
	opt, err := NewOptimizer(OptimizerConfig{Options: testOptions})
	req.NoError(err)

	_, err = opt.Run(context.Background(), "/non/existent/assets")
	req.True(errors.Is(err, errmsg.ErrRootNotFound))
}
