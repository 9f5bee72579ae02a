package imgopt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"gitlab.com/tozd/go/errors"

	errmsg "github.com/siyuan-infoblox/dartfix/pkg/errors"
	"github.com/siyuan-infoblox/dartfix/pkg/log"
	"github.com/siyuan-infoblox/dartfix/pkg/utils"
)

type OptimizerConfig struct {
	Options
	MinSize    uint64   // only images larger than this are re-encoded
	Extensions []string // e.g. ".jpg"
	Exclude    []string // doublestar patterns relative to the root
	DryRun     bool
}

// Optimizer compresses oversized images under an asset directory in place
type Optimizer struct {
	config OptimizerConfig
	saved  uint64
}

// NewOptimizer validates config and creates an Optimizer
func NewOptimizer(config OptimizerConfig) (*Optimizer, error) {
	if err := config.Options.Validate(); err != nil {
		return nil, err
	}
	return &Optimizer{config: config}, nil
}

// Saved returns the bytes saved by the last Run
func (o *Optimizer) Saved() uint64 {
	return o.saved
}

// OptimizeFile compresses one image in place. Images at or below MinSize,
// and images whose re-encoding is not smaller, are left untouched.
func (o *Optimizer) OptimizeFile(ctx context.Context, path string) (log.Status, string, error) {
	logger := log.FromContext(ctx).Logger()

	info, err := os.Stat(path)
	if err != nil {
		return log.StatusError, "", errors.Errorf("%s: %w", errmsg.ErrMsgFailedToStatFile, err)
	}
	if uint64(info.Size()) <= o.config.MinSize {
		return log.StatusSkipped, fmt.Sprintf("%s is below threshold", humanize.Bytes(uint64(info.Size()))), nil
	}

	var res Result
	if o.config.DryRun {
		_, res, err = Recode(path, o.config.Options)
	} else {
		res, err = o.compressInPlace(path)
	}
	if err != nil {
		return log.StatusError, "", err
	}
	logger.Debug().
		Str("file", path).
		Int64("original", res.OriginalSize).
		Int64("compressed", res.CompressedSize).
		Bool("written", res.Written).
		Msg("image recoded")

	detail := fmt.Sprintf("%s → %s (%.1f%% reduction, %dx%d)",
		humanize.Bytes(uint64(res.OriginalSize)),
		humanize.Bytes(uint64(res.CompressedSize)),
		res.Reduction(), res.Width, res.Height)

	if res.CompressedSize >= res.OriginalSize {
		return log.StatusSkipped, detail + ", not smaller", nil
	}
	o.saved += uint64(res.OriginalSize - res.CompressedSize)
	if o.config.DryRun {
		return log.StatusFixed, detail + " (dry run)", nil
	}
	return log.StatusFixed, detail, nil
}

// compressInPlace compresses path into a hidden sibling and moves it over
// the original only when it is smaller.
func (o *Optimizer) compressInPlace(path string) (Result, error) {
	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".dartfix")
	_ = os.Remove(tmp)

	res, err := Compress(path, tmp, o.config.Options)
	if err != nil {
		_ = os.Remove(tmp)
		return res, err
	}
	if res.CompressedSize >= res.OriginalSize {
		res.Written = false
		return res, os.Remove(tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return res, errors.Errorf("%s: %w", errmsg.ErrMsgFailedToWriteFile, err)
	}
	return res, nil
}

// Run compresses every matching image under root, one at a time. A failing
// image is reported and counted without stopping the run.
func (o *Optimizer) Run(ctx context.Context, root string) (log.Summary, error) {
	reporter := log.FromContext(ctx)
	o.saved = 0

	isDir, err := utils.IsDirectory(root)
	if err != nil || !isDir {
		return log.Summary{}, errors.Errorf("%w: %s", errmsg.ErrRootNotFound, root)
	}

	files, err := utils.FindFiles(root, o.config.Extensions, o.config.Exclude)
	if err != nil {
		return log.Summary{}, errors.Errorf("%s: %w", errmsg.ErrMsgFailedToFindFiles, err)
	}
	if len(files) == 0 {
		reporter.Infof(errmsg.InfoMsgNoFilesFound, root)
		return log.Summary{}, nil
	}
	reporter.Infof(errmsg.InfoMsgFoundFiles, len(files), root)
	if o.config.DryRun {
		reporter.Warning(errmsg.WarnMsgDryRun)
	}

	var summary log.Summary
	for _, path := range files {
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = filepath.Base(path)
		}

		status, detail, err := o.OptimizeFile(ctx, path)
		summary.Record(status)
		reporter.File(log.FileResult{Path: rel, Status: status, Detail: detail, Err: err})
	}

	reporter.Successf(errmsg.InfoMsgImageSummary, summary.Changed, summary.Total, humanize.Bytes(o.Saved()))
	if summary.Failed > 0 {
		reporter.Errorf(errmsg.InfoMsgErrorSummary, summary.Failed)
	}
	return summary, nil
}
