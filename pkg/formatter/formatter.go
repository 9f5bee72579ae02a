package formatter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"

	errmsg "github.com/siyuan-infoblox/dartfix/pkg/errors"
	"github.com/siyuan-infoblox/dartfix/pkg/imports"
	"github.com/siyuan-infoblox/dartfix/pkg/log"
	"github.com/siyuan-infoblox/dartfix/pkg/rewrite"
	"github.com/siyuan-infoblox/dartfix/pkg/utils"
)

type FormatterConfig struct {
	Extensions []string // file extensions to process, e.g. ".dart"
	Exclude    []string // doublestar patterns relative to the root
	DryRun     bool     // compute changes without writing them
	ShowDiff   bool     // print a line diff for every changed file
}

// formatter runs the import reordering and rewrite rules over source files
type formatter struct {
	config FormatterConfig
	rules  *rewrite.RuleSet
	root   string
}

// Outcome is the result of running the pipeline over one buffer
type Outcome struct {
	Original         string
	Content          string
	ImportsReordered bool
	Replacements     map[string]int // per rule name
	Rewrites         int            // sum of Replacements
}

// Changed reports whether the pipeline modified the buffer
func (o Outcome) Changed() bool {
	return o.Content != o.Original
}

// Detail describes the changes for a status line
func (o Outcome) Detail() string {
	var parts []string
	if o.ImportsReordered {
		parts = append(parts, "imports reordered")
	}
	if o.Rewrites > 0 {
		parts = append(parts, fmt.Sprintf("%d replacements", o.Rewrites))
	}
	return strings.Join(parts, ", ")
}

// New creates a formatter applying rules after import reordering
func New(config FormatterConfig, rules *rewrite.RuleSet) *formatter {
	return &formatter{
		config: config,
		rules:  rules,
	}
}

// Fix runs the pipeline over content: imports first, then the rewrite rules
func (g *formatter) Fix(content string) Outcome {
	reordered := imports.ReorderContent(content)
	res := g.rules.Apply(reordered)
	return Outcome{
		Original:         content,
		Content:          res.Content,
		ImportsReordered: reordered != content,
		Replacements:     res.Replacements,
		Rewrites:         res.Total(),
	}
}

func (g *formatter) displayPath(path string) string {
	if g.root == "" {
		return filepath.Base(path)
	}
	rel, err := filepath.Rel(g.root, path)
	if err != nil || rel == "." {
		return filepath.Base(path)
	}
	return rel
}

// ProcessFile loads one file, runs the pipeline and writes the result back
// when it differs from what was loaded.
func (g *formatter) ProcessFile(ctx context.Context, path string) (log.Status, error) {
	reporter := log.FromContext(ctx)

	info, err := os.Stat(path)
	if err != nil {
		return log.StatusError, errors.Errorf("%s: %w", errmsg.ErrMsgFailedToStatFile, err)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return log.StatusError, errors.Errorf("%s: %w", errmsg.ErrMsgFailedToReadFile, err)
	}
	if !utf8.Valid(src) {
		return log.StatusError, errors.New(errmsg.ErrMsgNotTextFile)
	}

	out := g.Fix(string(src))
	reporter.Logger().Debug().
		Str("file", path).
		Bool("imports_reordered", out.ImportsReordered).
		Interface("replacements", out.Replacements).
		Msg("pipeline applied")

	if !out.Changed() {
		reporter.File(log.FileResult{Path: g.displayPath(path), Status: log.StatusUnchanged, Detail: errmsg.InfoMsgNoChanges})
		return log.StatusUnchanged, nil
	}

	if g.config.ShowDiff {
		reporter.Raw(LineDiff(g.displayPath(path), out.Original, out.Content))
	}

	detail := out.Detail()
	if g.config.DryRun {
		detail += " (dry run)"
	} else if err := os.WriteFile(path, []byte(out.Content), info.Mode().Perm()); err != nil {
		return log.StatusError, errors.Errorf("%s: %w", errmsg.ErrMsgFailedToWriteFile, err)
	}

	reporter.File(log.FileResult{Path: g.displayPath(path), Status: log.StatusFixed, Detail: detail})
	return log.StatusFixed, nil
}

// ProcessFiles processes files one after another. A failing file is reported
// and counted; it never stops the batch.
func (g *formatter) ProcessFiles(ctx context.Context, filePaths []string) log.Summary {
	reporter := log.FromContext(ctx)
	var summary log.Summary

	for _, filePath := range filePaths {
		status, err := g.ProcessFile(ctx, filePath)
		if err != nil {
			reporter.File(log.FileResult{Path: g.displayPath(filePath), Status: log.StatusError, Err: err})
		}
		summary.Record(status)
	}

	reporter.Successf(errmsg.InfoMsgFixSummary, summary.Changed, summary.Total)
	if summary.Failed > 0 {
		reporter.Errorf(errmsg.InfoMsgErrorSummary, summary.Failed)
	}
	return summary
}

// ProcessPath processes a single file or every matching file under a
// directory. A missing path is fatal; per-file failures are not and are
// returned through Summary.Err.
func (g *formatter) ProcessPath(ctx context.Context, path string) (log.Summary, error) {
	reporter := log.FromContext(ctx)

	isDir, err := utils.IsDirectory(path)
	if err != nil {
		if os.IsNotExist(err) {
			return log.Summary{}, errors.Errorf("%w: %s", errmsg.ErrRootNotFound, path)
		}
		return log.Summary{}, errors.Errorf("%s: %w", errmsg.ErrMsgFailedToCheckPath, err)
	}

	if g.config.DryRun {
		reporter.Warning(errmsg.WarnMsgDryRun)
	}
	if name := utils.GetProjectName(path); name != "" {
		reporter.Infof(errmsg.InfoMsgCurrentProject, name)
	}

	if !isDir {
		g.root = filepath.Dir(path)
		return g.ProcessFiles(ctx, []string{path}), nil
	}

	g.root = path
	files, err := utils.FindFiles(path, g.config.Extensions, g.config.Exclude)
	if err != nil {
		return log.Summary{}, errors.Errorf("%s: %w", errmsg.ErrMsgFailedToFindFiles, err)
	}
	if len(files) == 0 {
		reporter.Infof(errmsg.InfoMsgNoFilesFound, path)
		return log.Summary{}, nil
	}
	reporter.Infof(errmsg.InfoMsgFoundFiles, len(files), path)

	return g.ProcessFiles(ctx, files), nil
}
