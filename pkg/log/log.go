package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// Status is the outcome of processing one file
type Status int

const (
	StatusUnchanged Status = iota
	StatusFixed
	StatusSkipped
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusFixed:
		return "fixed"
	case StatusSkipped:
		return "skipped"
	case StatusError:
		return "error"
	default:
		return "unchanged"
	}
}

// FileResult is one per-file status line
type FileResult struct {
	Path   string // path shown to the user, usually relative to the root
	Status Status
	Detail string // free text, e.g. "3 replacements" or "1.2 MB -> 300 kB"
	Err    error
}

// Reporter prints per-file status lines to the console and mirrors every
// event as a structured zerolog record.
type Reporter struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
}

// New creates a Reporter writing status lines to console and structured
// records to logs at the given level.
func New(console io.Writer, logs io.Writer, level zerolog.Level) *Reporter {
	return &Reporter{
		zlog:    zerolog.New(logs).With().Timestamp().Logger().Level(level),
		console: console,
	}
}

// Nop returns a Reporter that discards everything
func Nop() *Reporter {
	return &Reporter{zlog: zerolog.Nop(), console: io.Discard}
}

type contextKey struct{}

// FromContext gets the reporter from ctx, or a Nop reporter when none is set
func FromContext(ctx context.Context) *Reporter {
	r, ok := ctx.Value(contextKey{}).(*Reporter)
	if !ok {
		return Nop()
	}
	return r
}

// NewContext adds the reporter to ctx
func NewContext(ctx context.Context, r *Reporter) context.Context {
	return context.WithValue(ctx, contextKey{}, r)
}

// Logger exposes the structured logger for debug records
func (r *Reporter) Logger() *zerolog.Logger {
	return &r.zlog
}

func (r *Reporter) formatFile(res FileResult) string {
	var symbol string
	var attr color.Attribute
	switch res.Status {
	case StatusFixed:
		symbol, attr = "✓", color.FgGreen
	case StatusError:
		symbol, attr = "✗", color.FgRed
	case StatusSkipped:
		symbol, attr = "•", color.FgYellow
	default:
		symbol, attr = "-", color.FgCyan
	}

	line := fmt.Sprintf("%s %-40s %s",
		color.New(attr).Sprint(symbol),
		res.Path,
		color.New(attr).Sprintf("%-10s", res.Status))
	if res.Err != nil {
		line += " " + color.New(color.FgRed).Sprint(res.Err.Error())
	} else if res.Detail != "" {
		line += " " + color.New(color.Faint).Sprint(res.Detail)
	}
	return line
}

// File reports the outcome for one file
func (r *Reporter) File(res FileResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintln(r.console, r.formatFile(res))

	ev := r.zlog.Info()
	if res.Status == StatusError {
		ev = r.zlog.Error().Err(res.Err)
	}
	ev.Str("file", res.Path).
		Str("status", res.Status.String()).
		Str("detail", res.Detail).
		Msg("file processed")
}

// Header prints a section header
func (r *Reporter) Header(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("dartfix")
	fmt.Fprintf(r.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	r.zlog.Info().Msg(msg)
}

// Success prints a success message
func (r *Reporter) Success(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	r.zlog.Info().Msg(msg)
}

// Warning prints a warning message
func (r *Reporter) Warning(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	r.zlog.Warn().Msg(msg)
}

// Error prints an error message
func (r *Reporter) Error(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	r.zlog.Error().Msg(msg)
}

// Info prints an informational message
func (r *Reporter) Info(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	r.zlog.Info().Msg(msg)
}

// Raw writes text to the console unchanged, e.g. a diff
func (r *Reporter) Raw(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprint(r.console, text)
}

// Infof prints a formatted informational message
func (r *Reporter) Infof(format string, args ...interface{}) {
	r.Info(fmt.Sprintf(format, args...))
}

// Errorf prints a formatted error message
func (r *Reporter) Errorf(format string, args ...interface{}) {
	r.Error(fmt.Sprintf(format, args...))
}

// Successf prints a formatted success message
func (r *Reporter) Successf(format string, args ...interface{}) {
	r.Success(fmt.Sprintf(format, args...))
}
