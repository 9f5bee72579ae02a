package errors

import (
	"gitlab.com/tozd/go/errors"
)

// Sentinel errors shared by the fix and images commands
var (
	ErrRootNotFound   = errors.Base("root directory not found")
	ErrInvalidConfig  = errors.Base("invalid configuration")
	ErrPartialFailure = errors.Base("some files failed to process")
)

// Process exit codes
const (
	ExitOK             = 0
	ExitPartialFailure = 1
	ExitFatal          = 2
)

// ExitCode maps an error returned by a command to the process exit code
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrPartialFailure):
		return ExitPartialFailure
	default:
		return ExitFatal
	}
}

// Error message constants for the dartfix application
const (
	// File processing errors
	ErrMsgFailedToReadFile  = "failed to read file"
	ErrMsgFailedToWriteFile = "failed to write file"
	ErrMsgFailedToStatFile  = "failed to stat file"
	ErrMsgNotTextFile       = "file is not valid UTF-8 text"

	// Image processing errors
	ErrMsgFailedToOpenImage   = "failed to open image"
	ErrMsgFailedToDecodeImage = "failed to decode image"
	ErrMsgFailedToEncodeImage = "failed to encode image"

	// Directory processing errors
	ErrMsgFailedToCheckPath    = "failed to check path"
	ErrMsgFailedToFindFiles    = "failed to find files in directory"
	ErrMsgFailedToLoadConfig   = "failed to load config"
	ErrMsgFilesFailedToProcess = "%d of %d files failed to process"

	// Info/warning messages
	WarnMsgDryRun         = "Dry run: no files will be modified."
	InfoMsgNoFilesFound   = "No matching files found in directory: %s"
	InfoMsgFoundFiles     = "Found %d files in directory: %s"
	InfoMsgCurrentProject = "Current project: %s"
	InfoMsgNoChanges      = "No changes"
	InfoMsgFixSummary     = "Completed! Fixed %d files out of %d"
	InfoMsgErrorSummary   = "%d files had errors"
	InfoMsgImageSummary   = "Optimized %d images out of %d, saved %s"
)
