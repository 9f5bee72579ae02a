package log

import (
	"gitlab.com/tozd/go/errors"

	errmsg "github.com/siyuan-infoblox/dartfix/pkg/errors"
)

// Summary counts per-file outcomes of a batch run
type Summary struct {
	Total     int
	Changed   int
	Unchanged int
	Skipped   int
	Failed    int
}

// Record adds one file outcome
func (s *Summary) Record(status Status) {
	s.Total++
	switch status {
	case StatusFixed:
		s.Changed++
	case StatusSkipped:
		s.Skipped++
	case StatusError:
		s.Failed++
	default:
		s.Unchanged++
	}
}

// Err returns ErrPartialFailure when at least one file failed
func (s Summary) Err() error {
	if s.Failed == 0 {
		return nil
	}
	return errors.Errorf("%w: "+errmsg.ErrMsgFilesFailedToProcess, errmsg.ErrPartialFailure, s.Failed, s.Total)
}
