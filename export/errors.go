package export

import (
	"errors"
	"fmt"
)

// Errors returned by the export pipeline.
var (
	ErrUnknownFormat = errors.New("export: unknown format")
	ErrBadQuality    = errors.New("export: quality must be in [0,1]")
	ErrNoRatios      = errors.New("export: no target ratios")
	ErrBadRatio      = errors.New("export: ratio dimensions must be positive")
)

// ExportError reports the failure of one export target. In a batch it
// is collected per ratio and never aborts the sibling renditions.
type ExportError struct {
	Target string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export: %s: %v", e.Target, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
