package chart

import (
	"errors"
	"fmt"
)

// Sentinel errors for broad classification.
var (
	ErrEmpty  = errors.New("csv has no data rows")
	ErrNoData = errors.New("no valid year/value pairs")
)

// ErrorKind is a coarse-grained categorization for errors.
type ErrorKind string

const (
	KindLoad          ErrorKind = "load"
	KindEmpty         ErrorKind = "empty"
	KindNoData        ErrorKind = "no_data"
	KindInvalidConfig ErrorKind = "invalid_config"
	KindRender        ErrorKind = "render"
)

// OpError wraps an underlying error with operation context and a kind.
type OpError struct {
	Op   string
	Kind ErrorKind
	Path string // Optional: dataset path or url
	Err  error
}

func (e *OpError) Error() string {
	if e == nil {
		return "<nil>"
	}

	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Path != "" {
		base += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *OpError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind reports whether err carries an OpError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind == kind
	}
	return false
}

// Diagnostic is the caption text shown to the user when a draw fails.
func Diagnostic(err error) string {
	var oe *OpError
	if !errors.As(err, &oe) {
		return "Error loading CSV: " + err.Error()
	}
	switch oe.Kind {
	case KindEmpty:
		return "CSV is empty or not found: " + oe.Path
	case KindNoData:
		return "No valid year/value pairs."
	case KindLoad:
		if oe.Err != nil {
			return "Error loading CSV: " + oe.Err.Error()
		}
		return "Error loading CSV: " + oe.Path
	default:
		return "Error rendering chart: " + oe.Error()
	}
}
