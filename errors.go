package flagprune

import (
	"errors"
	"fmt"
)

// Sentinel errors for the engine's error taxonomy. Use errors.Is against
// these, not string comparison; constructors below wrap them with
// file/reason context.
var (
	ErrConfigInvalid   = errors.New("config invalid")
	ErrParseFailed     = errors.New("parse failed")
	ErrOverlappingEdit = errors.New("overlapping edits")
	ErrFormatFailed    = errors.New("format failed")
	ErrIO              = errors.New("io error")
)

// NewConfigInvalidError wraps ErrConfigInvalid with a human reason. Fatal to
// the run.
func NewConfigInvalidError(reason string) error {
	return fmt.Errorf("%w: %s", ErrConfigInvalid, reason)
}

// NewParseFailedError wraps ErrParseFailed for the named file. Non-fatal;
// the caller should skip the file and record cause as a warning.
func NewParseFailedError(file string, cause error) error {
	return fmt.Errorf("%w: %s: %v", ErrParseFailed, file, cause)
}

// NewOverlappingEditError asserts a planner bug: the file is aborted and
// left with its original source unchanged.
func NewOverlappingEditError(a, b Edit) error {
	return fmt.Errorf("%w: [%d,%d) overlaps [%d,%d)", ErrOverlappingEdit, a.Offset, a.End(), b.Offset, b.End())
}

// NewFormatFailedError wraps ErrFormatFailed. Non-fatal; keep the
// pre-format source and record a warning.
func NewFormatFailedError(cause error) error {
	return fmt.Errorf("%w: %v", ErrFormatFailed, cause)
}

// NewIOError wraps ErrIO for the named file. Fatal for that file only.
func NewIOError(file string, cause error) error {
	return fmt.Errorf("%w: %s: %v", ErrIO, file, cause)
}

// InvalidRangeError is returned by the edit buffer (C2) when an edit's byte
// range falls outside the source.
type InvalidRangeError struct {
	Offset, Length, SourceLength int
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range: offset=%d length=%d source_length=%d", e.Offset, e.Length, e.SourceLength)
}

func pluralizedSummary(flags, imports, lines int) string {
	return fmt.Sprintf("%s removed, %s removed, %s removed",
		countOf(flags, "flag"), countOf(imports, "import"), countOf(lines, "line"))
}

// countOf pluralizes word based on count, in the form "N word(s)".
func countOf(count int, word string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, word)
	}
	return fmt.Sprintf("%d %ss", count, word)
}
