package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAccessDenied       = errors.New("access denied")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrUnsupportedFormat  = errors.New("unsupported file format")
	ErrUnknownTier        = errors.New("unknown compression tier")
	ErrEmptyUpload        = errors.New("uploaded file is empty")
	ErrOutputTimeout      = errors.New("converted output did not appear in time")
	ErrInvalidExecContext = errors.New("invalid executor context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
)

// FailureKind classifies a failed conversion job on the wire so clients can
// tell a bad upload apart from a broken converter or a stuck external tool.
type FailureKind string

const (
	FailureInput     FailureKind = "input"
	FailureConverter FailureKind = "converter"
	FailureTimeout   FailureKind = "timeout"
	FailureInternal  FailureKind = "internal"
)

// ClassifyFailure maps an executor error to its FailureKind.
func ClassifyFailure(err error) FailureKind {
	switch {
	case errors.Is(err, ErrUnsupportedFormat),
		errors.Is(err, ErrUnknownTier),
		errors.Is(err, ErrEmptyUpload),
		errors.Is(err, ErrInvalidArgument):
		return FailureInput
	case errors.Is(err, ErrOutputTimeout):
		return FailureTimeout
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrReadDatabaseRow):
		return FailureInternal
	default:
		return FailureConverter
	}
}
