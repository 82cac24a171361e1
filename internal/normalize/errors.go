package normalize

import (
	"fmt"

	"github.com/rohmanhakim/searchcrawl/internal/metadata"
	"github.com/rohmanhakim/searchcrawl/pkg/failure"
)

type NormalizationErrorCause string

const (
	ErrCauseEmptyContent NormalizationErrorCause = "empty content"
)

type NormalizationError struct {
	Message string
	Cause   NormalizationErrorCause
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalization error: %s: %s", e.Cause, e.Message)
}

// Severity is always Recoverable: a snapshot is a best-effort side
// artifact, so a normalization failure is logged and skipped, never
// allowed to block ingestion, indexing, or querying.
func (e *NormalizationError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

// mapNormalizationErrorToMetadataCause maps normalize-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapNormalizationErrorToMetadataCause(err NormalizationError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseEmptyContent:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
