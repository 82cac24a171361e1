package sanitizer

import (
	"fmt"

	"github.com/rohmanhakim/searchcrawl/internal/metadata"
	"github.com/rohmanhakim/searchcrawl/pkg/failure"
)

type SanitizationErrorCause string

const (
	ErrCauseUnparseableHTML SanitizationErrorCause = "unparseable html"
)

type SanitizationError struct {
	Message string
	Cause   SanitizationErrorCause
}

func (e *SanitizationError) Error() string {
	return fmt.Sprintf("sanitization error: %s: %s", e.Cause, e.Message)
}

func (e *SanitizationError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

// mapSanitizationErrorToMetadataCause maps sanitizer-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapSanitizationErrorToMetadataCause(err SanitizationError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseUnparseableHTML:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
