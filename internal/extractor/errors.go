package extractor

import (
	"fmt"

	"github.com/rohmanhakim/searchcrawl/internal/metadata"
	"github.com/rohmanhakim/searchcrawl/pkg/failure"
)

type ExtractionErrorCause string

const (
	// ErrCauseParseFailure is returned only when both the selected parser
	// (XML or HTML) and the permissive HTML fallback fail to produce a
	// usable tree. The flat extraction rule otherwise never fails on
	// thin/empty content — empty title, no headings, empty content are
	// all valid results, not errors.
	ErrCauseParseFailure ExtractionErrorCause = "parse failure"
)

type ExtractionError struct {
	Message string
	Cause   ExtractionErrorCause
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction error: %s: %s", e.Cause, e.Message)
}

func (e *ExtractionError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

// mapExtractionErrorToMetadataCause maps extractor-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapExtractionErrorToMetadataCause(err *ExtractionError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseParseFailure:
		return metadata.CauseParseFailure
	default:
		return metadata.CauseUnknown
	}
}
