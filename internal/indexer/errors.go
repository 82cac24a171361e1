package indexer

import (
	"fmt"

	"github.com/rohmanhakim/searchcrawl/internal/metadata"
	"github.com/rohmanhakim/searchcrawl/pkg/failure"
)

type IndexErrorCause string

const (
	// ErrCauseMalformedRecord marks a PageRecord missing a required field
	// (doc_id). The record is skipped; ingestion continues.
	ErrCauseMalformedRecord IndexErrorCause = "malformed page record"
	// ErrCausePersistenceFailure marks a write-and-rename failure for
	// inverted_index.json or doc_store.json. The in-memory index is
	// unaffected and keeps serving queries; this must be surfaced to an
	// operator, never treated as fatal.
	ErrCausePersistenceFailure IndexErrorCause = "index persistence failed"
)

type IndexError struct {
	Message string
	Cause   IndexErrorCause
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("indexer error: %s: %s", e.Cause, e.Message)
}

// Severity is always Recoverable: per the error taxonomy, no crawler,
// parser, or indexer failure is fatal to the pipeline — even a persistence
// failure is logged and the in-memory index keeps serving queries.
func (e *IndexError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

func mapIndexErrorToMetadataCause(err *IndexError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseMalformedRecord:
		return metadata.CauseMalformedPageRecord
	case ErrCausePersistenceFailure:
		return metadata.CauseIndexPersistenceFailure
	default:
		return metadata.CauseUnknown
	}
}
