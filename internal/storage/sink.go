package storage

import (
	"errors"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rohmanhakim/searchcrawl/internal/metadata"
	"github.com/rohmanhakim/searchcrawl/internal/normalize"
	"github.com/rohmanhakim/searchcrawl/pkg/failure"
	"github.com/rohmanhakim/searchcrawl/pkg/fileutil"
)

/*
Responsibilities
- Persist Markdown snapshots under <OutputDir>/snapshots/<doc_id>.md
- Write-and-rename: a reader never observes a partially written snapshot
- Overwrite-safe reruns (same doc_id, same path, last write wins)

A snapshot write failure never blocks ingestion, indexing, or querying —
it is a best-effort side artifact. StorageError is Recoverable when the
underlying write is retryable (disk full) and Fatal otherwise; the crawler
drops the snapshot and carries on in both cases.
*/

type Sink interface {
	Write(
		outputDir string,
		docID string,
		normalizedDoc normalize.NormalizedMarkdownDoc,
	) (WriteResult, failure.ClassifiedError)
}

// Compile-time interface check
var _ Sink = (*LocalSink)(nil)

type LocalSink struct {
	metadataSink metadata.MetadataSink
}

func NewLocalSink(
	metadataSink metadata.MetadataSink,
) LocalSink {
	return LocalSink{
		metadataSink: metadataSink,
	}
}

func (s *LocalSink) Write(
	outputDir string,
	docID string,
	normalizedDoc normalize.NormalizedMarkdownDoc,
) (WriteResult, failure.ClassifiedError) {
	writeResult, err := write(outputDir, docID, normalizedDoc)
	if err != nil {
		var storageError *StorageError
		errors.As(err, &storageError)
		s.metadataSink.RecordError(
			time.Now(),
			"storage",
			"LocalSink.Write",
			mapStorageErrorToMetadataCause(storageError),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, normalizedDoc.Frontmatter().SourceURL()),
				metadata.NewAttr(metadata.AttrWritePath, storageError.Path),
			},
		)
		return WriteResult{}, storageError
	}
	s.metadataSink.RecordArtifact(
		metadata.ArtifactMarkdown,
		writeResult.Path(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrWritePath, writeResult.Path()),
			metadata.NewAttr(metadata.AttrURL, normalizedDoc.Frontmatter().SourceURL()),
			metadata.NewAttr(metadata.AttrField, writeResult.ContentHash()),
		},
	)
	return writeResult, nil
}

func write(
	outputDir string,
	docID string,
	normalizedDoc normalize.NormalizedMarkdownDoc,
) (WriteResult, failure.ClassifiedError) {
	snapshotDir := filepath.Join(outputDir, "snapshots")
	fullPath := filepath.Join(snapshotDir, docID+".md")

	if err := fileutil.WriteFileAtomic(fullPath, normalizedDoc.Content(), 0644); err != nil {
		var fileErr *fileutil.FileError
		cause := ErrCauseWriteFailure
		retryable := false
		if errors.As(err, &fileErr) {
			retryable = fileErr.Retryable
			switch fileErr.Cause {
			case fileutil.ErrCauseDiskFull:
				cause = ErrCauseDiskFull
			case fileutil.ErrCausePathError:
				cause = ErrCausePathError
			}
		}
		if errors.Is(err, syscall.ENOSPC) {
			cause = ErrCauseDiskFull
			retryable = true
		}
		return WriteResult{}, &StorageError{
			Message:   err.Error(),
			Retryable: retryable,
			Cause:     cause,
			Path:      fullPath,
		}
	}

	contentHash := normalizedDoc.Frontmatter().ContentHash()
	return NewWriteResult(docID, fullPath, contentHash), nil
}
