package indexer_test

import (
	"time"

	"github.com/rohmanhakim/searchcrawl/internal/metadata"
)

// metadataSinkMock is a test double for metadata.MetadataSink.
type metadataSinkMock struct {
	metadata.NoopRecorder
	recordErrorCalls    int
	recordErrorCause    metadata.ErrorCause
	recordErrorDetails  string
	recordArtifactCalls int
	recordArtifactKind  metadata.ArtifactKind
	recordArtifactPath  string
	recordIndexedCalls  int
	recordIndexedDocID  string
	recordIndexedTerms  int
}

func (m *metadataSinkMock) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	m.recordErrorCalls++
	m.recordErrorCause = cause
	m.recordErrorDetails = details
}

func (m *metadataSinkMock) RecordArtifact(kind metadata.ArtifactKind, path string, attrs []metadata.Attribute) {
	m.recordArtifactCalls++
	m.recordArtifactKind = kind
	m.recordArtifactPath = path
}

func (m *metadataSinkMock) RecordIndexed(docID, url string, termCount int) {
	m.recordIndexedCalls++
	m.recordIndexedDocID = docID
	m.recordIndexedTerms = termCount
}

// fakeCrawlDone is a test double satisfying the crawlDoneFlag-shaped
// interface Run expects (anything with a Load() bool method, matching
// atomic.Bool's own signature).
type fakeCrawlDone struct {
	done bool
}

func (f *fakeCrawlDone) Load() bool { return f.done }
