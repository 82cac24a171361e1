package storage_test

import (
	"time"

	"github.com/rohmanhakim/searchcrawl/internal/metadata"
	"github.com/rohmanhakim/searchcrawl/internal/normalize"
)

// metadataSinkMock is a test double for metadata.MetadataSink.
type metadataSinkMock struct {
	metadata.NoopRecorder
	recordErrorCalled       bool
	recordErrorObservedAt   time.Time
	recordErrorPackageName  string
	recordErrorAction       string
	recordErrorCause        metadata.ErrorCause
	recordErrorDetails      string
	recordErrorAttrs        []metadata.Attribute
	recordArtifactCalled    bool
	recordArtifactKind      metadata.ArtifactKind
	recordArtifactPath      string
	recordArtifactAttrs     []metadata.Attribute
}

func (m *metadataSinkMock) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	m.recordErrorCalled = true
	m.recordErrorObservedAt = observedAt
	m.recordErrorPackageName = packageName
	m.recordErrorAction = action
	m.recordErrorCause = cause
	m.recordErrorDetails = details
	m.recordErrorAttrs = attrs
}

func (m *metadataSinkMock) RecordArtifact(kind metadata.ArtifactKind, path string, attrs []metadata.Attribute) {
	m.recordArtifactCalled = true
	m.recordArtifactKind = kind
	m.recordArtifactPath = path
	m.recordArtifactAttrs = attrs
}

// Reset clears all recorded state
func (m *metadataSinkMock) Reset() {
	m.recordErrorCalled = false
	m.recordErrorObservedAt = time.Time{}
	m.recordErrorPackageName = ""
	m.recordErrorAction = ""
	m.recordErrorCause = 0
	m.recordErrorDetails = ""
	m.recordErrorAttrs = nil
	m.recordArtifactCalled = false
	m.recordArtifactKind = ""
	m.recordArtifactPath = ""
	m.recordArtifactAttrs = nil
}

// createTestNormalizedDoc creates a normalized document for testing
func createTestNormalizedDoc(sourceURL, contentHash string, content []byte) normalize.NormalizedMarkdownDoc {
	frontmatter := normalize.NewFrontmatter(
		"Test Title", // title
		sourceURL,    // sourceURL
		"doc123",     // docID
		contentHash,  // contentHash
		time.Now(),   // fetchedAt
		"1.0.0",      // crawlerVersion
	)
	return normalize.NewNormalizedMarkdownDoc(frontmatter, content)
}

// findAttrValue finds an attribute value by key in a slice of attributes
func findAttrValue(attrs []metadata.Attribute, key metadata.AttributeKey) string {
	for _, attr := range attrs {
		if attr.Key == key {
			return attr.Value
		}
	}
	return ""
}
