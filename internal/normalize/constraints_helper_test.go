package normalize_test

import (
	"time"

	"github.com/rohmanhakim/searchcrawl/internal/metadata"
)

// metadataSinkMock is a test double for metadata.MetadataSink that only
// captures RecordError calls; every other method is the no-op default.
type metadataSinkMock struct {
	metadata.NoopRecorder
	recordErrorCalled bool
	recordErrorAttrs  []metadata.Attribute
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
	m.recordErrorAttrs = attrs
}

// Reset clears all recorded state
func (m *metadataSinkMock) Reset() {
	m.recordErrorCalled = false
	m.recordErrorAttrs = nil
}
