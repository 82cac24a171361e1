package normalize_test

import (
	"strings"
	"testing"
	"time"

	"github.com/rohmanhakim/searchcrawl/internal/normalize"
	"github.com/rohmanhakim/searchcrawl/pkg/failure"
	"github.com/rohmanhakim/searchcrawl/pkg/hashutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newParam() normalize.NormalizeParam {
	return normalize.NewNormalizeParam("test-version", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), hashutil.HashAlgoBLAKE3)
}

func TestNormalize_PrependsFrontmatterAndPreservesBody(t *testing.T) {
	sink := &metadataSinkMock{}
	n := normalize.NewMarkdownNormalizer(sink)

	input := normalize.SnapshotInput{
		DocID:     "sha256:abc123",
		SourceURL: "https://example.com/guide",
		Title:     "Guide",
		Markdown:  []byte("# Guide\n\nHello world.\n"),
	}

	result, err := n.Normalize(input, newParam())

	require.NoError(t, err)
	content := string(result.Content())
	assert.True(t, strings.HasPrefix(content, "<!--\n"))
	assert.Contains(t, content, "title: Guide")
	assert.Contains(t, content, "source_url: https://example.com/guide")
	assert.Contains(t, content, "doc_id: sha256:abc123")
	assert.Contains(t, content, "heading_count: 1")
	assert.Contains(t, content, "# Guide")
	assert.Contains(t, content, "Hello world.")
	assert.False(t, sink.recordErrorCalled)
}

func TestNormalize_CollapsesBlankLineRuns(t *testing.T) {
	sink := &metadataSinkMock{}
	n := normalize.NewMarkdownNormalizer(sink)

	input := normalize.SnapshotInput{
		DocID:     "sha256:abc",
		SourceURL: "https://example.com/a",
		Title:     "A",
		Markdown:  []byte("# A\n\n\n\n\nBody line.\n"),
	}

	result, err := n.Normalize(input, newParam())
	require.NoError(t, err)

	assert.NotContains(t, string(result.Content()), "\n\n\n")
}

func TestNormalize_StripsTrailingWhitespacePerLine(t *testing.T) {
	sink := &metadataSinkMock{}
	n := normalize.NewMarkdownNormalizer(sink)

	input := normalize.SnapshotInput{
		DocID:     "sha256:abc",
		SourceURL: "https://example.com/a",
		Title:     "A",
		Markdown:  []byte("# A   \n\nBody line.   \n"),
	}

	result, err := n.Normalize(input, newParam())
	require.NoError(t, err)

	for _, line := range strings.Split(string(result.Content()), "\n") {
		assert.Equal(t, strings.TrimRight(line, " \t"), line)
	}
}

func TestNormalize_EmptyMarkdownIsRecoverableError(t *testing.T) {
	sink := &metadataSinkMock{}
	n := normalize.NewMarkdownNormalizer(sink)

	input := normalize.SnapshotInput{
		DocID:     "sha256:abc",
		SourceURL: "https://example.com/a",
		Title:     "A",
		Markdown:  []byte("   \n\n  "),
	}

	_, err := n.Normalize(input, newParam())

	require.Error(t, err)
	assert.Equal(t, failure.SeverityRecoverable, err.Severity(), "snapshot failures must never escalate to Fatal")
	assert.True(t, sink.recordErrorCalled)
}

func TestNormalize_Determinism(t *testing.T) {
	input := normalize.SnapshotInput{
		DocID:     "sha256:abc",
		SourceURL: "https://example.com/a",
		Title:     "A",
		Markdown:  []byte("# A\n\nSome body text.\n\n\n\nMore text.\n"),
	}
	param := newParam()

	var outputs []string
	for i := 0; i < 3; i++ {
		sink := &metadataSinkMock{}
		n := normalize.NewMarkdownNormalizer(sink)
		result, err := n.Normalize(input, param)
		require.NoError(t, err)
		outputs = append(outputs, string(result.Content()))
	}

	for i := 1; i < len(outputs); i++ {
		assert.Equal(t, outputs[0], outputs[i])
	}
}
