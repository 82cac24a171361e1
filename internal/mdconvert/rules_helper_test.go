package mdconvert_test

import (
	"strings"
	"testing"
	"time"

	"github.com/rohmanhakim/searchcrawl/internal/mdconvert"
	"github.com/rohmanhakim/searchcrawl/internal/metadata"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

// createTestRule creates a StrictConversionRule with a no-op metadata sink for testing.
func createTestRule() *mdconvert.StrictConversionRule {
	return mdconvert.NewRule(metadata.NoopRecorder{})
}

// parseContentNode parses an HTML fragment and returns its body node, mimicking
// the content node the extractor hands to the conversion rule.
func parseContentNode(t *testing.T, htmlContent string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(htmlContent))
	require.NoError(t, err)

	var body *html.Node
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "body" {
			body = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)

	if body != nil {
		return body
	}
	return doc
}

// mockMetadataSink is a test helper that captures recorded errors.
type mockMetadataSink struct {
	metadata.NoopRecorder
	errors []recordedError
}

type recordedError struct {
	packageName string
	action      string
	cause       metadata.ErrorCause
	details     string
}

func (m *mockMetadataSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	errorString string,
	attrs []metadata.Attribute,
) {
	m.errors = append(m.errors, recordedError{
		packageName: packageName,
		action:      action,
		cause:       cause,
		details:     errorString,
	})
}
