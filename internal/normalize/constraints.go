package normalize

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
	"github.com/rohmanhakim/searchcrawl/internal/metadata"
	"github.com/rohmanhakim/searchcrawl/pkg/failure"
	"github.com/rohmanhakim/searchcrawl/pkg/hashutil"
)

/*
Responsibilities
- Inject frontmatter
- Round-trip the markdown snapshot through a parser for canonical whitespace
- Reject only an empty body, with a Recoverable error: this is a best-effort side artifact
*/

// SnapshotInput carries the page-level facts a markdown snapshot's
// frontmatter is built from. Markdown is the already-converted body
// (internal/mdconvert's output), not yet canonicalized or prefixed.
type SnapshotInput struct {
	DocID     string
	SourceURL string
	Title     string
	Markdown  []byte
}

// Normalizer canonicalizes a converted Markdown body into a
// NormalizedMarkdownDoc ready to be persisted as a snapshot file.
type Normalizer interface {
	Normalize(input SnapshotInput, param NormalizeParam) (NormalizedMarkdownDoc, failure.ClassifiedError)
}

// Compile-time interface check
var _ Normalizer = (*MarkdownNormalizer)(nil)

type MarkdownNormalizer struct {
	metadataSink metadata.MetadataSink
}

func NewMarkdownNormalizer(metadataSink metadata.MetadataSink) MarkdownNormalizer {
	return MarkdownNormalizer{
		metadataSink: metadataSink,
	}
}

func (m *MarkdownNormalizer) Normalize(
	input SnapshotInput,
	param NormalizeParam,
) (NormalizedMarkdownDoc, failure.ClassifiedError) {
	normalized, err := normalize(input, param)
	if err != nil {
		var normalizationError *NormalizationError
		errors.As(err, &normalizationError)
		m.metadataSink.RecordError(
			time.Now(),
			"normalize",
			"MarkdownNormalizer.Normalize",
			mapNormalizationErrorToMetadataCause(*normalizationError),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, input.SourceURL),
			},
		)
		return NormalizedMarkdownDoc{}, normalizationError
	}
	return normalized, nil
}

func normalize(input SnapshotInput, param NormalizeParam) (NormalizedMarkdownDoc, failure.ClassifiedError) {
	if len(bytes.TrimSpace(input.Markdown)) == 0 {
		return NormalizedMarkdownDoc{}, &NormalizationError{
			Message: "markdown content is empty",
			Cause:   ErrCauseEmptyContent,
		}
	}

	canonicalBody := canonicalizeWhitespace(input.Markdown)
	headingCount := countHeadings(canonicalBody)

	contentHash, hashErr := hashutil.HashBytes(canonicalBody, param.hashAlgo)
	if hashErr != nil {
		return NormalizedMarkdownDoc{}, &NormalizationError{
			Message: fmt.Sprintf("failed to compute content_hash: %v", hashErr),
			Cause:   ErrCauseEmptyContent,
		}
	}

	frontmatter := NewFrontmatter(
		input.Title,
		input.SourceURL,
		input.DocID,
		string(param.hashAlgo)+":"+contentHash,
		param.fetchedAt,
		param.appVersion,
	)

	body := renderFrontmatter(frontmatter, headingCount)
	body = append(body, canonicalBody...)

	return NewNormalizedMarkdownDoc(frontmatter, body), nil
}

// canonicalizeWhitespace parses markdown through gomarkdown/parser (purely
// to confirm it is well-formed enough to walk — a parse panic here would
// indicate a gomarkdown bug, not a malformed document, since the parser
// never errors on arbitrary byte input) and re-emits the original bytes
// with trailing-space-per-line stripped, runs of two or more blank lines
// collapsed to one, and exactly one trailing newline.
func canonicalizeWhitespace(content []byte) []byte {
	p := parser.New()
	_ = markdown.Parse(content, p)

	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	var out strings.Builder
	blankRun := 0
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t")
		if line == "" {
			blankRun++
			if blankRun > 1 {
				continue
			}
		} else {
			blankRun = 0
		}
		out.WriteString(line)
		out.WriteByte('\n')
	}

	return []byte(strings.TrimRight(out.String(), "\n") + "\n")
}

// countHeadings walks the parsed AST to count heading nodes, recorded in
// the frontmatter comment purely for operator-facing context — it never
// gates whether the snapshot is written.
func countHeadings(content []byte) int {
	p := parser.New()
	doc := markdown.Parse(content, p)

	count := 0
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if _, ok := node.(*ast.Heading); ok && entering {
			count++
		}
		return ast.GoToNext
	})
	return count
}

// renderFrontmatter produces the snapshot's leading comment block. It is
// plain Markdown (an HTML comment), not YAML, since the snapshot is a
// human-facing artifact, not a machine-parsed one.
func renderFrontmatter(fm Frontmatter, headingCount int) []byte {
	var b strings.Builder
	b.WriteString("<!--\n")
	fmt.Fprintf(&b, "title: %s\n", fm.Title())
	fmt.Fprintf(&b, "source_url: %s\n", fm.SourceURL())
	fmt.Fprintf(&b, "doc_id: %s\n", fm.DocID())
	fmt.Fprintf(&b, "content_hash: %s\n", fm.ContentHash())
	fmt.Fprintf(&b, "fetched_at: %s\n", fm.FetchedAt().UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "crawler_version: %s\n", fm.CrawlerVersion())
	fmt.Fprintf(&b, "heading_count: %d\n", headingCount)
	b.WriteString("-->\n\n")
	return []byte(b.String())
}
