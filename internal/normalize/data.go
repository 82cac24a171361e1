package normalize

import (
	"time"

	"github.com/rohmanhakim/searchcrawl/pkg/hashutil"
)

// NormalizedMarkdownDoc is the canonicalized Markdown snapshot ready to be
// written under <OutputDir>/snapshots/<doc_id>.md.
type NormalizedMarkdownDoc struct {
	frontmatter Frontmatter
	content     []byte
}

// Frontmatter returns the frontmatter of the normalized document.
func (n NormalizedMarkdownDoc) Frontmatter() Frontmatter {
	return n.frontmatter
}

// Content returns the normalized markdown content, frontmatter header
// included.
func (n NormalizedMarkdownDoc) Content() []byte {
	return n.content
}

// NewNormalizedMarkdownDoc creates a new immutable NormalizedMarkdownDoc.
func NewNormalizedMarkdownDoc(frontmatter Frontmatter, content []byte) NormalizedMarkdownDoc {
	return NormalizedMarkdownDoc{
		frontmatter: frontmatter,
		content:     content,
	}
}

// Frontmatter carries the snapshot-identifying fields injected ahead of the
// Markdown body. It is presentation metadata only — the indexer and query
// processor never read it.
type Frontmatter struct {
	title          string
	sourceURL      string
	docID          string
	contentHash    string
	fetchedAt      time.Time
	crawlerVersion string
}

// NewFrontmatter creates a new immutable Frontmatter with all fields populated.
func NewFrontmatter(
	title string,
	sourceURL string,
	docID string,
	contentHash string,
	fetchedAt time.Time,
	crawlerVersion string,
) Frontmatter {
	return Frontmatter{
		title:          title,
		sourceURL:      sourceURL,
		docID:          docID,
		contentHash:    contentHash,
		fetchedAt:      fetchedAt,
		crawlerVersion: crawlerVersion,
	}
}

// Title returns the document title.
func (f Frontmatter) Title() string {
	return f.title
}

// SourceURL returns the original source URL.
func (f Frontmatter) SourceURL() string {
	return f.sourceURL
}

// DocID returns the document ID the index and doc store use for this page.
func (f Frontmatter) DocID() string {
	return f.docID
}

// ContentHash returns the fingerprint of the normalized markdown content.
func (f Frontmatter) ContentHash() string {
	return f.contentHash
}

// FetchedAt returns the timestamp when the document was fetched.
func (f Frontmatter) FetchedAt() time.Time {
	return f.fetchedAt
}

// CrawlerVersion returns the crawler version that produced this snapshot.
func (f Frontmatter) CrawlerVersion() string {
	return f.crawlerVersion
}

// NormalizeParam carries the inputs needed to build a snapshot's
// frontmatter that are not already present on the page record itself.
type NormalizeParam struct {
	appVersion string
	fetchedAt  time.Time
	hashAlgo   hashutil.HashAlgo
}

func NewNormalizeParam(
	appVersion string,
	fetchedAt time.Time,
	hashAlgo hashutil.HashAlgo,
) NormalizeParam {
	return NormalizeParam{
		appVersion: appVersion,
		fetchedAt:  fetchedAt,
		hashAlgo:   hashAlgo,
	}
}
