package extractor

import "golang.org/x/net/html"

// ExtractionResult holds everything extraction pulls out of one fetched
// page: the fields the indexer needs (Title, Headings, Content) and the
// raw, unresolved hrefs the crawler will resolve and filter.
//
// ContentNode is populated only when the HTML parser path was used; it
// feeds the markdown-snapshot subsystem and is nil for XML-parsed pages
// (snapshotting simply does not run for those).
type ExtractionResult struct {
	Title       string
	Headings    []string
	Content     string
	Links       []string
	ContentNode *html.Node
}
