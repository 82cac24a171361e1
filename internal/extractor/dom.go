package extractor

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rohmanhakim/searchcrawl/internal/metadata"
	"github.com/rohmanhakim/searchcrawl/pkg/failure"
	"golang.org/x/net/html"
)

/*
Responsibilities

- Parse HTML or XML into a tree
- Extract title, headings, content and raw links by one flat, deterministic
  rule — no heuristic container search, no text-density scoring.

Removal rule: strip <script>, <style>, <nav>, <header>, <footer>
subtrees before collecting text. Everything else contributes to the
page's content, including the title and heading text itself (the spec
does not exclude them from the content field).
*/

var removalTags = map[string]bool{
	"script": true,
	"style":  true,
	"nav":    true,
	"header": true,
	"footer": true,
}

var whitespaceRun = regexp.MustCompile(`\s+`)

type DomExtractor struct {
	metadataSink metadata.MetadataSink
}

func NewDomExtractor(metadataSink metadata.MetadataSink) DomExtractor {
	return DomExtractor{metadataSink: metadataSink}
}

func (d *DomExtractor) Extract(sourceUrl url.URL, contentType string, raw []byte) (ExtractionResult, failure.ClassifiedError) {
	result, err := d.extract(contentType, raw)
	if err != nil {
		var extractionError *ExtractionError
		errors.As(err, &extractionError)
		d.metadataSink.RecordError(
			time.Now(),
			"extractor",
			"DomExtractor.Extract",
			mapExtractionErrorToMetadataCause(extractionError),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, sourceUrl.String()),
			},
		)
		return ExtractionResult{}, extractionError
	}
	return result, nil
}

func (d *DomExtractor) extract(contentType string, raw []byte) (ExtractionResult, error) {
	root, htmlNode, err := parseDocument(contentType, raw)
	if err != nil {
		return ExtractionResult{}, err
	}

	title, headings, content, links := walkDocument(root)

	var contentNode *html.Node
	if htmlNode != nil {
		contentNode = cleanedContentNode(htmlNode)
	}

	return ExtractionResult{
		Title:       title,
		Headings:    headings,
		Content:     content,
		Links:       links,
		ContentNode: contentNode,
	}, nil
}

// walkDocument performs one traversal of root, collecting title, ordered
// headings, joined content text and raw hrefs. Subtrees rooted at a
// removalTags element are skipped entirely.
func walkDocument(root domNode) (title string, headings []string, content string, links []string) {
	var contentParts []string
	titleFound := false

	var visit func(n domNode)
	visit = func(n domNode) {
		tag := n.tag()
		if removalTags[tag] {
			return
		}

		if n.isText() {
			if t := strings.TrimSpace(n.text()); t != "" {
				contentParts = append(contentParts, t)
			}
			return
		}

		switch {
		case tag == "title" && !titleFound:
			title = collectText(n)
			titleFound = true
		case isHeadingTag(tag):
			if h := collectText(n); h != "" {
				headings = append(headings, h)
			}
		case tag == "a":
			if href, ok := n.attr("href"); ok {
				links = append(links, href)
			}
		}

		for _, c := range n.children() {
			visit(c)
		}
	}
	visit(root)

	content = whitespaceRun.ReplaceAllString(strings.Join(contentParts, " "), " ")
	content = strings.TrimSpace(content)
	return title, headings, content, links
}

// collectText joins every text node under n, trimmed.
func collectText(n domNode) string {
	var parts []string
	var walk func(domNode)
	walk = func(x domNode) {
		if x.isText() {
			if t := strings.TrimSpace(x.text()); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for _, c := range x.children() {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(strings.Join(parts, " "))
}

func isHeadingTag(tag string) bool {
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}

// cleanedContentNode clones doc and strips removalTags subtrees, for the
// markdown-snapshot subsystem. The original tree is left untouched.
func cleanedContentNode(doc *html.Node) *html.Node {
	cloned := deepCloneNode(doc)
	if cloned == nil {
		return nil
	}
	removeSubtrees(cloned, removalTags)
	return cloned
}

func deepCloneNode(node *html.Node) *html.Node {
	if node == nil {
		return nil
	}
	cloned := &html.Node{
		Type:      node.Type,
		DataAtom:  node.DataAtom,
		Data:      node.Data,
		Namespace: node.Namespace,
	}
	if len(node.Attr) > 0 {
		cloned.Attr = make([]html.Attribute, len(node.Attr))
		copy(cloned.Attr, node.Attr)
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if clonedChild := deepCloneNode(child); clonedChild != nil {
			cloned.AppendChild(clonedChild)
		}
	}
	return cloned
}

func removeSubtrees(root *html.Node, tags map[string]bool) {
	var toRemove []*html.Node
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n == nil {
			return
		}
		if n.Type == html.ElementNode && tags[n.Data] {
			toRemove = append(toRemove, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(root)
	for _, n := range toRemove {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}
}
