package extractor

import (
	"bytes"
	"strings"

	"github.com/antchfx/xmlquery"
	"golang.org/x/net/html"
)

/*
Parser selection

Content-Type containing "xml" (case-insensitive) routes through
antchfx/xmlquery; everything else, and any XML parse failure, falls
back to the permissive HTML parser (golang.org/x/net/html's html.Parse).
Extraction logic is written once
against the small domNode interface below so both parsers feed the same
title/headings/content/link walk.
*/

// domNode is the minimal tree shape extraction needs, implemented once
// for golang.org/x/net/html trees and once for xmlquery trees.
type domNode interface {
	tag() string
	isText() bool
	text() string
	children() []domNode
	attr(key string) (string, bool)
}

type htmlDomNode struct{ n *html.Node }

func (h htmlDomNode) tag() string {
	if h.n.Type == html.ElementNode {
		return h.n.Data
	}
	return ""
}

func (h htmlDomNode) isText() bool {
	return h.n.Type == html.TextNode
}

func (h htmlDomNode) text() string {
	return h.n.Data
}

func (h htmlDomNode) children() []domNode {
	var out []domNode
	for c := h.n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, htmlDomNode{c})
	}
	return out
}

func (h htmlDomNode) attr(key string) (string, bool) {
	for _, a := range h.n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

type xmlDomNode struct{ n *xmlquery.Node }

func (x xmlDomNode) tag() string {
	if x.n.Type == xmlquery.ElementNode {
		return strings.ToLower(x.n.Data)
	}
	return ""
}

func (x xmlDomNode) isText() bool {
	return x.n.Type == xmlquery.TextNode || x.n.Type == xmlquery.CharDataNode
}

func (x xmlDomNode) text() string {
	return x.n.Data
}

func (x xmlDomNode) children() []domNode {
	var out []domNode
	for c := x.n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, xmlDomNode{c})
	}
	return out
}

func (x xmlDomNode) attr(key string) (string, bool) {
	for _, a := range x.n.Attr {
		if strings.EqualFold(a.Name.Local, key) {
			return a.Value, true
		}
	}
	return "", false
}

// parseDocument selects a parser by contentType and returns the root
// domNode plus, when the HTML path was used, the underlying *html.Node
// (needed by the markdown-snapshot subsystem).
func parseDocument(contentType string, raw []byte) (domNode, *html.Node, *ExtractionError) {
	if strings.Contains(strings.ToLower(contentType), "xml") {
		if xmlRoot, err := xmlquery.Parse(bytes.NewReader(raw)); err == nil {
			return xmlDomNode{xmlRoot}, nil, nil
		}
		// fall through to the permissive HTML parser below
	}

	htmlRoot, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, nil, &ExtractionError{
			Message: err.Error(),
			Cause:   ErrCauseParseFailure,
		}
	}
	return htmlDomNode{htmlRoot}, htmlRoot, nil
}
