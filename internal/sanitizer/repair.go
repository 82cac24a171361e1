package sanitizer

import (
	"fmt"
	"hash/fnv"
	"strings"

	"golang.org/x/net/html"
)

// isEmptyNode checks if a node is empty (has no children or only whitespace text nodes).
// Returns true for element nodes with no meaningful content.
func isEmptyNode(node *html.Node) bool {
	if node == nil || node.Type != html.ElementNode {
		return false
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case html.ElementNode:
			return false
		case html.TextNode:
			if strings.TrimSpace(child.Data) != "" {
				return false
			}
		}
	}

	return true
}

// nodeSignature generates a signature string for comparing node equality.
// It includes tag name, attributes, and text content structure.
// This is used for duplicate detection.
func nodeSignature(node *html.Node) string {
	if node == nil {
		return ""
	}

	var sig strings.Builder
	sig.WriteString(fmt.Sprintf("type:%d|tag:%s|", node.Type, node.Data))

	for i, attr := range node.Attr {
		if i > 0 {
			sig.WriteString(",")
		}
		sig.WriteString(fmt.Sprintf("%s=%s", attr.Key, attr.Val))
	}
	sig.WriteString("|")
	sig.WriteString(fmt.Sprintf("content:%d", nodeContentHash(node)))

	return sig.String()
}

// nodeContentHash generates a hash of the node's content for comparison.
// It recursively hashes the structure and text content.
func nodeContentHash(node *html.Node) uint64 {
	h := fnv.New64a()

	if node.Type == html.ElementNode {
		h.Write([]byte(node.Data))
		for _, attr := range node.Attr {
			h.Write([]byte(attr.Key))
			h.Write([]byte(attr.Val))
		}
	} else if node.Type == html.TextNode {
		h.Write([]byte(strings.TrimSpace(node.Data)))
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		childHash := nodeContentHash(child)
		h.Write([]byte(fmt.Sprintf("%d", childHash)))
	}

	return h.Sum64()
}

// isMeaningfulElement returns true if the element type should be considered
// for deduplication. Headings and major semantic landmarks are structural
// anchors and are never removed as duplicates.
func isMeaningfulElement(tag string) bool {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return false
	}

	switch tag {
	case "main", "article", "header", "footer", "nav", "aside":
		return false
	default:
		return true
	}
}
