// Package tokenize implements the fixed tokenization grammar shared by the
// indexer and the query processor: a case-insensitive ASCII word pattern
// with a closed stop-word list. Both sides of the pipeline must use the
// exact same rules, or index terms and query terms will never agree.
package tokenize

import "regexp"

// TokenPattern is the spec's fixed token grammar: runs of ASCII letters and
// digits, matched case-insensitively. Non-ASCII text is not tokenized.
var TokenPattern = regexp.MustCompile(`[A-Za-z0-9]+`)

// StopWords is the fixed, closed list of terms that are never inserted into
// the index and never contribute to a query's matched tokens.
var StopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {},
	"is": {}, "am": {}, "are": {}, "was": {}, "were": {},
	"have": {}, "has": {}, "had": {},
	"of": {}, "to": {}, "in": {}, "on": {}, "for": {}, "at": {}, "by": {},
}

// Tokens lowercases text, splits it on TokenPattern, and drops stop words.
// The result preserves occurrence order (including duplicates), since
// callers need raw frequency counts, not a set.
func Tokens(text string) []string {
	matches := TokenPattern.FindAllString(toLowerASCII(text), -1)
	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, stop := StopWords[m]; stop {
			continue
		}
		tokens = append(tokens, m)
	}
	return tokens
}

// IsStopWord reports whether a (already-lowercased) token is a stop word.
func IsStopWord(token string) bool {
	_, ok := StopWords[token]
	return ok
}

func toLowerASCII(s string) string {
	b := []byte(s)
	changed := false
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
			changed = true
		}
	}
	if !changed {
		return s
	}
	return string(b)
}
