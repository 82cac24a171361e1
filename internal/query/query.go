// Package query implements the read-only query algorithm: tokenize,
// intersect postings smallest-first, rank the AND set, and (if short of
// responseSize) backfill from an OR pool built from each term's top-K
// postings. Pure function over an already-built index; holds no state and
// takes no lock itself — the caller (internal/indexer.Search) is
// responsible for running it under a read lock.
package query

import (
	"sort"

	"github.com/rohmanhakim/searchcrawl/internal/indexer"
	"github.com/rohmanhakim/searchcrawl/internal/tokenize"
)

// Result is an alias for indexer.SearchResult: query imports indexer's
// typed maps and result shape rather than the other way around, so the
// indexer package never needs to know this package exists.
type Result = indexer.SearchResult

type tokenPosting struct {
	token   string
	posting map[string]int64
}

// Process runs query against index/docStore and returns up to
// responseSize results ordered by descending score (ties broken by
// ascending doc_id), following original_source/query_response.py's
// AND-first-then-OR-backfill algorithm.
func Process(index indexer.InvertedIndex, docStore indexer.DocStore, query string, responseSize, topKPerTerm int) []Result {
	matched := matchPostings(index, dedupeTokens(tokenize.Tokens(query)))
	if len(matched) == 0 {
		return nil
	}

	common := intersectSmallestFirst(matched)

	selected := make([]string, 0, responseSize)
	selectedSet := make(map[string]struct{}, responseSize)
	appendUpTo := func(docIDs []string) {
		for _, docID := range docIDs {
			if len(selected) >= responseSize {
				return
			}
			if _, ok := selectedSet[docID]; ok {
				continue
			}
			selected = append(selected, docID)
			selectedSet[docID] = struct{}{}
		}
	}

	if len(common) > 0 {
		appendUpTo(rankDocIDs(scoreDocs(matched, common)))
		if len(selected) < responseSize {
			backfill := orBackfillPool(matched, topKPerTerm, selectedSet)
			appendUpTo(rankDocIDs(backfill))
		}
	} else {
		backfill := orBackfillPool(matched, topKPerTerm, selectedSet)
		appendUpTo(rankDocIDs(backfill))
	}

	return shapeResults(selected, docStore)
}

// matchPostings keeps only tokens with a non-empty posting in index.
func matchPostings(index indexer.InvertedIndex, tokens []string) []tokenPosting {
	var matched []tokenPosting
	for _, tok := range tokens {
		posting, ok := index[tok]
		if !ok || len(posting) == 0 {
			continue
		}
		matched = append(matched, tokenPosting{token: tok, posting: posting})
	}
	return matched
}

// intersectSmallestFirst intersects every matched token's posting,
// starting from the smallest, so an empty intersection short-circuits as
// early as possible.
func intersectSmallestFirst(matched []tokenPosting) map[string]struct{} {
	ordered := make([]tokenPosting, len(matched))
	copy(ordered, matched)
	sort.Slice(ordered, func(i, j int) bool {
		return len(ordered[i].posting) < len(ordered[j].posting)
	})

	var common map[string]struct{}
	for _, tp := range ordered {
		if common == nil {
			common = make(map[string]struct{}, len(tp.posting))
			for docID := range tp.posting {
				common[docID] = struct{}{}
			}
			continue
		}
		next := make(map[string]struct{}, len(common))
		for docID := range common {
			if _, ok := tp.posting[docID]; ok {
				next[docID] = struct{}{}
			}
		}
		common = next
		if len(common) == 0 {
			break
		}
	}
	return common
}

// dedupeTokens preserves first-seen order while dropping repeats: the
// query "fox fox" should not double-count the same token.
func dedupeTokens(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

// scoreDocs sums, per doc_id in the given candidate set, the score
// contributed by every matched token that has a posting for that doc.
func scoreDocs(matched []tokenPosting, candidates map[string]struct{}) map[string]int64 {
	scores := make(map[string]int64, len(candidates))
	for _, tp := range matched {
		for docID := range candidates {
			if s, ok := tp.posting[docID]; ok {
				scores[docID] += s
			}
		}
	}
	return scores
}

// orBackfillPool accumulates scores from each token's top-K postings (by
// score), skipping already-selected docs — approximating the top-scoring
// OR candidates without scanning every posting in full.
func orBackfillPool(matched []tokenPosting, topK int, exclude map[string]struct{}) map[string]int64 {
	pool := make(map[string]int64)
	for _, tp := range matched {
		for docID, score := range topNPostings(tp.posting, topK) {
			if _, skip := exclude[docID]; skip {
				continue
			}
			pool[docID] += score
		}
	}
	return pool
}

// topNPostings returns the top n (doc_id, score) pairs from posting by
// descending score, or the whole posting if it already has n or fewer.
func topNPostings(posting map[string]int64, n int) map[string]int64 {
	if len(posting) <= n {
		return posting
	}
	type pair struct {
		docID string
		score int64
	}
	pairs := make([]pair, 0, len(posting))
	for docID, score := range posting {
		pairs = append(pairs, pair{docID, score})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].score != pairs[j].score {
			return pairs[i].score > pairs[j].score
		}
		return pairs[i].docID < pairs[j].docID
	})
	out := make(map[string]int64, n)
	for _, p := range pairs[:n] {
		out[p.docID] = p.score
	}
	return out
}

// rankDocIDs orders doc_ids by descending score, breaking ties by
// ascending doc_id for determinism.
func rankDocIDs(scores map[string]int64) []string {
	ids := make([]string, 0, len(scores))
	for docID := range scores {
		ids = append(ids, docID)
	}
	sort.Slice(ids, func(i, j int) bool {
		if scores[ids[i]] != scores[ids[j]] {
			return scores[ids[i]] > scores[ids[j]]
		}
		return ids[i] < ids[j]
	})
	return ids
}

// shapeResults resolves each selected doc_id against docStore, skipping
// any doc_id missing from it (a posting can outlive its doc_store entry
// only through a bug, but the query processor must not panic over it).
func shapeResults(docIDs []string, docStore indexer.DocStore) []Result {
	results := make([]Result, 0, len(docIDs))
	for _, docID := range docIDs {
		entry, ok := docStore[docID]
		if !ok {
			continue
		}
		results = append(results, Result{
			DocID: docID,
			URL:   entry.URL,
			Title: entry.Title,
		})
	}
	return results
}
