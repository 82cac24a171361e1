// Package indexer maintains the weighted inverted index and document store
// the query processor reads, consuming PageRecords off the pipeline's
// PageQueue and persisting both structures after every successful
// ingestion.
package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rohmanhakim/searchcrawl/internal/config"
	"github.com/rohmanhakim/searchcrawl/internal/metadata"
	"github.com/rohmanhakim/searchcrawl/internal/pagemodel"
	"github.com/rohmanhakim/searchcrawl/internal/tokenize"
	"github.com/rohmanhakim/searchcrawl/pkg/failure"
	"github.com/rohmanhakim/searchcrawl/pkg/fileutil"
	"github.com/rohmanhakim/searchcrawl/pkg/hashutil"
)

// pollInterval is how long Run waits for a PageRecord before checking
// whether the crawl is done and the queue has drained. Matches spec.md
// §4.3's "short timeout (≈0.5s)".
const pollInterval = 500 * time.Millisecond

// Indexer owns the in-memory InvertedIndex and DocStore. It is written
// exclusively by Run/Ingest and read (under RLock) by Search — the
// reader/writer-lock discipline spec.md §9 recommends for a shared index
// that must never expose a half-updated posting map.
type Indexer struct {
	mu       sync.RWMutex
	index    InvertedIndex
	docStore DocStore

	outputDir    string
	hashAlgo     hashutil.HashAlgo
	metadataSink metadata.MetadataSink
}

// NewIndexer builds an empty Indexer persisting under cfg.OutputDir().
func NewIndexer(cfg config.Config, metadataSink metadata.MetadataSink) *Indexer {
	return &Indexer{
		index:        make(InvertedIndex),
		docStore:     make(DocStore),
		outputDir:    cfg.OutputDir(),
		hashAlgo:     hashutil.HashAlgoBLAKE3,
		metadataSink: metadataSink,
	}
}

// Run consumes PageRecords from pageQueue until crawlDone is set and the
// queue has drained — never on a closed channel, per spec.md §9's warning
// against conflating "closed" with "done". When ctx is cancelled it
// ingests the records already in pageQueue and then returns.
func (idx *Indexer) Run(ctx context.Context, pageQueue <-chan pagemodel.PageRecord, crawlDone crawlDoneFlag) {
	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case record := <-pageQueue:
					idx.Ingest(record)
				default:
					return
				}
			}
		case record := <-pageQueue:
			idx.Ingest(record)
		case <-time.After(pollInterval):
			if crawlDone.Load() && len(pageQueue) == 0 {
				return
			}
		}
	}
}

// crawlDoneFlag is the one-shot "crawl finished" signal shared between the
// crawler and the indexer. Defined here as a narrow interface so indexer
// doesn't need to import pipeline's concrete atomic.Bool wrapper type.
type crawlDoneFlag interface {
	Load() bool
}

// Ingest updates the index and doc store for one PageRecord, appends it to
// the PageModel.jsonl dump, and persists both structures. A malformed
// record (missing doc_id) is logged and skipped, never fatal; a
// persistence failure is logged and surfaced but the in-memory index keeps
// serving queries regardless.
func (idx *Indexer) Ingest(record pagemodel.PageRecord) failure.ClassifiedError {
	if record.DocID == "" {
		err := &IndexError{Message: "page record missing doc_id", Cause: ErrCauseMalformedRecord}
		idx.recordError(err, record.URL)
		return err
	}

	termScores := scoreRecord(record)

	idx.mu.Lock()
	for term, score := range termScores {
		if idx.index[term] == nil {
			idx.index[term] = make(map[string]int64)
		}
		idx.index[term][record.DocID] += score
	}
	idx.docStore[record.DocID] = DocStoreEntry{
		URL:     record.FinalURL,
		Title:   record.Title,
		Content: record.Content,
	}
	indexSnapshot, docStoreSnapshot := idx.copyLocked()
	idx.mu.Unlock()

	if err := appendPageLog(idx.outputDir, record); err != nil {
		idx.recordError(&IndexError{Message: err.Error(), Cause: ErrCausePersistenceFailure}, record.URL)
	}

	if err := idx.persist(indexSnapshot, docStoreSnapshot); err != nil {
		idx.recordError(err, record.URL)
		return err
	}

	idx.metadataSink.RecordIndexed(record.DocID, record.FinalURL, len(termScores))
	return nil
}

// Search runs a read-only query against the current index and doc store
// under a read lock held for the whole (short, synchronous) evaluation —
// resolving spec.md §9's "shared mutable index during query" question in
// favor of discipline (b), reader/writer lock.
func (idx *Indexer) Search(process func(InvertedIndex, DocStore) []SearchResult) []SearchResult {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return process(idx.index, idx.docStore)
}

// SearchResult mirrors query.Result without importing the query package,
// avoiding an indexer<->query import cycle: query imports indexer's typed
// maps, not the other way around.
type SearchResult struct {
	DocID string `json:"doc_id"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

// scoreRecord tokenizes content, headings, and title, applies field
// weights, and sums the three contributions into a single per-term score
// map for one record.
func scoreRecord(record pagemodel.PageRecord) map[string]int64 {
	scores := make(map[string]int64)

	addField := func(text string, weight int64) {
		counts := make(map[string]int64)
		for _, tok := range tokenize.Tokens(text) {
			counts[tok]++
		}
		for tok, freq := range counts {
			scores[tok] += freq * weight
		}
	}

	addField(record.Content, WeightContent)
	addField(joinHeadings(record.Headings), WeightHeading)
	addField(record.Title, WeightTitle)

	return scores
}

func joinHeadings(headings []string) string {
	out := ""
	for i, h := range headings {
		if i > 0 {
			out += " "
		}
		out += h
	}
	return out
}

// copyLocked returns shallow copies of the index and doc store for
// persistence, taken while mu is held. Persisting over a private copy
// means marshal/disk-write never happens under the write lock.
func (idx *Indexer) copyLocked() (InvertedIndex, DocStore) {
	indexCopy := make(InvertedIndex, len(idx.index))
	for term, postings := range idx.index {
		postingsCopy := make(map[string]int64, len(postings))
		for docID, score := range postings {
			postingsCopy[docID] = score
		}
		indexCopy[term] = postingsCopy
	}
	docStoreCopy := make(DocStore, len(idx.docStore))
	for docID, entry := range idx.docStore {
		docStoreCopy[docID] = entry
	}
	return indexCopy, docStoreCopy
}

// persist serializes indexSnapshot and docStoreSnapshot to
// inverted_index.json and doc_store.json as pretty-printed JSON, each via
// write-and-rename so a reader never observes a partially written object.
func (idx *Indexer) persist(index InvertedIndex, docStore DocStore) *IndexError {
	indexPath := filepath.Join(idx.outputDir, "inverted_index.json")
	if err := writeJSONAtomic(indexPath, index); err != nil {
		return &IndexError{Message: err.Error(), Cause: ErrCausePersistenceFailure}
	}
	idx.recordArtifact(metadata.ArtifactIndex, indexPath, index)

	docStorePath := filepath.Join(idx.outputDir, "doc_store.json")
	if err := writeJSONAtomic(docStorePath, docStore); err != nil {
		return &IndexError{Message: err.Error(), Cause: ErrCausePersistenceFailure}
	}
	idx.recordArtifact(metadata.ArtifactDocStore, docStorePath, docStore)

	return nil
}

func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if writeErr := fileutil.WriteFileAtomic(path, data, 0644); writeErr != nil {
		return errors.New(writeErr.Error())
	}
	return nil
}

// recordArtifact logs a blake3 fingerprint of the persisted bytes for
// operator-facing integrity auditing only; doc_id identity stays SHA-256
// and is never influenced by this fingerprint.
func (idx *Indexer) recordArtifact(kind metadata.ArtifactKind, path string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return
	}
	fingerprint, err := hashutil.HashBytes(data, idx.hashAlgo)
	if err != nil {
		return
	}
	idx.metadataSink.RecordArtifact(kind, path, []metadata.Attribute{
		metadata.NewAttr(metadata.AttrWritePath, path),
		metadata.NewAttr(metadata.AttrFingerprint, fingerprint),
	})
}

func (idx *Indexer) recordError(err failure.ClassifiedError, recordURL string) {
	var indexErr *IndexError
	errors.As(err, &indexErr)
	idx.metadataSink.RecordError(
		time.Now(),
		"indexer",
		"Indexer.Ingest",
		mapIndexErrorToMetadataCause(indexErr),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, recordURL),
		},
	)
}

// appendPageLog appends record to <outputDir>/PageModel.jsonl. This is a
// plain append, not write-and-rename: the spec's write-and-rename
// discipline applies to inverted_index.json/doc_store.json (full
// rewrites), not to the append-only crawl dump.
func appendPageLog(outputDir string, record pagemodel.PageRecord) error {
	if err := fileutil.EnsureDir(outputDir); err != nil {
		return errors.New(err.Error())
	}
	path := filepath.Join(outputDir, "PageModel.jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return pagemodel.AppendJSONL(f, record)
}
