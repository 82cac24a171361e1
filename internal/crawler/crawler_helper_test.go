package crawler_test

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rohmanhakim/searchcrawl/internal/extractor"
	"github.com/rohmanhakim/searchcrawl/internal/fetcher"
	"github.com/rohmanhakim/searchcrawl/internal/mdconvert"
	"github.com/rohmanhakim/searchcrawl/internal/normalize"
	"github.com/rohmanhakim/searchcrawl/internal/storage"
	"github.com/rohmanhakim/searchcrawl/pkg/failure"
	"golang.org/x/net/html"
)

// stubClassifiedError is a minimal failure.ClassifiedError for stubs that
// need to signal an error without pulling in a concrete package's error type.
type stubClassifiedError struct{ msg string }

func (e *stubClassifiedError) Error() string             { return e.msg }
func (e *stubClassifiedError) Severity() failure.Severity { return failure.SeverityRecoverable }

// fetchOutcome is one scripted Fetch call result.
type fetchOutcome struct {
	result fetcher.FetchResult
	err    failure.ClassifiedError
}

// stubFetcher replays a fixed, ordered queue of outcomes. Tests pin
// config.BatchSize() to 1 so every Crawler.Run loop iteration issues
// exactly one Fetch call, in frontier (FIFO) order — avoiding any need to
// branch on the unexported FetchParam URL.
type stubFetcher struct {
	mu    sync.Mutex
	queue []fetchOutcome
}

func (s *stubFetcher) Init(httpClient *http.Client) {}

func (s *stubFetcher) Fetch(ctx context.Context, param fetcher.FetchParam) (fetcher.FetchResult, failure.ClassifiedError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return fetcher.FetchResult{}, &stubClassifiedError{msg: "no scripted outcome left"}
	}
	out := s.queue[0]
	s.queue = s.queue[1:]
	return out.result, out.err
}

// stubExtractor returns a scripted ExtractionResult keyed by the source
// URL's string form.
type stubExtractor struct {
	results map[string]extractor.ExtractionResult
	err     error
}

func (s *stubExtractor) Extract(sourceUrl url.URL, contentType string, raw []byte) (extractor.ExtractionResult, error) {
	if s.err != nil {
		return extractor.ExtractionResult{}, s.err
	}
	return s.results[sourceUrl.String()], nil
}

// stubConvertRule always succeeds with fixed markdown unless fail is set,
// to exercise the best-effort snapshot path's failure tolerance.
type stubConvertRule struct {
	fail bool
}

func (s *stubConvertRule) Convert(contentNode *html.Node) (mdconvert.ConversionResult, failure.ClassifiedError) {
	if s.fail {
		return mdconvert.ConversionResult{}, &stubClassifiedError{msg: "conversion failed"}
	}
	return mdconvert.NewConversionResult([]byte("# stub\n"), nil), nil
}

type stubNormalizer struct {
	fail bool
}

func (s *stubNormalizer) Normalize(input normalize.SnapshotInput, param normalize.NormalizeParam) (normalize.NormalizedMarkdownDoc, failure.ClassifiedError) {
	if s.fail {
		return normalize.NormalizedMarkdownDoc{}, &stubClassifiedError{msg: "normalize failed"}
	}
	fm := normalize.NewFrontmatter(input.Title, input.SourceURL, input.DocID, "hash", time.Time{}, "test-version")
	return normalize.NewNormalizedMarkdownDoc(fm, []byte("# stub\n")), nil
}

type stubSink struct {
	mu     sync.Mutex
	fail   bool
	writes []string
}

func (s *stubSink) Write(outputDir, docID string, doc normalize.NormalizedMarkdownDoc) (storage.WriteResult, failure.ClassifiedError) {
	if s.fail {
		return storage.WriteResult{}, &stubClassifiedError{msg: "write failed"}
	}
	s.mu.Lock()
	s.writes = append(s.writes, docID)
	s.mu.Unlock()
	return storage.NewWriteResult(docID, outputDir+"/snapshots/"+docID+".md", "hash"), nil
}
