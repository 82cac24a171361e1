// Package crawler drives the frontier batch loop: drain, fetch
// concurrently, extract, hand off to the indexer's PageQueue, and feed
// discovered links back into the frontier. It owns the crawl's Frontier
// and HTTP client exclusively, per spec.md §5's shared-resource table.
package crawler

import (
	"context"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/rohmanhakim/searchcrawl/internal/build"
	"github.com/rohmanhakim/searchcrawl/internal/config"
	"github.com/rohmanhakim/searchcrawl/internal/extractor"
	"github.com/rohmanhakim/searchcrawl/internal/fetcher"
	"github.com/rohmanhakim/searchcrawl/internal/frontier"
	"github.com/rohmanhakim/searchcrawl/internal/mdconvert"
	"github.com/rohmanhakim/searchcrawl/internal/metadata"
	"github.com/rohmanhakim/searchcrawl/internal/normalize"
	"github.com/rohmanhakim/searchcrawl/internal/pagemodel"
	"github.com/rohmanhakim/searchcrawl/internal/storage"
	"github.com/rohmanhakim/searchcrawl/pkg/hashutil"
	"golang.org/x/net/html"
)

// Extractor is the narrow surface Crawler needs from internal/extractor,
// mirroring fetcher.Fetcher's interface-over-one-concrete-type pattern so
// tests can inject a stub.
type Extractor interface {
	Extract(sourceUrl url.URL, contentType string, raw []byte) (extractor.ExtractionResult, error)
}

// Crawler owns one crawl run's Frontier and HTTP client. It is not
// reused across runs.
type Crawler struct {
	cfg          config.Config
	metadataSink metadata.MetadataSink
	frontier     *frontier.Frontier
	fetcher      fetcher.Fetcher
	extractor    Extractor
	httpClient   *http.Client

	convertRule  mdconvert.ConvertRule
	normalizer   normalize.Normalizer
	snapshotSink storage.Sink
	hashAlgo     hashutil.HashAlgo
	appVersion   string
}

// NewCrawler builds a Crawler wired to real fetch/extract/snapshot
// collaborators, per cfg.
func NewCrawler(cfg config.Config, metadataSink metadata.MetadataSink) *Crawler {
	htmlFetcher := fetcher.NewHtmlFetcher(metadataSink)
	httpClient := &http.Client{Timeout: cfg.Timeout()}
	htmlFetcher.Init(httpClient)

	domExtractor := extractor.NewDomExtractor(metadataSink)
	normalizer := normalize.NewMarkdownNormalizer(metadataSink)
	snapshotSink := storage.NewLocalSink(metadataSink)

	return &Crawler{
		cfg:          cfg,
		metadataSink: metadataSink,
		frontier:     frontier.NewFrontier(cfg),
		fetcher:      &htmlFetcher,
		extractor:    &extractorAdapter{&domExtractor},
		httpClient:   httpClient,
		convertRule:  mdconvert.NewRule(metadataSink),
		normalizer:   &normalizer,
		snapshotSink: &snapshotSink,
		hashAlgo:     hashutil.HashAlgoSHA256,
		appVersion:   build.FullVersion(),
	}
}

// NewCrawlerWithDeps builds a Crawler with injected collaborators, for
// tests that need a stub fetcher/extractor or an in-memory frontier.
func NewCrawlerWithDeps(
	cfg config.Config,
	metadataSink metadata.MetadataSink,
	f *frontier.Frontier,
	htmlFetcher fetcher.Fetcher,
	domExtractor Extractor,
	convertRule mdconvert.ConvertRule,
	normalizer normalize.Normalizer,
	snapshotSink storage.Sink,
) *Crawler {
	return &Crawler{
		cfg:          cfg,
		metadataSink: metadataSink,
		frontier:     f,
		fetcher:      htmlFetcher,
		extractor:    domExtractor,
		httpClient:   &http.Client{Timeout: cfg.Timeout()},
		convertRule:  convertRule,
		normalizer:   normalizer,
		snapshotSink: snapshotSink,
		hashAlgo:     hashutil.HashAlgoSHA256,
		appVersion:   build.FullVersion(),
	}
}

// extractorAdapter narrows *extractor.DomExtractor's
// failure.ClassifiedError return to a plain error so it satisfies
// Extractor without extractor needing to know about this package.
type extractorAdapter struct {
	inner *extractor.DomExtractor
}

func (a *extractorAdapter) Extract(sourceUrl url.URL, contentType string, raw []byte) (extractor.ExtractionResult, error) {
	result, err := a.inner.Extract(sourceUrl, contentType, raw)
	if err != nil {
		return result, err
	}
	return result, nil
}

// Run seeds the frontier and loops batches until the frontier empties or
// the visited set reaches cfg.MaxLimit(), per spec.md §4.1. It sets
// crawlDone before returning under every exit path, including context
// cancellation.
func (c *Crawler) Run(ctx context.Context, pageQueue chan<- pagemodel.PageRecord, crawlDone *atomic.Bool) {
	defer crawlDone.Store(true)

	for _, seed := range c.cfg.SeedURLs() {
		c.frontier.Enqueue(seed)
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if c.frontier.Size() == 0 || c.frontier.AtCapacity() {
			return
		}

		batch := c.frontier.DequeueBatch(c.cfg.BatchSize())
		if len(batch) == 0 {
			return
		}

		results := fetcher.Batch(ctx, c.fetcher, batch, fetcher.BatchOptions{
			Concurrency: c.cfg.BatchSize(),
			UserAgent:   c.cfg.UserAgent(),
		})

		for _, result := range results {
			if !c.processResult(ctx, result, pageQueue) {
				return
			}
		}
	}
}

// processResult extracts one fetched page and emits a PageRecord. It
// returns false if the caller should stop the crawl (context
// cancellation while blocked on PageQueue).
func (c *Crawler) processResult(ctx context.Context, result fetcher.BatchItemResult, pageQueue chan<- pagemodel.PageRecord) bool {
	if result.Err != nil {
		// Absorbed per spec.md §4.1: a single URL's fetch failure never
		// halts the crawl. Already logged by the fetcher.
		return true
	}
	if result.Result.Code() != http.StatusOK {
		return true
	}

	extraction, err := c.extractor.Extract(result.URL, result.Result.ContentType(), result.Result.Body())
	if err != nil {
		return true
	}

	docID, hashErr := hashutil.HashBytes([]byte(extraction.Content), c.hashAlgo)
	if hashErr != nil {
		return true
	}

	filtered := extractor.FilterLinks(result.URL, extraction.Links, c.cfg.AcceptedDomains(), c.cfg.SkipExtensions())
	linkStrs := make([]string, len(filtered))
	for i, u := range filtered {
		linkStrs[i] = u.String()
	}

	record := pagemodel.PageRecord{
		DocID:      docID,
		URL:        result.URL.String(),
		FinalURL:   result.Result.FinalURL().String(),
		HTTPStatus: result.Result.Code(),
		Title:      extraction.Title,
		Headings:   extraction.Headings,
		Content:    extraction.Content,
		Links:      linkStrs,
	}

	if extraction.ContentNode != nil {
		c.snapshot(&record, extraction.ContentNode)
	}

	select {
	case pageQueue <- record:
	case <-ctx.Done():
		return false
	}

	for _, link := range filtered {
		c.frontier.Enqueue(link)
	}
	return true
}

// snapshot converts contentNode to Markdown and writes it under
// <OutputDir>/snapshots/<doc_id>.md, setting record.MarkdownPath on
// success. Every step is best-effort: a failure is already logged by the
// failing component's own metadata wiring and never propagates here —
// matching spec.md §3's "never read by the indexer or query processor"
// invariant for MarkdownPath.
func (c *Crawler) snapshot(record *pagemodel.PageRecord, contentNode *html.Node) {
	conversionResult, err := c.convertRule.Convert(contentNode)
	if err != nil {
		return
	}

	input := normalize.SnapshotInput{
		DocID:     record.DocID,
		SourceURL: record.FinalURL,
		Title:     record.Title,
		Markdown:  conversionResult.GetMarkdownContent(),
	}
	param := normalize.NewNormalizeParam(c.appVersion, time.Now(), c.hashAlgo)

	normalized, err := c.normalizer.Normalize(input, param)
	if err != nil {
		return
	}

	writeResult, err := c.snapshotSink.Write(c.cfg.OutputDir(), record.DocID, normalized)
	if err != nil {
		return
	}
	record.MarkdownPath = writeResult.Path()
}
