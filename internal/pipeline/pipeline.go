// Package pipeline owns the one piece of shared state between the crawler
// and the indexer: the bounded PageQueue and the CrawlDone flag. It builds
// both collaborators, runs them as goroutines, and coordinates shutdown —
// mirroring the teacher's InitializeCrawling/scheduler.Run split, but as a
// two-goroutine pipeline instead of a single serial loop.
package pipeline

import (
	"context"
	"sync/atomic"

	"github.com/rohmanhakim/searchcrawl/internal/config"
	"github.com/rohmanhakim/searchcrawl/internal/crawler"
	"github.com/rohmanhakim/searchcrawl/internal/indexer"
	"github.com/rohmanhakim/searchcrawl/internal/metadata"
	"github.com/rohmanhakim/searchcrawl/internal/pagemodel"
)

// pageQueueCapacity bounds how far the indexer can fall behind the crawler
// before a send on PageQueue blocks, applying backpressure to the crawl
// loop per spec.md §5.
const pageQueueCapacity = 256

// Pipeline wires a Crawler and an Indexer together over a shared PageQueue
// and CrawlDone flag, and runs them concurrently for the duration of one
// crawl+index run.
type Pipeline struct {
	crawler *crawler.Crawler
	indexer *indexer.Indexer
}

// New builds a Pipeline with production collaborators wired from cfg.
func New(cfg config.Config, metadataSink metadata.MetadataSink) *Pipeline {
	return &Pipeline{
		crawler: crawler.NewCrawler(cfg, metadataSink),
		indexer: indexer.NewIndexer(cfg, metadataSink),
	}
}

// Indexer exposes the pipeline's Indexer so a caller (internal/server) can
// run queries against its index and doc store after — or while — the
// crawl is in progress.
func (p *Pipeline) Indexer() *indexer.Indexer {
	return p.indexer
}

// Run starts the crawler and indexer concurrently and blocks until both
// have exited. The crawler stops when the frontier empties, reaches
// MaxLimit, or ctx is cancelled; the indexer keeps draining PageQueue
// until the crawler signals CrawlDone and the queue is empty. On ctx
// cancellation the indexer ingests the records already in PageQueue
// before it returns.
func (p *Pipeline) Run(ctx context.Context) {
	pageQueue := make(chan pagemodel.PageRecord, pageQueueCapacity)
	var crawlDone atomic.Bool

	done := make(chan struct{})
	go func() {
		p.indexer.Run(ctx, pageQueue, &crawlDone)
		close(done)
	}()

	p.crawler.Run(ctx, pageQueue, &crawlDone)
	<-done
}
