package fetcher

import (
	"context"
	"net/url"
	"sync"

	"github.com/rohmanhakim/searchcrawl/pkg/failure"
)

/*
Batch fetch

The crawler drains the frontier in fixed-size batches and fetches every
member of a batch concurrently. Ordering is preserved so the caller can
still line results up against the URLs it submitted, but one URL's
failure never aborts the others: each slot carries its own error.
*/

// BatchOptions configures a concurrent batch fetch.
type BatchOptions struct {
	// Concurrency caps the number of workers. If <= 0, defaults to 4.
	Concurrency int
	// UserAgent is applied to every fetch in the batch.
	UserAgent string
}

// BatchItemResult is the outcome of fetching a single URL within a batch.
type BatchItemResult struct {
	URL    url.URL
	Result FetchResult
	Err    failure.ClassifiedError
}

// Batch fetches every URL in urls concurrently, preserving input order in
// the returned slice. A per-item fetch failure is captured in that item's
// Err field; it never fails the batch as a whole.
func Batch(ctx context.Context, f Fetcher, urls []url.URL, opts BatchOptions) []BatchItemResult {
	n := len(urls)
	if n == 0 {
		return nil
	}

	workers := opts.Concurrency
	if workers <= 0 {
		workers = 4
	}
	if workers > n {
		workers = n
	}

	results := make([]BatchItemResult, n)

	type job struct {
		idx int
		u   url.URL
	}

	jobs := make(chan job)
	var wg sync.WaitGroup
	wg.Add(workers)

	worker := func() {
		defer wg.Done()
		for j := range jobs {
			select {
			case <-ctx.Done():
				results[j.idx] = BatchItemResult{
					URL: j.u,
					Err: &FetchError{Message: ctx.Err().Error(), Cause: ErrCauseTimeout},
				}
				continue
			default:
			}

			res, err := f.Fetch(ctx, NewFetchParam(j.u, opts.UserAgent))
			results[j.idx] = BatchItemResult{URL: j.u, Result: res, Err: err}
		}
	}

	for w := 0; w < workers; w++ {
		go worker()
	}

	go func() {
		defer close(jobs)
		for i, u := range urls {
			select {
			case <-ctx.Done():
				return
			case jobs <- job{idx: i, u: u}:
			}
		}
	}()

	wg.Wait()

	return results
}
