package fetcher

import (
	"context"
	"net/http"

	"github.com/rohmanhakim/searchcrawl/pkg/failure"
)

// Fetcher performs a single bounded HTTP GET and classifies the response.
// It never retries: a transient failure is surfaced to the caller as a
// ClassifiedError and the crawler moves on to the next URL.
type Fetcher interface {
	Init(httpClient *http.Client)
	Fetch(ctx context.Context, fetchParam FetchParam) (FetchResult, failure.ClassifiedError)
}
