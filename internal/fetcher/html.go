package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rohmanhakim/searchcrawl/internal/metadata"
	"github.com/rohmanhakim/searchcrawl/pkg/failure"
)

/*
Responsibilities

- Perform HTTP requests
- Apply headers and timeouts
- Follow redirects, recording the final URL actually served
- Classify responses

Fetch Semantics

- Only successful HTML or XML responses are processed
- Other content types are discarded
- Redirect chains are bounded by the http.Client's default policy
- All responses are logged via metadata, success or failure

The fetcher never parses content; it only returns bytes and metadata.
*/

type HtmlFetcher struct {
	metadataSink metadata.MetadataSink
	httpClient   *http.Client
}

func NewHtmlFetcher(metadataSink metadata.MetadataSink) HtmlFetcher {
	return HtmlFetcher{
		metadataSink: metadataSink,
		httpClient:   &http.Client{},
	}
}

func (h *HtmlFetcher) Init(httpClient *http.Client) {
	h.httpClient = httpClient
}

func (h *HtmlFetcher) Fetch(ctx context.Context, fetchParam FetchParam) (FetchResult, failure.ClassifiedError) {
	callerMethod := "HtmlFetcher.Fetch"
	startTime := time.Now()

	result, err := h.performFetch(ctx, fetchParam.fetchUrl, fetchParam.userAgent)

	duration := time.Since(startTime)

	var statusCode int
	var contentType string
	if err == nil {
		statusCode = result.Code()
		contentType = result.ContentType()
	}
	h.metadataSink.RecordFetch(fetchParam.fetchUrl.String(), statusCode, duration, contentType)

	if err != nil {
		var fetchErr *FetchError
		if errors.As(err, &fetchErr) {
			h.metadataSink.RecordError(
				time.Now(),
				"fetcher",
				callerMethod,
				mapFetchErrorToMetadataCause(fetchErr),
				err.Error(),
				[]metadata.Attribute{
					metadata.NewAttr(metadata.AttrURL, fetchParam.fetchUrl.String()),
				},
			)
		}
		return FetchResult{}, err
	}

	return result, nil
}

func (h *HtmlFetcher) performFetch(ctx context.Context, fetchUrl url.URL, userAgent string) (FetchResult, failure.ClassifiedError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchUrl.String(), nil)
	if err != nil {
		return FetchResult{}, &FetchError{
			Message: fmt.Sprintf("failed to create request: %v", err),
			Cause:   ErrCauseNetworkFailure,
		}
	}

	for key, value := range requestHeaders(userAgent) {
		req.Header.Set(key, value)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return FetchResult{}, &FetchError{
			Message: fmt.Sprintf("request failed: %v", err),
			Cause:   ErrCauseNetworkFailure,
		}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return FetchResult{}, &FetchError{
			Message: fmt.Sprintf("server error: %d", resp.StatusCode),
			Cause:   ErrCauseRequest5xx,
		}
	case resp.StatusCode == 429:
		return FetchResult{}, &FetchError{
			Message: "rate limited (429)",
			Cause:   ErrCauseRequestTooMany,
		}
	case resp.StatusCode == 403:
		return FetchResult{}, &FetchError{
			Message: "access forbidden (403)",
			Cause:   ErrCauseRequestPageForbidden,
		}
	case resp.StatusCode >= 400:
		return FetchResult{}, &FetchError{
			Message: fmt.Sprintf("client error: %d", resp.StatusCode),
			Cause:   ErrCauseRequestPageForbidden,
		}
	}

	contentType := resp.Header.Get("Content-Type")
	if !isAcceptableContent(contentType) {
		return FetchResult{}, &FetchError{
			Message: fmt.Sprintf("unsupported content type: %s", contentType),
			Cause:   ErrCauseContentTypeInvalid,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return FetchResult{}, &FetchError{
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Cause:   ErrCauseReadResponseBodyError,
		}
	}

	responseHeaders := make(map[string]string, len(resp.Header))
	for key, values := range resp.Header {
		if len(values) > 0 {
			responseHeaders[key] = values[0]
		}
	}

	finalURL := fetchUrl
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = *resp.Request.URL
	}

	return FetchResult{
		url:       fetchUrl,
		finalURL:  finalURL,
		body:      body,
		fetchedAt: time.Now(),
		meta: ResponseMeta{
			statusCode:      resp.StatusCode,
			responseHeaders: responseHeaders,
		},
	}, nil
}

// isAcceptableContent reports whether contentType is something the
// extractor understands: HTML or XML. Anything else (images, PDFs,
// binary downloads) is discarded at the fetch boundary.
func isAcceptableContent(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "text/html") ||
		strings.Contains(ct, "application/xhtml") ||
		strings.Contains(ct, "xml")
}

func requestHeaders(userAgent string) map[string]string {
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.5",
		"Accept-Encoding": "gzip, deflate, br",
		"DNT":             "1",
		"Connection":      "keep-alive",
	}
}
