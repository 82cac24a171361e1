package fetcher

import (
	"fmt"

	"github.com/rohmanhakim/searchcrawl/internal/metadata"
	"github.com/rohmanhakim/searchcrawl/pkg/failure"
)

type FetchErrorCause string

const (
	ErrCauseTimeout               FetchErrorCause = "timeout"
	ErrCauseNetworkFailure        FetchErrorCause = "network issues"
	ErrCauseReadResponseBodyError FetchErrorCause = "failed to read response body"
	ErrCauseContentTypeInvalid    FetchErrorCause = "unsupported content type"
	ErrCauseRedirectLimitExceeded FetchErrorCause = "reached redirect limit"
	ErrCauseRequestPageForbidden  FetchErrorCause = "forbidden"
	ErrCauseRequestTooMany        FetchErrorCause = "too many requests"
	ErrCauseRequest5xx            FetchErrorCause = "5xx"
)

// FetchError is a single-shot (non-retryable by construction) HTTP fetch
// failure. The crawler logs it via metadata and moves on to the next URL.
type FetchError struct {
	Message string
	Cause   FetchErrorCause
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetcher error: %s: %s", e.Cause, e.Message)
}

func (e *FetchError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

// mapFetchErrorToMetadataCause maps fetcher-local error semantics to the
// canonical metadata.ErrorCause table. Observational only, must never
// drive control flow.
func mapFetchErrorToMetadataCause(err *FetchError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseTimeout, ErrCauseNetworkFailure, ErrCauseReadResponseBodyError:
		return metadata.CauseNetworkFailure
	case ErrCauseContentTypeInvalid:
		return metadata.CauseUnsupportedContentType
	case ErrCauseRequest5xx, ErrCauseRequestTooMany, ErrCauseRequestPageForbidden, ErrCauseRedirectLimitExceeded:
		return metadata.CauseBadStatus
	default:
		return metadata.CauseUnknown
	}
}
