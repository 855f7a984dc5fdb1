// file: internal/models/errors.go
// version: 1.1.0
// guid: 7c1d2e3f-4a5b-6c7d-8e9f-0a1b2c3d4e5f

package models

import "errors"

// Sentinel errors shared across the pipeline, orchestrator and server.
var (
	// ErrProviderUnavailable signals a network or service failure; the
	// caller moves on to the next provider or fallback stage.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrRateLimited means the provider asked us to back off. Retryable,
	// never treated as a permanent failure.
	ErrRateLimited = errors.New("rate limited")

	// ErrNoMatch is a valid empty result, not a failure.
	ErrNoMatch = errors.New("no match")

	// ErrUnreadableFile means the container could not be parsed.
	ErrUnreadableFile = errors.New("unreadable file")

	// ErrWriteError means tag write-back failed for one file.
	ErrWriteError = errors.New("write error")

	// ErrAmbiguousCandidate means the best candidate scored below the
	// acceptance threshold. The pipeline handles it like ErrNoMatch.
	ErrAmbiguousCandidate = errors.New("ambiguous candidate")
)

// IsRetryable reports whether err should be retried against another
// provider or after a backoff interval.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrProviderUnavailable) || errors.Is(err, ErrRateLimited)
}

// IsNoResult reports whether err represents an empty-but-valid outcome.
// Ambiguous (below-threshold) candidates count as no result.
func IsNoResult(err error) bool {
	return errors.Is(err, ErrNoMatch) || errors.Is(err, ErrAmbiguousCandidate)
}

// ErrorClass buckets err for metrics labels and batch summaries.
func ErrorClass(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrProviderUnavailable):
		return "provider_unavailable"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrNoMatch):
		return "no_match"
	case errors.Is(err, ErrAmbiguousCandidate):
		return "ambiguous_candidate"
	case errors.Is(err, ErrUnreadableFile):
		return "unreadable_file"
	case errors.Is(err, ErrWriteError):
		return "write_error"
	default:
		return "other"
	}
}
