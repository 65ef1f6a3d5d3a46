package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUpstream marks any failure of the model provider call
	ErrUpstream = errors.New("upstream model error")
	// ErrMalformedResponse marks a completion whose body cannot be used
	ErrMalformedResponse = errors.New("malformed model response")
	// ErrEmptyCompletion is returned when the provider answers without choices
	ErrEmptyCompletion = fmt.Errorf("%w: no choices in response", ErrMalformedResponse)
)

// UpstreamError is a non-success response (or transport failure) from the
// model provider. StatusCode is 0 when no HTTP response was received.
type UpstreamError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("upstream request failed: %v", e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

// Is makes errors.Is(err, ErrUpstream) hold for every UpstreamError
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// errorCode reads the provider's error code ("insufficient_quota",
// "rate_limit_exceeded") out of the raw body when it is JSON.
func (e *UpstreamError) errorCode() string {
	if e.Body == "" {
		return ""
	}
	var wrapped struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
		Code string `json:"code"`
	}
	if json.Unmarshal([]byte(e.Body), &wrapped) != nil {
		return ""
	}
	if wrapped.Error.Code != "" {
		return wrapped.Error.Code
	}
	return wrapped.Code
}

// IsRateLimitError reports a transient 429 from the provider
func IsRateLimitError(err error) bool {
	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		return false
	}
	return upErr.StatusCode == http.StatusTooManyRequests && upErr.errorCode() != "insufficient_quota"
}

// IsQuotaError reports exhausted billing quota, which does not clear on its own
func IsQuotaError(err error) bool {
	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		return false
	}
	return upErr.errorCode() == "insufficient_quota"
}

// StatusClass buckets an upstream failure for metrics labels
func StatusClass(err error) string {
	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		return "none"
	}
	switch {
	case IsQuotaError(err):
		return "quota"
	case IsRateLimitError(err):
		return "rate_limited"
	case upErr.StatusCode == 0:
		return "transport"
	case upErr.StatusCode >= 500:
		return "server_error"
	default:
		return "client_error"
	}
}
