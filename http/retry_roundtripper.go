package http

import (
	"bytes"
	"io"
	"math"
	"net/http"
	"strings"
	"time"
)

// RetryRoundTripper re-sends a request while shouldRetry holds, up to
// retryMax extra attempts, sleeping an exponential backoff between them.
type RetryRoundTripper struct {
	origin      http.RoundTripper
	shouldRetry IsRetryableResponse

	retryMax int
	backoff  BackoffFunc
	sleep    func(t time.Duration)
}

type IsRetryableResponse func(req *http.Request, statusCode int, err error) bool
type BackoffFunc func(retryCount int) time.Duration

var DefaultRetryStatusCodes = []int{
	http.StatusTooManyRequests,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

// RetryStatusCodes retries listed status codes and transport failures of
// idempotent requests. Requests whose context is done are never retried.
func RetryStatusCodes(retryStatus ...int) IsRetryableResponse {
	return retryStatusCodes(isIdempotent, retryStatus)
}

// RetryReadOnlyPosts behaves like RetryStatusCodes and also retries transport
// failures of POST requests to paths ending with one of readOnlyPaths.
func RetryReadOnlyPosts(readOnlyPaths []string, retryStatus ...int) IsRetryableResponse {
	return retryStatusCodes(func(req *http.Request) bool {
		if isIdempotent(req) {
			return true
		}
		if req.Method != http.MethodPost || req.URL == nil {
			return false
		}
		for _, path := range readOnlyPaths {
			if strings.HasSuffix(req.URL.Path, path) {
				return true
			}
		}
		return false
	}, retryStatus)
}

func retryStatusCodes(safeToResend func(req *http.Request) bool, retryStatus []int) IsRetryableResponse {
	retryCodes := make(map[int]struct{}, len(retryStatus))
	for _, status := range retryStatus {
		retryCodes[status] = struct{}{}
	}

	return func(req *http.Request, statusCode int, err error) bool {
		if req.Context().Err() != nil {
			return false
		}
		if err != nil {
			return safeToResend(req)
		}
		_, found := retryCodes[statusCode]
		return found
	}
}

func isIdempotent(req *http.Request) bool {
	switch req.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func WrapWithRetries(origin http.RoundTripper, shouldRetry IsRetryableResponse, retryMax int, inSeconds float64, sleep func(t time.Duration)) *RetryRoundTripper {
	if origin == nil {
		origin = http.DefaultTransport
	}
	backoff := ExponentialBackoff{
		Exponent: inSeconds,
	}

	return &RetryRoundTripper{
		origin:      origin,
		shouldRetry: shouldRetry,
		retryMax:    retryMax,
		backoff:     backoff.Delay,
		sleep:       sleep,
	}
}

type ExponentialBackoff struct {
	Exponent float64
}

func (e *ExponentialBackoff) Delay(retryCount int) time.Duration {
	millis := int64(math.Pow(e.Exponent, float64(retryCount)) * 1000)
	return time.Duration(millis) * time.Millisecond
}

func (t *RetryRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	var bodyBytes []byte
	if req.Body != nil {
		var readErr error
		bodyBytes, readErr = io.ReadAll(req.Body)
		_ = req.Body.Close()
		if readErr != nil {
			return nil, readErr
		}
		req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	}

	response, responseErr := t.origin.RoundTrip(req)
	for retries := 0; retries < t.retryMax && t.shouldRetry(req, statusOf(response), responseErr); retries++ {
		if response != nil && response.Body != nil {
			_, _ = io.Copy(io.Discard, response.Body)
			_ = response.Body.Close()
		}
		t.sleep(t.backoff(retries + 1))

		if req.Body != nil {
			req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
		response, responseErr = t.origin.RoundTrip(req)
	}

	return response, responseErr
}

func statusOf(response *http.Response) int {
	if response == nil {
		return 0
	}
	return response.StatusCode
}
