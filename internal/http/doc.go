// Package http provides the outbound HTTP client used to reach the year
// oracle.
//
// The Client in this package handles:
//   - User-Agent headers
//   - JSON request and response bodies
//   - Timeout handling
//   - Non-2xx responses as *StatusError, including any Retry-After delay
//
// # Basic Usage
//
//	client := http.NewClient(http.WithTimeout(30 * time.Second))
//
//	var out completionResponse
//	err := client.PostJSON(ctx, endpoint, headers, request, &out)
//
//	var statusErr *http.StatusError
//	if errors.As(err, &statusErr) && statusErr.Retryable() {
//	    time.Sleep(statusErr.RetryAfter)
//	}
package http
