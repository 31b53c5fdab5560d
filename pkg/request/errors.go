package request

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError reports a non-2xx response. It carries the status code so
// callers can match on specific statuses instead of scraping message text.
type HTTPError struct {
	StatusCode int
	Status     string
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("request failed: %s (%s)", e.Status, e.URL)
}

// IsRateLimited reports whether err is (or wraps) an HTTP 429 response.
func IsRateLimited(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusTooManyRequests
}
