package request

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestHTTPError(t *testing.T) {
	err := &HTTPError{
		StatusCode: http.StatusTooManyRequests,
		Status:     "429 Too Many Requests",
		URL:        "https://query.wikidata.org/sparql",
	}

	msg := err.Error()
	if !strings.Contains(msg, "429 Too Many Requests") {
		t.Errorf("Error() = %q, missing reason phrase", msg)
	}
	if !strings.Contains(msg, "query.wikidata.org") {
		t.Errorf("Error() = %q, missing URL", msg)
	}
}

func TestIsRateLimited(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"Nil", nil, false},
		{"Plain429", &HTTPError{StatusCode: 429, Status: "429 Too Many Requests"}, true},
		{"Wrapped429", fmt.Errorf("query: %w", &HTTPError{StatusCode: 429}), true},
		{"ServerError", &HTTPError{StatusCode: 500, Status: "500 Internal Server Error"}, false},
		{"NotHTTP", errors.New("connection refused"), false},
		// Status text mentioning 429 must not match; only the code counts.
		{"MessageMentions429", errors.New("got 429 somewhere"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRateLimited(tt.err); got != tt.want {
				t.Errorf("IsRateLimited(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
