package errx

import (
	"fmt"
	"net/http"
)

// MaxBodyExcerpt bounds how much of a failed response body is kept for diagnostics.
const MaxBodyExcerpt = 500

// StatusError describes a non-2xx response from an upstream provider.
type StatusError struct {
	Provider   string
	StatusCode int
	Status     string
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d %s for %s - %s", e.StatusCode, e.Status, e.URL, e.Body)
}

// Is lets errors.Is(err, ErrUpstreamStatus) match any StatusError.
func (e *StatusError) Is(target error) bool {
	return target == ErrUpstreamStatus
}

// UpstreamStatus wraps a non-2xx response. The body is cut to MaxBodyExcerpt runes.
func UpstreamStatus(provider string, statusCode int, statusText, url, body string) *AppError {
	return New(&StatusError{
		Provider:   provider,
		StatusCode: statusCode,
		Status:     statusText,
		URL:        url,
		Body:       Truncate(body, MaxBodyExcerpt),
	}, http.StatusBadGateway, fmt.Sprintf("%s error", provider))
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
