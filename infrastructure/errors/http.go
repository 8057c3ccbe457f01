// Package errors holds error types shared by the HTTP-facing parts of IntelSleuth.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
)

// maxErrorBody bounds how much of an error response body is kept.
const maxErrorBody = 4 << 10

// HTTPError is a non-2xx/3xx response from an upstream service.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("http %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Temporary reports 5xx and 429 responses, which are worth retrying.
func (e *HTTPError) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// ParseHTTPError returns nil for status codes below 400, otherwise an
// *HTTPError built from the response. It consumes resp.Body.
func ParseHTTPError(resp *http.Response) error {
	if resp.StatusCode < http.StatusBadRequest {
		return nil
	}

	httpErr := &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		httpErr.Message = fmt.Sprintf("read error body: %v", err)
		return httpErr
	}
	httpErr.Body = string(body)

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil {
		httpErr.Message = payload.Error
		if httpErr.Message == "" {
			httpErr.Message = payload.Message
		}
	}
	return httpErr
}

// StatusCode extracts the status of a wrapped *HTTPError.
func StatusCode(err error) (int, bool) {
	var httpErr *HTTPError
	if stderrors.As(err, &httpErr) {
		return httpErr.StatusCode, true
	}
	return 0, false
}

// IsClientError reports whether err wraps a 4xx *HTTPError.
func IsClientError(err error) bool {
	code, ok := StatusCode(err)
	return ok && code >= http.StatusBadRequest && code < http.StatusInternalServerError
}

// IsServerError reports whether err wraps a 5xx *HTTPError.
func IsServerError(err error) bool {
	code, ok := StatusCode(err)
	return ok && code >= http.StatusInternalServerError
}
