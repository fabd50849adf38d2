package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrTokenExpired matches 401 responses. The client has already
	// invalidated the credential when it returns this.
	ErrTokenExpired = errors.New("access token expired")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrBadRequest   = errors.New("bad request")
)

// HTTPError is returned for every non-2xx response.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Method == "" {
		return fmt.Sprintf("request failed (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s failed (%d): %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// Is maps the status code onto the sentinel errors so callers can use errors.Is.
func (e *HTTPError) Is(target error) bool {
	switch target {
	case ErrTokenExpired:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrConflict:
		return e.StatusCode == http.StatusConflict
	case ErrBadRequest:
		return e.StatusCode == http.StatusBadRequest
	}
	return false
}

func newHTTPError(method, path string, status int, statusText string, body []byte) *HTTPError {
	var apiErr struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Code    string `json:"code"`
	}
	if len(body) > 0 {
		_ = json.Unmarshal(body, &apiErr)
	}
	msg := strings.TrimSpace(apiErr.Message)
	if msg == "" {
		msg = strings.TrimSpace(apiErr.Error)
	}
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	if msg == "" {
		msg = statusText
	}
	if apiErr.Code != "" {
		msg = apiErr.Code + ": " + msg
	}
	return &HTTPError{
		Method:     method,
		Path:       path,
		StatusCode: status,
		Message:    msg,
		Body:       string(body),
	}
}

// StatusCode extracts the HTTP status from err, or 0 when err carries none.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// RetryOnExpiry runs fn and, if it fails with ErrTokenExpired, runs it exactly
// once more. The credential was invalidated by the failing call, so the retry
// picks up a freshly acquired token.
func RetryOnExpiry[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	result, err := fn(ctx)
	if err == nil || !errors.Is(err, ErrTokenExpired) {
		return result, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, err
	}
	return fn(ctx)
}
