package crawler

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Error kinds recorded in failure tables.
const (
	KindHTTPStatus = "HTTPStatusError"
	KindTimeout    = "TimeoutError"
	KindFetch      = "FetchError"
	KindParse      = "ParseError"
	KindCanceled   = "ContextCanceled"
	KindOther      = "Error"
)

// StatusError is returned when the origin answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP Error: %d", e.StatusCode)
}

// FetchError wraps a transport failure for a URL.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the underlying failure was a timeout.
func (e *FetchError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// Kinder is implemented by errors that name their own failure category.
type Kinder interface {
	Kind() string
}

// ErrorKind maps err to the category written into failure tables.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return KindHTTPStatus
	}
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		if errors.Is(fetchErr.Err, context.Canceled) {
			return KindCanceled
		}
		if fetchErr.Timeout() {
			return KindTimeout
		}
		return KindFetch
	}
	var kinder Kinder
	if errors.As(err, &kinder) {
		return kinder.Kind()
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindOther
}
