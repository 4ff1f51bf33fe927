package scraper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// FetchKind names why a catalog page yielded no usable body. The values
// double as metric and summary labels.
type FetchKind string

const (
	KindTimeout     FetchKind = "timeout"
	KindConnection  FetchKind = "connection"
	KindForbidden   FetchKind = "forbidden"
	KindNotFound    FetchKind = "not_found"
	KindRateLimited FetchKind = "rate_limited"
	KindHTTPStatus  FetchKind = "http_status"
	KindDecode      FetchKind = "decode"
	KindOther       FetchKind = "other"
)

// FetchError is a recoverable page failure. The page counts as empty.
type FetchError struct {
	Kind   FetchKind
	Status int // HTTP status, 0 when no response arrived
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d): %v", e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a FetchError of the same kind.
func (e *FetchError) Is(target error) bool {
	t, ok := target.(*FetchError)
	return ok && t.Kind == e.Kind
}

var errNotJSON = errors.New("response body is not JSON")

func decodeError(err error) error {
	return &FetchError{Kind: KindDecode, Err: err}
}

func errorTypeLabel(err error) string {
	if err == nil {
		return "unknown"
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return string(fe.Kind)
	}
	return string(KindOther)
}

// classifyError maps a colly request error and the response status, if any,
// onto a FetchError. Errors it cannot place are returned unchanged.
func classifyError(err error, statusCode int) error {
	if err == nil && statusCode == 0 {
		return nil
	}

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return &FetchError{Kind: KindTimeout, Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &FetchError{Kind: KindConnection, Err: err}
	}

	if statusCode != 0 {
		cause := err
		if cause == nil {
			cause = errors.New(http.StatusText(statusCode))
		}
		switch {
		case statusCode == http.StatusForbidden:
			return &FetchError{Kind: KindForbidden, Status: statusCode, Err: cause}
		case statusCode == http.StatusNotFound:
			return &FetchError{Kind: KindNotFound, Status: statusCode, Err: cause}
		case statusCode == http.StatusTooManyRequests:
			return &FetchError{Kind: KindRateLimited, Status: statusCode, Err: cause}
		case statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices:
			return &FetchError{Kind: KindHTTPStatus, Status: statusCode, Err: cause}
		}
	}
	return err
}
