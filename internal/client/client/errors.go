package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found on server")
	ErrRejected     = errors.New("rejected by server")
)

// StatusError is a non-2xx response with no dedicated sentinel.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
}

func statusError(code int, msg string) error {
	wrap := func(sentinel error) error {
		if msg == "" {
			return sentinel
		}
		return fmt.Errorf("%w: %s", sentinel, msg)
	}

	switch code {
	case http.StatusBadRequest:
		return wrap(ErrRejected)
	case http.StatusUnauthorized, http.StatusForbidden:
		return wrap(ErrUnauthorized)
	case http.StatusNotFound:
		return wrap(ErrNotFound)
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return wrap(ErrUnavailable)
	default:
		return &StatusError{Code: code, Message: msg}
	}
}
