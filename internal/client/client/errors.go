package client

import (
	"errors"
	"fmt"
)

var ErrUnavailable = errors.New("server unavailable")

// ServerError is a non-2xx answer from a reachable server.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server returned HTTP %d", e.StatusCode)
}
