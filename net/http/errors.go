package http

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"

	"github.com/pkg/errors"
)

// Error is an error with an HTTP status code.
// Errors with a 4xx code are exposed to the client, whereas any other code
// is treated as a server-side error.
type Error struct {
	Code    int
	Message string
}

// NewError returns an error with the given status code and message.
// When msg is empty, the standard status text is used.
func NewError(code int, msg string) *Error {
	if msg == "" {
		msg = http.StatusText(code)
	}
	return &Error{Code: code, Message: msg}
}

func (e *Error) Error() string {
	return e.Message
}

// StatusCode returns the HTTP status code
func (e *Error) StatusCode() int {
	return e.Code
}

// statusCoder is implemented by errors carrying an HTTP status code,
// such as *Error and *param.Error
type statusCoder interface {
	StatusCode() int
}

// clientError extracts a 4xx error from err
func clientError(err error) (code int, msg string, ok bool) {
	var sc statusCoder
	if !errors.As(err, &sc) {
		return 0, "", false
	}
	code = sc.StatusCode()
	if code < 400 || code >= 500 {
		return 0, "", false
	}
	if e, ok := sc.(error); ok {
		msg = e.Error()
	}
	return code, fmt.Sprintf("%d %s", code, msg), true
}

// isConnError returns whether err has been caused by the client going away
func isConnError(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, io.ErrClosedPipe)
}
