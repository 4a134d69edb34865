package http

import (
	"net/http"
	"time"

	"github.com/stairlin/rest/param"
)

// Request wraps the standard net/http Request struct
type Request struct {
	startTime time.Time
	path      string

	HTTP *http.Request
	// Params holds the named groups captured by the route pattern
	Params map[string]string
	// PathArgs holds the unnamed groups captured by the route pattern. It is
	// only set when the pattern has no named groups.
	PathArgs []string
	// Values holds the parsed query parameters of the resource
	Values param.Values
}

// Method returns the request method
func (r *Request) Method() string {
	return r.HTTP.Method
}

// Path returns the pattern of the endpoint serving the request
func (r *Request) Path() string {
	return r.path
}
