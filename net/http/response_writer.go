package http

import (
	"io"
	"net/http"
	"sync"
	"time"
)

// ResponseWriter wraps the standard net/http ResponseWriter.
// The main reason of wrapping it is to interact with the status code
// and avoid the "http: multiple response.WriteHeader calls" warnings
type ResponseWriter interface {
	http.ResponseWriter

	// Code returns the written status code.
	// If it has not been set yet, it will return 0
	Code() int

	// HasCode returns whether the status code has been set
	HasCode() bool

	// JSON replies to the request with the JSON encoding of data
	JSON(code int, data interface{}) error

	// Head replies to the request only with a header
	Head(code int) error

	// Content replies to the request using the content in the provided
	// ReadSeeker. It handles Range requests, sets the MIME type, and handles
	// conditional requests.
	//
	// If modtime is not the zero time or Unix epoch, Content includes it in a
	// Last-Modified header in the response.
	Content(req *http.Request, name string, content io.ReadSeeker, modtime ...time.Time) error

	// Render writes the given renderer
	Render(r Renderer) error
}

// responseWriter is the implementation of ResponseWriter
type responseWriter struct {
	mu          sync.RWMutex
	http        http.ResponseWriter
	code        int
	codeWritten bool
}

func (r *responseWriter) Header() http.Header {
	return r.http.Header()
}

func (r *responseWriter) Write(b []byte) (int, error) {
	r.WriteHeader(http.StatusOK)
	return r.http.Write(b)
}

func (r *responseWriter) WriteHeader(c int) {
	r.mu.Lock()
	if !r.codeWritten {
		r.code = c
		r.codeWritten = true
		r.http.WriteHeader(c)
	}
	r.mu.Unlock()
}

func (r *responseWriter) Code() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.code
}

func (r *responseWriter) HasCode() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.codeWritten
}

func (r *responseWriter) JSON(code int, data interface{}) error {
	return r.Render(&RenderJSON{Code: code, V: data})
}

func (r *responseWriter) Head(code int) error {
	return r.Render(&RenderHead{Code: code})
}

func (r *responseWriter) Content(
	req *http.Request, name string, content io.ReadSeeker, modtime ...time.Time,
) error {
	f := &RenderContent{
		Req:     req,
		Name:    name,
		Content: content,
	}
	if len(modtime) > 0 {
		f.Modtime = modtime[0]
	}
	return r.Render(f)
}

func (r *responseWriter) Render(f Renderer) error {
	return f.Render(r)
}
