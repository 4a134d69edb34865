package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"
)

// Renderer is a response returned by an action
type Renderer interface {
	// Render writes a response to the response writer
	Render(ResponseWriter) error
}

// RenderJSON is a renderer that marshals responses in JSON.
// When Callback is set, the document is wrapped in a JavaScript function call
// (JSONP).
type RenderJSON struct {
	Code     int
	V        interface{}
	Callback string
}

func (r *RenderJSON) Render(res ResponseWriter) error {
	// Encode first, so that nothing is written on failure
	b, err := encodeJSON(r.V)
	if err != nil {
		return err
	}

	contentType := ContentTypeJSON
	if r.Callback != "" {
		contentType = ContentTypeJavaScript
		b = append(append([]byte(r.Callback+"("), b...), ')')
	}

	// Header
	res.Header().Set("Content-Type", contentType)
	res.WriteHeader(r.Code)

	// Body
	_, err = res.Write(b)
	return err
}

// encodeJSON encodes v without escaping HTML characters and without the
// trailing new line added by json.Encoder
func encodeJSON(v interface{}) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// RenderHead is a renderer that returns a body-less response
type RenderHead struct {
	Code int
}

func (r *RenderHead) Render(res ResponseWriter) error {
	res.WriteHeader(r.Code)
	return nil
}

// RenderContent is a renderer that serves the content of a file
type RenderContent struct {
	Req     *http.Request
	Name    string
	Modtime time.Time
	Content io.ReadSeeker
}

func (r *RenderContent) Render(res ResponseWriter) error {
	http.ServeContent(res, r.Req, r.Name, r.Modtime, r.Content)
	return nil
}
