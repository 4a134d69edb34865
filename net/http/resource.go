package http

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/stairlin/rest/ctx/journey"
	"github.com/stairlin/rest/log"
	"github.com/stairlin/rest/param"
	"github.com/stairlin/rest/report"
)

// JSONFunc handles a request and returns the document to encode in JSON
type JSONFunc func(ctx journey.Ctx, r *Request) (interface{}, error)

// Resource is a set of JSON handlers, one per method, sharing the same
// query parameters
type Resource struct {
	params   param.Set
	handlers map[string]JSONFunc
	envelope Envelope
	context  func(r *Request) report.Fields
}

// NewResource creates a resource which parses the given query parameters
// before calling its handlers.
// It panics when the parameter set is invalid, because this is a programming
// error which should fail as fast as possible.
func NewResource(params param.Set) *Resource {
	if err := params.Validate(); err != nil {
		panic(err)
	}
	return &Resource{
		params:   params,
		handlers: map[string]JSONFunc{},
	}
}

// Get registers the GET handler. HEAD requests are served by it too.
func (r *Resource) Get(f JSONFunc) *Resource { return r.Handle(GET, f) }

// Post registers the POST handler
func (r *Resource) Post(f JSONFunc) *Resource { return r.Handle(POST, f) }

// Put registers the PUT handler
func (r *Resource) Put(f JSONFunc) *Resource { return r.Handle(PUT, f) }

// Patch registers the PATCH handler
func (r *Resource) Patch(f JSONFunc) *Resource { return r.Handle(PATCH, f) }

// Delete registers the DELETE handler
func (r *Resource) Delete(f JSONFunc) *Resource { return r.Handle(DELETE, f) }

// Handle registers f for the given method
func (r *Resource) Handle(method string, f JSONFunc) *Resource {
	r.handlers[strings.ToUpper(method)] = f
	return r
}

// SetEnvelope overrides the server envelope for this resource
func (r *Resource) SetEnvelope(e Envelope) *Resource {
	r.envelope = e
	return r
}

// SetContext adds fields to the context logged and reported along with
// server-side errors, e.g. a user ID
func (r *Resource) SetContext(f func(r *Request) report.Fields) *Resource {
	r.context = f
	return r
}

// Allow returns the sorted list of methods supported by the resource
func (r *Resource) Allow() []string {
	l := make([]string, 0, len(r.handlers)+1)
	for m := range r.handlers {
		l = append(l, m)
	}
	if _, ok := r.handlers[HEAD]; !ok {
		if _, ok := r.handlers[GET]; ok {
			l = append(l, HEAD)
		}
	}
	sort.Strings(l)
	return l
}

func (r *Resource) handler(method string) JSONFunc {
	if f, ok := r.handlers[method]; ok {
		return f
	}
	if method == HEAD {
		return r.handlers[GET]
	}
	return nil
}

// result is the outcome of a handler
type result struct {
	v     interface{}
	err   error
	stack []byte
}

// resourceServer renders resources with the server-wide settings
type resourceServer struct {
	envelope Envelope
}

// renderCtx returns the render context of a request. The resource envelope
// takes precedence over the server one. res may be nil, e.g. for requests
// which do not match any resource.
func (s *resourceServer) renderCtx(
	ctx journey.Ctx, w ResponseWriter, req *Request, res *Resource,
) *renderCtx {
	env := s.envelope
	if res != nil && res.envelope != nil {
		env = res.envelope
	}
	if env == nil {
		env = Identity
	}
	return &renderCtx{ctx: ctx, w: w, req: req, res: res, env: env}
}

func (s *resourceServer) serve(
	ctx journey.Ctx, w ResponseWriter, req *Request, res *Resource,
) {
	rc := s.renderCtx(ctx, w, req, res)

	// Parse query parameters first
	values, err := res.params.Parse(req.HTTP)
	if err != nil {
		rc.fail(err, nil)
		return
	}
	req.Values = values

	f := res.handler(req.HTTP.Method)
	if f == nil {
		w.Header().Set("Allow", strings.Join(res.Allow(), ", "))
		rc.fail(NewError(http.StatusMethodNotAllowed, ""), nil)
		return
	}

	// Run handler
	c := make(chan result, 1)
	go func() {
		defer func() {
			if ctx.AppConfig().Request.Panic {
				return
			}
			if rec := recover(); rec != nil {
				c <- result{
					err:   errors.Errorf("panic: %v", rec),
					stack: debug.Stack(),
				}
			}
		}()

		v, err := f(ctx, req)
		c <- result{v: v, err: err}
	}()

	select {
	case r := <-c:
		if r.err != nil && ctx.Err() != nil {
			rc.interrupted()
			return
		}
		if r.err != nil {
			rc.fail(r.err, r.stack)
			return
		}
		rc.send(r.v, http.StatusOK, "")
	case <-ctx.Done():
		rc.interrupted()
	}
}

// renderCtx holds everything needed to reply to a single request
type renderCtx struct {
	ctx journey.Ctx
	w   ResponseWriter
	req *Request
	res *Resource
	env Envelope

	// failing is set while the 500 reply is being sent
	failing bool
}

// serverErrorBody is sent when even the 500 reply cannot be encoded
var serverErrorBody = []byte(`"Server-side error"`)

// send encodes v with the envelope and writes it
func (rc *renderCtx) send(v interface{}, code int, msg string) {
	r := &RenderJSON{Code: code}

	if cb, ok := callback(rc.req.HTTP); ok {
		if !isValidCallback(cb) {
			r.Code = http.StatusBadRequest
			r.V = rc.env("Invalid callback", http.StatusBadRequest, "")
			rc.render(r)
			return
		}
		// JSONP keeps a 200 status
		r.Code = http.StatusOK
		r.Callback = cb
	}

	r.V = rc.env(v, code, msg)
	rc.render(r)
}

func (rc *renderCtx) render(r *RenderJSON) {
	err := rc.w.Render(r)
	if err == nil {
		return
	}
	if rc.w.HasCode() {
		// The header has already been sent, the connection is likely closed
		if !isConnError(err) {
			rc.ctx.Warning("http.render.err", "Cannot write response", log.Error(err))
		}
		return
	}
	if rc.failing {
		rc.ctx.Error("http.render.err", "Cannot encode error reply", log.Error(err))
		rc.w.Header().Set("Content-Type", ContentTypeJSON)
		rc.w.WriteHeader(http.StatusInternalServerError)
		rc.w.Write(serverErrorBody)
		return
	}
	rc.fail(errors.Wrap(err, "json encoding"), nil)
}

// interrupted replies to a request whose journey ended before its handler
// returned. Timeouts get a 504, whereas nothing is sent to clients which
// went away.
func (rc *renderCtx) interrupted() {
	if errors.Is(rc.ctx.Err(), context.DeadlineExceeded) {
		rc.ctx.Warning("http.resource.timeout", "Request timed out",
			log.String("method", rc.req.HTTP.Method),
			log.String("path", rc.req.path),
		)
		rc.send(nil, http.StatusGatewayTimeout, fmt.Sprintf(
			"%d %s", http.StatusGatewayTimeout, http.StatusText(http.StatusGatewayTimeout),
		))
		return
	}
	rc.ctx.Trace("http.resource.cancel", "Request cancelled",
		log.Error(rc.ctx.Err()),
	)
}

// fail replies to the request with an error.
//
// Errors caused by a closed connection are dropped. Client errors (4xx) are
// sent with their message. Anything else is logged and reported, and the
// client gets a generic 500.
func (rc *renderCtx) fail(err error, stack []byte) {
	if isConnError(err) {
		return
	}

	if code, msg, ok := clientError(err); ok {
		rc.send(nil, code, msg)
		return
	}

	fields := rc.context()
	l := []log.Field{log.Error(err)}
	for _, k := range sortedKeys(fields) {
		l = append(l, log.Object(k, fields[k]))
	}
	if stack != nil {
		l = append(l, log.String("stack", string(stack)))
	}
	rc.ctx.Error("http.resource.err", "Unhandled error", l...)
	rc.ctx.Report(err, fields)

	rc.failing = true
	rc.send(nil, http.StatusInternalServerError, "Server-side error")
}

// context returns the request context attached to server-side errors
func (rc *renderCtx) context() report.Fields {
	r := rc.req.HTTP
	headers := map[string]string{}
	for k, v := range r.Header {
		headers[k] = strings.Join(v, ", ")
	}
	data := map[string][]string{}
	for k, v := range r.URL.Query() {
		data[k] = v
	}

	f := report.Fields{
		"url":          r.URL.RequestURI(),
		"method":       r.Method,
		"headers":      headers,
		"query_string": r.URL.RawQuery,
		"data":         data,
	}
	if rc.res != nil && rc.res.context != nil {
		for k, v := range rc.res.context(rc.req) {
			f[k] = v
		}
	}
	return f
}

func sortedKeys(f report.Fields) []string {
	l := make([]string, 0, len(f))
	for k := range f {
		l = append(l, k)
	}
	sort.Strings(l)
	return l
}
