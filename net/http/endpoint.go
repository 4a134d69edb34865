package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/stairlin/rest/ctx/journey"
)

// An Endpoint is a an entity that serves a request from a given route
type Endpoint interface {
	// Path returns the pattern or prefix of the endpoint
	Path() string
	// Attach adds the route to the router
	Attach(r *mux.Router, h http.Handler)
	// Serve serves a request matching the route
	Serve(ctx journey.Ctx, w ResponseWriter, r *Request)
}

// handlerEndpoint serves a path prefix with a standard net/http handler
type handlerEndpoint struct {
	prefix  string
	handler http.Handler
}

func (e *handlerEndpoint) Path() string {
	return e.prefix
}

func (e *handlerEndpoint) Attach(r *mux.Router, h http.Handler) {
	r.PathPrefix(e.prefix).Handler(h)
}

func (e *handlerEndpoint) Serve(ctx journey.Ctx, w ResponseWriter, r *Request) {
	e.handler.ServeHTTP(w, r.HTTP.WithContext(ctx))
}

// fallbackEndpoint serves the requests which do not match any route.
// Without handler, it replies with a JSON 404.
type fallbackEndpoint struct {
	handler http.Handler
	rs      *resourceServer
}

func (e *fallbackEndpoint) Path() string {
	return "*"
}

func (e *fallbackEndpoint) Attach(r *mux.Router, h http.Handler) {
	r.NotFoundHandler = h
}

func (e *fallbackEndpoint) Serve(ctx journey.Ctx, w ResponseWriter, r *Request) {
	if e.handler != nil {
		e.handler.ServeHTTP(w, r.HTTP.WithContext(ctx))
		return
	}
	e.rs.renderCtx(ctx, w, r, nil).fail(NewError(http.StatusNotFound, ""), nil)
}
