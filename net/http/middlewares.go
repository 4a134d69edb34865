package http

import (
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/stairlin/rest/ctx/journey"
	"github.com/stairlin/rest/log"
)

// MiddlewareFunc is the function signature of a middleware
type MiddlewareFunc func(ctx journey.Ctx, w ResponseWriter, r *Request)

// Middleware is a function called on the HTTP stack before an endpoint
type Middleware func(MiddlewareFunc) MiddlewareFunc

func buildMiddlewareChain(l []Middleware, serve MiddlewareFunc) MiddlewareFunc {
	c := serve
	for i := len(l) - 1; i >= 0; i-- {
		c = l[i](c)
	}
	return c
}

// mwDebug adds useful debugging information to the response header
func mwDebug(next MiddlewareFunc) MiddlewareFunc {
	return func(ctx journey.Ctx, w ResponseWriter, r *Request) {
		w.Header().Set(HeaderRequestID, ctx.UUID())
		next(ctx, w, r)
	}
}

// mwLogging logs information about HTTP requests/responses
func mwLogging(next MiddlewareFunc) MiddlewareFunc {
	return func(ctx journey.Ctx, w ResponseWriter, r *Request) {
		ctx.Trace("h.http.req.start", "Request start",
			log.String("method", r.Method()),
			log.String("path", r.HTTP.URL.Path),
			log.String("user_agent", r.HTTP.Header.Get("User-Agent")),
		)

		next(ctx, w, r)

		ctx.Trace("h.http.req.end", "Request end",
			log.Int("status", w.Code()),
			log.Duration("duration", time.Since(r.startTime)),
		)
	}
}

// mwStats sends the request/response stats
func mwStats(next MiddlewareFunc) MiddlewareFunc {
	return func(ctx journey.Ctx, w ResponseWriter, r *Request) {
		tags := map[string]string{
			"method": r.Method(),
			"path":   r.Path(),
		}
		ctx.Stats().Inc("http.conc", tags)

		next(ctx, w, r)

		ctx.Stats().Dec("http.conc", tags)
		tags["status"] = strconv.Itoa(w.Code())
		ctx.Stats().Histogram("http.call", 1, tags)
		ctx.Stats().Timing("http.time", time.Since(r.startTime), tags)
	}
}

// mwPanic catches panics outside of resource handlers
func mwPanic(next MiddlewareFunc) MiddlewareFunc {
	return func(ctx journey.Ctx, w ResponseWriter, r *Request) {
		defer func() {
			if ctx.AppConfig().Request.Panic {
				return
			}
			if rec := recover(); rec != nil {
				ctx.Error("http.mw.panic", "Recovered from panic",
					log.Object("err", rec),
					log.String("stack", string(debug.Stack())),
				)
				w.WriteHeader(http.StatusInternalServerError)
			}
		}()

		next(ctx, w, r)
	}
}
