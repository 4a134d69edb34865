package http

import (
	"net/http"
	"regexp"

	"github.com/gorilla/mux"

	"github.com/stairlin/rest/ctx/journey"
)

// PathFactory builds the resource serving a request from the groups captured
// by the route pattern
type PathFactory func(params map[string]string, args []string) *Resource

// routeEndpoint serves the requests whose path matches a regular expression.
// The expression must match at the start of the path, but not necessarily
// up to its end, so patterns should end with $ when needed.
type routeEndpoint struct {
	pattern string
	re      *regexp.Regexp
	named   bool
	factory PathFactory
	rs      *resourceServer
}

func newRouteEndpoint(pattern string, f PathFactory, rs *resourceServer) *routeEndpoint {
	re := regexp.MustCompile("^(?:" + pattern + ")")
	named := false
	for _, n := range re.SubexpNames() {
		if n != "" {
			named = true
		}
	}
	return &routeEndpoint{
		pattern: pattern,
		re:      re,
		named:   named,
		factory: f,
		rs:      rs,
	}
}

func (e *routeEndpoint) Path() string {
	return e.pattern
}

func (e *routeEndpoint) Attach(r *mux.Router, h http.Handler) {
	r.MatcherFunc(func(req *http.Request, _ *mux.RouteMatch) bool {
		return e.re.MatchString(req.URL.Path)
	}).Handler(h)
}

func (e *routeEndpoint) Serve(ctx journey.Ctx, w ResponseWriter, r *Request) {
	r.Params, r.PathArgs = e.groups(r.HTTP.URL.Path)

	res := e.factory(r.Params, r.PathArgs)
	if res == nil {
		e.rs.renderCtx(ctx, w, r, nil).fail(NewError(http.StatusNotFound, ""), nil)
		return
	}
	e.rs.serve(ctx, w, r, res)
}

// groups returns the groups captured in path. Named groups take precedence,
// so unnamed groups are only returned when the pattern has no named groups.
// Groups which did not participate in the match are left out of params and
// empty in args.
func (e *routeEndpoint) groups(path string) (params map[string]string, args []string) {
	m := e.re.FindStringSubmatchIndex(path)
	if m == nil {
		return map[string]string{}, nil
	}

	params = map[string]string{}
	names := e.re.SubexpNames()
	for i := 1; i < len(names); i++ {
		start, end := m[2*i], m[2*i+1]
		var v string
		if start >= 0 {
			v = path[start:end]
		}

		if e.named {
			if names[i] != "" && start >= 0 {
				params[names[i]] = v
			}
			continue
		}
		args = append(args, v)
	}
	return params, args
}
