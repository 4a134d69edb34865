// Package http is an extra layer on top of the standard go net/http package
// to build JSON APIs.
//
// This package does most of the heavy lifting for common JSON APIs, such as:
//   - Routing on regular expressions
//   - Query parameter parsing (see package param)
//   - JSON and JSONP rendering
//   - Error handling and reporting
//   - Graceful shutdown
//   - Logging
//   - Stats
//
// A resource groups the handlers of a path:
//
//	s := http.NewServer()
//	s.Route(`/echo$`, http.NewResource(param.Set{
//		"id": param.Int(param.Required()),
//	}).Get(func(ctx journey.Ctx, r *http.Request) (interface{}, error) {
//		return map[string]interface{}{"id": r.Values.Int("id")}, nil
//	}))
package http
