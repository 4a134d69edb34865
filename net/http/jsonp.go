package http

import (
	"net/http"
	"regexp"
)

var callbackRegexp = regexp.MustCompile(`^[_a-zA-Z0-9\.$]+$`)

// callback returns the JSONP callback of r. A request is a JSONP request
// only when exactly one callback is given.
func callback(r *http.Request) (string, bool) {
	l := r.URL.Query()["callback"]
	if len(l) != 1 {
		return "", false
	}
	return l[0], true
}

func isValidCallback(cb string) bool {
	return callbackRegexp.MatchString(cb)
}
