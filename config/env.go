package config

import (
	"os"
	"strings"
)

const prefix = "$"

// ValueOf extracts the environment variable name given or the plain string given
//
// e.g. foo -> foo
//
//	$DATABASE_URL -> http://foo.bar:8083
func ValueOf(s string) string {
	if strings.HasPrefix(s, prefix) && len(s) > 1 {
		return os.Getenv(s[1:])
	}
	return s
}

// ValuesOf applies ValueOf on strings and string slices. Other values are
// returned untouched.
func ValuesOf(v interface{}) interface{} {
	switch v := v.(type) {
	case string:
		return ValueOf(v)
	case []string:
		l := make([]string, len(v))
		for i, s := range v {
			l[i] = ValueOf(s)
		}
		return l
	case []interface{}:
		l := make([]interface{}, len(v))
		for i, s := range v {
			l[i] = ValuesOf(s)
		}
		return l
	}
	return v
}
