package param

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// String returns the raw parameter value
func String(opts ...Option) Param {
	return newBase(func(key, v string) (interface{}, error) {
		return v, nil
	}, opts)
}

// Bool accepts "true" and "false" only
func Bool(opts ...Option) Param {
	return newBase(func(key, v string) (interface{}, error) {
		switch v {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, badRequest(key, "Boolean parameter must be 'true' or 'false'")
	}, opts)
}

// Int parses a base 10 integer. Bounds are set with Min and Max.
func Int(opts ...Option) Param {
	var b *base
	b = newBase(func(key, v string) (interface{}, error) {
		i, err := strconv.Atoi(v)
		if err != nil {
			return nil, badRequest(key, "Invalid integer: %s", v)
		}
		if b.min != nil && i < *b.min {
			return nil, badRequest(key, "Minimum value %d", *b.min)
		}
		if b.max != nil && i > *b.max {
			return nil, badRequest(key, "Maximum value %d", *b.max)
		}
		return i, nil
	}, opts)
	return b
}

// Enum only accepts the given values
func Enum(values []string, opts ...Option) Param {
	allowed := make(map[string]struct{}, len(values))
	for _, v := range values {
		allowed[v] = struct{}{}
	}
	sorted := make([]string, 0, len(allowed))
	for v := range allowed {
		sorted = append(sorted, strconv.Quote(v))
	}
	sort.Strings(sorted)
	msg := fmt.Sprintf("Parameter must be one of [%s]", strings.Join(sorted, ", "))

	return newBase(func(key, v string) (interface{}, error) {
		if _, ok := allowed[v]; !ok {
			return nil, badRequest(key, msg)
		}
		return v, nil
	}, opts)
}

// UUID parses a UUID into a uuid.UUID
func UUID(opts ...Option) Param {
	return newBase(func(key, v string) (interface{}, error) {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, badRequest(key, "Malformed UUID")
		}
		return id, nil
	}, opts)
}

// Version is a dotted version number, such as 5.10.1
type Version []int

// ParseVersion parses a dotted version number
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(s, ".")
	v := make(Version, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		v[i] = n
	}
	return v, nil
}

// Compare returns -1, 0 or 1 when v is lower, equal or greater than o.
// Components are compared numerically, so 5.9 < 5.10, and a shorter version
// is lower than a longer one sharing its prefix (1.0 < 1.0.1).
func (v Version) Compare(o Version) int {
	for i := 0; i < len(v) && i < len(o); i++ {
		switch {
		case v[i] < o[i]:
			return -1
		case v[i] > o[i]:
			return 1
		}
	}
	switch {
	case len(v) < len(o):
		return -1
	case len(v) > len(o):
		return 1
	}
	return 0
}

// Less returns whether v is lower than o
func (v Version) Less(o Version) bool {
	return v.Compare(o) < 0
}

func (v Version) String() string {
	l := make([]string, len(v))
	for i, n := range v {
		l[i] = strconv.Itoa(n)
	}
	return strings.Join(l, ".")
}

// VersionParam parses a dotted version number into a Version
func VersionParam(opts ...Option) Param {
	return newBase(func(key, v string) (interface{}, error) {
		ver, err := ParseVersion(v)
		if err != nil {
			return nil, badRequest(key, "Invalid version literal")
		}
		return ver, nil
	}, opts)
}
