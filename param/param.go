// Package param extracts and validates typed query parameters.
//
// Parameters are declared per resource as a Set:
//
//	params := param.Set{
//		"id":    param.UUID(param.Required()),
//		"limit": param.Int(param.Min(1), param.Max(100), param.Default(20)),
//		"lang":  param.Lang(param.Default("en")),
//	}
//
// A parse failure is always a *param.Error with a 4xx code.
package param

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/pkg/errors"
)

// Param parses a single query parameter
type Param interface {
	// Parse returns the value of the parameter called name in r.
	// A missing optional parameter without default returns nil.
	Parse(name string, r *http.Request) (interface{}, error)
}

// Error is a client error caused by an invalid parameter
type Error struct {
	Code    int
	Param   string
	Message string
}

func (e *Error) Error() string {
	if e.Param == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Param, e.Message)
}

// StatusCode returns the HTTP status code sent to the client
func (e *Error) StatusCode() int {
	return e.Code
}

func badRequest(name, format string, args ...interface{}) error {
	return &Error{
		Code:    http.StatusBadRequest,
		Param:   name,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrRequiredDefault is returned when a parameter is both required and has
// a default value
var ErrRequiredDefault = errors.New("required parameters can't have a default")

// Option configures a parameter
type Option func(*options)

type options struct {
	required bool
	def      interface{}
	name     string
	min, max *int
}

// Required makes Parse fail when the parameter is missing
func Required() Option {
	return func(o *options) { o.required = true }
}

// Default is returned when the parameter is missing
func Default(v interface{}) Option {
	return func(o *options) { o.def = v }
}

// Name sets the query key, when it differs from the declared name
func Name(n string) Option {
	return func(o *options) { o.name = n }
}

// Min sets the lowest accepted value of an Int parameter
func Min(n int) Option {
	return func(o *options) { o.min = &n }
}

// Max sets the highest accepted value of an Int parameter
func Max(n int) Option {
	return func(o *options) { o.max = &n }
}

// base implements the lookup logic shared by every parameter type
type base struct {
	options
	conv func(key, v string) (interface{}, error)
}

func newBase(conv func(key, v string) (interface{}, error), opts []Option) *base {
	b := &base{conv: conv}
	for _, o := range opts {
		o(&b.options)
	}
	return b
}

func (b *base) Parse(name string, r *http.Request) (interface{}, error) {
	key := b.key(name)
	vals, ok := r.URL.Query()[key]
	if !ok {
		return b.missing(key)
	}
	if len(vals) != 1 {
		return nil, badRequest(key, "Pass exactly one argument")
	}
	return b.conv(key, vals[0])
}

func (b *base) missing(key string) (interface{}, error) {
	if b.def != nil {
		return b.def, nil
	}
	if b.required {
		return nil, badRequest(key, "Required")
	}
	return nil, nil
}

func (b *base) key(name string) string {
	if b.name != "" {
		return b.name
	}
	return name
}

// Validate checks the declaration of the parameter
func (b *base) Validate() error {
	if b.required && b.def != nil {
		return ErrRequiredDefault
	}
	return nil
}

// Set declares the parameters of a resource, indexed by name
type Set map[string]Param

// Validate checks every declared parameter. It fails when a parameter is
// badly declared (e.g. required with a default).
func (s Set) Validate() error {
	for _, name := range s.names() {
		v, ok := s[name].(interface{ Validate() error })
		if !ok {
			continue
		}
		if err := v.Validate(); err != nil {
			return errors.Wrapf(err, "param %s", name)
		}
	}
	return nil
}

// Parse parses all declared parameters from r. Parameters are parsed in
// name order, and the first failure is returned.
func (s Set) Parse(r *http.Request) (Values, error) {
	vals := make(Values, len(s))
	for _, name := range s.names() {
		v, err := s[name].Parse(name, r)
		if err != nil {
			return nil, err
		}
		vals[name] = v
	}
	return vals, nil
}

func (s Set) names() []string {
	l := make([]string, 0, len(s))
	for name := range s {
		l = append(l, name)
	}
	sort.Strings(l)
	return l
}
