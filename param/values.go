package param

import (
	"github.com/google/uuid"
)

// Values holds the parsed parameters of a request. Missing optional
// parameters are stored as nil.
type Values map[string]interface{}

// Get returns the raw value of a parameter
func (v Values) Get(name string) interface{} {
	return v[name]
}

// Has returns whether the parameter has a value
func (v Values) Has(name string) bool {
	return v[name] != nil
}

// String returns a string parameter, or an empty string
func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

// Bool returns a bool parameter, or false
func (v Values) Bool(name string) bool {
	b, _ := v[name].(bool)
	return b
}

// Int returns an int parameter, or 0
func (v Values) Int(name string) int {
	i, _ := v[name].(int)
	return i
}

// Version returns a version parameter, or nil
func (v Values) Version(name string) Version {
	ver, _ := v[name].(Version)
	return ver
}

// UUID returns a UUID parameter, or uuid.Nil
func (v Values) UUID(name string) uuid.UUID {
	id, _ := v[name].(uuid.UUID)
	return id
}
