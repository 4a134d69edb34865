package log

import (
	"fmt"
	"time"
)

// Field is a key/value pair attached to a log line
type Field struct {
	key string
	val interface{}
}

// KV returns the field key and its value formatted as a string
func (f Field) KV() (string, string) {
	switch v := f.val.(type) {
	case nil:
		return f.key, "<nil>"
	case string:
		return f.key, v
	case error:
		return f.key, v.Error()
	case fmt.Stringer:
		return f.key, v.String()
	}
	return f.key, fmt.Sprint(f.val)
}

// Value returns the raw field value, e.g. to be marshalled by a formatter
func (f Field) Value() interface{} {
	if err, ok := f.val.(error); ok {
		return err.Error()
	}
	if d, ok := f.val.(time.Duration); ok {
		return d.String()
	}
	return f.val
}

// String returns a string field
func String(k, v string) Field {
	return Field{key: k, val: v}
}

// Int returns an int field
func Int(k string, v int) Field {
	return Field{key: k, val: v}
}

// Int64 returns an int64 field
func Int64(k string, v int64) Field {
	return Field{key: k, val: v}
}

// Uint returns an uint field
func Uint(k string, v uint) Field {
	return Field{key: k, val: v}
}

// Float64 returns a float64 field
func Float64(k string, v float64) Field {
	return Field{key: k, val: v}
}

// Bool returns a bool field
func Bool(k string, v bool) Field {
	return Field{key: k, val: v}
}

// Duration returns a duration field
func Duration(k string, v time.Duration) Field {
	return Field{key: k, val: v}
}

// Error returns an error field
func Error(err error) Field {
	return Field{key: "err", val: err}
}

// Object returns a field holding any value
func Object(k string, v interface{}) Field {
	return Field{key: k, val: v}
}

// Type returns a field holding the type of v
func Type(k string, v interface{}) Field {
	return Field{key: k, val: fmt.Sprintf("%T", v)}
}
