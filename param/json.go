package param

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

// Common JSON schema types, e.g. JSONArray(UUIDType, 1, 10)
var (
	NumberType = map[string]interface{}{"type": "number"}
	StringType = map[string]interface{}{"type": "string"}
	UUIDType   = map[string]interface{}{
		"type":    "string",
		"pattern": "^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$",
	}
)

// NewJSON returns a parameter encoded as JSON. When schema is not nil, the
// decoded value must validate against it. It fails when the schema itself is
// invalid.
func NewJSON(schema map[string]interface{}, opts ...Option) (Param, error) {
	var s *gojsonschema.Schema
	if schema != nil {
		var err error
		s, err = gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
		if err != nil {
			return nil, errors.Wrap(err, "invalid JSON schema")
		}
	}

	return newBase(func(key, v string) (interface{}, error) {
		var data interface{}
		if err := json.Unmarshal([]byte(v), &data); err != nil {
			return nil, badRequest(key, "Invalid JSON: %s", err)
		}
		if s == nil {
			return data, nil
		}

		res, err := s.Validate(gojsonschema.NewGoLoader(data))
		if err != nil {
			return nil, badRequest(key, "JSON schema error: %s", err)
		}
		if !res.Valid() {
			return nil, badRequest(key, "JSON schema error: %s", res.Errors()[0].Description())
		}
		return data, nil
	}, opts), nil
}

// JSON is like NewJSON but panics when the schema is invalid. It is meant
// for package level declarations.
func JSON(schema map[string]interface{}, opts ...Option) Param {
	p, err := NewJSON(schema, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// JSONArray returns a parameter encoded as a JSON array. items is the schema
// of each item (nil for any). min and max bound the number of items, and are
// ignored when lower than 1.
func JSONArray(items map[string]interface{}, min, max int, opts ...Option) Param {
	schema := map[string]interface{}{"type": "array"}
	if items != nil {
		schema["items"] = items
	}
	if min > 0 {
		schema["minItems"] = min
	}
	if max > 0 {
		schema["maxItems"] = max
	}
	return JSON(schema, opts...)
}
