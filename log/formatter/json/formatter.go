// Package json is a JSON log formatter.
//
// It is a good solution for production environment where log lines
// are usually sent to a log aggregator, such as Elasticsearch (ELK stack), or Splunk.
package json

import (
	"encoding/json"

	"github.com/stairlin/rest/config"
	"github.com/stairlin/rest/log"
)

const Name = "json"

// Config defines the JSON formatter config
type Config struct {
	// Flat puts fields at the root of the document instead of under "fields".
	// Fields never override the line metadata.
	Flat bool `toml:"flat"`
}

func New(tree config.Tree) (log.Formatter, error) {
	c := Config{}
	if err := tree.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &Formatter{flat: c.Flat}, nil
}

type Formatter struct {
	flat bool
}

func (f *Formatter) Format(ctx *log.Ctx, tag, msg string, fields ...log.Field) (string, error) {
	var v interface{}
	if f.flat {
		m := formatFields(fields)
		m["level"] = ctx.Level
		m["timestamp"] = ctx.Timestamp
		m["service"] = ctx.Service
		m["file"] = ctx.File
		m["msg"] = msg
		if tag != "" {
			m["tag"] = tag
		}
		v = m
	} else {
		v = &out{
			Level:     ctx.Level,
			Timestamp: ctx.Timestamp,
			Service:   ctx.Service,
			File:      ctx.File,
			Tag:       tag,
			Msg:       msg,
			Fields:    formatFields(fields),
		}
	}

	r, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(r), nil
}

func formatFields(fields []log.Field) map[string]interface{} {
	m := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		k, _ := f.KV()
		m[k] = f.Value()
	}
	return m
}

type out struct {
	Level     string                 `json:"level"`
	Timestamp string                 `json:"timestamp"`
	Service   string                 `json:"service"`
	File      string                 `json:"file"`
	Tag       string                 `json:"tag,omitempty"`
	Msg       string                 `json:"msg"`
	Fields    map[string]interface{} `json:"fields"`
}
