// Package logf is a human friendly log formatter.
//
// It is ideal for a development environment where
// log lines are almost exlusively consumed by developers
package logf

import (
	"strconv"
	"strings"

	"github.com/stairlin/rest/config"
	"github.com/stairlin/rest/log"
)

const Name = "logf"

const defaultPadding = 75

// Config defines the logf formatter config
type Config struct {
	// Padding is the width of the line header (level, time, service, file)
	Padding int `toml:"padding"`
}

func New(tree config.Tree) (log.Formatter, error) {
	c := Config{Padding: defaultPadding}
	if err := tree.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &Formatter{padding: c.Padding}, nil
}

// Formatter prints log lines such as
//
//	TR 2024-01-02T15:04:05Z api server.go:42     [s.http.listen] Listening... <addr=:3000>
type Formatter struct {
	padding int
}

func (f *Formatter) Format(ctx *log.Ctx, tag, msg string, fields ...log.Field) (string, error) {
	var b strings.Builder
	b.WriteString(ctx.Level)
	b.WriteByte(' ')
	b.WriteString(ctx.Timestamp)
	b.WriteByte(' ')
	b.WriteString(ctx.Service)
	b.WriteByte(' ')
	b.WriteString(ctx.File)
	if n := f.padding - b.Len(); n > 0 {
		b.WriteString(strings.Repeat(" ", n))
	}

	if tag != "" {
		b.WriteString(" [")
		b.WriteString(tag)
		b.WriteByte(']')
	}
	if msg != "" {
		b.WriteByte(' ')
		b.WriteString(msg)
	}
	for _, field := range fields {
		k, v := field.KV()
		b.WriteString(" <")
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(quote(v))
		b.WriteByte('>')
	}
	return b.String(), nil
}

// quote keeps multi-line values, such as stack traces, on a single line
func quote(v string) string {
	if strings.ContainsAny(v, "\n\r\t") {
		return strconv.Quote(v)
	}
	return v
}
