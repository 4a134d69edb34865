package testing

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stairlin/rest/log"
)

const (
	// TC is the TRACE log constant
	TC = "TRACE"
	// WN is the WARNING log constant
	WN = "WARN"
	// ER is the ERROR log constant
	ER = "ERRR"
)

// Logger is a simple Logger interface useful for tests.
// In strict mode, error lines fail the test.
type Logger struct {
	t      *testing.T
	strict bool

	lines  *counter
	fields []log.Field
}

// NewLogger creates a new logger
func NewLogger(t *testing.T, strict bool) log.Logger {
	return &Logger{
		t:      t,
		strict: strict,
		lines:  &counter{m: map[string]int{}},
	}
}

func (l *Logger) l(s, tag, msg string, fields ...log.Field) {
	if len(l.fields) > 0 {
		fields = append(l.fields[:len(l.fields):len(l.fields)], fields...)
	}
	line := format(tag, msg, fields...)
	if s == ER && l.strict {
		l.t.Error(s, line)
	} else {
		l.t.Log(s, line)
	}
	l.lines.inc(s)
}

// Lines returns the number of log lines for the given severity
func (l *Logger) Lines(s string) int {
	return l.lines.get(s)
}

func (l *Logger) Trace(tag, msg string, fields ...log.Field)   { l.l(TC, tag, msg, fields...) }
func (l *Logger) Warning(tag, msg string, fields ...log.Field) { l.l(WN, tag, msg, fields...) }
func (l *Logger) Error(tag, msg string, fields ...log.Field)   { l.l(ER, tag, msg, fields...) }

// With returns a child logger. Children share the line counters.
func (l *Logger) With(fields ...log.Field) log.Logger {
	return &Logger{
		t:      l.t,
		strict: l.strict,
		lines:  l.lines,
		fields: append(l.fields[:len(l.fields):len(l.fields)], fields...),
	}
}

// AddCalldepth returns the logger itself, since lines are printed via testing.T
func (l *Logger) AddCalldepth(n int) log.Logger {
	return l
}

type counter struct {
	mu sync.RWMutex
	m  map[string]int
}

func (c *counter) inc(s string) {
	c.mu.Lock()
	c.m[s]++
	c.mu.Unlock()
}

func (c *counter) get(s string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.m[s]
}

func format(tag, msg string, fields ...log.Field) string {
	var b bytes.Buffer

	b.WriteString(tag)
	b.WriteString(" ")
	b.WriteString(msg)

	for _, f := range fields {
		k, v := f.KV()
		b.WriteString(" ")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(v)
	}
	return b.String()
}
