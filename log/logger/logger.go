package logger

import (
	"fmt"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"github.com/stairlin/rest/config"
	"github.com/stairlin/rest/log"
	"github.com/stairlin/rest/log/formatter"
	"github.com/stairlin/rest/log/printer"
)

// New creates a new logger
func New(service string, c *config.Log) (log.Logger, error) {
	f, err := formatter.New(c.Formatter, c.Tree)
	if err != nil {
		return nil, errors.Wrap(err, "log formatter")
	}

	p, err := printer.New(c.Printer, c.Tree)
	if err != nil {
		return nil, errors.Wrap(err, "log printer")
	}

	return &Logger{
		service:   service,
		level:     log.ParseLevel(c.Level),
		fmt:       f,
		pnt:       p,
		calldepth: 1,
	}, nil
}

// Logger is the key struct of the log package.
// It is the part that links the log formatter to the log printer
type Logger struct {
	service   string
	level     log.Level
	fmt       log.Formatter
	pnt       log.Printer
	calldepth int

	fields []log.Field
}

// Trace creates a trace log line.
// Trace level logs are to follow the code execution step by step
func (l *Logger) Trace(tag, msg string, fields ...log.Field) {
	l.log(log.LevelTrace, tag, msg, fields...)
}

// Warning creates a warning log line.
// Warning level logs are meant to draw attention above a certain threshold
func (l *Logger) Warning(tag, msg string, fields ...log.Field) {
	l.log(log.LevelWarning, tag, msg, fields...)
}

// Error creates an error log line.
// Error level logs need immediate attention
// The 2AM rule applies here, which means that if you are on call, this log line will wake you up at 2AM
func (l *Logger) Error(tag, msg string, fields ...log.Field) {
	l.log(log.LevelError, tag, msg, fields...)
}

// With adds the given fields to a cloned logger
func (l *Logger) With(fields ...log.Field) log.Logger {
	c := l.clone()
	c.fields = append(c.fields[:len(c.fields):len(c.fields)], fields...)
	return c
}

// AddCalldepth clones the logger and changes the call depth
func (l *Logger) AddCalldepth(n int) log.Logger {
	c := l.clone()
	c.calldepth = c.calldepth + n
	return c
}

// Close releases the printer
func (l *Logger) Close() error {
	return l.pnt.Close()
}

// Reopen reopens the printer output when it supports it, e.g. a log file
// which has been rotated
func (l *Logger) Reopen() error {
	if r, ok := l.pnt.(interface{ Reopen() error }); ok {
		return r.Reopen()
	}
	return nil
}

func (l *Logger) clone() *Logger {
	return &Logger{
		service:   l.service,
		level:     l.level,
		fmt:       l.fmt,
		pnt:       l.pnt,
		fields:    l.fields,
		calldepth: l.calldepth,
	}
}

func (l *Logger) log(lvl log.Level, tag, msg string, fields ...log.Field) {
	if l.level > lvl {
		return
	}

	// Get file and line number
	_, file, line, ok := runtime.Caller(l.calldepth + 1)
	if ok {
		short := file
		for i := len(file) - 1; i > 0; i-- {
			if file[i] == '/' {
				short = file[i+1:]
				break
			}
		}
		file = short
	} else {
		file = "???"
		line = 0
	}

	ctx := log.Ctx{
		Level:     lvl.String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Service:   l.service,
		File:      fmt.Sprintf("%s:%d", file, line),
	}

	if len(l.fields) > 0 {
		fields = append(l.fields[:len(l.fields):len(l.fields)], fields...)
	}
	f, err := l.fmt.Format(&ctx, tag, msg, fields...)
	if err != nil {
		f = fmt.Sprintf("log formatter error <%s>", err)
	}

	l.pnt.Print(&ctx, f)
}
