package log

import "strings"

// Level defines log severity
type Level int

const (
	// LevelTrace displays logs with trace level (and above)
	LevelTrace Level = iota
	// LevelWarning displays logs with warning level (and above)
	LevelWarning
	// LevelError displays only logs with error level
	LevelError
)

// ParseLevel converts a config level into a Level. Unknown values default
// to trace, so nothing gets lost.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "warning", "warn":
		return LevelWarning
	case "error":
		return LevelError
	}
	return LevelTrace
}

// String returns the short level code printed on each log line
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TR"
	case LevelWarning:
		return "WN"
	case LevelError:
		return "ER"
	}
	return "??"
}

// Logger is an interface for app loggers
type Logger interface {
	// Trace level logs are to follow the code execution step by step
	Trace(tag, msg string, fields ...Field)
	// Warning level logs are meant to draw attention above a certain threshold
	Warning(tag, msg string, fields ...Field)
	// Error level logs need immediate attention
	Error(tag, msg string, fields ...Field)

	// With returns a child logger which always adds fields to its lines
	With(fields ...Field) Logger
	// AddCalldepth returns a child logger which skips n more stack frames
	// when it looks up the caller file
	AddCalldepth(n int) Logger
}

// Ctx carries the log line metadata
type Ctx struct {
	Level     string
	Timestamp string
	Service   string
	File      string
}

// Formatter converts a log line to a string
type Formatter interface {
	Format(ctx *Ctx, tag, msg string, fields ...Field) (string, error)
}

// Printer outputs a formatted log line
type Printer interface {
	Print(ctx *Ctx, s string) error
	Close() error
}
