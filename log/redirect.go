package log

import (
	"bytes"
	stdlog "log"
)

// NewStdLogger returns a standard library logger which forwards every line to
// l with the given tag and level. It is meant for libraries that only accept
// a *log.Logger, such as net/http.Server.ErrorLog.
func NewStdLogger(l Logger, tag string, lvl Level) *stdlog.Logger {
	return stdlog.New(&redirect{l: l.AddCalldepth(3), tag: tag, lvl: lvl}, "", 0)
}

type redirect struct {
	l   Logger
	tag string
	lvl Level
}

func (r *redirect) Write(p []byte) (int, error) {
	msg := string(bytes.TrimRight(p, "\n"))
	switch r.lvl {
	case LevelTrace:
		r.l.Trace(r.tag, msg)
	case LevelWarning:
		r.l.Warning(r.tag, msg)
	default:
		r.l.Error(r.tag, msg)
	}
	return len(p), nil
}
