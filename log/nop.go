package log

// Nop returns a logger which discards every line
func Nop() Logger {
	return nop{}
}

type nop struct{}

func (nop) Trace(tag, msg string, fields ...Field)   {}
func (nop) Warning(tag, msg string, fields ...Field) {}
func (nop) Error(tag, msg string, fields ...Field)   {}
func (n nop) With(fields ...Field) Logger            { return n }
func (n nop) AddCalldepth(int) Logger                { return n }
