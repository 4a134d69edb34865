// Package stdout prints log lines into the standard output.
// Lines are colourised by level with ANSI escape codes.
package stdout

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/stairlin/rest/config"
	"github.com/stairlin/rest/log"
)

const Name = "stdout"

var colours = map[string]*color.Color{
	log.LevelTrace.String():   color.New(color.FgBlue),
	log.LevelWarning.String(): color.New(color.FgYellow),
	log.LevelError.String():   color.New(color.FgRed),
}

var unknownColour = color.New(color.FgWhite)

// Config defines the stdout printer config
type Config struct {
	// NoColor prints plain lines
	NoColor bool `toml:"no_color"`
	// Stderr prints error lines on the standard error
	Stderr bool `toml:"stderr"`
}

func New(tree config.Tree) (log.Printer, error) {
	c := Config{}
	if err := tree.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &Printer{
		out:     color.Output,
		err:     errOutput(c.Stderr),
		noColor: c.NoColor || color.NoColor,
	}, nil
}

func errOutput(stderr bool) io.Writer {
	if stderr {
		return color.Error
	}
	return color.Output
}

// Printer writes lines to the standard output
type Printer struct {
	mu      sync.Mutex
	out     io.Writer
	err     io.Writer
	noColor bool
}

func (p *Printer) Print(ctx *log.Ctx, s string) error {
	w := p.out
	if ctx.Level == log.LevelError.String() {
		w = p.err
	}
	if !p.noColor {
		s = pickColour(ctx.Level).Sprint(s)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := fmt.Fprintln(w, s)
	return err
}

// Close does nothing, stdout stays open
func (p *Printer) Close() error {
	return nil
}

func pickColour(lvl string) *color.Color {
	if c, ok := colours[lvl]; ok {
		return c
	}
	return unknownColour
}
