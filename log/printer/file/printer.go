// Package file prints log lines to a file.
//
// The file can be reopened, e.g. after it has been rotated, by sending a
// SIGHUP to the app.
package file

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/stairlin/rest/config"
	"github.com/stairlin/rest/log"
)

const (
	Name = "file"

	defaultMode = 0660
	flag        = os.O_CREATE | os.O_WRONLY | os.O_APPEND
)

// ErrClosed is returned when a line is printed on a closed printer
var ErrClosed = errors.New("log file is closed")

// Config defines the file printer config
type Config struct {
	Path string `toml:"path"`
	Mode uint32 `toml:"mode"`
}

func New(tree config.Tree) (log.Printer, error) {
	c := Config{}
	if err := tree.Unmarshal(&c); err != nil {
		return nil, err
	}
	if c.Path == "" {
		return nil, errors.New("missing \"path\" on file log printer config")
	}
	if c.Mode == 0 {
		c.Mode = defaultMode
	}

	p := &Printer{path: c.Path, mode: os.FileMode(c.Mode)}
	if err := os.MkdirAll(filepath.Dir(c.Path), 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create log directory")
	}
	if err := p.Reopen(); err != nil {
		return nil, err
	}
	return p, nil
}

// Printer appends lines to a file
type Printer struct {
	mu   sync.Mutex
	path string
	mode os.FileMode
	f    *os.File
}

func (p *Printer) Print(ctx *log.Ctx, s string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.f == nil {
		return ErrClosed
	}
	_, err := p.f.WriteString(s + "\n")
	return err
}

// Reopen closes the current file and opens the configured path again
func (p *Printer) Reopen() error {
	f, err := os.OpenFile(p.path, flag, p.mode)
	if err != nil {
		return errors.Wrap(err, "failed to open log file")
	}

	p.mu.Lock()
	old := p.f
	p.f = f
	p.mu.Unlock()

	if old != nil {
		return old.Close()
	}
	return nil
}

func (p *Printer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.f == nil {
		return nil
	}
	err := p.f.Close()
	p.f = nil
	return err
}
