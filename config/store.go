package config

import (
	"io"
	"net/url"
	"os"

	"github.com/pkg/errors"
)

// Load reads the TOML config located at uri. It accepts a plain path or a
// file:// URI. An empty uri returns the default config.
func Load(uri string) (*Config, error) {
	if uri == "" {
		return Default(), nil
	}

	path := uri
	if u, err := url.Parse(uri); err == nil && u.Scheme == "file" {
		path = u.Path
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config file cannot be opened (%s)", uri)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads a TOML config from r
func Parse(r io.Reader) (*Config, error) {
	t, err := LoadTree(r)
	if err != nil {
		return nil, err
	}

	c := Default()
	if err := t.Unmarshal(c); err != nil {
		return nil, err
	}
	c.Node = ValueOf(c.Node)
	c.Version = ValueOf(c.Version)
	c.App = t.Get("app")
	c.Log.Tree = t.Get("log")
	c.Stats.Tree = t.Get("stats")
	return c, nil
}

// Default returns a config which logs to stdout and has stats disabled
func Default() *Config {
	return &Config{
		Log:   Log{Level: "trace", Tree: NullTree()},
		Stats: Stats{Tree: NullTree()},
		App:   NullTree(),
	}
}
