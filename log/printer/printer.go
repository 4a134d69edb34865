package printer

import (
	"fmt"
	"sort"
	"sync"

	"github.com/stairlin/rest/config"
	"github.com/stairlin/rest/log"
	"github.com/stairlin/rest/log/printer/file"
	"github.com/stairlin/rest/log/printer/stdout"
)

func init() {
	Register(stdout.Name, stdout.New)
	Register(file.Name, file.New)
}

// Adapter returns a new printer initialised with the given config
type Adapter func(config config.Tree) (log.Printer, error)

var (
	printersMu sync.RWMutex
	printers   = make(map[string]Adapter)
)

// Printers returns the list of registered printers
func Printers() []string {
	printersMu.RLock()
	defer printersMu.RUnlock()

	var l []string
	for a := range printers {
		l = append(l, a)
	}

	sort.Strings(l)

	return l
}

// Register makes a log printer available by the provided name.
// If a printer is registered twice or if a printer is nil, it will panic.
func Register(name string, printer Adapter) {
	printersMu.Lock()
	defer printersMu.Unlock()

	if printer == nil {
		panic("logs: Registered printer is nil")
	}
	if _, dup := printers[name]; dup {
		panic("logs: Duplicated printer")
	}

	printers[name] = printer
}

// New returns a new printer instance. It falls back to stdout when no
// adapter is given.
func New(printer string, tree config.Tree) (log.Printer, error) {
	printersMu.RLock()
	defer printersMu.RUnlock()

	if tree == nil {
		tree = config.NullTree()
	}
	if printer == "" {
		return stdout.New(tree.Get(stdout.Name))
	}

	if f, ok := printers[printer]; ok {
		return f(tree.Get(printer))
	}
	return nil, fmt.Errorf("log printer not found <%s>", printer)
}
