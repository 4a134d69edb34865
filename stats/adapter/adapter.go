package adapter

import (
	"fmt"
	"sort"
	"sync"

	"github.com/stairlin/rest/config"
	"github.com/stairlin/rest/stats"
	"github.com/stairlin/rest/stats/adapter/prometheus"
	"github.com/stairlin/rest/stats/adapter/statsd"
)

func init() {
	Register(statsd.Name, statsd.New)
	Register(prometheus.Name, prometheus.New)
}

// Adapter returns a new stats instance initialised with the given config
type Adapter func(tree config.Tree) (stats.Stats, error)

// New returns the stats adapter selected by the config. A null adapter is
// returned when stats are turned off.
func New(c *config.Stats) (stats.Stats, error) {
	if !c.On {
		return Null(), nil
	}

	tree := c.Tree
	if tree == nil {
		tree = config.NullTree()
	}
	return newStats(c.Adapter, tree.Get(c.Adapter))
}

var (
	adaptersMu sync.RWMutex
	adapters   = make(map[string]Adapter)
)

// Adapters returns the list of registered adapters
func Adapters() []string {
	adaptersMu.RLock()
	defer adaptersMu.RUnlock()

	var l []string
	for a := range adapters {
		l = append(l, a)
	}

	sort.Strings(l)

	return l
}

// Register makes a stats adapter available by the provided name.
// If an adapter is registered twice or if an adapter is nil, it will panic.
func Register(name string, adapter Adapter) {
	adaptersMu.Lock()
	defer adaptersMu.Unlock()

	if adapter == nil {
		panic("stats: Registered adapter is nil")
	}
	if _, dup := adapters[name]; dup {
		panic("stats: Duplicated adapter")
	}

	adapters[name] = adapter
}

func newStats(adapter string, tree config.Tree) (stats.Stats, error) {
	adaptersMu.RLock()
	defer adaptersMu.RUnlock()

	if f, ok := adapters[adapter]; ok {
		return f(tree)
	}

	return nil, fmt.Errorf("stats adapter not found <%s>", adapter)
}
