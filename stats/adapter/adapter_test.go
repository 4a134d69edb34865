package adapter_test

import (
	"testing"

	"github.com/stairlin/rest/config"
	"github.com/stairlin/rest/stats"
	"github.com/stairlin/rest/stats/adapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultAdapters tests whether the default adapters are registered
func TestDefaultAdapters(t *testing.T) {
	assert.Equal(t, []string{"prometheus", "statsd"}, adapter.Adapters())
}

func TestNew_Off(t *testing.T) {
	s, err := adapter.New(&config.Stats{On: false, Adapter: "statsd"})
	require.NoError(t, err)
	s.Inc("anything")
	_, ok := s.(stats.Exporter)
	assert.False(t, ok)
}

func TestNew_Unknown(t *testing.T) {
	_, err := adapter.New(&config.Stats{On: true, Adapter: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestNew_Prometheus(t *testing.T) {
	s, err := adapter.New(&config.Stats{On: true, Adapter: "prometheus"})
	require.NoError(t, err)
	_, ok := s.(stats.Exporter)
	assert.True(t, ok)
}
