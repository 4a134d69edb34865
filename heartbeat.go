package rest

import (
	"time"

	"github.com/stairlin/rest/ctx/app"
)

const heartbeatInterval = 5 * time.Second

// heartbeat sends a heartbeat to stats periodically
type heartbeat struct {
	ctx      app.Ctx
	interval time.Duration
	stop     chan struct{}
}

func newHeartbeat(ctx app.Ctx, interval time.Duration) *heartbeat {
	return &heartbeat{
		ctx:      ctx,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start sends a heartbeat until it gets stopped
func (h *heartbeat) Start() {
	tick := time.NewTicker(h.interval)
	defer tick.Stop()

	tags := map[string]string{
		"type": h.ctx.Name(),
	}
	for {
		select {
		case <-h.stop:
			return
		case <-tick.C:
			h.ctx.Stats().Histogram("heartbeat", 1, tags)
		}
	}
}

// Stop stops sending a heartbeat
func (h *heartbeat) Stop() {
	close(h.stop)
}
