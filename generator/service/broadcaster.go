package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/yaron8/netwatch/logi"
	"github.com/yaron8/netwatch/telemetrics"
)

// Network is the simulated state driven by the broadcaster.
type Network interface {
	Step()
	Snapshot() telemetrics.Snapshot
}

// Broadcaster advances the network once per interval and pushes a network_update
// to every connected client. It starts lazily, on the first connection.
type Broadcaster struct {
	network  Network
	hub      *Hub
	interval time.Duration
	once     sync.Once
	done     chan struct{}
	logger   *slog.Logger
}

func NewBroadcaster(network Network, hub *Hub, interval time.Duration) *Broadcaster {
	return &Broadcaster{
		network:  network,
		hub:      hub,
		interval: interval,
		done:     make(chan struct{}),
		logger:   logi.GetLogger(),
	}
}

// Start launches the loop once; later calls are no-ops.
func (b *Broadcaster) Start(ctx context.Context) {
	b.once.Do(func() {
		b.logger.Info("starting network update stream", "interval", b.interval)
		go b.run(ctx)
	})
}

// Done is closed when the loop exits.
func (b *Broadcaster) Done() <-chan struct{} {
	return b.done
}

func (b *Broadcaster) run(ctx context.Context) {
	defer close(b.done)
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		b.tick()
		select {
		case <-ctx.Done():
			b.logger.Info("network update stream stopped")
			return
		case <-ticker.C:
		}
	}
}

func (b *Broadcaster) tick() {
	b.network.Step()
	env, err := telemetrics.NewEnvelope(telemetrics.EventNetworkUpdate, b.network.Snapshot())
	if err != nil {
		b.logger.Error("failed to encode snapshot", "error", err)
		return
	}
	delivered := b.hub.Broadcast(env)
	b.logger.Debug("network update sent", "clients", delivered)
}
