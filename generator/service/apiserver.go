package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/yaron8/netwatch/generator/config"
	"github.com/yaron8/netwatch/generator/metrics"
	"github.com/yaron8/netwatch/generator/network"
	"github.com/yaron8/netwatch/logi"
)

type APIServer struct {
	config        *config.Config
	state         *network.State
	csvValidators *metrics.CSVValidators
	hub           *Hub
	broadcaster   *Broadcaster
	server        *http.Server
	lifeCtx       context.Context
	lifeCancel    context.CancelFunc
	logger        *slog.Logger
}

func NewAPIServer(config *config.Config, state *network.State) *APIServer {
	lifeCtx, lifeCancel := context.WithCancel(context.Background())
	hub := NewHub()
	api := &APIServer{
		config:        config,
		state:         state,
		csvValidators: metrics.NewCSVValidators(state, config.CacheTTL),
		hub:           hub,
		broadcaster:   NewBroadcaster(state, hub, config.TickInterval),
		lifeCtx:       lifeCtx,
		lifeCancel:    lifeCancel,
		logger:        logi.GetLogger(),
	}
	hub.OnConnect(func() { api.broadcaster.Start(api.lifeCtx) })
	return api
}

// Handler builds the routed, logged handler. Exposed for in-process tests.
func (api *APIServer) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			api.logger.Error("Error writing health check response", "error", err)
		}
	})

	mux.Handle("/socket", api.requireToken(http.HandlerFunc(api.hub.HandleSocket)))
	mux.HandleFunc("/snapshot", api.snapshotHandler)
	mux.HandleFunc("/distribution", api.distributionHandler)
	mux.HandleFunc("/validators.csv", api.validatorsHandler)

	return api.middleware(mux)
}

// Start initializes and starts the HTTP server
func (api *APIServer) Start() error {
	api.logger.Info("Generator APIServer starting", "port", api.config.Port)

	api.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", api.config.Port),
		Handler:      api.Handler(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if err := api.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		api.logger.Error("Server failed to start", "error", err, "port", api.config.Port)
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown stops the update stream, drops all clients and stops the HTTP server.
func (api *APIServer) Shutdown(ctx context.Context) error {
	api.lifeCancel()
	api.hub.Close()
	if api.server == nil {
		return nil
	}
	return api.server.Shutdown(ctx)
}
