package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/yaron8/netwatch/dashboard/config"
	"github.com/yaron8/netwatch/dashboard/session"
	"github.com/yaron8/netwatch/logi"
	"github.com/yaron8/netwatch/telemetrics"
)

// Store is the read side of the dashboard's Redis state.
type Store interface {
	GetLatest(ctx context.Context) (telemetrics.Snapshot, error)
	GetHistory(ctx context.Context) ([]telemetrics.Sample, error)
	GetValidators(ctx context.Context) ([]telemetrics.Validator, error)
	GetValidator(ctx context.Context, id string) (telemetrics.Validator, error)
	GetLastUpdateTime(ctx context.Context) (int64, error)
}

type FrameSource interface {
	Frame() session.Frame
}

type APIServer struct {
	config *config.Config
	server *http.Server
	store  Store
	frames FrameSource
	logger *slog.Logger
}

func NewAPIServer(config *config.Config, store Store, frames FrameSource) *APIServer {
	api := &APIServer{
		config: config,
		store:  store,
		frames: frames,
		logger: logi.GetLogger(),
	}
	api.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      api.Handler(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return api
}

func (api *APIServer) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			api.logger.Error("Error writing health check response", "error", err)
		}
	})

	mux.HandleFunc("GET /dashboard/frame", api.FrameHandler)

	// Telemetry endpoints
	mux.HandleFunc("GET /telemetry/latest", api.LatestHandler)
	mux.HandleFunc("GET /telemetry/history", api.HistoryHandler)
	mux.HandleFunc("GET /telemetry/validators", api.ListValidatorsHandler)
	mux.HandleFunc("GET /telemetry/validator", api.GetValidatorHandler)

	return mux
}

// Start initializes and starts the HTTP server
func (api *APIServer) Start() error {
	api.logger.Info("Dashboard APIServer starting", "port", api.config.Port)

	if err := api.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		api.logger.Error("Server failed to start", "error", err, "port", api.config.Port)
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (api *APIServer) Shutdown(ctx context.Context) error {
	return api.server.Shutdown(ctx)
}
