package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yaron8/netwatch/generator/config"
	"github.com/yaron8/netwatch/generator/network"
	"github.com/yaron8/netwatch/generator/service"
	"github.com/yaron8/netwatch/logi"
)

type Bootstrap struct {
	config    *config.Config
	state     *network.State
	apiServer *service.APIServer
	cron      *cron.Cron
	logger    *slog.Logger
}

func NewBootstrap() (*Bootstrap, error) {
	logger, err := logi.NewLog(&logi.Config{LogFileName: "generator.log", Stderr: true})
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	state := network.NewState(network.Options{
		Validators:        cfg.Network.Validators,
		SampleSize:        cfg.Network.SampleSize,
		StartRound:        cfg.Network.StartRound,
		TotalNetworkNodes: cfg.Network.TotalNetworkNodes,
		Seed:              cfg.Network.Seed,
	})

	c := cron.New()
	if _, err := c.AddFunc(cfg.ResetSchedule, state.ResetDailyCounters); err != nil {
		return nil, fmt.Errorf("invalid resetSchedule %q: %w", cfg.ResetSchedule, err)
	}

	return &Bootstrap{
		config:    cfg,
		state:     state,
		apiServer: service.NewAPIServer(cfg, state),
		cron:      c,
		logger:    logger,
	}, nil
}

// StartServer runs the generator until SIGINT/SIGTERM.
func (b *Bootstrap) StartServer() error {
	b.cron.Start()
	defer b.cron.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- b.apiServer.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	b.logger.Info("shutting down generator")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return b.apiServer.Shutdown(shutdownCtx)
}
