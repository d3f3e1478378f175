package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yaron8/netwatch/dashboard/config"
	"github.com/yaron8/netwatch/dashboard/dao"
	"github.com/yaron8/netwatch/dashboard/etl"
	"github.com/yaron8/netwatch/dashboard/feed"
	"github.com/yaron8/netwatch/dashboard/service"
	"github.com/yaron8/netwatch/dashboard/session"
	"github.com/yaron8/netwatch/dashboard/tui"
	"github.com/yaron8/netwatch/logi"
)

type Bootstrap struct {
	config      *config.Config
	redisClient *redis.Client
	feed        *feed.Client
	session     *session.Session
	etl         *etl.ETL
	apiServer   *service.APIServer
	tui         *tui.TUI // nil in log mode
	logger      *slog.Logger
}

func NewBootstrap() (*Bootstrap, error) {
	// Load configuration
	cfg := config.NewConfig()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// The terminal belongs to the TUI, so only log mode mirrors logs to stderr
	logger, err := logi.NewLog(&logi.Config{
		LogFileName: "dashboard.log",
		Stderr:      cfg.UIMode == config.UIModeLog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: "", // no password set
		DB:       0,  // use default DB
		Protocol: 2,
	})
	store := dao.NewDAOSnapshots(redisClient, cfg.Redis.TTL)

	var (
		renderer session.Renderer
		ui       *tui.TUI
	)
	if cfg.UIMode == config.UIModeTUI {
		ui = tui.New()
		renderer = ui
	} else {
		renderer = tui.NewLogRenderer()
	}

	sess := session.New(session.Options{
		HistoryPoints: cfg.HistoryPoints,
		Renderer:      renderer,
		Store:         store,
	})

	feedClient, err := feed.NewClient(feed.Options{
		URL:            cfg.ETL.GeneratorURL,
		ReconnectDelay: cfg.Feed.ReconnectDelay,
		JWTSecret:      cfg.Feed.JWTSecret,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create feed client: %w", err)
	}

	return &Bootstrap{
		config:      cfg,
		redisClient: redisClient,
		feed:        feedClient,
		session:     sess,
		etl:         etl.NewETL(store, cfg.ETL.Interval, cfg.ETL.GeneratorURL),
		apiServer:   service.NewAPIServer(cfg, store, sess),
		tui:         ui,
		logger:      logger,
	}, nil
}

// Start runs the dashboard until SIGINT/SIGTERM or, in tui mode, until the user quits.
func (b *Bootstrap) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := b.redisClient.Ping(ctx).Err(); err != nil {
		b.logger.Warn("Redis unreachable, persistence disabled until it recovers", "error", err)
	}

	var wg sync.WaitGroup
	events := make(chan feed.Event)
	wg.Add(3)
	go func() { defer wg.Done(); b.feed.Run(ctx, events) }()
	go func() { defer wg.Done(); b.session.Run(ctx, events) }()
	go func() { defer wg.Done(); b.etl.Run(ctx) }()

	errCh := make(chan error, 2)
	go func() { errCh <- b.apiServer.Start() }()
	if b.tui != nil {
		go func() { errCh <- b.tui.Run(ctx) }()
	}

	var runErr error
	select {
	case runErr = <-errCh:
	case <-ctx.Done():
	}
	stop()

	b.logger.Info("shutting down dashboard")
	if b.tui != nil {
		b.tui.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.apiServer.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	wg.Wait()
	_ = b.redisClient.Close()
	return runErr
}
