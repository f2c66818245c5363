package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/marksync/internal/config"
	"github.com/MrSnakeDoc/marksync/internal/httpserver"
	"github.com/MrSnakeDoc/marksync/internal/httpserver/deps"
	"github.com/MrSnakeDoc/marksync/internal/logger"
	"github.com/MrSnakeDoc/marksync/internal/notify"
	"github.com/MrSnakeDoc/marksync/internal/redis"
	"github.com/MrSnakeDoc/marksync/internal/scheduler"
	"github.com/MrSnakeDoc/marksync/internal/store/sqlite"
	"github.com/MrSnakeDoc/marksync/internal/syncengine"
	"github.com/MrSnakeDoc/marksync/internal/utils"
	"github.com/MrSnakeDoc/marksync/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	store       *sqlite.Store
	redisClient *goredis.Client
	maintenance *scheduler.Maintenance
}

// redisPinger adapts the go-redis client to deps.Pinger.
type redisPinger struct {
	client *goredis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// New wires the store, the notifier, the sync engine and the HTTP server.
func New(cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	loggerClient.Info("opening database", logger.String("path", cfg.DatabasePath))
	st, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	var (
		redisClient *goredis.Client
		publisher   notify.Publisher
		redisHealth deps.Pinger
	)
	if cfg.RedisEnabled {
		// Fail fast: a configured but unreachable Redis is a deployment error
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		redisClient, err = redis.New(context.Background(), redis.OptionsFromConfig(cfg), loggerClient)
		if err != nil {
			utils.MustClose(st, "sqlite", loggerClient)
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		loggerClient.Info("Redis initialized successfully")
		publisher = notify.NewRedisPublisher(redisClient, cfg.EventChannelPrefix)
		redisHealth = redisPinger{client: redisClient}
	} else {
		loggerClient.Info("redis disabled, change events are only logged")
		publisher = notify.NewLogPublisher(loggerClient)
	}

	engine := syncengine.New(st, publisher, loggerClient)

	d := deps.Deps{
		Logger:    loggerClient,
		StartTime: time.Now(),
		Version:   version.Version,
		Commit:    version.Commit,
		BuildDate: version.BuildDate,
		GoVersion: version.GoVersion,

		Syncer: engine,
		Store:  st,
		Redis:  redisHealth,

		OwnerHeader:  cfg.OwnerHeader,
		MaxChanges:   cfg.MaxChanges,
		MaxBodyBytes: cfg.MaxBodyBytes,

		AllowedHosts:   cfg.AllowedHosts,
		AllowedCIDRS:   cfg.AllowedCIDRS,
		AllowedOrigins: cfg.AllowedOrigins,
		TrustProxy:     cfg.TrustProxy,
		RateLimitBurst: cfg.RateLimitBurst,
		RateLimitRPM:   cfg.RateLimitRPM,
	}

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      httpserver.New(cfg, loggerClient, d),
		store:       st,
		redisClient: redisClient,
		maintenance: scheduler.NewMaintenance(st, loggerClient, cfg.MaintenanceInterval),
	}, nil
}

// Run serves until SIGINT/SIGTERM or a server error, then shuts down.
func (a *App) Run() error {
	a.logger.Infof("🚀 Starting marksync %s on %s", version.Version, a.cfg.ListenAddr)
	a.logger.Infof("marksync %s", version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer a.closeBackends()

	if err := a.maintenance.Start(ctx); err != nil {
		return fmt.Errorf("failed to start store maintenance: %w", err)
	}
	a.logger.Info("store maintenance started",
		logger.Duration("interval", a.cfg.MaintenanceInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		a.maintenance.Stop()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		a.maintenance.Stop()
		return fmt.Errorf("failed to stop server: %w", err)
	}

	// In-flight syncs have drained; the store can go.
	a.maintenance.Stop()

	a.logger.Info("✅ marksync stopped cleanly")
	return nil
}

func (a *App) closeBackends() {
	if a.redisClient != nil {
		utils.MustClose(a.redisClient, "redis", a.logger)
	}
	utils.MustClose(a.store, "sqlite", a.logger)
	_ = a.logger.Sync()
}
