package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/yungbote/journey-backend/internal/data/db"
	"github.com/yungbote/journey-backend/internal/data/repos"
	apphttp "github.com/yungbote/journey-backend/internal/http"
	"github.com/yungbote/journey-backend/internal/observability"
	"github.com/yungbote/journey-backend/internal/platform/logger"
	"github.com/yungbote/journey-backend/internal/realtime"
	"github.com/yungbote/journey-backend/internal/realtime/bus"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	Log      *logger.Logger
	DB       *db.Service
	Cfg      Config
	Repos    repos.Set
	Services Services
	Clients  Clients
	Metrics  *observability.Metrics
	SSEHub   *realtime.SSEHub
	Center   *realtime.Center
	Server   *apphttp.Server

	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// NewLogger builds the process logger from LOG_MODE.
func NewLogger() (*logger.Logger, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

func New(ctx context.Context) (*App, error) {
	log, err := NewLogger()
	if err != nil {
		return nil, err
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})
	tracing := ""
	if otelShutdown != nil {
		tracing = "journey-backend"
	}
	metrics := observability.Init(log)

	dbService, err := db.Open(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := db.Migrate(dbService.DB()); err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	metrics.RegisterDBStats(log, dbService.DB(), dbService.Driver())

	clients, err := wireClients(log, cfg)
	if err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, err
	}

	hub := realtime.NewSSEHub(log, realtime.WithClientGauge(metrics.SetSSEClients))
	var emitter realtime.Emitter = &realtime.HubEmitter{Hub: hub}
	if clients.SSEBus != nil {
		emitter = &bus.Emitter{Bus: clients.SSEBus, Fallback: emitter}
	}
	center := realtime.NewCenter(log, emitter, realtime.WithNotifyHook(func(level realtime.ToastLevel) {
		metrics.IncNotification(string(level))
	}))

	reposet := repos.NewSet(dbService.DB(), log)
	serviceset, err := wireServices(dbService.DB(), log, cfg, reposet, center, metrics)
	if err != nil {
		clients.Close()
		_ = dbService.Close()
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, dbService.DB(), serviceset, hub, center)
	middleware := wireMiddleware(log, serviceset)
	server := wireServer(log, cfg, metrics, tracing, handlerset, middleware)

	return &App{
		Log:          log,
		DB:           dbService,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Clients:      clients,
		Metrics:      metrics,
		SSEHub:       hub,
		Center:       center,
		Server:       server,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches the background workers: the expired-token janitor and, when
// Redis is configured, the bus forwarder and its health collector.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	go runTokenJanitor(ctx, a.Log, a.Repos.UserToken, a.Cfg.TokenJanitorInterval, time.Now)

	if a.Clients.SSEBus != nil {
		if err := a.Clients.SSEBus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
			return fmt.Errorf("start SSE forwarder: %w", err)
		}
		a.Metrics.StartRedisCollector(ctx, a.Log, bus.Client(a.Clients.SSEBus))
	}
	return nil
}

func (a *App) Run(addr string) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("HTTP server listening", "addr", addr)
	return a.Server.Run(addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.Server.Shutdown(ctx); err != nil {
		a.Log.Warn("http shutdown", "error", err)
	}
	if a.Services.unsubscribe != nil {
		a.Services.unsubscribe()
	}
	a.Clients.Close()
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown", "error", err)
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Log.Warn("db close", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
