package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/taming/internal/config"
	"github.com/udisondev/taming/internal/data"
	"github.com/udisondev/taming/internal/db"
	"github.com/udisondev/taming/internal/event"
	"github.com/udisondev/taming/internal/game/taming"
	"github.com/udisondev/taming/internal/metrics"
)

const ConfigPath = "config/tamingserver.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load config FIRST to determine log level
	cfgPath := ConfigPath
	if p := os.Getenv("TAMING_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadTamingServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", cfgPath, err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	slog.Info("taming server starting",
		"log_level", cfg.LogLevel,
		"tick_rate", cfg.TickRate,
		"store", cfg.Store.Driver)

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	species := data.NewSpeciesTable()
	sources := []fs.FS{data.DefaultSpeciesFS()}
	if cfg.SpeciesDir != "" {
		sources = append(sources, os.DirFS(cfg.SpeciesDir))
	}
	if _, err := data.LoadSpeciesInto(ctx, species, sources...); err != nil {
		return fmt.Errorf("loading species: %w", err)
	}

	bus := event.NewBus()
	mgr := taming.NewManager(species, bus, taming.WithTickRate(cfg.TickRate))

	persistence := taming.SubscribePersistence(bus, store, cfg.SaveTimeout)
	defer persistence.Close()
	logging := taming.SubscribeLogging(bus)
	defer logging.Close()

	collectors := metrics.New(mgr)
	for _, sub := range collectors.Subscribe(bus, taming.PriorityMetrics) {
		defer bus.Unsubscribe(sub)
	}

	if _, err := mgr.LoadFromStore(ctx, store); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	loop := taming.NewTickLoop(mgr, nil, cfg.TickInterval())
	g.Go(func() error {
		slog.Info("starting taming tick loop", "interval", cfg.TickInterval())
		if err := loop.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("taming tick loop: %w", err)
		}
		return nil
	})

	if cfg.MetricsAddress != "" {
		srv := &http.Server{
			Addr:              cfg.MetricsAddress,
			Handler:           metricsMux(collectors),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			slog.Info("starting metrics server", "address", cfg.MetricsAddress)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("taming server stopped",
		"tamed", mgr.TamedCount(),
		"handlerFailures", bus.Failures())
	return nil
}

// openStore connects the configured persistence backend and returns a
// function releasing it.
func openStore(ctx context.Context, cfg config.TamingServer) (taming.Store, func(), error) {
	switch cfg.Store.Driver {
	case config.StorePostgres:
		dsn := cfg.Database.DSN()
		if err := db.RunMigrations(ctx, dsn); err != nil {
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied")

		database, err := db.New(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		slog.Info("database connected")
		return db.NewTamedAnimalRepository(database.Pool()), database.Close, nil

	case config.StoreSQLite:
		s, err := db.OpenSQLite(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		slog.Info("sqlite store opened", "path", cfg.Store.SQLitePath)
		return s, closeLogged(s), nil

	default:
		slog.Warn("using in-memory store, tamed animals are lost on restart")
		return taming.NewMemoryStore(), func() {}, nil
	}
}

func closeLogged(c io.Closer) func() {
	return func() {
		if err := c.Close(); err != nil {
			slog.Error("closing store", "err", err)
		}
	}
}

func metricsMux(c *metrics.Collectors) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", c.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
