package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/perceptlab/staircase"
	"github.com/perceptlab/staircase/internal/logging"
	httpadapter "github.com/perceptlab/staircase/pkg/adapters/http"
	redisadapter "github.com/perceptlab/staircase/pkg/adapters/redis"
	"github.com/perceptlab/staircase/pkg/observability"
	"github.com/perceptlab/staircase/pkg/session"
)

// ServeOptions configures the session server.
type ServeOptions struct {
	Addr          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Debug         bool
}

const shutdownTimeout = 5 * time.Second

// RunServe starts the HTTP session API with Prometheus metrics and,
// optionally, a Redis data sink per session.
func RunServe(opts ServeOptions) error {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	logger := logging.New(level)

	registry := prometheus.NewRegistry()
	collector := observability.NewCollector(registry)

	managerOpts := []session.Option{
		session.WithLogger(logger),
		session.WithDefaults(staircase.WithLifecycleHooks(collector.Hooks())),
	}
	if opts.RedisAddr != "" {
		managerOpts = append(managerOpts, session.WithDefaultsFunc(func(id string) []staircase.Option {
			sink := redisadapter.New(opts.RedisAddr, opts.RedisPassword, opts.RedisDB, id)
			return []staircase.Option{staircase.WithSink(sink)}
		}))
		logger.Info("using redis data sink", "addr", opts.RedisAddr)
	}
	manager := session.NewManager(managerOpts...)

	r := chi.NewRouter()
	r.Mount("/", httpadapter.NewHandler(manager, httpadapter.WithLogger(logger)))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:    opts.Addr,
		Handler: r,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("session server listening", "addr", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case <-sigCtx.Done():
		logger.Info("shutting down", "signal", fmt.Sprint(sigCtx.Signal()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown did not complete", "error", err)
			return srv.Close()
		}
		logger.Info("server stopped")
		return nil
	}
}
