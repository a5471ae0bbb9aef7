package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vango-dev/spanav/internal/config"
	"github.com/vango-dev/spanav/pkg/analytics"
	"github.com/vango-dev/spanav/pkg/bridge"
	"github.com/vango-dev/spanav/pkg/navigation"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the application over the navigation bridge",
		Long: `Serve the application shell, the navigation bridge and metrics.

Every page path returns the shell. The browser client connects to the
bridge, which resolves its location against the configured routes and
renders the matching view.

Endpoints:
  /                     application shell (any path)
  /_spanav/ws           navigation bridge
  /_spanav/client.js    bridge client
  /metrics              Prometheus metrics (analytics.prometheus.enabled)

Examples:
  spanav serve
  spanav serve --port=8080
  spanav serve --config=deploy/spanav.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Dev.Port = port
			}
			if host != "" {
				cfg.Dev.Host = host
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from "+config.ConfigFileName+")")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from "+config.ConfigFileName+")")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger := slog.Default().With("component", "serve")

	table, err := buildTable(cfg, logger)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	sinks, archive, err := buildSinks(ctx, cfg, registry, logger)
	if err != nil {
		return err
	}
	if archive != nil {
		go archive.Run(ctx, cfg.FlushInterval())
	}

	r := newRouter(cfg, table, analytics.Multi(sinks...), registry, logger)

	srv := &http.Server{
		Addr:              cfg.DevAddress(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	printBanner()
	success("Serving %d routes on %s", len(cfg.Routes), cfg.DevURL())
	if len(sinks) == 0 {
		warn("No analytics configured; page views are not reported")
	}
	fmt.Println()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	if archive != nil {
		if err := archive.Close(shutdownCtx); err != nil {
			logger.Error("final page view flush failed", "error", err)
		}
	}
	return nil
}

// buildSinks creates the analytics sinks enabled in cfg. The S3 archive is
// also returned on its own so the caller can run and close it.
func buildSinks(ctx context.Context, cfg *config.Config, registry *prometheus.Registry, logger *slog.Logger) ([]analytics.Sink, *analytics.S3Archive, error) {
	var sinks []analytics.Sink

	if cfg.Analytics.Log {
		sinks = append(sinks, analytics.NewLogger(logger))
	}

	if cfg.Analytics.Prometheus.Enabled {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		sinks = append(sinks, analytics.NewPrometheus(
			analytics.WithNamespace(cfg.Analytics.Prometheus.Namespace),
			analytics.WithRegistry(registry),
		))
	}

	var archive *analytics.S3Archive
	if s3cfg := cfg.Analytics.S3; s3cfg.Bucket != "" {
		var opts []func(*awsconfig.LoadOptions) error
		if s3cfg.Region != "" {
			opts = append(opts, awsconfig.WithRegion(s3cfg.Region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("loading AWS configuration: %w", err)
		}
		archive = analytics.NewS3Archive(s3.NewFromConfig(awsCfg), s3cfg.Bucket, s3cfg.Prefix,
			analytics.WithMaxBatch(s3cfg.MaxBatch),
			analytics.WithMaxPending(s3cfg.MaxPending),
			analytics.WithArchiveLogger(logger),
		)
		sinks = append(sinks, archive)
		info("Archiving page views to s3://%s/%s", s3cfg.Bucket, s3cfg.Prefix)
	}

	return sinks, archive, nil
}

func newRouter(cfg *config.Config, table *navigation.Table, sink analytics.Sink, registry *prometheus.Registry, logger *slog.Logger) http.Handler {
	opts := []bridge.Option{
		bridge.WithLogger(logger.With("component", "bridge")),
		bridge.WithAnalytics(sink),
	}
	if len(cfg.BaseRoutes) > 0 {
		opts = append(opts, bridge.WithBaseRoutes(cfg.BaseRoutes...))
	}
	if len(cfg.Dev.AllowedOrigins) > 0 {
		opts = append(opts, bridge.WithCheckOrigin(allowOrigins(cfg.Dev.AllowedOrigins)))
	}
	nav := bridge.NewServer(table, opts...)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Handle("/_spanav/ws", nav)
	r.Get("/_spanav/client.js", nav.ServeClient)
	r.Head("/_spanav/client.js", nav.ServeClient)
	if cfg.Analytics.Prometheus.Enabled {
		r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	root := cfg.Dev.Root
	r.Get("/*", shellHandler(shellData{
		Title:  cfg.Dev.Title,
		Root:   root,
		RootID: strings.TrimPrefix(root, "#"),
	}))
	return r
}

// allowOrigins accepts same-origin upgrades and the listed origins.
func allowOrigins(origins []string) func(*http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[strings.ToLower(strings.TrimSuffix(o, "/"))] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if allowed[strings.ToLower(origin)] {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}
