package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/spanav/internal/config"
	"github.com/vango-dev/spanav/pkg/analytics"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMetrics(t *testing.T, cfg *config.Config) (*prometheus.Registry, analytics.Sink) {
	t.Helper()
	registry := prometheus.NewRegistry()
	sinks, archive, err := buildSinks(context.Background(), cfg, registry, quietLogger())
	require.NoError(t, err)
	require.Nil(t, archive)
	return registry, analytics.Multi(sinks...)
}
