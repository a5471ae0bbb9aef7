package analytics

import (
	"context"
	"errors"
	"log/slog"
)

// Properties carries the details of a page event.
type Properties struct {
	// URL is the lowercased pathname followed by the lowercased query string.
	URL string `json:"url"`
}

// PageEvent is reported once per successful resolve.
type PageEvent struct {
	// Name is the matched route key, not the concrete path.
	Name string `json:"name"`

	Properties Properties `json:"properties"`
}

// Sink receives page events.
type Sink interface {
	Page(ctx context.Context, event PageEvent) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, event PageEvent) error

// Page implements Sink.
func (f SinkFunc) Page(ctx context.Context, event PageEvent) error {
	return f(ctx, event)
}

type multi []Sink

// Multi returns a sink delivering every event to each of sinks in order.
// All sinks are called even if one fails; the errors are joined.
func Multi(sinks ...Sink) Sink {
	out := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (m multi) Page(ctx context.Context, event PageEvent) error {
	var errs []error
	for _, s := range m {
		if err := s.Page(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Logger is a sink writing page events to a structured logger.
type Logger struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLogger creates a log sink at Info level. A nil logger uses slog.Default().
func NewLogger(logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{logger: logger, level: slog.LevelInfo}
}

// WithLevel sets the level page events are logged at.
func (l *Logger) WithLevel(level slog.Level) *Logger {
	l.level = level
	return l
}

// Page implements Sink.
func (l *Logger) Page(ctx context.Context, event PageEvent) error {
	l.logger.Log(ctx, l.level, "page view",
		"route", event.Name,
		"url", event.Properties.URL,
	)
	return nil
}
