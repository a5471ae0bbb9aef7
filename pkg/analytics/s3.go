package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PutObjectAPI is the part of *s3.Client the archive uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archive buffers page events and writes them to S3 as JSON lines, one
// object per flush.
//
// Example usage:
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	archive := analytics.NewS3Archive(s3.NewFromConfig(cfg), "my-bucket", "pageviews/")
//	go archive.Run(ctx, time.Minute)
//	defer archive.Close(context.Background())
type S3Archive struct {
	client     PutObjectAPI
	bucket     string
	prefix     string
	maxBatch   int
	maxPending int
	now        func() time.Time
	logger     *slog.Logger
	full       chan struct{}

	mu      sync.Mutex
	pending []PageEvent
	dropped int
}

// S3Option configures an S3Archive.
type S3Option func(*S3Archive)

// WithMaxBatch asks Run to flush as soon as n events are pending. Zero
// disables size based flushing.
func WithMaxBatch(n int) S3Option {
	return func(a *S3Archive) {
		a.maxBatch = n
	}
}

// WithMaxPending caps the buffer at n events. When the cap is reached the
// oldest events are dropped. Zero or less means no cap.
func WithMaxPending(n int) S3Option {
	return func(a *S3Archive) {
		a.maxPending = n
	}
}

// WithClock overrides the time source used for object keys.
func WithClock(now func() time.Time) S3Option {
	return func(a *S3Archive) {
		a.now = now
	}
}

// WithArchiveLogger sets the logger used for background flush failures.
func WithArchiveLogger(logger *slog.Logger) S3Option {
	return func(a *S3Archive) {
		a.logger = logger
	}
}

// NewS3Archive creates an archive writing under bucket/prefix.
func NewS3Archive(client PutObjectAPI, bucket, prefix string, opts ...S3Option) *S3Archive {
	a := &S3Archive{
		client:     client,
		bucket:     bucket,
		prefix:     prefix,
		maxBatch:   500,
		maxPending: 10000,
		now:        time.Now,
		logger:     slog.Default().With("component", "analytics.s3"),
		full:       make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Page implements Sink. The event is only buffered; uploads happen in Run,
// Flush and Close so navigation never waits on S3. A full batch wakes Run.
func (a *S3Archive) Page(_ context.Context, event PageEvent) error {
	a.mu.Lock()
	a.pending = append(a.pending, event)
	a.trimLocked()
	full := a.maxBatch > 0 && len(a.pending) >= a.maxBatch
	a.mu.Unlock()

	if full {
		select {
		case a.full <- struct{}{}:
		default:
		}
	}
	return nil
}

// Dropped returns how many events were discarded because the buffer was at
// its cap.
func (a *S3Archive) Dropped() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dropped
}

// trimLocked drops the oldest events beyond maxPending. a.mu must be held.
func (a *S3Archive) trimLocked() {
	if a.maxPending <= 0 || len(a.pending) <= a.maxPending {
		return
	}
	n := len(a.pending) - a.maxPending
	a.pending = append([]PageEvent(nil), a.pending[n:]...)
	before := a.dropped
	a.dropped += n
	// Warn on the first drop and then once per maxPending dropped events.
	if before == 0 || before/a.maxPending != a.dropped/a.maxPending {
		a.logger.Warn("page event buffer full, dropping oldest events",
			"total_dropped", a.dropped, "max_pending", a.maxPending)
	}
}

// Pending returns the number of buffered events.
func (a *S3Archive) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}

// Flush writes all buffered events as a single object. Nothing is written
// when the buffer is empty. On failure the events are put back at the front
// of the buffer so the next flush retries them.
func (a *S3Archive) Flush(ctx context.Context) error {
	a.mu.Lock()
	batch := a.pending
	a.pending = nil
	a.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, ev := range batch {
		if err := enc.Encode(ev); err != nil {
			a.requeue(batch)
			return fmt.Errorf("encoding page event: %w", err)
		}
	}

	now := a.now().UTC()
	key := a.prefix + now.Format("2006/01/02/") + strconv.FormatInt(now.UnixNano(), 10) + ".jsonl"

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/x-ndjson"),
		Metadata: map[string]string{
			"event-count": strconv.Itoa(len(batch)),
		},
	})
	if err != nil {
		a.requeue(batch)
		return fmt.Errorf("s3 put %s: %w", key, err)
	}
	return nil
}

func (a *S3Archive) requeue(batch []PageEvent) {
	a.mu.Lock()
	a.pending = append(batch, a.pending...)
	a.trimLocked()
	a.mu.Unlock()
}

// Run flushes every interval, and whenever Page fills a batch, until ctx is
// done. Flush errors are logged.
func (a *S3Archive) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// After a failed flush only the ticker retries, so an outage costs one
	// upload attempt per interval.
	failing := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-a.full:
			if failing {
				continue
			}
		}
		err := a.Flush(ctx)
		failing = err != nil
		if err != nil {
			a.logger.Error("page event flush failed", "error", err, "pending", a.Pending())
		}
	}
}

// Close flushes whatever is still buffered.
func (a *S3Archive) Close(ctx context.Context) error {
	return a.Flush(ctx)
}
