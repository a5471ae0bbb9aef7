package analytics

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type putCall struct {
	bucket string
	key    string
	body   []byte
	meta   map[string]string
}

type fakeS3 struct {
	mu       sync.Mutex
	calls    []putCall
	attempts int
	err      error
}

func (f *fakeS3) attemptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts
}

func (f *fakeS3) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(in.Body)
	f.calls = append(f.calls, putCall{
		bucket: *in.Bucket,
		key:    *in.Key,
		body:   body,
		meta:   in.Metadata,
	})
	return &s3.PutObjectOutput{}, nil
}

func decodeLines(t *testing.T, body []byte) []PageEvent {
	t.Helper()
	var out []PageEvent
	sc := bufio.NewScanner(bytes.NewReader(body))
	for sc.Scan() {
		var ev PageEvent
		require.NoError(t, json.Unmarshal(sc.Bytes(), &ev))
		out = append(out, ev)
	}
	return out
}

func fixedClock() time.Time {
	return time.Date(2026, 10, 19, 12, 0, 0, 42, time.UTC)
}

func TestS3ArchiveFlush(t *testing.T) {
	client := &fakeS3{}
	archive := NewS3Archive(client, "bucket", "pageviews/", WithClock(fixedClock), WithMaxBatch(0))
	ctx := context.Background()

	require.NoError(t, archive.Page(ctx, PageEvent{Name: "a", Properties: Properties{URL: "/a"}}))
	require.NoError(t, archive.Page(ctx, PageEvent{Name: "b", Properties: Properties{URL: "/b?x=1"}}))
	assert.Equal(t, 2, archive.Pending())
	assert.Empty(t, client.calls)

	require.NoError(t, archive.Flush(ctx))
	assert.Equal(t, 0, archive.Pending())
	require.Len(t, client.calls, 1)

	call := client.calls[0]
	assert.Equal(t, "bucket", call.bucket)
	assert.Equal(t, "pageviews/2026/10/19/"+"1792411200000000042.jsonl", call.key)
	assert.Equal(t, "2", call.meta["event-count"])
	assert.Equal(t, []PageEvent{
		{Name: "a", Properties: Properties{URL: "/a"}},
		{Name: "b", Properties: Properties{URL: "/b?x=1"}},
	}, decodeLines(t, call.body))

	// Empty flush writes nothing.
	require.NoError(t, archive.Flush(ctx))
	assert.Len(t, client.calls, 1)
}

func TestS3ArchivePageNeverUploads(t *testing.T) {
	client := &fakeS3{}
	archive := NewS3Archive(client, "bucket", "", WithMaxBatch(2), WithClock(fixedClock))
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, archive.Page(ctx, PageEvent{Name: name}))
	}
	assert.Zero(t, client.attemptCount())
	assert.Equal(t, 3, archive.Pending())
}

func TestS3ArchiveRunFlushesFullBatch(t *testing.T) {
	client := &fakeS3{}
	archive := NewS3Archive(client, "bucket", "", WithMaxBatch(2), WithClock(fixedClock))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go archive.Run(ctx, time.Hour)

	require.NoError(t, archive.Page(ctx, PageEvent{Name: "a"}))
	require.NoError(t, archive.Page(ctx, PageEvent{Name: "b"}))
	require.Eventually(t, func() bool { return client.callCount() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, 0, archive.Pending())
}

func TestS3ArchiveOutageIsBounded(t *testing.T) {
	client := &fakeS3{err: errors.New("service unavailable")}
	archive := NewS3Archive(client, "bucket", "",
		WithMaxBatch(2), WithMaxPending(10), WithClock(fixedClock), WithArchiveLogger(quietLogger()))
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		require.NoError(t, archive.Page(ctx, PageEvent{Name: strconv.Itoa(i)}))
	}
	assert.Zero(t, client.attemptCount())
	assert.Equal(t, 10, archive.Pending())
	assert.Equal(t, 990, archive.Dropped())

	// A failed flush requeues without growing past the cap.
	require.Error(t, archive.Flush(ctx))
	require.NoError(t, archive.Page(ctx, PageEvent{Name: "1000"}))
	assert.Equal(t, 10, archive.Pending())
	assert.Equal(t, 991, archive.Dropped())

	client.mu.Lock()
	client.err = nil
	client.mu.Unlock()
	require.NoError(t, archive.Close(ctx))

	var names []string
	for _, ev := range decodeLines(t, client.calls[0].body) {
		names = append(names, ev.Name)
	}
	assert.Equal(t, []string{"991", "992", "993", "994", "995", "996", "997", "998", "999", "1000"}, names)
}

func TestS3ArchiveRunBacksOffWhileFailing(t *testing.T) {
	client := &fakeS3{err: errors.New("service unavailable")}
	archive := NewS3Archive(client, "bucket", "",
		WithMaxBatch(1), WithArchiveLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go archive.Run(ctx, time.Hour)

	require.NoError(t, archive.Page(ctx, PageEvent{Name: "a"}))
	require.Eventually(t, func() bool { return client.attemptCount() == 1 }, time.Second, time.Millisecond)

	for i := 0; i < 50; i++ {
		require.NoError(t, archive.Page(ctx, PageEvent{Name: "b"}))
	}
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, client.attemptCount())
}

func TestS3ArchiveRequeuesOnFailure(t *testing.T) {
	client := &fakeS3{err: errors.New("access denied")}
	archive := NewS3Archive(client, "bucket", "", WithMaxBatch(0), WithClock(fixedClock))
	ctx := context.Background()

	require.NoError(t, archive.Page(ctx, PageEvent{Name: "a"}))
	err := archive.Flush(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
	assert.Equal(t, 1, archive.Pending())

	require.NoError(t, archive.Page(ctx, PageEvent{Name: "b"}))
	client.err = nil
	require.NoError(t, archive.Close(ctx))

	require.Len(t, client.calls, 1)
	names := []string{}
	for _, ev := range decodeLines(t, client.calls[0].body) {
		names = append(names, ev.Name)
	}
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestS3ArchiveRunStopsOnCancel(t *testing.T) {
	client := &fakeS3{}
	archive := NewS3Archive(client, "bucket", "", WithMaxBatch(0))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		archive.Run(ctx, time.Millisecond)
		close(done)
	}()

	require.NoError(t, archive.Page(context.Background(), PageEvent{Name: "a"}))
	require.Eventually(t, func() bool { return archive.Pending() == 0 }, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
