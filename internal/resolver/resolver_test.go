package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/slackrelay/internal/slackapi"
)

// fakeDirectory counts calls and answers from fixed tables.
type fakeDirectory struct {
	channels map[string]string
	users    map[string]string
	err      error
	delay    time.Duration

	channelCalls atomic.Int32
	userCalls    atomic.Int32
}

func (f *fakeDirectory) ChannelName(ctx context.Context, id string) (string, error) {
	f.channelCalls.Add(1)
	return f.answer(ctx, f.channels, id)
}

func (f *fakeDirectory) UserName(ctx context.Context, id string) (string, error) {
	f.userCalls.Add(1)
	return f.answer(ctx, f.users, id)
}

func (f *fakeDirectory) answer(ctx context.Context, table map[string]string, id string) (string, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	name, ok := table[id]
	if !ok {
		return "", &slackapi.Error{Method: "lookup", Code: "not_found"}
	}
	return name, nil
}

func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, nil)), &buf
}

func TestResolveChannel_CachesSuccess(t *testing.T) {
	dir := &fakeDirectory{channels: map[string]string{"C1": "ops"}}
	logger, _ := newTestLogger()
	r := New(dir, time.Second, logger)

	first := r.ResolveChannel(context.Background(), "C1")
	assert.Equal(t, "ops", first.Name)
	assert.True(t, first.Resolved())
	assert.False(t, first.Cached)
	assert.NoError(t, first.Err)

	second := r.ResolveChannel(context.Background(), "C1")
	assert.Equal(t, "ops", second.Name)
	assert.True(t, second.Cached)

	assert.Equal(t, int32(1), dir.channelCalls.Load())
}

func TestResolve_EmptyIDIsUnknownWithoutCall(t *testing.T) {
	dir := &fakeDirectory{}
	r := New(dir, time.Second, nil)

	assert.Equal(t, Unknown, r.ChannelName(context.Background(), ""))
	assert.Equal(t, Unknown, r.UserName(context.Background(), ""))
	assert.Equal(t, int32(0), dir.channelCalls.Load())
	assert.Equal(t, int32(0), dir.userCalls.Load())

	channels, users := r.CacheSizes()
	assert.Zero(t, channels)
	assert.Zero(t, users)
}

func TestResolveUser_FallbackIsMemoized(t *testing.T) {
	dir := &fakeDirectory{err: &slackapi.Error{Method: "users.info", Code: "missing_scope"}}
	logger, buf := newTestLogger()
	r := New(dir, time.Second, logger)

	first := r.ResolveUser(context.Background(), "U1")
	assert.Equal(t, "U1", first.Name)
	assert.False(t, first.Resolved())
	var apiErr *slackapi.Error
	require.ErrorAs(t, first.Err, &apiErr)
	assert.Equal(t, "missing_scope", apiErr.Code)

	// Recovery on the API side is not observed within the process lifetime.
	dir.err = nil
	dir.users = map[string]string{"U1": "jdoe"}

	second := r.ResolveUser(context.Background(), "U1")
	assert.Equal(t, "U1", second.Name)
	assert.True(t, second.Cached)
	assert.Equal(t, int32(1), dir.userCalls.Load())

	var line map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.Split(strings.TrimSpace(buf.String()), "\n")[0]), &line))
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, "U1", line["user_id"])
	assert.Contains(t, line["error"], "missing_scope")
}

func TestResolve_TimeoutFallsBack(t *testing.T) {
	dir := &fakeDirectory{channels: map[string]string{"C1": "ops"}, delay: time.Second}
	logger, _ := newTestLogger()
	r := New(dir, 20*time.Millisecond, logger)

	res := r.ResolveChannel(context.Background(), "C1")
	assert.Equal(t, "C1", res.Name)
	assert.True(t, errors.Is(res.Err, context.DeadlineExceeded))
}

func TestResolve_ChannelAndUserCachesAreSeparate(t *testing.T) {
	dir := &fakeDirectory{
		channels: map[string]string{"X1": "chan"},
		users:    map[string]string{"X1": "person"},
	}
	r := New(dir, time.Second, nil)

	assert.Equal(t, "chan", r.ChannelName(context.Background(), "X1"))
	assert.Equal(t, "person", r.UserName(context.Background(), "X1"))
	assert.Equal(t, "chan", r.ChannelName(context.Background(), "X1"))
	assert.Equal(t, int32(1), dir.channelCalls.Load())
	assert.Equal(t, int32(1), dir.userCalls.Load())
}

func TestResolve_ConcurrentCallsAreSafe(t *testing.T) {
	dir := &fakeDirectory{users: map[string]string{"U1": "a", "U2": "b"}}
	r := New(dir, time.Second, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := "U1"
			if i%2 == 0 {
				id = "U2"
			}
			name := r.UserName(context.Background(), id)
			assert.Contains(t, []string{"a", "b"}, name)
		}(i)
	}
	wg.Wait()

	_, users := r.CacheSizes()
	assert.Equal(t, 2, users)
	// Racing first lookups may duplicate, never more than one per goroutine.
	assert.LessOrEqual(t, dir.userCalls.Load(), int32(50))
}
