// Package resolver turns Slack channel and user ids into display names.
//
// Resolution is cosmetic and best-effort. Any lookup failure degrades to the
// id itself, and both successes and fallbacks are memoized for the lifetime of
// the Resolver, so one id costs at most one lookup per process (modulo
// concurrent first lookups, which may both call out).
package resolver

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Unknown is returned for empty ids.
const Unknown = "unknown"

// DefaultTimeout bounds each lookup.
const DefaultTimeout = 10 * time.Second

// Directory is the external lookup API. slackapi.Client satisfies it.
type Directory interface {
	ChannelName(ctx context.Context, channelID string) (string, error)
	UserName(ctx context.Context, userID string) (string, error)
}

// Resolution is the outcome of one resolve call. Err is non-nil only when
// Name is a fallback produced by a failed lookup in this call; cached
// fallbacks come back with Cached set and no Err.
type Resolution struct {
	ID     string
	Name   string
	Cached bool
	Err    error
}

// Resolved reports whether Name is a real display name rather than the id.
func (r Resolution) Resolved() bool {
	return r.Name != r.ID && r.ID != ""
}

// Resolver owns the channel and user name caches.
type Resolver struct {
	dir     Directory
	timeout time.Duration
	logger  *slog.Logger

	channels *nameCache
	users    *nameCache
}

// New builds a Resolver. A non-positive timeout means DefaultTimeout.
func New(dir Directory, timeout time.Duration, logger *slog.Logger) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		dir:      dir,
		timeout:  timeout,
		logger:   logger,
		channels: newNameCache(),
		users:    newNameCache(),
	}
}

type lookupFunc func(ctx context.Context, id string) (string, error)

// ResolveChannel resolves a channel id via conversations.info.
func (r *Resolver) ResolveChannel(ctx context.Context, channelID string) Resolution {
	return r.resolve(ctx, r.channels, "conversations.info", "channel_id", channelID, r.dir.ChannelName)
}

// ResolveUser resolves a user id via users.info.
func (r *Resolver) ResolveUser(ctx context.Context, userID string) Resolution {
	return r.resolve(ctx, r.users, "users.info", "user_id", userID, r.dir.UserName)
}

// ChannelName returns the channel's display name, or the id on failure.
func (r *Resolver) ChannelName(ctx context.Context, channelID string) string {
	return r.ResolveChannel(ctx, channelID).Name
}

// UserName returns the user's display name, or the id on failure.
func (r *Resolver) UserName(ctx context.Context, userID string) string {
	return r.ResolveUser(ctx, userID).Name
}

func (r *Resolver) resolve(ctx context.Context, cache *nameCache, method, idField, id string, lookup lookupFunc) Resolution {
	if id == "" {
		return Resolution{Name: Unknown}
	}
	if name, ok := cache.get(id); ok {
		return Resolution{ID: id, Name: name, Cached: true}
	}

	lctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	name, err := lookup(lctx, id)
	if err != nil {
		r.logger.Warn("slack "+method+" failed",
			idField, id,
			"error", err.Error(),
		)
		cache.put(id, id)
		return Resolution{ID: id, Name: id, Err: err}
	}

	cache.put(id, name)
	return Resolution{ID: id, Name: name}
}

// CacheSizes reports how many channel and user ids are memoized.
func (r *Resolver) CacheSizes() (channels, users int) {
	return r.channels.len(), r.users.len()
}

// nameCache is an id -> name map that never expires.
type nameCache struct {
	mu    sync.RWMutex
	names map[string]string
}

func newNameCache() *nameCache {
	return &nameCache{names: make(map[string]string)}
}

func (c *nameCache) get(id string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	name, ok := c.names[id]
	return name, ok
}

func (c *nameCache) put(id, name string) {
	c.mu.Lock()
	c.names[id] = name
	c.mu.Unlock()
}

func (c *nameCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.names)
}
