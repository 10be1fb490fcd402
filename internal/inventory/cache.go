// Package inventory caches the set of installed applications. Refreshes swap
// the snapshot atomically so in-flight readers keep a fully consistent view;
// a failed scan never disturbs the last good snapshot.
package inventory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/voxlaunch/voxlaunch/internal/logging"
	"github.com/voxlaunch/voxlaunch/internal/types"
)

// AliasSource supplies the user-configurable alias table.
type AliasSource interface {
	Aliases() map[string][]string
}

// Cache owns the inventory snapshot and its refresh lifecycle.
type Cache struct {
	scanner Scanner
	aliases AliasSource
	ttl     time.Duration
	logger  *logging.Logger

	snap atomic.Pointer[types.Snapshot]
	gen  atomic.Uint64

	refreshMu sync.Mutex // serializes Refresh calls

	hookMu sync.Mutex
	hooks  []func()
}

// NewCache creates an inventory cache. The cache starts empty; call Refresh
// before the first resolution.
func NewCache(scanner Scanner, aliases AliasSource, ttl time.Duration, logger *logging.Logger) *Cache {
	return &Cache{
		scanner: scanner,
		aliases: aliases,
		ttl:     ttl,
		logger:  logger,
	}
}

// Refresh re-scans the host and installs a new snapshot. On scan failure the
// prior snapshot stays untouched and the error is returned; the caller
// decides whether stale data is acceptable.
func (c *Cache) Refresh(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	apps, err := c.scanner.Scan(ctx)
	if err != nil {
		c.logger.Warn("application scan failed, keeping prior snapshot", zap.Error(err))
		return fmt.Errorf("inventory scan failed: %w", err)
	}

	snap := &types.Snapshot{
		Apps:       apps,
		TakenAt:    time.Now(),
		Generation: c.gen.Add(1),
	}
	c.snap.Store(snap)

	c.logger.Info("inventory refreshed",
		zap.Int("apps", len(apps)),
		zap.Uint64("generation", snap.Generation))

	for _, fn := range c.snapshotHooks() {
		fn()
	}
	return nil
}

// Valid reports whether the current snapshot is within its freshness window.
// A stale snapshot is still usable; callers should refresh before trusting it
// for a fresh resolution.
func (c *Cache) Valid() bool {
	snap := c.snap.Load()
	if snap == nil {
		return false
	}
	return time.Since(snap.TakenAt) < c.ttl
}

// Snapshot returns the current snapshot, or nil if no scan has ever
// succeeded. The returned value is immutable.
func (c *Cache) Snapshot() *types.Snapshot {
	return c.snap.Load()
}

// Aliases returns the merged alias table: the configured aliases plus a
// trivial own-name entry for every application in the snapshot.
func (c *Cache) Aliases() map[string][]string {
	merged := c.aliases.Aliases()

	snap := c.snap.Load()
	if snap == nil {
		return merged
	}
	for _, app := range snap.Apps {
		if _, ok := merged[app.Name]; !ok {
			merged[app.Name] = []string{app.Name}
		}
	}
	return merged
}

// OnRefresh registers a callback fired after every successful refresh.
func (c *Cache) OnRefresh(fn func()) {
	c.hookMu.Lock()
	defer c.hookMu.Unlock()
	c.hooks = append(c.hooks, fn)
}

func (c *Cache) snapshotHooks() []func() {
	c.hookMu.Lock()
	defer c.hookMu.Unlock()
	return append([]func(){}, c.hooks...)
}

// Stats describes the cache for diagnostics.
type Stats struct {
	Apps       int        `json:"apps"`
	Generation uint64     `json:"generation"`
	TakenAt    *time.Time `json:"taken_at,omitempty"`
	Valid      bool       `json:"valid"`
}

// Stats returns cache statistics.
func (c *Cache) Stats() Stats {
	snap := c.snap.Load()
	if snap == nil {
		return Stats{}
	}
	taken := snap.TakenAt
	return Stats{
		Apps:       len(snap.Apps),
		Generation: snap.Generation,
		TakenAt:    &taken,
		Valid:      c.Valid(),
	}
}
