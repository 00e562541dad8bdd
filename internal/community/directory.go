package community

import (
	"context"
	"fmt"
	"sync"

	"github.com/beaconlabs/beacon/internal/store"
)

// ErrNotFound aliases the store's sentinel so callers can treat a missing
// community without importing the store package.
var ErrNotFound = store.ErrCommunityNotFound

// Loader reads one community's configuration row.
type Loader interface {
	GetCommunity(ctx context.Context, id string) (*store.CommunityRow, error)
}

// Directory caches community configuration for the process lifetime. The
// first Get per community hits the store; later calls are served from memory
// until Invalidate. Staleness after an out-of-band row change is accepted
// until an operator invalidates the cache.
type Directory struct {
	loader Loader

	mu    sync.RWMutex
	cache map[string]*Config
}

func NewDirectory(loader Loader) *Directory {
	return &Directory{
		loader: loader,
		cache:  make(map[string]*Config, 16),
	}
}

func (d *Directory) Get(ctx context.Context, communityID string) (*Config, error) {
	d.mu.RLock()
	cfg, ok := d.cache[communityID]
	d.mu.RUnlock()
	if ok {
		return cfg, nil
	}

	row, err := d.loader.GetCommunity(ctx, communityID)
	if err != nil {
		return nil, fmt.Errorf("load community %s: %w", communityID, err)
	}

	cfg = &Config{
		ID:                row.ID,
		Prefix:            row.Prefix,
		AdminRoleID:       row.AdminRoleID,
		OperatorChannelID: row.OperatorChannelID,
		AnnounceChannelID: row.AnnounceChannelID,
		Timezone:          row.Timezone,
	}

	d.mu.Lock()
	d.cache[communityID] = cfg
	d.mu.Unlock()
	return cfg, nil
}

// Invalidate clears the entire cache. Called after administrative config
// changes.
func (d *Directory) Invalidate() {
	d.mu.Lock()
	d.cache = make(map[string]*Config, 16)
	d.mu.Unlock()
}

// Len reports how many communities are currently cached.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.cache)
}
