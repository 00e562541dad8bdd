// Package chrono implements Beacon's recurring daily jobs: a static registry
// of definitions and a polling manager that executes each (community, chrono)
// pair at most once per UTC calendar day, tracked by a store-persisted
// watermark.
package chrono

import (
	"context"
	"time"

	"github.com/beaconlabs/beacon/internal/community"
	"github.com/beaconlabs/beacon/internal/platform"
	"github.com/beaconlabs/beacon/internal/store"
)

// Definition describes one recurring job. Immutable after registration.
type Definition struct {
	// Handle uniquely identifies the chrono; store rows reference it.
	Handle string
	// UTCHour is the target hour (0-23); the chrono becomes eligible once
	// the current UTC hour reaches it.
	UTCHour int
	// RequiredFeature, when set, gates execution on the community's flag.
	RequiredFeature string
	// Run performs the work. A nil return advances the watermark; handlers
	// must tolerate a same-day re-run after a crash between Run and the
	// watermark write.
	Run func(ctx context.Context, rc *RunContext) error
}

// RunContext is handed to a chrono's Run function.
type RunContext struct {
	CommunityID string
	Config      *community.Config
	Store       *store.Store
	Sender      platform.Sender
	Now         time.Time // UTC
}

// watermarkLayout is the UTC calendar date format persisted as last_run.
const watermarkLayout = "2006-01-02"
