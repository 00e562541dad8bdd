package chrono

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/beaconlabs/beacon/internal/community"
	"github.com/beaconlabs/beacon/internal/pkg/logs"
	promx "github.com/beaconlabs/beacon/internal/pkg/prometheus"
	"github.com/beaconlabs/beacon/internal/platform"
	"github.com/beaconlabs/beacon/internal/store"
)

const defaultTickInterval = 15 * time.Minute

// Instances is the persistence seam the manager drives: one query for the
// currently Pending rows and one statement to advance a watermark.
type Instances interface {
	ListDueChronos(ctx context.Context, today string, utcHour int) ([]store.DueChrono, error)
	MarkChronoRun(ctx context.Context, communityID, handle, day string) error
}

// ConfigSource resolves a community's live configuration; a lookup error
// means the bot no longer has access and the row is skipped.
type ConfigSource interface {
	Get(ctx context.Context, communityID string) (*community.Config, error)
}

// Manager is the stateful polling scheduler. All per-(community, chrono)
// state lives in the store; the manager holds only the registry and a timer.
// Due rows are executed sequentially within a tick, so one slow chrono
// delays the rest of the batch but platform request concurrency stays at
// one.
type Manager struct {
	registry  *Registry
	instances Instances
	dir       ConfigSource
	sender    platform.Sender
	runStore  *store.Store // handed to Run contexts
	interval  time.Duration
	now       func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type ManagerOption func(*Manager)

// WithTickInterval overrides the 15-minute polling cadence.
func WithTickInterval(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithClock injects the time source. Tests use this to pin the UTC day and
// hour.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

func NewManager(registry *Registry, instances Instances, dir ConfigSource, sender platform.Sender, runStore *store.Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		registry:  registry,
		instances: instances,
		dir:       dir,
		sender:    sender,
		runStore:  runStore,
		interval:  defaultTickInterval,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start runs one immediate tick and then begins the polling loop.
func (m *Manager) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.Tick(ctx)
		m.loop(ctx)
	}()

	logs.CtxInfo(ctx, "[chrono] manager started (tick=%s, defs=%d)", m.interval, len(m.registry.defs))
}

// Stop cancels the loop and waits for an in-flight tick to finish.
func (m *Manager) Stop(ctx context.Context) {
	if m.cancel != nil {
		m.cancel()
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		logs.CtxWarn(ctx, "[chrono] stop timed out waiting for tick")
	}
	logs.CtxInfo(ctx, "[chrono] manager stopped")
}

func (m *Manager) loop(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Tick(ctx)
		}
	}
}

// Tick fetches every currently Pending (community, chrono) pair and attempts
// each in ascending target-hour order. Failures are isolated per row.
func (m *Manager) Tick(ctx context.Context) {
	now := m.now().UTC()
	today := now.Format(watermarkLayout)

	due, err := m.instances.ListDueChronos(ctx, today, now.Hour())
	if err != nil {
		logs.CtxError(ctx, "[chrono] list due chronos: %v", err)
		return
	}
	if len(due) == 0 {
		return
	}

	logs.CtxInfo(ctx, "[chrono] tick: %d due instance(s) at %s hour %d", len(due), today, now.Hour())
	for _, row := range due {
		select {
		case <-ctx.Done():
			return
		default:
		}
		m.runInstance(ctx, row.CommunityID, row.Handle, now, today)
	}
}

// RunNow forces one chrono to run for one community, bypassing the Pending
// gate. Success still advances the watermark.
func (m *Manager) RunNow(ctx context.Context, communityID, handle string) error {
	def, ok := m.registry.Get(handle)
	if !ok {
		return fmt.Errorf("unknown chrono handle %q", handle)
	}

	cfg, err := m.dir.Get(ctx, communityID)
	if err != nil {
		return fmt.Errorf("resolve community %s: %w", communityID, err)
	}

	now := m.now().UTC()
	today := now.Format(watermarkLayout)

	if err := m.execute(ctx, def, communityID, cfg, now); err != nil {
		promx.ChronoRuns.WithLabelValues(handle, "error").Inc()
		return fmt.Errorf("chrono %s: %w", handle, err)
	}

	promx.ChronoRuns.WithLabelValues(handle, "ok").Inc()
	if err := m.instances.MarkChronoRun(ctx, communityID, handle, today); err != nil {
		return fmt.Errorf("record watermark for %s: %w", handle, err)
	}
	return nil
}

func (m *Manager) runInstance(ctx context.Context, communityID, handle string, now time.Time, today string) {
	def, ok := m.registry.Get(handle)
	if !ok {
		// A store row references a handle the registry no longer carries.
		// Log and skip; the row is re-evaluated next tick.
		logs.CtxError(ctx, "[chrono] store row references unknown handle %q (community=%s)", handle, communityID)
		promx.ChronoRuns.WithLabelValues(handle, "skipped").Inc()
		return
	}

	cfg, err := m.dir.Get(ctx, communityID)
	if err != nil {
		logs.CtxInfo(ctx, "[chrono] skip %s: community %s unavailable: %v", handle, communityID, err)
		promx.ChronoRuns.WithLabelValues(handle, "skipped").Inc()
		return
	}

	if err := m.execute(ctx, def, communityID, cfg, now); err != nil {
		// Watermark untouched: the instance stays Pending and retries on
		// the next tick.
		logs.CtxWarn(ctx, "[chrono] %s failed for %s: %v", handle, communityID, err)
		promx.ChronoRuns.WithLabelValues(handle, "error").Inc()
		m.reportFailure(ctx, cfg, handle, err)
		return
	}

	promx.ChronoRuns.WithLabelValues(handle, "ok").Inc()
	if err := m.instances.MarkChronoRun(ctx, communityID, handle, today); err != nil {
		logs.CtxError(ctx, "[chrono] record watermark %s for %s: %v", handle, communityID, err)
	}
}

func (m *Manager) execute(ctx context.Context, def Definition, communityID string, cfg *community.Config, now time.Time) error {
	return def.Run(ctx, &RunContext{
		CommunityID: communityID,
		Config:      cfg,
		Store:       m.runStore,
		Sender:      m.sender,
		Now:         now,
	})
}

func (m *Manager) reportFailure(ctx context.Context, cfg *community.Config, handle string, runErr error) {
	if cfg.OperatorChannelID == "" {
		return
	}
	text := fmt.Sprintf("chrono %s failed: %v", handle, runErr)
	if err := m.sender.SendMessage(ctx, cfg.OperatorChannelID, text); err != nil {
		logs.CtxWarn(ctx, "[chrono] report failure to operator channel: %v", err)
	}
}
