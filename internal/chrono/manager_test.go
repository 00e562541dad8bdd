package chrono

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/beaconlabs/beacon/internal/community"
	"github.com/beaconlabs/beacon/internal/store"
)

type fakeInstances struct {
	due     []store.DueChrono
	listErr error
	marked  []string // "community/handle/day"
	markErr error
}

func (f *fakeInstances) ListDueChronos(ctx context.Context, today string, utcHour int) ([]store.DueChrono, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.due, nil
}

func (f *fakeInstances) MarkChronoRun(ctx context.Context, communityID, handle, day string) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.marked = append(f.marked, fmt.Sprintf("%s/%s/%s", communityID, handle, day))
	return nil
}

type fakeDir struct {
	cfgs map[string]*community.Config
}

func (f *fakeDir) Get(ctx context.Context, communityID string) (*community.Config, error) {
	cfg, ok := f.cfgs[communityID]
	if !ok {
		return nil, errors.New("community not found")
	}
	return cfg, nil
}

type fakeSender struct {
	sent []string // "chatID: content"
}

func (f *fakeSender) SendMessage(ctx context.Context, chatID string, content string) error {
	f.sent = append(f.sent, chatID+": "+content)
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var testNow = time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)

func TestManager_TickRunsDueInOrder(t *testing.T) {
	var ran []string
	record := func(handle string) func(ctx context.Context, rc *RunContext) error {
		return func(ctx context.Context, rc *RunContext) error {
			ran = append(ran, handle+"@"+rc.CommunityID)
			return nil
		}
	}

	reg, err := NewRegistry(
		Definition{Handle: "early", UTCHour: 3, Run: record("early")},
		Definition{Handle: "mid", UTCHour: 9, Run: record("mid")},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inst := &fakeInstances{due: []store.DueChrono{
		{CommunityID: "g1", Handle: "early", UTCHour: 3},
		{CommunityID: "g2", Handle: "early", UTCHour: 3},
		{CommunityID: "g1", Handle: "mid", UTCHour: 9},
	}}
	dir := &fakeDir{cfgs: map[string]*community.Config{
		"g1": {ID: "g1", Prefix: "!"},
		"g2": {ID: "g2", Prefix: "!"},
	}}

	m := NewManager(reg, inst, dir, &fakeSender{}, nil, WithClock(fixedClock(testNow)))
	m.Tick(context.Background())

	want := []string{"early@g1", "early@g2", "mid@g1"}
	if len(ran) != len(want) {
		t.Fatalf("ran %v, want %v", ran, want)
	}
	for i := range want {
		if ran[i] != want[i] {
			t.Fatalf("ran %v, want %v", ran, want)
		}
	}

	if len(inst.marked) != 3 {
		t.Fatalf("got %d watermarks, want 3: %v", len(inst.marked), inst.marked)
	}
	if inst.marked[0] != "g1/early/2026-01-15" {
		t.Errorf("watermark %q should carry today's UTC date", inst.marked[0])
	}
}

func TestManager_FailureKeepsWatermarkAndReportsOperator(t *testing.T) {
	reg, err := NewRegistry(Definition{
		Handle:  "flaky",
		UTCHour: 7,
		Run: func(ctx context.Context, rc *RunContext) error {
			return errors.New("downstream unavailable")
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inst := &fakeInstances{due: []store.DueChrono{{CommunityID: "g1", Handle: "flaky", UTCHour: 7}}}
	dir := &fakeDir{cfgs: map[string]*community.Config{
		"g1": {ID: "g1", OperatorChannelID: "ops-42"},
	}}
	sender := &fakeSender{}

	m := NewManager(reg, inst, dir, sender, nil, WithClock(fixedClock(testNow)))
	m.Tick(context.Background())

	if len(inst.marked) != 0 {
		t.Errorf("failed run must not advance the watermark, got %v", inst.marked)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one operator report, got %v", sender.sent)
	}
	if !strings.HasPrefix(sender.sent[0], "ops-42:") || !strings.Contains(sender.sent[0], "flaky") {
		t.Errorf("operator report %q should target the operator channel and name the chrono", sender.sent[0])
	}
}

func TestManager_FailureDoesNotStopLaterRows(t *testing.T) {
	var ran []string
	reg, err := NewRegistry(
		Definition{Handle: "bad", UTCHour: 3, Run: func(ctx context.Context, rc *RunContext) error {
			return errors.New("boom")
		}},
		Definition{Handle: "good", UTCHour: 9, Run: func(ctx context.Context, rc *RunContext) error {
			ran = append(ran, "good")
			return nil
		}},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inst := &fakeInstances{due: []store.DueChrono{
		{CommunityID: "g1", Handle: "bad", UTCHour: 3},
		{CommunityID: "g1", Handle: "good", UTCHour: 9},
	}}
	dir := &fakeDir{cfgs: map[string]*community.Config{"g1": {ID: "g1"}}}

	m := NewManager(reg, inst, dir, &fakeSender{}, nil, WithClock(fixedClock(testNow)))
	m.Tick(context.Background())

	if len(ran) != 1 || ran[0] != "good" {
		t.Errorf("later row should still run after an earlier failure, ran=%v", ran)
	}
	if len(inst.marked) != 1 || !strings.Contains(inst.marked[0], "good") {
		t.Errorf("only the successful row should watermark, got %v", inst.marked)
	}
}

func TestManager_UnknownHandleSkipped(t *testing.T) {
	reg, err := NewRegistry(Definition{Handle: "known", UTCHour: 7, Run: noopRun})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inst := &fakeInstances{due: []store.DueChrono{{CommunityID: "g1", Handle: "retired", UTCHour: 5}}}
	dir := &fakeDir{cfgs: map[string]*community.Config{"g1": {ID: "g1"}}}

	m := NewManager(reg, inst, dir, &fakeSender{}, nil, WithClock(fixedClock(testNow)))
	m.Tick(context.Background())

	if len(inst.marked) != 0 {
		t.Errorf("unknown handle must not watermark, got %v", inst.marked)
	}
}

func TestManager_UnavailableCommunitySkipped(t *testing.T) {
	ran := false
	reg, err := NewRegistry(Definition{Handle: "digest", UTCHour: 9, Run: func(ctx context.Context, rc *RunContext) error {
		ran = true
		return nil
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inst := &fakeInstances{due: []store.DueChrono{{CommunityID: "gone", Handle: "digest", UTCHour: 9}}}
	m := NewManager(reg, inst, &fakeDir{cfgs: nil}, &fakeSender{}, nil, WithClock(fixedClock(testNow)))
	m.Tick(context.Background())

	if ran {
		t.Error("run executed for an unavailable community")
	}
	if len(inst.marked) != 0 {
		t.Errorf("skip must not watermark, got %v", inst.marked)
	}
}

func TestManager_RunNow(t *testing.T) {
	ran := false
	reg, err := NewRegistry(Definition{Handle: "digest", UTCHour: 23, Run: func(ctx context.Context, rc *RunContext) error {
		ran = true
		return nil
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inst := &fakeInstances{}
	dir := &fakeDir{cfgs: map[string]*community.Config{"g1": {ID: "g1"}}}

	// 10:30 UTC is well before the 23:00 target hour; RunNow ignores the gate.
	m := NewManager(reg, inst, dir, &fakeSender{}, nil, WithClock(fixedClock(testNow)))
	if err := m.RunNow(context.Background(), "g1", "digest"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !ran {
		t.Error("RunNow did not execute the chrono")
	}
	if len(inst.marked) != 1 || inst.marked[0] != "g1/digest/2026-01-15" {
		t.Errorf("RunNow success should watermark, got %v", inst.marked)
	}

	if err := m.RunNow(context.Background(), "g1", "missing"); err == nil {
		t.Error("expected error for unknown handle")
	}
}

func TestManager_StartStop(t *testing.T) {
	reg, err := NewRegistry(Definition{Handle: "digest", UTCHour: 9, Run: noopRun})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inst := &fakeInstances{}
	m := NewManager(reg, inst, &fakeDir{}, &fakeSender{}, nil,
		WithClock(fixedClock(testNow)), WithTickInterval(time.Hour))

	m.Start(context.Background())

	stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	m.Stop(stopCtx)
}
