package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Temutjin2k/govv-tracker/internal/domain/models"
	"github.com/Temutjin2k/govv-tracker/internal/domain/types"
)

func newTestManager(liveEnabled bool) *Manager {
	return NewManager(Config{
		Simulated:      SimulatedConfig{Interval: time.Second, BaseLat: baseLat, BaseLng: baseLng, MaxStep: 0.00025},
		LiveEnabled:    liveEnabled,
		LiveAttachWait: time.Second,
	}, &fakeCreator{}, nil, newFakeClock(t0), testLogger())
}

func TestManagerFallsBackToSimulated(t *testing.T) {
	m := newTestManager(false)
	defer m.Close()

	s := m.Create(context.Background(), types.SourceLive, models.SessionOptions{})
	if kind := s.Source().Kind(); kind != types.SourceSimulated {
		t.Fatalf("source = %s, want simulated fallback", kind)
	}

	err := m.Push(context.Background(), s.ID(), models.NewPosition(baseLat, baseLng, t0))
	if !errors.Is(err, types.ErrNotLiveSource) {
		t.Fatalf("push to simulated session err = %v", err)
	}
}

func TestManagerOwnership(t *testing.T) {
	m := newTestManager(true)
	defer m.Close()

	alice := types.WithRider(context.Background(), "alice")
	bob := types.WithRider(context.Background(), "bob")

	s := m.Create(alice, types.SourceLive, models.SessionOptions{Name: "Morning loop"})
	if s.RiderID() != "alice" {
		t.Fatalf("rider = %s", s.RiderID())
	}

	if _, err := m.Get(alice, s.ID()); err != nil {
		t.Fatalf("owner Get: %v", err)
	}
	if _, err := m.Get(bob, s.ID()); !errors.Is(err, types.ErrSessionForbidden) {
		t.Fatalf("other rider err = %v, want ErrSessionForbidden", err)
	}
	if _, err := m.Get(alice, "missing"); !errors.Is(err, types.ErrSessionNotFound) {
		t.Fatalf("missing err = %v, want ErrSessionNotFound", err)
	}

	if err := m.Delete(bob, s.ID()); !errors.Is(err, types.ErrSessionForbidden) {
		t.Fatalf("other rider delete err = %v", err)
	}
	if err := m.Delete(alice, s.ID()); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := m.Get(alice, s.ID()); !errors.Is(err, types.ErrSessionNotFound) {
		t.Fatalf("after delete err = %v", err)
	}
}

func TestManagerLivePushAndRecordingCount(t *testing.T) {
	m := newTestManager(true)
	defer m.Close()
	ctx := context.Background()

	s := m.Create(ctx, types.SourceLive, models.SessionOptions{})
	if err := m.Push(ctx, s.ID(), models.NewPosition(baseLat, baseLng, t0)); !errors.Is(err, types.ErrSourceInactive) {
		t.Fatalf("push before start err = %v", err)
	}

	s.Start(ctx)
	if m.Recording() != 1 {
		t.Fatalf("recording = %d, want 1", m.Recording())
	}
	if err := m.Push(ctx, s.ID(), models.NewPosition(baseLat, baseLng, t0)); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if n := s.Snapshot().Samples; n != 1 {
		t.Fatalf("samples = %d, want 1", n)
	}

	s.Pause(ctx)
	if m.Recording() != 0 {
		t.Fatalf("recording = %d after pause, want 0", m.Recording())
	}
}

func TestManagerEvictsStaleSessions(t *testing.T) {
	clock := newFakeClock(t0)
	creator := &fakeCreator{}
	m := NewManager(Config{
		LiveEnabled:    true,
		LiveAttachWait: time.Second,
		IdleTTL:        10 * time.Minute,
	}, creator, nil, clock, testLogger())
	defer m.Close()
	ctx := context.Background()

	idle := m.Create(ctx, types.SourceLive, models.SessionOptions{})

	saved := m.Create(ctx, types.SourceLive, models.SessionOptions{})
	saved.Start(ctx)
	pushAt(t, saved, clock, 0, baseLat, baseLng)
	pushAt(t, saved, clock, 1, baseLat+0.0002, baseLng)
	clock.at(2)
	if _, err := saved.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	unsaved := m.Create(ctx, types.SourceLive, models.SessionOptions{})
	unsaved.Start(ctx)
	pushAt(t, unsaved, clock, 3, baseLat, baseLng)
	pushAt(t, unsaved, clock, 4, baseLat+0.0002, baseLng)
	clock.at(5)
	creator.setFail(errStoreDown)
	if _, err := unsaved.Stop(ctx); !errors.Is(err, types.ErrPersistFailed) {
		t.Fatalf("Stop err = %v, want persist failure", err)
	}
	creator.setFail(nil)

	recording := m.Create(ctx, types.SourceLive, models.SessionOptions{})
	recording.Start(ctx)

	clock.at(5 * 60)
	if n := m.EvictIdle(ctx); n != 0 {
		t.Fatalf("evicted %d sessions before the ttl", n)
	}

	clock.at(15 * 60)
	if n := m.EvictIdle(ctx); n != 2 {
		t.Fatalf("evicted %d sessions, want 2", n)
	}
	for _, s := range []*Session{idle, saved} {
		if _, err := m.Get(ctx, s.ID()); !errors.Is(err, types.ErrSessionNotFound) {
			t.Fatalf("session %s still present: %v", s.ID(), err)
		}
	}
	for _, s := range []*Session{unsaved, recording} {
		if _, err := m.Get(ctx, s.ID()); err != nil {
			t.Fatalf("session %s evicted: %v", s.ID(), err)
		}
	}
}

func TestManagerWithoutIdleTTLKeepsSessions(t *testing.T) {
	clock := newFakeClock(t0)
	m := NewManager(Config{}, &fakeCreator{}, nil, clock, testLogger())
	defer m.Close()

	s := m.Create(context.Background(), types.SourceLive, models.SessionOptions{})
	clock.at(24 * 3600)
	if n := m.EvictIdle(context.Background()); n != 0 {
		t.Fatalf("evicted %d sessions with eviction disabled", n)
	}
	if _, err := m.Get(context.Background(), s.ID()); err != nil {
		t.Fatalf("Get: %v", err)
	}
}
