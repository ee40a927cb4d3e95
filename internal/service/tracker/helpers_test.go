package tracker

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/Temutjin2k/govv-tracker/internal/domain/models"
	"github.com/Temutjin2k/govv-tracker/pkg/logger"
)

var t0 = time.Date(2024, time.March, 3, 8, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{now: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// at moves the clock to t0 + sec seconds.
func (c *fakeClock) at(sec float64) time.Time {
	t := t0.Add(time.Duration(sec * float64(time.Second)))
	c.Set(t)
	return t
}

type fakeCreator struct {
	mu    sync.Mutex
	fail  error
	calls int
	saved []*models.Activity
}

func (f *fakeCreator) Create(_ context.Context, a *models.Activity) (*models.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.fail != nil {
		return nil, f.fail
	}
	out := a.Clone()
	out.PointsEarned = 7
	f.saved = append(f.saved, out)
	return out.Clone(), nil
}

func (f *fakeCreator) setFail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = err
}

var errStoreDown = errors.New("store unreachable")

func testLogger() logger.Logger {
	return logger.New(io.Discard, "test", logger.LevelError)
}

func newLiveSession(t *testing.T, clock *fakeClock, creator ActivityCreator) *Session {
	t.Helper()

	s := NewSession(SessionParams{
		Source:  NewLiveSource(2 * time.Second),
		Creator: creator,
		Clock:   clock,
		Logger:  testLogger(),
	})
	t.Cleanup(s.Close)
	return s
}

// pushAt feeds a sample stamped t0 + sec, moving the clock there first.
func pushAt(t *testing.T, s *Session, clock *fakeClock, sec, lat, lng float64) {
	t.Helper()

	at := clock.at(sec)
	if err := s.Push(context.Background(), models.NewPosition(lat, lng, at)); err != nil {
		t.Fatalf("push at %vs: %v", sec, err)
	}
}
