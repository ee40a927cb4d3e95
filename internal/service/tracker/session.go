package tracker

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/Temutjin2k/govv-tracker/internal/domain/models"
	"github.com/Temutjin2k/govv-tracker/internal/domain/types"
	"github.com/Temutjin2k/govv-tracker/pkg/geo"
	"github.com/Temutjin2k/govv-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/govv-tracker/pkg/logger/wrapper"
	"github.com/google/uuid"
)

// ActivityCreator persists a finished ride and returns the stored record.
type ActivityCreator interface {
	Create(ctx context.Context, a *models.Activity) (*models.Activity, error)
}

// Observer is notified after a sample is ingested and after state changes.
// It is called outside the session lock.
type Observer interface {
	OnSample(sessionID string, p models.Position, snap models.SessionSnapshot)
	OnStateChange(sessionID string, state types.SessionState)
}

type nopObserver struct{}

func (nopObserver) OnSample(string, models.Position, models.SessionSnapshot) {}
func (nopObserver) OnStateChange(string, types.SessionState)                 {}

// Session is one ride: Idle -> Recording <-> Paused -> Stopped.
// Invalid transitions are no-ops. All fields below mu are guarded by it.
type Session struct {
	id       string
	riderID  string
	opts     models.SessionOptions
	source   SampleSource
	creator  ActivityCreator
	clock    Clock
	observer Observer
	log      logger.Logger

	mu             sync.Mutex
	state          types.SessionState
	changedAt      time.Time
	samples        []models.Position
	distanceKm     float64
	avgKmh         float64
	startedAt      time.Time
	pausedAcc      time.Duration
	pauseStartedAt time.Time
	paused         bool
	stoppedAt      time.Time
	pending        *models.Activity

	// gen changes on every (un)subscribe; emissions from an older generation are ignored.
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
}

type SessionParams struct {
	ID       string
	RiderID  string
	Options  models.SessionOptions
	Source   SampleSource
	Creator  ActivityCreator
	Clock    Clock
	Observer Observer
	Logger   logger.Logger
}

func NewSession(p SessionParams) *Session {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.RiderID == "" {
		p.RiderID = types.AnonymousRider
	}
	if p.Clock == nil {
		p.Clock = SystemClock{}
	}
	if p.Observer == nil {
		p.Observer = nopObserver{}
	}

	return &Session{
		id:        p.ID,
		riderID:   p.RiderID,
		opts:      p.Options,
		source:    p.Source,
		creator:   p.Creator,
		clock:     p.Clock,
		observer:  p.Observer,
		log:       p.Logger,
		state:     types.StateIdle,
		changedAt: p.Clock.Now(),
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) RiderID() string {
	return s.riderID
}

func (s *Session) Source() SampleSource {
	return s.source
}

func (s *Session) State() types.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Start begins a fresh ride from Idle or Stopped. Any pending record is discarded.
func (s *Session) Start(ctx context.Context) bool {
	s.mu.Lock()
	if s.state == types.StateRecording || s.state == types.StatePaused {
		s.mu.Unlock()
		return false
	}

	if r, ok := s.source.(interface{ Reset() }); ok {
		r.Reset()
	}

	s.resetLocked()
	s.startedAt = s.clock.Now()
	s.setStateLocked(types.StateRecording)
	s.subscribeLocked()
	s.mu.Unlock()

	s.logInfo(ctx, types.ActionSessionStarted, "ride started")
	s.observer.OnStateChange(s.id, types.StateRecording)
	return true
}

// Pause stops sample delivery. No sample is ingested after Pause returns.
func (s *Session) Pause(ctx context.Context) bool {
	s.mu.Lock()
	if s.state != types.StateRecording {
		s.mu.Unlock()
		return false
	}

	s.pauseStartedAt = s.clock.Now()
	s.paused = true
	s.setStateLocked(types.StatePaused)
	wait := s.unsubscribeLocked()
	s.mu.Unlock()
	wait()

	s.logInfo(ctx, types.ActionSessionPaused, "ride paused")
	s.observer.OnStateChange(s.id, types.StatePaused)
	return true
}

// Resume folds the pause into the paused total and re-subscribes.
func (s *Session) Resume(ctx context.Context) bool {
	s.mu.Lock()
	if s.state != types.StatePaused {
		s.mu.Unlock()
		return false
	}

	s.closePauseLocked(s.clock.Now())
	s.setStateLocked(types.StateRecording)
	s.subscribeLocked()
	s.mu.Unlock()

	s.logInfo(ctx, types.ActionSessionResumed, "ride resumed")
	s.observer.OnStateChange(s.id, types.StateRecording)
	return true
}

// Stop ends the ride. With fewer than two samples nothing is recorded, the session
// goes back to Idle and (nil, nil) is returned. Otherwise the record is built and
// persisted. When persisting fails the session stays Stopped holding the record,
// the record is returned with an error wrapping types.ErrPersistFailed and Save
// may be used to retry.
func (s *Session) Stop(ctx context.Context) (*models.Activity, error) {
	s.mu.Lock()
	if s.state != types.StateRecording && s.state != types.StatePaused {
		s.mu.Unlock()
		return nil, nil
	}

	now := s.clock.Now()
	s.closePauseLocked(now)
	wait := s.unsubscribeLocked()

	if len(s.samples) < 2 {
		s.resetLocked()
		s.setStateLocked(types.StateIdle)
		s.mu.Unlock()
		wait()

		s.logInfo(ctx, types.ActionSessionDiscarded, "ride discarded: not enough samples")
		s.observer.OnStateChange(s.id, types.StateIdle)
		return nil, nil
	}

	s.pending = s.buildRecordLocked(now)
	s.stoppedAt = now
	s.setStateLocked(types.StateStopped)
	s.mu.Unlock()
	wait()

	s.observer.OnStateChange(s.id, types.StateStopped)

	return s.persist(ctx)
}

// Save retries persistence of the pending record.
func (s *Session) Save(ctx context.Context) (*models.Activity, error) {
	return s.persist(ctx)
}

// Pending returns a copy of the record awaiting persistence, if any.
func (s *Session) Pending() *models.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pending.Clone()
}

// Close releases the source subscription without producing a record.
func (s *Session) Close() {
	s.mu.Lock()
	wait := s.unsubscribeLocked()
	s.mu.Unlock()
	wait()
}

// Snapshot returns a copy of the session's current figures.
func (s *Session) Snapshot() models.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked(s.clock.Now())
}

func (s *Session) persist(ctx context.Context) (*models.Activity, error) {
	const op = "Session.persist"

	s.mu.Lock()
	if s.state != types.StateStopped || s.pending == nil {
		s.mu.Unlock()
		return nil, types.ErrNothingToSave
	}
	record := s.pending.Clone()
	s.mu.Unlock()

	ctx = wrap.WithActivityID(ctx, record.ID)

	saved, err := s.creator.Create(ctx, record)
	if err != nil {
		return record, wrap.Error(ctx, fmt.Errorf("%s: %w: %w", op, types.ErrPersistFailed, err))
	}

	s.mu.Lock()
	if s.pending != nil && s.pending.ID == record.ID {
		s.pending = nil
		s.changedAt = s.clock.Now()
	}
	s.mu.Unlock()

	s.logInfo(ctx, types.ActionSessionStopped, "ride saved",
		"distance_km", saved.DistanceKm, "duration_sec", saved.DurationSec)

	return saved, nil
}

// ingest is the emit callback bound to generation gen.
func (s *Session) ingest(gen uint64, p models.Position) {
	s.mu.Lock()
	if gen != s.gen || s.state != types.StateRecording {
		s.mu.Unlock()
		return
	}

	if n := len(s.samples); n > 0 {
		prev := s.samples[n-1]
		if p.T <= prev.T {
			s.mu.Unlock()
			return
		}
		if d := geo.Distance(prev.Lat, prev.Lng, p.Lat, p.Lng); d > 0 && !math.IsNaN(d) {
			s.distanceKm += d
		}
	}
	s.samples = append(s.samples, p)

	now := s.clock.Now()
	if hours := s.activeElapsedLocked(now).Hours(); hours > 0 {
		s.avgKmh = s.distanceKm / hours
	} else {
		s.avgKmh = 0
	}
	snap := s.snapshotLocked(now)
	s.mu.Unlock()

	s.observer.OnSample(s.id, p, snap)
}

func (s *Session) subscribeLocked() {
	s.gen++
	gen := s.gen

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go func() {
		defer close(done)
		err := s.source.Subscribe(ctx, func(p models.Position) { s.ingest(gen, p) })
		if err != nil && ctx.Err() == nil && s.log != nil {
			logCtx := wrap.WithSessionID(context.Background(), s.id)
			s.log.Error(logCtx, "sample source stopped", err)
		}
	}()
}

// unsubscribeLocked invalidates the current generation and returns a func that
// cancels the pump and waits for it. The returned func must run without mu held.
func (s *Session) unsubscribeLocked() func() {
	s.gen++
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil

	return func() {
		if cancel == nil {
			return
		}
		cancel()
		<-done
	}
}

func (s *Session) closePauseLocked(now time.Time) {
	if !s.paused {
		return
	}
	if d := now.Sub(s.pauseStartedAt); d > 0 {
		s.pausedAcc += d
	}
	s.paused = false
	s.pauseStartedAt = time.Time{}
}

func (s *Session) resetLocked() {
	s.samples = nil
	s.distanceKm = 0
	s.avgKmh = 0
	s.startedAt = time.Time{}
	s.pausedAcc = 0
	s.paused = false
	s.pauseStartedAt = time.Time{}
	s.stoppedAt = time.Time{}
	s.pending = nil
}

func (s *Session) setStateLocked(state types.SessionState) {
	s.state = state
	s.changedAt = s.clock.Now()
}

// evictable reports whether the session holds nothing worth keeping and has
// not changed for at least ttl.
func (s *Session) evictable(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case types.StateIdle:
	case types.StateStopped:
		if s.pending != nil {
			return false
		}
	default:
		return false
	}
	return now.Sub(s.changedAt) >= ttl
}

// activeElapsedLocked is (now - startedAt) - pausedAcc - open pause, never negative.
func (s *Session) activeElapsedLocked(now time.Time) time.Duration {
	if s.startedAt.IsZero() {
		return 0
	}
	if s.state == types.StateStopped && !s.stoppedAt.IsZero() {
		now = s.stoppedAt
	}
	elapsed := now.Sub(s.startedAt) - s.pausedAcc
	if s.paused {
		elapsed -= now.Sub(s.pauseStartedAt)
	}
	return max(elapsed, 0)
}

func (s *Session) buildRecordLocked(now time.Time) *models.Activity {
	durationSec := int64(max(now.Sub(s.startedAt)-s.pausedAcc, 0) / time.Second)

	var avg float64
	if durationSec > 0 {
		avg = s.distanceKm / (float64(durationSec) / 3600)
	}

	name := strings.TrimSpace(s.opts.Name)
	if name == "" {
		name = "Ride " + s.startedAt.UTC().Format("Jan 2, 2006")
	}

	path := make([]models.Position, len(s.samples))
	copy(path, s.samples)

	return &models.Activity{
		ID:          uuid.NewString(),
		Name:        name,
		DistanceKm:  s.distanceKm,
		DurationSec: durationSec,
		AvgKmh:      avg,
		StartTime:   s.startedAt.UTC().Format(time.RFC3339),
		Path:        path,
		Notes:       s.opts.Notes,
		Private:     s.opts.Private,
	}
}

func (s *Session) snapshotLocked(now time.Time) models.SessionSnapshot {
	snap := models.SessionSnapshot{
		ID:         s.id,
		RiderID:    s.riderID,
		Source:     s.source.Kind(),
		State:      s.state,
		Samples:    len(s.samples),
		DistanceKm: s.distanceKm,
		AvgKmh:     s.avgKmh,
		ActiveSec:  s.activeElapsedLocked(now).Seconds(),
	}
	if !s.startedAt.IsZero() {
		started := s.startedAt.UTC()
		snap.StartedAt = &started
	}
	if n := len(s.samples); n > 0 {
		last := s.samples[n-1]
		snap.LastSample = &last
	}
	if s.pending != nil {
		snap.PendingActivity = s.pending.ID
	}
	return snap
}

func (s *Session) logInfo(ctx context.Context, action, msg string, args ...any) {
	if s.log == nil {
		return
	}
	ctx = wrap.WithLogCtx(ctx, wrap.LogCtx{Action: action, SessionID: s.id, RiderID: s.riderID})
	s.log.Info(ctx, msg, args...)
}

// Push feeds a device position into a live session.
func (s *Session) Push(ctx context.Context, p models.Position) error {
	live, ok := s.source.(*LiveSource)
	if !ok {
		return types.ErrNotLiveSource
	}
	if s.State() != types.StateRecording {
		return types.ErrSourceInactive
	}
	return live.Push(ctx, p)
}
