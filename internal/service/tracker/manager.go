package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Temutjin2k/govv-tracker/internal/domain/models"
	"github.com/Temutjin2k/govv-tracker/internal/domain/types"
	"github.com/Temutjin2k/govv-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/govv-tracker/pkg/logger/wrapper"
	"github.com/Temutjin2k/govv-tracker/pkg/metrics"
)

const serviceName = "tracker"

type Config struct {
	Simulated      SimulatedConfig
	LiveEnabled    bool
	LiveAttachWait time.Duration
	// IdleTTL is how long an idle or saved session is kept; zero keeps them until deleted.
	IdleTTL time.Duration
}

// Manager owns the in-memory ride sessions.
type Manager struct {
	cfg      Config
	creator  ActivityCreator
	observer Observer
	clock    Clock
	log      logger.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(cfg Config, creator ActivityCreator, observer Observer, clock Clock, log logger.Logger) *Manager {
	if observer == nil {
		observer = nopObserver{}
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if cfg.LiveAttachWait <= 0 {
		cfg.LiveAttachWait = 250 * time.Millisecond
	}

	return &Manager{
		cfg:      cfg,
		creator:  creator,
		observer: observer,
		clock:    clock,
		log:      log,
		sessions: make(map[string]*Session),
	}
}

// Create registers a new idle session for the rider in ctx.
func (m *Manager) Create(ctx context.Context, kind types.SourceKind, opts models.SessionOptions) *Session {
	rider := types.RiderFromContext(ctx)

	s := NewSession(SessionParams{
		RiderID:  rider,
		Options:  opts,
		Source:   m.newSource(ctx, kind),
		Creator:  m.creator,
		Clock:    m.clock,
		Observer: &managerObserver{m: m, next: m.observer},
		Logger:   m.log,
	})

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	ctx = wrap.WithLogCtx(ctx, wrap.LogCtx{Action: types.ActionSessionCreated, SessionID: s.ID(), RiderID: rider})
	m.log.Info(ctx, "session created", "source", s.Source().Kind())

	return s
}

// newSource falls back to the simulated walk when live positioning is unavailable.
func (m *Manager) newSource(ctx context.Context, kind types.SourceKind) SampleSource {
	if kind == types.SourceLive {
		if m.cfg.LiveEnabled {
			return NewLiveSource(m.cfg.LiveAttachWait)
		}
		m.log.Warn(wrap.WithAction(ctx, types.ActionSourceFallback),
			"live positioning unavailable, using simulated source")
	}
	return NewSimulatedSource(m.cfg.Simulated, m.clock)
}

// Get returns the session if it belongs to the rider in ctx.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	const op = "Manager.Get"

	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%s: %w", op, types.ErrSessionNotFound)
	}
	if s.RiderID() != types.RiderFromContext(ctx) {
		return nil, fmt.Errorf("%s: %w", op, types.ErrSessionForbidden)
	}
	return s, nil
}

// Delete releases the session. A recorded but unsaved ride is lost.
func (m *Manager) Delete(ctx context.Context, id string) error {
	s, err := m.Get(ctx, id)
	if err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()

	s.Close()
	m.refreshActive()

	m.log.Info(wrap.WithLogCtx(ctx, wrap.LogCtx{Action: types.ActionSessionDropped, SessionID: id}), "session dropped")
	return nil
}

// Push feeds a live position into the session.
func (m *Manager) Push(ctx context.Context, id string, p models.Position) error {
	s, err := m.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.Push(ctx, p)
}

// Run evicts stale sessions every sweep until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	if m.cfg.IdleTTL <= 0 {
		return
	}

	sweep := min(m.cfg.IdleTTL, time.Minute)
	ticker := time.NewTicker(sweep)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.EvictIdle(ctx)
		}
	}
}

// EvictIdle drops idle sessions and stopped sessions with nothing left to save
// that have not changed for IdleTTL. It returns how many were dropped.
func (m *Manager) EvictIdle(ctx context.Context) int {
	if m.cfg.IdleTTL <= 0 {
		return 0
	}
	now := m.clock.Now()

	var stale []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if s.evictable(now, m.cfg.IdleTTL) {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.Close()
		m.log.Debug(wrap.WithLogCtx(ctx, wrap.LogCtx{Action: types.ActionSessionEvicted, SessionID: s.ID()}), "session evicted")
	}
	if len(stale) > 0 {
		m.log.Info(wrap.WithAction(ctx, types.ActionSessionEvicted), "evicted stale sessions", "count", len(stale))
	}
	return len(stale)
}

// Recording returns how many sessions are currently recording.
func (m *Manager) Recording() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, s := range m.sessions {
		if s.State() == types.StateRecording {
			n++
		}
	}
	return n
}

// Close stops every session's source. Pending records are not persisted.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		sessions = append(sessions, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	m.refreshActive()
}

func (m *Manager) refreshActive() {
	metrics.ActiveSessionsGauge.WithLabelValues(serviceName).Set(float64(m.Recording()))
}

// managerObserver records metrics before handing events to the configured observer.
type managerObserver struct {
	m    *Manager
	next Observer
}

func (o *managerObserver) OnSample(sessionID string, p models.Position, snap models.SessionSnapshot) {
	metrics.RecordSample(serviceName, snap.Source.String())
	o.next.OnSample(sessionID, p, snap)
}

func (o *managerObserver) OnStateChange(sessionID string, state types.SessionState) {
	o.m.refreshActive()
	switch state {
	case types.StateIdle:
		metrics.RecordActivity(serviceName, "discarded")
	case types.StateStopped:
		metrics.RecordActivity(serviceName, "stopped")
	}
	o.next.OnStateChange(sessionID, state)
}
