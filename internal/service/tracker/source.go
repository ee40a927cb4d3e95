package tracker

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/Temutjin2k/govv-tracker/internal/domain/models"
	"github.com/Temutjin2k/govv-tracker/internal/domain/types"
)

// SampleSource produces timestamped positions until ctx is cancelled.
// Subscribe blocks; emit must not be called after Subscribe returns.
type SampleSource interface {
	Kind() types.SourceKind
	Subscribe(ctx context.Context, emit func(models.Position)) error
}

// minStep keeps timestamps strictly increasing when the clock doesn't move.
const minStep = 0.001

// SimulatedSource is a random walk starting at a base coordinate.
// Each Subscribe continues from the last emitted position; Reset starts a new walk.
type SimulatedSource struct {
	interval time.Duration
	baseLat  float64
	baseLng  float64
	maxStep  float64
	clock    Clock
	rand     func() float64

	mu      sync.Mutex
	started bool
	last    models.Position
}

type SimulatedConfig struct {
	Interval time.Duration
	BaseLat  float64
	BaseLng  float64
	MaxStep  float64
}

func NewSimulatedSource(cfg SimulatedConfig, clock Clock) *SimulatedSource {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &SimulatedSource{
		interval: cfg.Interval,
		baseLat:  cfg.BaseLat,
		baseLng:  cfg.BaseLng,
		maxStep:  cfg.MaxStep,
		clock:    clock,
		rand:     rand.Float64,
	}
}

func (s *SimulatedSource) Kind() types.SourceKind {
	return types.SourceSimulated
}

// Reset makes the next emission the base coordinate again.
func (s *SimulatedSource) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.started = false
}

func (s *SimulatedSource) Subscribe(ctx context.Context, emit func(models.Position)) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return nil
		}
		emit(s.next())

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (s *SimulatedSource) next() models.Position {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := models.UnixSeconds(s.clock.Now())
	if ts <= s.last.T {
		ts = s.last.T + minStep
	}

	if !s.started {
		s.started = true
		s.last = models.Position{Lat: s.baseLat, Lng: s.baseLng, T: ts}
		return s.last
	}

	s.last = models.Position{
		Lat: s.last.Lat + s.offset(),
		Lng: s.last.Lng + s.offset(),
		T:   ts,
	}
	return s.last
}

// offset is uniform in [-maxStep, +maxStep].
func (s *SimulatedSource) offset() float64 {
	return (s.rand()*2 - 1) * s.maxStep
}

// LiveSource forwards positions pushed by the rider's device.
type LiveSource struct {
	mu     sync.Mutex
	emit   func(models.Position)
	token  uint64
	ready  chan struct{}
	armed  bool
	lastT  float64
	waitOn time.Duration
}

// NewLiveSource returns a source whose Push waits up to attachWait for a subscriber
// that is being attached.
func NewLiveSource(attachWait time.Duration) *LiveSource {
	return &LiveSource{
		ready:  make(chan struct{}),
		waitOn: attachWait,
	}
}

func (l *LiveSource) Kind() types.SourceKind {
	return types.SourceLive
}

// Subscribe registers emit until ctx is done. A newer subscriber replaces an older one.
func (l *LiveSource) Subscribe(ctx context.Context, emit func(models.Position)) error {
	l.mu.Lock()
	l.token++
	token := l.token
	l.emit = emit
	if !l.armed {
		l.armed = true
		close(l.ready)
	}
	l.mu.Unlock()

	<-ctx.Done()

	l.mu.Lock()
	if l.token == token {
		l.emit = nil
		l.armed = false
		l.ready = make(chan struct{})
	}
	l.mu.Unlock()

	return nil
}

// Push delivers p to the current subscriber.
func (l *LiveSource) Push(ctx context.Context, p models.Position) error {
	if !p.Valid() {
		return types.ErrInvalidCoordinates
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.emit == nil {
		ready := l.ready
		l.mu.Unlock()

		timer := time.NewTimer(l.waitOn)
		var err error
		select {
		case <-ready:
		case <-timer.C:
			err = types.ErrSourceInactive
		case <-ctx.Done():
			err = ctx.Err()
		}
		timer.Stop()

		l.mu.Lock()
		if err != nil {
			return err
		}
		if l.emit == nil {
			return types.ErrSourceInactive
		}
	}

	if p.T <= l.lastT {
		return types.ErrNonMonotonicSample
	}
	l.lastT = p.T
	l.emit(p)

	return nil
}
