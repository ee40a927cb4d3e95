package activity

import (
	"context"
	"errors"
	"io"
	"math"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/Temutjin2k/govv-tracker/internal/domain/models"
	"github.com/Temutjin2k/govv-tracker/internal/domain/types"
	"github.com/Temutjin2k/govv-tracker/internal/service/gamification"
	"github.com/Temutjin2k/govv-tracker/pkg/logger"
)

type memStore struct {
	mu      sync.Mutex
	items   map[string]*models.Activity
	failErr error
}

func newMemStore() *memStore {
	return &memStore{items: make(map[string]*models.Activity)}
}

func (m *memStore) Append(_ context.Context, a *models.Activity) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return "", m.failErr
	}
	if _, ok := m.items[a.ID]; ok {
		return "", types.ErrActivityExists
	}
	m.items[a.ID] = a.Clone()
	return a.ID, nil
}

func (m *memStore) Get(_ context.Context, id string) (*models.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok {
		return nil, types.ErrActivityNotFound
	}
	return a.Clone(), nil
}

func (m *memStore) List(_ context.Context, limit, offset int) ([]models.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]models.Activity, 0, len(m.items))
	for _, a := range m.items {
		all = append(all, *a.Clone())
	}
	sort.Slice(all, func(i, j int) bool { return all[i].StartTime > all[j].StartTime })
	if offset >= len(all) {
		return []models.Activity{}, nil
	}
	return all[offset:min(offset+limit, len(all))], nil
}

func (m *memStore) Close() error { return nil }

type recPublisher struct {
	msgs []models.ActivityCreatedMessage
	err  error
}

func (p *recPublisher) PublishActivityCreated(_ context.Context, msg models.ActivityCreatedMessage) error {
	p.msgs = append(p.msgs, msg)
	return p.err
}

type memCache struct {
	st          *models.Standing
	invalidated int
	sets        int
}

func (c *memCache) Get(context.Context) (*models.Standing, error) { return c.st, nil }
func (c *memCache) Set(_ context.Context, st *models.Standing) error {
	c.sets++
	c.st = st
	return nil
}
func (c *memCache) Invalidate(context.Context) error {
	c.invalidated++
	c.st = nil
	return nil
}

type stubGeocoder struct {
	label string
	err   error
}

func (g stubGeocoder) RouteLabel(context.Context, float64, float64) (string, error) {
	return g.label, g.err
}

var now = time.Date(2024, time.May, 10, 18, 0, 0, 0, time.UTC)

func newTestService(store Store, opts ...Option) *Service {
	opts = append(opts, WithClock(func() time.Time { return now }))
	return NewService(store, gamification.New(types.PolicyBonus), logger.New(io.Discard, "test", logger.LevelError), opts...)
}

func sampleRide() *models.Activity {
	start := time.Date(2024, time.May, 10, 7, 0, 0, 0, time.UTC)
	path := []models.Position{
		models.NewPosition(12.9716, 77.5946, start),
		models.NewPosition(12.9816, 77.5946, start.Add(time.Minute)),
		models.NewPosition(13.0216, 77.5946, start.Add(10*time.Minute)),
	}
	return &models.Activity{
		Name:        "Morning",
		DistanceKm:  999, // recomputed from the path
		DurationSec: 600,
		StartTime:   start.Format(time.RFC3339),
		Path:        path,
	}
}

func TestCreateAssignsIDPointsAndDerivedFigures(t *testing.T) {
	store := newMemStore()
	pub := &recPublisher{}
	cache := &memCache{st: &models.Standing{TotalRides: 99}}
	svc := newTestService(store, WithPublisher(pub), WithStandingCache(cache), WithGeocoder(stubGeocoder{label: "Bengaluru"}))

	ctx := types.WithRider(context.Background(), "alice")
	got, err := svc.Create(ctx, sampleRide())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if got.ID == "" {
		t.Fatal("id not assigned")
	}
	wantKm := models.PathDistance(got.Path)
	if math.Abs(got.DistanceKm-wantKm) > 1e-12 {
		t.Fatalf("distance = %v, want path sum %v", got.DistanceKm, wantKm)
	}
	if got.AvgKmh != got.DistanceKm/(600.0/3600) {
		t.Fatalf("avg = %v not consistent", got.AvgKmh)
	}
	if got.PointsEarned != gamification.New(types.PolicyBonus).PointsForRide(got.DistanceKm) {
		t.Fatalf("points = %d", got.PointsEarned)
	}
	if got.Route != "Bengaluru" {
		t.Fatalf("route = %q", got.Route)
	}

	stored, err := store.Get(ctx, got.ID)
	if err != nil || stored.PointsEarned != got.PointsEarned {
		t.Fatalf("stored record mismatch: %v", err)
	}
	if len(pub.msgs) != 1 || pub.msgs[0].ActivityID != got.ID || pub.msgs[0].RiderID != "alice" {
		t.Fatalf("published = %+v", pub.msgs)
	}
	if cache.invalidated != 1 {
		t.Fatal("standing cache must be invalidated")
	}
}

func TestCreateIsIdempotentForSameID(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	ride := sampleRide()
	ride.ID = "fixed-id"
	first, err := svc.Create(ctx, ride)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	ride.Notes = "changed"
	second, err := svc.Create(ctx, ride)
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}
	if second.ID != first.ID || second.Notes != first.Notes {
		t.Fatal("retry must return the stored record untouched")
	}
	if n := len(store.items); n != 1 {
		t.Fatalf("store has %d items, want 1", n)
	}
}

func TestCreateSurvivesSideEffectFailures(t *testing.T) {
	svc := newTestService(newMemStore(),
		WithPublisher(&recPublisher{err: errors.New("broker down")}),
		WithGeocoder(stubGeocoder{err: errors.New("quota")}),
	)

	got, err := svc.Create(context.Background(), sampleRide())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.Route != "" {
		t.Fatalf("route = %q, want empty", got.Route)
	}
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(a *models.Activity)
		field string
	}{
		{"empty name", func(a *models.Activity) { a.Name = " " }, "name"},
		{"bad start", func(a *models.Activity) { a.StartTime = "yesterday" }, "start_time"},
		{"negative duration", func(a *models.Activity) { a.DurationSec = -1 }, "duration_sec"},
		{"single sample", func(a *models.Activity) { a.Path = a.Path[:1] }, "path"},
		{"bad coordinate", func(a *models.Activity) { a.Path[1].Lat = 95 }, "path"},
		{"time goes back", func(a *models.Activity) { a.Path[2].T = a.Path[0].T }, "path"},
		{"nan distance", func(a *models.Activity) { a.DistanceKm = math.NaN() }, "distance_km"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			svc := newTestService(store)

			ride := sampleRide()
			tt.edit(ride)
			_, err := svc.Create(context.Background(), ride)

			var vErr *ValidationError
			if !errors.As(err, &vErr) || !errors.Is(err, types.ErrInvalidActivity) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if _, ok := vErr.Fields[tt.field]; !ok {
				t.Fatalf("fields = %v, want %s", vErr.Fields, tt.field)
			}
			if len(store.items) != 0 {
				t.Fatal("invalid record must not be stored")
			}
		})
	}
}

func TestCreateStoreFailure(t *testing.T) {
	store := newMemStore()
	store.failErr = errors.New("disk full")
	svc := newTestService(store)

	if _, err := svc.Create(context.Background(), sampleRide()); err == nil {
		t.Fatal("expected error")
	}
}

func TestListLimits(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		r := sampleRide()
		r.StartTime = time.Date(2024, time.January, 1+i, 0, 0, 0, 0, time.UTC).Format(time.RFC3339)
		for j := range r.Path {
			r.Path[j].T += float64(i)
		}
		if _, err := svc.Create(ctx, r); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	items, err := svc.List(ctx, 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != DefaultListLimit {
		t.Fatalf("len = %d, want %d", len(items), DefaultListLimit)
	}
	if items[0].StartTime != "2024-01-25T00:00:00Z" {
		t.Fatalf("first = %s, want most recent", items[0].StartTime)
	}

	items, _ = svc.List(ctx, 1000, 20)
	if len(items) != 5 {
		t.Fatalf("len = %d, want 5", len(items))
	}
}

func TestStandingUsesCache(t *testing.T) {
	store := newMemStore()
	cache := &memCache{}
	svc := newTestService(store, WithStandingCache(cache))
	ctx := context.Background()

	if _, err := svc.Create(ctx, sampleRide()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	st, err := svc.Standing(ctx)
	if err != nil {
		t.Fatalf("Standing: %v", err)
	}
	if st.TotalRides != 1 || st.CurrentStreakDays != 1 {
		t.Fatalf("standing = %+v", st)
	}
	if cache.sets != 1 {
		t.Fatalf("cache sets = %d, want 1", cache.sets)
	}

	cache.st = &models.Standing{TotalRides: 42}
	st, _ = svc.Standing(ctx)
	if st.TotalRides != 42 {
		t.Fatal("cached standing should be served")
	}
}

func TestExportErrors(t *testing.T) {
	svc := newTestService(newMemStore())
	ctx := context.Background()

	if _, err := svc.Export(ctx, "x", "kml"); !errors.Is(err, types.ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}
