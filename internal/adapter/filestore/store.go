// Package filestore keeps activities in memory and mirrors them to one JSON file.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/Temutjin2k/govv-tracker/internal/domain/models"
	"github.com/Temutjin2k/govv-tracker/internal/domain/types"
	"github.com/Temutjin2k/govv-tracker/pkg/metrics"
)

const serviceName = "filestore"

type document struct {
	Activities []models.Activity `json:"activities"`
}

// Store is rehydrated from disk on Open and rewritten atomically after every append.
type Store struct {
	path string

	mu    sync.RWMutex
	items []models.Activity
	index map[string]int
}

// Open loads path, creating an empty database if the file does not exist.
func Open(path string) (*Store, error) {
	const op = "filestore.Open"

	s := &Store{path: path, index: make(map[string]int)}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("%s: create dir: %w", op, err)
		}
		if err := s.flush(nil); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("%s: read: %w", op, err)
	}

	var doc document
	if len(data) > 0 {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%s: decode %s: %w", op, path, err)
		}
	}
	for _, a := range doc.Activities {
		if _, dup := s.index[a.ID]; dup || a.ID == "" {
			continue
		}
		s.index[a.ID] = len(s.items)
		s.items = append(s.items, a)
	}

	return s, nil
}

func (s *Store) Append(ctx context.Context, a *models.Activity) (id string, err error) {
	const op = "filestore.Append"
	defer observe("append", time.Now(), &err)

	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[a.ID]; ok {
		return "", fmt.Errorf("%s: %w", op, types.ErrActivityExists)
	}

	next := append(s.items[:len(s.items):len(s.items)], *a.Clone())
	if err := s.flush(next); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.items = next
	s.index[a.ID] = len(next) - 1
	return a.ID, nil
}

func (s *Store) Get(_ context.Context, id string) (a *models.Activity, err error) {
	const op = "filestore.Get"
	defer observe("get", time.Now(), &err)

	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, types.ErrActivityNotFound)
	}
	return s.items[i].Clone(), nil
}

func (s *Store) List(_ context.Context, limit, offset int) (out []models.Activity, err error) {
	defer observe("list", time.Now(), &err)

	s.mu.RLock()
	order := make([]int, len(s.items))
	for i := range order {
		order[i] = len(s.items) - 1 - i
	}
	starts := make([]time.Time, len(s.items))
	for i := range s.items {
		starts[i] = s.items[i].StartedAt()
	}
	// newest insertion first on equal start times
	sort.SliceStable(order, func(i, j int) bool {
		return starts[order[i]].After(starts[order[j]])
	})

	offset = max(offset, 0)
	if offset >= len(order) || limit <= 0 {
		s.mu.RUnlock()
		return []models.Activity{}, nil
	}
	end := min(offset+limit, len(order))

	out = make([]models.Activity, 0, end-offset)
	for _, i := range order[offset:end] {
		out = append(out, *s.items[i].Clone())
	}
	s.mu.RUnlock()

	return out, nil
}

func (s *Store) Close() error {
	return nil
}

// flush writes items to a temp file and renames it over the database file.
func (s *Store) flush(items []models.Activity) error {
	if items == nil {
		items = []models.Activity{}
	}
	data, err := json.MarshalIndent(document{Activities: items}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".activities-*.json")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

func observe(op string, start time.Time, err *error) {
	metrics.RecordStoreOperation(serviceName, op, *err, time.Since(start))
}
