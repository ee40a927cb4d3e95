// Package sqlite stores activities in an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Temutjin2k/govv-tracker/internal/domain/models"
	"github.com/Temutjin2k/govv-tracker/internal/domain/types"
	"github.com/Temutjin2k/govv-tracker/pkg/metrics"

	_ "modernc.org/sqlite"
)

const serviceName = "sqlite"

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and migrates it.
func Open(ctx context.Context, path string) (*Store, error) {
	const op = "sqlite.Open"

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	// single writer keeps appends serialized
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}
	if err := Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Append(ctx context.Context, a *models.Activity) (id string, err error) {
	const op = "sqlite.Append"
	defer observe("append", time.Now(), &err)

	path, err := json.Marshal(pathOrEmpty(a.Path))
	if err != nil {
		return "", fmt.Errorf("%s: encode path: %w", op, err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO activities (id, name, route, distance_km, duration_sec, avg_kmh, start_time, start_unix_ms, path, notes, private, points_earned)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING;`,
		a.ID, a.Name, a.Route, a.DistanceKm, a.DurationSec, a.AvgKmh,
		a.StartTime, a.StartedAt().UnixMilli(), string(path), a.Notes, a.Private, a.PointsEarned,
	)
	if err != nil {
		return "", fmt.Errorf("%s: insert: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return "", fmt.Errorf("%s: %w", op, types.ErrActivityExists)
	}

	return a.ID, nil
}

const selectColumns = `id, name, route, distance_km, duration_sec, avg_kmh, start_time, path, notes, private, points_earned`

func (s *Store) Get(ctx context.Context, id string) (a *models.Activity, err error) {
	const op = "sqlite.Get"
	defer observe("get", time.Now(), &err)

	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM activities WHERE id = ?;`, id)
	a, err = scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, types.ErrActivityNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

func (s *Store) List(ctx context.Context, limit, offset int) (out []models.Activity, err error) {
	const op = "sqlite.List"
	defer observe("list", time.Now(), &err)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM activities ORDER BY start_unix_ms DESC, seq DESC LIMIT ? OFFSET ?;`,
		limit, max(offset, 0))
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}
	defer rows.Close()

	out = []models.Activity{}
	for rows.Next() {
		a, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return out, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (*models.Activity, error) {
	var (
		a    models.Activity
		path string
	)
	if err := row.Scan(&a.ID, &a.Name, &a.Route, &a.DistanceKm, &a.DurationSec, &a.AvgKmh,
		&a.StartTime, &path, &a.Notes, &a.Private, &a.PointsEarned); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(path), &a.Path); err != nil {
		return nil, fmt.Errorf("decode path: %w", err)
	}
	return &a, nil
}

func pathOrEmpty(p []models.Position) []models.Position {
	if p == nil {
		return []models.Position{}
	}
	return p
}

func observe(op string, start time.Time, err *error) {
	metrics.RecordStoreOperation(serviceName, op, *err, time.Since(start))
}
