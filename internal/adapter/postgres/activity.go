package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Temutjin2k/govv-tracker/internal/domain/models"
	"github.com/Temutjin2k/govv-tracker/internal/domain/types"
	"github.com/Temutjin2k/govv-tracker/pkg/metrics"
	"github.com/Temutjin2k/govv-tracker/pkg/postgres"
	"github.com/Temutjin2k/govv-tracker/pkg/trm"
)

const serviceName = "postgres"

// ActivityRepo stores activity rows and their path samples.
type ActivityRepo struct {
	db    Querier
	trm   trm.TxManager
	close func()
}

func NewActivityRepo(db Querier, trm trm.TxManager, closeFn func()) *ActivityRepo {
	return &ActivityRepo{db: db, trm: trm, close: closeFn}
}

// Append inserts the activity and its samples in one transaction.
func (r *ActivityRepo) Append(ctx context.Context, a *models.Activity) (id string, err error) {
	const op = "ActivityRepo.Append"
	defer observe("append", time.Now(), &err)

	err = r.trm.Do(ctx, func(ctx context.Context) error {
		q := TxorDB(ctx, r.db)

		tag, err := q.Exec(ctx, `
			INSERT INTO activities (id, name, route, distance_km, duration_sec, avg_kmh, start_time, start_at, notes, private, points_earned)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (id) DO NOTHING;`,
			a.ID, a.Name, a.Route, a.DistanceKm, a.DurationSec, a.AvgKmh,
			a.StartTime, a.StartedAt(), a.Notes, a.Private, a.PointsEarned,
		)
		if err != nil {
			if postgres.IsUniqueViolation(err) {
				return types.ErrActivityExists
			}
			return fmt.Errorf("insert activity: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return types.ErrActivityExists
		}

		if len(a.Path) == 0 {
			return nil
		}

		seqs := make([]int32, len(a.Path))
		lats := make([]float64, len(a.Path))
		lngs := make([]float64, len(a.Path))
		ts := make([]float64, len(a.Path))
		for i, p := range a.Path {
			seqs[i], lats[i], lngs[i], ts[i] = int32(i), p.Lat, p.Lng, p.T
		}

		_, err = q.Exec(ctx, `
			INSERT INTO activity_samples (activity_id, seq, lat, lng, t)
			SELECT $1, s.seq, s.lat, s.lng, s.t
			FROM unnest($2::int[], $3::float8[], $4::float8[], $5::float8[]) AS s(seq, lat, lng, t);`,
			a.ID, seqs, lats, lngs, ts,
		)
		if err != nil {
			return fmt.Errorf("insert samples: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return a.ID, nil
}

const selectActivity = `SELECT id, name, route, distance_km, duration_sec, avg_kmh, start_time, notes, private, points_earned FROM activities`

func (r *ActivityRepo) Get(ctx context.Context, id string) (a *models.Activity, err error) {
	const op = "ActivityRepo.Get"
	defer observe("get", time.Now(), &err)

	q := TxorDB(ctx, r.db)

	a, err = scanActivity(q.QueryRow(ctx, selectActivity+` WHERE id = $1;`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, types.ErrActivityNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	paths, err := r.samples(ctx, q, []string{id})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.Path = paths[id]
	if a.Path == nil {
		a.Path = []models.Position{}
	}

	return a, nil
}

func (r *ActivityRepo) List(ctx context.Context, limit, offset int) (out []models.Activity, err error) {
	const op = "ActivityRepo.List"
	defer observe("list", time.Now(), &err)

	q := TxorDB(ctx, r.db)

	rows, err := q.Query(ctx, selectActivity+` ORDER BY start_at DESC, seq DESC LIMIT $1 OFFSET $2;`, limit, max(offset, 0))
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}

	out = []models.Activity{}
	ids := []string{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, *a)
		ids = append(ids, a.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	if len(ids) == 0 {
		return out, nil
	}

	paths, err := r.samples(ctx, q, ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i := range out {
		out[i].Path = paths[out[i].ID]
		if out[i].Path == nil {
			out[i].Path = []models.Position{}
		}
	}

	return out, nil
}

func (r *ActivityRepo) Close() error {
	if r.close != nil {
		r.close()
	}
	return nil
}

func (r *ActivityRepo) samples(ctx context.Context, q Querier, ids []string) (map[string][]models.Position, error) {
	rows, err := q.Query(ctx,
		`SELECT activity_id, lat, lng, t FROM activity_samples WHERE activity_id = ANY($1) ORDER BY activity_id, seq;`, ids)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]models.Position, len(ids))
	for rows.Next() {
		var (
			id string
			p  models.Position
		)
		if err := rows.Scan(&id, &p.Lat, &p.Lng, &p.T); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		out[id] = append(out[id], p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("samples rows: %w", err)
	}
	return out, nil
}

func scanActivity(row pgx.Row) (*models.Activity, error) {
	var a models.Activity
	if err := row.Scan(&a.ID, &a.Name, &a.Route, &a.DistanceKm, &a.DurationSec, &a.AvgKmh,
		&a.StartTime, &a.Notes, &a.Private, &a.PointsEarned); err != nil {
		return nil, err
	}
	return &a, nil
}

func observe(op string, start time.Time, err *error) {
	metrics.RecordStoreOperation(serviceName, op, *err, time.Since(start))
}
