package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/Siddarth2230/domain-keys/internal/models"
	"github.com/Siddarth2230/domain-keys/pkg/metrics"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("record key already exists")
	ErrStale        = errors.New("record was modified concurrently")
)

const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS records (
    key          CHAR(16) PRIMARY KEY,
    route        SMALLINT NOT NULL,
    routes       SMALLINT NOT NULL,
    status_kind  TEXT NOT NULL,
    status_code  SMALLINT NOT NULL,
    value        JSONB NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL,
    updated_at   TIMESTAMPTZ NOT NULL,
    update_count BIGINT NOT NULL DEFAULT 0,
    hash         BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS records_routes_route_idx ON records (routes, route);
`

type RecordRepository struct {
	db *sql.DB
}

func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

func observe(op string, start time.Time) {
	metrics.DatabaseQueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// EnsureSchema creates the records table if it does not exist.
func (r *RecordRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create records schema: %w", err)
	}
	return nil
}

// Save inserts a new record on route out of routes.
func (r *RecordRepository) Save(ctx context.Context, rec *models.Record, route, routes uint8) error {
	defer observe("save", time.Now())

	query := `
        INSERT INTO records (key, route, routes, status_kind, status_code, value, created_at, updated_at, update_count, hash)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `
	_, err := r.db.ExecContext(ctx, query,
		rec.Key, route, routes,
		string(rec.Status.Kind), rec.Status.Code,
		string(rec.Value),
		rec.Version.CreatedAt, rec.Version.UpdatedAt,
		int64(rec.Version.UpdateCount), int64(rec.Version.Hash),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		slog.ErrorContext(ctx, "save record failed", "key", rec.Key, "error", err)
		return err
	}
	return nil
}

const selectColumns = `key, status_kind, status_code, value, created_at, updated_at, update_count, hash`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*models.Record, error) {
	var (
		rec         models.Record
		kind        string
		code        int16
		value       []byte
		updateCount int64
		hash        int64
	)
	if err := row.Scan(&rec.Key, &kind, &code, &value, &rec.Version.CreatedAt, &rec.Version.UpdatedAt, &updateCount, &hash); err != nil {
		return nil, err
	}

	rec.Status = models.NewStatus(models.StatusKind(kind), uint8(code))
	rec.Value = value
	rec.Version.UpdateCount = uint64(updateCount)
	rec.Version.Hash = uint64(hash)
	rec.Version.CreatedAt = rec.Version.CreatedAt.UTC()
	rec.Version.UpdatedAt = rec.Version.UpdatedAt.UTC()
	return &rec, nil
}

func (r *RecordRepository) FindByKey(ctx context.Context, key string) (*models.Record, error) {
	defer observe("find", time.Now())

	query := `SELECT ` + selectColumns + ` FROM records WHERE key = $1`

	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		slog.ErrorContext(ctx, "find record failed", "key", key, "error", err)
		return nil, err
	}
	return rec, nil
}

// Update replaces value, status and version of a record. prevCount is the
// update count the caller read; the write fails with ErrStale if another
// update happened since.
func (r *RecordRepository) Update(ctx context.Context, rec *models.Record, prevCount uint64) error {
	defer observe("update", time.Now())

	query := `
        UPDATE records
        SET status_kind = $2, status_code = $3, value = $4, updated_at = $5, update_count = $6, hash = $7
        WHERE key = $1 AND update_count = $8
    `
	result, err := r.db.ExecContext(ctx, query,
		rec.Key,
		string(rec.Status.Kind), rec.Status.Code,
		string(rec.Value),
		rec.Version.UpdatedAt,
		int64(rec.Version.UpdateCount), int64(rec.Version.Hash),
		int64(prevCount),
	)
	if err != nil {
		slog.ErrorContext(ctx, "update record failed", "key", rec.Key, "error", err)
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		exists, err := r.ExistsByKey(ctx, rec.Key)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrStale
	}
	return nil
}

func (r *RecordRepository) ExistsByKey(ctx context.Context, key string) (bool, error) {
	defer observe("exists", time.Now())

	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM records WHERE key = $1)`, key).Scan(&exists)
	if err != nil {
		slog.ErrorContext(ctx, "check record exists failed", "key", key, "error", err)
		return false, err
	}
	return exists, nil
}

func (r *RecordRepository) DeleteByKey(ctx context.Context, key string) error {
	defer observe("delete", time.Now())

	result, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE key = $1`, key)
	if err != nil {
		slog.ErrorContext(ctx, "delete record failed", "key", key, "error", err)
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByRoute returns up to limit records of one route, oldest first.
func (r *RecordRepository) ListByRoute(ctx context.Context, route, routes uint8, limit int) ([]*models.Record, error) {
	defer observe("list", time.Now())

	query := `SELECT ` + selectColumns + ` FROM records WHERE routes = $1 AND route = $2 ORDER BY created_at, key LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, routes, route, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// EachKey calls fn with every stored key.
func (r *RecordRepository) EachKey(ctx context.Context, fn func(key string)) error {
	defer observe("each_key", time.Now())

	rows, err := r.db.QueryContext(ctx, `SELECT key FROM records`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return err
		}
		fn(key)
	}
	return rows.Err()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
