package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/classsync-api/internal/models"
)

// RecordRepository persists the shared timetable collections under one application namespace.
type RecordRepository struct {
	db        *sqlx.DB
	namespace string
}

// NewRecordRepository creates a repository scoped to the namespace.
func NewRecordRepository(db *sqlx.DB, namespace string) *RecordRepository {
	return &RecordRepository{db: db, namespace: namespace}
}

// List returns every record in a collection.
func (r *RecordRepository) List(ctx context.Context, collection models.Collection) ([]models.Record, error) {
	const query = `SELECT collection, record_key, payload, updated_at FROM timetable_records WHERE namespace = $1 AND collection = $2 ORDER BY record_key ASC`
	var records []models.Record
	if err := r.db.SelectContext(ctx, &records, query, r.namespace, string(collection)); err != nil {
		return nil, fmt.Errorf("list %s records: %w", collection, err)
	}
	return records, nil
}

// Exists reports whether a record is present.
func (r *RecordRepository) Exists(ctx context.Context, collection models.Collection, key string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM timetable_records WHERE namespace = $1 AND collection = $2 AND record_key = $3)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, r.namespace, string(collection), key); err != nil {
		return false, fmt.Errorf("check %s record: %w", collection, err)
	}
	return exists, nil
}

// Put creates or overwrites a record.
func (r *RecordRepository) Put(ctx context.Context, collection models.Collection, key string, payload []byte) error {
	return r.put(ctx, r.db, collection, key, payload, time.Now().UTC())
}

// PutIfAbsent inserts a record only when the key is free and reports whether it was written.
func (r *RecordRepository) PutIfAbsent(ctx context.Context, collection models.Collection, key string, payload []byte) (bool, error) {
	const query = `INSERT INTO timetable_records (namespace, collection, record_key, payload, updated_at) VALUES ($1, $2, $3, $4, $5) ON CONFLICT (namespace, collection, record_key) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, r.namespace, string(collection), key, payload, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("insert %s record: %w", collection, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert %s record rows: %w", collection, err)
	}
	return affected > 0, nil
}

// Delete removes a record and reports whether anything was removed.
func (r *RecordRepository) Delete(ctx context.Context, collection models.Collection, key string) (bool, error) {
	const query = `DELETE FROM timetable_records WHERE namespace = $1 AND collection = $2 AND record_key = $3`
	res, err := r.db.ExecContext(ctx, query, r.namespace, string(collection), key)
	if err != nil {
		return false, fmt.Errorf("delete %s record: %w", collection, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete %s record rows: %w", collection, err)
	}
	return affected > 0, nil
}

// PutBatch writes all records within one transaction.
func (r *RecordRepository) PutBatch(ctx context.Context, writes []models.RecordWrite) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record batch: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	for _, w := range writes {
		if err = r.put(ctx, tx, w.Collection, w.Key, w.Payload, now); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit record batch: %w", err)
	}
	return nil
}

// Clear deletes every record of the given collections within one transaction and returns per-collection counts.
func (r *RecordRepository) Clear(ctx context.Context, collections []models.Collection) (removed map[models.Collection]int64, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin clear records: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	removed = make(map[models.Collection]int64, len(collections))
	for _, collection := range collections {
		res, execErr := tx.ExecContext(ctx, `DELETE FROM timetable_records WHERE namespace = $1 AND collection = $2`, r.namespace, string(collection))
		if execErr != nil {
			err = fmt.Errorf("clear %s records: %w", collection, execErr)
			return nil, err
		}
		affected, rowsErr := res.RowsAffected()
		if rowsErr != nil {
			err = fmt.Errorf("clear %s records rows: %w", collection, rowsErr)
			return nil, err
		}
		removed[collection] = affected
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit clear records: %w", err)
	}
	return removed, nil
}

func (r *RecordRepository) put(ctx context.Context, exec sqlx.ExecerContext, collection models.Collection, key string, payload []byte, at time.Time) error {
	const query = `INSERT INTO timetable_records (namespace, collection, record_key, payload, updated_at) VALUES ($1, $2, $3, $4, $5) ON CONFLICT (namespace, collection, record_key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`
	if _, err := exec.ExecContext(ctx, query, r.namespace, string(collection), key, payload, at); err != nil {
		return fmt.Errorf("upsert %s record: %w", collection, err)
	}
	return nil
}
