package exporter

import (
	"context"
	"database/sql"
	"time"
)

type Repository interface {
	CreateBatch(ctx context.Context, b *Batch) error
	FinishBatch(ctx context.Context, id, status string, successCount, errorCount int, errMsg string) error
	GetBatch(ctx context.Context, id string) (*Batch, error)
	ListBatches(ctx context.Context, limit int) ([]*Batch, error)

	CreateItem(ctx context.Context, item *Item) error
	GetItems(ctx context.Context, batchID string) ([]*Item, error)
	ListRecentItems(ctx context.Context, limit int) ([]*Item, error)
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) CreateBatch(ctx context.Context, b *Batch) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO batches (id, mode, status, item_count, success_count, error_count, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, b.ID, b.Mode, b.Status, b.ItemCount, b.SuccessCount, b.ErrorCount, nullString(b.Error),
		b.CreatedAt.Format(time.RFC3339), b.UpdatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) FinishBatch(ctx context.Context, id, status string, successCount, errorCount int, errMsg string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE batches SET status = ?, success_count = ?, error_count = ?, error = ?, updated_at = ?
		WHERE id = ?
	`, status, successCount, errorCount, nullString(errMsg), time.Now().Format(time.RFC3339), id)
	return err
}

func (r *SQLiteRepository) GetBatch(ctx context.Context, id string) (*Batch, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, mode, status, item_count, success_count, error_count, error, created_at, updated_at
		FROM batches WHERE id = ?
	`, id)
	return scanBatch(row)
}

func (r *SQLiteRepository) ListBatches(ctx context.Context, limit int) ([]*Batch, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, mode, status, item_count, success_count, error_count, error, created_at, updated_at
		FROM batches ORDER BY created_at DESC, id LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []*Batch
	for rows.Next() {
		b, err := scanBatchRow(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

func scanBatch(row *sql.Row) (*Batch, error) {
	var b Batch
	var errMsg sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&b.ID, &b.Mode, &b.Status, &b.ItemCount, &b.SuccessCount, &b.ErrorCount, &errMsg, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	b.Error = errMsg.String
	b.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	b.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &b, nil
}

func scanBatchRow(rows *sql.Rows) (*Batch, error) {
	var b Batch
	var errMsg sql.NullString
	var createdAt, updatedAt string

	if err := rows.Scan(&b.ID, &b.Mode, &b.Status, &b.ItemCount, &b.SuccessCount, &b.ErrorCount, &errMsg, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	b.Error = errMsg.String
	b.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	b.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &b, nil
}

func (r *SQLiteRepository) CreateItem(ctx context.Context, item *Item) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO batch_items (id, batch_id, position, sequence_name, clean_name, preset_path, output_path, version, status, error, job_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.ID, item.BatchID, item.Position, item.SequenceName, item.CleanName,
		nullString(item.PresetPath), nullString(item.OutputPath), item.Version,
		item.Status, nullString(item.Error), nullString(item.JobID),
		item.CreatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetItems(ctx context.Context, batchID string) ([]*Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, batch_id, position, sequence_name, clean_name, preset_path, output_path, version, status, error, job_id, created_at
		FROM batch_items WHERE batch_id = ? ORDER BY position
	`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanItems(rows)
}

func (r *SQLiteRepository) ListRecentItems(ctx context.Context, limit int) ([]*Item, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, batch_id, position, sequence_name, clean_name, preset_path, output_path, version, status, error, job_id, created_at
		FROM batch_items ORDER BY created_at DESC, batch_id, position LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanItems(rows)
}

func scanItems(rows *sql.Rows) ([]*Item, error) {
	var items []*Item
	for rows.Next() {
		var item Item
		var presetPath, outputPath, errMsg, jobID sql.NullString
		var createdAt string

		if err := rows.Scan(&item.ID, &item.BatchID, &item.Position, &item.SequenceName, &item.CleanName,
			&presetPath, &outputPath, &item.Version, &item.Status, &errMsg, &jobID, &createdAt); err != nil {
			return nil, err
		}

		item.PresetPath = presetPath.String
		item.OutputPath = outputPath.String
		item.Error = errMsg.String
		item.JobID = jobID.String
		item.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		items = append(items, &item)
	}
	return items, rows.Err()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
