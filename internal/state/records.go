package state

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/leapstack-labs/gridview/pkg/grid"
)

// ListRecords returns every record in position order.
func (s *SQLiteStore) ListRecords(ctx context.Context) ([]grid.Record, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, fields, disabled FROM records ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []grid.Record
	for rows.Next() {
		var (
			id       string
			fields   string
			disabled bool
		)
		if err := rows.Scan(&id, &fields, &disabled); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		decoded, err := decodeFields(fields)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", id, err)
		}
		out = append(out, grid.Record{ID: id, Fields: decoded, Disabled: disabled})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return out, nil
}

// GetRecord returns one record by id.
func (s *SQLiteStore) GetRecord(ctx context.Context, id string) (grid.Record, bool, error) {
	if s.db == nil {
		return grid.Record{}, false, ErrNotOpen
	}

	var (
		fields   string
		disabled bool
	)
	err := s.db.QueryRowContext(ctx, `SELECT fields, disabled FROM records WHERE id = ?`, id).Scan(&fields, &disabled)
	if errors.Is(err, sql.ErrNoRows) {
		return grid.Record{}, false, nil
	}
	if err != nil {
		return grid.Record{}, false, fmt.Errorf("failed to get record %s: %w", id, err)
	}
	decoded, err := decodeFields(fields)
	if err != nil {
		return grid.Record{}, false, fmt.Errorf("record %s: %w", id, err)
	}
	return grid.Record{ID: id, Fields: decoded, Disabled: disabled}, true, nil
}

// CountRecords returns the number of stored records.
func (s *SQLiteStore) CountRecords(ctx context.Context) (int, error) {
	if s.db == nil {
		return 0, ErrNotOpen
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

// UpsertRecords inserts new records at the end of the collection and
// updates existing ones in place. Records without an id get a UUID.
// The records as stored are returned.
func (s *SQLiteStore) UpsertRecords(ctx context.Context, records ...grid.Record) ([]grid.Record, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stored, err := upsert(ctx, tx, records)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit records: %w", err)
	}
	return stored, nil
}

// DeleteRecords removes records by id and returns how many were deleted.
func (s *SQLiteStore) DeleteRecords(ctx context.Context, ids ...string) (int64, error) {
	if s.db == nil {
		return 0, ErrNotOpen
	}
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to delete records: %w", err)
	}
	return n, nil
}

// Import loads records in one transaction. With replace the table is
// emptied first.
func (s *SQLiteStore) Import(ctx context.Context, records []grid.Record, replace bool) (int, error) {
	if s.db == nil {
		return 0, ErrNotOpen
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if replace {
		if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
			return 0, fmt.Errorf("failed to clear records: %w", err)
		}
	}

	stored, err := upsert(ctx, tx, records)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	s.logger.Debug("imported records", "count", len(stored), "replace", replace)
	return len(stored), nil
}

func upsert(ctx context.Context, tx *sql.Tx, records []grid.Record) ([]grid.Record, error) {
	var next int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), 0) FROM records`).Scan(&next); err != nil {
		return nil, fmt.Errorf("failed to read record positions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (id, position, fields, disabled, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			fields = excluded.fields,
			disabled = excluded.disabled,
			updated_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	stored := make([]grid.Record, 0, len(records))
	for _, r := range records {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if r.Fields == nil {
			r.Fields = map[string]any{}
		}
		fields, err := json.Marshal(r.Fields)
		if err != nil {
			return nil, fmt.Errorf("record %s: failed to encode fields: %w", r.ID, err)
		}
		next++
		if _, err := stmt.ExecContext(ctx, r.ID, next, string(fields), r.Disabled); err != nil {
			return nil, fmt.Errorf("failed to store record %s: %w", r.ID, err)
		}
		stored = append(stored, r)
	}
	return stored, nil
}

func decodeFields(s string) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	fields := map[string]any{}
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("failed to decode fields: %w", err)
	}
	return fields, nil
}
