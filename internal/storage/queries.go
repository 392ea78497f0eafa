package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type KVEntry struct {
	Key       string
	Value     []byte
	UpdatedAt string
}

const getEntry = `SELECT key, value, updated_at FROM kv_entries WHERE key = ?`

func (q *Queries) GetEntry(ctx context.Context, key string) (KVEntry, error) {
	row := q.db.QueryRowContext(ctx, getEntry, key)
	var e KVEntry
	err := row.Scan(&e.Key, &e.Value, &e.UpdatedAt)
	return e, err
}

const upsertEntry = `INSERT INTO kv_entries (key, value, updated_at)
VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`

type UpsertEntryParams struct {
	Key   string
	Value []byte
}

func (q *Queries) UpsertEntry(ctx context.Context, arg UpsertEntryParams) error {
	_, err := q.db.ExecContext(ctx, upsertEntry, arg.Key, arg.Value)
	return err
}

const deleteEntry = `DELETE FROM kv_entries WHERE key = ?`

func (q *Queries) DeleteEntry(ctx context.Context, key string) error {
	_, err := q.db.ExecContext(ctx, deleteEntry, key)
	return err
}

const listKeys = `SELECT key FROM kv_entries ORDER BY key`

func (q *Queries) ListKeys(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listKeys)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
