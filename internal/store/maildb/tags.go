package maildb

import (
	"context"
	"database/sql"
)

// TagRepo handles the thread/tag relation.
type TagRepo struct {
	db *sql.DB
}

func NewTagRepo(db *sql.DB) *TagRepo { return &TagRepo{db: db} }

func (r *TagRepo) TagsOf(ctx context.Context, threadID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT tag FROM thread_tags WHERE thread_id = ? ORDER BY tag`, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		out = append(out, tag)
	}
	return out, rows.Err()
}

func (r *TagRepo) All(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT tag FROM thread_tags ORDER BY tag`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		out = append(out, tag)
	}
	return out, rows.Err()
}

// AddTx/RemoveTx/ClearTx run inside the flush transaction.

func AddTx(ctx context.Context, tx *sql.Tx, threadID, tag string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO thread_tags(thread_id, tag) VALUES (?, ?) ON CONFLICT DO NOTHING`,
		threadID, tag)
	return err
}

func RemoveTx(ctx context.Context, tx *sql.Tx, threadID, tag string) error {
	_, err := tx.ExecContext(ctx,
		`DELETE FROM thread_tags WHERE thread_id = ? AND tag = ?`, threadID, tag)
	return err
}

func ClearTx(ctx context.Context, tx *sql.Tx, threadID string) error {
	_, err := tx.ExecContext(ctx,
		`DELETE FROM thread_tags WHERE thread_id = ?`, threadID)
	return err
}
