package maildb

import (
	"context"
	"database/sql"
)

// ThreadRepo handles threads.
type ThreadRepo struct {
	db *sql.DB
}

func NewThreadRepo(db *sql.DB) *ThreadRepo { return &ThreadRepo{db: db} }

func (r *ThreadRepo) Upsert(ctx context.Context, id, subject string) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO threads(id, subject) VALUES (?, ?)
	ON CONFLICT(id) DO UPDATE SET subject=excluded.subject;
	`, id, subject)
	return err
}

func (r *ThreadRepo) Get(ctx context.Context, id string) (*Thread, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT t.id, t.subject,
	       (SELECT COUNT(*) FROM messages m WHERE m.thread_id = t.id)
	FROM threads t WHERE t.id = ?`, id)
	var t Thread
	if err := row.Scan(&t.ID, &t.Subject, &t.Total); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *ThreadRepo) List(ctx context.Context) ([]Thread, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT t.id, t.subject,
	       (SELECT COUNT(*) FROM messages m WHERE m.thread_id = t.id)
	FROM threads t ORDER BY t.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Thread
	for rows.Next() {
		var t Thread
		if err := rows.Scan(&t.ID, &t.Subject, &t.Total); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
