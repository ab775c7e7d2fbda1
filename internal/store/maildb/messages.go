package maildb

import (
	"context"
	"database/sql"
	"time"
)

// MessageRepo handles messages.
type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{db: db} }

func (r *MessageRepo) Insert(ctx context.Context, m Message) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO messages(id, thread_id, message_id, from_name, from_addr,
	                     to_addrs, cc_addrs, bcc_addrs, subject, date,
	                     in_reply_to, refs, body)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`, m.ID, m.ThreadID, m.MessageID, m.FromName, m.FromAddr,
		m.To, m.Cc, m.Bcc, m.Subject, m.Date.UTC().Format(time.RFC3339),
		m.InReplyTo, m.References, m.Body)
	return err
}

func (r *MessageRepo) ByThread(ctx context.Context, threadID string) ([]Message, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, thread_id, message_id, from_name, from_addr,
	       to_addrs, cc_addrs, bcc_addrs, subject, date, in_reply_to, refs, body
	FROM messages WHERE thread_id = ? ORDER BY date`, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanMessage(rows *sql.Rows) (Message, error) {
	var m Message
	var date string
	if err := rows.Scan(&m.ID, &m.ThreadID, &m.MessageID, &m.FromName, &m.FromAddr,
		&m.To, &m.Cc, &m.Bcc, &m.Subject, &date, &m.InReplyTo, &m.References, &m.Body); err != nil {
		return Message{}, err
	}
	if t, err := time.Parse(time.RFC3339, date); err == nil {
		m.Date = t
	}
	return m, nil
}
