package store

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/ezeeyahoo/alot/internal/store/maildb"
)

// writeOp is a single journalled tag mutation. Ops with hasSet replace
// the whole tag set before adds and removes are applied.
type writeOp struct {
	threadID string
	add      []string
	remove   []string
	set      []string
	hasSet   bool
}

// Store wraps the mail index. Tag mutations are journalled in memory and
// only written to the database when Flush is called, so reads between a
// mutation and its flush see the pending state overlaid on the database.
type Store struct {
	db       *sql.DB
	readOnly bool
	pending  []writeOp

	threads  *maildb.ThreadRepo
	messages *maildb.MessageRepo
	tags     *maildb.TagRepo
}

func New(db *sql.DB, readOnly bool) *Store {
	return &Store{
		db:       db,
		readOnly: readOnly,
		threads:  maildb.NewThreadRepo(db),
		messages: maildb.NewMessageRepo(db),
		tags:     maildb.NewTagRepo(db),
	}
}

func (s *Store) Threads() *maildb.ThreadRepo   { return s.threads }
func (s *Store) Messages() *maildb.MessageRepo { return s.messages }

// AddTags journals adding tags to a thread.
func (s *Store) AddTags(threadID string, tags ...string) error {
	if s.readOnly {
		return ErrReadOnly
	}
	s.pending = append(s.pending, writeOp{threadID: threadID, add: tags})
	return nil
}

// RemoveTags journals removing tags from a thread.
func (s *Store) RemoveTags(threadID string, tags ...string) error {
	if s.readOnly {
		return ErrReadOnly
	}
	s.pending = append(s.pending, writeOp{threadID: threadID, remove: tags})
	return nil
}

// SetTags journals replacing the full tag set of a thread.
func (s *Store) SetTags(threadID string, tags ...string) error {
	if s.readOnly {
		return ErrReadOnly
	}
	s.pending = append(s.pending, writeOp{threadID: threadID, set: tags, hasSet: true})
	return nil
}

// ThreadTags returns the tags of a thread with any pending journal
// entries applied on top of the stored state.
func (s *Store) ThreadTags(ctx context.Context, threadID string) ([]string, error) {
	stored, err := s.tags.TagsOf(ctx, threadID)
	if err != nil {
		return nil, err
	}
	return s.overlayTags(threadID, stored), nil
}

func (s *Store) overlayTags(threadID string, stored []string) []string {
	set := make(map[string]struct{}, len(stored))
	for _, t := range stored {
		set[t] = struct{}{}
	}
	for _, op := range s.pending {
		if op.threadID != threadID {
			continue
		}
		if op.hasSet {
			set = make(map[string]struct{}, len(op.set))
			for _, t := range op.set {
				set[t] = struct{}{}
			}
		}
		for _, t := range op.add {
			set[t] = struct{}{}
		}
		for _, t := range op.remove {
			delete(set, t)
		}
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// HasPending reports whether journalled mutations await a flush.
func (s *Store) HasPending() bool { return len(s.pending) > 0 }

// Flush writes all journalled mutations to the database in one
// transaction. If the database is locked by another process the journal
// is kept so a later Flush can retry.
func (s *Store) Flush(ctx context.Context) error {
	if s.readOnly {
		return ErrReadOnly
	}
	if len(s.pending) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return lockedErr(err)
	}
	for _, op := range s.pending {
		if op.hasSet {
			if err := maildb.ClearTx(ctx, tx, op.threadID); err != nil {
				tx.Rollback()
				return lockedErr(err)
			}
			for _, t := range op.set {
				if err := maildb.AddTx(ctx, tx, op.threadID, t); err != nil {
					tx.Rollback()
					return lockedErr(err)
				}
			}
		}
		for _, t := range op.add {
			if err := maildb.AddTx(ctx, tx, op.threadID, t); err != nil {
				tx.Rollback()
				return lockedErr(err)
			}
		}
		for _, t := range op.remove {
			if err := maildb.RemoveTx(ctx, tx, op.threadID, t); err != nil {
				tx.Rollback()
				return lockedErr(err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return lockedErr(err)
	}
	s.pending = nil
	return nil
}

// lockedErr maps sqlite busy/locked failures to ErrLocked so callers
// can schedule a retry.
func lockedErr(err error) error {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		if serr.Code == sqlite3.ErrBusy || serr.Code == sqlite3.ErrLocked {
			return ErrLocked
		}
	}
	return err
}

// AllTags returns every tag in the index, including tags that only
// exist in the journal.
func (s *Store) AllTags(ctx context.Context) ([]string, error) {
	stored, err := s.tags.All(ctx)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(stored))
	for _, t := range stored {
		set[t] = struct{}{}
	}
	for _, op := range s.pending {
		for _, t := range op.add {
			set[t] = struct{}{}
		}
		for _, t := range op.set {
			set[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}

// SearchThreads runs a query against the index. The query language is a
// space separated list of terms: "tag:foo" restricts to threads carrying
// the tag, "thread:<id>" restricts to a single thread, and any other
// term matches subject, sender or body. Parentheses and AND are accepted
// and ignored since terms always conjoin.
func (s *Store) SearchThreads(ctx context.Context, query string) ([]maildb.Thread, error) {
	where, args, tagTerms := buildQuery(query)
	q := `SELECT t.id, t.subject,
	             (SELECT COUNT(*) FROM messages m WHERE m.thread_id = t.id) AS total
	      FROM threads t`
	if where != "" {
		q += " WHERE " + where
	}
	q += " ORDER BY t.id"
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []maildb.Thread
	for rows.Next() {
		var t maildb.Thread
		if err := rows.Scan(&t.ID, &t.Subject, &t.Total); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// tag terms are matched against the overlaid tag set so journalled
	// mutations are visible before a flush
	matched := out[:0]
	for i := range out {
		tags, err := s.ThreadTags(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Tags = tags
		if hasAllTags(tags, tagTerms) {
			matched = append(matched, out[i])
		}
	}
	return matched, nil
}

func hasAllTags(tags, want []string) bool {
	for _, w := range want {
		found := false
		for _, t := range tags {
			if t == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ThreadMessages returns a thread's messages in date order.
func (s *Store) ThreadMessages(ctx context.Context, threadID string) ([]maildb.Message, error) {
	return s.messages.ByThread(ctx, threadID)
}

// CountMessages returns the number of messages matched by a query.
func (s *Store) CountMessages(ctx context.Context, query string) (int, error) {
	threads, err := s.SearchThreads(ctx, query)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, t := range threads {
		n += t.Total
	}
	return n, nil
}

func buildQuery(query string) (where string, args []any, tagTerms []string) {
	var conds []string
	for _, tok := range strings.Fields(query) {
		tok = strings.Trim(tok, "()")
		if tok == "" || strings.EqualFold(tok, "AND") {
			continue
		}
		switch {
		case strings.HasPrefix(tok, "tag:"):
			tagTerms = append(tagTerms, strings.TrimPrefix(tok, "tag:"))
		case strings.HasPrefix(tok, "thread:"):
			conds = append(conds, "t.id = ?")
			args = append(args, strings.TrimPrefix(tok, "thread:"))
		default:
			conds = append(conds,
				`EXISTS (SELECT 1 FROM messages m WHERE m.thread_id = t.id
				 AND (m.subject LIKE ? OR m.from_name LIKE ? OR m.from_addr LIKE ? OR m.body LIKE ?))`)
			pat := "%" + tok + "%"
			args = append(args, pat, pat, pat, pat)
		}
	}
	return strings.Join(conds, " AND "), args, tagTerms
}
