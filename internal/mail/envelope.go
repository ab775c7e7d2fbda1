package mail

import "strings"

// headerField keeps insertion order so drafts render the way the user
// wrote them.
type headerField struct {
	key   string
	value string
}

// Envelope is a mail being composed: ordered headers, a body, and any
// attached messages.
type Envelope struct {
	headers     []headerField
	body        string
	attachments []*Envelope
	Sent        bool
	Account     string
	Tags        []string
}

func NewEnvelope() *Envelope { return &Envelope{} }

// Get returns the first value of a header, or "" when unset.
func (e *Envelope) Get(key string) string {
	for _, h := range e.headers {
		if strings.EqualFold(h.key, key) {
			return h.value
		}
	}
	return ""
}

// GetAll returns every value of a header in order.
func (e *Envelope) GetAll(key string) []string {
	var out []string
	for _, h := range e.headers {
		if strings.EqualFold(h.key, key) {
			out = append(out, h.value)
		}
	}
	return out
}

func (e *Envelope) Has(key string) bool {
	for _, h := range e.headers {
		if strings.EqualFold(h.key, key) {
			return true
		}
	}
	return false
}

// Set replaces every value of a header with a single value, keeping the
// position of the first occurrence.
func (e *Envelope) Set(key, value string) {
	idx := -1
	kept := e.headers[:0]
	for _, h := range e.headers {
		if strings.EqualFold(h.key, key) {
			if idx < 0 {
				idx = len(kept)
				kept = append(kept, headerField{key: h.key, value: value})
			}
			continue
		}
		kept = append(kept, h)
	}
	e.headers = kept
	if idx < 0 {
		e.headers = append(e.headers, headerField{key: key, value: value})
	}
}

// Add appends another value for a header.
func (e *Envelope) Add(key, value string) {
	e.headers = append(e.headers, headerField{key: key, value: value})
}

// Del removes all values of a header.
func (e *Envelope) Del(key string) {
	kept := e.headers[:0]
	for _, h := range e.headers {
		if !strings.EqualFold(h.key, key) {
			kept = append(kept, h)
		}
	}
	e.headers = kept
}

// Keys returns the header names in order, first occurrence only.
func (e *Envelope) Keys() []string {
	seen := make(map[string]struct{}, len(e.headers))
	var out []string
	for _, h := range e.headers {
		lk := strings.ToLower(h.key)
		if _, ok := seen[lk]; ok {
			continue
		}
		seen[lk] = struct{}{}
		out = append(out, h.key)
	}
	return out
}

func (e *Envelope) Body() string        { return e.body }
func (e *Envelope) SetBody(body string) { e.body = body }

// Attach adds a message that should ride along with this one.
func (e *Envelope) Attach(a *Envelope) {
	e.attachments = append(e.attachments, a)
}

func (e *Envelope) Attachments() []*Envelope { return e.attachments }
