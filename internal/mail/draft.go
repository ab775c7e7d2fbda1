package mail

import (
	"bufio"
	"strings"
)

// EditHeaders are the headers exposed in the draft file handed to the
// editor. Everything else is carried over untouched.
var EditHeaders = []string{"Subject", "To", "Cc", "Bcc", "From"}

// RenderDraft serializes an envelope for editing: the edit headers in
// their canonical order, a blank line, then the body.
func RenderDraft(e *Envelope) string {
	var b strings.Builder
	for _, key := range EditHeaders {
		switch {
		case e.Has(key):
			for _, v := range e.GetAll(key) {
				b.WriteString(key)
				b.WriteString(": ")
				b.WriteString(v)
				b.WriteString("\n")
			}
		case key == "Subject" || key == "To":
			// always offered for editing, even when empty
			b.WriteString(key)
			b.WriteString(": \n")
		}
	}
	b.WriteString("\n")
	b.WriteString(e.body)
	return b.String()
}

// ParseDraft reads an edited draft back: headers until the first blank
// line, the rest is the body. Header lines without a colon are skipped.
func ParseDraft(text string) (headers []struct{ Key, Value string }, body string) {
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	inBody := false
	var bodyLines []string
	for sc.Scan() {
		line := sc.Text()
		if inBody {
			bodyLines = append(bodyLines, line)
			continue
		}
		if strings.TrimSpace(line) == "" {
			inBody = true
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		headers = append(headers, struct{ Key, Value string }{
			Key:   strings.TrimSpace(key),
			Value: strings.TrimSpace(value),
		})
	}
	return headers, strings.Join(bodyLines, "\n")
}

// ApplyDraft replaces the envelope's edit headers and body with the
// contents of an edited draft. Headers absent from the draft are
// dropped, headers the draft never exposes stay.
func ApplyDraft(e *Envelope, text string) {
	headers, body := ParseDraft(text)
	for _, key := range EditHeaders {
		e.Del(key)
	}
	for _, h := range headers {
		if h.Value == "" {
			continue
		}
		e.Add(h.Key, h.Value)
	}
	e.SetBody(body)
}
