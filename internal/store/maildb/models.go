package maildb

import "time"

// Thread is one conversation in the index, with its tags resolved.
type Thread struct {
	ID      string
	Subject string
	Tags    []string
	// Total counts the messages in the thread.
	Total int
}

// Message is one mail inside a thread. Address headers keep their raw
// comma-separated form; splitting them is the concern of the mail package.
type Message struct {
	ID         string
	ThreadID   string
	MessageID  string
	FromName   string
	FromAddr   string
	To         string
	Cc         string
	Bcc        string
	Subject    string
	Date       time.Time
	InReplyTo  string
	References string
	Body       string
}
