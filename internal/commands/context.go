package commands

import (
	"context"
	"time"

	"github.com/ezeeyahoo/alot/internal/account"
	"github.com/ezeeyahoo/alot/internal/mail"
	"github.com/ezeeyahoo/alot/internal/store/maildb"
)

// ViewKind identifies a view type for mode resolution and the
// bufferlist.
type ViewKind string

const (
	ViewSearch     ViewKind = "search"
	ViewThread     ViewKind = "thread"
	ViewEnvelope   ViewKind = "envelope"
	ViewBufferlist ViewKind = "bufferlist"
	ViewTaglist    ViewKind = "taglist"
)

// View is an open buffer. Commands only ever see views through these
// interfaces; the terminal layer owns the concrete types.
type View interface {
	Kind() ViewKind
	Name() string
	Rebuild()
}

// SearchView is a view showing the threads matching a query.
type SearchView interface {
	View
	Query() string
	SetQuery(q string)
	SelectedThread() *maildb.Thread
	RebuildSelectedThreadline()
	RemoveSelectedThreadline()
}

// ThreadView shows a single thread's messages.
type ThreadView interface {
	View
	Thread() *maildb.Thread
	SelectedMessage() *maildb.Message
	Messages() []maildb.Message
	Fold(messageID string, folded bool)
}

// EnvelopeView shows a mail being composed.
type EnvelopeView interface {
	View
	Envelope() *mail.Envelope
	SetEnvelope(env *mail.Envelope)
}

// BufferlistView lists the open views.
type BufferlistView interface {
	View
	SelectedView() View
}

// TaglistView lists tags.
type TaglistView interface {
	View
	SelectedTag() string
}

// Store is the slice of the mail index commands need.
type Store interface {
	AddTags(threadID string, tags ...string) error
	RemoveTags(threadID string, tags ...string) error
	SetTags(threadID string, tags ...string) error
	ThreadTags(ctx context.Context, threadID string) ([]string, error)
	SearchThreads(ctx context.Context, query string) ([]maildb.Thread, error)
	ThreadMessages(ctx context.Context, threadID string) ([]maildb.Message, error)
	CountMessages(ctx context.Context, query string) (int, error)
	AllTags(ctx context.Context) ([]string, error)
	Flush(ctx context.Context) error
}

// Settings carries the configuration values commands read at apply
// time.
type Settings struct {
	EditorCmd         string
	TerminalCmd       string
	SpawnEditor       bool
	AskSubject        bool
	FlushRetryTimeout time.Duration
}

// Context is everything a command may do to the application. The
// terminal layer implements it; tests use a fake.
type Context interface {
	// view management
	CurrentView() View
	Views() []View
	OpenView(v View)
	CloseView(v View)
	FocusView(v View)

	// view construction
	NewSearchView(query string, threads []maildb.Thread) SearchView
	NewThreadView(thread *maildb.Thread, messages []maildb.Message) ThreadView
	NewEnvelopeView(env *mail.Envelope) EnvelopeView
	NewBufferlistView() BufferlistView
	NewTaglistView(tags []string) TaglistView

	// collaborators
	Store() Store
	Accounts() *account.Manager
	Settings() Settings

	// user interaction
	Notify(msg string)
	NotifyError(msg string)
	// Prompt blocks for a line of input. ok is false when the user
	// cancelled.
	Prompt(prefix string, completions []string) (value string, ok bool)
	// CommandPrompt opens the command line prefilled with the given
	// string.
	CommandPrompt(prefill string)

	// event loop
	Post(fn func())
	ScheduleAfter(d time.Duration, fn func())
	SuspendScreen()
	ResumeScreen()
	Refresh()
	Shutdown()
}
