package commands

import (
	"context"
	"strings"
	"time"

	"github.com/ezeeyahoo/alot/internal/account"
	"github.com/ezeeyahoo/alot/internal/config"
	"github.com/ezeeyahoo/alot/internal/mail"
	"github.com/ezeeyahoo/alot/internal/store"
	"github.com/ezeeyahoo/alot/internal/store/maildb"
)

// fakeStore is an in-memory commands.Store with scriptable flush
// failures.
type fakeStore struct {
	tags       map[string][]string
	threads    []maildb.Thread
	messages   map[string][]maildb.Message
	flushErrs  []error
	flushCalls int
	readOnly   bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tags:     map[string][]string{},
		messages: map[string][]maildb.Message{},
	}
}

func (s *fakeStore) AddTags(threadID string, tags ...string) error {
	if s.readOnly {
		return store.ErrReadOnly
	}
	for _, t := range tags {
		if !contains(s.tags[threadID], t) {
			s.tags[threadID] = append(s.tags[threadID], t)
		}
	}
	return nil
}

func (s *fakeStore) RemoveTags(threadID string, tags ...string) error {
	if s.readOnly {
		return store.ErrReadOnly
	}
	var kept []string
	for _, t := range s.tags[threadID] {
		if !contains(tags, t) {
			kept = append(kept, t)
		}
	}
	s.tags[threadID] = kept
	return nil
}

func (s *fakeStore) SetTags(threadID string, tags ...string) error {
	if s.readOnly {
		return store.ErrReadOnly
	}
	s.tags[threadID] = append([]string(nil), tags...)
	return nil
}

func (s *fakeStore) ThreadTags(_ context.Context, threadID string) ([]string, error) {
	return s.tags[threadID], nil
}

func (s *fakeStore) SearchThreads(_ context.Context, query string) ([]maildb.Thread, error) {
	var out []maildb.Thread
	for _, t := range s.threads {
		if matchesFakeQuery(query, t, s.tags[t.ID]) {
			t.Tags = s.tags[t.ID]
			out = append(out, t)
		}
	}
	return out, nil
}

func matchesFakeQuery(query string, t maildb.Thread, tags []string) bool {
	for _, tok := range strings.Fields(query) {
		tok = strings.Trim(tok, "()")
		if tok == "" || strings.EqualFold(tok, "AND") {
			continue
		}
		switch {
		case strings.HasPrefix(tok, "tag:"):
			if !contains(tags, strings.TrimPrefix(tok, "tag:")) {
				return false
			}
		case strings.HasPrefix(tok, "thread:"):
			if t.ID != strings.TrimPrefix(tok, "thread:") {
				return false
			}
		default:
			if !strings.Contains(t.Subject, tok) {
				return false
			}
		}
	}
	return true
}

func (s *fakeStore) ThreadMessages(_ context.Context, threadID string) ([]maildb.Message, error) {
	return s.messages[threadID], nil
}

func (s *fakeStore) CountMessages(ctx context.Context, query string) (int, error) {
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

func (s *fakeStore) AllTags(context.Context) ([]string, error) {
	seen := map[string]struct{}{}
	var out []string
	for _, tags := range s.tags {
		for _, t := range tags {
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				out = append(out, t)
			}
		}
	}
	return out, nil
}

func (s *fakeStore) Flush(context.Context) error {
	s.flushCalls++
	if len(s.flushErrs) > 0 {
		err := s.flushErrs[0]
		s.flushErrs = s.flushErrs[1:]
		return err
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// scheduledCall records a ScheduleAfter invocation.
type scheduledCall struct {
	delay time.Duration
	fn    func()
}

// fakeContext implements commands.Context for tests. Prompts answer
// from a scripted queue; scheduled and posted callbacks are recorded
// and can be run by the test.
type fakeContext struct {
	store    *fakeStore
	accounts *account.Manager
	settings Settings

	views   []View
	current int

	notices    []string
	errNotices []string

	promptAnswers []string
	promptSeen    []string
	cmdPrompts    []string

	posted    []func()
	scheduled []scheduledCall

	suspends, resumes, refreshes int
	shutdown                     bool
}

func newFakeContext() *fakeContext {
	return &fakeContext{
		store:    newFakeStore(),
		accounts: account.FromConfig(nil),
		settings: Settings{
			EditorCmd:         "true",
			TerminalCmd:       "true",
			AskSubject:        true,
			FlushRetryTimeout: 5 * time.Second,
		},
		current: -1,
	}
}

func (c *fakeContext) CurrentView() View {
	if c.current < 0 || c.current >= len(c.views) {
		return nil
	}
	return c.views[c.current]
}

func (c *fakeContext) Views() []View { return c.views }

func (c *fakeContext) OpenView(v View) {
	c.views = append(c.views, v)
	c.current = len(c.views) - 1
}

func (c *fakeContext) CloseView(v View) {
	for i, existing := range c.views {
		if existing == v {
			c.views = append(c.views[:i], c.views[i+1:]...)
			break
		}
	}
	if c.current >= len(c.views) {
		c.current = len(c.views) - 1
	}
}

func (c *fakeContext) FocusView(v View) {
	for i, existing := range c.views {
		if existing == v {
			c.current = i
			return
		}
	}
}

func (c *fakeContext) NewSearchView(query string, threads []maildb.Thread) SearchView {
	return &fakeSearchView{query: query, threads: threads}
}

func (c *fakeContext) NewThreadView(thread *maildb.Thread, messages []maildb.Message) ThreadView {
	return &fakeThreadView{thread: thread, messages: messages, folded: map[string]bool{}}
}

func (c *fakeContext) NewEnvelopeView(env *mail.Envelope) EnvelopeView {
	return &fakeEnvelopeView{env: env}
}

func (c *fakeContext) NewBufferlistView() BufferlistView {
	return &fakeBufferlistView{ctx: c}
}

func (c *fakeContext) NewTaglistView(tags []string) TaglistView {
	return &fakeTaglistView{tags: tags}
}

func (c *fakeContext) Store() Store               { return c.store }
func (c *fakeContext) Accounts() *account.Manager { return c.accounts }
func (c *fakeContext) Settings() Settings         { return c.settings }

func (c *fakeContext) Notify(msg string)      { c.notices = append(c.notices, msg) }
func (c *fakeContext) NotifyError(msg string) { c.errNotices = append(c.errNotices, msg) }

func (c *fakeContext) Prompt(prefix string, _ []string) (string, bool) {
	c.promptSeen = append(c.promptSeen, prefix)
	if len(c.promptAnswers) == 0 {
		return "", false
	}
	answer := c.promptAnswers[0]
	c.promptAnswers = c.promptAnswers[1:]
	if answer == "<cancel>" {
		return "", false
	}
	return answer, true
}

func (c *fakeContext) CommandPrompt(prefill string) {
	c.cmdPrompts = append(c.cmdPrompts, prefill)
}

func (c *fakeContext) Post(fn func()) { c.posted = append(c.posted, fn) }

func (c *fakeContext) ScheduleAfter(d time.Duration, fn func()) {
	c.scheduled = append(c.scheduled, scheduledCall{delay: d, fn: fn})
}

func (c *fakeContext) SuspendScreen() { c.suspends++ }
func (c *fakeContext) ResumeScreen()  { c.resumes++ }
func (c *fakeContext) Refresh()       { c.refreshes++ }
func (c *fakeContext) Shutdown()      { c.shutdown = true }

func (c *fakeContext) withAccounts(cfgs ...config.AccountConfig) *fakeContext {
	c.accounts = account.FromConfig(cfgs)
	return c
}

// runPosted executes and clears the recorded Post callbacks.
func (c *fakeContext) runPosted() {
	posted := c.posted
	c.posted = nil
	for _, fn := range posted {
		fn()
	}
}

// fake views

type fakeSearchView struct {
	query        string
	threads      []maildb.Thread
	cursor       int
	rebuilds     int
	lineRebuilds int
	lineRemovals int
}

func (v *fakeSearchView) Kind() ViewKind { return ViewSearch }
func (v *fakeSearchView) Name() string   { return "search: " + v.query }
func (v *fakeSearchView) Rebuild()       { v.rebuilds++ }
func (v *fakeSearchView) Query() string  { return v.query }
func (v *fakeSearchView) SetQuery(q string) {
	v.query = q
}

func (v *fakeSearchView) SelectedThread() *maildb.Thread {
	if v.cursor < 0 || v.cursor >= len(v.threads) {
		return nil
	}
	return &v.threads[v.cursor]
}

func (v *fakeSearchView) RebuildSelectedThreadline() { v.lineRebuilds++ }
func (v *fakeSearchView) RemoveSelectedThreadline()  { v.lineRemovals++ }

type fakeThreadView struct {
	thread   *maildb.Thread
	messages []maildb.Message
	folded   map[string]bool
	cursor   int
	rebuilds int
}

func (v *fakeThreadView) Kind() ViewKind          { return ViewThread }
func (v *fakeThreadView) Name() string            { return "thread" }
func (v *fakeThreadView) Rebuild()                { v.rebuilds++ }
func (v *fakeThreadView) Thread() *maildb.Thread  { return v.thread }
func (v *fakeThreadView) Messages() []maildb.Message {
	return v.messages
}

func (v *fakeThreadView) SelectedMessage() *maildb.Message {
	if v.cursor < 0 || v.cursor >= len(v.messages) {
		return nil
	}
	return &v.messages[v.cursor]
}

func (v *fakeThreadView) Fold(messageID string, folded bool) {
	v.folded[messageID] = folded
}

type fakeEnvelopeView struct {
	env      *mail.Envelope
	rebuilds int
}

func (v *fakeEnvelopeView) Kind() ViewKind            { return ViewEnvelope }
func (v *fakeEnvelopeView) Name() string              { return "envelope" }
func (v *fakeEnvelopeView) Rebuild()                  { v.rebuilds++ }
func (v *fakeEnvelopeView) Envelope() *mail.Envelope  { return v.env }
func (v *fakeEnvelopeView) SetEnvelope(e *mail.Envelope) {
	v.env = e
}

type fakeBufferlistView struct {
	ctx    *fakeContext
	cursor int
}

func (v *fakeBufferlistView) Kind() ViewKind { return ViewBufferlist }
func (v *fakeBufferlistView) Name() string   { return "bufferlist" }
func (v *fakeBufferlistView) Rebuild()       {}

func (v *fakeBufferlistView) SelectedView() View {
	if v.cursor < 0 || v.cursor >= len(v.ctx.views) {
		return nil
	}
	return v.ctx.views[v.cursor]
}

type fakeTaglistView struct {
	tags   []string
	cursor int
}

func (v *fakeTaglistView) Kind() ViewKind { return ViewTaglist }
func (v *fakeTaglistView) Name() string   { return "taglist" }
func (v *fakeTaglistView) Rebuild()       {}

func (v *fakeTaglistView) SelectedTag() string {
	if v.cursor < 0 || v.cursor >= len(v.tags) {
		return ""
	}
	return v.tags[v.cursor]
}
