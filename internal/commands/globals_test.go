package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ezeeyahoo/alot/internal/config"
	"github.com/ezeeyahoo/alot/internal/store"
	"github.com/ezeeyahoo/alot/internal/store/maildb"
)

func TestExit(t *testing.T) {
	ctx := newFakeContext()
	require.NoError(t, (&ExitCommand{}).Apply(ctx))
	require.True(t, ctx.shutdown)
}

func TestSearchOpensView(t *testing.T) {
	ctx := newFakeContext()
	ctx.store.threads = []maildb.Thread{{ID: "t1", Subject: "hello", Total: 2}}
	ctx.store.tags["t1"] = []string{"inbox"}

	require.NoError(t, (&SearchCommand{Query: "tag:inbox"}).Apply(ctx))
	require.Len(t, ctx.views, 1)
	sv := ctx.views[0].(*fakeSearchView)
	require.Equal(t, "tag:inbox", sv.Query())
	require.Len(t, sv.threads, 1)
}

func TestSearchFocusesExistingBuffer(t *testing.T) {
	ctx := newFakeContext()
	existing := &fakeSearchView{query: "tag:inbox"}
	other := &fakeTaglistView{}
	ctx.OpenView(existing)
	ctx.OpenView(other)
	require.Equal(t, View(other), ctx.CurrentView())

	require.NoError(t, (&SearchCommand{Query: "tag:inbox"}).Apply(ctx))
	require.Len(t, ctx.views, 2)
	require.Equal(t, View(existing), ctx.CurrentView())
}

func TestSearchForceNewOpensDuplicate(t *testing.T) {
	ctx := newFakeContext()
	ctx.OpenView(&fakeSearchView{query: "tag:inbox"})

	require.NoError(t, (&SearchCommand{Query: "tag:inbox", ForceNew: true}).Apply(ctx))
	require.Len(t, ctx.views, 2)
}

func TestSearchEmptyQueryNotifies(t *testing.T) {
	ctx := newFakeContext()
	require.NoError(t, (&SearchCommand{}).Apply(ctx))
	require.Empty(t, ctx.views)
	require.Contains(t, ctx.errNotices, "empty query string")
}

func TestFlushRetriesWhileLocked(t *testing.T) {
	ctx := newFakeContext()
	ctx.store.flushErrs = []error{store.ErrLocked, store.ErrLocked}
	cmd := &FlushCommand{}

	require.NoError(t, cmd.Apply(ctx))
	require.Equal(t, 1, ctx.store.flushCalls)
	require.Len(t, ctx.scheduled, 1)
	require.Equal(t, 5*time.Second, ctx.scheduled[0].delay)
	require.Contains(t, ctx.notices, "index locked, will try again in 5 secs")

	// second attempt still locked, schedules again
	ctx.scheduled[0].fn()
	require.Equal(t, 2, ctx.store.flushCalls)
	require.Len(t, ctx.scheduled, 2)

	// third attempt succeeds, no further retry
	ctx.scheduled[1].fn()
	require.Equal(t, 3, ctx.store.flushCalls)
	require.Len(t, ctx.scheduled, 2)
}

func TestFlushReadOnlyNotifies(t *testing.T) {
	ctx := newFakeContext()
	ctx.store.flushErrs = []error{store.ErrReadOnly}

	require.NoError(t, (&FlushCommand{}).Apply(ctx))
	require.Contains(t, ctx.errNotices, "index in read-only mode")
	require.Empty(t, ctx.scheduled)
}

func TestExternalSyncSuspendsScreen(t *testing.T) {
	ctx := newFakeContext()
	caller := &fakeTaglistView{}
	ctx.OpenView(caller)
	ctx.OpenView(&fakeTaglistView{})

	var got []bool
	cmd := &ExternalCommand{
		CommandString: "true",
		Refocus:       true,
		OnSuccess:     func(ok bool) { got = append(got, ok) },
	}
	// run from the second view so refocus is observable
	ctx.FocusView(ctx.views[1])
	require.NoError(t, cmd.Apply(ctx))
	require.Equal(t, 1, ctx.suspends)
	require.Equal(t, 1, ctx.resumes)
	require.Equal(t, []bool{true}, got)
	require.Equal(t, ctx.views[1], ctx.CurrentView())
}

func TestExternalReportsFailure(t *testing.T) {
	ctx := newFakeContext()
	var got []bool
	cmd := &ExternalCommand{
		CommandString: "false",
		OnSuccess:     func(ok bool) { got = append(got, ok) },
	}
	require.NoError(t, cmd.Apply(ctx))
	require.Equal(t, []bool{false}, got)
}

func TestExternalInThreadPostsContinuation(t *testing.T) {
	ctx := newFakeContext()
	done := make(chan bool, 1)
	cmd := &ExternalCommand{
		CommandString: "true",
		InThread:      true,
		OnSuccess:     func(ok bool) { done <- ok },
	}
	require.NoError(t, cmd.Apply(ctx))
	require.Zero(t, ctx.suspends)

	// the goroutine posts the continuation back to the loop
	require.Eventually(t, func() bool {
		ctx.runPosted()
		select {
		case ok := <-done:
			require.True(t, ok)
			return true
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestExternalEmptyCommandNotifies(t *testing.T) {
	ctx := newFakeContext()
	require.NoError(t, (&ExternalCommand{}).Apply(ctx))
	require.Contains(t, ctx.errNotices, "no command specified")
}

func TestEditUsesEditorSettings(t *testing.T) {
	ctx := newFakeContext()
	ctx.settings.EditorCmd = "true"
	var got []bool
	cmd := &EditCommand{Path: "/tmp/x", OnSuccess: func(ok bool) { got = append(got, ok) }}
	require.NoError(t, cmd.Apply(ctx))
	require.Equal(t, []bool{true}, got)
}

func TestEditWithoutEditorNotifies(t *testing.T) {
	ctx := newFakeContext()
	ctx.settings.EditorCmd = ""
	require.NoError(t, (&EditCommand{Path: "/tmp/x"}).Apply(ctx))
	require.Contains(t, ctx.errNotices, "no editor set")
}

func TestBufferFocusOffsetWraps(t *testing.T) {
	ctx := newFakeContext()
	a, b, c := &fakeTaglistView{}, &fakeTaglistView{}, &fakeTaglistView{}
	ctx.OpenView(a)
	ctx.OpenView(b)
	ctx.OpenView(c)

	require.NoError(t, (&BufferFocusCommand{Offset: 1}).Apply(ctx))
	require.Equal(t, View(a), ctx.CurrentView())

	require.NoError(t, (&BufferFocusCommand{Offset: -1}).Apply(ctx))
	require.Equal(t, View(c), ctx.CurrentView())
}

func TestBufferCloseCurrent(t *testing.T) {
	ctx := newFakeContext()
	a, b := &fakeTaglistView{}, &fakeTaglistView{}
	ctx.OpenView(a)
	ctx.OpenView(b)

	require.NoError(t, (&BufferCloseCommand{}).Apply(ctx))
	require.Len(t, ctx.views, 1)
	require.Equal(t, View(a), ctx.CurrentView())
}

func TestBufferlistFocussedOperations(t *testing.T) {
	ctx := newFakeContext()
	target := &fakeTaglistView{}
	ctx.OpenView(target)
	bl := &fakeBufferlistView{ctx: ctx, cursor: 0}
	ctx.OpenView(bl)

	require.NoError(t, (&BufferFocusCommand{Focussed: true}).Apply(ctx))
	require.Equal(t, View(target), ctx.CurrentView())

	ctx.FocusView(bl)
	require.NoError(t, (&BufferCloseCommand{Focussed: true}).Apply(ctx))
	require.NotContains(t, ctx.views, View(target))
}

func TestOpenBufferlistFocusesExisting(t *testing.T) {
	ctx := newFakeContext()
	bl := &fakeBufferlistView{ctx: ctx}
	ctx.OpenView(bl)
	ctx.OpenView(&fakeTaglistView{})

	require.NoError(t, (&OpenBufferlistCommand{}).Apply(ctx))
	require.Len(t, ctx.views, 2)
	require.Equal(t, View(bl), ctx.CurrentView())
}

func TestTagListOpensView(t *testing.T) {
	ctx := newFakeContext()
	ctx.store.tags["t1"] = []string{"inbox", "work"}

	require.NoError(t, (&TagListCommand{}).Apply(ctx))
	require.Len(t, ctx.views, 1)
	tl := ctx.views[0].(*fakeTaglistView)
	require.ElementsMatch(t, []string{"inbox", "work"}, tl.tags)
}

func TestComposeWithoutAccounts(t *testing.T) {
	ctx := newFakeContext()
	require.NoError(t, (&ComposeCommand{}).Apply(ctx))
	require.Contains(t, ctx.errNotices, "no accounts set")
	require.Empty(t, ctx.views)
}

func TestComposeSingleAccountPromptsToAndSubject(t *testing.T) {
	ctx := newFakeContext().withAccounts(config.AccountConfig{
		Realname: "Alice", Address: "alice@example.com", SendmailCmd: "true",
	})
	ctx.settings.EditorCmd = "true"
	ctx.promptAnswers = []string{"bob@example.com", "lunch"}

	require.NoError(t, (&ComposeCommand{}).Apply(ctx))
	require.Equal(t, []string{"To> ", "Subject> "}, ctx.promptSeen)
	require.Len(t, ctx.views, 1)
	env := ctx.views[0].(*fakeEnvelopeView).env
	require.Equal(t, "Alice <alice@example.com>", env.Get("From"))
	require.Equal(t, "bob@example.com", env.Get("To"))
	require.Equal(t, "lunch", env.Get("Subject"))
}

func TestComposeToParameterSkipsPrompt(t *testing.T) {
	ctx := newFakeContext().withAccounts(config.AccountConfig{
		Address: "alice@example.com", SendmailCmd: "true",
	})
	ctx.settings.EditorCmd = "true"
	ctx.settings.AskSubject = false

	require.NoError(t, (&ComposeCommand{To: "bob@example.com"}).Apply(ctx))
	require.Empty(t, ctx.promptSeen)
	require.Len(t, ctx.views, 1)
	require.Equal(t, "bob@example.com", ctx.views[0].(*fakeEnvelopeView).env.Get("To"))
}

func TestComposeMultipleAccountsPromptsFrom(t *testing.T) {
	ctx := newFakeContext().withAccounts(
		config.AccountConfig{Address: "a@example.com", SendmailCmd: "true"},
		config.AccountConfig{Realname: "B", Address: "b@example.com", SendmailCmd: "true"},
	)
	ctx.settings.EditorCmd = "true"
	ctx.settings.AskSubject = false
	ctx.promptAnswers = []string{"nobody@example.com", "b@example.com", "c@example.com"}

	require.NoError(t, (&ComposeCommand{}).Apply(ctx))
	// first answer is not an account, so the prompt repeats
	require.Contains(t, ctx.notices, "no account for this address. (<esc> cancels)")
	require.Len(t, ctx.views, 1)
	env := ctx.views[0].(*fakeEnvelopeView).env
	require.Equal(t, "B <b@example.com>", env.Get("From"))
}

func TestComposeCancelled(t *testing.T) {
	ctx := newFakeContext().withAccounts(config.AccountConfig{
		Address: "alice@example.com", SendmailCmd: "true",
	})
	ctx.promptAnswers = []string{"<cancel>"}

	require.NoError(t, (&ComposeCommand{}).Apply(ctx))
	require.Contains(t, ctx.notices, "canceled")
	require.Empty(t, ctx.views)
}

func TestRefreshRebuildsCurrentView(t *testing.T) {
	ctx := newFakeContext()
	sv := &fakeSearchView{query: "tag:inbox"}
	ctx.OpenView(sv)

	require.NoError(t, (&RefreshCommand{}).Apply(ctx))
	require.Equal(t, 1, sv.rebuilds)
	require.Equal(t, 1, ctx.refreshes)
}

func TestRefreshWithoutViews(t *testing.T) {
	ctx := newFakeContext()
	require.NoError(t, (&RefreshCommand{}).Apply(ctx))
}

func TestPromptCommands(t *testing.T) {
	ctx := newFakeContext()
	require.NoError(t, (&PromptCommand{StartString: "search "}).Apply(ctx))
	require.NoError(t, (&CommandPromptCommand{Prefill: "retag "}).Apply(ctx))
	require.Equal(t, []string{"search ", "retag "}, ctx.cmdPrompts)
}
