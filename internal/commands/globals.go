package commands

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ezeeyahoo/alot/internal/mail"
	"github.com/ezeeyahoo/alot/internal/store"
)

// ExitCommand shuts the application down.
type ExitCommand struct {
	meta
}

func (c *ExitCommand) Apply(ctx Context) error {
	ctx.Shutdown()
	return nil
}

// SearchCommand opens a search buffer for a query. An existing buffer
// with the same query is focussed instead, unless ForceNew is set.
type SearchCommand struct {
	meta
	Query    string
	ForceNew bool
}

func (c *SearchCommand) Apply(ctx Context) error {
	if c.Query == "" {
		ctx.NotifyError("empty query string")
		return nil
	}
	if !c.ForceNew {
		for _, v := range ctx.Views() {
			if sv, ok := v.(SearchView); ok && sv.Query() == c.Query {
				ctx.FocusView(sv)
				return nil
			}
		}
	}
	threads, err := ctx.Store().SearchThreads(context.Background(), c.Query)
	if err != nil {
		return fmt.Errorf("search %q: %w", c.Query, err)
	}
	ctx.OpenView(ctx.NewSearchView(c.Query, threads))
	return nil
}

// PromptCommand opens the command prompt, optionally prefilled.
type PromptCommand struct {
	meta
	StartString string
}

func (c *PromptCommand) Apply(ctx Context) error {
	ctx.CommandPrompt(c.StartString)
	return nil
}

// CommandPromptCommand opens the command prompt with a prefill. Kept
// distinct from PromptCommand so keybindings can name either.
type CommandPromptCommand struct {
	meta
	Prefill string
}

func (c *CommandPromptCommand) Apply(ctx Context) error {
	ctx.CommandPrompt(c.Prefill)
	return nil
}

// RefreshCommand rebuilds and redraws the current buffer.
type RefreshCommand struct {
	meta
}

func (c *RefreshCommand) Apply(ctx Context) error {
	if v := ctx.CurrentView(); v != nil {
		v.Rebuild()
	}
	ctx.Refresh()
	return nil
}

// ExternalCommand runs a shell command, either synchronously with the
// screen suspended or on a goroutine. OnSuccess fires on the event loop
// after a zero exit.
type ExternalCommand struct {
	meta
	CommandString string
	Spawn         bool
	Refocus       bool
	InThread      bool
	OnSuccess     func(success bool)
}

func (c *ExternalCommand) Apply(ctx Context) error {
	if c.CommandString == "" {
		ctx.NotifyError("no command specified")
		return nil
	}
	caller := ctx.CurrentView()
	afterwards := func(success bool) {
		if c.OnSuccess != nil {
			c.OnSuccess(success)
		}
		if c.Refocus && caller != nil {
			ctx.FocusView(caller)
		}
	}
	cmdline := c.CommandString
	if c.Spawn {
		cmdline = ctx.Settings().TerminalCmd + " " + cmdline
	}
	run := func() bool {
		return exec.Command("sh", "-c", cmdline).Run() == nil
	}
	if c.InThread {
		go func() {
			success := run()
			ctx.Post(func() { afterwards(success) })
		}()
		return nil
	}
	ctx.SuspendScreen()
	success := run()
	ctx.ResumeScreen()
	afterwards(success)
	return nil
}

// EditCommand opens a file in the configured editor. Spawn defaults to
// the editor settings when not given explicitly.
type EditCommand struct {
	meta
	Path      string
	Spawn     bool
	spawnSet  bool
	Refocus   bool
	OnSuccess func(success bool)
}

func (c *EditCommand) Apply(ctx Context) error {
	settings := ctx.Settings()
	if settings.EditorCmd == "" {
		ctx.NotifyError("no editor set")
		return nil
	}
	spawn := settings.SpawnEditor
	if c.spawnSet {
		spawn = c.Spawn
	}
	ext := &ExternalCommand{
		meta:          c.meta,
		CommandString: settings.EditorCmd + " " + shellQuote(c.Path),
		Spawn:         spawn,
		InThread:      spawn,
		Refocus:       c.Refocus,
		OnSuccess:     c.OnSuccess,
	}
	return ext.Apply(ctx)
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// BufferCloseCommand closes a buffer: an explicit target, the one
// selected in a bufferlist, or the current one.
type BufferCloseCommand struct {
	meta
	Target   View
	Focussed bool
}

func (c *BufferCloseCommand) Apply(ctx Context) error {
	target := c.Target
	if target == nil && c.Focussed {
		if bl, ok := ctx.CurrentView().(BufferlistView); ok {
			target = bl.SelectedView()
		}
	}
	if target == nil {
		target = ctx.CurrentView()
	}
	if target == nil {
		return nil
	}
	ctx.CloseView(target)
	return nil
}

// BufferFocusCommand shifts focus by an offset in the buffer ring, or
// to the buffer selected in a bufferlist.
type BufferFocusCommand struct {
	meta
	Offset   int
	Focussed bool
	Target   View
}

func (c *BufferFocusCommand) Apply(ctx Context) error {
	if c.Target != nil {
		ctx.FocusView(c.Target)
		return nil
	}
	if c.Focussed {
		if bl, ok := ctx.CurrentView().(BufferlistView); ok {
			if sel := bl.SelectedView(); sel != nil {
				ctx.FocusView(sel)
			}
		}
		return nil
	}
	views := ctx.Views()
	if len(views) == 0 {
		return nil
	}
	cur := 0
	for i, v := range views {
		if v == ctx.CurrentView() {
			cur = i
			break
		}
	}
	next := ((cur+c.Offset)%len(views) + len(views)) % len(views)
	ctx.FocusView(views[next])
	return nil
}

// OpenBufferlistCommand opens (or focusses) the buffer list.
type OpenBufferlistCommand struct {
	meta
}

func (c *OpenBufferlistCommand) Apply(ctx Context) error {
	for _, v := range ctx.Views() {
		if v.Kind() == ViewBufferlist {
			ctx.FocusView(v)
			return nil
		}
	}
	ctx.OpenView(ctx.NewBufferlistView())
	return nil
}

// TagListCommand opens a buffer listing every tag in the index.
type TagListCommand struct {
	meta
}

func (c *TagListCommand) Apply(ctx Context) error {
	tags, err := ctx.Store().AllTags(context.Background())
	if err != nil {
		return fmt.Errorf("list tags: %w", err)
	}
	ctx.OpenView(ctx.NewTaglistView(tags))
	return nil
}

// FlushCommand writes pending index changes. A locked index is retried
// after the configured timeout, indefinitely, keeping the journal
// intact between attempts.
type FlushCommand struct {
	meta
}

func (c *FlushCommand) Apply(ctx Context) error {
	err := ctx.Store().Flush(context.Background())
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrLocked):
		timeout := ctx.Settings().FlushRetryTimeout
		ctx.ScheduleAfter(timeout, func() {
			_ = c.Apply(ctx)
		})
		ctx.Notify(fmt.Sprintf("index locked, will try again in %d secs", int(timeout.Seconds())))
		return nil
	case errors.Is(err, store.ErrReadOnly):
		ctx.NotifyError("index in read-only mode")
		return nil
	}
	return err
}

// ComposeCommand starts a new mail. Missing From, To and Subject are
// prompted for, then the editor opens on the draft.
type ComposeCommand struct {
	meta
	Envelope *mail.Envelope
	To       string
}

func (c *ComposeCommand) Apply(ctx Context) error {
	env := c.Envelope
	if env == nil {
		env = mail.NewEnvelope()
	}
	if c.To != "" && !env.Has("To") {
		env.Set("To", c.To)
	}

	if !env.Has("From") {
		accounts := ctx.Accounts().Accounts()
		switch len(accounts) {
		case 0:
			ctx.NotifyError("no accounts set")
			return nil
		case 1:
			env.Set("From", accounts[0].String())
		default:
			for {
				value, ok := ctx.Prompt("From> ", ctx.Accounts().Addresses())
				if !ok {
					ctx.Notify("canceled")
					return nil
				}
				if acc := ctx.Accounts().ByAddress(value); acc != nil {
					env.Set("From", acc.String())
					break
				}
				ctx.Notify("no account for this address. (<esc> cancels)")
			}
		}
	}

	if !env.Has("To") {
		value, ok := ctx.Prompt("To> ", nil)
		if !ok {
			ctx.Notify("canceled")
			return nil
		}
		env.Set("To", value)
	}
	if ctx.Settings().AskSubject && !env.Has("Subject") {
		value, ok := ctx.Prompt("Subject> ", nil)
		if !ok {
			ctx.Notify("canceled")
			return nil
		}
		env.Set("Subject", value)
	}

	edit := &EnvelopeEditCommand{Envelope: env, openNew: true}
	return edit.Apply(ctx)
}
