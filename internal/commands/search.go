package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ezeeyahoo/alot/internal/store"
	"github.com/ezeeyahoo/alot/internal/store/maildb"
)

// OpenThreadCommand opens a thread buffer, for the given thread or the
// one selected in the current search buffer.
type OpenThreadCommand struct {
	meta
	Thread *maildb.Thread
}

func (c *OpenThreadCommand) Apply(ctx Context) error {
	thread := c.Thread
	if thread == nil {
		sv, ok := ctx.CurrentView().(SearchView)
		if !ok {
			return nil
		}
		thread = sv.SelectedThread()
	}
	if thread == nil {
		return nil
	}
	messages, err := ctx.Store().ThreadMessages(context.Background(), thread.ID)
	if err != nil {
		return fmt.Errorf("open thread %s: %w", thread.ID, err)
	}
	ctx.OpenView(ctx.NewThreadView(thread, messages))
	return nil
}

// ToggleThreadTagCommand adds or removes a tag on the selected thread
// depending on whether the thread currently carries it, then flushes
// and refreshes the threadline. A thread that no longer matches the
// buffer's query disappears from it.
type ToggleThreadTagCommand struct {
	meta
	Tag    string
	Thread *maildb.Thread
}

func (c *ToggleThreadTagCommand) Apply(ctx Context) error {
	sv, _ := ctx.CurrentView().(SearchView)
	thread := c.Thread
	if thread == nil && sv != nil {
		thread = sv.SelectedThread()
	}
	if thread == nil || c.Tag == "" {
		return nil
	}

	tags, err := ctx.Store().ThreadTags(context.Background(), thread.ID)
	if err != nil {
		return fmt.Errorf("read tags of thread %s: %w", thread.ID, err)
	}
	has := false
	for _, t := range tags {
		if t == c.Tag {
			has = true
			break
		}
	}
	if has {
		err = ctx.Store().RemoveTags(thread.ID, c.Tag)
	} else {
		err = ctx.Store().AddTags(thread.ID, c.Tag)
	}
	if errors.Is(err, store.ErrReadOnly) {
		ctx.NotifyError("index in read-only mode")
		return nil
	}
	if err != nil {
		return err
	}

	if err := (&FlushCommand{}).Apply(ctx); err != nil {
		return err
	}
	if sv == nil {
		return nil
	}
	sv.RebuildSelectedThreadline()
	probe := fmt.Sprintf("(%s) AND thread:%s", sv.Query(), thread.ID)
	count, err := ctx.Store().CountMessages(context.Background(), probe)
	if err != nil {
		return err
	}
	if count == 0 {
		sv.RemoveSelectedThreadline()
	}
	return nil
}

// RetagCommand replaces the selected thread's tags with a comma
// separated list.
type RetagCommand struct {
	meta
	TagsString string
}

func (c *RetagCommand) Apply(ctx Context) error {
	sv, ok := ctx.CurrentView().(SearchView)
	if !ok {
		return nil
	}
	thread := sv.SelectedThread()
	if thread == nil {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(c.TagsString, ",") {
		if t != "" {
			tags = append(tags, t)
		}
	}
	err := ctx.Store().SetTags(thread.ID, tags...)
	if errors.Is(err, store.ErrReadOnly) {
		ctx.NotifyError("index in read-only mode")
		return nil
	}
	if err != nil {
		return err
	}
	if err := (&FlushCommand{}).Apply(ctx); err != nil {
		return err
	}
	sv.RebuildSelectedThreadline()
	return nil
}

// RetagPromptCommand prefills the command prompt with the selected
// thread's current tags for editing.
type RetagPromptCommand struct {
	meta
}

func (c *RetagPromptCommand) Apply(ctx Context) error {
	sv, ok := ctx.CurrentView().(SearchView)
	if !ok {
		return nil
	}
	thread := sv.SelectedThread()
	if thread == nil {
		return nil
	}
	tags, err := ctx.Store().ThreadTags(context.Background(), thread.ID)
	if err != nil {
		return err
	}
	ctx.CommandPrompt("retag " + strings.Join(tags, ","))
	return nil
}

// RefineCommand changes the current search buffer's query in place.
type RefineCommand struct {
	meta
	Query    string
	hasQuery bool
}

func (c *RefineCommand) Apply(ctx Context) error {
	sv, ok := ctx.CurrentView().(SearchView)
	if !ok {
		return nil
	}
	if !c.hasQuery || c.Query == "" {
		ctx.NotifyError("empty query string")
		return nil
	}
	sv.SetQuery(c.Query)
	sv.Rebuild()
	ctx.Refresh()
	return nil
}

// RefinePromptCommand prefills the command prompt with the current
// query for editing.
type RefinePromptCommand struct {
	meta
}

func (c *RefinePromptCommand) Apply(ctx Context) error {
	sv, ok := ctx.CurrentView().(SearchView)
	if !ok {
		return nil
	}
	ctx.CommandPrompt("refine " + sv.Query())
	return nil
}
