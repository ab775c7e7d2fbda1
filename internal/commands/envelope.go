package commands

import (
	"context"
	"fmt"
	netmail "net/mail"
	"os"

	"github.com/ezeeyahoo/alot/internal/mail"
)

// EnvelopeEditCommand writes the envelope to a draft file, opens the
// editor on it, and reads the result back. With openNew set a fresh
// envelope buffer opens afterwards; otherwise the current one updates.
type EnvelopeEditCommand struct {
	meta
	Envelope *mail.Envelope
	openNew  bool
}

func (c *EnvelopeEditCommand) Apply(ctx Context) error {
	env := c.Envelope
	if env == nil {
		ev, ok := ctx.CurrentView().(EnvelopeView)
		if !ok {
			return nil
		}
		env = ev.Envelope()
	}
	if env == nil {
		return nil
	}

	f, err := os.CreateTemp("", "alot-draft-*.eml")
	if err != nil {
		return fmt.Errorf("create draft file: %w", err)
	}
	path := f.Name()
	if _, err := f.WriteString(mail.RenderDraft(env)); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("write draft file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("write draft file: %w", err)
	}

	edit := &EditCommand{
		Path:    path,
		Refocus: false,
		OnSuccess: func(success bool) {
			defer os.Remove(path)
			if !success {
				return
			}
			text, err := os.ReadFile(path)
			if err != nil {
				ctx.NotifyError("could not read back draft: " + err.Error())
				return
			}
			mail.ApplyDraft(env, string(text))
			if c.openNew {
				ctx.OpenView(ctx.NewEnvelopeView(env))
				return
			}
			if ev, ok := ctx.CurrentView().(EnvelopeView); ok {
				ev.SetEnvelope(env)
				ev.Rebuild()
				ctx.Refresh()
			}
		},
	}
	return edit.Apply(ctx)
}

// EnvelopeSetCommand sets a header on the envelope being composed.
type EnvelopeSetCommand struct {
	meta
	Key     string
	Value   string
	Replace bool
}

func (c *EnvelopeSetCommand) Apply(ctx Context) error {
	ev, ok := ctx.CurrentView().(EnvelopeView)
	if !ok {
		return nil
	}
	env := ev.Envelope()
	if env == nil || c.Key == "" {
		return nil
	}
	if c.Replace {
		env.Set(c.Key, c.Value)
	} else {
		env.Add(c.Key, c.Value)
	}
	ev.Rebuild()
	ctx.Refresh()
	return nil
}

// EnvelopeSendCommand sends the composed mail through the account
// owning its From address and closes the buffer on success.
type EnvelopeSendCommand struct {
	meta
}

func (c *EnvelopeSendCommand) Apply(ctx Context) error {
	ev, ok := ctx.CurrentView().(EnvelopeView)
	if !ok {
		return nil
	}
	env := ev.Envelope()
	if env == nil {
		return nil
	}
	if env.Sent {
		ctx.Notify("mail already sent")
		return nil
	}

	addr, err := netmail.ParseAddress(env.Get("From"))
	if err != nil {
		ctx.NotifyError("failed to send: invalid From header")
		return nil
	}
	acc := ctx.Accounts().ByAddress(addr.Address)
	if acc == nil {
		ctx.NotifyError("failed to send: no account set up for " + addr.Address)
		return nil
	}
	if !env.Has("Message-ID") {
		env.Set("Message-ID", "<"+mail.NewMessageID(acc.Address)+">")
	}

	ctx.Notify("sending..")
	if err := acc.Send(context.Background(), env); err != nil {
		ctx.NotifyError(err.Error())
		return nil
	}
	env.Sent = true
	closeBuf := &BufferCloseCommand{Target: ev}
	if err := closeBuf.Apply(ctx); err != nil {
		return err
	}
	ctx.Notify("mail send successful")
	return nil
}
