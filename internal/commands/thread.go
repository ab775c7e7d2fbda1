package commands

import (
	"context"
	"errors"
	"strings"

	"github.com/ezeeyahoo/alot/internal/mail"
	"github.com/ezeeyahoo/alot/internal/store"
	"github.com/ezeeyahoo/alot/internal/store/maildb"
)

func selectedMessage(ctx Context) (ThreadView, *maildb.Message) {
	tv, ok := ctx.CurrentView().(ThreadView)
	if !ok {
		return nil, nil
	}
	return tv, tv.SelectedMessage()
}

// replyFrom picks the identity to reply from: the account that was a
// recipient of the message, preferring To over Cc and Bcc, falling back
// to the first configured account.
func replyFrom(ctx Context, msg *maildb.Message) string {
	own := ctx.Accounts().Addresses()
	recipients := mail.ParseAddressList(msg.To)
	if matched := mail.MatchOwnAddress(recipients, own); matched != "" {
		return ctx.Accounts().ByAddress(matched).String()
	}
	others := append(mail.ParseAddressList(msg.Cc), mail.ParseAddressList(msg.Bcc)...)
	if matched := mail.MatchOwnAddress(others, own); matched != "" {
		return ctx.Accounts().ByAddress(matched).String()
	}
	if accounts := ctx.Accounts().Accounts(); len(accounts) > 0 {
		return accounts[0].String()
	}
	return ""
}

// ReplyCommand composes a reply to the selected message. GroupReply
// keeps all original recipients except the replier's own addresses.
type ReplyCommand struct {
	meta
	GroupReply bool
}

func (c *ReplyCommand) Apply(ctx Context) error {
	_, msg := selectedMessage(ctx)
	if msg == nil {
		return nil
	}
	env := mail.NewEnvelope()
	env.Set("Subject", mail.ReplySubject(msg.Subject))
	if from := replyFrom(ctx, msg); from != "" {
		env.Set("From", from)
	}

	sender := mail.FormatAddress(msg.FromName, msg.FromAddr)
	own := ctx.Accounts().Addresses()
	to := []string{sender}
	if c.GroupReply {
		to = append(to, mail.ClearOwnAddresses(mail.ParseAddressList(msg.To), own)...)
		if cc := mail.ClearOwnAddresses(mail.ParseAddressList(msg.Cc), own); len(cc) > 0 {
			env.Set("Cc", strings.Join(cc, ", "))
		}
		if bcc := mail.ClearOwnAddresses(mail.ParseAddressList(msg.Bcc), own); len(bcc) > 0 {
			env.Set("Bcc", strings.Join(bcc, ", "))
		}
	}
	env.Set("To", strings.Join(to, ", "))

	if msg.MessageID != "" {
		env.Set("In-Reply-To", "<"+msg.MessageID+">")
		env.Set("References", mail.NextReferences(msg.References, msg.MessageID))
	}
	env.SetBody(mail.QuoteReply(sender, msg.Body))

	compose := &ComposeCommand{Envelope: env}
	return compose.Apply(ctx)
}

// ForwardCommand forwards the selected message, inline quoted or as an
// attachment.
type ForwardCommand struct {
	meta
	Inline bool
}

func (c *ForwardCommand) Apply(ctx Context) error {
	_, msg := selectedMessage(ctx)
	if msg == nil {
		return nil
	}
	env := mail.NewEnvelope()
	env.Set("Subject", mail.ForwardSubject(msg.Subject))
	if from := replyFrom(ctx, msg); from != "" {
		env.Set("From", from)
	}
	sender := mail.FormatAddress(msg.FromName, msg.FromAddr)
	if c.Inline {
		env.SetBody(mail.QuoteForward(sender, msg.Body))
	} else {
		env.Attach(envelopeFromMessage(msg))
	}
	compose := &ComposeCommand{Envelope: env}
	return compose.Apply(ctx)
}

// BounceMailCommand resends the selected message unchanged to new
// recipients.
type BounceMailCommand struct {
	meta
}

func (c *BounceMailCommand) Apply(ctx Context) error {
	_, msg := selectedMessage(ctx)
	if msg == nil {
		return nil
	}
	env := envelopeFromMessage(msg)
	env.Del("To")
	if from := replyFrom(ctx, msg); from != "" {
		env.Set("Resent-From", from)
	}
	compose := &ComposeCommand{Envelope: env}
	return compose.Apply(ctx)
}

// envelopeFromMessage rebuilds an editable envelope from a stored
// message.
func envelopeFromMessage(msg *maildb.Message) *mail.Envelope {
	env := mail.NewEnvelope()
	env.Set("From", mail.FormatAddress(msg.FromName, msg.FromAddr))
	if msg.To != "" {
		env.Set("To", msg.To)
	}
	if msg.Cc != "" {
		env.Set("Cc", msg.Cc)
	}
	if msg.Subject != "" {
		env.Set("Subject", msg.Subject)
	}
	if msg.MessageID != "" {
		env.Set("Message-ID", "<"+msg.MessageID+">")
	}
	env.SetBody(msg.Body)
	return env
}

// FoldMessagesCommand collapses or expands the selected message, or all
// of them. Folding an unread thread marks it read and flushes.
type FoldMessagesCommand struct {
	meta
	All bool
	// Visible is the folded state to apply: fold passes true, unfold false.
	Visible bool
}

func (c *FoldMessagesCommand) Apply(ctx Context) error {
	tv, msg := selectedMessage(ctx)
	if tv == nil {
		return nil
	}
	thread := tv.Thread()
	if thread != nil {
		tags, err := ctx.Store().ThreadTags(context.Background(), thread.ID)
		if err != nil {
			return err
		}
		unread := false
		for _, t := range tags {
			if t == "unread" {
				unread = true
				break
			}
		}
		if unread {
			err := ctx.Store().RemoveTags(thread.ID, "unread")
			if errors.Is(err, store.ErrReadOnly) {
				ctx.NotifyError("index in read-only mode")
			} else if err != nil {
				return err
			} else if err := (&FlushCommand{}).Apply(ctx); err != nil {
				return err
			}
		}
	}
	folded := c.Visible
	if c.All {
		for _, m := range tv.Messages() {
			tv.Fold(m.ID, folded)
		}
	} else if msg != nil {
		tv.Fold(msg.ID, folded)
	}
	tv.Rebuild()
	ctx.Refresh()
	return nil
}
