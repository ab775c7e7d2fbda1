package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/ezeeyahoo/alot/internal/commands"
	"github.com/ezeeyahoo/alot/internal/mail"
	"github.com/ezeeyahoo/alot/internal/store/maildb"
)

// searchView shows the threads matching a query, one threadline each.
type searchView struct {
	app     *App
	query   string
	threads []maildb.Thread
	cursor  int
}

func (v *searchView) Kind() commands.ViewKind { return commands.ViewSearch }
func (v *searchView) Name() string            { return "search: " + v.query }

func (v *searchView) Rebuild() {
	threads, err := v.app.store.SearchThreads(context.Background(), v.query)
	if err != nil {
		v.app.NotifyError(err.Error())
		return
	}
	v.threads = threads
	v.clampCursor()
}

func (v *searchView) Query() string     { return v.query }
func (v *searchView) SetQuery(q string) { v.query = q }

func (v *searchView) SelectedThread() *maildb.Thread {
	if v.cursor < 0 || v.cursor >= len(v.threads) {
		return nil
	}
	return &v.threads[v.cursor]
}

func (v *searchView) RebuildSelectedThreadline() {
	sel := v.SelectedThread()
	if sel == nil {
		return
	}
	tags, err := v.app.store.ThreadTags(context.Background(), sel.ID)
	if err != nil {
		v.app.NotifyError(err.Error())
		return
	}
	sel.Tags = tags
}

func (v *searchView) RemoveSelectedThreadline() {
	if v.cursor < 0 || v.cursor >= len(v.threads) {
		return
	}
	v.threads = append(v.threads[:v.cursor], v.threads[v.cursor+1:]...)
	v.clampCursor()
}

func (v *searchView) clampCursor() {
	if v.cursor >= len(v.threads) {
		v.cursor = len(v.threads) - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
}

func (v *searchView) moveCursor(delta int) {
	v.cursor += delta
	v.clampCursor()
}

func (v *searchView) render() string {
	out := titleStyle.Render("Search: "+v.query) + "\n"
	if len(v.threads) == 0 {
		return out + "(no matching threads)"
	}
	for i, t := range v.threads {
		marker := " "
		if i == v.cursor {
			marker = "▶"
		}
		tagText := ""
		if len(t.Tags) > 0 {
			tagText = " [" + strings.Join(t.Tags, ", ") + "]"
		}
		out += fmt.Sprintf("%s %-50s %3d%s\n", marker, t.Subject, t.Total, tagText)
	}
	return strings.TrimRight(out, "\n")
}

// threadView shows a thread's messages, each foldable.
type threadView struct {
	app      *App
	thread   *maildb.Thread
	messages []maildb.Message
	folded   map[string]bool
	cursor   int
}

func (v *threadView) Kind() commands.ViewKind { return commands.ViewThread }

func (v *threadView) Name() string {
	if v.thread == nil {
		return "thread"
	}
	return "thread: " + v.thread.Subject
}

func (v *threadView) Rebuild() {
	if v.thread == nil {
		return
	}
	messages, err := v.app.store.ThreadMessages(context.Background(), v.thread.ID)
	if err != nil {
		v.app.NotifyError(err.Error())
		return
	}
	v.messages = messages
	if v.cursor >= len(v.messages) {
		v.cursor = 0
	}
}

func (v *threadView) Thread() *maildb.Thread { return v.thread }

func (v *threadView) SelectedMessage() *maildb.Message {
	if v.cursor < 0 || v.cursor >= len(v.messages) {
		return nil
	}
	return &v.messages[v.cursor]
}

func (v *threadView) Messages() []maildb.Message { return v.messages }

func (v *threadView) Fold(messageID string, folded bool) {
	if v.folded == nil {
		v.folded = make(map[string]bool)
	}
	v.folded[messageID] = folded
}

func (v *threadView) moveCursor(delta int) {
	v.cursor += delta
	if v.cursor >= len(v.messages) {
		v.cursor = len(v.messages) - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
}

func (v *threadView) render() string {
	out := titleStyle.Render(v.Name()) + "\n"
	for i, m := range v.messages {
		marker := " "
		if i == v.cursor {
			marker = "▶"
		}
		from := mail.FormatAddress(m.FromName, m.FromAddr)
		out += fmt.Sprintf("%s %s  %s\n", marker, m.Date.Format("2006-01-02 15:04"), from)
		if !v.folded[m.ID] {
			for _, line := range strings.Split(m.Body, "\n") {
				out += "    " + line + "\n"
			}
		}
	}
	return strings.TrimRight(out, "\n")
}

// envelopeView shows the mail being composed.
type envelopeView struct {
	app *App
	env *mail.Envelope
}

func (v *envelopeView) Kind() commands.ViewKind { return commands.ViewEnvelope }

func (v *envelopeView) Name() string {
	if v.env == nil {
		return "envelope"
	}
	return "envelope: " + v.env.Get("Subject")
}

func (v *envelopeView) Rebuild() {}

func (v *envelopeView) Envelope() *mail.Envelope       { return v.env }
func (v *envelopeView) SetEnvelope(env *mail.Envelope) { v.env = env }

func (v *envelopeView) render() string {
	out := titleStyle.Render("Compose") + "\n"
	if v.env == nil {
		return out + "(empty envelope)"
	}
	for _, key := range v.env.Keys() {
		for _, val := range v.env.GetAll(key) {
			out += headerStyle.Render(key+":") + " " + val + "\n"
		}
	}
	out += "\n" + v.env.Body()
	if n := len(v.env.Attachments()); n > 0 {
		out += fmt.Sprintf("\n(%d attached message(s))", n)
	}
	return out
}

// bufferlistView lists the open views by index.
type bufferlistView struct {
	app    *App
	cursor int
}

func (v *bufferlistView) Kind() commands.ViewKind { return commands.ViewBufferlist }
func (v *bufferlistView) Name() string            { return "bufferlist" }
func (v *bufferlistView) Rebuild()                { v.clampCursor() }

func (v *bufferlistView) SelectedView() commands.View {
	views := v.app.Views()
	if v.cursor < 0 || v.cursor >= len(views) {
		return nil
	}
	return views[v.cursor]
}

func (v *bufferlistView) clampCursor() {
	n := len(v.app.Views())
	if v.cursor >= n {
		v.cursor = n - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
}

func (v *bufferlistView) moveCursor(delta int) {
	v.cursor += delta
	v.clampCursor()
}

func (v *bufferlistView) render() string {
	out := titleStyle.Render("Buffers") + "\n"
	for i, view := range v.app.Views() {
		marker := " "
		if i == v.cursor {
			marker = "▶"
		}
		out += fmt.Sprintf("%s [%d] %s\n", marker, i, view.Name())
	}
	return strings.TrimRight(out, "\n")
}

// taglistView lists every tag in the index.
type taglistView struct {
	app    *App
	tags   []string
	cursor int
}

func (v *taglistView) Kind() commands.ViewKind { return commands.ViewTaglist }
func (v *taglistView) Name() string            { return "taglist" }

func (v *taglistView) Rebuild() {
	tags, err := v.app.store.AllTags(context.Background())
	if err != nil {
		v.app.NotifyError(err.Error())
		return
	}
	v.tags = tags
	if v.cursor >= len(v.tags) {
		v.cursor = 0
	}
}

func (v *taglistView) SelectedTag() string {
	if v.cursor < 0 || v.cursor >= len(v.tags) {
		return ""
	}
	return v.tags[v.cursor]
}

func (v *taglistView) moveCursor(delta int) {
	v.cursor += delta
	if v.cursor >= len(v.tags) {
		v.cursor = len(v.tags) - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
}

func (v *taglistView) render() string {
	out := titleStyle.Render("Tags") + "\n"
	if len(v.tags) == 0 {
		return out + "(no tags)"
	}
	for i, t := range v.tags {
		marker := " "
		if i == v.cursor {
			marker = "▶"
		}
		out += fmt.Sprintf("%s %s\n", marker, t)
	}
	return strings.TrimRight(out, "\n")
}
