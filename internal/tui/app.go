package tui

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/ezeeyahoo/alot/internal/account"
	"github.com/ezeeyahoo/alot/internal/commands"
	"github.com/ezeeyahoo/alot/internal/config"
	"github.com/ezeeyahoo/alot/internal/mail"
	"github.com/ezeeyahoo/alot/internal/store/maildb"
)

// App ties together buffers, the command interpreter and the event
// loop. It implements commands.Context.
type App struct {
	cfg      config.Config
	log      *zap.Logger
	store    commands.Store
	accounts *account.Manager
	interp   *commands.Interpreter

	program *tea.Program
	views   []commands.View
	current int

	status    string
	statusErr bool

	promptActive bool
	promptInput  string

	width, height int
	quitting      bool
}

func New(cfg config.Config, st commands.Store, accounts *account.Manager, interp *commands.Interpreter, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	return &App{
		cfg:      cfg,
		log:      log,
		store:    st,
		accounts: accounts,
		interp:   interp,
		current:  -1,
	}
}

// SetProgram hands the app its running tea.Program, needed for Post,
// ScheduleAfter and screen suspension.
func (a *App) SetProgram(p *tea.Program) { a.program = p }

// mode maps the focussed view onto the interpreter mode.
func (a *App) mode() commands.Mode {
	v := a.CurrentView()
	if v == nil {
		return commands.ModeGlobal
	}
	switch v.Kind() {
	case commands.ViewSearch:
		return commands.ModeSearch
	case commands.ViewThread:
		return commands.ModeThread
	case commands.ViewEnvelope:
		return commands.ModeEnvelope
	case commands.ViewBufferlist:
		return commands.ModeBufferlist
	case commands.ViewTaglist:
		return commands.ModeTaglist
	}
	return commands.ModeGlobal
}

// dispatch interprets a commandline in the current mode and runs the
// resulting command.
func (a *App) dispatch(line string) {
	cmd := a.interp.Interpret(line, a.mode())
	if cmd == nil {
		return
	}
	commands.Run(a, cmd, a.log)
}

func (a *App) Init() tea.Cmd {
	return func() tea.Msg {
		return initialSearchMsg(a.cfg.General.InitialQuery)
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
	case initialSearchMsg:
		if string(m) != "" {
			a.dispatch("search " + string(m))
		}
	case postMsg:
		if m.fn != nil {
			m.fn()
		}
	case statusMsg:
		a.status, a.statusErr = string(m), false
	case errMsg:
		a.status, a.statusErr = m.Error(), true
	case tea.KeyMsg:
		if a.promptActive {
			return a.handlePromptKey(m)
		}
		a.handleKey(m)
	}
	if a.quitting {
		return a, tea.Quit
	}
	return a, nil
}

func (a *App) handlePromptKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyEsc:
		a.promptActive = false
		a.promptInput = ""
	case tea.KeyEnter:
		line := a.promptInput
		a.promptActive = false
		a.promptInput = ""
		a.dispatch(line)
	case tea.KeyBackspace, tea.KeyCtrlH:
		if len(a.promptInput) > 0 {
			a.promptInput = a.promptInput[:len(a.promptInput)-1]
		}
	case tea.KeySpace:
		a.promptInput += " "
	case tea.KeyRunes:
		a.promptInput += string(m.Runes)
	}
	if a.quitting {
		return a, tea.Quit
	}
	return a, nil
}

func (a *App) handleKey(m tea.KeyMsg) {
	key := m.String()

	// cursor movement stays inside the view
	switch key {
	case "up", "k":
		a.moveCursor(-1)
		return
	case "down", "j":
		a.moveCursor(1)
		return
	}

	if line, ok := a.binding(key); ok {
		if line == "" {
			a.CommandPrompt("")
			return
		}
		a.dispatch(line)
	}
}

// binding maps a key to a commandline for the current mode. The empty
// string opens a bare command prompt.
func (a *App) binding(key string) (string, bool) {
	switch a.mode() {
	case commands.ModeSearch:
		switch key {
		case "enter":
			return "openthread", true
		case "t":
			return "toggletag", true
		case "T":
			return "retagprompt", true
		case "/":
			return "refineprompt", true
		}
	case commands.ModeThread:
		switch key {
		case "r":
			return "reply", true
		case "g":
			return "groupreply", true
		case "f":
			return "forward", true
		case "b":
			return "bounce", true
		case "-":
			return "fold", true
		case "+":
			return "unfold", true
		}
	case commands.ModeEnvelope:
		switch key {
		case "y":
			return "send", true
		case "e":
			return "reedit", true
		}
	case commands.ModeBufferlist:
		switch key {
		case "enter":
			return "openfocussed", true
		case "x":
			return "closefocussed", true
		}
	case commands.ModeTaglist:
		if key == "enter" {
			return "select", true
		}
	}

	switch key {
	case ":":
		return "", true
	case "q", "ctrl+c":
		return "exit", true
	case "@":
		return "refresh", true
	case "I":
		return "search tag:inbox", true
	case "L":
		return "taglist", true
	case ";":
		return "bufferlist", true
	case "d":
		return "close", true
	case "$":
		return "flush", true
	case "m":
		return "compose", true
	case "ctrl+n":
		return "bnext", true
	case "ctrl+p":
		return "bprevious", true
	}
	return "", false
}

func (a *App) moveCursor(delta int) {
	switch v := a.CurrentView().(type) {
	case *searchView:
		v.moveCursor(delta)
	case *threadView:
		v.moveCursor(delta)
	case *bufferlistView:
		v.moveCursor(delta)
	case *taglistView:
		v.moveCursor(delta)
	}
}

func (a *App) View() string {
	if a.quitting {
		return ""
	}
	var body string
	switch v := a.CurrentView().(type) {
	case *searchView:
		body = v.render()
	case *threadView:
		body = v.render()
	case *envelopeView:
		body = v.render()
	case *bufferlistView:
		body = v.render()
	case *taglistView:
		body = v.render()
	default:
		body = titleStyle.Render("alot") + "\n(no open buffers)"
	}

	footer := a.footer()
	if a.promptActive {
		footer = promptStyle.Render(":") + a.promptInput
	}
	return body + "\n\n" + footer
}

func (a *App) footer() string {
	if a.status == "" {
		return helpStyle.Render("[:] command  [q] quit")
	}
	if a.statusErr {
		return errStyle.Render(a.status)
	}
	return a.status
}

// Context implementation

func (a *App) CurrentView() commands.View {
	if a.current < 0 || a.current >= len(a.views) {
		return nil
	}
	return a.views[a.current]
}

func (a *App) Views() []commands.View { return a.views }

func (a *App) OpenView(v commands.View) {
	a.views = append(a.views, v)
	a.current = len(a.views) - 1
}

func (a *App) CloseView(v commands.View) {
	for i, existing := range a.views {
		if existing == v {
			a.views = append(a.views[:i], a.views[i+1:]...)
			break
		}
	}
	if a.current >= len(a.views) {
		a.current = len(a.views) - 1
	}
	if len(a.views) == 0 {
		a.Shutdown()
	}
}

func (a *App) FocusView(v commands.View) {
	for i, existing := range a.views {
		if existing == v {
			a.current = i
			return
		}
	}
}

func (a *App) NewSearchView(query string, threads []maildb.Thread) commands.SearchView {
	return &searchView{app: a, query: query, threads: threads}
}

func (a *App) NewThreadView(thread *maildb.Thread, messages []maildb.Message) commands.ThreadView {
	return &threadView{app: a, thread: thread, messages: messages}
}

func (a *App) NewEnvelopeView(env *mail.Envelope) commands.EnvelopeView {
	return &envelopeView{app: a, env: env}
}

func (a *App) NewBufferlistView() commands.BufferlistView {
	return &bufferlistView{app: a}
}

func (a *App) NewTaglistView(tags []string) commands.TaglistView {
	return &taglistView{app: a, tags: tags}
}

func (a *App) Store() commands.Store      { return a.store }
func (a *App) Accounts() *account.Manager { return a.accounts }

func (a *App) Settings() commands.Settings {
	return commands.Settings{
		EditorCmd:         a.cfg.General.EditorCmd,
		TerminalCmd:       a.cfg.General.TerminalCmd,
		SpawnEditor:       a.cfg.General.SpawnEditor,
		AskSubject:        a.cfg.General.AskSubject,
		FlushRetryTimeout: time.Duration(a.cfg.General.FlushRetryTimeout) * time.Second,
	}
}

func (a *App) Notify(msg string) {
	a.status, a.statusErr = msg, false
}

func (a *App) NotifyError(msg string) {
	a.status, a.statusErr = msg, true
	a.log.Warn("notify error", zap.String("msg", msg))
}

// Prompt blocks for a line of input with the terminal released. An
// empty line or a read error counts as cancel.
func (a *App) Prompt(prefix string, completions []string) (string, bool) {
	a.SuspendScreen()
	defer a.ResumeScreen()
	if len(completions) > 0 {
		fmt.Printf("(%s)\n", strings.Join(completions, ", "))
	}
	fmt.Print(prefix)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", false
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", false
	}
	return line, true
}

func (a *App) CommandPrompt(prefill string) {
	a.promptActive = true
	a.promptInput = prefill
}

func (a *App) Post(fn func()) {
	if a.program == nil {
		fn()
		return
	}
	a.program.Send(postMsg{fn: fn})
}

func (a *App) ScheduleAfter(d time.Duration, fn func()) {
	time.AfterFunc(d, func() { a.Post(fn) })
}

func (a *App) SuspendScreen() {
	if a.program != nil {
		_ = a.program.ReleaseTerminal()
	}
}

func (a *App) ResumeScreen() {
	if a.program != nil {
		_ = a.program.RestoreTerminal()
	}
}

func (a *App) Refresh() {
	if a.program != nil {
		a.program.Send(statusMsg(a.status))
	}
}

func (a *App) Shutdown() { a.quitting = true }

// messages

type postMsg struct{ fn func() }

type statusMsg string

type errMsg struct{ error }

type initialSearchMsg string

// styles

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	headerStyle = lipgloss.NewStyle().Bold(true)
	promptStyle = lipgloss.NewStyle().Bold(true)
	helpStyle   = lipgloss.NewStyle().Faint(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)
