package commands

import "go.uber.org/zap"

// Command is a single executable user action. Apply runs against the
// application through its Context and reports failure; it never panics
// on missing optional state.
type Command interface {
	Apply(ctx Context) error
	Help() string
	Prehook() func()
	Posthook() func()
}

// meta carries the pieces every command shares. Embedding it gives a
// command its Help and hook accessors; the zero value is usable.
type meta struct {
	help     string
	prehook  func()
	posthook func()
}

func newMeta(help string, args Args) meta {
	return meta{
		help:     help,
		prehook:  args.Hook("prehook"),
		posthook: args.Hook("posthook"),
	}
}

func (m meta) Help() string { return m.help }

func (m meta) Prehook() func() {
	if m.prehook == nil {
		return func() {}
	}
	return m.prehook
}

func (m meta) Posthook() func() {
	if m.posthook == nil {
		return func() {}
	}
	return m.posthook
}

// Run executes a command with its hooks around it. Apply errors are
// logged and surfaced as notifications; hooks run regardless.
func Run(ctx Context, cmd Command, log *zap.Logger) {
	if cmd == nil {
		return
	}
	if log == nil {
		log = zap.NewNop()
	}
	cmd.Prehook()()
	if err := cmd.Apply(ctx); err != nil {
		log.Error("command failed", zap.Error(err))
		ctx.NotifyError(err.Error())
	}
	cmd.Posthook()()
}
