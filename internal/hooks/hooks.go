package hooks

import (
	"os/exec"

	"go.uber.org/zap"
)

// Phase says whether a hook runs before or after its command.
type Phase string

const (
	Pre  Phase = "pre"
	Post Phase = "post"
)

// Func is a hook body. Hooks take no arguments and report nothing; a
// failing hook must not break the command it wraps.
type Func func()

// Table maps command name and phase to a hook.
type Table struct {
	m map[string]Func
}

func NewTable() *Table {
	return &Table{m: make(map[string]Func)}
}

func key(command string, phase Phase) string {
	return string(phase) + ":" + command
}

// Bind registers a hook for a command and phase, replacing any earlier
// binding.
func (t *Table) Bind(command string, phase Phase, fn Func) {
	t.m[key(command, phase)] = fn
}

// Lookup returns the bound hook, or nil when none is bound.
func (t *Table) Lookup(command string, phase Phase) Func {
	if t == nil {
		return nil
	}
	return t.m[key(command, phase)]
}

// FromConfig binds shell command hooks from configuration. Keys look
// like "pre_search" or "post_flush".
func FromConfig(cfg map[string]string, log *zap.Logger) *Table {
	if log == nil {
		log = zap.NewNop()
	}
	t := NewTable()
	for k, shellCmd := range cfg {
		var phase Phase
		var name string
		switch {
		case len(k) > 4 && k[:4] == "pre_":
			phase, name = Pre, k[4:]
		case len(k) > 5 && k[:5] == "post_":
			phase, name = Post, k[5:]
		default:
			log.Warn("ignoring hook with unknown phase", zap.String("key", k))
			continue
		}
		cmdline := shellCmd
		t.Bind(name, phase, func() {
			if err := exec.Command("sh", "-c", cmdline).Run(); err != nil {
				log.Warn("hook failed",
					zap.String("command", name),
					zap.String("phase", string(phase)),
					zap.Error(err))
			}
		})
	}
	return t
}
