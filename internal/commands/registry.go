package commands

import "fmt"

// Kind identifies which command a registry entry constructs. The set is
// closed; the factory switches over it.
type Kind int

const (
	KindExit Kind = iota
	KindSearch
	KindPrompt
	KindCommandPrompt
	KindRefresh
	KindExternal
	KindEdit
	KindBufferClose
	KindBufferFocus
	KindOpenBufferlist
	KindOpenTaglist
	KindFlush
	KindCompose
	KindOpenThread
	KindToggleTag
	KindRetag
	KindRetagPrompt
	KindRefine
	KindRefinePrompt
	KindReply
	KindForward
	KindBounce
	KindFold
	KindEnvelopeSend
	KindEnvelopeEdit
	KindEnvelopeSet
	KindTaglistSelect
)

// Spec is one registry entry: which command to build, the defaults
// merged under callsite parameters, and a help line.
type Spec struct {
	Kind     Kind
	Defaults map[string]Value
	Help     string
}

// Registry is the immutable (mode, name) to Spec table. Mode-specific
// names must not shadow global ones.
type Registry struct {
	table map[Mode]map[string]Spec
}

// NewRegistry builds the full command table.
func NewRegistry() *Registry {
	r := &Registry{table: map[Mode]map[string]Spec{
		ModeGlobal: {
			"exit":          {Kind: KindExit, Help: "shut down cleanly"},
			"search":        {Kind: KindSearch, Help: "open a new search buffer"},
			"prompt":        {Kind: KindPrompt, Help: "open the command prompt"},
			"commandprompt": {Kind: KindCommandPrompt, Help: "open the command prompt with a prefill"},
			"refresh":       {Kind: KindRefresh, Help: "redraw the current buffer"},
			"shellescape":   {Kind: KindExternal, Help: "run an external shell command"},
			"edit":          {Kind: KindEdit, Help: "edit a file with the configured editor"},
			"close":         {Kind: KindBufferClose, Help: "close the current buffer"},
			"bnext":         {Kind: KindBufferFocus, Help: "focus the next buffer", Defaults: map[string]Value{"offset": Lit(1)}},
			"bprevious":     {Kind: KindBufferFocus, Help: "focus the previous buffer", Defaults: map[string]Value{"offset": Lit(-1)}},
			"bufferlist":    {Kind: KindOpenBufferlist, Help: "open the buffer list"},
			"taglist":       {Kind: KindOpenTaglist, Help: "list all tags"},
			"flush":         {Kind: KindFlush, Help: "write pending changes to the index"},
			"compose":       {Kind: KindCompose, Help: "compose a new mail"},
		},
		ModeSearch: {
			"openthread":   {Kind: KindOpenThread, Help: "open the selected thread"},
			"toggletag":    {Kind: KindToggleTag, Help: "toggle a tag on the selected thread", Defaults: map[string]Value{"tag": Lit("inbox")}},
			"retag":        {Kind: KindRetag, Help: "replace the selected thread's tags"},
			"retagprompt":  {Kind: KindRetagPrompt, Help: "prompt to edit the selected thread's tags"},
			"refine":       {Kind: KindRefine, Help: "change this buffer's search query"},
			"refineprompt": {Kind: KindRefinePrompt, Help: "prompt to change this buffer's search query"},
		},
		ModeThread: {
			"reply":      {Kind: KindReply, Help: "reply to the selected message"},
			"groupreply": {Kind: KindReply, Help: "reply to all recipients of the selected message", Defaults: map[string]Value{"groupreply": Lit(true)}},
			"forward":    {Kind: KindForward, Help: "forward the selected message"},
			"bounce":     {Kind: KindBounce, Help: "resend the selected message to other recipients"},
			"fold":       {Kind: KindFold, Help: "collapse messages", Defaults: map[string]Value{"visible": Lit(true)}},
			"unfold":     {Kind: KindFold, Help: "expand messages", Defaults: map[string]Value{"visible": Lit(false)}},
		},
		ModeEnvelope: {
			"send":    {Kind: KindEnvelopeSend, Help: "send the mail"},
			"reedit":  {Kind: KindEnvelopeEdit, Help: "reopen the editor on this mail"},
			"subject": {Kind: KindEnvelopeSet, Help: "set the Subject header", Defaults: map[string]Value{"key": Lit("Subject")}},
			"to":      {Kind: KindEnvelopeSet, Help: "set the To header", Defaults: map[string]Value{"key": Lit("To")}},
		},
		ModeBufferlist: {
			"closefocussed": {Kind: KindBufferClose, Help: "close the selected buffer", Defaults: map[string]Value{"focussed": Lit(true)}},
			"openfocussed":  {Kind: KindBufferFocus, Help: "focus the selected buffer", Defaults: map[string]Value{"focussed": Lit(true)}},
		},
		ModeTaglist: {
			"select": {Kind: KindTaglistSelect, Help: "search for the selected tag"},
		},
	}}
	r.validate()
	return r
}

// validate panics on a mode-specific name that shadows a global one.
// The table is hand-maintained, so this is a startup assertion.
func (r *Registry) validate() {
	global := r.table[ModeGlobal]
	for mode, cmds := range r.table {
		if mode == ModeGlobal {
			continue
		}
		for name := range cmds {
			if _, clash := global[name]; clash {
				panic(fmt.Sprintf("command %q in mode %s shadows a global command", name, mode))
			}
		}
	}
}

// Lookup resolves a name in a mode, falling back to the global table.
func (r *Registry) Lookup(name string, mode Mode) (Spec, bool) {
	if cmds, ok := r.table[mode]; ok {
		if spec, ok := cmds[name]; ok {
			return spec, true
		}
	}
	spec, ok := r.table[ModeGlobal][name]
	return spec, ok
}

// Has reports whether a name is reachable from a mode.
func (r *Registry) Has(name string, mode Mode) bool {
	_, ok := r.Lookup(name, mode)
	return ok
}

// Names returns every command name reachable from a mode, for
// completion and fuzzy hints.
func (r *Registry) Names(mode Mode) []string {
	var out []string
	for name := range r.table[ModeGlobal] {
		out = append(out, name)
	}
	if mode != ModeGlobal {
		for name := range r.table[mode] {
			out = append(out, name)
		}
	}
	return out
}
