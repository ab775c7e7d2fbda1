package commands

import (
	"go.uber.org/zap"

	"github.com/ezeeyahoo/alot/internal/hooks"
	"github.com/ezeeyahoo/alot/internal/mail"
	"github.com/ezeeyahoo/alot/internal/store/maildb"
)

// Factory turns a command name plus a parameter bag into a concrete
// Command. Registered defaults sit under callsite parameters, and
// configured hooks are injected last.
type Factory struct {
	registry *Registry
	hooks    *hooks.Table
	log      *zap.Logger
}

func NewFactory(registry *Registry, hookTable *hooks.Table, log *zap.Logger) *Factory {
	if log == nil {
		log = zap.NewNop()
	}
	return &Factory{registry: registry, hooks: hookTable, log: log}
}

// Resolve builds the command registered for name in mode. Callsite args
// win over registered defaults; Value-typed entries on either side are
// resolved before merging.
func (f *Factory) Resolve(name string, mode Mode, callsite Args) (Command, error) {
	spec, ok := f.registry.Lookup(name, mode)
	if !ok {
		return nil, &UnknownCommandError{Name: name, Mode: mode}
	}
	args := make(Args, len(spec.Defaults)+len(callsite)+2)
	for k, v := range spec.Defaults {
		args[k] = v.resolve()
	}
	for k, v := range callsite {
		if val, ok := v.(Value); ok {
			args[k] = val.resolve()
			continue
		}
		args[k] = v
	}
	if pre := f.hooks.Lookup(name, hooks.Pre); pre != nil {
		args["prehook"] = (func())(pre)
	}
	if post := f.hooks.Lookup(name, hooks.Post); post != nil {
		args["posthook"] = (func())(post)
	}
	cmd := f.build(spec, args)
	if cmd == nil {
		return nil, &UnknownCommandError{Name: name, Mode: mode}
	}
	return cmd, nil
}

func (f *Factory) build(spec Spec, args Args) Command {
	m := newMeta(spec.Help, args)
	switch spec.Kind {
	case KindExit:
		return &ExitCommand{meta: m}
	case KindSearch:
		return &SearchCommand{meta: m, Query: args.String("query"), ForceNew: args.Bool("forcenew")}
	case KindPrompt:
		return &PromptCommand{meta: m, StartString: args.String("startstring")}
	case KindCommandPrompt:
		return &CommandPromptCommand{meta: m, Prefill: args.String("prefill")}
	case KindRefresh:
		return &RefreshCommand{meta: m}
	case KindExternal:
		cmd := &ExternalCommand{
			meta:          m,
			CommandString: args.String("commandstring"),
			Spawn:         args.Bool("spawn"),
			InThread:      args.Bool("thread"),
			Refocus:       true,
			OnSuccess:     args.Callback("on_success"),
		}
		if v, ok := args.BoolOK("refocus"); ok {
			cmd.Refocus = v
		}
		return cmd
	case KindEdit:
		cmd := &EditCommand{
			meta:      m,
			Path:      args.String("path"),
			Refocus:   true,
			OnSuccess: args.Callback("on_success"),
		}
		if v, ok := args.BoolOK("spawn"); ok {
			cmd.Spawn, cmd.spawnSet = v, true
		}
		if v, ok := args.BoolOK("refocus"); ok {
			cmd.Refocus = v
		}
		return cmd
	case KindBufferClose:
		cmd := &BufferCloseCommand{meta: m, Focussed: args.Bool("focussed")}
		if v, ok := args["buffer"].(View); ok {
			cmd.Target = v
		}
		return cmd
	case KindBufferFocus:
		cmd := &BufferFocusCommand{meta: m, Offset: args.Int("offset"), Focussed: args.Bool("focussed")}
		if v, ok := args["buffer"].(View); ok {
			cmd.Target = v
		}
		return cmd
	case KindOpenBufferlist:
		return &OpenBufferlistCommand{meta: m}
	case KindOpenTaglist:
		return &TagListCommand{meta: m}
	case KindFlush:
		return &FlushCommand{meta: m}
	case KindCompose:
		cmd := &ComposeCommand{meta: m, To: args.String("to")}
		if v, ok := args["envelope"].(*mail.Envelope); ok {
			cmd.Envelope = v
		}
		return cmd
	case KindOpenThread:
		cmd := &OpenThreadCommand{meta: m}
		if v, ok := args["thread"].(*maildb.Thread); ok {
			cmd.Thread = v
		}
		return cmd
	case KindToggleTag:
		cmd := &ToggleThreadTagCommand{meta: m, Tag: args.String("tag")}
		if v, ok := args["thread"].(*maildb.Thread); ok {
			cmd.Thread = v
		}
		return cmd
	case KindRetag:
		return &RetagCommand{meta: m, TagsString: args.String("tagsstring")}
	case KindRetagPrompt:
		return &RetagPromptCommand{meta: m}
	case KindRefine:
		cmd := &RefineCommand{meta: m}
		if q, ok := args.StringOK("query"); ok {
			cmd.Query, cmd.hasQuery = q, true
		}
		return cmd
	case KindRefinePrompt:
		return &RefinePromptCommand{meta: m}
	case KindReply:
		return &ReplyCommand{meta: m, GroupReply: args.Bool("groupreply")}
	case KindForward:
		cmd := &ForwardCommand{meta: m, Inline: true}
		if v, ok := args.BoolOK("inline"); ok {
			cmd.Inline = v
		}
		return cmd
	case KindBounce:
		return &BounceMailCommand{meta: m}
	case KindFold:
		return &FoldMessagesCommand{meta: m, All: args.Bool("all"), Visible: args.Bool("visible")}
	case KindEnvelopeSend:
		return &EnvelopeSendCommand{meta: m}
	case KindEnvelopeEdit:
		cmd := &EnvelopeEditCommand{meta: m}
		if v, ok := args["envelope"].(*mail.Envelope); ok {
			cmd.Envelope = v
		}
		if v, ok := args.BoolOK("opennew"); ok {
			cmd.openNew = v
		}
		return cmd
	case KindEnvelopeSet:
		cmd := &EnvelopeSetCommand{meta: m, Key: args.String("key"), Value: args.String("value"), Replace: true}
		if v, ok := args.BoolOK("replace"); ok {
			cmd.Replace = v
		}
		return cmd
	case KindTaglistSelect:
		return &TaglistSelectCommand{meta: m, Tag: args.String("tag")}
	}
	// the Kind set is closed; reaching this is a table bug
	f.log.Error("no constructor for command kind", zap.Int("kind", int(spec.Kind)))
	return nil
}
