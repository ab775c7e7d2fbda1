package commands

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/agnivade/levenshtein"
	"go.uber.org/zap"
)

// bareCommands are the names that dispatch when given no parameters.
// Anything else with an empty rest is dropped.
var bareCommands = map[string]struct{}{
	"exit":          {},
	"flush":         {},
	"taglist":       {},
	"close":         {},
	"compose":       {},
	"openfocussed":  {},
	"closefocussed": {},
	"bnext":         {},
	"bprevious":     {},
	"retag":         {},
	"refresh":       {},
	"bufferlist":    {},
	"refineprompt":  {},
	"reply":         {},
	"forward":       {},
	"groupreply":    {},
	"bounce":        {},
	"openthread":    {},
	"send":          {},
	"reedit":        {},
	"select":        {},
	"retagprompt":   {},
}

// Interpreter turns a commandline string into a Command, honoring the
// current mode. Malformed or unknown input yields nil so keybindings
// never crash the interface.
type Interpreter struct {
	factory *Factory
	aliases map[string]string
	log     *zap.Logger
}

func NewInterpreter(factory *Factory, aliases map[string]string, log *zap.Logger) *Interpreter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Interpreter{factory: factory, aliases: aliases, log: log}
}

// Interpret parses a commandline in a mode. It returns nil for blank
// input, unknown commands, malformed parameters, and stray parameters
// on commands that take none.
func (i *Interpreter) Interpret(line string, mode Mode) Command {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	name, rest := splitOnce(line)

	// aliases substitute exactly once, so an alias may shadow a real
	// command without recursing
	if target, ok := i.aliases[name]; ok {
		name, rest = splitOnce(strings.TrimSpace(target + " " + rest))
	}

	// "!cmd" is shorthand for "shellescape cmd"
	if strings.HasPrefix(name, "!") {
		rest = strings.TrimSpace(strings.TrimPrefix(name, "!") + " " + rest)
		name = "shellescape"
	}

	if !i.factory.registry.Has(name, mode) {
		i.logUnknown(name, mode)
		return nil
	}

	args, ok := i.mapParams(name, rest)
	if !ok {
		return nil
	}
	cmd, err := i.factory.Resolve(name, mode, args)
	if err != nil {
		i.log.Debug("commandline rejected", zap.String("line", line), zap.Error(err))
		return nil
	}
	return cmd
}

func splitOnce(line string) (name, rest string) {
	name, rest, _ = strings.Cut(line, " ")
	return name, strings.TrimSpace(rest)
}

func (i *Interpreter) logUnknown(name string, mode Mode) {
	err := &UnknownCommandError{Name: name, Mode: mode}
	if hint := i.closest(name, mode); hint != "" {
		i.log.Debug("unknown command", zap.Error(err), zap.String("did_you_mean", hint))
		return
	}
	i.log.Debug("unknown command", zap.Error(err))
}

// closest finds the most similar visible command name, within a small
// edit distance.
func (i *Interpreter) closest(name string, mode Mode) string {
	best, bestDist := "", 3
	for _, candidate := range i.factory.registry.Names(mode) {
		if d := levenshtein.ComputeDistance(name, candidate); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}

// mapParams maps the positional rest of a commandline onto named
// parameters, per command. ok is false when the parameters are
// malformed or when a parameterless command got parameters anyway.
func (i *Interpreter) mapParams(name, rest string) (Args, bool) {
	args := Args{}
	switch name {
	case "search", "refine":
		args["query"] = rest
	case "compose":
		args["to"] = rest
	case "prompt":
		args["startstring"] = rest
	case "retag":
		args["tagsstring"] = rest
	case "subject", "to":
		args["value"] = rest
	case "shellescape":
		args["commandstring"] = rest
	case "toggletag":
		if rest != "" {
			args["tag"] = rest
		}
	case "fold", "unfold":
		args["all"] = rest == "all"
	case "edit":
		path := expandUser(rest)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			i.log.Debug("commandline rejected", zap.Error(&MalformedParameterError{
				Command: name, Param: "path", Reason: "not an existing file",
			}))
			return nil, false
		}
		args["path"] = path
	default:
		if _, bare := bareCommands[name]; !bare || rest != "" {
			return nil, false
		}
	}
	return args, true
}

func expandUser(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
