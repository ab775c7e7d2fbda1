package commands

import "fmt"

// UnknownCommandError reports a command name with no registration
// visible from the requesting mode.
type UnknownCommandError struct {
	Name string
	Mode Mode
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command %q in mode %s", e.Name, e.Mode)
}

// MalformedParameterError reports a parameter that failed validation
// during commandline interpretation.
type MalformedParameterError struct {
	Command string
	Param   string
	Reason  string
}

func (e *MalformedParameterError) Error() string {
	return fmt.Sprintf("malformed parameter %q for command %q: %s", e.Param, e.Command, e.Reason)
}
