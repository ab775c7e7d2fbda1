package commands

// Mode names an interface mode. Commands are registered per mode;
// global commands are reachable from every mode.
type Mode string

const (
	ModeGlobal     Mode = "global"
	ModeSearch     Mode = "search"
	ModeThread     Mode = "thread"
	ModeEnvelope   Mode = "envelope"
	ModeBufferlist Mode = "bufferlist"
	ModeTaglist    Mode = "taglist"
)

// Modes lists every non-global mode.
var Modes = []Mode{ModeSearch, ModeThread, ModeEnvelope, ModeBufferlist, ModeTaglist}
