package playback

import (
	"fmt"
	"time"
)

// CommandKind identifies a user command.
type CommandKind int

const (
	CmdNext CommandKind = iota
	CmdPrevious
	CmdSeek   // relative, by Command.Delta
	CmdSeekTo // absolute, to Command.Position
	CmdTogglePause
	CmdPause
	CmdResume
	CmdToggleMute
	CmdToggleHelp
	CmdQuit
)

var commandNames = map[CommandKind]string{
	CmdNext:        "next",
	CmdPrevious:    "previous",
	CmdSeek:        "seek",
	CmdSeekTo:      "seek-to",
	CmdTogglePause: "toggle-pause",
	CmdPause:       "pause",
	CmdResume:      "resume",
	CmdToggleMute:  "toggle-mute",
	CmdToggleHelp:  "toggle-help",
	CmdQuit:        "quit",
}

// String returns the command name.
func (k CommandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return "unknown"
}

// Command is an abstract user command. Key bindings, MPRIS and tests all
// produce these; the controller never sees raw input.
type Command struct {
	Kind     CommandKind
	Delta    time.Duration
	Position time.Duration
}

// Cmd returns a command that carries no argument.
func Cmd(kind CommandKind) Command { return Command{Kind: kind} }

// Seek returns a relative seek command. Negative deltas seek backward.
func Seek(delta time.Duration) Command { return Command{Kind: CmdSeek, Delta: delta} }

// SeekTo returns an absolute seek command.
func SeekTo(pos time.Duration) Command { return Command{Kind: CmdSeekTo, Position: pos} }

func (c Command) String() string {
	switch c.Kind {
	case CmdSeek:
		if c.Delta >= 0 {
			return fmt.Sprintf("seek(+%v)", c.Delta)
		}
		return fmt.Sprintf("seek(%v)", c.Delta)
	case CmdSeekTo:
		return fmt.Sprintf("seek-to(%v)", c.Position)
	default:
		return c.Kind.String()
	}
}
