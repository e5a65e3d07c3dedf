package proto

import (
	"errors"
	"fmt"
	"strings"

	"dotclock/clockos/setup"
)

// Op is a remote line command.
type Op uint8

const (
	OpScroll Op = iota + 1
	OpSetup
	OpStep
	OpTime
)

func (o Op) String() string {
	switch o {
	case OpScroll:
		return "SCROLL"
	case OpSetup:
		return "SETUP"
	case OpStep:
		return "STEP"
	case OpTime:
		return "TIME"
	default:
		return "?"
	}
}

// Command is one parsed remote line.
type Command struct {
	Op   Op
	Tag  Tag
	Mode setup.Mode
	Step setup.Step
}

// Replies to remote lines.
const (
	ReplyOK   = "OK"
	ReplyFull = "FULL"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrArguments      = errors.New("wrong number of arguments")
)

// ReplyErr formats an error reply.
func ReplyErr(err error) string { return "ERR " + err.Error() }

// ParseCommand parses "SCROLL <tag>", "SETUP <mode>", "STEP <name>" or "TIME".
// Verbs are case-insensitive; arguments are not.
func ParseCommand(line string) (Command, error) {
	f := strings.Fields(line)
	if len(f) == 0 {
		return Command{}, ErrUnknownCommand
	}
	var cmd Command
	want := 2
	switch strings.ToUpper(f[0]) {
	case "SCROLL":
		cmd.Op = OpScroll
	case "SETUP":
		cmd.Op = OpSetup
	case "STEP":
		cmd.Op = OpStep
	case "TIME":
		cmd.Op = OpTime
		want = 1
	default:
		return Command{}, fmt.Errorf("%w %q", ErrUnknownCommand, f[0])
	}
	if len(f) != want {
		return Command{}, fmt.Errorf("%s: %w", cmd.Op, ErrArguments)
	}

	var err error
	switch cmd.Op {
	case OpScroll:
		cmd.Tag, err = ParseTag(f[1])
	case OpSetup:
		cmd.Mode, err = setup.ParseMode(f[1])
	case OpStep:
		cmd.Step, err = setup.ParseStep(f[1])
	}
	if err != nil {
		return Command{}, err
	}
	return cmd, nil
}
