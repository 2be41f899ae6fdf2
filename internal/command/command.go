// Package command parses the operator's console input into a small closed
// set of commands.
package command

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DefaultDelay separates scramble iterations when no delay is given.
const DefaultDelay = 500 * time.Millisecond

var ErrUnrecognized = errors.New("unrecognized command")

// Command is one of Scramble, Write or Reset.
type Command interface {
	isCommand()
}

// Scramble generates Iterations new arrangements, publishing each, with Delay
// between consecutive ones.
type Scramble struct {
	Iterations int
	Delay      time.Duration
}

// Write commits the working arrangement to history. With Persist set the
// whole history is also saved to disk.
type Write struct {
	Persist bool
}

// Reset republishes the last committed arrangement, discarding any
// scrambled but uncommitted one.
type Reset struct{}

func (Scramble) isCommand() {}
func (Write) isCommand()    {}
func (Reset) isCommand()    {}

// Parse turns one input line into a Command.
//
//	""           Scramble{1, 500ms}
//	"N"          Scramble{N, 500ms}
//	"N M"        Scramble{N, M ms}
//	"write"      Write{false}
//	"write json" Write{true}
//	"reset"      Reset{}
func Parse(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Scramble{Iterations: 1, Delay: DefaultDelay}, nil
	}

	switch fields[0] {
	case "write":
		return Write{Persist: len(fields) > 1 && fields[1] == "json"}, nil
	case "reset":
		return Reset{}, nil
	}

	numbers := make([]uint64, len(fields))
	for i, f := range fields {
		if !isDigits(f) {
			return nil, fmt.Errorf("%w: %q", ErrUnrecognized, line)
		}
		n, err := strconv.ParseUint(f, 10, 63)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrUnrecognized, f, err)
		}
		numbers[i] = n
	}

	cmd := Scramble{Iterations: int(numbers[0]), Delay: DefaultDelay}
	if len(numbers) > 1 {
		if numbers[1] > uint64(math.MaxInt64/int64(time.Millisecond)) {
			return nil, fmt.Errorf("%w: delay %d ms too large", ErrUnrecognized, numbers[1])
		}
		cmd.Delay = time.Duration(numbers[1]) * time.Millisecond
	}
	return cmd, nil
}

// isDigits rejects signs and other prefixes strconv would otherwise accept.
func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
