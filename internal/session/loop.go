package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/seatwheel/seatwheel/internal/command"
)

// Execute runs a single parsed command.
func (s *Session) Execute(ctx context.Context, cmd command.Command) error {
	switch c := cmd.(type) {
	case command.Scramble:
		return s.Scramble(ctx, c.Iterations, c.Delay)
	case command.Write:
		_, err := s.Write(c.Persist)
		return err
	case command.Reset:
		return s.Reset()
	default:
		return fmt.Errorf("%w: %T", command.ErrUnrecognized, cmd)
	}
}

// Run reads commands line by line from in until EOF or ctx is cancelled.
// Malformed input and failed commands are reported and the loop carries on.
func (s *Session) Run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		s.out.Prompt()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return err
				default:
					return ctx.Err()
				}
			}
			s.handleLine(ctx, line)
		}
	}
}

func (s *Session) handleLine(ctx context.Context, line string) {
	cmd, err := command.Parse(line)
	if err != nil {
		s.out.Warning("Invalid input")
		return
	}
	if err := s.Execute(ctx, cmd); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		s.out.Error(name(cmd)+" failed", err)
	}
}

func name(cmd command.Command) string {
	switch c := cmd.(type) {
	case command.Scramble:
		return "Scramble"
	case command.Write:
		if c.Persist {
			return "Write json"
		}
		return "Write"
	case command.Reset:
		return "Reset"
	}
	return "Command"
}
