package command_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seatwheel/seatwheel/internal/command"
)

func TestParse(t *testing.T) {
	cases := []struct {
		line string
		want command.Command
	}{
		{"", command.Scramble{Iterations: 1, Delay: 500 * time.Millisecond}},
		{"   ", command.Scramble{Iterations: 1, Delay: 500 * time.Millisecond}},
		{"5", command.Scramble{Iterations: 5, Delay: 500 * time.Millisecond}},
		{"5 100", command.Scramble{Iterations: 5, Delay: 100 * time.Millisecond}},
		{"3 0 9", command.Scramble{Iterations: 3, Delay: 0}},
		{"0", command.Scramble{Iterations: 0, Delay: 500 * time.Millisecond}},
		{"write", command.Write{Persist: false}},
		{"write json", command.Write{Persist: true}},
		{"write yaml", command.Write{Persist: false}},
		{"reset", command.Reset{}},
		{"  reset  ", command.Reset{}},
	}
	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			got, err := command.Parse(tc.line)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParse_Rejects(t *testing.T) {
	for _, line := range []string{"hello", "5 x", "-3", "+3", "1.5", "WRITE", "99999999999999999999999"} {
		t.Run(line, func(t *testing.T) {
			_, err := command.Parse(line)
			assert.ErrorIs(t, err, command.ErrUnrecognized)
		})
	}
}
