package main

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGameID(t *testing.T) {
	id, err := parseGameID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "abc", "0", "-3", "4.2"} {
		_, err := parseGameID(bad)
		assert.Error(t, err, "game_id %q", bad)
	}
}

func TestRootCmd_RejectsBadArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", nil},
		{"missing game", []string{"dev"}},
		{"unknown environment", []string{"staging", "42"}},
		{"bad game id", []string{"dev", "forty-two"}},
		{"too many", []string{"dev", "42", "43"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newRootCmd()
			cmd.SetArgs(tt.args)
			cmd.SetOut(io.Discard)
			cmd.SetErr(io.Discard)

			assert.Error(t, cmd.Execute())
		})
	}
}
