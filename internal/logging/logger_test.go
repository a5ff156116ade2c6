package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("", false))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("WARN", false))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud", false))
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("error", true), "debug flag wins")
}

func TestSetupWriter_JSON(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())

	var buf bytes.Buffer
	SetupWriter(&buf, "updatetrophies", "info", false, false)

	log.Info().Int64("game_id", 42).Msg("STARTING")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "updatetrophies", entry["job"])
	assert.Equal(t, "STARTING", entry["message"])
	assert.Equal(t, float64(42), entry["game_id"])
}
