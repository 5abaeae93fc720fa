package main

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normanking/anty/internal/avatar"
	"github.com/normanking/anty/internal/config"
	"github.com/normanking/anty/internal/debugserver"
)

func runScript(t *testing.T, cfg *config.Config, words ...string) (*bytes.Buffer, avatar.State) {
	t.Helper()
	steps, err := parseSteps(words)
	require.NoError(t, err)
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	var out bytes.Buffer
	snap, err := simulate(&out, simulateOptions{
		Steps:  steps,
		Config: cfg,
		Seed:   3,
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)
	return &out, snap.State
}

func TestSimulateEmotion(t *testing.T) {
	out, state := runScript(t, nil, "happy")
	assert.Equal(t, avatar.StateIdle, state)
	assert.Contains(t, out.String(), "> emote happy")
	assert.Contains(t, out.String(), "EMOTION")
	assert.Contains(t, out.String(), "done at")
	assert.NotContains(t, out.String(), "still")
}

func TestSimulatePowerCycle(t *testing.T) {
	out, state := runScript(t, nil, "off", "wake")
	assert.Equal(t, avatar.StateIdle, state)
	for _, s := range []string{"TRANSITION_OUT", "OFF", "TRANSITION_IN"} {
		assert.Contains(t, out.String(), s)
	}
}

func TestSimulateStartAsleepDeclinesEmotes(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Character.StartAsleep = true
	out, state := runScript(t, cfg, "happy")
	assert.Equal(t, avatar.StateOff, state)
	assert.Contains(t, out.String(), "declined")
}

func TestSimulateSearchReleasesQueue(t *testing.T) {
	out, state := runScript(t, nil, "search", "happy", "exit-search")
	assert.Equal(t, avatar.StateIdle, state)
	assert.Contains(t, out.String(), "SEARCH")
	assert.Contains(t, out.String(), "EMOTION")
}

func TestSimulateWait(t *testing.T) {
	out, _ := runScript(t, nil, "wait=1")
	assert.Contains(t, out.String(), "done at 1.00s")
}

func TestSimulateCommandError(t *testing.T) {
	var out bytes.Buffer
	_, err := simulate(&out, simulateOptions{
		Steps:  []step{{Command: debugserver.Command{Type: debugserver.CommandSize}}},
		Config: config.DefaultConfig(),
		Logger: zerolog.Nop(),
	})
	assert.Error(t, err)
}
