package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nomis52/signupd/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestActivitiesCmd(t *testing.T) {
	out, err := execute(t, "activities")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 10)
	assert.Contains(t, lines[0], "ACTIVITY")
	assert.Contains(t, lines[1], "Art Studio")
	assert.Contains(t, out, "Chess Club")
	assert.Contains(t, out, "2/12")
}

func TestActivitiesCmd_SeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`activities:
  Robotics:
    schedule: Saturdays
    max_participants: 8
    participants: [a@mergington.edu]
`), 0644))

	out, err := execute(t, "activities", "--seed", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Robotics")
	assert.Contains(t, out, "1/8")
	assert.NotContains(t, out, "Chess Club")
}

func TestActivitiesCmd_BadSeedFile(t *testing.T) {
	_, err := execute(t, "activities", "--seed", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "signupd version dev")
	assert.Contains(t, out, "commit: unknown")
}

func TestServeCmd_BadConfig(t *testing.T) {
	_, err := execute(t, "serve", "-c", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestReloadLogLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.NewWithWriter(logging.Config{Level: "info"}, &buf)
	require.NoError(t, err)

	logger.Debug("before reload")
	assert.NotContains(t, buf.String(), "before reload")

	path := filepath.Join(t.TempDir(), "signupd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0644))
	require.NoError(t, reloadLogLevel(path, logger))

	logger.Debug("after reload")
	assert.Contains(t, buf.String(), "after reload")
}

func TestReloadLogLevel_BadConfig(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.NewWithWriter(logging.Config{Level: "warn"}, &buf)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "signupd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0644))
	assert.Error(t, reloadLogLevel(path, logger))

	logger.Info("still quiet")
	assert.NotContains(t, buf.String(), "still quiet")
}
