package script_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravel-run/ravel/pkg/errors"
	"github.com/ravel-run/ravel/pkg/script"
)

func newTestRunner() (*script.Runner, *bytes.Buffer) {
	var out bytes.Buffer
	r := script.NewRunner()
	r.Stdin = bytes.NewReader(nil)
	r.Stdout = &out
	r.Stderr = &out
	return r, &out
}

func TestRunSuccess(t *testing.T) {
	r, out := newTestRunner()

	err := r.Run(context.Background(), "echo hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out.String())
}

func TestRunJoinedCommands(t *testing.T) {
	r, out := newTestRunner()

	err := r.Run(context.Background(), "echo one && echo two")
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", out.String())
}

func TestRunExitCode(t *testing.T) {
	r, _ := newTestRunner()

	err := r.Run(context.Background(), "exit 42")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrScriptFailed)
	assert.Equal(t, 42, script.ExitCode(err))
}

func TestRunEmptyCommand(t *testing.T) {
	r, _ := newTestRunner()

	err := r.Run(context.Background(), "")
	assert.ErrorIs(t, err, errors.ErrScriptFailed)
}

func TestRunWorkingDir(t *testing.T) {
	dir := t.TempDir()
	r, _ := newTestRunner()
	r.Dir = dir

	require.NoError(t, r.Run(context.Background(), "echo marker > here.txt"))
	assert.FileExists(t, filepath.Join(dir, "here.txt"))
}

func TestRunExtraEnv(t *testing.T) {
	r, out := newTestRunner()
	r.Env = []string{"RAVEL_TEST_GREETING=hi"}

	require.NoError(t, r.Run(context.Background(), "echo $RAVEL_TEST_GREETING"))
	assert.Equal(t, "hi\n", out.String())
}

func TestRunCancellation(t *testing.T) {
	r, _ := newTestRunner()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := r.Run(ctx, "sleep 10")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrScriptFailed)
	assert.Less(t, time.Since(start), 5*time.Second, "cancellation should not wait for the command")
}

func TestRunSequenceStopsOnFailure(t *testing.T) {
	dir := t.TempDir()
	r, _ := newTestRunner()
	r.Dir = dir

	err := r.RunSequence(context.Background(), []string{
		"echo one > first.txt",
		"exit 7",
		"echo three > third.txt",
	})
	require.Error(t, err)
	assert.Equal(t, 7, script.ExitCode(err))
	assert.FileExists(t, filepath.Join(dir, "first.txt"))
	_, statErr := os.Stat(filepath.Join(dir, "third.txt"))
	assert.True(t, os.IsNotExist(statErr), "commands after a failure should not run")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, script.ExitCode(nil))
	assert.Equal(t, 1, script.ExitCode(errors.ErrScriptFailed))
}
