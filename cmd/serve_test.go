package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/upthermo/orcalc/internal/leads"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterDetachArg(t *testing.T) {
	got := filterDetachArg([]string{"serve", "--detach", "--addr", ":9000", "--detach=true"})
	assert.Equal(t, []string{"serve", "--addr", ":9000"}, got)
}

func TestPIDRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serve.pid")
	require.NoError(t, writePID(path, 4242))

	pid, err := readPID(path)
	require.NoError(t, err)
	assert.Equal(t, 4242, pid)
}

func TestReadPIDRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serve.pid")
	require.NoError(t, os.WriteFile(path, []byte("abc\n"), 0o600))

	_, err := readPID(path)
	assert.Error(t, err)
}

func TestEnsureServeNotRunningClearsStaleFiles(t *testing.T) {
	dir := t.TempDir()
	pidFile := filepath.Join(dir, "serve.pid")
	// Far above any default pid_max, so the process cannot exist.
	require.NoError(t, writePID(pidFile, 1<<30))
	require.NoError(t, writeState(statePath(pidFile), serveRuntimeState{PID: 1 << 30, Addr: "127.0.0.1:1"}))

	require.NoError(t, ensureServeNotRunning(pidFile))

	_, err := os.Stat(pidFile)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	_, err = os.Stat(statePath(pidFile))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestEnsureServeNotRunningRefusesLiveProcess(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "serve.pid")
	require.NoError(t, writePID(pidFile, os.Getpid()))

	assert.Error(t, ensureServeNotRunning(pidFile))
}

func TestStateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, writeState(path, serveRuntimeState{PID: 7, Addr: "0.0.0.0:8080", StartedAt: started}))

	st, err := readState(path)
	require.NoError(t, err)
	assert.Equal(t, 7, st.PID)
	assert.Equal(t, "0.0.0.0:8080", st.Addr)
	assert.True(t, st.StartedAt.Equal(started))
}

func TestMirrorSinkSwallowsErrors(t *testing.T) {
	calls := 0
	failing := leads.SinkFunc(func(context.Context, leads.Lead) error {
		calls++
		return errors.New("table storage down")
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	err := mirrorSink(failing, logger).Save(context.Background(), leads.Lead{Email: "a@b.pl"})
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}
