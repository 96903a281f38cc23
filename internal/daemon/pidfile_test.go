package daemon

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIDFileRoundtrip(t *testing.T) {
	pf := NewPIDFile(filepath.Join(t.TempDir(), "debrief.pid"))

	require.NoError(t, pf.WritePID(12345))

	pid, err := pf.Read()
	require.NoError(t, err)
	assert.Equal(t, 12345, pid)
}

func TestPIDFileWriteCurrentProcess(t *testing.T) {
	pf := NewPIDFile(filepath.Join(t.TempDir(), "debrief.pid"))

	require.NoError(t, pf.Write())

	pid, err := pf.Read()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

func TestPIDFileWriteCreatesParentDir(t *testing.T) {
	pf := NewPIDFile(filepath.Join(t.TempDir(), "nested", "dir", "debrief.pid"))

	require.NoError(t, pf.WritePID(1))

	pid, err := pf.Read()
	require.NoError(t, err)
	assert.Equal(t, 1, pid)
}

func TestPIDFileReadMissing(t *testing.T) {
	pf := NewPIDFile(filepath.Join(t.TempDir(), "nonexistent.pid"))

	_, err := pf.Read()
	assert.Error(t, err)
}

func TestPIDFileReadGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.pid")
	require.NoError(t, os.WriteFile(path, []byte("not-a-number\n"), 0o644))

	_, err := NewPIDFile(path).Read()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid PID file content")
}

func TestPIDFileRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debrief.pid")
	pf := NewPIDFile(path)

	require.NoError(t, pf.WritePID(1))
	require.NoError(t, pf.Remove())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestPIDFileIsRunning(t *testing.T) {
	pf := NewPIDFile(filepath.Join(t.TempDir(), "debrief.pid"))

	require.NoError(t, pf.Write())

	pid, running := pf.IsRunning()
	assert.True(t, running)
	assert.Equal(t, os.Getpid(), pid)
}

func TestPIDFileIsRunningDeadProcess(t *testing.T) {
	pf := NewPIDFile(filepath.Join(t.TempDir(), "debrief.pid"))

	// A PID this high almost certainly does not exist.
	require.NoError(t, pf.WritePID(999999))

	pid, running := pf.IsRunning()
	assert.Equal(t, 999999, pid)
	assert.False(t, running)
}

func TestPIDFileIsRunningNoFile(t *testing.T) {
	pf := NewPIDFile(filepath.Join(t.TempDir(), "nonexistent.pid"))

	pid, running := pf.IsRunning()
	assert.Equal(t, 0, pid)
	assert.False(t, running)
}

func TestPIDFileSignal(t *testing.T) {
	pf := NewPIDFile(filepath.Join(t.TempDir(), "debrief.pid"))

	require.NoError(t, pf.Write())

	// Signal 0 probes liveness without delivering anything.
	assert.NoError(t, pf.Signal(syscall.Signal(0)))
}

func TestPIDFileSignalNoFile(t *testing.T) {
	pf := NewPIDFile(filepath.Join(t.TempDir(), "nonexistent.pid"))

	err := pf.Signal(syscall.Signal(0))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "read PID file")
}
