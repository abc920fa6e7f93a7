package util

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterruptCancelsAndCleansUp(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("interrupt cannot be sent to the own process on windows")
	}

	tmp := filepath.Join(t.TempDir(), ".cover.jpg")
	require.NoError(t, os.WriteFile(tmp, []byte("x"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := SetupInterruptHandler(cancel, tmp)
	defer stop()

	self, err := os.FindProcess(os.Getpid())
	require.NoError(t, err)
	require.NoError(t, self.Signal(os.Interrupt))

	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("run context was not cancelled")
	}
	assert.NoFileExists(t, tmp)
}

func TestInterruptStopReleasesHandler(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := SetupInterruptHandler(cancel)
	stop()
	stop()

	assert.NoError(t, ctx.Err())
}

func TestRemoveIfEmpty(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Title")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "01"), 0755))

	RemoveIfEmpty(dir)
	assert.DirExists(t, dir)

	require.NoError(t, os.Remove(filepath.Join(dir, "01")))
	RemoveIfEmpty(dir)
	assert.NoDirExists(t, dir)
}
