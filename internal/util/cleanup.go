package util

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// SetupInterruptHandler cancels the run on the first SIGINT/SIGTERM and
// removes the given temporary files. A second signal exits immediately.
// The returned stop func releases the signals; it is safe to call twice.
func SetupInterruptHandler(cancel context.CancelFunc, temp ...string) (stop func()) {
	sig := make(chan os.Signal, 2)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	var once sync.Once

	go func() {
		select {
		case <-sig:
		case <-done:
			return
		}
		fmt.Println("\nInterrupt received. Finishing in-flight requests...")

		for _, p := range temp {
			RemoveFile(p)
		}
		cancel()

		select {
		case <-sig:
		case <-done:
			return
		}
		fmt.Println("\nExiting due to interrupt.")
		os.Exit(1)
	}()

	return func() {
		once.Do(func() {
			signal.Stop(sig)
			close(done)
		})
	}
}

// RemoveFile deletes path if it exists.
func RemoveFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		fmt.Printf("Error cleaning up %s: %v\n", path, err)
	}
}

func RemoveIfEmpty(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	if len(entries) == 0 {
		if err := os.Remove(dir); err == nil {
			fmt.Printf("Removed empty folder: %s\n", dir)
		}
	}
}

func CleanupFolder(folder string) {
	_ = os.RemoveAll(folder)
}
