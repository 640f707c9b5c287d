package util

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// SetupInterruptHandler cancels the run on the first SIGINT/SIGTERM so the
// browser is released by the deferred cleanup of the running command. A
// second signal exits immediately.
func SetupInterruptHandler(cancel context.CancelFunc, outputDir string) (stop func()) {
	sig := make(chan os.Signal, 2)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	quit := make(chan struct{})
	go func() {
		select {
		case <-sig:
		case <-quit:
			return
		}
		fmt.Println("\nInterrupt received. Closing browser...")
		cancel()
		RemoveIfEmpty(outputDir)

		select {
		case <-sig:
			fmt.Println("\nExiting due to interrupt.")
			os.Exit(1)
		case <-quit:
		}
	}()

	return func() {
		signal.Stop(sig)
		close(quit)
	}
}

func RemoveIfEmpty(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}

	if len(entries) == 0 {
		if err := os.Remove(dir); err == nil {
			fmt.Printf("Removed empty folder: %s\n", dir)
			return true
		}
	}

	return false
}

func CleanupFolder(folder string) {
	_ = os.RemoveAll(folder)
}
