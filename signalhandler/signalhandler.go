package signalhandler

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"wallsorter/logging"
)

// SetupHandler cancels the run on the first SIGINT or SIGTERM so the current
// move finishes and the journal stays consistent. A second signal exits at
// once.
func SetupHandler(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logging.LogWarning("Received %v, stopping after the current file", sig)
		fmt.Println("\nStopping... press Ctrl+C again to quit immediately")
		cancel()

		<-sigChan
		os.Exit(1)
	}()
}

// GetOptimalProcs returns the number of worker goroutines to use when none is
// configured
func GetOptimalProcs() int {
	numCPU := runtime.NumCPU()
	if numCPU < 1 {
		return 1
	}
	return numCPU
}
