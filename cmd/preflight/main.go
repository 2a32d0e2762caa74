package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// Exit codes for different failure modes
const (
	ExitSuccess      = 0 // All required checks passed
	ExitChecksFailed = 1 // One or more required checks failed
	ExitError        = 2 // Configuration or runtime error
)

// ChecksFailedError indicates that the profile ran to completion but one or
// more required checks failed.
type ChecksFailedError struct {
	Profile string
	Failed  int
}

func (e *ChecksFailedError) Error() string {
	return fmt.Sprintf("%s: %d required %s failed", e.Profile, e.Failed, pluralize(e.Failed, "check"))
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err) //nolint:errcheck
		return exitCode(err)
	}
	return ExitSuccess
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Check error type to determine exit code
	var checksErr *ChecksFailedError
	if errors.As(err, &checksErr) {
		return ExitChecksFailed
	}

	// All other errors are configuration/runtime errors
	return ExitError
}
