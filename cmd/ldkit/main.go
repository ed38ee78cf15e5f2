// Package main provides the ldkit binary entry point.
// ldkit converts, queries, and validates RDF graphs from the command
// line.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

const (
	appName = "ldkit"
	version = "0.2.0"
)

// errNotConforming marks a completed validation that found violations.
// The report has already been printed; main maps it to exit code 1,
// distinct from operational failures.
var errNotConforming = errors.New("data does not conform to shapes")

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		if errors.Is(err, errNotConforming) {
			return 1
		}
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return 2
	}
	return 0
}
