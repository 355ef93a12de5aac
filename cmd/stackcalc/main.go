package main

import (
	"errors"
	"fmt"
	"os"
)

var (
	// Version is set at build time.
	Version = "dev"
	// BuildTime is set at build time.
	BuildTime = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Evaluation errors have already been reported per expression.
		if !errors.Is(err, errEvalFailed) {
			fmt.Fprintln(os.Stderr, "stackcalc:", err)
		}
		os.Exit(1)
	}
}
