package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// exitStatusError carries a process exit code through cobra's error path.
// The summary has already been printed by the time it surfaces, so it
// renders as an empty message.
type exitStatusError struct {
	code int
}

func (e exitStatusError) Error() string { return "" }

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		var status exitStatusError
		if errors.As(err, &status) {
			os.Exit(status.code)
		}
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
