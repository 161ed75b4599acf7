// Command sargam-writer transcribes sung or played melodies into Sargam
// notation.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		// per-file failures have already been reported
		if !errors.Is(err, context.Canceled) && !errors.Is(err, errFailures) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
