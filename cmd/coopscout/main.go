package main

import (
	"fmt"
	"os"
)

func main() {
	// Cancellation during review is handled inside the session (treated as
	// quit), so any error reaching here is reportable.
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "coopscout: %v\n", err)
		os.Exit(1)
	}
}
