// Command pyps4ctl is a CLI for the PS4 2nd-Screen control library
// (spec.md §6): one-shot power/remote-control commands plus an
// "interactive" daemon mode exposing Prometheus metrics.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
