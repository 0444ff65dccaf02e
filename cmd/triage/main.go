package main

import (
	"fmt"
	"os"

	"github.com/pablasso/triage/internal/cli"
)

func main() {
	// If no args, open the board; otherwise route to CLI
	if len(os.Args) == 1 {
		if err := cli.RunBoard(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
