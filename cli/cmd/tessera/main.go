// Tessera CLI - command-line interface for the Tessera AI platform.
package main

import (
	"os"

	"github.com/tessera-ai/tessera-go/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
