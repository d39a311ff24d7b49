// Command langcheck runs a compiler against a conformance fixture catalog.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/langcheck/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "langcheck: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
