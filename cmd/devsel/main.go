// Command devsel simulates audio output device selection.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/roach88/devsel/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
