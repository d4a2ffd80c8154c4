package main

import (
	"fmt"
	"os"

	"github.com/rongwang/tripdate-server/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	// Running the binary with no subcommand starts the server
	if len(os.Args) == 1 {
		cmd.SetArgs([]string{"serve"})
	}
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
