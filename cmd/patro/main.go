package main

import (
	"fmt"
	"os"

	"github.com/tsawler/patro/cmd/patro/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "patro: %v\n", err)
		os.Exit(1)
	}
}
