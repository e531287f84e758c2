package main

import (
	"fmt"
	"os"

	"github.com/finking/chat-relay/internal/cmd"
)

var (
	Version   = "1.0.0"
	BuildTime = "unknown"
)

func main() {
	cmd.Version = Version
	cmd.BuildTime = BuildTime

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
