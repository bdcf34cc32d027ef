// Package main provides the entry point for sessprobe.
//
// sessprobe validates a token-session HTTP endpoint: it runs protocol
// conformance checks, drives weighted multi-user load, and can serve a
// built-in reference endpoint for offline work.
package main

import (
	"fmt"
	"os"

	"github.com/yndnr/sessprobe-go/internal/cli/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
