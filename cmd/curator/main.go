// Package main provides the entry point for the curator CLI tool.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/townscout/curator/cmd/curator/cmd"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx, version, commit, date); err != nil {
		os.Exit(1)
	}
}
