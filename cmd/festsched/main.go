// Package main is the entry point for the festsched CLI.
// Its sole responsibility is wiring signals and standard streams into the
// command tree. No business logic belongs here.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkordes/festsched/internal/cli"
)

func main() {
	// Cancel in-flight fetches and queries on Ctrl-C or SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
