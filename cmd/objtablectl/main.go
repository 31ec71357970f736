// Command objtablectl is operational tooling for inspecting a running
// objtable instance: its objects, links, sequence numbers, and
// persistence status. It is ambient CLI scaffolding, not part of the
// table engine's specified surface.
package main

import (
	"context"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()

	if err := root.ExecuteContext(ctx); err != nil {
		exitOnError(err)
	}
}
