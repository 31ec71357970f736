package main

import (
	"context"
	"log/slog"

	"github.com/mosaicautomation/objtable/internal/external"
	"github.com/mosaicautomation/objtable/internal/objconfig"
	"github.com/mosaicautomation/objtable/internal/objtable"
	"github.com/mosaicautomation/objtable/internal/persist"
)

// CLIContext bundles everything a subcommand needs, threaded on
// cmd.Context() the way the teacher's root.go carries its own CLIContext.
type CLIContext struct {
	Config  objconfig.Config
	Logger  *slog.Logger
	JSON    bool
	IsTTY   bool

	Table     *objtable.Table
	Adapter   *persist.SQLiteAdapter
	Scheduler *persist.Scheduler
	Bridge    *external.Bridge
}

type cliContextKeyType struct{}

var cliContextKey = cliContextKeyType{}

func withCLIContext(ctx context.Context, c *CLIContext) context.Context {
	return context.WithValue(ctx, cliContextKey, c)
}

func cliContextFrom(ctx context.Context) (*CLIContext, bool) {
	c, ok := ctx.Value(cliContextKey).(*CLIContext)
	return c, ok
}

func mustCLIContext(ctx context.Context) *CLIContext {
	c, ok := cliContextFrom(ctx)
	if !ok {
		panic("objtablectl: CLIContext missing from command context")
	}

	return c
}
