package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mosaicautomation/objtable/internal/external"
	"github.com/mosaicautomation/objtable/internal/objconfig"
	"github.com/mosaicautomation/objtable/internal/objtable"
	"github.com/mosaicautomation/objtable/internal/persist"
)

// flagSet holds the persistent flag values, mirroring the teacher's
// root.go flag struct and MarkFlagsMutuallyExclusive convention.
type flagSet struct {
	configPath string
	dbPath     string
	jsonOut    bool
	verbose    bool
	debug      bool
	quiet      bool
}

func newRootCmd() *cobra.Command {
	flags := &flagSet{}

	root := &cobra.Command{
		Use:           "objtablectl",
		Short:         "Inspect and operate an objtable instance",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to objtable.toml")
	root.PersistentFlags().StringVar(&flags.dbPath, "db", "", "override the persistence database path")
	root.PersistentFlags().BoolVar(&flags.jsonOut, "json", false, "emit machine-readable JSON output")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "verbose logging")
	root.PersistentFlags().BoolVar(&flags.debug, "debug", false, "debug logging")
	root.PersistentFlags().BoolVarP(&flags.quiet, "quiet", "q", false, "only log errors")
	root.MarkFlagsMutuallyExclusive("verbose", "debug", "quiet")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		overrides := objconfig.CLIOverrides{Verbose: flags.verbose, Debug: flags.debug, Quiet: flags.quiet}
		if flags.dbPath != "" {
			overrides.DatabasePath = &flags.dbPath
		}

		path := objconfig.ResolveConfigPath(flags.configPath)
		cfg, err := objconfig.Load(path, overrides)
		if err != nil {
			return fmt.Errorf("objtablectl: loading config: %w", err)
		}

		logger := buildLogger(cfg, flags)

		ctx := context.Background()

		typeSets := make([]objtable.TypeSetConfig, 0, len(cfg.TypeSets))
		for _, ts := range cfg.TypeSets {
			typeSets = append(typeSets, objtable.TypeSetConfig{
				Name: ts.Name, Types: ts.Types, Default: ts.Default,
				ReferenceCap: ts.ReferenceCap, History: ts.History, HistoryCap: ts.HistoryCap,
			})
		}

		bridge := external.NewBridge(logger)

		table := objtable.NewTable(
			objtable.WithLogger(logger),
			objtable.WithQueueCapacity(cfg.Queue.Capacity),
			objtable.WithTypeSets(typeSets),
			objtable.WithExternalFactory(bridge),
		)

		adapter, err := persist.OpenSQLiteAdapter(ctx, cfg.Persistence.DatabasePath)
		if err != nil {
			return fmt.Errorf("objtablectl: opening persistence database: %w", err)
		}

		scheduler := persist.NewScheduler(table, adapter,
			persist.WithHoldOff(cfg.Persistence.HoldOff),
			persist.WithRateLimit(cfg.Persistence.SavesPerSecond, cfg.Persistence.Burst),
			persist.WithSchedulerLogger(logger),
		)

		if err := scheduler.Load(ctx); err != nil {
			return fmt.Errorf("objtablectl: loading persisted state: %w", err)
		}

		table.SetPersistKicker(scheduler)

		scheduler.Start(ctx)

		table.SetOnline(true)
		table.Start(ctx)

		cliCtx := &CLIContext{
			Config:    cfg,
			Logger:    logger,
			JSON:      flags.jsonOut,
			IsTTY:     isatty.IsTerminal(os.Stdout.Fd()),
			Table:     table,
			Adapter:   adapter,
			Scheduler: scheduler,
			Bridge:    bridge,
		}

		cmd.SetContext(withCLIContext(cmd.Context(), cliCtx))

		return nil
	}

	root.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		c, ok := cliContextFrom(cmd.Context())
		if !ok {
			return nil
		}

		c.Table.Stop()
		c.Scheduler.Stop(context.Background())

		return c.Adapter.Close()
	}

	root.AddCommand(newObjectsCmd())
	root.AddCommand(newSeqNumsCmd())
	root.AddCommand(newPersistCmd())
	root.AddCommand(newServeCmd())

	return root
}

// buildLogger mirrors the teacher's buildLogger level-priority logic:
// explicit flags win over the config file's configured level.
func buildLogger(cfg objconfig.Config, flags *flagSet) *slog.Logger {
	level := slog.LevelInfo

	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	switch {
	case flags.debug:
		level = slog.LevelDebug
	case flags.quiet:
		level = slog.LevelError
	}

	var out io.Writer = os.Stderr

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Logging.JSON {
		return slog.New(slog.NewJSONHandler(out, opts))
	}

	return slog.New(slog.NewTextHandler(out, opts))
}

// exitOnError prints err and exits non-zero, the teacher's root.go
// convention for command-level error handling.
func exitOnError(err error) {
	if err == nil {
		return
	}

	fmt.Fprintln(os.Stderr, "objtablectl:", err)
	os.Exit(1)
}
