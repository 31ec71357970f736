package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

// seqNumsPollInterval governs how often newServeCmd checks for a fresh
// TableSeqNums publication to forward to connected websocket clients.
const seqNumsPollInterval = 200 * time.Millisecond

// newServeCmd starts the websocket bridge's HTTP listener, forwarding every
// new TableSeqNums publication to connected UI clients until the command's
// context is canceled (main's signal.NotifyContext on SIGINT/SIGTERM).
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the websocket sync bridge for UI clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := mustCLIContext(cmd.Context())

			addr := c.Config.External.ListenAddr
			if addr == "" {
				addr = ":8090"
			}

			mux := http.NewServeMux()
			mux.Handle("/ws", c.Bridge.Handler())

			server := &http.Server{Addr: addr, Handler: mux}

			serveErr := make(chan error, 1)
			go func() { serveErr <- server.ListenAndServe() }()

			ctx := cmd.Context()
			c.Logger.Info("objtablectl: serving websocket bridge", "addr", addr)

			var lastSeq uint64

			ticker := time.NewTicker(seqNumsPollInterval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					return server.Shutdown(shutdownCtx)

				case err := <-serveErr:
					if err != nil && !errors.Is(err, http.ErrServerClosed) {
						return err
					}
					return nil

				case <-ticker.C:
					summary := c.Table.SeqNums().Get()
					if summary == nil || summary.TableChange == lastSeq {
						continue
					}

					lastSeq = summary.TableChange
					c.Bridge.PushSeqNums(ctx, *summary)
				}
			}
		},
	}
}
