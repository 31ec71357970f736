package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newPersistCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "persist", Short: "Inspect persistence status"}

	cmd.AddCommand(newPersistStatusCmd())

	return cmd
}

func newPersistStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show per-type-set dirty/save status",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := mustCLIContext(cmd.Context())

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE-SET\tDIRTY\tLAST-PUBLISHED\tLAST-SAVED\tHOLD-OFF")

			for _, name := range c.Table.TypeSetNames() {
				snap, ok := c.Table.SnapshotTypeSet(name)
				if !ok {
					continue
				}

				holdOff := c.Config.Persistence.HoldOff
				if c.IsTTY {
					fmt.Fprintf(w, "%s\t%v\t%d\t%d\t%s\n",
						name, snap.Dirty(), snap.LastPublishedSeqNum, snap.LastSucceededSaveSeqNum, humanizeDuration(holdOff))
				} else {
					fmt.Fprintf(w, "%s\t%v\t%d\t%d\t%s\n",
						name, snap.Dirty(), snap.LastPublishedSeqNum, snap.LastSucceededSaveSeqNum, holdOff)
				}
			}

			stats := c.Scheduler.Stats()
			fmt.Fprintf(w, "\nwrites=%d failures=%d throttled=%d\n", stats.Writes, stats.Failures, stats.Throttled)

			return w.Flush()
		},
	}
}

func humanizeDuration(d time.Duration) string {
	return humanize.RelTime(time.Now().Add(-d), time.Now(), "ago", "from now")
}
