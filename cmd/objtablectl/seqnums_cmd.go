package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newSeqNumsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seqnums",
		Short: "Print the last published TableSeqNums summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := mustCLIContext(cmd.Context())

			summary := c.Table.SeqNums().Get()
			if summary == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "no publication yet")
				return nil
			}

			if c.JSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(summary)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "tableChange=%d addedItems=%d removedItems=%d addedTypes=%v lastPublished=%s\n",
				summary.TableChange, summary.AddedItems, summary.RemovedItems, summary.AddedTypes, summary.PublishedObject)

			return nil
		},
	}
}
