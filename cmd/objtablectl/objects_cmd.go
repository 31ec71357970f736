package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newObjectsCmd() *cobra.Command {
	var typeFilter string

	cmd := &cobra.Command{
		Use:   "objects",
		Short: "List currently published objects",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := mustCLIContext(cmd.Context())

			var filter func(string) bool
			if typeFilter != "" {
				filter = func(t string) bool { return t == typeFilter }
			}

			objs := c.Table.GetObjects(filter, nil)

			if c.JSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(objs)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE\tNAME\tFLAGS\tSEQ\tATTRS")

			for _, o := range objs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", o.ID.Type, o.ID.Name, o.Flags, o.PublishedSeq, o.Attributes.Len())
			}

			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&typeFilter, "type", "", "filter by object type")

	return cmd
}
