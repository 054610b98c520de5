package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ahrav/go-prompteval/internal/aggregation"
	"github.com/ahrav/go-prompteval/internal/store"
)

func newSummarizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summarize <results.json>",
		Short: "Print summary statistics for a persisted run document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := store.NewFileStore(args[0]).Load()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run %s  provider=%s model=%s  %s\n\n",
				doc.RunID, doc.Provider, doc.Model, doc.CreatedAt.Format("2006-01-02 15:04:05 MST"))
			aggregation.Summarize(doc.Records).WriteTable(out)
			return nil
		},
	}
	return cmd
}
