package main

import (
	"fmt"
	"io"

	"github.com/brightpath-ai/siteadmin"
	"github.com/spf13/cobra"
)

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var dir string
	var collections []string
	var migrate bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import Markdown seed files (<dir>/<collection>/*.md)",
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := opts.module()
			if err != nil {
				return err
			}
			defer module.Close()

			if migrate {
				if err := module.Migrate(cmd.Context()); err != nil {
					return err
				}
			}
			summary, err := module.ImportSeeds(cmd.Context(), dir, collections...)
			if summary != nil {
				printSummary(cmd.OutOrStdout(), summary)
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "seed directory (defaults to seed.directory)")
	cmd.Flags().StringSliceVar(&collections, "collection", nil, "collections to import (repeatable, defaults to all)")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "create the record table before importing")
	return cmd
}

func printSummary(w io.Writer, summary *siteadmin.ImportSummary) {
	fmt.Fprintf(w, "created %d, updated %d, unchanged %d, failed %d\n",
		len(summary.Created), len(summary.Updated), len(summary.Unchanged), len(summary.Errors))
	for _, key := range summary.Created {
		fmt.Fprintf(w, "  + %s\n", key)
	}
	for _, key := range summary.Updated {
		fmt.Fprintf(w, "  ~ %s\n", key)
	}
	for _, msg := range summary.Errors {
		fmt.Fprintf(w, "  ! %s\n", msg)
	}
}
