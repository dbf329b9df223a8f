package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/brightpath-ai/siteadmin"
	"github.com/brightpath-ai/siteadmin/internal/records"
	"github.com/spf13/cobra"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var search, category, status string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list <collection>",
		Short: "Print the ordered records of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := records.ParseStatus(status)
			if err != nil {
				return err
			}
			module, err := opts.module()
			if err != nil {
				return err
			}
			defer module.Close()

			manager, ok := module.Manager(args[0])
			if !ok {
				return fmt.Errorf("unknown collection %q", args[0])
			}
			controller := manager.Controller()
			if err := controller.Refresh(cmd.Context()); err != nil {
				return err
			}
			controller.SetFilters(siteadmin.Filters{Search: search, Category: category, Status: parsed})
			visible := controller.Visible()

			out := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(visible)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ORDER\tSLUG\tTITLE\tCATEGORY\tFLAGS")
			for _, record := range visible {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", record.OrderIndex, record.Slug, record.Title, record.Category, flagSummary(record))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&search, "search", "q", "", "case-insensitive search")
	cmd.Flags().StringVar(&category, "category", "", "exact category filter")
	cmd.Flags().StringVar(&status, "status", "all", "all|active|inactive|featured|published|draft")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func flagSummary(record *siteadmin.Record) string {
	var flags []byte
	for _, flag := range []struct {
		on   bool
		mark byte
	}{
		{record.IsActive, 'A'},
		{record.IsFeatured, 'F'},
		{record.IsPublished, 'P'},
	} {
		if flag.on {
			flags = append(flags, flag.mark)
		} else {
			flags = append(flags, '-')
		}
	}
	return string(flags)
}
