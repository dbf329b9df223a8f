package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the record table and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := opts.module()
			if err != nil {
				return err
			}
			defer module.Close()

			if err := module.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrated")
			return nil
		},
	}
}
