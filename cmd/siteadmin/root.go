package main

import (
	"github.com/brightpath-ai/siteadmin"
	"github.com/spf13/cobra"
)

// moduleBuilder is swapped in tests.
var moduleBuilder = func(cfg siteadmin.Config) (*siteadmin.Module, error) {
	return siteadmin.New(cfg)
}

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "siteadmin",
		Short:         "Manage pages, services and use cases for the marketing site",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file (defaults apply when empty)")

	root.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newSeedCmd(opts),
		newListCmd(opts),
	)
	return root
}

func (o *rootOptions) load() (siteadmin.Config, error) {
	return siteadmin.LoadConfig(o.configPath)
}

func (o *rootOptions) module() (*siteadmin.Module, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, err
	}
	return moduleBuilder(cfg)
}
