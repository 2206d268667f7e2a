package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           serviceName,
		Short:         "Stream a role-filtered feed of statuses and operations",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config.yml (default: searched)")

	root.AddCommand(
		newRunCmd(&configFile),
		newServeCmd(&configFile),
		newVersionCmd(),
	)
	return root
}

// viewFlags binds the view flags of run and serve and applies the ones set
// on the command line over the loaded config.
type viewFlags struct {
	role  string
	lower int
	upper int
}

func (f *viewFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.role, "role", "viewer", "viewer role: manager or viewer")
	cmd.Flags().IntVar(&f.lower, "lower", 0, "exclusive lower bound of operation amounts")
	cmd.Flags().IntVar(&f.upper, "upper", 0, "exclusive upper bound of operation amounts")
}

func (f *viewFlags) apply(cmd *cobra.Command, cfg *Config) {
	if cmd.Flags().Changed("role") {
		cfg.View.Role = f.role
	}
	if cmd.Flags().Changed("lower") {
		cfg.View.Lower = f.lower
	}
	if cmd.Flags().Changed("upper") {
		cfg.View.Upper = f.upper
	}
}
