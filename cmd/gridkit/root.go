package main

import (
	"github.com/spf13/cobra"

	"github.com/tbuckley/gridkit/internal/logger"
)

type rootFlags struct {
	verbose bool
	view    int
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "gridkit",
		Short:         "Gridkit renders dashboard grid layouts from declarative configs",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().IntVar(&flags.view, "view", 0, "View index to operate on")

	cmd.AddCommand(newRenderCmd(flags))
	cmd.AddCommand(newAreasCmd(flags))
	cmd.AddCommand(newSectionsCmd(flags))
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newServeCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newLogger(flags *rootFlags) (*logger.Logger, error) {
	level := "info"
	if flags.verbose {
		level = "debug"
	}
	return logger.New(logger.Options{Level: level, HumanReadable: true})
}
