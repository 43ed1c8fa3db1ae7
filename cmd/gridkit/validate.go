package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tbuckley/gridkit/internal/config"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config.yaml>",
		Short: "Parse and validate a layout configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := config.ParseDocument(args[0])
			if err != nil {
				return err
			}

			sections := 0
			overlays := 0
			for _, v := range doc.Views {
				sections += len(v.Sections)
				if v.Layout != nil {
					overlays += len(v.Layout.Overlays)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid: %d views, %d sections, %d overlays\n",
				args[0], len(doc.Views), sections, overlays)
			return nil
		},
	}

	return cmd
}
