package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tbuckley/gridkit/internal/config"
	"github.com/tbuckley/gridkit/internal/gridarea"
)

type areasOptions struct {
	jsonOutput bool
}

func newAreasCmd(rootFlags *rootFlags) *cobra.Command {
	opts := &areasOptions{}

	cmd := &cobra.Command{
		Use:   "areas <config.yaml>",
		Short: "List the grid areas detected in a view's template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAreas(cmd, args[0], rootFlags, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

func runAreas(cmd *cobra.Command, configPath string, rootFlags *rootFlags, opts *areasOptions) error {
	doc, err := config.ParseDocument(configPath)
	if err != nil {
		return err
	}

	v, err := selectView(doc, rootFlags.view)
	if err != nil {
		return err
	}

	var areas []string
	if v.Layout != nil {
		areas = gridarea.DetectAllAreas(v.Layout.TemplateAreas)
	}

	if opts.jsonOutput {
		if areas == nil {
			areas = []string{}
		}
		encoder := json.NewEncoder(cmd.OutOrStdout())
		return encoder.Encode(areas)
	}

	if len(areas) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No grid areas detected.")
		return nil
	}
	for _, area := range areas {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", area, gridarea.FormatAreaName(area))
	}
	return nil
}
