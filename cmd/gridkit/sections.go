package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tbuckley/gridkit/internal/config"
	"github.com/tbuckley/gridkit/internal/gridarea"
)

type sectionsOptions struct {
	jsonOutput bool
}

func newSectionsCmd(rootFlags *rootFlags) *cobra.Command {
	opts := &sectionsOptions{}

	cmd := &cobra.Command{
		Use:   "sections <config.yaml>",
		Short: "Show a view's sections after grid-area reconciliation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSections(cmd, args[0], rootFlags, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

func runSections(cmd *cobra.Command, configPath string, rootFlags *rootFlags, opts *sectionsOptions) error {
	doc, err := config.ParseDocument(configPath)
	if err != nil {
		return err
	}

	v, err := selectView(doc, rootFlags.view)
	if err != nil {
		return err
	}

	sections := v.Sections
	if v.Layout != nil {
		areas := gridarea.DetectAllAreas(v.Layout.TemplateAreas)
		sections = gridarea.EnsureSections(areas, sections)
	}

	if opts.jsonOutput {
		if sections == nil {
			sections = []config.Section{}
		}
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(sections)
	}

	if len(sections) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No sections configured.")
		return nil
	}
	for _, section := range sections {
		title := section.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d cards\n", section.GridArea, title, len(section.Cards))
	}
	return nil
}
