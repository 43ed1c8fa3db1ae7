package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tbuckley/gridkit/internal/config"
	"github.com/tbuckley/gridkit/internal/gridarea"
	"github.com/tbuckley/gridkit/internal/template"
	"github.com/tbuckley/gridkit/internal/view"
)

type renderOptions struct {
	statePath string
}

func newRenderCmd(rootFlags *rootFlags) *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render <config.yaml>",
		Short: "Render a view's full stylesheet to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0], rootFlags, opts)
		},
	}

	cmd.Flags().StringVar(&opts.statePath, "state", "", "Path to a JSON entity-state snapshot")

	return cmd
}

func runRender(cmd *cobra.Command, configPath string, rootFlags *rootFlags, opts *renderOptions) error {
	doc, err := config.ParseDocument(configPath)
	if err != nil {
		return err
	}

	v, err := selectView(doc, rootFlags.view)
	if err != nil {
		return err
	}

	snap, err := loadSnapshot(opts.statePath)
	if err != nil {
		return err
	}

	sections := v.Sections
	if v.Layout != nil {
		areas := gridarea.DetectAllAreas(v.Layout.TemplateAreas)
		sections = gridarea.EnsureSections(areas, sections)
	}

	css := view.BuildStylesheet(v.Layout, sections, template.NewEvaluator(), snap)
	fmt.Fprintln(cmd.OutOrStdout(), css)
	return nil
}
