package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scenelayout/pkg/pipeline"
	"github.com/matzehuels/scenelayout/pkg/scene"
)

// exportCommand creates the export command for rendering a layout.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "export [layout.json]",
		Short: "Convert a layout to DXF, PDF, XLSX, DOT or SVG",
		Long: `Convert a layout to DXF, PDF, XLSX, DOT or SVG.

The export command takes a layout.json file (produced by 'align') and writes
it in other formats:

  dxf   top-down plan with one layer per category and a collisions layer
  pdf   plan drawing plus the collision report
  xlsx  objects, collisions and warnings as worksheets
  dot   the category hierarchy as a Graphviz graph
  svg   the hierarchy graph rendered by Graphviz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(formatsStr, pipeline.FormatPDF)
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			return c.runExport(cmd.Context(), args[0], formats, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): pdf (default), dxf, xlsx, dot, svg, json (comma-separated)")

	return cmd
}

// runExport loads the layout and renders it.
func (c *CLI) runExport(ctx context.Context, input string, formats []string, output string) error {
	l, err := scene.ReadLayoutFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}

	spinner := newSpinnerWithContext(ctx, "Exporting...")
	spinner.Start()

	artifacts := make(map[string][]byte, len(formats))
	for _, f := range formats {
		spinner.SetMessage(fmt.Sprintf("Exporting %s...", f))
		out, err := pipeline.Render(ctx, l, pipeline.Options{Formats: []string{f}, Logger: c.Logger})
		if err != nil {
			spinner.StopWithError("Export failed")
			return fmt.Errorf("export %s: %w", f, err)
		}
		artifacts[f] = out[f]
	}
	spinner.Stop()

	paths, err := writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   formats,
		input:     input,
		output:    output,
	})
	if err != nil {
		return err
	}

	printSuccess("Exported %d objects", len(l.Objects))
	for _, p := range paths {
		printFile(p)
	}
	return nil
}
