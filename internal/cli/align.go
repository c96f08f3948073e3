package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scenelayout/pkg/pipeline"
)

// layoutFlags holds engine flags whose zero value is meaningful, so they
// only reach pipeline.Options when set on the command line.
type layoutFlags struct {
	gridSpacing float64
	margin      float64
	ground      float64
	seed        uint64
	maxOverlap  float64
}

// addLayoutFlags registers the engine tuning flags shared by align and serve.
func addLayoutFlags(cmd *cobra.Command, opts *pipeline.Options, lf *layoutFlags) {
	cmd.Flags().StringVarP(&opts.Strategy, "strategy", "s", "", "placement strategy: grid (default), radial, linear, clustered, custom")
	cmd.Flags().Uint64Var(&lf.seed, "seed", 0, "random seed for jitter (default 42)")
	cmd.Flags().Float64Var(&lf.gridSpacing, "grid-spacing", 0, "gap between neighbours in meters (default 0.5)")
	cmd.Flags().Float64Var(&lf.margin, "margin", 0, "collision margin in meters (default 0.1)")
	cmd.Flags().Float64Var(&lf.ground, "ground", 0, "Y coordinate of the ground plane")
	cmd.Flags().Float64Var(&opts.CellSize, "cell-size", 0, "spatial index cell size in meters (default 2)")
	cmd.Flags().IntVar(&opts.MaxAttempts, "max-attempts", 0, "jitter attempts per colliding object (default 100)")
	cmd.Flags().Float64Var(&opts.JitterRange, "jitter", 0, "jitter range in meters (default 1)")
	cmd.Flags().Float64Var(&opts.RowWidth, "row-width", 0, "grid row width in meters (default 10)")
	cmd.Flags().Float64Var(&opts.Radius, "radius", 0, "radial ring radius in meters (default 3)")
}

// apply copies the flags the user set into opts.
func (lf *layoutFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	if cmd.Flags().Changed("grid-spacing") {
		opts.GridSpacing = pipeline.Float(lf.gridSpacing)
	}
	if cmd.Flags().Changed("margin") {
		opts.CollisionMargin = pipeline.Float(lf.margin)
	}
	if cmd.Flags().Changed("ground") {
		opts.GroundLevel = pipeline.Float(lf.ground)
	}
	if cmd.Flags().Changed("seed") {
		opts.Seed = pipeline.Uint(lf.seed)
	}
	if cmd.Flags().Changed("max-overlap") {
		opts.MaxOverlapVolume = pipeline.Float(lf.maxOverlap)
	}
}

// alignCommand creates the align command for placing scene objects.
func (c *CLI) alignCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
		lf         layoutFlags
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "align [scene]",
		Short: "Place the objects of a scene without collisions",
		Long: `Place the objects of a scene without collisions.

The align command reads a scene file (.json, .toml or .xlsx), places every
object with the chosen strategy and resolves collisions between their
bounding boxes. The default output is <scene>.layout.json, which 'audit' and
'export' take as input. Other formats can be rendered in the same run.

Settings in the scene file's options table are used unless overridden by
flags. Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lf.apply(cmd, &opts)
			opts.Formats = parseFormats(formatsStr, pipeline.FormatJSON)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runAlign(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): json (default), dxf, pdf, xlsx, dot, svg (comma-separated)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when a cached layout exists")
	cmd.Flags().BoolVar(&opts.Audit, "audit", false, "run the collision audit after placement")
	cmd.Flags().Float64Var(&lf.maxOverlap, "max-overlap", 0, "audit threshold in cubic meters, 0 reports any overlap (default 0.001)")
	addLayoutFlags(cmd, &opts, &lf)

	return cmd
}

// runAlign parses the scene, aligns it and writes the requested outputs.
func (c *CLI) runAlign(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	doc, err := pipeline.ParseFile(input, &opts)
	if err != nil {
		return fmt.Errorf("load scene %s: %w", input, err)
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	prog := newProgress(c.Logger)

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Aligning %d objects...", len(doc.Objects)))
	spinner.Start()

	result, err := runner.Execute(ctx, doc, opts)
	if err != nil {
		spinner.StopWithError("Alignment failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
	})
	if err != nil {
		return err
	}

	l := result.Layout
	prog.done(fmt.Sprintf("Aligned %d objects", l.Stats.Placed))
	printSuccess("Layout complete (%s)", l.Strategy)
	for _, p := range paths {
		printFile(p)
	}
	printStats(l.Stats, result.CacheInfo.LayoutHit)
	printWarnings(l.Warnings)
	if l.Summary != nil {
		if l.Summary.Records > 0 {
			printWarning("%d overlapping pairs (%.4f m³ total)", l.Summary.Records, l.Summary.TotalOverlap)
		} else {
			printSuccess("No overlaps among %d pairs", l.Summary.Pairs)
		}
	}
	printNewline()
	if len(paths) > 0 && opts.Formats[0] == pipeline.FormatJSON {
		printNextStep("Audit", appName+" audit "+paths[0])
	}

	return nil
}
