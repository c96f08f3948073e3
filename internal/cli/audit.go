package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/scenelayout/pkg/layout"
	"github.com/matzehuels/scenelayout/pkg/scene"
)

// auditOpts holds the command-line flags for the audit command.
type auditOpts struct {
	maxOverlap  *float64 // threshold in cubic meters, nil for the default
	interactive bool     // browse records in a TUI
	jsonOut     bool     // print records as JSON
	fail        bool     // exit non-zero when overlaps are found
	noCache     bool
}

// auditCommand creates the audit command for checking a layout.
func (c *CLI) auditCommand() *cobra.Command {
	var (
		opts      auditOpts
		threshold float64
	)

	cmd := &cobra.Command{
		Use:   "audit [layout.json]",
		Short: "List overlapping object pairs in a layout",
		Long: `List overlapping object pairs in a layout.

The audit command tests every pair of objects in a layout.json file (produced
by 'align') and reports those whose bounding boxes overlap by more than the
threshold volume. Use --interactive to browse the pairs, or --fail to use the
command as a check in scripts.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("max-overlap") {
				opts.maxOverlap = &threshold
			}
			return c.runAudit(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().Float64Var(&threshold, "max-overlap", 0, "overlap threshold in cubic meters, 0 reports any overlap (default 0.001)")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "browse collisions interactively")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print records as JSON")
	cmd.Flags().BoolVar(&opts.fail, "fail", false, "exit with an error when overlaps are found")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runAudit loads the layout and audits it.
func (c *CLI) runAudit(ctx context.Context, input string, opts auditOpts) error {
	l, err := scene.ReadLayoutFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	records, cached, err := runner.Audit(ctx, l, opts.maxOverlap)
	if err != nil {
		return fmt.Errorf("audit: %w", err)
	}
	c.Logger.Debug("audit finished", "records", len(records), "cached", cached)

	switch {
	case opts.jsonOut:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return err
		}
	case opts.interactive && len(records) > 0:
		model := NewCollisionBrowser(l, records)
		if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
			return fmt.Errorf("collision browser: %w", err)
		}
	default:
		summary := layout.Summarize(len(l.Objects), records)
		if len(records) == 0 {
			printSuccess("No overlaps among %d pairs", summary.Pairs)
			break
		}
		printWarning("%d of %d pairs overlap", summary.Records, summary.Pairs)
		printCollisions(records)
		printKeyValue("Total", fmt.Sprintf("%.4f m³", summary.TotalOverlap))
		printKeyValue("Worst", fmt.Sprintf("%s (%.4f m³)", summary.Worst, summary.MaxOverlap))
	}

	if opts.fail && len(records) > 0 {
		return fmt.Errorf("%d overlapping pairs", len(records))
	}
	return nil
}
