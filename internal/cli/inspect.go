package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/conceptmap/pkg/analysis"
	"github.com/matzehuels/conceptmap/pkg/layout"
	"github.com/matzehuels/conceptmap/pkg/pipeline"
)

func (c *CLI) inspectCommand() *cobra.Command {
	var (
		depth   int
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [graph]",
		Short: "Report structural diagnostics for a concept graph",
		Long: `Report structural diagnostics for a concept graph.

Lists the chosen root, connected components, cycles, the most central
concept (PageRank), concepts per level, and how many relations the layout
drew, dropped, or crossed. Problems such as dangling or duplicate relations
are flagged as warnings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), cmd.OutOrStdout(), args[0], depth, jsonOut)
		},
	}

	cmd.Flags().IntVarP(&depth, "depth", "d", 0, "number of levels (1-10)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the report as JSON")

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, w io.Writer, input string, depth int, jsonOut bool) error {
	opts := pipeline.Options{MaxLevels: depth}
	if err := opts.ValidateForLayout(); err != nil {
		return err
	}
	doc, err := pipeline.Load(input)
	if err != nil {
		return err
	}
	c.applyDefaults(doc, &opts)

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	res, err := runner.Layout(ctx, doc, opts)
	if err != nil {
		return err
	}
	report := analysis.Analyze(doc.Map, res)

	if jsonOut {
		return writeJSONTo(w, report)
	}
	_, err = fmt.Fprintln(w, formatReport(report, res))
	return err
}

// formatReport renders a report as a titled table followed by warnings.
func formatReport(r analysis.Report, res layout.Result) string {
	var b strings.Builder

	title := r.Topic
	if title == "" {
		title = "(untitled)"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")

	rows := [][]string{
		{"Root", conceptName(res, r.Root)},
		{"Concepts", strconv.Itoa(r.Nodes)},
		{"Relations", fmt.Sprintf("%d (%d drawn, %d dropped)", r.Edges, r.RenderedEdges, r.DroppedEdges)},
		{"Levels", formatWidths(r.LevelWidths)},
		{"Components", strconv.Itoa(len(r.Components))},
		{"Cycles", strconv.Itoa(len(r.Cycles))},
		{"Crossings", strconv.Itoa(r.Crossings)},
	}
	if r.Central != "" {
		rows = append(rows, []string{"Most central", fmt.Sprintf("%s (%.3f)", conceptName(res, r.Central), r.CentralRank)})
	}
	b.WriteString(renderTable([]string{"Metric", "Value"}, rows))

	for _, w := range reportWarnings(r) {
		b.WriteString("\n")
		b.WriteString(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(w))
	}
	return b.String()
}

// reportWarnings lists the problems a report reveals.
func reportWarnings(r analysis.Report) []string {
	var out []string
	if r.DanglingEdges > 0 {
		out = append(out, plural(r.DanglingEdges, "relation points", "relations point")+" to unknown concepts")
	}
	if r.SelfLoops > 0 {
		out = append(out, plural(r.SelfLoops, "concept relates", "concepts relate")+" to itself")
	}
	if r.Duplicates > 0 {
		out = append(out, plural(r.Duplicates, "duplicate relation", "duplicate relations"))
	}
	if !r.Connected() {
		out = append(out, fmt.Sprintf("map is split into %d components; unreachable concepts sit on the first level", len(r.Components)))
	}
	return out
}

// formatWidths lists concepts per level: "1, 3, 4".
func formatWidths(widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strconv.Itoa(w)
	}
	return strings.Join(parts, ", ")
}

// conceptName returns the display name of id in res, or id itself.
func conceptName(res layout.Result, id string) string {
	if id == "" {
		return "-"
	}
	if c, ok := res.Concept(id); ok && c.Name != "" {
		return c.Name
	}
	return id
}
