package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/conceptmap/pkg/layout"
	"github.com/matzehuels/conceptmap/pkg/pipeline"
	"github.com/matzehuels/conceptmap/pkg/render"
)

// layoutCommand creates the layout command, which writes the computed
// layout as JSON.
func (c *CLI) layoutCommand() *cobra.Command {
	var output string
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [graph.json|graph.yaml]",
		Short: "Compute the leveled layout of a concept graph",
		Long: `Compute the leveled layout of a concept graph.

The input is a concept graph ({"topic", "nodes", "edges"}) or a stored
document ({"map": <graph>, "depth": n}) in JSON or YAML. The output is the
layout as JSON: every concept with its level and x/y position (percentages),
the relations that join adjacent levels, and the concepts of each level.

Depth comes from --depth, then the document, then the config file.
Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json, - for stdout)")
	cmd.Flags().IntVarP(&opts.MaxLevels, "depth", "d", 0, "number of levels (1-10)")
	cmd.Flags().IntVar(&opts.LabelWords, "label-words", 0, "words kept in concept names (default from config)")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string) error {
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

	var (
		res      layout.Result
		cacheHit bool
	)
	err = withSpinner(ctx, "Computing layout...", func(ctx context.Context) error {
		var err error
		res, cacheHit, err = runner.LayoutWithCacheInfo(ctx, doc, opts)
		return err
	})
	if err != nil {
		printError("Layout failed")
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	data, err := render.MarshalLayout(res)
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	if output == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Layout complete (%d levels)", res.MaxLevels)
	printFile(output)
	printStats(len(res.Concepts), len(res.Edges), cacheHit)
	printNewline()
	printNextStep("Render", appName+" render "+input)
	return nil
}
