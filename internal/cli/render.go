package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/conceptmap/pkg/concept"
	"github.com/matzehuels/conceptmap/pkg/pipeline"
	"github.com/matzehuels/conceptmap/pkg/render"
)

// watchDebounce groups the bursts of events editors emit for one save.
const watchDebounce = 150 * time.Millisecond

// renderOpts holds the render command's flags.
type renderOpts struct {
	output      string   // output file (single input and format) or base path
	formats     []string // svg, dot, json, graphviz
	depth       int      // levels; 0 defers to the document, then config
	labelWords  int      // words kept in concept names
	width       float64  // frame width in pixels
	height      float64  // frame height in pixels
	interactive bool     // embed hover highlighting in SVG
	watch       bool     // re-render on every input change
}

// renderOutcome is what rendering one input produced.
type renderOutcome struct {
	input  string
	paths  []string
	result *pipeline.Result
}

func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [files...]",
		Short: "Render concept graphs to SVG, DOT or layout JSON",
		Long: `Render concept graphs to SVG, DOT or layout JSON.

Each input is laid out and written next to itself (or to --output) in every
requested format: map.svg, map.dot, map.layout.json and, for the Graphviz
engine, map.graphviz.svg. Several inputs are rendered concurrently.

With --watch the inputs are rendered again every time they change.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			if opts.output != "" && len(args) > 1 {
				return errors.New("--output can only be used with a single input")
			}
			if opts.watch {
				return c.watchRender(cmd.Context(), args, opts)
			}
			return c.runRender(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple formats)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, json, graphviz (comma-separated)")
	cmd.Flags().IntVarP(&opts.depth, "depth", "d", 0, "number of levels (1-10)")
	cmd.Flags().IntVar(&opts.labelWords, "label-words", 0, "words kept in concept names (default from config)")
	cmd.Flags().Float64Var(&opts.width, "width", pipeline.DefaultWidth, "frame width")
	cmd.Flags().Float64Var(&opts.height, "height", pipeline.DefaultHeight, "frame height")
	cmd.Flags().BoolVar(&opts.interactive, "interactive", false, "highlight a concept's relations on hover (svg)")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-render when an input changes")

	return cmd
}

// runRender renders every input once.
func (c *CLI) runRender(ctx context.Context, inputs []string, opts renderOpts) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	start := time.Now()
	outcomes, err := c.renderFiles(ctx, runner, inputs, opts)
	for _, o := range outcomes {
		if o.result == nil {
			continue
		}
		printSuccess("Rendered %s", o.input)
		for _, p := range o.paths {
			printFile(p)
		}
		printStats(len(o.result.Layout.Concepts), len(o.result.Layout.Edges), o.result.CacheInfo.LayoutHit && o.result.CacheInfo.RenderHit)
	}
	if err != nil {
		return err
	}
	if len(inputs) > 1 {
		logElapsed(loggerFromContext(ctx), start, fmt.Sprintf("Rendered %d maps", len(inputs)))
	}
	return nil
}

// renderFiles renders inputs concurrently. Outcomes are returned in input
// order; entries for inputs that failed have a nil result. The first error
// cancels the remaining work.
func (c *CLI) renderFiles(ctx context.Context, runner *pipeline.Runner, inputs []string, opts renderOpts) ([]renderOutcome, error) {
	outcomes := make([]renderOutcome, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, input := range inputs {
		g.Go(func() error {
			out, err := c.renderFile(gctx, runner, input, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}
			outcomes[i] = out
			return nil
		})
	}
	return outcomes, g.Wait()
}

func (c *CLI) renderFile(ctx context.Context, runner *pipeline.Runner, input string, opts renderOpts) (renderOutcome, error) {
	doc, err := pipeline.Load(input)
	if err != nil {
		return renderOutcome{}, err
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return c.renderDocument(ctx, runner, doc, input, base, opts)
}

// renderDocument renders doc and writes one file per format. base is the
// output path without extension; opts.output overrides it.
func (c *CLI) renderDocument(ctx context.Context, runner *pipeline.Runner, doc concept.Document, name, base string, opts renderOpts) (renderOutcome, error) {
	popts := pipeline.Options{
		MaxLevels:   opts.depth,
		LabelWords:  opts.labelWords,
		Formats:     opts.formats,
		Width:       opts.width,
		Height:      opts.height,
		Interactive: opts.interactive,
	}
	c.applyDefaults(doc, &popts)

	result, err := runner.ExecuteDocument(ctx, doc, popts)
	if err != nil {
		return renderOutcome{}, err
	}

	out := renderOutcome{input: name, result: result}
	for _, format := range opts.formats {
		path := outputPath(base, opts.output, format, len(opts.formats) > 1)
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return renderOutcome{}, fmt.Errorf("write %s: %w", path, err)
		}
		out.paths = append(out.paths, path)
	}
	return out, nil
}

// outputPath names the file for one format. A single format with an
// explicit output uses it verbatim; otherwise the output (or base) has its
// extension replaced by the format's suffix.
func outputPath(base, output, format string, multi bool) string {
	if output != "" {
		if !multi {
			return output
		}
		base = strings.TrimSuffix(output, filepath.Ext(output))
	}
	return base + "." + formatSuffix(format)
}

// formatSuffix keeps layout JSON and Graphviz SVG from colliding with an
// input graph.json or the native map.svg.
func formatSuffix(format string) string {
	switch format {
	case render.FormatJSON:
		return "layout.json"
	case render.FormatGraphviz:
		return "graphviz.svg"
	default:
		return render.Extension(format)
	}
}

// =============================================================================
// Watch
// =============================================================================

// watchRender renders inputs, then re-renders each one whenever it changes
// until ctx is cancelled. Render errors are reported and watching goes on.
func (c *CLI) watchRender(ctx context.Context, inputs []string, opts renderOpts) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watcher.Close()

	// Watch directories, not files: editors often save by replacing the file.
	targets := make(map[string]string, len(inputs))
	dirs := make(map[string]bool)
	for _, in := range inputs {
		abs, err := filepath.Abs(in)
		if err != nil {
			return err
		}
		targets[abs] = in
		dir := filepath.Dir(abs)
		if !dirs[dir] {
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
			dirs[dir] = true
		}
	}

	c.renderAndReport(ctx, runner, inputs, opts)
	printInfo("Watching %s for changes (Ctrl+C to stop)", plural(len(inputs), "file", "files"))

	pending := make(map[string]bool)
	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			in, tracked := targets[filepath.Clean(ev.Name)]
			if !tracked || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			pending[in] = true
			debounce = time.After(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.Logger.Warn("watch error", "err", err)
		case <-debounce:
			changed := make([]string, 0, len(pending))
			for _, in := range inputs {
				if pending[in] {
					changed = append(changed, in)
				}
			}
			clear(pending)
			debounce = nil
			c.renderAndReport(ctx, runner, changed, opts)
		}
	}
}

func (c *CLI) renderAndReport(ctx context.Context, runner *pipeline.Runner, inputs []string, opts renderOpts) {
	outcomes, err := c.renderFiles(ctx, runner, inputs, opts)
	for _, o := range outcomes {
		if o.result != nil {
			printSuccess("Rendered %s %s", o.input, StyleDim.Render(time.Now().Format("15:04:05")))
		}
	}
	if err != nil && ctx.Err() == nil {
		printError("%v", err)
	}
}
