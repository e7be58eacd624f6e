package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	apperr "github.com/matzehuels/conceptmap/pkg/errors"
	"github.com/matzehuels/conceptmap/pkg/pipeline"
	"github.com/matzehuels/conceptmap/pkg/store"
)

// mapsCommand groups the commands that work on stored maps.
func (c *CLI) mapsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maps",
		Short: "Manage stored concept maps",
	}

	cmd.AddCommand(c.mapsListCommand())
	cmd.AddCommand(c.mapsShowCommand())
	cmd.AddCommand(c.mapsImportCommand())
	cmd.AddCommand(c.mapsRenderCommand())
	cmd.AddCommand(c.mapsDeleteCommand())

	return cmd
}

// withStore opens the configured store for the duration of fn.
func (c *CLI) withStore(ctx context.Context, fn func(store.Store) error) error {
	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

func (c *CLI) mapsListCommand() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored maps, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				recs, err := st.List(cmd.Context())
				if err != nil {
					return err
				}
				summaries := store.SummarizeAll(recs, c.Config.Layout.DefaultDepth)
				if jsonOut {
					return writeJSONTo(cmd.OutOrStdout(), summaries)
				}
				if len(summaries) == 0 {
					printInfo("No stored maps")
					printNextStep("Create one", appName+" generate <topic>")
					return nil
				}
				fmt.Println(formatSummaries(summaries))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print summaries as JSON")
	return cmd
}

// formatSummaries renders the map list table.
func formatSummaries(summaries []store.Summary) string {
	rows := make([][]string, len(summaries))
	for i, s := range summaries {
		rows[i] = []string{
			s.ID,
			s.Name,
			s.Class,
			strconv.Itoa(s.Concepts),
			strconv.Itoa(s.Levels),
			strconv.Itoa(s.Connections),
			s.CreatedAt.Local().Format(time.DateTime),
		}
	}
	return renderTable([]string{"ID", "Name", "Class", "Concepts", "Levels", "Connections", "Created"}, rows)
}

func (c *CLI) mapsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "show [id]",
		Short:             "Print a stored map as JSON",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.mapIDCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				rec, err := getRecord(cmd.Context(), st, args[0])
				if err != nil {
					return err
				}
				return writeJSONTo(cmd.OutOrStdout(), rec)
			})
		},
	}
}

func (c *CLI) mapsImportCommand() *cobra.Command {
	var class string

	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Store concept graphs read from files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				for _, path := range args {
					doc, err := pipeline.Load(path)
					if err != nil {
						return err
					}
					if len(doc.Map.Nodes) == 0 {
						return apperr.New(apperr.ErrCodeInvalidGraph, "%s has no concepts", path)
					}
					rec := store.NewRecord(doc, class, time.Now())
					if err := st.Save(cmd.Context(), rec); err != nil {
						return fmt.Errorf("store %s: %w", path, err)
					}
					printSuccess("Imported %s", path)
					printKeyValue("id", rec.ID)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&class, "class", "", "class the maps belong to")
	return cmd
}

func (c *CLI) mapsRenderCommand() *cobra.Command {
	var (
		formatsStr string
		outDir     string
		opts       renderOpts
	)

	cmd := &cobra.Command{
		Use:               "render [id]",
		Short:             "Render a stored map",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.mapIDCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			ctx := cmd.Context()
			return c.withStore(ctx, func(st store.Store) error {
				rec, err := getRecord(ctx, st, args[0])
				if err != nil {
					return err
				}
				runner, err := c.newRunner(ctx)
				if err != nil {
					return fmt.Errorf("initialize runner: %w", err)
				}
				defer runner.Close()

				out, err := c.renderDocument(ctx, runner, rec.Document, rec.ID, filepath.Join(outDir, rec.ID), opts)
				if err != nil {
					return err
				}
				printSuccess("Rendered %s", rec.Name)
				for _, p := range out.paths {
					printFile(p)
				}
				printStats(len(out.result.Layout.Concepts), len(out.result.Layout.Edges), out.result.CacheInfo.RenderHit)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple formats)")
	cmd.Flags().StringVar(&outDir, "dir", ".", "directory for outputs named after the map id")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, json, graphviz (comma-separated)")
	cmd.Flags().IntVarP(&opts.depth, "depth", "d", 0, "number of levels (1-10)")
	cmd.Flags().Float64Var(&opts.width, "width", pipeline.DefaultWidth, "frame width")
	cmd.Flags().Float64Var(&opts.height, "height", pipeline.DefaultHeight, "frame height")
	cmd.Flags().BoolVar(&opts.interactive, "interactive", false, "highlight a concept's relations on hover (svg)")

	return cmd
}

func (c *CLI) mapsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "delete [ids...]",
		Short:             "Delete stored maps",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: c.mapIDCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				for _, id := range args {
					if err := apperr.ValidateMapID(id); err != nil {
						return err
					}
					if err := st.Delete(cmd.Context(), id); err != nil {
						return mapError(id, err)
					}
					printSuccess("Deleted %s", id)
				}
				return nil
			})
		},
	}
}

func getRecord(ctx context.Context, st store.Store, id string) (store.Record, error) {
	if err := apperr.ValidateMapID(id); err != nil {
		return store.Record{}, err
	}
	rec, err := st.Get(ctx, id)
	if err != nil {
		return store.Record{}, mapError(id, err)
	}
	return rec, nil
}

// mapError gives store.ErrNotFound a coded, user-facing form.
func mapError(id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.Wrap(apperr.ErrCodeMapNotFound, err, "no stored map %q", id)
	}
	return err
}

func writeJSONTo(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
