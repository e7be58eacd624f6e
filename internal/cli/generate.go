package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/conceptmap/pkg/concept"
	"github.com/matzehuels/conceptmap/pkg/generate"
	"github.com/matzehuels/conceptmap/pkg/store"
)

func (c *CLI) generateCommand() *cobra.Command {
	var (
		req     generate.Request
		class   string
		output  string
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "generate [topic]",
		Short: "Generate a concept map about a topic with a language model",
		Long: `Generate a concept map about a topic with a language model.

The model is asked for a JSON concept graph with a root concept for the
topic; the result is stored (see 'maps list') and optionally written to a
file. Generated graphs are cached, so asking again for the same topic is
free unless --refresh is given.

Requires OPENAI_API_KEY (or [generate] api_key in the config file).
OPENAI_BASE_URL points the client at a compatible server.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Topic = args[0]
			return c.runGenerate(cmd.Context(), req, class, output, refresh)
		},
	}

	cmd.Flags().IntVarP(&req.Depth, "depth", "d", 0, "levels to request (default 2)")
	cmd.Flags().StringArrayVarP(&req.Subtopics, "subtopic", "s", nil, "subtopic to include (repeatable)")
	cmd.Flags().StringVar(&class, "class", "", "class the map belongs to (default \""+concept.DefaultClass+"\")")
	cmd.Flags().StringVarP(&output, "output", "o", "", "also write the document to this file")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached generations")

	return cmd
}

func (c *CLI) runGenerate(ctx context.Context, req generate.Request, class, output string, refresh bool) error {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return err
	}

	ch, err := c.newCache(ctx)
	if err != nil {
		return err
	}
	defer ch.Close()

	gen, err := c.newGenerator(ch)
	if err != nil {
		return err
	}
	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	var (
		doc      concept.Document
		cacheHit bool
	)
	err = withSpinner(ctx, fmt.Sprintf("Generating map for %q...", req.Topic), func(ctx context.Context) error {
		var err error
		doc, cacheHit, err = gen.GenerateWithCacheInfo(ctx, req, refresh)
		return err
	})
	if err != nil {
		printError("Generation failed")
		return err
	}

	rec := store.NewRecord(doc, class, time.Now())
	if err := st.Save(ctx, rec); err != nil {
		return fmt.Errorf("store map: %w", err)
	}

	if output != "" {
		data, err := concept.MarshalDocument(doc)
		if err != nil {
			return err
		}
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", output, err)
		}
	}

	printSuccess("%s", rec.Name)
	printKeyValue("id", rec.ID)
	printKeyValue("class", rec.Class)
	if output != "" {
		printFile(output)
	}
	printStats(len(doc.Map.Nodes), len(doc.Map.Edges), cacheHit)
	printNewline()
	printNextStep("Render", appName+" maps render "+rec.ID)
	return nil
}
