package cli

import (
	"context"

	"github.com/spf13/cobra"

	apperr "github.com/matzehuels/conceptmap/pkg/errors"
	"github.com/matzehuels/conceptmap/pkg/pipeline"

	"github.com/matzehuels/conceptmap/internal/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the concept map HTTP API",
		Long: `Serve the concept map HTTP API.

Layouts and renders share the configured cache; maps live in the configured
store. Generation is enabled when an OpenAI API key is configured and is
rate limited by [server] generate_rate and generate_burst. Prometheus
metrics are exposed at /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.Config.Server.Addr = addr
			}
			return c.runServe(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}

func (c *CLI) runServe(ctx context.Context) error {
	ch, err := c.newCache(ctx)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(ch, c.newKeyer(), c.Logger)
	defer runner.Close()

	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	gen, err := c.newGenerator(ch)
	if err != nil {
		if !apperr.Is(err, apperr.ErrCodeUnsupported) {
			return err
		}
		c.Logger.Warn("generation disabled", "reason", apperr.UserMessage(err))
	}

	srv := server.New(server.Config{
		Addr:          c.Config.Server.Addr,
		DefaultDepth:  c.Config.Layout.DefaultDepth,
		GenerateRate:  c.Config.Server.GenerateRate,
		GenerateBurst: c.Config.Server.GenerateBurst,
	}, runner, st, gen, c.Logger)
	return srv.ListenAndServe(ctx)
}
