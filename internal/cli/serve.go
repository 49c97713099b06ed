package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/circlegraph/internal/server"
)

// serveCommand creates the serve command, which runs the HTTP API until
// interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		cfg server.Config
		co  cacheOpts
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

POST /v1/render accepts the nodes, the matrix and the render options as JSON
and returns the node order, the angles and every rendered artifact (base64).
GET /healthz reports the build.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), cfg, co)
		},
	}

	cmd.Flags().StringVar(&cfg.Addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", server.DefaultTimeout, "per-request time limit")
	cmd.Flags().Int64Var(&cfg.MaxBodyBytes, "max-body", server.DefaultMaxBodyBytes, "request size limit in bytes")
	cmd.Flags().IntVar(&cfg.MaxThresholds, "max-thresholds", server.DefaultMaxThresholds, "thresholds allowed per request")
	cmd.Flags().IntVar(&cfg.MaxSize, "max-size", server.DefaultMaxSize, "largest image edge length in pixels per request")
	cmd.Flags().IntVarP(&cfg.Concurrency, "jobs", "j", 0, "thresholds rendered in parallel per request (default: number of CPUs)")
	cmd.Flags().StringSliceVar(&cfg.AllowedOrigins, "cors-origin", nil, "allow browser requests from these origins")
	co.register(cmd)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg server.Config, co cacheOpts) error {
	cc, err := c.newCache(ctx, co)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}

	srv := server.New(cc, c.Logger, cfg)
	defer srv.Close()

	printSuccess("Serving on %s", StyleLink.Render(cfg.Addr))
	printKeyValue("Render", "POST /v1/render")
	printKeyValue("Health", "GET /healthz")
	if len(cfg.AllowedOrigins) > 0 {
		printKeyValue("CORS", fmt.Sprint(cfg.AllowedOrigins))
	}
	printKeyValue("Timeout", cfg.Timeout.Round(time.Second).String())

	return srv.ListenAndServe(ctx)
}
