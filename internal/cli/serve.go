package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stacksize/pkg/pipeline"
	"github.com/matzehuels/stacksize/pkg/server"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	src          sourceFlags
	addr         string
	profilesFile string
	artifacts    string
	timeout      time.Duration
	noCache      bool
	strict       bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve estimates over HTTP",
		Long: `Serve estimates over HTTP.

The package index is loaded once at startup and shared by every request.
Restart the server to pick up a newer index.

Routes:
  GET  /healthz
  GET  /profiles, /profiles/{name}
  GET  /packages/{name}
  POST /resolve   {"packages": ["pandoc"]}
  POST /estimate  {"profiles": ["setup_r_only.sh"]}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	opts.src.register(cmd)
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, "+server.DefaultAddr+")")
	cmd.Flags().StringVar(&opts.profilesFile, "profiles", "", "profile file (.toml, .yaml)")
	cmd.Flags().StringVar(&opts.artifacts, "artifacts", "", "artifact sizes: static, github (default from config)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "per-request timeout")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail instead of warning on missing indexes or artifact sizes")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	profiles, err := c.loadProfiles(opts.profilesFile)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	src, err := opts.src.build(c.Config, runner, c.Logger.Debugf)
	if err != nil {
		return err
	}
	artifacts, err := c.artifactSource(opts.artifacts, runner, opts.src.refresh)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	idx, stats, err := runner.LoadIndex(ctx, pipeline.Options{Source: src, Strict: opts.strict, Logger: c.Logger})
	if err != nil {
		return fmt.Errorf("load index: %w", err)
	}
	prog.done("Indexed %d packages", idx.Len())

	srv, err := server.New(server.Config{
		Index:          idx,
		Stats:          stats,
		Source:         src,
		Profiles:       profiles,
		Artifacts:      artifacts,
		Runner:         runner,
		Strict:         opts.strict,
		Logger:         c.Logger,
		RequestTimeout: opts.timeout,
	})
	if err != nil {
		return err
	}

	addr := opts.addr
	if addr == "" {
		addr = c.Config.Server.Addr
	}
	return srv.ListenAndServe(ctx, addr)
}
