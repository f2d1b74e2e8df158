package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stacksize/pkg/observability"
	"github.com/matzehuels/stacksize/pkg/pipeline"
	"github.com/matzehuels/stacksize/pkg/profile"
)

// estimateOpts holds the command-line flags for the estimate command.
type estimateOpts struct {
	src          sourceFlags
	profilesFile string // TOML or YAML profile file (built-in profiles if empty)
	format       string // table, markdown or json
	artifacts    string // static or github
	noCache      bool
	strict       bool // fail on an incomplete index or missing artifact size
	interactive  bool // pick profiles in a terminal UI
}

// estimateCommand creates the estimate command.
func (c *CLI) estimateCommand() *cobra.Command {
	opts := estimateOpts{format: pipeline.FormatTable}

	cmd := &cobra.Command{
		Use:   "estimate [profile...]",
		Short: "Estimate the installed size of each setup profile",
		Long: `Estimate the installed size of each setup profile.

The package index is downloaded from the configured mirror (or read from
--index files), every profile's package list is resolved against it, and
the Quarto download size is added on top.

Examples:
  stacksize estimate                              # all built-in profiles
  stacksize estimate setup_r_only.sh -f markdown  # one profile, README table
  stacksize estimate --index /var/lib/apt/lists   # the local apt lists
  stacksize estimate --profiles my.toml -i        # pick from a file`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormat(opts.format); err != nil {
				return err
			}
			return c.runEstimate(cmd.Context(), cmd.OutOrStdout(), args, opts)
		},
		ValidArgsFunction: c.completeProfiles,
	}

	opts.src.register(cmd)
	cmd.Flags().StringVar(&opts.profilesFile, "profiles", "", "profile file (.toml, .yaml)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: table, markdown, json")
	cmd.Flags().StringVar(&opts.artifacts, "artifacts", "", "artifact sizes: static, github (default from config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail instead of warning on missing indexes or artifact sizes")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "choose profiles interactively")

	return cmd
}

func (c *CLI) runEstimate(ctx context.Context, w io.Writer, names []string, opts estimateOpts) error {
	all, err := c.loadProfiles(opts.profilesFile)
	if err != nil {
		return err
	}
	selected, err := profile.Select(all, names...)
	if err != nil {
		return err
	}
	if opts.interactive {
		selected, err = pickProfiles(selected)
		if err != nil {
			return err
		}
		if len(selected) == 0 {
			printInfo("No profiles selected")
			return nil
		}
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

	var spinner *Spinner
	if opts.format == pipeline.FormatTable {
		spinner = newSpinnerWithContext(ctx, fmt.Sprintf("Estimating %d profiles from %s...", len(selected), src))
		prev := observability.Pipeline()
		observability.SetPipelineHooks(observability.MultiPipeline(prev, spinnerHooks{spinner: spinner}))
		defer observability.SetPipelineHooks(prev)
		spinner.Start()
	}
	prog := newProgress(c.Logger)

	result, err := runner.Execute(ctx, pipeline.Options{
		Source:    src,
		Profiles:  selected,
		Artifacts: artifacts,
		Refresh:   opts.src.refresh,
		Strict:    opts.strict,
		Logger:    c.Logger,
	})
	if spinner != nil {
		if err != nil {
			spinner.StopWithError("Estimation failed")
		} else {
			spinner.Stop()
		}
	}
	if err != nil {
		return fmt.Errorf("estimate: %w", err)
	}
	prog.done("Estimated %d profiles", len(result.Report.Rows))

	return writeReport(w, result, opts.format)
}

// writeReport prints a finished run in the requested format.
func writeReport(w io.Writer, result *pipeline.Result, format string) error {
	switch format {
	case pipeline.FormatMarkdown:
		return result.Report.WriteMarkdown(w)
	case pipeline.FormatJSON:
		return result.Report.WriteJSON(w)
	}

	fmt.Fprintln(w, renderReportTable(result.Report))
	fmt.Fprintln(w, formatStats(result.Stats.Records, len(result.CacheInfo.Hits), len(result.Report.Rows)))
	for _, row := range result.Report.Rows {
		if len(row.Dropped) > 0 {
			fmt.Fprintln(w, formatWarning("%s: %d names not in the index (%s)",
				row.Profile, len(row.Dropped), joinLimited(row.Dropped, 5)))
		}
	}
	return nil
}

// loadProfiles reads path, the config's profile file, or the built-in set.
func (c *CLI) loadProfiles(path string) ([]profile.Profile, error) {
	if path == "" {
		path = c.Config.Profiles
	}
	if path == "" {
		return profile.Defaults(), nil
	}
	return profile.Load(path)
}

// completeProfiles completes profile names for positional arguments.
func (c *CLI) completeProfiles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	path, _ := cmd.Flags().GetString("profiles")
	all, err := c.loadProfiles(path)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return profile.Names(all), cobra.ShellCompDirectiveNoFileComp
}
