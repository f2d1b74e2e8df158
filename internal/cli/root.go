package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/stacksize/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// The config file is read in PersistentPreRunE, so callers that wrap the
// hook (main.go sets the log level there) must call the original.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Stacksize estimates how much disk a setup script will use",
		Long: `Stacksize estimates the installed size of apt-based setup scripts.

It reads the same Packages indexes apt does, resolves each profile's
package list the way apt would pull dependencies in, and reports the
total including the Quarto download.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			c.installHooks()
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/stacksize/config.toml)")

	root.AddCommand(c.estimateCommand())
	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.profilesCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the --config file, or the default one if it exists.
func (c *CLI) loadConfig() error {
	path, required := c.configPath, true
	if path == "" {
		required = false
		if p, err := configPath(); err == nil {
			path = p
		}
	}
	cfg, err := LoadConfig(path, required)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("configuration loaded", "path", path, "cache", cfg.Cache.Backend, "artifacts", cfg.Artifacts.Source)
	return nil
}
