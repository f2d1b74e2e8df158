package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stacksize/pkg/artifact"
	"github.com/matzehuels/stacksize/pkg/cache"
	"github.com/matzehuels/stacksize/pkg/errors"
	"github.com/matzehuels/stacksize/pkg/integrations/github"
	"github.com/matzehuels/stacksize/pkg/pipeline"
	"github.com/matzehuels/stacksize/pkg/source"
	"github.com/matzehuels/stacksize/pkg/source/archive"
	"github.com/matzehuels/stacksize/pkg/source/local"
)

// sourceFlags selects the package index. Local files win over the mirror;
// mirror flags override the config file.
type sourceFlags struct {
	index      []string // local Packages files or apt list directories
	mirror     string
	suites     []string
	components []string
	arch       string
	keyring    string
	checksums  bool
	refresh    bool
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.index, "index", nil, "local Packages file or directory (repeatable; skips the mirror)")
	cmd.Flags().StringVar(&f.mirror, "mirror", "", "archive mirror URL")
	cmd.Flags().StringArrayVar(&f.suites, "suite", nil, "suite to fetch (repeatable)")
	cmd.Flags().StringArrayVar(&f.components, "component", nil, "component to fetch (repeatable)")
	cmd.Flags().StringVar(&f.arch, "arch", "", "package architecture")
	cmd.Flags().StringVar(&f.keyring, "keyring", "", "verify InRelease against this OpenPGP keyring")
	cmd.Flags().BoolVar(&f.checksums, "checksums", false, "check index checksums against InRelease without verifying its signature")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "re-download indexes even when cached")
}

// build returns the configured source. Mirror downloads go through c.
func (f *sourceFlags) build(cfg *Config, r *pipeline.Runner, logf func(string, ...any)) (source.Source, error) {
	if len(f.index) > 0 {
		return local.New(f.index...), nil
	}

	opts := archive.Options{
		Mirror:     cfg.Source.Mirror,
		Suites:     cfg.Source.Suites,
		Components: cfg.Source.Components,
		Arch:       cfg.Source.Arch,
		Checksums:  cfg.Source.Checksums || f.checksums,
		Cache:      r.Cache,
		Keyer:      r.Keyer,
		Refresh:    f.refresh,
		Logger:     logf,
	}
	if f.mirror != "" {
		opts.Mirror = f.mirror
	}
	if s := splitList(f.suites); len(s) > 0 {
		opts.Suites = s
	}
	if s := splitList(f.components); len(s) > 0 {
		opts.Components = s
	}
	if f.arch != "" {
		opts.Arch = f.arch
	}

	keyring := cfg.Source.Keyring
	if f.keyring != "" {
		keyring = f.keyring
	}
	if keyring != "" {
		v, err := loadVerifier(keyring)
		if err != nil {
			return nil, err
		}
		opts.Verifier = v
	}
	return archive.New(opts)
}

func loadVerifier(path string) (*archive.Verifier, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "keyring %s", path)
	}
	defer f.Close()
	v, err := archive.NewVerifier(f)
	if err != nil {
		return nil, fmt.Errorf("keyring %s: %w", path, err)
	}
	return v, nil
}

// artifactSource returns the Quarto size source named by name. The GitHub
// source falls back to the static table when the API cannot answer.
func (c *CLI) artifactSource(name string, r *pipeline.Runner, refresh bool) (artifact.SizeSource, error) {
	if name == "" {
		name = c.Config.Artifacts.Source
	}
	if err := validateArtifacts(name); err != nil {
		return nil, errors.Field("artifacts", err.(*errors.Error))
	}
	if name == artifactsStatic {
		return artifact.DefaultStatic(), nil
	}

	token := c.Config.Artifacts.GitHubToken
	if token == "" {
		c.Logger.Debug("no GitHub token; API requests are rate limited")
	}
	client := github.NewClient(r.Cache, token, cache.TTLHTTP)
	client.SetKeyer(r.Keyer)
	gh := artifact.NewQuarto(client)
	gh.Refresh = refresh
	cached := artifact.NewCached(gh, r.Cache)
	cached.Keyer = r.Keyer
	cached.Refresh = refresh
	return artifact.Chain{cached, artifact.DefaultStatic()}, nil
}
