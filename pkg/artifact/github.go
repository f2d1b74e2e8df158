package artifact

import (
	"context"

	"github.com/matzehuels/stacksize/pkg/errors"
	"github.com/matzehuels/stacksize/pkg/integrations/github"
	"github.com/matzehuels/stacksize/pkg/profile"
)

// Quarto release coordinates.
const (
	QuartoOwner       = "quarto-dev"
	QuartoRepo        = "quarto-cli"
	QuartoAssetSuffix = "linux-amd64.deb"
)

// GitHub sizes an artifact by the release asset it is installed from.
// The asset size is the compressed package, so it underestimates the
// unpacked footprint.
type GitHub struct {
	Client  *github.Client
	Owner   string
	Repo    string
	Suffix  string
	Refresh bool
}

// NewQuarto returns a GitHub source for the Quarto CLI .deb.
func NewQuarto(client *github.Client) *GitHub {
	return &GitHub{Client: client, Owner: QuartoOwner, Repo: QuartoRepo, Suffix: QuartoAssetSuffix}
}

// Name implements SizeSource.
func (g *GitHub) Name() string { return "github" }

// Size implements SizeSource. Key "latest" reads the latest stable
// release, "prerelease" the newest prerelease.
func (g *GitHub) Size(ctx context.Context, key string) (int64, error) {
	var (
		rel *github.Release
		err error
	)
	switch key {
	case profile.QuartoLatest:
		rel, err = g.Client.LatestRelease(ctx, g.Owner, g.Repo, g.Refresh)
	case profile.QuartoPrerelease:
		rel, err = g.Client.LatestPrerelease(ctx, g.Owner, g.Repo, g.Refresh)
	default:
		return 0, errors.New(errors.ErrCodeUnsupported, "github source cannot size artifact %q", key)
	}
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeArtifactUnavailable, err, "%s/%s %s release", g.Owner, g.Repo, key)
	}
	asset, err := github.FindAsset(rel, g.Suffix)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeArtifactUnavailable, err, "%s/%s", g.Owner, g.Repo)
	}
	return asset.Size, nil
}
