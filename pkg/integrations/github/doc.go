// Package github provides an HTTP client for the GitHub releases API.
//
// # Overview
//
// stacksize uses GitHub to size artifacts that are not installed from the
// package index, most notably the Quarto CLI .deb published on
// quarto-dev/quarto-cli.
//
// # Usage
//
//	client := github.NewClient(backend, os.Getenv("GITHUB_TOKEN"), cache.TTLArtifact)
//	rel, err := client.LatestPrerelease(ctx, "quarto-dev", "quarto-cli", false)
//	if err != nil {
//	    return err
//	}
//	asset, err := github.FindAsset(rel, "linux-amd64.deb")
//
// # Authentication
//
// A token is optional. Without one the API allows 60 requests per hour,
// which is plenty because responses are cached.
package github
