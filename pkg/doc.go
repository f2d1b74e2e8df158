// Package pkg provides the core libraries for Stacksize disk-usage estimates.
//
// # Overview
//
// Stacksize answers "how big will this setup script's install be?" for
// apt-based images. It reads the Packages indexes apt itself uses, resolves
// each profile's package list the way apt pulls dependencies in, and adds
// the size of artifacts installed outside apt (the Quarto bundle). The pkg
// directory is organized into four areas:
//
//  1. Domain logic: [apt], [dag], [profile]
//  2. Inputs: [source], [artifact], [integrations]
//  3. Orchestration: [pipeline], [report], [render/nodelink]
//  4. Infrastructure: [cache], [errors], [observability], [httputil], [server]
//
// # Architecture
//
// The typical data flow:
//
//	Packages indexes (mirror or local files)
//	         ↓
//	    [source] package (fetch, verify, decompress)
//	         ↓
//	    [apt] package (Index + Resolver)
//	         ↓
//	    [pipeline] package (profiles × resolver + artifact sizes)
//	         ↓
//	    [report] package (markdown/JSON table)
//
// # Quick Start
//
//	idx := apt.NewIndex()
//	if _, err := idx.Parse(f); err != nil {
//	    return err
//	}
//	res := apt.NewResolver(idx, apt.Options{}).Resolve([]string{"r-base", "pandoc"})
//	fmt.Println(report.HumanSize(res.Size()))
//
// # Main Packages
//
// [apt] - Packages-format parser, virtual-package map and breadth-first
// dependency resolver. This is the heart of the estimate.
//
// [dag] - Directed graph of the resolution so callers can ask why a
// package was installed and render the tree.
//
// [profile] - Setup-script profiles (R, Quarto, TeX flags plus package
// lists) loaded from TOML or YAML.
//
// [source] - Where Packages documents come from: an Ubuntu-style archive
// with signed Release files ([source/archive]) or local files
// ([source/local]).
//
// [artifact] - Sizes of downloads that bypass apt. A static table by
// default, or live GitHub release metadata.
//
// [pipeline] - Loads the index once and estimates every profile
// concurrently. Used by both the CLI and [server].
//
// [cache] - Byte cache with file, Redis, MongoDB and null backends.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/apt/...                # Specific package
//	go test -run Example                 # Examples only
//	go test -tags integration ./pkg/...  # Include integration tests
//
// [apt]: https://pkg.go.dev/github.com/matzehuels/stacksize/pkg/apt
// [dag]: https://pkg.go.dev/github.com/matzehuels/stacksize/pkg/dag
// [profile]: https://pkg.go.dev/github.com/matzehuels/stacksize/pkg/profile
// [source]: https://pkg.go.dev/github.com/matzehuels/stacksize/pkg/source
// [source/archive]: https://pkg.go.dev/github.com/matzehuels/stacksize/pkg/source/archive
// [source/local]: https://pkg.go.dev/github.com/matzehuels/stacksize/pkg/source/local
// [artifact]: https://pkg.go.dev/github.com/matzehuels/stacksize/pkg/artifact
// [integrations]: https://pkg.go.dev/github.com/matzehuels/stacksize/pkg/integrations
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/stacksize/pkg/pipeline
// [report]: https://pkg.go.dev/github.com/matzehuels/stacksize/pkg/report
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/stacksize/pkg/render/nodelink
// [cache]: https://pkg.go.dev/github.com/matzehuels/stacksize/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/stacksize/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/stacksize/pkg/observability
// [httputil]: https://pkg.go.dev/github.com/matzehuels/stacksize/pkg/httputil
// [server]: https://pkg.go.dev/github.com/matzehuels/stacksize/pkg/server
package pkg
