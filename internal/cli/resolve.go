package cli

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stacksize/pkg/apt"
	"github.com/matzehuels/stacksize/pkg/errors"
	"github.com/matzehuels/stacksize/pkg/pipeline"
	"github.com/matzehuels/stacksize/pkg/render/nodelink"
	"github.com/matzehuels/stacksize/pkg/report"
)

const (
	sortOrder = "order" // breadth-first install order
	sortSize  = "size"  // largest first
	sortName  = "name"
)

// resolveOpts holds the command-line flags for the resolve command.
type resolveOpts struct {
	src      sourceFlags
	format   string // table or json
	sortBy   string
	why      string // print the chain that pulls in this package
	dot      string // write the resolution tree as DOT
	svg      string // write the resolution tree as SVG
	detailed bool   // dependency groups and depth in diagrams
	noCache  bool
	strict   bool
}

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	opts := resolveOpts{format: pipeline.FormatTable, sortBy: sortOrder}

	cmd := &cobra.Command{
		Use:   "resolve <package>...",
		Short: "Show what installing packages would pull in",
		Long: `Show what installing packages would pull in.

Depends and Pre-Depends are followed transitively; virtual names are
replaced by a provider and the first known option of every alternatives
group is taken.

Examples:
  stacksize resolve r-base-core                 # closure with sizes
  stacksize resolve pandoc --why libc6          # why is libc6 installed?
  stacksize resolve texlive-full --svg tex.svg  # draw the resolution tree`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateFormat(opts.format, pipeline.FormatTable, pipeline.FormatJSON); err != nil {
				return err
			}
			if err := errors.ValidateFormat(opts.sortBy, sortOrder, sortSize, sortName); err != nil {
				return err
			}
			for _, name := range args {
				if err := errors.ValidatePackageName(name); err != nil {
					return err
				}
			}
			return c.runResolve(cmd.Context(), cmd.OutOrStdout(), args, opts)
		},
	}

	opts.src.register(cmd)
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: table, json")
	cmd.Flags().StringVar(&opts.sortBy, "sort", opts.sortBy, "sort packages by: order, size, name")
	cmd.Flags().StringVar(&opts.why, "why", "", "show which chain of dependencies pulls in this package")
	cmd.Flags().StringVar(&opts.dot, "dot", "", "write the resolution tree as Graphviz DOT")
	cmd.Flags().StringVar(&opts.svg, "svg", "", "write the resolution tree as SVG")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show dependency groups and depth in diagrams")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail when an index cannot be fetched")

	return cmd
}

func (c *CLI) runResolve(ctx context.Context, w io.Writer, roots []string, opts resolveOpts) error {
	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	src, err := opts.src.build(c.Config, runner, c.Logger.Debugf)
	if err != nil {
		return err
	}
	idx, _, err := runner.LoadIndex(ctx, pipeline.Options{Source: src, Strict: opts.strict, Logger: c.Logger})
	if err != nil {
		return fmt.Errorf("load index: %w", err)
	}

	res := apt.NewResolver(idx, apt.Options{Logger: c.Logger.Debugf}).Resolve(roots)
	for _, name := range res.Dropped {
		c.Logger.Warn("not in the index", "package", name)
	}

	if opts.why != "" {
		chain := res.Why(opts.why)
		if chain == nil {
			return errors.New(errors.ErrCodeNotFound, "%s is not part of the install set", opts.why)
		}
		fmt.Fprintln(w, strings.Join(chain, " "+iconArrow+" "))
		return nil
	}

	if err := writeDiagrams(ctx, res, opts); err != nil {
		return err
	}

	entries := resolvedEntries(idx, res, opts.sortBy)
	if opts.format == pipeline.FormatJSON {
		return writeJSON(w, entries)
	}
	fmt.Fprintln(w, renderResolveTable(entries))
	fmt.Fprintf(w, "  %s %s\n",
		StyleDim.Render(fmt.Sprintf("%d packages ·", res.Len())),
		StyleNumber.Render(report.HumanSize(res.Size())))
	return nil
}

// resolvedEntry is one row of the resolve output.
type resolvedEntry struct {
	Name  string `json:"name"`
	Size  int64  `json:"size"`
	Depth int    `json:"depth"`
	Via   string `json:"via,omitempty"`
	By    string `json:"pulled_by,omitempty"`
	Pulls int    `json:"pulls"`
}

func resolvedEntries(idx *apt.Index, res *apt.Resolution, sortBy string) []resolvedEntry {
	out := make([]resolvedEntry, 0, res.Len())
	for _, name := range res.Order() {
		n, _ := res.Graph.Node(name)
		e := resolvedEntry{
			Name:  name,
			Size:  idx.Size(name),
			Depth: n.Depth,
			By:    res.PulledBy(name),
			Pulls: len(res.PulledIn(name)),
		}
		e.Via, _ = n.Meta[apt.MetaVia].(string)
		out = append(out, e)
	}
	switch sortBy {
	case sortSize:
		slices.SortStableFunc(out, func(a, b resolvedEntry) int { return cmp.Compare(b.Size, a.Size) })
	case sortName:
		slices.SortFunc(out, func(a, b resolvedEntry) int { return strings.Compare(a.Name, b.Name) })
	}
	return out
}

func renderResolveTable(entries []resolvedEntry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Name, report.HumanSize(e.Size), fmt.Sprint(e.Depth), e.By, fmt.Sprint(e.Pulls), e.Via})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Package", "Size", "Depth", "Pulled by", "Pulls", "Via").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == -1:
				return styleHeader.Padding(0, 1)
			case col == 1:
				return base.Foreground(colorCyan).Align(lipgloss.Right)
			case col == 0:
				return base.Foreground(colorWhite)
			}
			return base.Foreground(colorGray)
		}).
		Render()
}

// writeDiagrams writes the DOT and SVG files requested in opts.
func writeDiagrams(ctx context.Context, res *apt.Resolution, opts resolveOpts) error {
	if opts.dot == "" && opts.svg == "" {
		return nil
	}
	dot := nodelink.ToDOT(res.Graph, nodelink.Options{Sizes: true, Detailed: opts.detailed})
	loggerFromContext(ctx).Debug("built resolution graph", "nodes", res.Graph.NodeCount(), "edges", res.Graph.EdgeCount())

	if opts.dot != "" {
		if err := os.WriteFile(opts.dot, []byte(dot), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", opts.dot, err)
		}
		printFile(opts.dot)
	}
	if opts.svg != "" {
		spinner := newSpinnerWithContext(ctx, "Rendering diagram...")
		spinner.Start()
		svg, err := nodelink.RenderSVG(ctx, dot)
		spinner.Stop()
		if err != nil {
			return fmt.Errorf("render svg: %w", err)
		}
		if err := os.WriteFile(opts.svg, svg, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", opts.svg, err)
		}
		printFile(opts.svg)
	}
	return nil
}
