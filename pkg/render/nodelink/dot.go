package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/stacksize/pkg/apt"
	"github.com/matzehuels/stacksize/pkg/dag"
	"github.com/matzehuels/stacksize/pkg/report"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Sizes adds each package's installed size to its label.
	Sizes bool

	// Detailed includes depth, every metadata field and the dependency
	// group on edges. Implies Sizes.
	Detailed bool
}

// ToDOT converts a resolution graph to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
//
// Root packages are drawn bold. Packages chosen as the provider of a
// virtual name are drawn dashed, with the virtual name on the label.
func ToDOT(g *dag.DAG, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [color=gray40];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		label := fmtLabel(*n, opts)
		attrs := fmtAttrs(*n, label)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	if roots := dag.NodeIDs(g.Sources()); len(roots) > 1 {
		fmt.Fprintf(&buf, "  { rank=same; %s }\n", quoteIDs(roots))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if group, ok := e.Meta[apt.MetaGroup].(string); ok && opts.Detailed && group != "" {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q, fontsize=10];\n", e.From, e.To, group)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func quoteIDs(ids []string) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = strconv.Quote(id)
	}
	return strings.Join(quoted, "; ") + ";"
}

func fmtLabel(n dag.Node, opts Options) string {
	lines := []string{n.ID}
	if via, ok := n.Meta[apt.MetaVia].(string); ok && via != "" {
		lines = append(lines, "("+via+")")
	}
	if opts.Detailed {
		lines = append(lines, fmt.Sprintf("depth: %d", n.Depth))
		for _, k := range slices.Sorted(maps.Keys(n.Meta)) {
			if k == apt.MetaVia {
				continue
			}
			lines = append(lines, fmt.Sprintf("%s: %v", k, n.Meta[k]))
		}
	} else if opts.Sizes {
		if size, ok := n.Meta[apt.MetaSize].(int64); ok {
			lines = append(lines, report.HumanSize(size))
		}
	}
	return strings.Join(lines, "\n")
}

func fmtAttrs(n dag.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if n.Depth == 0 {
		attrs = append(attrs, "penwidth=2", "fillcolor=lightblue")
	}
	if via, ok := n.Meta[apt.MetaVia].(string); ok && via != "" {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
