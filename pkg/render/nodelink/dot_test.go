package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/stacksize/pkg/apt"
	"github.com/matzehuels/stacksize/pkg/dag"
)

func sampleGraph(t *testing.T) *dag.DAG {
	t.Helper()
	idx := apt.NewIndex()
	idx.ParseString(`Package: pandoc
Installed-Size: 2048
Depends: pandoc-data, libc6 (>= 2.34) | libc6-compat

Package: pandoc-data
Installed-Size: 100
Depends: debconf-2.0

Package: cdebconf
Installed-Size: 10
Provides: debconf-2.0

Package: libc6
Installed-Size: 12000
`)
	return apt.NewResolver(idx, apt.Options{}).Resolve([]string{"pandoc"}).Graph
}

func TestToDOTBasic(t *testing.T) {
	dot := ToDOT(sampleGraph(t), Options{})

	for _, want := range []string{
		"digraph G",
		`"pandoc" [label="pandoc", penwidth=2, fillcolor=lightblue]`,
		`"pandoc" -> "pandoc-data";`,
		`"pandoc" -> "libc6";`,
		`"pandoc-data" -> "cdebconf";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q\n%s", want, dot)
		}
	}
}

func TestToDOTVirtualProvider(t *testing.T) {
	dot := ToDOT(sampleGraph(t), Options{})
	if !strings.Contains(dot, `"cdebconf" [label="cdebconf\n(debconf-2.0)", style="rounded,filled,dashed"]`) {
		t.Errorf("provider node not marked:\n%s", dot)
	}
}

func TestToDOTSizes(t *testing.T) {
	dot := ToDOT(sampleGraph(t), Options{Sizes: true})
	if !strings.Contains(dot, `label="pandoc\n2 MB"`) {
		t.Errorf("size missing from label:\n%s", dot)
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(sampleGraph(t), Options{Detailed: true})
	if !strings.Contains(dot, "depth: 1") {
		t.Error("detailed output missing depth")
	}
	if !strings.Contains(dot, "size: 2097152") {
		t.Error("detailed output missing size metadata")
	}
	if !strings.Contains(dot, `[label="libc6 (>= 2.34) | libc6-compat", fontsize=10]`) {
		t.Errorf("detailed output missing edge group:\n%s", dot)
	}
}

func TestToDOTRootsShareRank(t *testing.T) {
	if dot := ToDOT(sampleGraph(t), Options{}); strings.Contains(dot, "rank=same") {
		t.Errorf("single root should not get a rank group:\n%s", dot)
	}

	idx := apt.NewIndex()
	idx.ParseString("Package: make\n\nPackage: pandoc\n\nPackage: r-base-core\nDepends: make\n")
	g := apt.NewResolver(idx, apt.Options{}).Resolve([]string{"pandoc", "r-base-core"}).Graph
	dot := ToDOT(g, Options{})
	if !strings.Contains(dot, `{ rank=same; "pandoc"; "r-base-core"; }`) {
		t.Errorf("roots not grouped:\n%s", dot)
	}
}

func TestToDOTEmpty(t *testing.T) {
	dot := ToDOT(dag.New(), Options{})
	if !strings.HasPrefix(dot, "digraph G {") || !strings.HasSuffix(dot, "}\n") {
		t.Errorf("empty graph DOT = %q", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	svg := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(svg))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s", got)
	}

	plain := []byte(`<svg><g/></svg>`)
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("SVG without viewBox should be unchanged")
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering is slow")
	}
	svg, err := RenderSVG(context.Background(), ToDOT(sampleGraph(t), Options{Sizes: true}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") || !strings.Contains(string(svg), "pandoc") {
		t.Error("SVG output missing content")
	}
}
