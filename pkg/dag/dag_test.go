package dag

import (
	"errors"
	"slices"
	"testing"
)

func TestAddNode(t *testing.T) {
	g := New()
	if err := g.AddNode(Node{ID: "a"}); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if err := g.AddNode(Node{ID: "a"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("duplicate AddNode = %v, want ErrDuplicateNodeID", err)
	}
	if err := g.AddNode(Node{}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("empty AddNode = %v, want ErrInvalidNodeID", err)
	}
	n, ok := g.Node("a")
	if !ok {
		t.Fatal("node a missing")
	}
	if n.Meta == nil {
		t.Error("Meta should be initialized")
	}
}

func TestAddEdgeUnknownEndpoints(t *testing.T) {
	g := New()
	_ = g.AddNode(Node{ID: "a"})

	if err := g.AddEdge(Edge{From: "x", To: "a"}); !errors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("got %v, want ErrUnknownSourceNode", err)
	}
	if err := g.AddEdge(Edge{From: "a", To: "x"}); !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("got %v, want ErrUnknownTargetNode", err)
	}
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount = %d, want 0", g.EdgeCount())
	}
}

func TestNodesInsertionOrder(t *testing.T) {
	g := New()
	ids := []string{"zeta", "alpha", "mid"}
	for _, id := range ids {
		_ = g.AddNode(Node{ID: id})
	}
	if got := NodeIDs(g.Nodes()); !slices.Equal(got, ids) {
		t.Errorf("Nodes() = %v, want %v", got, ids)
	}
}

func TestSourcesAndNeighbours(t *testing.T) {
	g := New()
	for _, id := range []string{"a", "b", "c", "d"} {
		_ = g.AddNode(Node{ID: id})
	}
	_ = g.AddEdge(Edge{From: "a", To: "c"})
	_ = g.AddEdge(Edge{From: "b", To: "c"})

	if got := NodeIDs(g.Sources()); !slices.Equal(got, []string{"a", "b", "d"}) {
		t.Errorf("Sources() = %v", got)
	}
	if got := g.Children("a"); !slices.Equal(got, []string{"c"}) {
		t.Errorf("Children(a) = %v", got)
	}
	if got := g.Children("d"); len(got) != 0 {
		t.Errorf("Children(d) = %v, want none", got)
	}
	if got := g.Parents("c"); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Parents(c) = %v", got)
	}
}

func TestPathTo(t *testing.T) {
	g := New()
	for _, id := range []string{"root", "mid", "leaf", "alone"} {
		_ = g.AddNode(Node{ID: id})
	}
	_ = g.AddEdge(Edge{From: "root", To: "mid"})
	_ = g.AddEdge(Edge{From: "mid", To: "leaf"})

	tests := []struct {
		id   string
		want []string
	}{
		{"leaf", []string{"root", "mid", "leaf"}},
		{"root", []string{"root"}},
		{"alone", []string{"alone"}},
		{"missing", nil},
	}
	for _, tt := range tests {
		if got := g.PathTo(tt.id); !slices.Equal(got, tt.want) {
			t.Errorf("PathTo(%s) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestPathToCycleTerminates(t *testing.T) {
	g := New()
	_ = g.AddNode(Node{ID: "a"})
	_ = g.AddNode(Node{ID: "b"})
	_ = g.AddEdge(Edge{From: "a", To: "b"})
	_ = g.AddEdge(Edge{From: "b", To: "a"})

	if got := g.PathTo("a"); !slices.Equal(got, []string{"b", "a"}) {
		t.Errorf("PathTo(a) = %v", got)
	}
}
