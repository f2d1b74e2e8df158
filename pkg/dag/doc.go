// Package dag provides a small directed graph used to record how packages
// were pulled into an install set.
//
// # Overview
//
// A resolver adds one [Node] per installed package and one [Edge] from the
// package that required it. The result is a discovery tree: every node except
// the roots has exactly one incoming edge, so [DAG.PathTo] answers "why is
// this package here?" by walking parents back to a root.
//
// # Basic Usage
//
//	g := dag.New()
//	_ = g.AddNode(dag.Node{ID: "pandoc"})
//	_ = g.AddNode(dag.Node{ID: "libc6", Depth: 1})
//	_ = g.AddEdge(dag.Edge{From: "pandoc", To: "libc6"})
//
// Query the structure with [DAG.Children], [DAG.Parents] and [DAG.Sources].
//
// # Metadata
//
// Nodes and edges carry [Metadata] maps for values such as installed
// sizes. Metadata maps are never nil after insertion.
//
// # Concurrency
//
// A DAG is not safe for concurrent mutation. A finished graph may be read
// from multiple goroutines.
package dag
