// Package nodelink renders a resolution graph as a node-link diagram.
//
// Every installed package is a box; an arrow from A to B means A pulled B
// into the install set. The graph is the breadth-first discovery tree, so
// each package has exactly one incoming arrow (roots have none) and the
// diagram answers "why is this installed?" at a glance.
//
// # Usage
//
//	res := resolver.Resolve(roots)
//	dot := nodelink.ToDOT(res.Graph, nodelink.Options{Sizes: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The DOT source can also be saved and processed with external Graphviz
// tools. SVG rendering runs in-process via [github.com/goccy/go-graphviz].
package nodelink
