package apt

import (
	"slices"
	"strings"

	"github.com/matzehuels/stacksize/pkg/dag"
)

// Metadata keys set on resolution graph nodes and edges.
const (
	MetaSize  = "size"  // node: installed size in bytes (int64)
	MetaVia   = "via"   // node: virtual capability the package was chosen for
	MetaGroup = "group" // edge: raw dependency group that pulled the package in
)

// Options configures a [Resolver].
type Options struct {
	// Logger receives informational messages about names that could not be
	// resolved. Optional.
	Logger func(string, ...any)
}

// Resolver expands root package names into the full set of packages an
// install would pull in. It only reads the index, so one Resolver (or many)
// can be used concurrently against the same finished [Index].
type Resolver struct {
	index  *Index
	logger func(string, ...any)
}

// NewResolver creates a resolver over idx. A nil index behaves like an
// empty one.
func NewResolver(idx *Index, opts Options) *Resolver {
	if idx == nil {
		idx = NewIndex()
	}
	logger := opts.Logger
	if logger == nil {
		logger = func(string, ...any) {}
	}
	return &Resolver{index: idx, logger: logger}
}

// Index returns the index the resolver reads from.
func (r *Resolver) Index() *Index { return r.index }

type item struct {
	name   string
	parent string
	group  string
}

// Resolve computes the transitive closure of roots.
//
// Names are processed breadth-first from a FIFO worklist. A name that is a
// concrete package is installed as is. A virtual name is mapped to a
// provider, preferring one that is already installed and otherwise the
// first provider present in the index. Each dependency group of a newly
// installed package contributes its first alternative that is known to the
// index (as a package or a virtual capability).
//
// When no alternative of a group is known, the first alternative is
// enqueued anyway and silently dropped when its turn comes. Unknown roots
// and dependencies are never errors; they are listed in
// [Resolution.Dropped].
func (r *Resolver) Resolve(roots []string) *Resolution {
	res := &Resolution{
		installed: make(map[string]struct{}),
		Graph:     dag.New(),
	}
	dropped := make(map[string]struct{})

	var queue []item
	for _, root := range roots {
		if root = strings.TrimSpace(root); root != "" {
			res.Roots = append(res.Roots, root)
			queue = append(queue, item{name: root})
		}
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if res.Contains(cur.name) {
			continue
		}

		concrete, ok := r.concrete(cur.name, res)
		if !ok {
			if _, seen := dropped[cur.name]; !seen {
				dropped[cur.name] = struct{}{}
				res.Dropped = append(res.Dropped, cur.name)
				r.logger("unresolvable package dropped: %s", cur.name)
			}
			continue
		}
		if res.Contains(concrete) {
			continue
		}

		res.install(r.index, concrete, cur)

		rec, ok := r.index.Lookup(concrete)
		if !ok {
			continue
		}
		for _, group := range rec.Depends {
			if name := r.pick(group); name != "" {
				queue = append(queue, item{name: name, parent: concrete, group: group})
			}
		}
	}

	return res
}

// concrete maps a requested name to an installable package.
func (r *Resolver) concrete(name string, res *Resolution) (string, bool) {
	if r.index.Has(name) {
		return name, true
	}
	providers := r.index.provides[name]
	for _, p := range providers {
		if res.Contains(p) {
			return p, true
		}
	}
	for _, p := range providers {
		if r.index.Has(p) {
			return p, true
		}
	}
	return "", false
}

// pick selects the alternative of a dependency group to enqueue.
func (r *Resolver) pick(group string) string {
	alts := Alternatives(group)
	if len(alts) == 0 {
		return ""
	}
	for _, alt := range alts {
		if r.index.Known(alt) {
			return alt
		}
	}
	return alts[0]
}

// Resolution is the install set computed for one set of roots.
type Resolution struct {
	// Roots are the trimmed, non-empty root names that were requested.
	Roots []string
	// Dropped lists names that matched neither a package nor a virtual
	// capability with an available provider, in first-seen order.
	Dropped []string
	// Graph records which package pulled in which. Every installed package
	// is a node with its installed size under [MetaSize]; edges form the
	// breadth-first discovery tree.
	Graph *dag.DAG

	installed map[string]struct{}
	order     []string
	size      int64
}

func (res *Resolution) install(idx *Index, name string, from item) {
	res.installed[name] = struct{}{}
	res.order = append(res.order, name)
	size := idx.Size(name)
	res.size += size

	depth := 0
	if from.parent != "" {
		if p, ok := res.Graph.Node(from.parent); ok {
			depth = p.Depth + 1
		}
	}
	meta := dag.Metadata{MetaSize: size}
	if from.name != name {
		meta[MetaVia] = from.name
	}
	_ = res.Graph.AddNode(dag.Node{ID: name, Depth: depth, Meta: meta})
	if from.parent != "" {
		_ = res.Graph.AddEdge(dag.Edge{From: from.parent, To: name, Meta: dag.Metadata{MetaGroup: from.group}})
	}
}

// Contains reports whether name is part of the install set.
func (res *Resolution) Contains(name string) bool {
	_, ok := res.installed[name]
	return ok
}

// Len returns the number of packages in the install set.
func (res *Resolution) Len() int { return len(res.installed) }

// Size returns the summed installed size of the install set in bytes.
// Every package is counted once no matter how many paths lead to it.
func (res *Resolution) Size() int64 { return res.size }

// Names returns the install set in sorted order.
func (res *Resolution) Names() []string {
	names := slices.Clone(res.order)
	slices.Sort(names)
	return names
}

// Order returns the install set in the order packages were discovered.
func (res *Resolution) Order() []string { return slices.Clone(res.order) }

// PulledIn returns the packages that name brought into the install set,
// in discovery order.
func (res *Resolution) PulledIn(name string) []string {
	return slices.Clone(res.Graph.Children(name))
}

// PulledBy returns the package whose dependency installed name, or "" for
// roots and names outside the set.
func (res *Resolution) PulledBy(name string) string {
	if p := res.Graph.Parents(name); len(p) > 0 {
		return p[0]
	}
	return ""
}

// Why returns the chain of packages from a root down to name, or nil when
// name is not installed.
func (res *Resolution) Why(name string) []string {
	if !res.Contains(name) {
		return nil
	}
	return res.Graph.PathTo(name)
}
