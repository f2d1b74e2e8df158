// Package apt estimates what an apt-style install would pull in, using only
// the metadata found in Debian/Ubuntu Packages indexes.
//
// # Overview
//
// The package has two parts:
//
//   - [Index]: an in-memory catalog parsed from one or more Packages
//     documents. Each concrete package becomes a [Record] with its installed
//     size and raw dependency groups; Provides fields feed a reverse map
//     from virtual capabilities to their providers.
//   - [Resolver]: a breadth-first closure over the index that follows
//     Depends and Pre-Depends, substitutes providers for virtual names and
//     picks one option from every alternatives group.
//
// # Building an Index
//
//	idx := apt.NewIndex()
//	for _, doc := range documents {
//	    if _, err := idx.Parse(doc); err != nil {
//	        return err
//	    }
//	}
//
// Parsing is additive: later documents overwrite records with the same
// package name. Stanzas without a Package field are counted in
// [ParseStats.Skipped] and otherwise ignored.
//
// # Resolving
//
//	res := apt.NewResolver(idx, apt.Options{}).Resolve([]string{"pandoc", "make"})
//	fmt.Println(res.Len(), res.Size())
//
// Resolution never fails. Names that match nothing are reported in
// [Resolution.Dropped]; the estimate is simply smaller.
//
// # Heuristics
//
// The resolver is not apt's solver. Versions, conflicts, priorities and
// Recommends are ignored. Within an alternatives group the first option
// known to the index wins. A virtual capability resolves to an already
// installed provider when there is one, which keeps families such as
// debconf-2.0 from being counted twice.
//
// An alternatives group in which no option is known still enqueues its
// first option; that name is dropped when it is processed.
package apt
