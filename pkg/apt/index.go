package apt

import (
	"bufio"
	"io"
	"slices"
	"strconv"
	"strings"
)

// Control fields the index reads. Every other field is ignored.
const (
	fieldPackage       = "Package"
	fieldInstalledSize = "Installed-Size"
	fieldDepends       = "Depends"
	fieldPreDepends    = "Pre-Depends"
	fieldProvides      = "Provides"
)

const maxLineSize = 4 << 20

// Record is one concrete package parsed from a Packages document.
// Records are owned by the [Index] and must not be modified.
type Record struct {
	Name          string   // Unique package name
	InstalledSize int64    // Declared installed size in bytes
	Depends       []string // Raw dependency groups: Depends first, then Pre-Depends
}

// ParseStats summarizes a single [Index.Parse] call.
type ParseStats struct {
	Records int // Stanzas stored (or overwritten) in the index
	Skipped int // Stanzas without a Package field
}

// Index is an in-memory catalog of package records plus a reverse map from
// virtual capability names to the packages that provide them.
//
// An Index is built in one phase (Parse) and read in another (Lookup,
// Providers, Resolve). Parse is not safe for concurrent use; once parsing
// is finished the Index may be shared by any number of goroutines.
type Index struct {
	records  map[string]*Record
	provides map[string][]string
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{
		records:  make(map[string]*Record),
		provides: make(map[string][]string),
	}
}

// Parse reads a Packages document (blank-line separated stanzas of
// "Key: Value" lines) and merges its records into the index. A package that
// is already present is replaced. Stanzas without a Package field are
// skipped. The only error returned is a read error from r; records parsed
// before the error remain in the index.
func (x *Index) Parse(r io.Reader) (ParseStats, error) {
	var (
		stats ParseStats
		st    = stanza{fields: make(map[string]string)}
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			x.flush(&st, &stats)
			continue
		}
		st.add(line)
	}
	x.flush(&st, &stats)
	return stats, sc.Err()
}

// ParseString is [Index.Parse] for in-memory documents. The only possible
// error is bufio.ErrTooLong for a line longer than 4 MiB, which stops
// parsing at that line.
func (x *Index) ParseString(doc string) (ParseStats, error) {
	return x.Parse(strings.NewReader(doc))
}

// Lookup returns the record for an exact package name.
func (x *Index) Lookup(name string) (*Record, bool) {
	r, ok := x.records[name]
	return r, ok
}

// Has reports whether name is a concrete package in the index.
func (x *Index) Has(name string) bool {
	_, ok := x.records[name]
	return ok
}

// Providers returns the packages that declared they provide the virtual
// capability, in the order they were first registered. The returned slice
// is a copy and is empty when nothing provides the name.
func (x *Index) Providers(virtual string) []string {
	return slices.Clone(x.provides[virtual])
}

// IsVirtual reports whether at least one package provides name.
func (x *Index) IsVirtual(name string) bool {
	return len(x.provides[name]) > 0
}

// Known reports whether name is either a concrete package or a virtual
// capability.
func (x *Index) Known(name string) bool {
	return x.Has(name) || x.IsVirtual(name)
}

// Size returns the installed size of a package in bytes, or 0 when the
// package is unknown.
func (x *Index) Size(name string) int64 {
	if r, ok := x.records[name]; ok {
		return r.InstalledSize
	}
	return 0
}

// TotalSize sums the installed sizes of the given packages. Duplicate names
// are counted once.
func (x *Index) TotalSize(names []string) int64 {
	seen := make(map[string]struct{}, len(names))
	var total int64
	for _, n := range names {
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		total += x.Size(n)
	}
	return total
}

// Len returns the number of concrete packages.
func (x *Index) Len() int { return len(x.records) }

// VirtualLen returns the number of distinct virtual capabilities.
func (x *Index) VirtualLen() int { return len(x.provides) }

// Names returns all concrete package names in sorted order.
func (x *Index) Names() []string {
	names := make([]string, 0, len(x.records))
	for n := range x.records {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func (x *Index) flush(st *stanza, stats *ParseStats) {
	if st.empty() {
		return
	}
	defer st.reset()

	name := strings.TrimSpace(st.fields[fieldPackage])
	if name == "" {
		stats.Skipped++
		return
	}

	rec := &Record{
		Name:          name,
		InstalledSize: parseInstalledSize(st.fields[fieldInstalledSize]),
	}
	rec.Depends = append(SplitList(st.fields[fieldDepends]), SplitList(st.fields[fieldPreDepends])...)
	x.records[name] = rec
	stats.Records++

	for _, entry := range SplitList(st.fields[fieldProvides]) {
		if virtual := providedName(entry); virtual != "" {
			x.addProvider(virtual, name)
		}
	}
}

func (x *Index) addProvider(virtual, pkg string) {
	if slices.Contains(x.provides[virtual], pkg) {
		return
	}
	x.provides[virtual] = append(x.provides[virtual], pkg)
}

// parseInstalledSize converts the kilobyte figure of Installed-Size to
// bytes. Missing or malformed values count as zero.
func parseInstalledSize(v string) int64 {
	kb, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || kb < 0 {
		return 0
	}
	return kb * 1024
}

// providedName extracts the capability name of a Provides entry, dropping
// any version or architecture qualifier that follows it.
func providedName(entry string) string {
	f := strings.Fields(entry)
	if len(f) == 0 {
		return ""
	}
	name, _, _ := strings.Cut(f[0], "(")
	return name
}

// stanza accumulates the fields of the record currently being parsed.
type stanza struct {
	fields  map[string]string
	lastKey string
}

func (s *stanza) add(line string) {
	if line[0] == ' ' || line[0] == '\t' {
		// Only Depends is folded; other multi-line fields (Description,
		// Conffiles, ...) are not needed for sizing.
		if s.lastKey == fieldDepends {
			s.fields[fieldDepends] += " " + strings.TrimSpace(line)
		}
		return
	}

	key, value, ok := strings.Cut(line, ":")
	if !ok {
		s.lastKey = ""
		return
	}
	key = strings.TrimSpace(key)
	s.fields[key] = strings.TrimSpace(value)
	s.lastKey = key
}

func (s *stanza) empty() bool { return len(s.fields) == 0 }

func (s *stanza) reset() {
	clear(s.fields)
	s.lastKey = ""
}
