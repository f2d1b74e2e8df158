package apt_test

import (
	"fmt"

	"github.com/matzehuels/stacksize/pkg/apt"
)

func Example() {
	idx := apt.NewIndex()
	idx.ParseString(`Package: A
Installed-Size: 1000

Package: B
Installed-Size: 2000
Depends: A

Package: C
Installed-Size: 500
Depends: A | D
`)

	res := apt.NewResolver(idx, apt.Options{}).Resolve([]string{"B", "C"})
	fmt.Println(res.Names())
	fmt.Println(res.Size())
	// Output:
	// [A B C]
	// 3584000
}

func ExampleIndex_Providers() {
	idx := apt.NewIndex()
	idx.ParseString(`Package: cdebconf
Provides: debconf-2.0

Package: debconf
Provides: debconf-2.0
`)

	fmt.Println(idx.Providers("debconf-2.0"))
	fmt.Println(idx.IsVirtual("debconf-2.0"), idx.Has("debconf-2.0"))
	// Output:
	// [cdebconf debconf]
	// true false
}

func ExampleResolution_Why() {
	idx := apt.NewIndex()
	idx.ParseString(`Package: pandoc
Depends: pandoc-data, libc6

Package: pandoc-data

Package: libc6
`)

	res := apt.NewResolver(idx, apt.Options{}).Resolve([]string{"pandoc"})
	fmt.Println(res.Why("libc6"))
	// Output:
	// [pandoc libc6]
}

func ExampleAlternatives() {
	fmt.Println(apt.Alternatives("debconf (>= 0.5) | debconf-2.0"))
	// Output:
	// [debconf debconf-2.0]
}
