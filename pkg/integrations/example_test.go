package integrations_test

import (
	"fmt"

	"github.com/matzehuels/stacksize/pkg/integrations"
)

func ExampleJoinURL() {
	fmt.Println(integrations.JoinURL("http://archive.ubuntu.com/ubuntu/", "dists", "noble", "InRelease"))
	// Output:
	// http://archive.ubuntu.com/ubuntu/dists/noble/InRelease
}

func ExampleURLEncode() {
	fmt.Println(integrations.URLEncode("quarto 1.6"))
	// Output:
	// quarto+1.6
}
