package linkdetector_test

import (
	"fmt"

	"github.com/goodbytes/linkdetect/pkg/linkdetector"
)

func ExampleParse() {
	for _, f := range linkdetector.Parse("Foo (https://www.example.org/foo_(bar)), bar") {
		fmt.Printf("%-5t %q\n", f.IsLink(), f.String())
	}
	// Output:
	// false "Foo ("
	// true  "https://www.example.org/foo_(bar)"
	// false "), bar"
}

func ExampleLinks() {
	fragments := linkdetector.Parse("Please visit https://www.example.org and https://example.com at your convenience.")
	for _, l := range linkdetector.Links(fragments) {
		fmt.Println(l.StartIndex(), l.EndIndex(), l)
	}
	// Output:
	// 13 36 https://www.example.org
	// 41 60 https://example.com
}
