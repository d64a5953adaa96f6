package layer_test

import (
	"fmt"

	"github.com/matzehuels/layershare/pkg/layer"
)

func Example() {
	records := func(last string, size int64) []layer.Record {
		return []layer.Record{
			{CreatedBy: "ADD rootfs.tar /", Size: 10, Created: 1},
			{CreatedBy: "RUN apt-get install -y curl", Size: 20, Created: 2},
			{CreatedBy: last, Size: size, Created: 3},
		}
	}

	forest := layer.Merge([]layer.Chain{
		layer.BuildChain("app:1", records("COPY v1 /app", 30)),
		layer.BuildChain("app:2", records("COPY v2 /app", 40)),
	})
	layer.Rollup(forest)

	layer.Walk(forest, func(n, _ *layer.Node, depth int) bool {
		fmt.Printf("%*s%s total=%d subtotal=%d\n", depth*2, "", n.CreatedBy, n.RunningTotal, n.Subtotal)
		return true
	})
	// Output:
	// ADD rootfs.tar / total=10 subtotal=30
	//   RUN apt-get install -y curl total=30 subtotal=30
	//     COPY v1 /app total=60 subtotal=30
	//     COPY v2 /app total=70 subtotal=40
}

func ExampleFormatSize() {
	fmt.Println(layer.FormatSize(7))
	fmt.Println(layer.FormatSize(3 * 1024))
	fmt.Println(layer.FormatSize(42 * 1024 * 1024))
	// Output:
	// 7b
	// 3.0kb
	// 42.0mb
}
