package circular_test

import (
	"fmt"

	"github.com/matzehuels/circlegraph/pkg/circular"
)

func ExampleLayout() {
	a, err := circular.Layout([]string{"A", "B", "C"}, nil, circular.DefaultOptions())
	if err != nil {
		panic(err)
	}
	fmt.Println(a)
	// Output: A=90 B=-30 C=-150
}

func ExampleLayout_hemispheres() {
	order := []string{"L1", "L2", "R2", "R1"}
	opts := circular.DefaultOptions()
	opts.Gap = 20

	a, err := circular.Layout(order, []int{0, 2}, opts)
	if err != nil {
		panic(err)
	}
	fmt.Println(a.Step, a.Angles())
	fmt.Println(a.Arcs())
	// Output:
	// 80 [90 10 -90 -170]
	// [80 100 80 100]
}
