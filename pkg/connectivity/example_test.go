package connectivity_test

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/circlegraph/pkg/connectivity"
)

func ExampleReduce() {
	m := mat.NewDense(3, 3, []float64{
		0, 5, 3,
		5, 0, 7,
		3, 7, 0,
	})

	reduced, err := connectivity.Reduce(m, 4, connectivity.Less)
	if err != nil {
		panic(err)
	}
	for i := 0; i < 3; i++ {
		fmt.Println(mat.Row(nil, i, reduced))
	}
	fmt.Println(connectivity.Edges(reduced))
	// Output:
	// [0 0 0]
	// [5 0 0]
	// [0 7 0]
	// [{1 0 5} {2 1 7}]
}
