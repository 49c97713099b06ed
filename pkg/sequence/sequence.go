// Package sequence computes the circular placement order of nodes.
//
// Two orders are produced from one label set:
//
//   - Labels: the natural-sorted label list. It indexes the connectivity
//     matrix and the node color list.
//   - Nodes: the display order around the circle. Left-hemisphere labels come
//     first in ascending natural order, followed by right-hemisphere labels in
//     descending natural order, so that walking the circle from the top runs
//     down the left side and back up the right side.
//
// Every label must carry a Left or Right hemisphere. A label with any other
// hemisphere is an error rather than being dropped from the circle, since a
// dropped node would still occupy a matrix row and misalign the drawing.
package sequence

import (
	"slices"

	"github.com/matzehuels/circlegraph/pkg/atlas"
	"github.com/matzehuels/circlegraph/pkg/errors"
	"github.com/matzehuels/circlegraph/pkg/natsort"
)

// Lookup resolves node metadata by label. *atlas.Registry implements it.
type Lookup interface {
	Lookup(label string) (atlas.Node, bool)
}

// Order is the result of Build.
type Order struct {
	// Labels is the natural-sorted label list (matrix index order).
	Labels []string `json:"labels"`
	// Nodes is the circular display order.
	Nodes []string `json:"node_order"`
	// Left and Right count the nodes of each hemisphere. Nodes[:Left] are
	// the left hemisphere.
	Left  int `json:"left"`
	Right int `json:"right"`

	index map[string]int
}

// Build orders labels using the hemisphere recorded in md.
func Build(labels []string, md Lookup) (Order, error) {
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		if seen[l] {
			return Order{}, errors.New(errors.ErrCodeDuplicateLabel, "duplicate node label %q", l)
		}
		seen[l] = true
	}

	sorted := natsort.Sorted(labels)
	hemi := make([]atlas.Hemisphere, len(sorted))
	for i, l := range sorted {
		n, ok := md.Lookup(l)
		if !ok {
			return Order{}, errors.New(errors.ErrCodeUnknownLabel, "no metadata for node %q", l)
		}
		if !n.Hemisphere.Valid() {
			return Order{}, errors.New(errors.ErrCodeUnknownHemisphere,
				"node %q has hemisphere %q (must be L or R)", l, n.Hemisphere)
		}
		hemi[i] = n.Hemisphere
	}

	nodes := make([]string, 0, len(sorted))
	for i, l := range sorted {
		if hemi[i] == atlas.Left {
			nodes = append(nodes, l)
		}
	}
	left := len(nodes)
	for i := len(sorted) - 1; i >= 0; i-- {
		if hemi[i] == atlas.Right {
			nodes = append(nodes, sorted[i])
		}
	}

	o := Order{
		Labels: sorted,
		Nodes:  nodes,
		Left:   left,
		Right:  len(nodes) - left,
		index:  make(map[string]int, len(sorted)),
	}
	for i, l := range sorted {
		o.index[l] = i
	}
	return o, nil
}

// Len returns the number of nodes.
func (o Order) Len() int { return len(o.Labels) }

// Index returns the matrix index of label.
func (o Order) Index(label string) (int, bool) {
	i, ok := o.index[label]
	return i, ok
}

// Boundaries returns the group boundaries of the hemisphere split as indices
// into Nodes: a seam before the first node and one where the right
// hemisphere starts. When one hemisphere is empty only the wrap seam remains.
func (o Order) Boundaries() []int {
	if o.Left == 0 || o.Right == 0 {
		return []int{0}
	}
	return []int{0, o.Left}
}

// LeftNodes returns the left-hemisphere part of the display order.
func (o Order) LeftNodes() []string { return slices.Clone(o.Nodes[:o.Left]) }

// RightNodes returns the right-hemisphere part of the display order.
func (o Order) RightNodes() []string { return slices.Clone(o.Nodes[o.Left:]) }
