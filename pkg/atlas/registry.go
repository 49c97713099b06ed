package atlas

import (
	"slices"

	"github.com/matzehuels/circlegraph/pkg/errors"
)

// Registry maps node labels to their metadata. The zero value is not usable;
// create one with NewRegistry. A Registry is not safe for concurrent writes,
// but once built it may be read from any number of goroutines.
type Registry struct {
	nodes  map[string]Node
	labels []string
}

// NewRegistry builds a registry from nodes. It fails on the first invalid or
// duplicated label.
func NewRegistry(nodes ...Node) (*Registry, error) {
	r := &Registry{nodes: make(map[string]Node, len(nodes))}
	for _, n := range nodes {
		if err := r.Add(n); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add registers n. Labels must be unique.
func (r *Registry) Add(n Node) error {
	if err := errors.ValidateLabel(n.Label); err != nil {
		return err
	}
	if _, ok := r.nodes[n.Label]; ok {
		return errors.New(errors.ErrCodeDuplicateLabel, "duplicate node label %q", n.Label)
	}
	r.nodes[n.Label] = n
	r.labels = append(r.labels, n.Label)
	return nil
}

// Lookup returns the metadata registered for label.
func (r *Registry) Lookup(label string) (Node, bool) {
	n, ok := r.nodes[label]
	return n, ok
}

// Labels returns all labels in insertion order.
func (r *Registry) Labels() []string {
	return slices.Clone(r.labels)
}

// Nodes returns all nodes in insertion order.
func (r *Registry) Nodes() []Node {
	out := make([]Node, len(r.labels))
	for i, l := range r.labels {
		out[i] = r.nodes[l]
	}
	return out
}

// Len returns the number of registered nodes.
func (r *Registry) Len() int {
	return len(r.labels)
}

// Colors returns the colors of labels, index-aligned with the input.
func (r *Registry) Colors(labels []string) ([]Color, error) {
	out := make([]Color, len(labels))
	for i, l := range labels {
		n, ok := r.nodes[l]
		if !ok {
			return nil, errors.New(errors.ErrCodeUnknownLabel, "no metadata for node %q", l)
		}
		out[i] = n.Color
	}
	return out, nil
}
