// Package atlas holds the per-node metadata of a region-of-interest set.
//
// An atlas maps every node label to the hemisphere it belongs to, the color
// used to draw it, and optional network grouping fields. The layout pipeline
// only reads this metadata; loading it from disk is the job of [io.ReadAtlasCSV].
//
// # Hemispheres
//
// [Hemisphere] values are normalized on the way in: "L", "left" and "LEFT"
// all become [Left]. Unrecognized values are kept verbatim so the node
// sequencer can report them with the offending label instead of silently
// dropping the node.
//
// # Colors
//
// [ParseColor] accepts three or four whitespace-separated components. Values
// in [0,1] are used as-is; tables that carry 0-255 channels are normalized.
//
// [io.ReadAtlasCSV]: https://pkg.go.dev/github.com/matzehuels/circlegraph/pkg/io#ReadAtlasCSV
package atlas
