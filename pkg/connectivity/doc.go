// Package connectivity reduces a symmetric connectivity matrix to the set of
// unique, thresholded connections that a circle diagram draws.
//
// An undirected connectivity matrix stores every edge twice (once above and
// once below the diagonal) plus a meaningless diagonal. [Reduce] keeps only
// the strictly-lower triangle and then zeroes the entries that fail a
// directional threshold test:
//
//	Less:    entries strictly less than the threshold are zeroed
//	Greater: entries strictly greater than the threshold are zeroed
//
// Entries exactly equal to the threshold are always kept. NaN entries never
// satisfy a comparison and are always zeroed.
//
// Matrices are gonum [mat.Dense] values. Reduce never mutates its input; each
// call returns a freshly allocated matrix, so reductions for different
// thresholds can run concurrently over one shared source matrix.
package connectivity
