// Package io reads the tabular inputs of a circle graph and writes its
// rendered artifacts.
//
// # Matrix CSV
//
// A connectivity matrix is a plain comma-separated table of numbers, one row
// per line, with no header:
//
//	1,0.1,0.2
//	0.1,1,0.3
//	0.2,0.3,1
//
// Blank lines are skipped. Cells reading "nan" (any case) or left empty load
// as NaN; the reducer treats them as absent connections. Any other cell that
// does not parse as a number is an INVALID_VALUE error naming its row and
// column. Rows of unequal length are an INVALID_SHAPE error. Use
// [ReadMatrixCSV] for any io.Reader or [ImportMatrixCSV] for a file path.
//
// # Atlas CSV
//
// Node metadata is a CSV table with a header row. The columns label, hemi, and
// color are required; network and net_color are optional and passed through:
//
//	label,hemi,color,network,net_color
//	ROI1,L,255 0 0,Visual,0 0 255
//	ROI2,R,0.2 0.4 0.6 1,Default,0 1 0
//
// Colors hold three or four space-separated components (see
// [atlas.ParseColor]). An empty color cell yields white. A label appearing
// twice is a DUPLICATE_LABEL error. Use [ReadAtlasCSV] or [ImportAtlasCSV].
//
// # Artifacts
//
// [WriteArtifact] stores a rendered image as <dir>/<name>.<format>. The
// output directory must already exist.
package io
