// Package circular assigns an angle on a circle to every node of a display order.
//
// Nodes are spaced by a fixed step, starting at a configurable angle and
// walking clockwise or counter-clockwise. Group boundaries insert an extra gap
// before the node at that position so that groups (hemispheres) visually
// separate. The step shrinks to make room for the gaps, so the arcs between
// consecutive nodes, including the arc that wraps from the last node back to
// the first, always add up to exactly 360 degrees:
//
//	step = (360 - len(boundaries)*gap) / n
//
// A boundary at 0 or at n marks the wrap seam between the last and the first
// node; it widens that arc without moving the first node off the start angle.
//
// Angles are computed directly from the node position rather than by
// accumulation, so identical inputs always produce bit-identical output.
// Angles are not normalized into [0, 360): with the default start of 90 and a
// clockwise walk they decrease through zero into negative values.
package circular
