// Package render draws circle graphs.
//
// # Overview
//
// Rendering is split into a pure geometry step and format writers:
//
//   - [NewScene] turns a node order, its angle assignment, node metadata, and
//     a reduced connectivity matrix into a [Scene]: node wedges, edge curves,
//     edge colors, captions, and a colorbar, all in pixel coordinates.
//   - [RenderSVG], [RenderPNG], [RenderPDF], and [RenderJSON] write a Scene.
//
// Keeping the geometry in one place means every format shows the same
// picture, and tests can check positions without decoding images.
//
// # Themes
//
// The dark theme draws on black with the "hot" colormap; the light theme
// draws on white with "hot_r". Edge colors are scaled over the value range of
// the edges actually drawn, so every threshold uses the full colormap.
//
// # Format Conversion
//
// PNG is rasterised natively with github.com/fogleman/gg. PDF goes through
// the SVG writer and the external rsvg-convert tool (from librsvg):
//
//	svg := render.RenderSVG(scene)
//	pdf, err := render.ToPDF(ctx, svg)
package render
