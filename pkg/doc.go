// Package pkg provides the core libraries for circlegraph.
//
// # Overview
//
// Circlegraph turns a square connectivity matrix and a table of node
// metadata into circle graphs: nodes sit on a ring grouped by hemisphere,
// and every connection that survives a threshold is drawn as a curved edge.
// The pkg directory is organized by stage:
//
//  1. Domain logic: [natsort], [atlas], [connectivity], [sequence], [circular]
//  2. Orchestration: [pipeline] runs all thresholds of a batch in parallel
//  3. Output: [render] draws a scene as PNG, SVG, PDF or JSON
//  4. Infrastructure: [io], [cache], [errors], [observability], [buildinfo]
//
// # Architecture
//
// The data flow of one batch:
//
//	matrix CSV + atlas CSV
//	         ↓
//	    [io] (load *mat.Dense and *atlas.Registry)
//	         ↓
//	    [sequence] + [circular] (node order and angles, once per batch)
//	         ↓
//	    [connectivity] (lower triangle + threshold, once per threshold)
//	         ↓
//	    [render] (scene → PNG/SVG/PDF/JSON)
//
// # Quick Start
//
//	m, _ := io.ImportMatrixCSV("group_a.csv")
//	reg, _ := io.ImportAtlasCSV("atlas.csv")
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Input{Matrix: m, Registry: reg}, pipeline.Options{
//	    Thresholds: []string{"0.2", "0.3"},
//	    Title:      "Group A",
//	    OutputDir:  "figures",
//	})
//
// Errors returned by Execute are structural (bad shape, duplicate labels,
// unknown hemispheres) and mean nothing was rendered. A failure of a single
// threshold is recorded on its [pipeline.ThresholdResult] instead.
package pkg
