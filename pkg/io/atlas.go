package io

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matzehuels/circlegraph/pkg/atlas"
	"github.com/matzehuels/circlegraph/pkg/errors"
)

// Atlas CSV column names.
const (
	ColLabel    = "label"
	ColHemi     = "hemi"
	ColColor    = "color"
	ColNetwork  = "network"
	ColNetColor = "net_color"
)

// ReadAtlasCSV decodes node metadata from a CSV table with a header row.
// Column order is free; header names are matched case-insensitively.
// ReadAtlasCSV does not close r.
func ReadAtlasCSV(r io.Reader) (*atlas.Registry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "atlas: missing header row")
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "atlas: read header")
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, req := range []string{ColLabel, ColHemi, ColColor} {
		if _, ok := cols[req]; !ok {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "atlas: missing column %q", req)
		}
	}

	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	reg, _ := atlas.NewRegistry()
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "atlas: read row")
		}
		if blank(rec) {
			continue
		}

		n := atlas.Node{
			Label:        field(rec, ColLabel),
			Hemisphere:   atlas.ParseHemisphere(field(rec, ColHemi)),
			Network:      field(rec, ColNetwork),
			NetworkColor: field(rec, ColNetColor),
			Color:        atlas.White,
		}
		if c := field(rec, ColColor); c != "" {
			if n.Color, err = atlas.ParseColor(c); err != nil {
				return nil, fmt.Errorf("atlas line %d: %w", line, err)
			}
		}
		if err := reg.Add(n); err != nil {
			return nil, fmt.Errorf("atlas line %d: %w", line, err)
		}
	}
	return reg, nil
}

// ImportAtlasCSV reads the atlas CSV file at path.
func ImportAtlasCSV(path string) (*atlas.Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "atlas file %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	reg, err := ReadAtlasCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}
