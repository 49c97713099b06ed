package io

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/circlegraph/pkg/errors"
)

// ReadMatrixCSV decodes a numeric CSV table from r into a dense matrix.
//
// The matrix need not be square here; shape checks against the node set
// happen in the pipeline. An input with no rows is an INVALID_SHAPE error.
// ReadMatrixCSV does not close r.
func ReadMatrixCSV(r io.Reader) (*mat.Dense, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	var (
		data []float64
		cols int
		rows int
	)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read matrix")
		}
		if blank(rec) {
			continue
		}
		if rows == 0 {
			cols = len(rec)
		} else if len(rec) != cols {
			return nil, errors.New(errors.ErrCodeShape,
				"matrix row %d has %d columns, expected %d", rows+1, len(rec), cols)
		}
		for j, cell := range rec {
			v, err := parseCell(cell)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidValue, err,
					"matrix cell (%d,%d) %q is not a number", rows+1, j+1, cell)
			}
			data = append(data, v)
		}
		rows++
	}
	if rows == 0 {
		return nil, errors.New(errors.ErrCodeShape, "matrix is empty")
	}
	return mat.NewDense(rows, cols, data), nil
}

// ImportMatrixCSV reads the matrix CSV file at path.
func ImportMatrixCSV(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "matrix file %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	m, err := ReadMatrixCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func parseCell(cell string) (float64, error) {
	s := strings.TrimSpace(cell)
	if s == "" || strings.EqualFold(s, "nan") {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
