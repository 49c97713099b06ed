package render

import (
	"context"
	"strings"

	"github.com/matzehuels/circlegraph/pkg/errors"
)

// Format is an output file format.
type Format string

const (
	FormatPNG  Format = "png"
	FormatSVG  Format = "svg"
	FormatPDF  Format = "pdf"
	FormatJSON Format = "json"
)

// Formats lists the supported formats.
var Formats = []Format{FormatPNG, FormatSVG, FormatPDF, FormatJSON}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatPNG, FormatSVG, FormatPDF, FormatJSON:
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported output format %q (want png, svg, pdf or json)", s)
}

// Render writes the scene in format f.
func Render(ctx context.Context, s *Scene, f Format) ([]byte, error) {
	switch f {
	case FormatPNG:
		return RenderPNG(s)
	case FormatSVG:
		return RenderSVG(s), nil
	case FormatPDF:
		return RenderPDF(ctx, s)
	case FormatJSON:
		return RenderJSON(s)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported output format %q", f)
}
