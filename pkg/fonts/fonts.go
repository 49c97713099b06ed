// Package fonts provides the typeface used for titles, captions, and node
// names.
//
// The Go Regular font ships with golang.org/x/image, so rendering never
// depends on fonts installed on the host. PNG output draws with a parsed
// face; SVG output embeds the same font as a base64 data URL so the file
// looks identical wherever it is opened.
package fonts

import (
	"encoding/base64"
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontFamily is the CSS font-family name of the embedded font.
const FontFamily = "Go"

// FallbackFontFamily lists fallbacks for viewers that ignore @font-face.
const FallbackFontFamily = `'Go', 'Helvetica Neue', Helvetica, Arial, sans-serif`

var (
	parsed    *opentype.Font
	parseErr  error
	parseOnce sync.Once

	ttfBase64     string
	ttfBase64Once sync.Once
)

// RegularTTF returns the raw TrueType data.
func RegularTTF() []byte {
	return goregular.TTF
}

// RegularBase64 returns the TrueType data as a base64 string.
// The result is cached after first computation.
func RegularBase64() string {
	ttfBase64Once.Do(func() {
		ttfBase64 = base64.StdEncoding.EncodeToString(goregular.TTF)
	})
	return ttfBase64
}

// Face returns a new face of the embedded font at size points (72 DPI, so
// one point is one pixel). Faces are not safe for concurrent use; callers
// drawing in parallel must each take their own.
func Face(size float64) (font.Face, error) {
	parseOnce.Do(func() {
		parsed, parseErr = opentype.Parse(goregular.TTF)
	})
	if parseErr != nil {
		return nil, fmt.Errorf("parse font: %w", parseErr)
	}
	if size <= 0 {
		size = 12
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("font face: %w", err)
	}
	return face, nil
}
