package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"

	"github.com/matzehuels/circlegraph/pkg/atlas"
	"github.com/matzehuels/circlegraph/pkg/fonts"
)

// colorbarStops is the number of gradient stops sampled from the colormap.
const colorbarStops = 11

// RenderSVG writes the scene as a standalone SVG document.
func RenderSVG(s *Scene) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		s.Size, s.Size, s.Size, s.Size)

	renderDefs(&buf, s)
	fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", s.Background.Hex())

	buf.WriteString(`  <g id="edges" fill="none" stroke-linecap="round">` + "\n")
	for _, e := range s.Edges {
		p := e.Path
		fmt.Fprintf(&buf, `    <path d="M%.2f,%.2f C%.2f,%.2f %.2f,%.2f %.2f,%.2f" stroke="%s" stroke-opacity="%s" stroke-width="%.2f"><title>%s - %s: %s</title></path>`+"\n",
			p[0].X, p[0].Y, p[1].X, p[1].Y, p[2].X, p[2].Y, p[3].X, p[3].Y,
			e.Color.Hex(), opacity(e.Color), s.LineWidth,
			escapeXML(e.From), escapeXML(e.To), strconv.FormatFloat(e.Weight, 'g', -1, 64))
	}
	buf.WriteString("  </g>\n")

	buf.WriteString(`  <g id="nodes">` + "\n")
	for _, n := range s.Nodes {
		fmt.Fprintf(&buf, `    <path d="%s" fill="%s" fill-opacity="%s" stroke="%s" stroke-width="%.2f"><title>%s</title></path>`+"\n",
			wedgePath(s, n), n.Color.Hex(), opacity(n.Color), black.Hex(), s.LineWidth/3, escapeXML(n.Label))
	}
	buf.WriteString("  </g>\n")

	renderNames(&buf, s)
	renderText(&buf, s)
	renderColorbar(&buf, s)

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderDefs(buf *bytes.Buffer, s *Scene) {
	buf.WriteString("  <defs>\n")
	fmt.Fprintf(buf, "    <style>@font-face { font-family: '%s'; src: url(data:font/ttf;base64,%s) format('truetype'); } text { font-family: %s; }</style>\n",
		fonts.FontFamily, fonts.RegularBase64(), fonts.FallbackFontFamily)
	buf.WriteString(`    <linearGradient id="colorbar" x1="0" y1="1" x2="0" y2="0">` + "\n")
	for i := 0; i < colorbarStops; i++ {
		x := float64(i) / (colorbarStops - 1)
		fmt.Fprintf(buf, `      <stop offset="%.2f" stop-color="%s"/>`+"\n", x, s.Colormap.At(x).Hex())
	}
	buf.WriteString("    </linearGradient>\n")
	buf.WriteString("  </defs>\n")
}

// wedgePath outlines the annulus sector of a node. Angles grow
// counter-clockwise, which is SVG sweep-flag 0 in a y-down frame.
func wedgePath(s *Scene, n NodeMark) string {
	a1, a2 := n.Angle-n.Span/2, n.Angle+n.Span/2
	rIn, rOut := s.Radius, s.Radius+s.RingWidth
	large := 0
	if n.Span > 180 {
		large = 1
	}
	o1, o2 := s.polar(a1, rOut), s.polar(a2, rOut)
	i2, i1 := s.polar(a2, rIn), s.polar(a1, rIn)
	return fmt.Sprintf("M%.2f,%.2f A%.2f,%.2f 0 %d 0 %.2f,%.2f L%.2f,%.2f A%.2f,%.2f 0 %d 1 %.2f,%.2f Z",
		o1.X, o1.Y, rOut, rOut, large, o2.X, o2.Y,
		i2.X, i2.Y, rIn, rIn, large, i1.X, i1.Y)
}

func renderNames(buf *bytes.Buffer, s *Scene) {
	var open bool
	for _, n := range s.Nodes {
		if n.Name == "" {
			continue
		}
		if !open {
			fmt.Fprintf(buf, `  <g id="names" fill="%s" font-size="%.1f">`+"\n", s.Foreground.Hex(), s.NameSize)
			open = true
		}
		rot, anchor := nameRotation(n.Angle)
		fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" text-anchor="%s" dominant-baseline="middle" transform="rotate(%.2f %.2f %.2f)">%s</text>`+"\n",
			n.Anchor.X, n.Anchor.Y, anchor, rot, n.Anchor.X, n.Anchor.Y, escapeXML(n.Name))
	}
	if open {
		buf.WriteString("  </g>\n")
	}
}

// nameRotation returns the clockwise SVG rotation for a radial label at angle
// and its text anchor. Labels on the left half are flipped to stay upright.
func nameRotation(angle float64) (float64, string) {
	rot := -angle
	if math.Cos(angle*math.Pi/180) < 0 {
		return rot + 180, "end"
	}
	return rot, "start"
}

func renderText(buf *bytes.Buffer, s *Scene) {
	fg := s.Foreground.Hex()
	if s.Title != "" {
		fmt.Fprintf(buf, `  <text x="%.2f" y="%.2f" fill="%s" font-size="%.1f" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
			s.TitleAt.X, s.TitleAt.Y, fg, s.TitleSize, escapeXML(s.Title))
	}
	for _, c := range s.Captions {
		fmt.Fprintf(buf, `  <text x="%.2f" y="%.2f" fill="%s" font-size="%.1f" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
			c.At.X, c.At.Y, fg, s.TitleSize, escapeXML(c.Text))
	}
}

func renderColorbar(buf *bytes.Buffer, s *Scene) {
	if !s.HasRange {
		return
	}
	r := s.Colorbar
	fg := s.Foreground.Hex()
	fmt.Fprintf(buf, `  <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="url(#colorbar)" stroke="%s" stroke-width="%.2f"/>`+"\n",
		r.X, r.Y, r.W, r.H, fg, s.LineWidth/2)
	size := s.TitleSize * 0.6
	fmt.Fprintf(buf, `  <text x="%.2f" y="%.2f" fill="%s" font-size="%.1f" dominant-baseline="middle">%s</text>`+"\n",
		r.X+r.W*1.5, r.Y, fg, size, formatTick(s.Max))
	fmt.Fprintf(buf, `  <text x="%.2f" y="%.2f" fill="%s" font-size="%.1f" dominant-baseline="middle">%s</text>`+"\n",
		r.X+r.W*1.5, r.Y+r.H, fg, size, formatTick(s.Min))
}

func formatTick(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}

func opacity(c atlas.Color) string {
	return strconv.FormatFloat(clamp01(c.A), 'f', 3, 64)
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
