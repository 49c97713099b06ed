package render

import (
	"bytes"
	"fmt"
	"math"

	"github.com/fogleman/gg"

	"github.com/matzehuels/circlegraph/pkg/atlas"
	"github.com/matzehuels/circlegraph/pkg/fonts"
)

// RenderPNG rasterises the scene. Each call uses its own drawing context and
// font faces, so scenes may be rendered concurrently.
func RenderPNG(s *Scene) ([]byte, error) {
	size := int(math.Round(s.Size))
	dc := gg.NewContext(size, size)
	setColor(dc, s.Background)
	dc.Clear()

	dc.SetLineWidth(s.LineWidth)
	dc.SetLineCapRound()
	for _, e := range s.Edges {
		p := e.Path
		setColor(dc, e.Color)
		dc.MoveTo(p[0].X, p[0].Y)
		dc.CubicTo(p[1].X, p[1].Y, p[2].X, p[2].Y, p[3].X, p[3].Y)
		dc.Stroke()
	}

	rIn, rOut := s.Radius, s.Radius+s.RingWidth
	for _, n := range s.Nodes {
		// gg measures angles clockwise in a y-down frame, hence the negation.
		a1 := gg.Radians(-(n.Angle + n.Span/2))
		a2 := gg.Radians(-(n.Angle - n.Span/2))
		dc.NewSubPath()
		dc.DrawArc(s.Center.X, s.Center.Y, rOut, a1, a2)
		dc.DrawArc(s.Center.X, s.Center.Y, rIn, a2, a1)
		dc.ClosePath()
		setColor(dc, n.Color)
		dc.FillPreserve()
		setColor(dc, black)
		dc.SetLineWidth(s.LineWidth / 3)
		dc.Stroke()
	}
	dc.SetLineWidth(s.LineWidth)

	if err := drawNames(dc, s); err != nil {
		return nil, err
	}
	if err := drawText(dc, s); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawNames(dc *gg.Context, s *Scene) error {
	var loaded bool
	for _, n := range s.Nodes {
		if n.Name == "" {
			continue
		}
		if !loaded {
			face, err := fonts.Face(s.NameSize)
			if err != nil {
				return err
			}
			defer face.Close()
			dc.SetFontFace(face)
			setColor(dc, s.Foreground)
			loaded = true
		}
		rot, anchor := nameRotation(n.Angle)
		ax := 0.0
		if anchor == "end" {
			ax = 1
		}
		dc.Push()
		dc.RotateAbout(gg.Radians(rot), n.Anchor.X, n.Anchor.Y)
		dc.DrawStringAnchored(n.Name, n.Anchor.X, n.Anchor.Y, ax, 0.5)
		dc.Pop()
	}
	return nil
}

func drawText(dc *gg.Context, s *Scene) error {
	face, err := fonts.Face(s.TitleSize)
	if err != nil {
		return err
	}
	defer face.Close()
	dc.SetFontFace(face)
	setColor(dc, s.Foreground)

	if s.Title != "" {
		dc.DrawStringAnchored(s.Title, s.TitleAt.X, s.TitleAt.Y, 0.5, 0.5)
	}
	for _, c := range s.Captions {
		dc.DrawStringAnchored(c.Text, c.At.X, c.At.Y, 0.5, 0.5)
	}

	if !s.HasRange {
		return nil
	}
	r := s.Colorbar
	rows := int(math.Max(1, math.Round(r.H)))
	for i := 0; i < rows; i++ {
		setColor(dc, s.Colormap.At(1-float64(i)/float64(rows)))
		dc.DrawRectangle(r.X, r.Y+float64(i)*r.H/float64(rows), r.W, r.H/float64(rows)+1)
		dc.Fill()
	}
	setColor(dc, s.Foreground)
	dc.SetLineWidth(s.LineWidth / 2)
	dc.DrawRectangle(r.X, r.Y, r.W, r.H)
	dc.Stroke()

	tick, err := fonts.Face(s.TitleSize * 0.6)
	if err != nil {
		return err
	}
	defer tick.Close()
	dc.SetFontFace(tick)
	dc.DrawStringAnchored(formatTick(s.Max), r.X+r.W*1.5, r.Y, 0, 0.5)
	dc.DrawStringAnchored(formatTick(s.Min), r.X+r.W*1.5, r.Y+r.H, 0, 0.5)
	return nil
}

func setColor(dc *gg.Context, c atlas.Color) {
	dc.SetRGBA(c.R, c.G, c.B, c.A)
}
