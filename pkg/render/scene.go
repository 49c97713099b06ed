package render

import (
	"cmp"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/circlegraph/pkg/atlas"
	"github.com/matzehuels/circlegraph/pkg/circular"
	"github.com/matzehuels/circlegraph/pkg/connectivity"
	"github.com/matzehuels/circlegraph/pkg/errors"
	"github.com/matzehuels/circlegraph/pkg/sequence"
)

// DefaultSize is the default image edge length in pixels.
const DefaultSize = 3000

// Options configures NewScene.
type Options struct {
	Title     string
	Theme     Theme
	Size      int
	ShowNames bool
}

// Point is a position in image pixels, y pointing down.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeMark is one node wedge on the ring.
type NodeMark struct {
	Label      string           `json:"label"`
	Name       string           `json:"name,omitempty"`
	Hemisphere atlas.Hemisphere `json:"hemisphere"`
	Angle      float64          `json:"angle"`
	Span       float64          `json:"span"`
	Color      atlas.Color      `json:"-"`
	Anchor     Point            `json:"anchor"`
}

// EdgeStroke is one connection, drawn as a cubic Bezier curve.
type EdgeStroke struct {
	From   string      `json:"from"`
	To     string      `json:"to"`
	Weight float64     `json:"-"`
	Color  atlas.Color `json:"-"`
	Path   [4]Point    `json:"path"`
}

// Caption is a free-standing text mark such as a hemisphere letter.
type Caption struct {
	Text string `json:"text"`
	At   Point  `json:"at"`
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Scene is the complete geometry of one circle graph.
type Scene struct {
	Size      float64
	Center    Point
	Radius    float64 // inner radius of the node ring; edges end here
	RingWidth float64
	LineWidth float64

	Theme      Theme
	Colormap   Colormap
	Background atlas.Color
	Foreground atlas.Color

	Title     string
	TitleAt   Point
	TitleSize float64
	NameSize  float64

	Nodes    []NodeMark
	Edges    []EdgeStroke
	Captions []Caption

	// Min and Max are the edge value range the colormap spans. HasRange is
	// false when no finite edge survived the threshold.
	Min, Max float64
	HasRange bool
	Colorbar Rect
}

// NewScene lays out a circle graph. reduced is indexed by order.Labels and
// must be order.Len() square; asg must cover order.Nodes.
func NewScene(order sequence.Order, asg *circular.Assignment, md sequence.Lookup, reduced mat.Matrix, opts Options) (*Scene, error) {
	n := order.Len()
	if r, c := reduced.Dims(); r != n || c != n {
		return nil, errors.New(errors.ErrCodeShape, "matrix is %dx%d but there are %d nodes", r, c, n)
	}
	if asg == nil || asg.Len() != n {
		return nil, errors.New(errors.ErrCodeInvalidInput, "angle assignment does not match the node order")
	}
	if opts.Theme == "" {
		opts.Theme = ThemeDark
	}
	if opts.Size <= 0 {
		opts.Size = DefaultSize
	}

	size := float64(opts.Size)
	s := &Scene{
		Size:       size,
		Center:     Point{X: size / 2, Y: size * 0.52},
		Radius:     size * 0.36,
		RingWidth:  size * 0.025,
		LineWidth:  math.Max(1, size*0.0007),
		Theme:      opts.Theme,
		Colormap:   opts.Theme.colormap(),
		Background: opts.Theme.background(),
		Foreground: opts.Theme.foreground(),
		Title:      opts.Title,
		TitleAt:    Point{X: size / 2, Y: size * 0.06},
		TitleSize:  size * 0.022,
		NameSize:   math.Max(6, size*0.0045),
		Colorbar:   Rect{X: size * 0.04, Y: size * 0.42, W: size * 0.012, H: size * 0.2},
	}

	span := asg.Step * 0.9
	for _, label := range order.Nodes {
		angle, ok := asg.Angle(label)
		if !ok {
			return nil, errors.New(errors.ErrCodeUnknownLabel, "node %q is not in the layout", label)
		}
		node, ok := md.Lookup(label)
		if !ok {
			return nil, errors.New(errors.ErrCodeUnknownLabel, "no metadata for node %q", label)
		}
		m := NodeMark{
			Label:      label,
			Hemisphere: node.Hemisphere,
			Angle:      angle,
			Span:       span,
			Color:      node.Color,
			Anchor:     s.polar(angle, s.Radius+s.RingWidth+size*0.006),
		}
		if opts.ShowNames {
			m.Name = label
		}
		s.Nodes = append(s.Nodes, m)
	}

	edges := connectivity.Edges(reduced)
	slices.SortStableFunc(edges, func(a, b connectivity.Edge) int {
		return cmp.Compare(a.Weight, b.Weight)
	})
	s.Min, s.Max, s.HasRange = connectivity.ValueRange(edges)
	for _, e := range edges {
		from, to := order.Labels[e.Row], order.Labels[e.Col]
		a1, _ := asg.Angle(from)
		a2, _ := asg.Angle(to)
		s.Edges = append(s.Edges, EdgeStroke{
			From:   from,
			To:     to,
			Weight: e.Weight,
			Color:  s.Colormap.At(s.normalize(e.Weight)),
			Path: [4]Point{
				s.polar(a1, s.Radius),
				s.polar(a1, s.Radius*0.45),
				s.polar(a2, s.Radius*0.45),
				s.polar(a2, s.Radius),
			},
		})
	}

	for _, h := range []atlas.Hemisphere{atlas.Left, atlas.Right} {
		if at, ok := s.captionAt(h); ok {
			s.Captions = append(s.Captions, Caption{Text: string(h), At: at})
		}
	}
	return s, nil
}

// normalize maps w into [0,1] over the scene's value range. With no range or
// a single value every edge gets the top of the colormap.
func (s *Scene) normalize(w float64) float64 {
	if !s.HasRange || s.Max == s.Min {
		return 1
	}
	return clamp01((w - s.Min) / (s.Max - s.Min))
}

// polar converts an angle in degrees (counter-clockwise from east) and a
// radius into image pixels.
func (s *Scene) polar(deg, r float64) Point {
	rad := deg * math.Pi / 180
	return Point{
		X: s.Center.X + r*math.Cos(rad),
		Y: s.Center.Y - r*math.Sin(rad),
	}
}

// captionAt places a hemisphere letter outside the ring at the circular mean
// of that hemisphere's node angles.
func (s *Scene) captionAt(h atlas.Hemisphere) (Point, bool) {
	var sx, sy float64
	count := 0
	for _, n := range s.Nodes {
		if n.Hemisphere != h {
			continue
		}
		rad := n.Angle * math.Pi / 180
		sx += math.Cos(rad)
		sy += math.Sin(rad)
		count++
	}
	if count == 0 {
		return Point{}, false
	}
	mean := 0.0
	if math.Hypot(sx, sy) > 1e-9 {
		mean = math.Atan2(sy, sx) * 180 / math.Pi
	} else if h == atlas.Left {
		mean = 180
	}
	return s.polar(mean, s.Radius+s.RingWidth+s.Size*0.07), true
}
