package render

import (
	"encoding/json"
	"math"
	"strconv"
)

type jsonOutput struct {
	Size     float64    `json:"size"`
	Center   Point      `json:"center"`
	Radius   float64    `json:"radius"`
	Theme    Theme      `json:"theme"`
	Colormap Colormap   `json:"colormap"`
	Title    string     `json:"title,omitempty"`
	Range    *jsonRange `json:"range,omitempty"`
	Nodes    []jsonNode `json:"nodes"`
	Edges    []jsonEdge `json:"edges"`
	Captions []Caption  `json:"captions,omitempty"`
}

type jsonRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type jsonNode struct {
	NodeMark
	Color string `json:"color"`
}

type jsonEdge struct {
	EdgeStroke
	Weight jsonFloat `json:"weight"`
	Color  string    `json:"color"`
}

// jsonFloat encodes infinities as the strings "+Inf" and "-Inf", which
// encoding/json rejects as numbers.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return json.Marshal(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return json.Marshal(v)
}

// RenderJSON writes the scene geometry as indented JSON, for consumers that
// draw the graph themselves.
func RenderJSON(s *Scene) ([]byte, error) {
	out := jsonOutput{
		Size:     s.Size,
		Center:   s.Center,
		Radius:   s.Radius,
		Theme:    s.Theme,
		Colormap: s.Colormap,
		Title:    s.Title,
		Nodes:    make([]jsonNode, len(s.Nodes)),
		Edges:    make([]jsonEdge, len(s.Edges)),
		Captions: s.Captions,
	}
	if s.HasRange {
		out.Range = &jsonRange{Min: s.Min, Max: s.Max}
	}
	for i, n := range s.Nodes {
		out.Nodes[i] = jsonNode{NodeMark: n, Color: n.Color.Hex()}
	}
	for i, e := range s.Edges {
		out.Edges[i] = jsonEdge{EdgeStroke: e, Weight: jsonFloat(e.Weight), Color: e.Color.Hex()}
	}
	return json.MarshalIndent(out, "", "  ")
}
