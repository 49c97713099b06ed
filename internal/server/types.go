package server

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/circlegraph/pkg/atlas"
	"github.com/matzehuels/circlegraph/pkg/errors"
	"github.com/matzehuels/circlegraph/pkg/pipeline"
)

// RenderRequest is the body of POST /v1/render.
//
// Matrix rows and columns follow the natural order of the node labels, the
// same convention as the matrix CSV. A null cell is read as NaN and never
// produces an edge.
type RenderRequest struct {
	Nodes   []NodeSpec       `json:"nodes"`
	Matrix  [][]*float64     `json:"matrix"`
	Options pipeline.Options `json:"options"`
}

// NodeSpec is one node of a RenderRequest.
type NodeSpec struct {
	Label      string `json:"label"`
	Hemisphere string `json:"hemisphere"`
	// Color is "r g b" or "r g b a", in [0,1] or 0-255. Empty means white.
	Color string `json:"color,omitempty"`
}

// RenderResponse is the body of a successful POST /v1/render. Individual
// thresholds may still have failed; see ThresholdResponse.Error.
type RenderResponse struct {
	RunID      string              `json:"run_id"`
	Labels     []string            `json:"labels"`
	NodeOrder  []string            `json:"node_order"`
	Angles     map[string]float64  `json:"angles"`
	Boundaries []int               `json:"boundaries"`
	Thresholds []ThresholdResponse `json:"thresholds"`
	Failed     int                 `json:"failed"`
}

// ThresholdResponse is the outcome of one threshold token.
type ThresholdResponse struct {
	Token     string             `json:"token"`
	Name      string             `json:"name,omitempty"`
	Edges     int                `json:"edges"`
	CacheHit  bool               `json:"cache_hit"`
	Error     string             `json:"error,omitempty"`
	Code      string             `json:"code,omitempty"`
	Artifacts []ArtifactResponse `json:"artifacts,omitempty"`
}

// ArtifactResponse carries one rendered file; Data is base64 in JSON.
type ArtifactResponse struct {
	Format string `json:"format"`
	Size   int    `json:"size"`
	Data   []byte `json:"data"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// input converts the request into pipeline input.
func (req *RenderRequest) input() (pipeline.Input, error) {
	if len(req.Nodes) == 0 {
		return pipeline.Input{}, errors.New(errors.ErrCodeInvalidInput, "nodes must not be empty")
	}
	reg, err := atlas.NewRegistry()
	if err != nil {
		return pipeline.Input{}, err
	}
	for _, n := range req.Nodes {
		color := atlas.White
		if n.Color != "" {
			if color, err = atlas.ParseColor(n.Color); err != nil {
				return pipeline.Input{}, err
			}
		}
		node := atlas.Node{
			Label:      n.Label,
			Hemisphere: atlas.ParseHemisphere(n.Hemisphere),
			Color:      color,
		}
		if err := reg.Add(node); err != nil {
			return pipeline.Input{}, err
		}
	}

	m, err := denseMatrix(req.Matrix)
	if err != nil {
		return pipeline.Input{}, err
	}
	return pipeline.Input{Matrix: m, Registry: reg}, nil
}

func denseMatrix(rows [][]*float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errors.New(errors.ErrCodeShape, "matrix is empty")
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, errors.New(errors.ErrCodeShape, "matrix row %d has %d columns, expected %d", i+1, len(row), cols)
		}
		for _, v := range row {
			if v == nil {
				data = append(data, math.NaN())
				continue
			}
			data = append(data, *v)
		}
	}
	return mat.NewDense(len(rows), cols, data), nil
}

func newRenderResponse(res *pipeline.Result) RenderResponse {
	out := RenderResponse{
		RunID:      res.RunID,
		Labels:     res.Plan.Order.Labels,
		NodeOrder:  res.Plan.Order.Nodes,
		Angles:     res.Plan.Layout.Map(),
		Boundaries: res.Plan.Boundaries,
		Thresholds: make([]ThresholdResponse, len(res.Thresholds)),
		Failed:     res.Stats.Failed,
	}
	for i, t := range res.Thresholds {
		tr := ThresholdResponse{
			Token:    t.Token,
			Name:     t.Name,
			Edges:    t.Edges,
			CacheHit: t.CacheHit,
		}
		if t.Err != nil {
			tr.Error = errors.UserMessage(t.Err)
			tr.Code = string(errors.GetCode(t.Err))
		}
		for _, a := range t.Artifacts {
			tr.Artifacts = append(tr.Artifacts, ArtifactResponse{
				Format: string(a.Format),
				Size:   len(a.Data),
				Data:   a.Data,
			})
		}
		out.Thresholds[i] = tr
	}
	return out
}
