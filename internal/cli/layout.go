package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/circlegraph/pkg/errors"
	pkgio "github.com/matzehuels/circlegraph/pkg/io"
	"github.com/matzehuels/circlegraph/pkg/pipeline"
)

// layoutDoc is the --json output of the layout command.
type layoutDoc struct {
	Labels     []string     `json:"labels"`
	NodeOrder  []string     `json:"node_order"`
	Boundaries []int        `json:"boundaries"`
	Step       float64      `json:"step"`
	Nodes      []layoutNode `json:"nodes"`
}

type layoutNode struct {
	Label      string  `json:"label"`
	Hemisphere string  `json:"hemisphere"`
	Angle      float64 `json:"angle"`
	Color      string  `json:"color"`
}

// layoutCommand creates the layout command, which prints the circular node
// order and angles without rendering anything.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		atlasPath  string
		matrixPath string
		asJSON     bool
		start      float64
		gap        float64
		split      []int
		noSplit    bool
		ccw        bool
		between    bool
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the node order and angles of the circle",
		Long: `Print the node order and angles of the circle.

Left-hemisphere nodes come first in natural order, followed by the
right-hemisphere nodes in reverse natural order. When --mat is given the
matrix is checked against the node list as well.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.Options{CounterClockwise: ccw, StartBetween: between}
			if cmd.Flags().Changed("start") {
				opts.StartAngle = pipeline.Float(start)
			}
			if cmd.Flags().Changed("gap") {
				opts.Gap = pipeline.Float(gap)
			}
			if cmd.Flags().Changed("split") {
				opts.Boundaries = split
			}
			if noSplit {
				opts.Boundaries = []int{}
			}
			return c.runLayout(cmd.Context(), cmd.OutOrStdout(), atlasPath, matrixPath, opts, asJSON)
		},
	}

	cmd.Flags().StringVar(&atlasPath, "info", "", "node metadata CSV (label, hemisphere, color)")
	cmd.Flags().StringVar(&matrixPath, "mat", "", "connectivity matrix CSV to check against the nodes")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	cmd.Flags().Float64Var(&start, "start", pipeline.DefaultStartAngle, "angle of the first node in degrees")
	cmd.Flags().Float64Var(&gap, "gap", pipeline.DefaultGap, "extra gap at each group boundary in degrees")
	cmd.Flags().IntSliceVar(&split, "split", nil, "group boundaries as node indices (default: hemisphere split)")
	cmd.Flags().BoolVar(&noSplit, "no-split", false, "place all nodes evenly without group gaps")
	cmd.Flags().BoolVar(&ccw, "counter-clockwise", false, "place nodes counter-clockwise")
	cmd.Flags().BoolVar(&between, "between", false, "center the start angle between the first two nodes")
	_ = cmd.MarkFlagRequired("info")
	cmd.MarkFlagsMutuallyExclusive("split", "no-split")

	return cmd
}

// runLayout loads the metadata, computes the plan and prints it.
func (c *CLI) runLayout(ctx context.Context, w io.Writer, atlasPath, matrixPath string, opts pipeline.Options, asJSON bool) error {
	reg, err := pkgio.ImportAtlasCSV(atlasPath)
	if err != nil {
		return err
	}
	if reg.Len() == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "%s lists no nodes", atlasPath)
	}

	var m *mat.Dense
	if matrixPath != "" {
		if m, err = pkgio.ImportMatrixCSV(matrixPath); err != nil {
			return err
		}
	} else {
		m = mat.NewDense(reg.Len(), reg.Len(), nil)
	}

	opts.Logger = c.Logger
	runner := pipeline.NewRunner(nil, nil, c.Logger)
	plan, err := runner.Prepare(ctx, pipeline.Input{Matrix: m, Registry: reg}, opts)
	if err != nil {
		return err
	}

	doc := layoutDoc{
		Labels:     plan.Order.Labels,
		NodeOrder:  plan.Order.Nodes,
		Boundaries: plan.Boundaries,
		Step:       plan.Layout.Step,
	}
	angles := plan.Layout.Angles()
	for i, label := range plan.Order.Nodes {
		node, _ := reg.Lookup(label)
		doc.Nodes = append(doc.Nodes, layoutNode{
			Label:      label,
			Hemisphere: node.Hemisphere.String(),
			Angle:      angles[i],
			Color:      node.Color.Hex(),
		})
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}
	printLayout(w, doc, plan.Order.Left, plan.Order.Right)
	return nil
}

// printLayout prints one row per node in display order, with a swatch of
// the node color.
func printLayout(w io.Writer, doc layoutDoc, left, right int) {
	fmt.Fprintln(w, StyleTitle.Render("Circular layout"))
	fprintKeyValue(w, "Nodes", fmt.Sprintf("%d (%d left, %d right)", len(doc.Nodes), left, right))
	fprintKeyValue(w, "Step", strconv.FormatFloat(doc.Step, 'f', 4, 64)+"°")
	fprintKeyValue(w, "Boundaries", fmt.Sprint(doc.Boundaries))
	fmt.Fprintln(w)

	idx := lipgloss.NewStyle().Foreground(colorDim).Width(5).Align(lipgloss.Right)
	lbl := lipgloss.NewStyle().Foreground(colorWhite).Width(16).PaddingLeft(2)
	hemi := lipgloss.NewStyle().Foreground(colorGray).Width(3)
	ang := StyleNumber.Width(10).Align(lipgloss.Right)
	for i, n := range doc.Nodes {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(n.Color)).Render("●")
		fmt.Fprintln(w, idx.Render(strconv.Itoa(i))+lbl.Render(n.Label)+hemi.Render(n.Hemisphere)+
			ang.Render(strconv.FormatFloat(n.Angle, 'f', 2, 64))+"  "+swatch)
	}
}
