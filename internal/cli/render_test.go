package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/circlegraph/pkg/errors"
)

const testAtlas = `label,hemi,color
ROI1,L,1 0 0
ROI2,R,0 1 0
ROI3,L,0 0 1
ROI10,R,
`

// Rows and columns follow ROI1, ROI2, ROI3, ROI10.
const testMatrix = `0,0,0,0
0.5,0,0,0
0.2,0.4,0,0
0.9,0.1,0.35,0
`

func writeInputs(t *testing.T, atlasCSV string) (matrix, atlasPath, out string) {
	t.Helper()
	dir := t.TempDir()
	matrix = filepath.Join(dir, "mat.csv")
	atlasPath = filepath.Join(dir, "atlas.csv")
	out = filepath.Join(dir, "out")
	if err := os.WriteFile(matrix, []byte(testMatrix), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(atlasPath, []byte(atlasCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(out, 0o755); err != nil {
		t.Fatal(err)
	}
	return matrix, atlasPath, out
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv(cacheURLEnv, "")

	var logs, out bytes.Buffer
	root := New(&logs, LogInfo).RootCommand()
	root.SetOut(&out)
	root.SetErr(&logs)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func outputFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names
}

func TestRenderCommand(t *testing.T) {
	matrix, atlasPath, out := writeInputs(t, testAtlas)

	_, err := runCLI(t, "render",
		"--mat", matrix, "--info", atlasPath, "--out", out,
		"-t", "0.1,abc", "-t", "0.3",
		"-f", "svg,json",
		"-g", "Group", "-g", "A",
		"--size", "200")
	if err == nil || !strings.Contains(err.Error(), "1 of 3 thresholds failed") {
		t.Fatalf("err = %v, want one failed threshold", err)
	}

	want := []string{
		"Group_A_CIRCLE_GRAPH_THR0.1.json",
		"Group_A_CIRCLE_GRAPH_THR0.1.svg",
		"Group_A_CIRCLE_GRAPH_THR0.3.json",
		"Group_A_CIRCLE_GRAPH_THR0.3.svg",
	}
	if got := outputFiles(t, out); !slices.Equal(got, want) {
		t.Errorf("files = %v, want %v", got, want)
	}
}

func TestRenderCommandStructuralError(t *testing.T) {
	badAtlas := strings.Replace(testAtlas, "ROI3,L", "ROI3,X", 1)
	matrix, atlasPath, out := writeInputs(t, badAtlas)

	_, err := runCLI(t, "render", "--mat", matrix, "--info", atlasPath, "--out", out, "-t", "0.1,0.2", "-f", "svg")
	if !errors.Is(err, errors.ErrCodeUnknownHemisphere) {
		t.Fatalf("err = %v, want UNKNOWN_HEMISPHERE", err)
	}
	if got := outputFiles(t, out); len(got) != 0 {
		t.Errorf("structural error still wrote %v", got)
	}
}

func TestRenderCommandRequiresInputs(t *testing.T) {
	_, err := runCLI(t, "render", "-t", "0.1")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("err = %v, want INVALID_INPUT", err)
	}
}

func TestRenderConfigFile(t *testing.T) {
	matrix, atlasPath, out := writeInputs(t, testAtlas)
	cfg := filepath.Join(t.TempDir(), "run.toml")
	body := `matrix = "` + filepath.ToSlash(matrix) + `"
atlas = "` + filepath.ToSlash(atlasPath) + `"
out = "` + filepath.ToSlash(out) + `"
thresholds = ["0.2"]
formats = ["json"]
title = "Cfg"
theme = "light"
size = 200
`
	if err := os.WriteFile(cfg, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	// A flag the user set replaces the file value; the rest comes from the file.
	if _, err := runCLI(t, "render", "--config", cfg, "-t", "0.4", "--no-cache"); err != nil {
		t.Fatal(err)
	}
	want := []string{"Cfg_CIRCLE_GRAPH_THR0.4.json"}
	if got := outputFiles(t, out); !slices.Equal(got, want) {
		t.Errorf("files = %v, want %v", got, want)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.toml")
	os.WriteFile(good, []byte(`
matrix = "m.csv"
atlas = "a.csv"
thresholds = ["0.2", "-inf"]
direction = "greater"
start_angle = 0.0
boundaries = []
counter_clockwise = true
jobs = 2
`), 0o644)

	cfg, err := loadConfig(good)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Matrix != "m.csv" || cfg.Atlas != "a.csv" {
		t.Errorf("paths = %q, %q", cfg.Matrix, cfg.Atlas)
	}
	if !slices.Equal(cfg.Thresholds, []string{"0.2", "-inf"}) || cfg.Direction != "greater" {
		t.Errorf("thresholds = %v, direction = %q", cfg.Thresholds, cfg.Direction)
	}
	if cfg.StartAngle == nil || *cfg.StartAngle != 0 {
		t.Errorf("start_angle = %v, want explicit 0", cfg.StartAngle)
	}
	if cfg.Boundaries == nil || len(cfg.Boundaries) != 0 {
		t.Errorf("boundaries = %#v, want empty non-nil", cfg.Boundaries)
	}
	if !cfg.CounterClockwise || cfg.Concurrency != 2 {
		t.Errorf("cfg = %+v", cfg.Options)
	}

	bad := filepath.Join(dir, "bad.toml")
	os.WriteFile(bad, []byte("treshold = 0.2\n"), 0o644)
	if _, err := loadConfig(bad); err == nil || !strings.Contains(err.Error(), "treshold") {
		t.Errorf("unknown key: err = %v", err)
	}

	if _, err := loadConfig(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("missing file: want error")
	}
}

func TestLayoutCommandJSON(t *testing.T) {
	_, atlasPath, _ := writeInputs(t, testAtlas)

	out, err := runCLI(t, "layout", "--info", atlasPath, "--json", "--gap", "0")
	if err != nil {
		t.Fatal(err)
	}
	var doc layoutDoc
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if want := []string{"ROI1", "ROI3", "ROI10", "ROI2"}; !slices.Equal(doc.NodeOrder, want) {
		t.Errorf("node_order = %v, want %v", doc.NodeOrder, want)
	}
	if want := []string{"ROI1", "ROI2", "ROI3", "ROI10"}; !slices.Equal(doc.Labels, want) {
		t.Errorf("labels = %v, want %v", doc.Labels, want)
	}
	if doc.Step != 90 {
		t.Errorf("step = %v, want 90", doc.Step)
	}
	wantAngles := []float64{90, 0, -90, -180}
	for i, n := range doc.Nodes {
		if n.Angle != wantAngles[i] {
			t.Errorf("%s angle = %v, want %v", n.Label, n.Angle, wantAngles[i])
		}
	}
	if doc.Nodes[2].Label != "ROI10" || doc.Nodes[2].Color != "#ffffff" {
		t.Errorf("node 2 = %+v, want ROI10 with the white fallback", doc.Nodes[2])
	}
	if doc.Nodes[3].Color != "#00ff00" {
		t.Errorf("ROI2 color = %q", doc.Nodes[3].Color)
	}
}

func TestLayoutCommandChecksMatrix(t *testing.T) {
	_, atlasPath, _ := writeInputs(t, testAtlas)
	small := filepath.Join(t.TempDir(), "small.csv")
	os.WriteFile(small, []byte("0,0\n1,0\n"), 0o644)

	_, err := runCLI(t, "layout", "--info", atlasPath, "--mat", small)
	if !errors.Is(err, errors.ErrCodeShape) {
		t.Fatalf("err = %v, want INVALID_SHAPE", err)
	}
}
