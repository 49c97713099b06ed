package cli

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"
)

// captureStdout returns what fn printed to stdout.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()
	w.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

func TestPrintStats(t *testing.T) {
	tests := []struct {
		cached bool
		want   string
	}{
		{false, "3 nodes · 2 edges · fresh"},
		{true, "3 nodes · 2 edges · cached"},
	}
	for _, tt := range tests {
		got := captureStdout(t, func() { printStats(3, 2, tt.cached) })
		if !strings.Contains(got, tt.want) {
			t.Errorf("printStats(cached=%v) = %q, want %q", tt.cached, got, tt.want)
		}
	}
}

func TestStatusLines(t *testing.T) {
	out := captureStdout(t, func() {
		printSuccess("rendered %s", "Group_A")
		printError("bad %d", 1)
		printWarning("careful")
		printInfo("empty")
		printFile("out/a.png")
		printKeyValue("Nodes", "4")
	})
	for _, want := range []string{"✓ rendered Group_A", "✗ bad 1", "! careful", "› empty", "→ out/a.png", "Nodes"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q is missing %q", out, want)
		}
	}
}
