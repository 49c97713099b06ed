package natsort

import (
	"slices"
	"strings"
	"testing"
)

func TestSorted(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "embedded integers",
			in:   []string{"ROI2", "ROI10", "ROI1"},
			want: []string{"ROI1", "ROI2", "ROI10"},
		},
		{
			name: "case insensitive text",
			in:   []string{"b1", "A2", "a1"},
			want: []string{"a1", "A2", "b1"},
		},
		{
			name: "prefix sorts first",
			in:   []string{"ROI1a", "ROI1", "ROI"},
			want: []string{"ROI", "ROI1", "ROI1a"},
		},
		{
			name: "leading digits sort before text",
			in:   []string{"10x", "x", "9x"},
			want: []string{"9x", "10x", "x"},
		},
		{
			name: "multiple digit runs",
			in:   []string{"L_2_10", "L_2_9", "L_10_1"},
			want: []string{"L_2_9", "L_2_10", "L_10_1"},
		},
		{
			name: "digits beyond int64",
			in:   []string{"n100000000000000000000", "n99999999999999999999"},
			want: []string{"n99999999999999999999", "n100000000000000000000"},
		},
		{
			name: "empty",
			in:   nil,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sorted(tt.in)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Sorted(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSortedDoesNotMutateInput(t *testing.T) {
	in := []string{"c", "b", "a"}
	_ = Sorted(in)
	if !slices.Equal(in, []string{"c", "b", "a"}) {
		t.Errorf("input mutated: %v", in)
	}
}

func TestSortStableOnEqualKeys(t *testing.T) {
	in := []string{"roi01", "ROI1", "Roi001"}
	got := Sorted(in)
	if !slices.Equal(got, in) {
		t.Errorf("equal keys reordered: %v", got)
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"ROI2", "ROI10", -1},
		{"ROI10", "ROI2", 1},
		{"roi2", "ROI2", 0},
		{"a007", "a7", 0},
		{"a0", "a", 1},
		{"", "a", -1},
		{"", "", 0},
	}

	for _, tt := range tests {
		if got := Compare(tt.a, tt.b); got != tt.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
		if got := Less(tt.a, tt.b); got != (tt.want < 0) {
			t.Errorf("Less(%q, %q) = %v", tt.a, tt.b, got)
		}
	}
}

func TestNewKey(t *testing.T) {
	tests := []struct {
		in   string
		want Key
	}{
		{"ROI10", Key{"roi", "10", ""}},
		{"12ab", Key{"", "12", "ab"}},
		{"a", Key{"a"}},
		{"", Key{""}},
		{"x007y", Key{"x", "7", "y"}},
		{"x000", Key{"x", "0", ""}},
	}

	for _, tt := range tests {
		got := NewKey(tt.in)
		if !slices.Equal(got, tt.want) {
			t.Errorf("NewKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSortIsTotal(t *testing.T) {
	labels := []string{"R_Insula12", "L_Insula2", "R_Insula2", "L_Insula12", "L_Insula1", "r_insula1"}
	got := Sorted(labels)
	for i := 1; i < len(got); i++ {
		if Compare(got[i-1], got[i]) > 0 {
			t.Errorf("out of order at %d: %q > %q", i, got[i-1], got[i])
		}
	}
	if strings.Join(got, ",") != "L_Insula1,L_Insula2,L_Insula12,r_insula1,R_Insula2,R_Insula12" {
		t.Errorf("Sorted = %v", got)
	}
}
