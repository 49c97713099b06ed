// Package natsort orders strings the way people read them: embedded runs of
// ASCII digits compare as integers, everything else compares case-insensitively.
//
//	natsort.Sorted([]string{"ROI2", "ROI10", "ROI1"}) // [ROI1 ROI2 ROI10]
//
// A label is split into alternating text and digit fragments, always starting
// with a text fragment (possibly empty), so fragments of the same position in
// two keys always have the same kind. Keys compare element-wise; when one key
// is a prefix of the other the shorter key sorts first.
package natsort

import (
	"slices"
	"strings"
)

// Key is the precomputed sort key of a string. Even positions hold lower-cased
// text fragments, odd positions hold digit runs with leading zeros removed.
type Key []string

// NewKey splits s into its natural-order fragments.
func NewKey(s string) Key {
	key := make(Key, 0, 4)
	start := 0
	digits := false
	for i := 0; i < len(s); i++ {
		isDigit := s[i] >= '0' && s[i] <= '9'
		if isDigit == digits {
			continue
		}
		key = append(key, fragment(s[start:i], digits))
		start, digits = i, isDigit
	}
	key = append(key, fragment(s[start:], digits))
	if digits {
		key = append(key, "")
	}
	return key
}

func fragment(s string, digits bool) string {
	if !digits {
		return strings.ToLower(s)
	}
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

// Compare orders two keys. It returns -1, 0 or +1.
func (k Key) Compare(other Key) int {
	n := min(len(k), len(other))
	for i := 0; i < n; i++ {
		var c int
		if i%2 == 1 {
			c = compareDigits(k[i], other[i])
		} else {
			c = strings.Compare(k[i], other[i])
		}
		if c != 0 {
			return c
		}
	}
	switch {
	case len(k) < len(other):
		return -1
	case len(k) > len(other):
		return 1
	}
	return 0
}

// compareDigits compares two canonical digit runs numerically without
// converting them, so arbitrarily long runs never overflow.
func compareDigits(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// Compare orders a and b naturally. It returns -1, 0 or +1.
func Compare(a, b string) int {
	return NewKey(a).Compare(NewKey(b))
}

// Less reports whether a sorts before b.
func Less(a, b string) bool {
	return Compare(a, b) < 0
}

// Sort sorts labels in place. The sort is stable: labels whose keys are equal
// (for example "roi01" and "ROI1") keep their input order.
func Sort(labels []string) {
	keys := make(map[string]Key, len(labels))
	for _, l := range labels {
		if _, ok := keys[l]; !ok {
			keys[l] = NewKey(l)
		}
	}
	slices.SortStableFunc(labels, func(a, b string) int {
		return keys[a].Compare(keys[b])
	})
}

// Sorted returns a naturally sorted copy of labels.
func Sorted(labels []string) []string {
	out := slices.Clone(labels)
	Sort(out)
	return out
}
