package flagprune

import "sort"

// ApplyEdits is the edit buffer (C2). It is a pure function of (source,
// edits): it sorts edits by offset descending, rejects any pair that
// overlaps, and splices each one in as a literal string replacement. Edits
// are never mutated or reused across calls.
func ApplyEdits(src string, edits []Edit) (string, error) {
	if len(edits) == 0 {
		return src, nil
	}

	for _, e := range edits {
		if e.Offset < 0 || e.Length < 0 || e.Offset+e.Length > len(src) {
			return "", &InvalidRangeError{Offset: e.Offset, Length: e.Length, SourceLength: len(src)}
		}
	}

	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset > sorted[j].Offset
	})

	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if overlaps(prev, cur) {
			return "", NewOverlappingEditError(prev, cur)
		}
	}

	out := src
	for _, e := range sorted {
		out = out[:e.Offset] + e.Replacement + out[e.End():]
	}

	return out, nil
}

// overlaps reports whether a and b's byte ranges intersect.
func overlaps(a, b Edit) bool {
	return a.Offset < b.End() && b.Offset < a.End()
}
