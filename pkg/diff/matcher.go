package diff

import "github.com/pmezard/go-difflib/difflib"

// matcherHunks diffs a against b with difflib's SequenceMatcher
// (Ratcliff/Obershelp matching blocks). The result is not guaranteed
// minimal but tends to keep long unique runs together. Adjacent non-equal
// opcodes are merged into one hunk.
func matcherHunks(a, b []string) []Hunk {
	var hunks []Hunk
	var cur *span
	for _, oc := range difflib.NewMatcher(a, b).GetOpCodes() {
		if oc.Tag == 'e' {
			if cur != nil {
				hunks = append(hunks, cur.hunk(a, b))
				cur = nil
			}
			continue
		}
		if cur == nil {
			cur = &span{x0: oc.I1, y0: oc.J1}
		}
		cur.x1, cur.y1 = oc.I2, oc.J2
	}
	if cur != nil {
		hunks = append(hunks, cur.hunk(a, b))
	}
	return hunks
}
