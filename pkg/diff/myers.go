package diff

// span is a changed region in 0-based half-open coordinates: a[x0:x1] is
// replaced by b[y0:y1].
type span struct {
	x0, y0 int
	x1, y1 int
}

func (s span) hunk(a, b []string) Hunk {
	return Hunk{
		OldStart: s.x0 + 1,
		OldLen:   s.x1 - s.x0,
		NewStart: s.y0 + 1,
		NewLen:   s.y1 - s.y0,
		Removed:  lineRange(a, s.x0, s.x1),
		Added:    lineRange(b, s.y0, s.y1),
	}
}

func lineRange(lines []string, from, to int) []string {
	if from == to {
		return nil
	}
	return lines[from:to]
}

// myersHunks diffs a against b with Myers' O((N+M)D) greedy algorithm and
// returns the changed regions of a shortest edit script.
func myersHunks(a, b []string) []Hunk {
	frontiers := myersFrontiers(a, b)
	spans := myersSpans(frontiers, len(a), len(b))
	if len(spans) == 0 {
		return nil
	}

	hunks := make([]Hunk, 0, len(spans))
	for i := len(spans) - 1; i >= 0; i-- {
		hunks = append(hunks, spans[i].hunk(a, b))
	}
	return hunks
}

// myersFrontiers runs the forward search. frontiers[d] holds, for each
// diagonal k in [-d, d], the furthest x reachable with d edits at index
// k+d. The last row is the one that reaches (len(a), len(b)).
func myersFrontiers(a, b []string) [][]int {
	n, m := len(a), len(b)
	var frontiers [][]int
	for d := 0; ; d++ {
		row := make([]int, 2*d+1)
		for k := -d; k <= d; k += 2 {
			x := 0
			if d > 0 {
				prev := frontiers[d-1]
				if stepsDown(prev, d, k) {
					x = prev[k+1+d-1]
				} else {
					x = prev[k-1+d-1] + 1
				}
			}
			y := x - k
			for x < n && y < m && a[x] == b[y] {
				x, y = x+1, y+1
			}
			row[k+d] = x
			if x >= n && y >= m {
				return append(frontiers, row)
			}
		}
		frontiers = append(frontiers, row)
	}
}

// stepsDown reports whether diagonal k at distance d is best entered from
// diagonal k+1 (an insertion) rather than k-1 (a deletion). prev is the
// frontier for d-1.
func stepsDown(prev []int, d, k int) bool {
	if k == -d {
		return true
	}
	if k == d {
		return false
	}
	return prev[k-1+d-1] < prev[k+1+d-1]
}

// myersSpans walks the frontiers back from (n, m). Each edit either
// extends the span being built, when it ends where that span starts, or
// opens a new one; a snake between them separates spans. Spans come out
// last region first.
func myersSpans(frontiers [][]int, n, m int) []span {
	var spans []span
	x, y := n, m
	for d := len(frontiers) - 1; d > 0; d-- {
		k := x - y
		prev := frontiers[d-1]

		// The edit moves one step from (px, py) to (ex, ey); the rest of
		// the way to (x, y) is a snake.
		var px, py, ex, ey int
		if stepsDown(prev, d, k) {
			px = prev[k+1+d-1]
			py = px - (k + 1)
			ex, ey = px, py+1
		} else {
			px = prev[k-1+d-1]
			py = px - (k - 1)
			ex, ey = px+1, py
		}
		if last := len(spans) - 1; last >= 0 && spans[last].x0 == ex && spans[last].y0 == ey {
			spans[last].x0, spans[last].y0 = px, py
		} else {
			spans = append(spans, span{x0: px, y0: py, x1: ex, y1: ey})
		}
		x, y = px, py
	}
	return spans
}
