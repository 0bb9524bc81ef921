package diff

import (
	"fmt"
	"strings"
)

// Algorithm names a line-matching strategy.
type Algorithm string

const (
	Myers   Algorithm = "myers"   // shortest edit script (default)
	Matcher Algorithm = "matcher" // difflib SequenceMatcher opcodes
)

// ParseAlgorithm validates a configured algorithm name. The empty string
// selects Myers.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(s))) {
	case "", Myers:
		return Myers, nil
	case Matcher:
		return Matcher, nil
	default:
		return "", fmt.Errorf("unknown diff algorithm %q (want %q or %q)", s, Myers, Matcher)
	}
}

// Hunk is one contiguous changed region. Starts are 1-based line numbers
// of the first line of the region on each side; when a side is empty its
// start is the position the region would occupy.
type Hunk struct {
	OldStart, OldLen int
	NewStart, NewLen int
	Removed          []string
	Added            []string
}

// Header returns the "@@ -start,len +start,len @@" line for h.
func (h Hunk) Header() string {
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldLen, h.NewStart, h.NewLen)
}

// Lines diffs a against b with the Myers algorithm.
func Lines(a, b []string) []Hunk {
	return LinesWith(Myers, a, b)
}

// LinesWith diffs a against b with the given algorithm. Every run of
// consecutive changed lines forms one hunk.
func LinesWith(alg Algorithm, a, b []string) []Hunk {
	if alg == Matcher {
		return matcherHunks(a, b)
	}
	return myersHunks(a, b)
}

// SplitLines splits data into lines on "\n" or "\r\n". A trailing newline
// does not produce an extra empty element; empty input yields no lines.
func SplitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	lines := strings.Split(string(data), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// FileDiff is the line diff of one path between two versions.
type FileDiff struct {
	Path     string
	OldLabel string // e.g. "a/path" or "staged"
	NewLabel string
	Hunks    []Hunk
}

// Bytes diffs two file contents.
func Bytes(alg Algorithm, path string, before, after []byte) *FileDiff {
	return &FileDiff{
		Path:     path,
		OldLabel: "a/" + path,
		NewLabel: "b/" + path,
		Hunks:    LinesWith(alg, SplitLines(before), SplitLines(after)),
	}
}

// Empty reports whether the two versions had no line differences.
func (d *FileDiff) Empty() bool {
	return d == nil || len(d.Hunks) == 0
}
