package repo

import (
	"fmt"
	"sort"

	"github.com/odvcencio/minivcs/pkg/object"
)

// VerifyReport summarizes an integrity check of the object store.
type VerifyReport struct {
	Objects     int           // objects on disk
	Reachable   int           // objects reachable from branch heads
	Corrupt     []object.Hash // stored bytes do not hash to their name
	Missing     []object.Hash // referenced by a reachable object but absent
	Unreachable []object.Hash // stored but not reachable from any branch
}

// OK reports whether no corruption or missing object was found.
// Unreachable objects are normal after merges and checkouts.
func (v *VerifyReport) OK() bool {
	return len(v.Corrupt) == 0 && len(v.Missing) == 0
}

// Verify re-hashes every stored object and walks the graph from all branch
// heads.
func (r *Repo) Verify() (*VerifyReport, error) {
	all, err := r.Store.List()
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	report := &VerifyReport{Objects: len(all)}
	corrupt := make(map[object.Hash]struct{})
	for _, h := range all {
		if err := r.Store.Verify(h); err != nil {
			r.log().Warn("verify: corrupt object", "hash", h, "error", err)
			report.Corrupt = append(report.Corrupt, h)
			corrupt[h] = struct{}{}
		}
	}

	branches, err := r.ListBranches()
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	roots := make([]object.Hash, 0, len(branches))
	for _, b := range branches {
		h, err := r.ResolveBranch(b)
		if err != nil {
			return nil, fmt.Errorf("verify: %w", err)
		}
		if h != "" && !isCorrupt(corrupt, h) {
			roots = append(roots, h)
		}
	}

	reach, err := r.Store.Walk(roots)
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	report.Reachable = len(reach.Found)
	report.Missing = reach.Missing
	for _, h := range all {
		if _, ok := reach.Found[h]; !ok {
			report.Unreachable = append(report.Unreachable, h)
		}
	}
	sort.Slice(report.Unreachable, func(i, j int) bool { return report.Unreachable[i] < report.Unreachable[j] })
	return report, nil
}

func isCorrupt(set map[object.Hash]struct{}, h object.Hash) bool {
	_, ok := set[h]
	return ok
}
