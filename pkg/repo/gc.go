package repo

import (
	"fmt"
	"sort"

	"github.com/odvcencio/minivcs/pkg/object"
)

// GCSummary reports what a prune removed.
type GCSummary struct {
	Kept   int
	Pruned []object.Hash
}

// GC deletes objects that cannot be reached from any branch head, any
// reflog entry, or the index. Nothing is deleted when a reachable object is
// missing, since the graph may then be incomplete.
func (r *Repo) GC(dryRun bool) (*GCSummary, error) {
	roots, err := r.gcRoots()
	if err != nil {
		return nil, fmt.Errorf("gc: %w", err)
	}

	reach, err := r.Store.Walk(roots)
	if err != nil {
		return nil, fmt.Errorf("gc: %w", err)
	}
	if len(reach.Missing) > 0 {
		return nil, fmt.Errorf("gc: %d reachable object(s) missing, run verify: %w", len(reach.Missing), ErrMissingObject)
	}

	all, err := r.Store.List()
	if err != nil {
		return nil, fmt.Errorf("gc: %w", err)
	}
	summary := &GCSummary{}
	for _, h := range all {
		if _, ok := reach.Found[h]; ok {
			summary.Kept++
			continue
		}
		if !dryRun {
			if err := r.Store.Delete(h); err != nil {
				return summary, fmt.Errorf("gc: %w", err)
			}
		}
		summary.Pruned = append(summary.Pruned, h)
	}
	r.log().Debug("gc", "kept", summary.Kept, "pruned", len(summary.Pruned), "dry_run", dryRun)
	return summary, nil
}

func (r *Repo) gcRoots() ([]object.Hash, error) {
	set := make(map[object.Hash]struct{})

	branches, err := r.ListBranches()
	if err != nil {
		return nil, err
	}
	for _, b := range branches {
		h, err := r.ResolveBranch(b)
		if err != nil {
			return nil, err
		}
		set[h] = struct{}{}

		entries, err := r.ReadReflog(b, 0)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			set[e.OldHash] = struct{}{}
			set[e.NewHash] = struct{}{}
		}
	}

	stg, err := r.ReadStaging()
	if err != nil {
		return nil, err
	}
	for _, h := range stg.Entries {
		set[h] = struct{}{}
	}

	delete(set, "")
	roots := make([]object.Hash, 0, len(set))
	for h := range set {
		roots = append(roots, h)
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })
	return roots, nil
}
