package repo

import (
	"fmt"
	"sort"
	"strings"
)

// Reset unstages paths by restoring their index entries to the HEAD version.
//
//   - A path present in HEAD is staged with HEAD's blob.
//   - A path absent from HEAD is removed from the index.
//   - With no paths, every index entry is reset.
//
// A directory resets every entry beneath it. The working tree is not
// touched.
func (r *Repo) Reset(paths []string) ([]string, error) {
	stg, err := r.ReadStaging()
	if err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	_, headMap, err := r.headFiles()
	if err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}

	targets, err := r.resetTargets(paths, stg)
	if err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}

	var changed []string
	for _, p := range targets {
		h, inHead := headMap[p]
		if stg.Entries[p] == h {
			continue
		}
		if inHead {
			stg.Stage(p, h)
		} else {
			delete(stg.Entries, p)
		}
		changed = append(changed, p)
	}

	if err := r.WriteStaging(stg); err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	return changed, nil
}

// resetTargets expands paths against the index. A path that names no index
// entry is an error.
func (r *Repo) resetTargets(paths []string, stg *Staging) ([]string, error) {
	if len(paths) == 0 {
		return stg.Paths(), nil
	}

	targets := make(map[string]struct{})
	for _, raw := range paths {
		rel, err := r.repoRelPath(raw)
		if err != nil {
			return nil, err
		}
		if rel == "." {
			for p := range stg.Entries {
				targets[p] = struct{}{}
			}
			continue
		}

		matched := false
		if _, ok := stg.Entries[rel]; ok {
			targets[rel] = struct{}{}
			matched = true
		}
		prefix := rel + "/"
		for p := range stg.Entries {
			if strings.HasPrefix(p, prefix) {
				targets[p] = struct{}{}
				matched = true
			}
		}
		if !matched {
			return nil, fmt.Errorf("%q is not staged: %w", raw, ErrPathNotFound)
		}
	}

	out := make([]string, 0, len(targets))
	for p := range targets {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}
