package repo

import (
	"fmt"
	"sort"

	"github.com/odvcencio/minivcs/pkg/object"
)

// StatusReport groups working tree paths by state. Each list is sorted.
type StatusReport struct {
	Staged    []string // index entries that differ from HEAD
	Modified  []string // tracked files whose working copy differs or is gone
	Untracked []string // working files in neither the index nor HEAD
}

// Clean reports whether there is nothing to show.
func (s *StatusReport) Clean() bool {
	return len(s.Staged) == 0 && len(s.Modified) == 0 && len(s.Untracked) == 0
}

// Status compares three states of the repository:
//
//   - index vs HEAD tree: Staged
//   - working copy vs the staged blob, or the HEAD blob for paths that are
//     not staged: Modified (missing working copies and paths replaced by a
//     symlink included)
//   - working files tracked by neither and not matched by .vcsignore:
//     Untracked
func (r *Repo) Status() (*StatusReport, error) {
	stg, err := r.ReadStaging()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	_, headMap, err := r.headFiles()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	work, err := r.workingFiles()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	ignore, err := r.LoadIgnore()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	report := &StatusReport{}
	for path, h := range stg.Entries {
		if headMap[path] != h {
			report.Staged = append(report.Staged, path)
		}
	}

	tracked := make(map[string]object.Hash, len(headMap)+stg.Len())
	for path, h := range headMap {
		tracked[path] = h
	}
	for path, h := range stg.Entries {
		tracked[path] = h
	}
	for path, want := range tracked {
		if mode, ok := work[path]; !ok || !mode.IsRegular() {
			report.Modified = append(report.Modified, path)
			continue
		}
		got, err := r.hashWorkingFile(path, false)
		if err != nil {
			return nil, fmt.Errorf("status: %w", err)
		}
		if got != want {
			report.Modified = append(report.Modified, path)
		}
	}

	for path := range work {
		if _, ok := tracked[path]; !ok && !ignore.IsIgnored(path) {
			report.Untracked = append(report.Untracked, path)
		}
	}

	sort.Strings(report.Staged)
	sort.Strings(report.Modified)
	sort.Strings(report.Untracked)
	return report, nil
}
