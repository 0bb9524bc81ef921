package repo

import (
	"fmt"
	"sort"
	"time"

	"github.com/odvcencio/minivcs/pkg/object"
)

// FileMergeStatus describes how one path was resolved.
type FileMergeStatus string

const (
	MergeUnchanged FileMergeStatus = "unchanged" // same blob on both sides
	MergeOurs      FileMergeStatus = "ours"      // only on the current branch
	MergeTheirs    FileMergeStatus = "theirs"    // only on the incoming branch
	MergeConflict  FileMergeStatus = "conflict"  // differs; incoming version taken
)

// FileMergeReport records the merge outcome for a single path.
type FileMergeReport struct {
	Path   string
	Status FileMergeStatus
}

// MergeReport is the result of Merge.
type MergeReport struct {
	Commit    object.Hash
	Conflicts []string // sorted; the current branch's content was discarded
	Files     []FileMergeReport
}

// Merge combines the head of branch into the current branch.
//
// This is a two-way, last-writer-wins merge with no common ancestor. For
// every path in either head tree: equal blobs are kept, a path present on
// one side only is kept from that side, and a path whose blobs differ is a
// conflict resolved by taking the incoming branch's version. The current
// branch's content for conflicting paths is lost. No markers are written.
//
// The merge commit has parents [current head, incoming head]. The index is
// replaced with the merged mapping and every merged file is written to the
// working directory; files outside the merged tree are left in place.
func (r *Repo) Merge(branch, author string) (*MergeReport, error) {
	if err := ValidateBranchName(branch); err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	if branch == r.Branch {
		return nil, fmt.Errorf("merge %q: %w", branch, ErrMergeSelf)
	}
	theirs, err := r.ResolveBranch(branch)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	ours, err := r.Head()
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	if ours == "" {
		return nil, fmt.Errorf("merge: current branch %q: %w", r.Branch, ErrNoCommits)
	}
	if theirs == "" {
		return nil, fmt.Errorf("merge: branch %q: %w", branch, ErrNoCommits)
	}
	if ours == theirs {
		return nil, fmt.Errorf("merge %q: %w", branch, ErrAlreadyMerged)
	}

	oursFiles, err := r.CommitFiles(ours)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	theirsFiles, err := r.CommitFiles(theirs)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	merged, report := mergeTrees(oursFiles, theirsFiles)

	contents, err := r.readBlobs(merged)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	treeHash, err := r.writeTreeMap(merged)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	identity := r.Identity()
	if author == "" {
		author = identity
	}
	commitHash, err := r.Store.WriteCommit(&object.CommitObj{
		TreeHash:  treeHash,
		Parents:   []object.Hash{ours, theirs},
		Author:    author,
		Committer: identity,
		Timestamp: time.Now().Unix(),
		Message:   fmt.Sprintf("Merge branch '%s' into %s", branch, r.Branch),
	})
	if err != nil {
		return nil, fmt.Errorf("merge: write commit: %w", err)
	}
	if err := r.UpdateBranchCAS(r.Branch, commitHash, ours, "merge "+branch); err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	if err := r.WriteStaging(StagingFromMap(merged)); err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	for _, f := range report.Files {
		if err := r.writeWorkingFile(f.Path, contents[f.Path]); err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
	}

	for _, path := range report.Conflicts {
		r.log().Info("merge conflict resolved with incoming version", "path", path, "branch", branch)
	}
	report.Commit = commitHash
	return report, nil
}

// mergeTrees applies the last-writer-wins rule to two tree mappings.
func mergeTrees(ours, theirs map[string]object.Hash) (map[string]object.Hash, *MergeReport) {
	merged := make(map[string]object.Hash, len(ours)+len(theirs))
	report := &MergeReport{}

	for path, o := range ours {
		t, ok := theirs[path]
		switch {
		case !ok:
			merged[path] = o
			report.Files = append(report.Files, FileMergeReport{Path: path, Status: MergeOurs})
		case o == t:
			merged[path] = o
			report.Files = append(report.Files, FileMergeReport{Path: path, Status: MergeUnchanged})
		default:
			merged[path] = t
			report.Files = append(report.Files, FileMergeReport{Path: path, Status: MergeConflict})
			report.Conflicts = append(report.Conflicts, path)
		}
	}
	for path, t := range theirs {
		if _, ok := ours[path]; !ok {
			merged[path] = t
			report.Files = append(report.Files, FileMergeReport{Path: path, Status: MergeTheirs})
		}
	}

	sort.Slice(report.Files, func(i, j int) bool { return report.Files[i].Path < report.Files[j].Path })
	sort.Strings(report.Conflicts)
	return merged, report
}
