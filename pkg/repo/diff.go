package repo

import (
	"fmt"
	"sort"

	"github.com/odvcencio/minivcs/pkg/diff"
	"github.com/odvcencio/minivcs/pkg/object"
)

// DiffWorking diffs the working copy of path against its staged version, or
// its HEAD version when it is not staged. A working copy that is gone diffs
// as every line removed. Returns ErrPathNotFound when neither the index nor
// HEAD tracks path.
func (r *Repo) DiffWorking(path string) (*diff.FileDiff, error) {
	rel, err := r.repoRelPath(path)
	if err != nil {
		return nil, fmt.Errorf("diff %q: %w", path, err)
	}
	tracked, err := r.trackedFiles()
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	h, ok := tracked[rel]
	if !ok {
		return nil, fmt.Errorf("diff %q: %w", rel, ErrPathNotFound)
	}
	d, err := r.diffBlobWorking(rel, h)
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	return d, nil
}

// DiffWorkingAll returns a diff for every tracked path whose working copy
// differs from its staged or HEAD version, sorted by path.
func (r *Repo) DiffWorkingAll() ([]*diff.FileDiff, error) {
	tracked, err := r.trackedFiles()
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}

	var out []*diff.FileDiff
	for _, path := range sortedKeys(tracked) {
		h := tracked[path]
		if got, err := r.hashWorkingFile(path, false); err == nil && got == h {
			continue
		}
		d, err := r.diffBlobWorking(path, h)
		if err != nil {
			return nil, fmt.Errorf("diff: %w", err)
		}
		if !d.Empty() {
			out = append(out, d)
		}
	}
	return out, nil
}

// DiffCommitWorking diffs the version of path recorded in commit against the
// working copy.
func (r *Repo) DiffCommitWorking(path string, commit object.Hash) (*diff.FileDiff, error) {
	rel, err := r.repoRelPath(path)
	if err != nil {
		return nil, fmt.Errorf("diff %q: %w", path, err)
	}
	files, err := r.CommitFiles(commit)
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	h, ok := files[rel]
	if !ok {
		return nil, fmt.Errorf("diff %q in %s: %w", rel, commit.Short(), ErrPathNotFound)
	}
	d, err := r.diffBlobWorking(rel, h)
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	return d, nil
}

// DiffCommits compares the trees of two commits. Every path present in
// either tree with a different blob yields one FileDiff; a path on one side
// only diffs against empty content.
func (r *Repo) DiffCommits(from, to object.Hash) ([]*diff.FileDiff, error) {
	fromFiles, err := r.CommitFiles(from)
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	toFiles, err := r.CommitFiles(to)
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}

	paths := make(map[string]object.Hash, len(fromFiles)+len(toFiles))
	for p, h := range fromFiles {
		paths[p] = h
	}
	for p, h := range toFiles {
		paths[p] = h
	}

	var out []*diff.FileDiff
	for _, path := range sortedKeys(paths) {
		a, b := fromFiles[path], toFiles[path]
		if a == b {
			continue
		}
		before, err := r.blobOrEmpty(path, a)
		if err != nil {
			return nil, fmt.Errorf("diff: %w", err)
		}
		after, err := r.blobOrEmpty(path, b)
		if err != nil {
			return nil, fmt.Errorf("diff: %w", err)
		}
		d := diff.Bytes(r.diffAlgorithm, path, before, after)
		if !d.Empty() {
			out = append(out, d)
		}
	}
	return out, nil
}

// trackedFiles is HEAD's tree overlaid with the index.
func (r *Repo) trackedFiles() (map[string]object.Hash, error) {
	stg, err := r.ReadStaging()
	if err != nil {
		return nil, err
	}
	_, tracked, err := r.headFiles()
	if err != nil {
		return nil, err
	}
	for p, h := range stg.Entries {
		tracked[p] = h
	}
	return tracked, nil
}

func (r *Repo) diffBlobWorking(path string, base object.Hash) (*diff.FileDiff, error) {
	before, err := r.blobOrEmpty(path, base)
	if err != nil {
		return nil, err
	}
	after, _, err := r.readWorkingFile(path)
	if err != nil {
		return nil, err
	}
	return diff.Bytes(r.diffAlgorithm, path, before, after), nil
}

func (r *Repo) blobOrEmpty(path string, h object.Hash) ([]byte, error) {
	if h == "" {
		return nil, nil
	}
	blob, err := r.Store.ReadBlob(h)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, missing("blob", h, err))
	}
	return blob.Data, nil
}

func sortedKeys(m map[string]object.Hash) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
