package repo

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/odvcencio/minivcs/pkg/object"
)

// checkoutPlan is everything CheckoutCommit will change, computed before the
// working directory is touched.
type checkoutPlan struct {
	commit   object.Hash
	files    map[string]object.Hash // target tree
	contents map[string][]byte      // blob data for every target path
	writes   []string               // paths whose working copy differs
	removes  []string               // working files absent from the target
}

// CheckoutCommit replaces the working directory with the tree of commit.
//
// DESTRUCTIVE: afterwards the working directory holds exactly the tree's
// files. Every other file and directory outside .vcs/ is removed, including
// untracked work. The index is set to the tree and the current branch is
// moved to commit.
//
// All blobs are read before the first change, so a missing object aborts
// with the working directory untouched. Files that already match are left
// alone.
func (r *Repo) CheckoutCommit(commit object.Hash) error {
	plan, err := r.planCheckout(commit)
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	if err := r.applyCheckout(plan); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	if err := r.UpdateBranch(r.Branch, commit, "checkout: moving to "+string(commit)); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	return nil
}

func (r *Repo) planCheckout(commit object.Hash) (*checkoutPlan, error) {
	files, err := r.CommitFiles(commit)
	if err != nil {
		return nil, err
	}
	contents, err := r.readBlobs(files)
	if err != nil {
		return nil, err
	}
	work, err := r.workingFiles()
	if err != nil {
		return nil, err
	}

	plan := &checkoutPlan{commit: commit, files: files, contents: contents}
	for path := range work {
		if _, ok := files[path]; !ok {
			plan.removes = append(plan.removes, path)
		}
	}
	for path, want := range files {
		if mode, ok := work[path]; ok && mode.IsRegular() {
			got, err := r.hashWorkingFile(path, false)
			if err != nil {
				return nil, err
			}
			if got == want {
				continue
			}
		}
		plan.writes = append(plan.writes, path)
	}
	sort.Strings(plan.removes)
	sort.Strings(plan.writes)
	return plan, nil
}

func (r *Repo) applyCheckout(plan *checkoutPlan) error {
	for _, path := range plan.removes {
		if err := os.Remove(r.absPath(path)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %q: %w", path, err)
		}
	}
	if err := r.pruneEmptyDirs(); err != nil {
		return err
	}
	for _, path := range plan.writes {
		if err := r.writeWorkingFile(path, plan.contents[path]); err != nil {
			return err
		}
	}
	r.log().Debug("checkout applied", "commit", plan.commit,
		"written", len(plan.writes), "removed", len(plan.removes), "unchanged", len(plan.files)-len(plan.writes))

	return r.WriteStaging(StagingFromMap(plan.files))
}

// pruneEmptyDirs removes every empty directory under the root, deepest
// first, leaving .vcs/ alone.
func (r *Repo) pruneEmptyDirs() error {
	var dirs []string
	err := filepath.WalkDir(r.RootDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() || path == r.RootDir {
			return nil
		}
		rel, err := filepath.Rel(r.RootDir, path)
		if err != nil {
			return err
		}
		if isMetadataPath(filepath.ToSlash(rel)) {
			return fs.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	if err != nil {
		return fmt.Errorf("prune directories: %w", err)
	}
	for i := len(dirs) - 1; i >= 0; i-- {
		r.removeEmptyParents(dirs[i])
	}
	return nil
}

// CheckoutSource names where CheckoutPath took a file's content from.
type CheckoutSource string

const (
	FromIndex CheckoutSource = "index"
	FromHead  CheckoutSource = "HEAD"
)

// CheckoutPath restores one file's working copy from the index, or from the
// head commit when the path is not staged. The index is not changed.
func (r *Repo) CheckoutPath(path string) (CheckoutSource, error) {
	rel, err := r.repoRelPath(path)
	if err != nil {
		return "", fmt.Errorf("checkout %q: %w", path, err)
	}

	stg, err := r.ReadStaging()
	if err != nil {
		return "", fmt.Errorf("checkout %q: %w", rel, err)
	}
	source := FromIndex
	h, ok := stg.Entries[rel]
	if !ok {
		_, headMap, err := r.headFiles()
		if err != nil {
			return "", fmt.Errorf("checkout %q: %w", rel, err)
		}
		source = FromHead
		if h, ok = headMap[rel]; !ok {
			return "", fmt.Errorf("checkout %q: %w", rel, ErrPathNotFound)
		}
	}

	blob, err := r.Store.ReadBlob(h)
	if err != nil {
		return "", fmt.Errorf("checkout %q: %w", rel, missing("blob", h, err))
	}
	if err := r.writeWorkingFile(rel, blob.Data); err != nil {
		return "", fmt.Errorf("checkout: %w", err)
	}
	return source, nil
}
