package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/odvcencio/minivcs/pkg/object"
)

// ValidateBranchName rejects names that cannot be stored as a single file
// under refs/heads or that would be mistaken for a commit id.
func ValidateBranchName(name string) error {
	switch {
	case name == "",
		strings.HasPrefix(name, "-"),
		strings.HasPrefix(name, "."),
		strings.HasSuffix(name, ".lock"),
		strings.Contains(name, ".."),
		strings.ContainsAny(name, "/\\ \t\r\n:*?[~^\"'"),
		object.IsHash(name):
		return fmt.Errorf("%w: %q", ErrInvalidBranchName, name)
	}
	for _, c := range name {
		if c < 0x20 || c == 0x7f {
			return fmt.Errorf("%w: %q", ErrInvalidBranchName, name)
		}
	}
	return nil
}

// CreateBranch creates a new branch pointing at the current branch's head.
// A branch created before the first commit is empty as well. Returns
// ErrBranchExists if the name is taken.
func (r *Repo) CreateBranch(name string) error {
	if err := ValidateBranchName(name); err != nil {
		return fmt.Errorf("create branch: %w", err)
	}
	head, err := r.Head()
	if err != nil {
		return fmt.Errorf("create branch: %w", err)
	}

	err = r.updateBranch(name, head, "branch: created from "+r.Branch, func(_ object.Hash, exists bool) error {
		if exists {
			return ErrBranchExists
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("create branch: %w", err)
	}
	return nil
}

// DeleteBranch removes refs/heads/<name> and its reflog. Returns an error if
// the branch is the current branch or does not exist.
func (r *Repo) DeleteBranch(name string) error {
	if err := ValidateBranchName(name); err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	if name == r.Branch {
		return fmt.Errorf("delete branch: cannot delete current branch %q", name)
	}

	if err := os.Remove(r.refPath(name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("delete branch %q: %w", name, ErrBranchNotFound)
		}
		return fmt.Errorf("delete branch %q: %w", name, err)
	}
	if err := os.Remove(r.reflogPath(name)); err != nil && !os.IsNotExist(err) {
		r.log().Warn("delete branch: remove reflog", "branch", name, "error", err)
	}
	return nil
}

// ListBranches reads .vcs/refs/heads/ and returns the branch names sorted
// alphabetically.
func (r *Repo) ListBranches() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(r.VCSDir, "refs", "heads"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list branches: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() || ValidateBranchName(e.Name()) != nil {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// SwitchBranch makes name the current branch. When the branch has commits,
// the working directory and index are replaced with its head tree exactly as
// CheckoutCommit does; the branch ref itself is not moved.
func (r *Repo) SwitchBranch(name string) error {
	head, err := r.ResolveBranch(name)
	if err != nil {
		return fmt.Errorf("switch branch: %w", err)
	}
	if head != "" {
		plan, err := r.planCheckout(head)
		if err != nil {
			return fmt.Errorf("switch branch: %w", err)
		}
		if err := r.applyCheckout(plan); err != nil {
			return fmt.Errorf("switch branch: %w", err)
		}
	}

	from := r.Branch
	if err := r.setCurrentBranch(name); err != nil {
		return fmt.Errorf("switch branch: %w", err)
	}
	if err := r.appendReflog(name, head, head, "checkout: moving from "+from+" to "+name); err != nil {
		return &RefUpdateReflogError{Branch: name, OldHash: head, NewHash: head, Err: err}
	}
	return nil
}
