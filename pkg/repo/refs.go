package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/odvcencio/minivcs/pkg/object"
)

var ErrRefCASMismatch = errors.New("ref compare-and-swap mismatch")
var ErrRefUpdatedButReflogAppendFailed = errors.New("ref updated but reflog append failed")

// RefUpdateReflogError indicates the ref file update succeeded, but appending
// the corresponding reflog entry failed.
type RefUpdateReflogError struct {
	Branch  string
	OldHash object.Hash
	NewHash object.Hash
	Err     error
}

func (e *RefUpdateReflogError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf(
		"update branch %q: %s (old=%s new=%s): %v",
		e.Branch,
		ErrRefUpdatedButReflogAppendFailed,
		e.OldHash,
		e.NewHash,
		e.Err,
	)
}

func (e *RefUpdateReflogError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *RefUpdateReflogError) Is(target error) bool {
	return target == ErrRefUpdatedButReflogAppendFailed
}

const (
	refLockRetryDelay = 5 * time.Millisecond
	refLockWaitLimit  = 2 * time.Second
)

func (r *Repo) refPath(branch string) string {
	return filepath.Join(r.VCSDir, "refs", "heads", branch)
}

// ResolveBranch returns the commit a branch points at. A branch that exists
// but has no commits yet resolves to the empty hash. A missing branch
// returns ErrBranchNotFound.
func (r *Repo) ResolveBranch(name string) (object.Hash, error) {
	h, exists, err := readRefHash(r.refPath(name))
	if err != nil {
		return "", fmt.Errorf("resolve branch %q: %w", name, err)
	}
	if !exists {
		return "", fmt.Errorf("resolve branch %q: %w", name, ErrBranchNotFound)
	}
	return h, nil
}

// BranchExists reports whether refs/heads/<name> is present.
func (r *Repo) BranchExists(name string) bool {
	if ValidateBranchName(name) != nil {
		return false
	}
	info, err := os.Stat(r.refPath(name))
	return err == nil && info.Mode().IsRegular()
}

// Head returns the current branch's commit, or "" when the branch has no
// commits (or its ref file has gone missing).
func (r *Repo) Head() (object.Hash, error) {
	h, err := r.ResolveBranch(r.Branch)
	if errors.Is(err, ErrBranchNotFound) {
		return "", nil
	}
	return h, err
}

// UpdateBranch points a branch at h unconditionally.
func (r *Repo) UpdateBranch(name string, h object.Hash, reason string) error {
	return r.updateBranch(name, h, reason, nil)
}

// UpdateBranchCAS points a branch at h only if it currently holds
// expectedOld ("" for a branch without commits).
func (r *Repo) UpdateBranchCAS(name string, h, expectedOld object.Hash, reason string) error {
	return r.updateBranch(name, h, reason, func(old object.Hash, _ bool) error {
		if old != expectedOld {
			return fmt.Errorf("%w (expected %s, found %s)", ErrRefCASMismatch, expectedOld, old)
		}
		return nil
	})
}

// updateBranch writes a branch ref using lockfile + rename. check, when set,
// runs under the lock with the ref's previous value and may veto the update.
// The new hash must be empty or name a stored commit.
//
// Reflog append happens after the ref rename; if it fails, the ref update
// remains committed and a RefUpdateReflogError is returned.
func (r *Repo) updateBranch(name string, h object.Hash, reason string, check func(old object.Hash, exists bool) error) error {
	if err := ValidateBranchName(name); err != nil {
		return fmt.Errorf("update branch %q: %w", name, err)
	}
	if h != "" {
		if _, err := r.Store.ReadCommit(h); err != nil {
			return fmt.Errorf("update branch %q: %w", name, missing("commit", h, err))
		}
	}

	refPath := r.refPath(name)
	if err := os.MkdirAll(filepath.Dir(refPath), 0o755); err != nil {
		return fmt.Errorf("update branch %q: mkdir: %w", name, err)
	}

	lockPath := refPath + ".lock"
	lockFile, err := acquireRefLock(lockPath)
	if err != nil {
		return fmt.Errorf("update branch %q: lock: %w", name, err)
	}
	cleanupLock := true
	defer func() {
		if lockFile != nil {
			_ = lockFile.Close()
		}
		if cleanupLock {
			_ = os.Remove(lockPath)
		}
	}()

	oldHash, exists, err := readRefHash(refPath)
	if err != nil {
		return fmt.Errorf("update branch %q: read old hash: %w", name, err)
	}
	if check != nil {
		if err := check(oldHash, exists); err != nil {
			return fmt.Errorf("update branch %q: %w", name, err)
		}
	}

	content := ""
	if h != "" {
		content = string(h) + "\n"
	}
	if _, err := lockFile.WriteString(content); err != nil {
		return fmt.Errorf("update branch %q: write: %w", name, err)
	}
	if err := lockFile.Sync(); err != nil {
		return fmt.Errorf("update branch %q: sync: %w", name, err)
	}
	if err := lockFile.Close(); err != nil {
		lockFile = nil
		return fmt.Errorf("update branch %q: close: %w", name, err)
	}
	lockFile = nil

	if err := os.Rename(lockPath, refPath); err != nil {
		return fmt.Errorf("update branch %q: rename: %w", name, err)
	}
	cleanupLock = false

	r.log().Debug("branch updated", "branch", name, "old", oldHash, "new", h, "reason", reason)

	if err := r.appendReflog(name, oldHash, h, reason); err != nil {
		return &RefUpdateReflogError{
			Branch:  name,
			OldHash: oldHash,
			NewHash: h,
			Err:     err,
		}
	}
	return nil
}

func acquireRefLock(lockPath string) (*os.File, error) {
	deadline := time.Now().Add(refLockWaitLimit)
	for {
		f, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, nil
		}
		if os.IsExist(err) {
			if time.Now().After(deadline) {
				return nil, fmt.Errorf("timeout waiting for lock %q", lockPath)
			}
			time.Sleep(refLockRetryDelay)
			continue
		}
		return nil, err
	}
}

// readRefHash reads a ref file. exists is false when the file is absent;
// an empty file is an existing ref without commits.
func readRefHash(refPath string) (h object.Hash, exists bool, err error) {
	data, err := os.ReadFile(refPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return object.Hash(strings.TrimSpace(string(data))), true, nil
}
