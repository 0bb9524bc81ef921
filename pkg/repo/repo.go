package repo

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/odvcencio/minivcs/pkg/diff"
	"github.com/odvcencio/minivcs/pkg/object"
)

// DirName is the metadata directory created at the repository root.
const DirName = ".vcs"

// DefaultBranch is the branch a fresh repository starts on.
const DefaultBranch = "main"

var (
	ErrNotRepository     = errors.New("not a vcs repository (or any of the parent directories): " + DirName)
	ErrNothingToCommit   = errors.New("nothing to commit")
	ErrBranchExists      = errors.New("branch already exists")
	ErrBranchNotFound    = errors.New("branch not found")
	ErrInvalidBranchName = errors.New("invalid branch name")
	ErrMergeSelf         = errors.New("cannot merge a branch into itself")
	ErrAlreadyMerged     = errors.New("already merged")
	ErrNoCommits         = errors.New("branch has no commits")
	ErrPathNotFound      = errors.New("path not found")
	ErrMissingObject     = errors.New("missing object")
)

// Repo represents an opened repository. Every operation re-reads the state
// it needs from VCSDir; the handle itself caches only the settings and the
// current branch loaded at open time.
type Repo struct {
	RootDir  string        // working directory root
	VCSDir   string        // .vcs/ directory
	Store    *object.Store // content-addressed object store
	Branch   string        // current branch, from .vcs/config
	Settings *Settings     // .vcs/settings.toml
	Logger   *slog.Logger

	diffAlgorithm diff.Algorithm
}

func newRepo(root string) (*Repo, error) {
	vcsDir := filepath.Join(root, DirName)
	settings, err := readSettings(filepath.Join(vcsDir, settingsFile))
	if err != nil {
		return nil, err
	}
	compression, err := object.ParseCompression(settings.Core.Compression)
	if err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	alg, err := diff.ParseAlgorithm(settings.Diff.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}

	r := &Repo{
		RootDir:       root,
		VCSDir:        vcsDir,
		Store:         object.NewStoreWithCompression(vcsDir, compression),
		Settings:      settings,
		Logger:        slog.Default(),
		diffAlgorithm: alg,
	}
	branch, err := r.readCurrentBranch()
	if err != nil {
		return nil, err
	}
	r.Branch = branch
	return r, nil
}

func (r *Repo) log() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

// missing wraps a store lookup failure for hash h as an integrity error.
// Errors that are not object.ErrNotFound pass through unchanged.
func missing(what string, h object.Hash, err error) error {
	if errors.Is(err, object.ErrNotFound) {
		return fmt.Errorf("%w: %s %s: %v", ErrMissingObject, what, h, err)
	}
	return fmt.Errorf("%s %s: %w", what, h, err)
}

// repoRelPath converts a path (absolute, or relative to the process working
// directory) into a slash-separated path relative to the repository root.
// Paths that resolve outside the root are treated as already repo-relative.
func (r *Repo) repoRelPath(p string) (string, error) {
	abs := p
	if !filepath.IsAbs(p) {
		cwd, err := os.Getwd()
		if err != nil {
			return filepath.ToSlash(filepath.Clean(p)), nil
		}
		abs = filepath.Join(cwd, p)
	}
	rel, err := filepath.Rel(r.RootDir, abs)
	if err != nil {
		return "", fmt.Errorf("cannot make %q relative to %q: %w", p, r.RootDir, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		if filepath.IsAbs(p) {
			return "", fmt.Errorf("%q is outside repository %q", p, r.RootDir)
		}
		return filepath.ToSlash(filepath.Clean(p)), nil
	}
	return filepath.ToSlash(rel), nil
}

// absPath maps a repo-relative slash path onto the filesystem.
func (r *Repo) absPath(rel string) string {
	return filepath.Join(r.RootDir, filepath.FromSlash(rel))
}

// isMetadataPath reports whether rel lives inside the .vcs/ directory.
func isMetadataPath(rel string) bool {
	return rel == DirName || strings.HasPrefix(rel, DirName+"/")
}
