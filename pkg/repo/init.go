package repo

import (
	"fmt"
	"os"
	"path/filepath"
)

// Init creates a new repository at path. It creates the .vcs/ directory
// structure: objects/, refs/heads/ with an empty main branch, logs/, an empty
// index, config naming the current branch and a default settings.toml.
// Returns an error if a .vcs/ directory already exists.
func Init(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("init: abs path: %w", err)
	}
	vcsDir := filepath.Join(abs, DirName)

	if _, err := os.Stat(vcsDir); err == nil {
		return nil, fmt.Errorf("init: repository already exists at %s", vcsDir)
	}

	dirs := []string{
		filepath.Join(vcsDir, "objects"),
		filepath.Join(vcsDir, "refs", "heads"),
		filepath.Join(vcsDir, "logs", "refs", "heads"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	files := map[string][]byte{
		filepath.Join(vcsDir, "refs", "heads", DefaultBranch): nil,
		filepath.Join(vcsDir, "index"):                        nil,
		filepath.Join(vcsDir, "config"):                       []byte(DefaultBranch + "\n"),
	}
	for name, data := range files {
		if err := os.WriteFile(name, data, 0o644); err != nil {
			return nil, fmt.Errorf("init: write %s: %w", name, err)
		}
	}
	if err := writeSettings(filepath.Join(vcsDir, settingsFile), DefaultSettings()); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	return newRepo(abs)
}

// Open searches upward from path for a .vcs/ directory and opens the
// repository. Returns ErrNotRepository if no .vcs/ directory is found.
func Open(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		info, err := os.Stat(filepath.Join(cur, DirName))
		if err == nil && info.IsDir() {
			r, err := newRepo(cur)
			if err != nil {
				return nil, fmt.Errorf("open: %w", err)
			}
			return r, nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, ErrNotRepository
		}
		cur = parent
	}
}
