package repo

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/odvcencio/minivcs/pkg/object"
)

// workingFiles walks the working directory and returns every non-directory
// entry (regular files, symlinks and anything else) as a repo-relative slash
// path mapped to its type bits, skipping the .vcs/ subtree. Symlinks are not
// followed.
func (r *Repo) workingFiles() (map[string]fs.FileMode, error) {
	files := make(map[string]fs.FileMode)
	err := filepath.WalkDir(r.RootDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		rel, err := filepath.Rel(r.RootDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if isMetadataPath(rel) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			files[rel] = d.Type()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk working tree: %w", err)
	}
	return files, nil
}

// hashWorkingFile hashes the working copy of rel as a blob. With store set,
// the blob is also written to the object store.
func (r *Repo) hashWorkingFile(rel string, store bool) (object.Hash, error) {
	data, err := os.ReadFile(r.absPath(rel))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%q: %w", rel, ErrPathNotFound)
		}
		return "", fmt.Errorf("read %q: %w", rel, err)
	}
	if !store {
		return object.HashObject(object.TypeBlob, object.MarshalBlob(&object.Blob{Data: data})), nil
	}
	h, err := r.Store.WriteBlob(&object.Blob{Data: data})
	if err != nil {
		return "", fmt.Errorf("write blob %q: %w", rel, err)
	}
	return h, nil
}

// readWorkingFile returns the working copy of rel, or nil with exists=false
// when it is absent.
func (r *Repo) readWorkingFile(rel string) (data []byte, exists bool, err error) {
	data, err = os.ReadFile(r.absPath(rel))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %q: %w", rel, err)
	}
	return data, true, nil
}

// writeWorkingFile writes data to rel, creating parent directories. A
// directory or symlink occupying the path is removed first, so the write
// never lands on a link target.
func (r *Repo) writeWorkingFile(rel string, data []byte) error {
	abs := r.absPath(rel)
	if info, err := os.Lstat(abs); err == nil && !info.Mode().IsRegular() {
		if err := os.RemoveAll(abs); err != nil {
			return fmt.Errorf("replace %q: %w", rel, err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("mkdir for %q: %w", rel, err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return fmt.Errorf("write %q: %w", rel, err)
	}
	return nil
}

// readBlobs loads the blob for every entry of files. Nothing is written, so
// a missing blob can be reported before any destructive step.
func (r *Repo) readBlobs(files map[string]object.Hash) (map[string][]byte, error) {
	out := make(map[string][]byte, len(files))
	for path, h := range files {
		blob, err := r.Store.ReadBlob(h)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, missing("blob", h, err))
		}
		out[path] = blob.Data
	}
	return out, nil
}

// removeEmptyParents removes dir and its ancestors while they are empty,
// stopping at the repository root.
func (r *Repo) removeEmptyParents(dir string) {
	for {
		if dir == r.RootDir || !strings.HasPrefix(dir, r.RootDir+string(filepath.Separator)) {
			return
		}

		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}

		os.Remove(dir)
		dir = filepath.Dir(dir)
	}
}
