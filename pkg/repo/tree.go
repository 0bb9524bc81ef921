package repo

import (
	"fmt"
	"sort"

	"github.com/odvcencio/minivcs/pkg/object"
)

// BuildTree writes the staged entries as a single flat TreeObj and returns
// its hash. Entries are sorted by path so equal indexes produce equal trees.
func (r *Repo) BuildTree(s *Staging) (object.Hash, error) {
	return r.writeTreeMap(s.Entries)
}

func (r *Repo) writeTreeMap(files map[string]object.Hash) (object.Hash, error) {
	entries := make([]object.TreeEntry, 0, len(files))
	for p, h := range files {
		entries = append(entries, object.TreeEntry{Path: p, BlobHash: h})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

	h, err := r.Store.WriteTree(&object.TreeObj{Entries: entries})
	if err != nil {
		return "", fmt.Errorf("build tree: %w", err)
	}
	return h, nil
}

// CommitFiles resolves a commit to the path -> blob mapping of its tree.
func (r *Repo) CommitFiles(commit object.Hash) (map[string]object.Hash, error) {
	c, err := r.Store.ReadCommit(commit)
	if err != nil {
		return nil, missing("commit", commit, err)
	}
	tree, err := r.Store.ReadTree(c.TreeHash)
	if err != nil {
		return nil, fmt.Errorf("commit %s: %w", commit.Short(), missing("tree", c.TreeHash, err))
	}
	return tree.Map(), nil
}

// headFiles returns the current head commit and its tree mapping. A branch
// without commits yields an empty mapping.
func (r *Repo) headFiles() (object.Hash, map[string]object.Hash, error) {
	head, err := r.Head()
	if err != nil {
		return "", nil, err
	}
	if head == "" {
		return "", map[string]object.Hash{}, nil
	}
	files, err := r.CommitFiles(head)
	if err != nil {
		return "", nil, err
	}
	return head, files, nil
}
