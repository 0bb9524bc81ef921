package object

import (
	"fmt"
	"sort"
	"strings"
)

// Reachability is the result of walking the object graph from a set of roots.
type Reachability struct {
	Found   map[Hash]struct{}
	Missing []Hash // referenced but absent, sorted
}

// Walk returns every object hash reachable from roots by following commit
// parents, commit trees and tree blobs. Referenced objects that are absent
// from the store are collected in Missing instead of failing the walk.
func (s *Store) Walk(roots []Hash) (*Reachability, error) {
	roots = uniqueNormalizedHashes(roots)
	res := &Reachability{Found: make(map[Hash]struct{}, len(roots))}
	missing := make(map[Hash]struct{})

	stack := make([]Hash, 0, len(roots))
	stack = append(stack, roots...)
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if h == "" {
			continue
		}
		if _, ok := res.Found[h]; ok {
			continue
		}
		if !s.Has(h) {
			missing[h] = struct{}{}
			continue
		}
		res.Found[h] = struct{}{}

		objType, data, err := s.Read(h)
		if err != nil {
			return nil, fmt.Errorf("walk read %s: %w", h, err)
		}
		refs, err := referencedHashes(objType, data)
		if err != nil {
			return nil, fmt.Errorf("walk parse %s (%s): %w", h, objType, err)
		}
		stack = append(stack, refs...)
	}

	for h := range missing {
		res.Missing = append(res.Missing, h)
	}
	sort.Slice(res.Missing, func(i, j int) bool { return res.Missing[i] < res.Missing[j] })
	return res, nil
}

func referencedHashes(objType ObjectType, data []byte) ([]Hash, error) {
	switch objType {
	case TypeBlob:
		return nil, nil
	case TypeCommit:
		commit, err := UnmarshalCommit(data)
		if err != nil {
			return nil, err
		}
		refs := make([]Hash, 0, 1+len(commit.Parents))
		refs = append(refs, commit.TreeHash)
		refs = append(refs, commit.Parents...)
		return refs, nil
	case TypeTree:
		tree, err := UnmarshalTree(data)
		if err != nil {
			return nil, err
		}
		refs := make([]Hash, 0, len(tree.Entries))
		for _, e := range tree.Entries {
			refs = append(refs, e.BlobHash)
		}
		return refs, nil
	default:
		return nil, fmt.Errorf("unsupported object type %q", objType)
	}
}

func uniqueNormalizedHashes(in []Hash) []Hash {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[Hash]struct{}, len(in))
	out := make([]Hash, 0, len(in))
	for _, h := range in {
		h = Hash(strings.TrimSpace(string(h)))
		if h == "" {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
