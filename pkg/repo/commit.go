package repo

import (
	"fmt"
	"strings"
	"time"

	"github.com/odvcencio/minivcs/pkg/object"
)

// LogEntry is one commit of a history walk.
type LogEntry struct {
	Hash   object.Hash
	Commit *object.CommitObj
}

// Commit creates a new commit from the current index.
//
//  1. Read the index; refuse with ErrNothingToCommit if it is empty
//  2. BuildTree from the index
//  3. Resolve the current branch head as the parent (absent on first commit)
//  4. Write the CommitObj
//  5. Advance the branch with a compare-and-swap against the head read in 3
//  6. Clear the index
//
// An empty author falls back to Identity.
func (r *Repo) Commit(message, author string) (object.Hash, error) {
	stg, err := r.ReadStaging()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	if stg.Len() == 0 {
		return "", fmt.Errorf("commit: %w", ErrNothingToCommit)
	}

	treeHash, err := r.BuildTree(stg)
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	parentHash, err := r.Head()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	var parents []object.Hash
	if parentHash != "" {
		parents = append(parents, parentHash)
	}

	identity := r.Identity()
	if strings.TrimSpace(author) == "" {
		author = identity
	}
	commitHash, err := r.Store.WriteCommit(&object.CommitObj{
		TreeHash:  treeHash,
		Parents:   parents,
		Author:    author,
		Committer: identity,
		Timestamp: time.Now().Unix(),
		Message:   message,
	})
	if err != nil {
		return "", fmt.Errorf("commit: write commit: %w", err)
	}

	reason := "commit: " + firstLine(message)
	if parentHash == "" {
		reason = "commit (initial): " + firstLine(message)
	}
	if err := r.UpdateBranchCAS(r.Branch, commitHash, parentHash, reason); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	stg.Clear()
	if err := r.WriteStaging(stg); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return commitHash, nil
}

// Log returns the full first-parent history of the current branch, newest
// first. A branch without commits has an empty log.
func (r *Repo) Log() ([]LogEntry, error) {
	head, err := r.Head()
	if err != nil {
		return nil, fmt.Errorf("log: %w", err)
	}
	if head == "" {
		return nil, nil
	}
	return r.LogFrom(head, 0)
}

// LogFrom walks first-parent links starting at start and returns up to limit
// commits (all of them when limit <= 0). A commit that cannot be read aborts
// the walk with ErrMissingObject.
func (r *Repo) LogFrom(start object.Hash, limit int) ([]LogEntry, error) {
	var entries []LogEntry
	current := start
	for current != "" && (limit <= 0 || len(entries) < limit) {
		c, err := r.Store.ReadCommit(current)
		if err != nil {
			return nil, fmt.Errorf("log: %w", missing("commit", current, err))
		}
		entries = append(entries, LogEntry{Hash: current, Commit: c})

		if len(c.Parents) == 0 {
			break
		}
		current = c.Parents[0]
	}
	return entries, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
