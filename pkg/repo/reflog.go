package repo

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/odvcencio/minivcs/pkg/object"
)

// zeroHash stands in for "no commit" in reflog lines.
var zeroHash = object.Hash(strings.Repeat("0", object.HashLen))

type ReflogEntry struct {
	Branch    string
	OldHash   object.Hash // "" when the branch had no commit
	NewHash   object.Hash
	Timestamp int64
	Reason    string
}

func (r *Repo) reflogPath(branch string) string {
	return filepath.Join(r.VCSDir, "logs", "refs", "heads", branch)
}

func (r *Repo) appendReflog(branch string, oldHash, newHash object.Hash, reason string) error {
	reason = strings.Join(strings.Fields(reason), " ")
	if reason == "" {
		reason = "update"
	}

	logPath := r.reflogPath(branch)
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("reflog mkdir: %w", err)
	}

	if oldHash == "" {
		oldHash = zeroHash
	}
	if newHash == "" {
		newHash = zeroHash
	}
	line := fmt.Sprintf("%s %s %d %s\n", oldHash, newHash, time.Now().Unix(), reason)

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("reflog open: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("reflog write: %w", err)
	}
	return nil
}

// ReadReflog returns up to limit entries for branch, newest first. An empty
// branch name means the current branch; limit <= 0 means no limit.
func (r *Repo) ReadReflog(branch string, limit int) ([]ReflogEntry, error) {
	branch = strings.TrimSpace(branch)
	if branch == "" {
		branch = r.Branch
	}
	if err := ValidateBranchName(branch); err != nil {
		return nil, fmt.Errorf("read reflog: %w", err)
	}

	f, err := os.Open(r.reflogPath(branch))
	if err != nil {
		if os.IsNotExist(err) {
			if !r.BranchExists(branch) {
				return nil, fmt.Errorf("read reflog %q: %w", branch, ErrBranchNotFound)
			}
			return nil, nil
		}
		return nil, fmt.Errorf("read reflog: %w", err)
	}
	defer f.Close()

	var entries []ReflogEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, " ", 4)
		if len(parts) < 4 {
			continue
		}
		ts, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			continue
		}
		entries = append(entries, ReflogEntry{
			Branch:    branch,
			OldHash:   fromReflogHash(parts[0]),
			NewHash:   fromReflogHash(parts[1]),
			Timestamp: ts,
			Reason:    parts[3],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read reflog: %w", err)
	}

	// Return newest first.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func fromReflogHash(s string) object.Hash {
	if object.Hash(s) == zeroHash {
		return ""
	}
	return object.Hash(s)
}
