package repo

import (
	"errors"
	"strings"
	"testing"
)

func TestReflog_RecordsCommits(t *testing.T) {
	r := initRepo(t)
	h1 := commitFiles(t, r, "first", map[string]string{"a.txt": "1"})
	h2 := commitFiles(t, r, "second\n\nbody", map[string]string{"a.txt": "2"})

	entries, err := r.ReadReflog("", 0)
	if err != nil {
		t.Fatalf("ReadReflog: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("reflog has %d entries, want 2", len(entries))
	}
	if entries[0].OldHash != h1 || entries[0].NewHash != h2 {
		t.Errorf("latest entry = %+v, want %s -> %s", entries[0], h1, h2)
	}
	if entries[0].Reason != "commit: second" {
		t.Errorf("latest reason = %q", entries[0].Reason)
	}
	if entries[1].OldHash != "" || entries[1].NewHash != h1 {
		t.Errorf("initial entry = %+v, want empty -> %s", entries[1], h1)
	}
	if !strings.HasPrefix(entries[1].Reason, "commit (initial)") {
		t.Errorf("initial reason = %q", entries[1].Reason)
	}
}

func TestReflog_RecordsMerge(t *testing.T) {
	r := initRepo(t)
	commitFiles(t, r, "base", map[string]string{"a.txt": "a"})
	if err := r.CreateBranch("topic"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if err := r.SwitchBranch("topic"); err != nil {
		t.Fatalf("SwitchBranch: %v", err)
	}
	commitFiles(t, r, "topic", map[string]string{"t.txt": "t"})
	if err := r.SwitchBranch("main"); err != nil {
		t.Fatalf("SwitchBranch: %v", err)
	}
	commitFiles(t, r, "main", map[string]string{"m.txt": "m"})

	rep, err := r.Merge("topic", "tester")
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	entries, err := r.ReadReflog("main", 1)
	if err != nil {
		t.Fatalf("ReadReflog: %v", err)
	}
	if len(entries) != 1 || entries[0].NewHash != rep.Commit || entries[0].Reason != "merge topic" {
		t.Fatalf("latest main reflog = %+v", entries)
	}
}

func TestReadReflog_RespectsLimit(t *testing.T) {
	r := initRepo(t)
	for _, v := range []string{"1", "2", "3"} {
		commitFiles(t, r, v, map[string]string{"a.txt": v})
	}
	entries, err := r.ReadReflog("main", 2)
	if err != nil {
		t.Fatalf("ReadReflog: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("ReadReflog(limit=2) returned %d entries", len(entries))
	}
}

func TestReadReflog_UnknownBranch(t *testing.T) {
	r := initRepo(t)
	if _, err := r.ReadReflog("ghost", 0); !errors.Is(err, ErrBranchNotFound) {
		t.Fatalf("ReadReflog(ghost) = %v, want ErrBranchNotFound", err)
	}
	entries, err := r.ReadReflog("main", 0)
	if err != nil {
		t.Fatalf("ReadReflog(main): %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("fresh main reflog = %v", entries)
	}
}
