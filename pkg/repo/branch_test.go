package repo

import (
	"errors"
	"strings"
	"testing"
)

func TestBranch_CreateListDelete(t *testing.T) {
	r := initRepo(t)
	head := commitFiles(t, r, "first", map[string]string{"a.txt": "a"})

	if err := r.CreateBranch("feature"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	got, err := r.ResolveBranch("feature")
	if err != nil {
		t.Fatalf("ResolveBranch: %v", err)
	}
	if got != head {
		t.Fatalf("feature = %s, want %s", got, head)
	}

	names, err := r.ListBranches()
	if err != nil {
		t.Fatalf("ListBranches: %v", err)
	}
	if strings.Join(names, ",") != "feature,main" {
		t.Fatalf("branches = %v", names)
	}

	if err := r.DeleteBranch("feature"); err != nil {
		t.Fatalf("DeleteBranch: %v", err)
	}
	if r.BranchExists("feature") {
		t.Fatal("feature still exists after delete")
	}
	if _, err := r.ReadReflog("feature", 0); !errors.Is(err, ErrBranchNotFound) {
		t.Fatalf("reflog of deleted branch: %v", err)
	}
}

func TestBranch_CreateDuplicate(t *testing.T) {
	r := initRepo(t)
	commitFiles(t, r, "first", map[string]string{"a.txt": "a"})
	if err := r.CreateBranch("dup"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	before, _ := r.ResolveBranch("dup")

	commitFiles(t, r, "second", map[string]string{"a.txt": "b"})
	if err := r.CreateBranch("dup"); !errors.Is(err, ErrBranchExists) {
		t.Fatalf("second CreateBranch = %v, want ErrBranchExists", err)
	}
	after, _ := r.ResolveBranch("dup")
	if before != after {
		t.Fatalf("refused create moved the branch: %s -> %s", before, after)
	}
	if err := r.CreateBranch("main"); !errors.Is(err, ErrBranchExists) {
		t.Fatalf("CreateBranch(main) = %v, want ErrBranchExists", err)
	}
}

func TestBranch_CreateBeforeFirstCommit(t *testing.T) {
	r := initRepo(t)
	if err := r.CreateBranch("early"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	h, err := r.ResolveBranch("early")
	if err != nil {
		t.Fatalf("ResolveBranch: %v", err)
	}
	if h != "" {
		t.Fatalf("early = %q, want empty", h)
	}
}

func TestBranch_DeleteCurrent(t *testing.T) {
	r := initRepo(t)
	if err := r.DeleteBranch("main"); err == nil {
		t.Fatal("deleting the current branch should fail")
	}
	if !r.BranchExists("main") {
		t.Fatal("main was removed")
	}
}

func TestBranch_DeleteMissing(t *testing.T) {
	r := initRepo(t)
	if err := r.DeleteBranch("ghost"); !errors.Is(err, ErrBranchNotFound) {
		t.Fatalf("DeleteBranch(ghost) = %v, want ErrBranchNotFound", err)
	}
}

func TestValidateBranchName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"main", true},
		{"feature-1", true},
		{"fix_bug.v2", true},
		{"", false},
		{"-d", false},
		{".hidden", false},
		{"a/b", false},
		{"a..b", false},
		{"with space", false},
		{"x.lock", false},
		{"tab\tname", false},
		{strings.Repeat("a", 64), false},
		{strings.Repeat("a", 63), true},
	}
	for _, tt := range tests {
		err := ValidateBranchName(tt.name)
		if tt.ok && err != nil {
			t.Errorf("ValidateBranchName(%q) = %v, want nil", tt.name, err)
		}
		if !tt.ok && !errors.Is(err, ErrInvalidBranchName) {
			t.Errorf("ValidateBranchName(%q) = %v, want ErrInvalidBranchName", tt.name, err)
		}
	}
}

func TestSwitchBranch_MaterializesHeadTree(t *testing.T) {
	r := initRepo(t)
	commitFiles(t, r, "base", map[string]string{"a.txt": "base"})
	if err := r.CreateBranch("feature"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if err := r.SwitchBranch("feature"); err != nil {
		t.Fatalf("SwitchBranch(feature): %v", err)
	}
	if r.Branch != "feature" {
		t.Fatalf("Branch = %q, want feature", r.Branch)
	}
	commitFiles(t, r, "feature", map[string]string{"a.txt": "feature", "f.txt": "f"})

	if err := r.SwitchBranch("main"); err != nil {
		t.Fatalf("SwitchBranch(main): %v", err)
	}
	if got := readFile(t, r, "a.txt"); got != "base" {
		t.Fatalf("a.txt on main = %q, want base", got)
	}
	assertNotExist(t, r, "f.txt")
	if !mustStatus(t, r).Clean() {
		t.Fatalf("status after switch = %+v", mustStatus(t, r))
	}

	if err := r.SwitchBranch("feature"); err != nil {
		t.Fatalf("SwitchBranch(feature): %v", err)
	}
	if got := readFile(t, r, "f.txt"); got != "f" {
		t.Fatalf("f.txt on feature = %q, want f", got)
	}
}

func TestSwitchBranch_Missing(t *testing.T) {
	r := initRepo(t)
	if err := r.SwitchBranch("ghost"); !errors.Is(err, ErrBranchNotFound) {
		t.Fatalf("SwitchBranch(ghost) = %v, want ErrBranchNotFound", err)
	}
	if r.Branch != "main" {
		t.Fatalf("Branch changed to %q", r.Branch)
	}
}
