package repo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCheckoutCommit_RestoresExactTree(t *testing.T) {
	r := initRepo(t)
	c1 := commitFiles(t, r, "one", map[string]string{"a.txt": "v1"})
	writeFile(t, r, "a.txt", "v2")
	writeFile(t, r, "b.txt", "b")
	if err := r.Add([]string{"a.txt", "b.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := r.Commit("two", "tester"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := r.CheckoutCommit(c1); err != nil {
		t.Fatalf("CheckoutCommit: %v", err)
	}
	if got := readFile(t, r, "a.txt"); got != "v1" {
		t.Fatalf("a.txt = %q, want v1", got)
	}
	assertNotExist(t, r, "b.txt")

	stg := mustStaging(t, r)
	want, err := r.CommitFiles(c1)
	if err != nil {
		t.Fatalf("CommitFiles: %v", err)
	}
	if stg.Len() != len(want) || stg.Entries["a.txt"] != want["a.txt"] {
		t.Fatalf("index = %v, want %v", stg.Entries, want)
	}
	if h := mustHead(t, r); h != c1 {
		t.Fatalf("head = %s, want %s", h, c1)
	}
	if !mustStatus(t, r).Clean() {
		t.Fatalf("status after checkout = %+v", mustStatus(t, r))
	}
}

func TestCheckoutCommit_RemovesUntrackedFilesAndDirs(t *testing.T) {
	r := initRepo(t)
	c1 := commitFiles(t, r, "one", map[string]string{"keep/a.txt": "a"})
	writeFile(t, r, "scratch.txt", "s")
	writeFile(t, r, "build/out/bin.o", "o")
	if err := os.MkdirAll(filepath.Join(r.RootDir, "empty", "nested"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	if err := r.CheckoutCommit(c1); err != nil {
		t.Fatalf("CheckoutCommit: %v", err)
	}
	assertNotExist(t, r, "scratch.txt")
	assertNotExist(t, r, "build")
	assertNotExist(t, r, "empty")
	if got := readFile(t, r, "keep/a.txt"); got != "a" {
		t.Fatalf("keep/a.txt = %q", got)
	}
	assertDir(t, r.VCSDir)
}

func TestCheckoutCommit_RoundTripDiffIsEmpty(t *testing.T) {
	r := initRepo(t)
	files := map[string]string{"a.txt": "a\nb\n", "dir/c.txt": "c\n", "d.txt": ""}
	c1 := commitFiles(t, r, "one", files)
	commitFiles(t, r, "two", map[string]string{"a.txt": "changed\n"})

	if err := r.CheckoutCommit(c1); err != nil {
		t.Fatalf("CheckoutCommit: %v", err)
	}
	for path := range files {
		d, err := r.DiffCommitWorking(path, c1)
		if err != nil {
			t.Fatalf("DiffCommitWorking(%s): %v", path, err)
		}
		if !d.Empty() {
			t.Errorf("%s differs after checkout: %+v", path, d.Hunks)
		}
	}
}

func TestCheckoutCommit_MissingBlobLeavesWorkdirUntouched(t *testing.T) {
	r := initRepo(t)
	c1 := commitFiles(t, r, "one", map[string]string{"a.txt": "old", "b.txt": "only in one"})
	commitFiles(t, r, "two", map[string]string{"a.txt": "new"})
	writeFile(t, r, "untracked.txt", "precious")

	files, err := r.CommitFiles(c1)
	if err != nil {
		t.Fatalf("CommitFiles: %v", err)
	}
	if err := os.Remove(filepath.Join(r.VCSDir, "objects", string(files["b.txt"]))); err != nil {
		t.Fatalf("remove blob: %v", err)
	}
	headBefore := mustHead(t, r)
	indexBefore := mustStaging(t, r).Marshal()

	err = r.CheckoutCommit(c1)
	if !errors.Is(err, ErrMissingObject) {
		t.Fatalf("CheckoutCommit = %v, want ErrMissingObject", err)
	}
	if got := readFile(t, r, "a.txt"); got != "new" {
		t.Fatalf("a.txt = %q, want untouched", got)
	}
	if got := readFile(t, r, "untracked.txt"); got != "precious" {
		t.Fatalf("untracked.txt = %q, want untouched", got)
	}
	if mustHead(t, r) != headBefore {
		t.Fatal("head moved after failed checkout")
	}
	if string(mustStaging(t, r).Marshal()) != string(indexBefore) {
		t.Fatal("index changed after failed checkout")
	}
}

func TestCheckoutCommit_SkipsMatchingFiles(t *testing.T) {
	r := initRepo(t)
	c1 := commitFiles(t, r, "one", map[string]string{"same.txt": "same", "a.txt": "1"})
	commitFiles(t, r, "two", map[string]string{"same.txt": "same", "a.txt": "2"})

	old := time.Now().Add(-48 * time.Hour).Truncate(time.Second)
	samePath := filepath.Join(r.RootDir, "same.txt")
	if err := os.Chtimes(samePath, old, old); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	if err := r.CheckoutCommit(c1); err != nil {
		t.Fatalf("CheckoutCommit: %v", err)
	}
	info, err := os.Stat(samePath)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if !info.ModTime().Equal(old) {
		t.Fatalf("same.txt was rewritten (mtime %v, want %v)", info.ModTime(), old)
	}
	if got := readFile(t, r, "a.txt"); got != "1" {
		t.Fatalf("a.txt = %q, want 1", got)
	}
}

func TestCheckoutCommit_NotACommit(t *testing.T) {
	r := initRepo(t)
	commitFiles(t, r, "one", map[string]string{"a.txt": "a"})
	files, _ := r.CommitFiles(mustHead(t, r))

	if err := r.CheckoutCommit(files["a.txt"]); err == nil {
		t.Fatal("checking out a blob hash should fail")
	}
	if got := readFile(t, r, "a.txt"); got != "a" {
		t.Fatalf("a.txt = %q", got)
	}
}

func TestCheckoutPath(t *testing.T) {
	r := initRepo(t)
	commitFiles(t, r, "one", map[string]string{"a.txt": "committed"})

	writeFile(t, r, "a.txt", "scribbled")
	src, err := r.CheckoutPath("a.txt")
	if err != nil {
		t.Fatalf("CheckoutPath: %v", err)
	}
	if src != FromHead {
		t.Fatalf("source = %q, want HEAD", src)
	}
	if got := readFile(t, r, "a.txt"); got != "committed" {
		t.Fatalf("a.txt = %q, want committed", got)
	}

	writeFile(t, r, "a.txt", "staged")
	if err := r.Add([]string{"a.txt"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	writeFile(t, r, "a.txt", "scribbled again")
	src, err = r.CheckoutPath("a.txt")
	if err != nil {
		t.Fatalf("CheckoutPath: %v", err)
	}
	if src != FromIndex {
		t.Fatalf("source = %q, want index", src)
	}
	if got := readFile(t, r, "a.txt"); got != "staged" {
		t.Fatalf("a.txt = %q, want staged", got)
	}
}

func TestCheckoutPath_RestoresDeletedFile(t *testing.T) {
	r := initRepo(t)
	commitFiles(t, r, "one", map[string]string{"dir/a.txt": "a"})
	if err := os.RemoveAll(filepath.Join(r.RootDir, "dir")); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}
	if _, err := r.CheckoutPath("dir/a.txt"); err != nil {
		t.Fatalf("CheckoutPath: %v", err)
	}
	if got := readFile(t, r, "dir/a.txt"); got != "a" {
		t.Fatalf("dir/a.txt = %q", got)
	}
}

func TestCheckoutPath_Unknown(t *testing.T) {
	r := initRepo(t)
	if _, err := r.CheckoutPath("nope.txt"); !errors.Is(err, ErrPathNotFound) {
		t.Fatalf("CheckoutPath(nope) = %v, want ErrPathNotFound", err)
	}
}

func TestCheckoutCommit_RemovesSymlinks(t *testing.T) {
	r := initRepo(t)
	c1 := commitFiles(t, r, "one", map[string]string{"a.txt": "a"})
	writeFile(t, r, "target.txt", "t")
	if err := os.Symlink("target.txt", filepath.Join(r.RootDir, "link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(r.RootDir, "d"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.Symlink("../a.txt", filepath.Join(r.RootDir, "d", "l2")); err != nil {
		t.Fatalf("Symlink: %v", err)
	}
	// A link to a directory must be removed without touching its target.
	if err := os.Symlink(r.VCSDir, filepath.Join(r.RootDir, "meta")); err != nil {
		t.Fatalf("Symlink: %v", err)
	}

	if err := r.CheckoutCommit(c1); err != nil {
		t.Fatalf("CheckoutCommit: %v", err)
	}
	for _, p := range []string{"link", "d/l2", "d", "meta", "target.txt"} {
		if _, err := os.Lstat(filepath.Join(r.RootDir, filepath.FromSlash(p))); !os.IsNotExist(err) {
			t.Errorf("%s survived checkout (err=%v)", p, err)
		}
	}
	assertDir(t, r.VCSDir)
	if got := readFile(t, r, "a.txt"); got != "a" {
		t.Fatalf("a.txt = %q", got)
	}
}

func TestCheckoutCommit_ReplacesSymlinkAtTrackedPath(t *testing.T) {
	r := initRepo(t)
	c1 := commitFiles(t, r, "one", map[string]string{"a.txt": "tracked"})
	writeFile(t, r, "outside.txt", "do not overwrite")
	if err := os.Remove(filepath.Join(r.RootDir, "a.txt")); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := os.Symlink("outside.txt", filepath.Join(r.RootDir, "a.txt")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	if err := r.CheckoutCommit(c1); err != nil {
		t.Fatalf("CheckoutCommit: %v", err)
	}
	info, err := os.Lstat(filepath.Join(r.RootDir, "a.txt"))
	if err != nil {
		t.Fatalf("Lstat: %v", err)
	}
	if !info.Mode().IsRegular() {
		t.Fatalf("a.txt mode = %v, want regular file", info.Mode())
	}
	if got := readFile(t, r, "a.txt"); got != "tracked" {
		t.Fatalf("a.txt = %q", got)
	}
}
