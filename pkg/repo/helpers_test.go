package repo

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/odvcencio/minivcs/pkg/object"
)

// initRepo creates a repository in a fresh temp dir with logging discarded.
func initRepo(t *testing.T) *Repo {
	t.Helper()
	r, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	r.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return r
}

// captureLogs redirects r's logger into the returned buffer.
func captureLogs(r *Repo) *bytes.Buffer {
	var buf bytes.Buffer
	r.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return &buf
}

func writeFile(t *testing.T, r *Repo, rel, content string) {
	t.Helper()
	abs := filepath.Join(r.RootDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func readFile(t *testing.T, r *Repo, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(r.RootDir, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("read %s: %v", rel, err)
	}
	return string(data)
}

func assertNotExist(t *testing.T, r *Repo, rel string) {
	t.Helper()
	if _, err := os.Stat(filepath.Join(r.RootDir, filepath.FromSlash(rel))); !os.IsNotExist(err) {
		t.Fatalf("%s should not exist (stat err = %v)", rel, err)
	}
}

func assertDir(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected directory %s: %v", path, err)
	}
	if !info.IsDir() {
		t.Fatalf("%s is not a directory", path)
	}
}

// commitFiles writes each file, stages it and commits.
func commitFiles(t *testing.T, r *Repo, msg string, files map[string]string) object.Hash {
	t.Helper()
	var paths []string
	for rel, content := range files {
		writeFile(t, r, rel, content)
		paths = append(paths, rel)
	}
	if err := r.Add(paths); err != nil {
		t.Fatalf("Add(%v): %v", paths, err)
	}
	h, err := r.Commit(msg, "tester")
	if err != nil {
		t.Fatalf("Commit(%q): %v", msg, err)
	}
	return h
}

func mustHead(t *testing.T, r *Repo) object.Hash {
	t.Helper()
	h, err := r.Head()
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	return h
}

func mustStatus(t *testing.T, r *Repo) *StatusReport {
	t.Helper()
	st, err := r.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	return st
}

func mustStaging(t *testing.T, r *Repo) *Staging {
	t.Helper()
	stg, err := r.ReadStaging()
	if err != nil {
		t.Fatalf("ReadStaging: %v", err)
	}
	return stg
}
