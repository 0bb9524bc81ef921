package object

import (
	"bytes"
	"strings"
	"testing"
)

func TestMarshalBlobIsIdentity(t *testing.T) {
	orig := &Blob{Data: []byte("hello world\nline two")}
	if !bytes.Equal(MarshalBlob(orig), orig.Data) {
		t.Error("MarshalBlob should return the raw bytes")
	}
}

func TestTreeRoundTripAwkwardPaths(t *testing.T) {
	h := HashBytes([]byte("x"))
	orig := &TreeObj{Entries: []TreeEntry{
		{Path: "with space.txt", BlobHash: h},
		{Path: "line\nbreak", BlobHash: h},
		{Path: "a.txt", BlobHash: h},
		{Path: "dir/nested.go", BlobHash: h},
	}}
	got, err := UnmarshalTree(MarshalTree(orig))
	if err != nil {
		t.Fatalf("UnmarshalTree: %v", err)
	}
	if len(got.Entries) != 4 {
		t.Fatalf("entries = %d, want 4", len(got.Entries))
	}
	want := []string{"a.txt", "dir/nested.go", "line\nbreak", "with space.txt"}
	for i, e := range got.Entries {
		if e.Path != want[i] {
			t.Errorf("entry %d path = %q, want %q", i, e.Path, want[i])
		}
		if e.BlobHash != h {
			t.Errorf("entry %d hash = %q", i, e.BlobHash)
		}
	}
}

func TestMarshalTreeDeterministicOrder(t *testing.T) {
	h1 := HashBytes([]byte("1"))
	h2 := HashBytes([]byte("2"))
	a := &TreeObj{Entries: []TreeEntry{{Path: "b", BlobHash: h1}, {Path: "a", BlobHash: h2}}}
	b := &TreeObj{Entries: []TreeEntry{{Path: "a", BlobHash: h2}, {Path: "b", BlobHash: h1}}}
	if !bytes.Equal(MarshalTree(a), MarshalTree(b)) {
		t.Error("tree serialization depends on entry order")
	}
}

func TestUnmarshalEmptyTree(t *testing.T) {
	got, err := UnmarshalTree(MarshalTree(&TreeObj{}))
	if err != nil {
		t.Fatalf("UnmarshalTree: %v", err)
	}
	if len(got.Entries) != 0 {
		t.Errorf("entries = %d, want 0", len(got.Entries))
	}
}

func TestUnmarshalTreeRejectsMalformed(t *testing.T) {
	h := string(HashBytes([]byte("x")))
	cases := map[string]string{
		"no version":     h + " 1 a\n",
		"future version": "version 9\n",
		"short hash":     "version 1\nabc 1 a\n",
		"bad length":     "version 1\n" + h + " x a\n",
		"truncated path": "version 1\n" + h + " 10 a\n",
	}
	for name, in := range cases {
		if _, err := UnmarshalTree([]byte(in)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestCommitRoundTrip(t *testing.T) {
	orig := &CommitObj{
		TreeHash:  HashBytes([]byte("tree")),
		Parents:   []Hash{HashBytes([]byte("p1")), HashBytes([]byte("p2"))},
		Author:    "Ada Lovelace <ada@example.com>",
		Committer: "weird \"name\"\nwith newline",
		Timestamp: 1700000000,
		Message:   "Merge branch 'feature'\n\nbody with\n\nblank lines\n",
	}
	got, err := UnmarshalCommit(MarshalCommit(orig))
	if err != nil {
		t.Fatalf("UnmarshalCommit: %v", err)
	}
	if got.TreeHash != orig.TreeHash {
		t.Errorf("TreeHash: got %q, want %q", got.TreeHash, orig.TreeHash)
	}
	if len(got.Parents) != 2 || got.Parents[0] != orig.Parents[0] || got.Parents[1] != orig.Parents[1] {
		t.Errorf("Parents: got %v, want %v", got.Parents, orig.Parents)
	}
	if got.Author != orig.Author {
		t.Errorf("Author: got %q, want %q", got.Author, orig.Author)
	}
	if got.Committer != orig.Committer {
		t.Errorf("Committer: got %q, want %q", got.Committer, orig.Committer)
	}
	if got.Timestamp != orig.Timestamp {
		t.Errorf("Timestamp: got %d, want %d", got.Timestamp, orig.Timestamp)
	}
	if got.Message != orig.Message {
		t.Errorf("Message: got %q, want %q", got.Message, orig.Message)
	}
}

func TestMarshalCommitFormat(t *testing.T) {
	c := &CommitObj{TreeHash: HashBytes([]byte("t")), Author: "a", Committer: "c", Timestamp: 5, Message: "msg"}
	text := string(MarshalCommit(c))
	if !strings.HasPrefix(text, "version 1\ntree ") {
		t.Errorf("commit should start with version then tree, got %q", text)
	}
	if !strings.HasSuffix(text, "\n\nmsg") {
		t.Errorf("message should follow the first blank line, got %q", text)
	}
}

func TestUnmarshalCommitRejectsMalformed(t *testing.T) {
	tree := string(HashBytes([]byte("t")))
	cases := map[string]string{
		"no separator":  "version 1\ntree " + tree + "\n",
		"unknown key":   "version 1\ntree " + tree + "\nfoo bar\n\nm",
		"bad timestamp": "version 1\ntree " + tree + "\ntimestamp soon\n\nm",
		"no tree":       "version 1\nauthor \"a\"\n\nm",
		"bad quoting":   "version 1\ntree " + tree + "\nauthor a\n\nm",
		"three parents": "version 1\ntree " + tree + "\nparent a\nparent b\nparent c\n\nm",
	}
	for name, in := range cases {
		if _, err := UnmarshalCommit([]byte(in)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
