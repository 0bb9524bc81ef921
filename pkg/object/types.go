package object

// Hash is a 64-character hex-encoded SHA-256 digest.
type Hash string

// HashLen is the length of a hex-encoded Hash.
const HashLen = 64

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
)

// FormatVersion is written as the first line of every tree and commit body.
const FormatVersion = 1

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

// TreeEntry is one entry in a tree object. Path is an opaque, slash
// separated, repo-relative path.
type TreeEntry struct {
	Path     string
	BlobHash Hash
}

// TreeObj is a flat snapshot of the staged files.
type TreeObj struct {
	Entries []TreeEntry // sorted by Path
}

// Map returns the tree as a path -> blob hash mapping.
func (t *TreeObj) Map() map[string]Hash {
	m := make(map[string]Hash, len(t.Entries))
	for _, e := range t.Entries {
		m[e.Path] = e.BlobHash
	}
	return m
}

// CommitObj represents a commit pointing to a tree with metadata.
type CommitObj struct {
	TreeHash  Hash
	Parents   []Hash // zero, one, or two (merge)
	Author    string
	Committer string
	Timestamp int64
	Message   string
}
