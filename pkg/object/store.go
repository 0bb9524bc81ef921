package object

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ErrNotFound is returned (wrapped) when an object is absent from the store.
var ErrNotFound = errors.New("object not found")

// Store is a content-addressed object store with one file per object:
// objects/<hash>.
type Store struct {
	root        string
	compression Compression
}

// NewStore creates a Store rooted at the given directory that writes raw,
// uncompressed envelopes. The objects/ subdirectory is created lazily on
// first write.
func NewStore(root string) *Store {
	return &Store{root: root, compression: CompressionNone}
}

// NewStoreWithCompression creates a Store that encodes new objects with c.
// Objects are always readable regardless of the codec they were written with.
func NewStoreWithCompression(root string, c Compression) *Store {
	if c == "" {
		c = CompressionNone
	}
	return &Store{root: root, compression: c}
}

// objectPath returns the filesystem path for a given hash.
func (s *Store) objectPath(h Hash) string {
	return filepath.Join(s.root, "objects", string(h))
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h Hash) bool {
	if !IsHash(string(h)) {
		return false
	}
	_, err := os.Stat(s.objectPath(h))
	return err == nil
}

// Write stores an object and returns its content hash. The envelope is
// "type len\0content", optionally zstd-encoded. Writes are atomic: data is
// written to a temp file and then renamed into place. Writing an object that
// already exists is a no-op.
func (s *Store) Write(objType ObjectType, data []byte) (Hash, error) {
	raw := marshalEnvelope(objType, data)
	h := HashBytes(raw)

	// Fast path: already exists.
	if s.Has(h) {
		return h, nil
	}

	encoded, err := encodeEnvelope(s.compression, raw)
	if err != nil {
		return "", fmt.Errorf("object write encode: %w", err)
	}

	dir := filepath.Join(s.root, "objects")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("object write mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("object write tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(encoded); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("object write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write close: %w", err)
	}

	if err := os.Rename(tmpName, s.objectPath(h)); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write rename: %w", err)
	}

	return h, nil
}

// Read retrieves an object by hash, returning its type and raw content.
// A missing object yields an error matching ErrNotFound.
func (s *Store) Read(h Hash) (ObjectType, []byte, error) {
	if !IsHash(string(h)) {
		return "", nil, fmt.Errorf("object read %q: %w", h, ErrNotFound)
	}
	stored, err := os.ReadFile(s.objectPath(h))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("object read %s: %w", h, ErrNotFound)
		}
		return "", nil, fmt.Errorf("object read %s: %w", h, err)
	}
	raw, err := decodeEnvelope(stored)
	if err != nil {
		return "", nil, fmt.Errorf("object read %s: decode: %w", h, err)
	}

	// Parse envelope: "type len\0content"
	nulIdx := bytes.IndexByte(raw, 0)
	if nulIdx < 0 {
		return "", nil, fmt.Errorf("object read %s: invalid format (no NUL)", h)
	}
	header := string(raw[:nulIdx])
	content := raw[nulIdx+1:]

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return "", nil, fmt.Errorf("object read %s: invalid header %q", h, header)
	}
	objType := ObjectType(parts[0])
	length, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", nil, fmt.Errorf("object read %s: invalid length %q: %w", h, parts[1], err)
	}
	if len(content) != length {
		return "", nil, fmt.Errorf("object read %s: length mismatch (header=%d, actual=%d)", h, length, len(content))
	}

	return objType, content, nil
}

// Verify re-hashes a stored object and reports whether its content still
// matches its name.
func (s *Store) Verify(h Hash) error {
	objType, data, err := s.Read(h)
	if err != nil {
		return err
	}
	if got := HashObject(objType, data); got != h {
		return fmt.Errorf("object %s: content hashes to %s", h, got)
	}
	return nil
}

// List returns the hashes of every stored object, sorted.
func (s *Store) List() ([]Hash, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, "objects"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list objects: %w", err)
	}
	var out []Hash
	for _, e := range entries {
		if e.IsDir() || !IsHash(e.Name()) {
			continue
		}
		out = append(out, Hash(e.Name()))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// Delete removes a stored object. Deleting an absent object reports
// ErrNotFound.
func (s *Store) Delete(h Hash) error {
	if !IsHash(string(h)) {
		return fmt.Errorf("delete %q: invalid hash", h)
	}
	if err := os.Remove(s.objectPath(h)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("delete %s: %w", h, ErrNotFound)
		}
		return fmt.Errorf("delete %s: %w", h, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

// WriteBlob serializes and stores a Blob.
func (s *Store) WriteBlob(b *Blob) (Hash, error) {
	return s.Write(TypeBlob, MarshalBlob(b))
}

// ReadBlob reads and deserializes a Blob.
func (s *Store) ReadBlob(h Hash) (*Blob, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != TypeBlob {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", h, objType, TypeBlob)
	}
	return UnmarshalBlob(data)
}

// WriteTree serializes and stores a TreeObj.
func (s *Store) WriteTree(tr *TreeObj) (Hash, error) {
	return s.Write(TypeTree, MarshalTree(tr))
}

// ReadTree reads and deserializes a TreeObj.
func (s *Store) ReadTree(h Hash) (*TreeObj, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != TypeTree {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", h, objType, TypeTree)
	}
	return UnmarshalTree(data)
}

// WriteCommit serializes and stores a CommitObj.
func (s *Store) WriteCommit(c *CommitObj) (Hash, error) {
	return s.Write(TypeCommit, MarshalCommit(c))
}

// ReadCommit reads and deserializes a CommitObj.
func (s *Store) ReadCommit(h Hash) (*CommitObj, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != TypeCommit {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", h, objType, TypeCommit)
	}
	return UnmarshalCommit(data)
}
