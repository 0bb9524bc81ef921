package object

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Blob
// ---------------------------------------------------------------------------

// MarshalBlob serializes a Blob to raw bytes (identity).
func MarshalBlob(b *Blob) []byte {
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out
}

// UnmarshalBlob deserializes raw bytes into a Blob.
func UnmarshalBlob(data []byte) (*Blob, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return &Blob{Data: out}, nil
}

// ---------------------------------------------------------------------------
// TreeObj
// ---------------------------------------------------------------------------

// MarshalTree serializes a TreeObj. Entries are sorted by Path for
// deterministic output:
//
//	version 1
//	<blobhash> <pathlen> <path>
//	...
//
// The byte length prefix lets a path carry spaces or newlines.
func MarshalTree(tr *TreeObj) []byte {
	sorted := make([]TreeEntry, len(tr.Entries))
	copy(sorted, tr.Entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Path < sorted[j].Path
	})

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "version %d\n", FormatVersion)
	for _, e := range sorted {
		fmt.Fprintf(&buf, "%s %d %s\n", e.BlobHash, len(e.Path), e.Path)
	}
	return buf.Bytes()
}

// UnmarshalTree parses a TreeObj from its serialized form.
func UnmarshalTree(data []byte) (*TreeObj, error) {
	rest, err := consumeVersion(data)
	if err != nil {
		return nil, fmt.Errorf("unmarshal tree: %w", err)
	}

	tr := &TreeObj{}
	for len(rest) > 0 {
		// "<hash> <len> "
		sp := bytes.IndexByte(rest, ' ')
		if sp != HashLen {
			return nil, fmt.Errorf("unmarshal tree: malformed entry at %q", truncate(rest))
		}
		h := Hash(rest[:sp])
		rest = rest[sp+1:]

		sp = bytes.IndexByte(rest, ' ')
		if sp < 0 {
			return nil, fmt.Errorf("unmarshal tree: missing path length for %s", h)
		}
		n, err := strconv.Atoi(string(rest[:sp]))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("unmarshal tree: bad path length %q", rest[:sp])
		}
		rest = rest[sp+1:]
		if len(rest) < n+1 || rest[n] != '\n' {
			return nil, fmt.Errorf("unmarshal tree: truncated path for %s", h)
		}
		tr.Entries = append(tr.Entries, TreeEntry{Path: string(rest[:n]), BlobHash: h})
		rest = rest[n+1:]
	}
	return tr, nil
}

// ---------------------------------------------------------------------------
// CommitObj
// ---------------------------------------------------------------------------

// MarshalCommit serializes a CommitObj:
//
//	version 1
//	tree H
//	parent H      (zero or more)
//	author "A"
//	committer "C"
//	timestamp T
//
//	message
//
// Identities are Go-quoted so they may hold any character.
func MarshalCommit(c *CommitObj) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "version %d\n", FormatVersion)
	fmt.Fprintf(&buf, "tree %s\n", string(c.TreeHash))
	for _, p := range c.Parents {
		fmt.Fprintf(&buf, "parent %s\n", string(p))
	}
	fmt.Fprintf(&buf, "author %s\n", strconv.Quote(c.Author))
	fmt.Fprintf(&buf, "committer %s\n", strconv.Quote(c.Committer))
	fmt.Fprintf(&buf, "timestamp %d\n", c.Timestamp)
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}

// UnmarshalCommit parses a CommitObj from its serialized form. Everything
// after the first blank line is the message.
func UnmarshalCommit(data []byte) (*CommitObj, error) {
	rest, err := consumeVersion(data)
	if err != nil {
		return nil, fmt.Errorf("unmarshal commit: %w", err)
	}
	idx := bytes.Index(rest, []byte("\n\n"))
	if idx < 0 {
		return nil, fmt.Errorf("unmarshal commit: missing header/message separator")
	}
	header := string(rest[:idx])
	message := string(rest[idx+2:])

	c := &CommitObj{Message: message}
	for _, line := range strings.Split(header, "\n") {
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("unmarshal commit: malformed header line %q", line)
		}
		switch key {
		case "tree":
			c.TreeHash = Hash(val)
		case "parent":
			c.Parents = append(c.Parents, Hash(val))
		case "author":
			s, err := strconv.Unquote(val)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: bad author %q: %w", val, err)
			}
			c.Author = s
		case "committer":
			s, err := strconv.Unquote(val)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: bad committer %q: %w", val, err)
			}
			c.Committer = s
		case "timestamp":
			ts, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: bad timestamp %q: %w", val, err)
			}
			c.Timestamp = ts
		default:
			return nil, fmt.Errorf("unmarshal commit: unknown header key %q", key)
		}
	}
	if c.TreeHash == "" {
		return nil, fmt.Errorf("unmarshal commit: missing tree")
	}
	if len(c.Parents) > 2 {
		return nil, fmt.Errorf("unmarshal commit: %d parents, at most 2 allowed", len(c.Parents))
	}
	return c, nil
}

// consumeVersion strips the leading "version N\n" line and rejects formats
// newer than this build understands.
func consumeVersion(data []byte) ([]byte, error) {
	nl := bytes.IndexByte(data, '\n')
	if nl < 0 {
		return nil, fmt.Errorf("missing version line")
	}
	key, val, ok := strings.Cut(string(data[:nl]), " ")
	if !ok || key != "version" {
		return nil, fmt.Errorf("missing version line")
	}
	v, err := strconv.Atoi(val)
	if err != nil {
		return nil, fmt.Errorf("bad version %q", val)
	}
	if v < 1 || v > FormatVersion {
		return nil, fmt.Errorf("unsupported format version %d", v)
	}
	return data[nl+1:], nil
}

func truncate(b []byte) string {
	const max = 32
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
