package repo

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/odvcencio/minivcs/pkg/object"
)

// Staging holds the index: the staged blob hash for each repo-relative path.
type Staging struct {
	Entries map[string]object.Hash
}

// NewStaging returns an empty index.
func NewStaging() *Staging {
	return &Staging{Entries: make(map[string]object.Hash)}
}

// StagingFromMap copies a path -> hash mapping into a new index.
func StagingFromMap(m map[string]object.Hash) *Staging {
	s := &Staging{Entries: make(map[string]object.Hash, len(m))}
	for p, h := range m {
		s.Entries[p] = h
	}
	return s
}

func (s *Staging) Stage(path string, h object.Hash) {
	s.Entries[path] = h
}

func (s *Staging) Clear() {
	s.Entries = make(map[string]object.Hash)
}

func (s *Staging) Len() int {
	return len(s.Entries)
}

// Paths returns the staged paths in sorted order.
func (s *Staging) Paths() []string {
	paths := make([]string, 0, len(s.Entries))
	for p := range s.Entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Marshal encodes the index as one "path hash" line per entry, sorted by
// path. Paths that would not survive whitespace splitting are Go-quoted.
func (s *Staging) Marshal() []byte {
	var buf bytes.Buffer
	for _, p := range s.Paths() {
		buf.WriteString(quoteIndexPath(p))
		buf.WriteByte(' ')
		buf.WriteString(string(s.Entries[p]))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// quoteIndexPath quotes p unless it reads back as a single whitespace-free
// field. Any rune strings.Fields would split on, any unprintable rune and
// invalid UTF-8 force quoting.
func quoteIndexPath(p string) string {
	if p == "" || strings.ContainsAny(p, `"\`) || !utf8.ValidString(p) ||
		strings.ContainsFunc(p, needsQuote) {
		return strconv.Quote(p)
	}
	return p
}

// needsQuote reports runes that would split or mangle an unquoted path:
// any Unicode space (including \v, \f and U+00A0) or a non-printable rune.
func needsQuote(c rune) bool {
	return unicode.IsSpace(c) || !strconv.IsPrint(c)
}

// ParseStaging decodes an index. Lines that do not hold exactly a path and a
// hash are skipped with a warning on logger.
func ParseStaging(data []byte, logger *slog.Logger) *Staging {
	if logger == nil {
		logger = slog.Default()
	}
	s := NewStaging()
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		path, h, ok := parseIndexLine(line)
		if !ok {
			logger.Warn("index: skipping malformed line", "line", lineNo, "content", line)
			continue
		}
		s.Entries[path] = h
	}
	if err := scanner.Err(); err != nil {
		logger.Warn("index: stopped reading", "line", lineNo+1, "error", err)
	}
	return s
}

func parseIndexLine(line string) (string, object.Hash, bool) {
	var path, rest string
	if strings.HasPrefix(line, `"`) {
		quoted, err := strconv.QuotedPrefix(line)
		if err != nil {
			return "", "", false
		}
		path, err = strconv.Unquote(quoted)
		if err != nil {
			return "", "", false
		}
		rest = line[len(quoted):]
		if rest == "" || (rest[0] != ' ' && rest[0] != '\t') {
			return "", "", false
		}
		fields := strings.Fields(rest)
		if len(fields) != 1 {
			return "", "", false
		}
		rest = fields[0]
	} else {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return "", "", false
		}
		path, rest = fields[0], fields[1]
	}
	if path == "" || !object.IsHash(rest) {
		return "", "", false
	}
	return path, object.Hash(rest), true
}

func (r *Repo) indexPath() string {
	return filepath.Join(r.VCSDir, "index")
}

// ReadStaging loads the index from .vcs/index. If the file does not exist,
// an empty Staging is returned (no error).
func (r *Repo) ReadStaging() (*Staging, error) {
	data, err := os.ReadFile(r.indexPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewStaging(), nil
		}
		return nil, fmt.Errorf("read staging: %w", err)
	}
	return ParseStaging(data, r.log()), nil
}

// WriteStaging atomically writes the index to .vcs/index.
func (r *Repo) WriteStaging(s *Staging) error {
	if err := writeFileAtomic(r.indexPath(), s.Marshal()); err != nil {
		return fmt.Errorf("write staging: %w", err)
	}
	return nil
}

// Add stages the given paths. Each path is resolved relative to the repo
// root; a directory stages every file beneath it except untracked files
// matched by .vcsignore. The content of each file is
// written as a blob and the index is flushed once at the end, so a missing
// path leaves the index untouched.
func (r *Repo) Add(paths []string) error {
	stg, err := r.ReadStaging()
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	ignore, err := r.LoadIgnore()
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	_, headMap, err := r.headFiles()
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}

	for _, p := range paths {
		relPath, err := r.repoRelPath(p)
		if err != nil {
			return fmt.Errorf("add: resolve path %q: %w", p, err)
		}
		if isMetadataPath(relPath) {
			return fmt.Errorf("add: %q is inside %s", p, DirName)
		}

		files, err := r.expandPath(relPath, func(f string) bool {
			_, staged := stg.Entries[f]
			_, committed := headMap[f]
			return !staged && !committed && ignore.IsIgnored(f)
		})
		if err != nil {
			return fmt.Errorf("add: %w", err)
		}
		for _, f := range files {
			h, err := r.hashWorkingFile(f, true)
			if err != nil {
				return fmt.Errorf("add: %w", err)
			}
			stg.Stage(f, h)
			r.log().Debug("staged", "path", f, "blob", h)
		}
	}

	if err := r.WriteStaging(stg); err != nil {
		return fmt.Errorf("add: %w", err)
	}
	return nil
}

// expandPath returns rel itself for a file, or every working file beneath it
// for a directory. skip filters directory members only; a file named
// explicitly is always returned. Only regular files are tracked: symlinks
// inside a directory are passed over and a symlink named explicitly is an
// error.
func (r *Repo) expandPath(rel string, skip func(string) bool) ([]string, error) {
	info, err := os.Lstat(r.absPath(rel))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%q: %w", rel, ErrPathNotFound)
		}
		return nil, err
	}
	switch {
	case info.Mode().IsRegular():
		return []string{rel}, nil
	case !info.IsDir():
		return nil, fmt.Errorf("%q is not a regular file", rel)
	}

	var files []string
	all, err := r.workingFiles()
	if err != nil {
		return nil, err
	}
	prefix := rel + "/"
	for p, mode := range all {
		if !mode.IsRegular() {
			continue
		}
		if (rel == "." || strings.HasPrefix(p, prefix)) && !skip(p) {
			files = append(files, p)
		}
	}
	sort.Strings(files)
	return files, nil
}
