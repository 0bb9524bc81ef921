package repo

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"regexp"
	"strings"
)

// IgnoreFile is the name of the per-repository ignore file at the root.
const IgnoreFile = ".vcsignore"

// IgnoreChecker decides whether an untracked path is hidden from status and
// from directory adds. Tracked files are never affected.
type IgnoreChecker struct {
	patterns []ignorePattern
}

type ignorePattern struct {
	pattern  string
	negated  bool
	dirOnly  bool
	hasSlash bool // match against the full path instead of the base name
	regex    *regexp.Regexp
}

// LoadIgnore reads the ignore file from the repository root. A missing file
// yields a checker that ignores nothing.
func (r *Repo) LoadIgnore() (*IgnoreChecker, error) {
	ic := &IgnoreChecker{}
	f, err := os.Open(r.absPath(IgnoreFile))
	if err != nil {
		if os.IsNotExist(err) {
			return ic, nil
		}
		return nil, fmt.Errorf("read %s: %w", IgnoreFile, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if p := parseIgnoreLine(scanner.Text()); p != nil {
			ic.patterns = append(ic.patterns, *p)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", IgnoreFile, err)
	}
	return ic, nil
}

// parseIgnoreLine returns nil for blank lines and # comments.
func parseIgnoreLine(line string) *ignorePattern {
	line = strings.TrimRight(line, " \t")
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	p := &ignorePattern{}
	if strings.HasPrefix(line, "!") {
		p.negated = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimRight(line, "/")
	}
	anchored := strings.HasPrefix(line, "/")
	line = strings.TrimPrefix(line, "/")
	if line == "" {
		return nil
	}

	p.hasSlash = anchored || strings.Contains(line, "/")
	p.pattern = line
	if strings.Contains(line, "**") {
		if re, err := regexp.Compile(globToRegex(line)); err == nil {
			p.regex = re
		}
	}
	return p
}

// IsIgnored reports whether the slash-separated repo-relative path rel is
// ignored. The last matching pattern wins so "!" can re-include a path.
func (ic *IgnoreChecker) IsIgnored(rel string) bool {
	if ic == nil {
		return false
	}
	ignored := false
	for i := range ic.patterns {
		p := &ic.patterns[i]
		if p.matches(rel) {
			ignored = !p.negated
		}
	}
	return ignored
}

// matches checks rel and each of its parent directories, so a pattern that
// names a directory hides everything beneath it.
func (p *ignorePattern) matches(rel string) bool {
	dirs := strings.Split(rel, "/")
	for i := 1; i <= len(dirs); i++ {
		candidate := strings.Join(dirs[:i], "/")
		isDir := i < len(dirs)
		if p.dirOnly && !isDir {
			continue
		}
		target := path.Base(candidate)
		if p.hasSlash {
			target = candidate
		}
		if p.match(target) {
			return true
		}
	}
	return false
}

func (p *ignorePattern) match(target string) bool {
	if p.regex != nil {
		return p.regex.MatchString(target)
	}
	matched, _ := path.Match(p.pattern, target)
	return matched
}

// globToRegex translates a pattern containing "**" into an anchored regexp.
// "**/" matches zero or more directories; a lone "*" stays within a segment.
func globToRegex(pattern string) string {
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		switch {
		case ch == '*' && i+1 < len(pattern) && pattern[i+1] == '*':
			if i+2 < len(pattern) && pattern[i+2] == '/' {
				b.WriteString("(?:.*/)?")
				i += 2
			} else {
				b.WriteString(".*")
				i++
			}
		case ch == '*':
			b.WriteString("[^/]*")
		case ch == '?':
			b.WriteString("[^/]")
		default:
			if strings.ContainsRune(`.+()|[]{}^$\`, rune(ch)) {
				b.WriteByte('\\')
			}
			b.WriteByte(ch)
		}
	}
	b.WriteString("$")
	return b.String()
}
