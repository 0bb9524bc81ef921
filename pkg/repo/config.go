package repo

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/odvcencio/minivcs/pkg/diff"
	"github.com/odvcencio/minivcs/pkg/object"
)

const (
	configFile   = "config"
	settingsFile = "settings.toml"
)

// Settings is the user-editable repository configuration stored in
// .vcs/settings.toml.
type Settings struct {
	User UserSettings `toml:"user"`
	Core CoreSettings `toml:"core"`
	Diff DiffSettings `toml:"diff"`
}

type UserSettings struct {
	Name  string `toml:"name"`
	Email string `toml:"email"`
}

type CoreSettings struct {
	// Compression is the object codec for new writes: "none" or "zstd".
	Compression string `toml:"compression"`
}

type DiffSettings struct {
	// Algorithm is "myers" or "matcher".
	Algorithm string `toml:"algorithm"`
}

// DefaultSettings returns the settings written by Init.
func DefaultSettings() *Settings {
	return &Settings{
		Core: CoreSettings{Compression: "none"},
		Diff: DiffSettings{Algorithm: "myers"},
	}
}

// readSettings decodes path. A missing file yields DefaultSettings.
func readSettings(path string) (*Settings, error) {
	s := DefaultSettings()
	md, err := toml.DecodeFile(path, s)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultSettings(), nil
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("read settings: unknown keys %s", strings.Join(keys, ", "))
	}
	return s, nil
}

func writeSettings(path string, s *Settings) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return fmt.Errorf("write settings: encode: %w", err)
	}
	return writeFileAtomic(path, buf.Bytes())
}

// WriteSettings atomically replaces .vcs/settings.toml. The handle keeps
// using the settings it was opened with.
func (r *Repo) WriteSettings(s *Settings) error {
	return writeSettings(filepath.Join(r.VCSDir, settingsFile), s)
}

// SettingKeys lists the keys accepted by Get and Set, in file order.
var SettingKeys = []string{"user.name", "user.email", "core.compression", "diff.algorithm"}

// Get returns the value stored under a dotted key such as "user.name".
func (s *Settings) Get(key string) (string, error) {
	switch key {
	case "user.name":
		return s.User.Name, nil
	case "user.email":
		return s.User.Email, nil
	case "core.compression":
		return s.Core.Compression, nil
	case "diff.algorithm":
		return s.Diff.Algorithm, nil
	}
	return "", fmt.Errorf("unknown setting %q", key)
}

// Set validates value and stores it under key. Codec and algorithm names
// are stored in their canonical form.
func (s *Settings) Set(key, value string) error {
	switch key {
	case "user.name":
		s.User.Name = strings.TrimSpace(value)
	case "user.email":
		s.User.Email = strings.TrimSpace(value)
	case "core.compression":
		c, err := object.ParseCompression(value)
		if err != nil {
			return err
		}
		s.Core.Compression = string(c)
	case "diff.algorithm":
		alg, err := diff.ParseAlgorithm(value)
		if err != nil {
			return err
		}
		s.Diff.Algorithm = string(alg)
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

// SetSetting updates one key in .vcs/settings.toml, leaving the others as
// they are on disk. Like WriteSettings it does not change the handle.
func (r *Repo) SetSetting(key, value string) error {
	path := filepath.Join(r.VCSDir, settingsFile)
	s, err := readSettings(path)
	if err != nil {
		return err
	}
	if err := s.Set(key, value); err != nil {
		return err
	}
	r.log().Debug("set setting", "key", key, "value", value)
	return r.WriteSettings(s)
}

// Identity returns the identity string recorded as author and committer.
// The settings user wins, then $VCS_AUTHOR, then $USER.
func (r *Repo) Identity() string {
	name := strings.TrimSpace(r.Settings.User.Name)
	if name == "" {
		name = strings.TrimSpace(os.Getenv("VCS_AUTHOR"))
	}
	if name == "" {
		name = strings.TrimSpace(os.Getenv("USER"))
	}
	if name == "" {
		name = "unknown"
	}
	if email := strings.TrimSpace(r.Settings.User.Email); email != "" {
		return fmt.Sprintf("%s <%s>", name, email)
	}
	return name
}

// readCurrentBranch reads the single-line .vcs/config. A missing or empty
// file means the default branch.
func (r *Repo) readCurrentBranch() (string, error) {
	data, err := os.ReadFile(filepath.Join(r.VCSDir, configFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultBranch, nil
		}
		return "", fmt.Errorf("read config: %w", err)
	}
	name := strings.TrimSpace(string(data))
	if name == "" {
		return DefaultBranch, nil
	}
	return name, nil
}

// setCurrentBranch records name in .vcs/config and on the handle.
func (r *Repo) setCurrentBranch(name string) error {
	if err := writeFileAtomic(filepath.Join(r.VCSDir, configFile), []byte(name+"\n")); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	r.Branch = name
	return nil
}

// writeFileAtomic writes data to a temp file beside path and renames it
// into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-tmp-*")
	if err != nil {
		return fmt.Errorf("tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
