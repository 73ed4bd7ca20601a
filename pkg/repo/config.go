package repo

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is the repository-local settings file inside .git/.
const ConfigFileName = "tinygit.toml"

// Config stores repository-local settings.
type Config struct {
	User    UserConfig    `toml:"user"`
	Core    CoreConfig    `toml:"core"`
	Signing SigningConfig `toml:"signing"`
}

// UserConfig is the default author and committer identity.
type UserConfig struct {
	Name  string `toml:"name"`
	Email string `toml:"email"`
}

// CoreConfig tunes object storage and tree building.
type CoreConfig struct {
	// Compression is the zlib level for new loose objects; -1 is the zlib
	// default and 0 stores them uncompressed.
	Compression int `toml:"compression"`
	// IgnoreFile names a gitignore-style file at the work-tree root whose
	// patterns are excluded from write-tree. Empty disables ignore rules.
	IgnoreFile string `toml:"ignorefile"`
}

// SigningConfig selects the SSH key used to sign commits. Empty disables
// signing unless the caller asks for it explicitly.
type SigningConfig struct {
	Key string `toml:"key"`
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Core: CoreConfig{
			Compression: -1,
			IgnoreFile:  ".gitignore",
		},
	}
}

// Identity returns "Name <email>" for commit headers, falling back to
// "unknown" when no user name is configured.
func (c *Config) Identity() string {
	name := strings.TrimSpace(c.User.Name)
	if name == "" {
		name = "unknown"
	}
	return fmt.Sprintf("%s <%s>", name, strings.TrimSpace(c.User.Email))
}

func (r *Repo) configPath() string {
	return filepath.Join(r.GitDir, ConfigFileName)
}

// ReadConfig reads .git/tinygit.toml. A missing file yields DefaultConfig;
// keys absent from the file keep their defaults.
func (r *Repo) ReadConfig() (*Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(r.configPath(), cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		r.logger.Sugar().Warnw("ignoring unknown config keys", "keys", undecoded)
	}
	if cfg.Core.Compression < -1 || cfg.Core.Compression > 9 {
		return nil, fmt.Errorf("read config: core.compression %d out of range [-1, 9]", cfg.Core.Compression)
	}
	return cfg, nil
}

// WriteConfig atomically writes .git/tinygit.toml and makes cfg the
// repository's active configuration for identity and ignore settings.
// Compression changes apply the next time the repository is opened.
func (r *Repo) WriteConfig(cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("write config: marshal: %w", err)
	}

	tmp, err := os.CreateTemp(r.GitDir, ".config-tmp-*")
	if err != nil {
		return fmt.Errorf("write config: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write config: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: close: %w", err)
	}
	if err := os.Rename(tmpName, r.configPath()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: rename: %w", err)
	}
	r.Config = cfg
	return nil
}
