package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the optional bodyfile configuration file.
type Config struct {
	Defaults DefaultsConfig `toml:"defaults"`
	Timeline TimelineConfig `toml:"timeline"`
	Theme    ThemeConfig    `toml:"theme"`
}

// DefaultsConfig holds persistent collection flag defaults. A nil field
// means the key was not set.
type DefaultsConfig struct {
	Hash          *string  `toml:"hash"`
	Workers       *int     `toml:"workers"`
	ReadLimit     *string  `toml:"read_limit"`
	Compress      *bool    `toml:"compress"`
	Header        *bool    `toml:"header"`
	MountPoint    *string  `toml:"mount_point"`
	HashCache     *bool    `toml:"hash_cache"`
	OneFileSystem *bool    `toml:"one_file_system"`
	Exclude       []string `toml:"exclude"`
}

// TimelineConfig holds defaults for the mactime subcommand.
type TimelineConfig struct {
	Timezone *string `toml:"timezone"`
	CSV      *bool   `toml:"csv"`
}

// ThemeConfig holds optional color overrides for the completion summary.
type ThemeConfig struct {
	OK     *string `toml:"ok"`
	Error  *string `toml:"error"`
	Muted  *string `toml:"muted"`
	Accent *string `toml:"accent"`
}

// Path returns the resolved path to the config file.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "bodyfile", "config.toml")
}

// Load reads the config file from the XDG path. Returns a zero Config
// (no error) if the file does not exist. Config is always optional.
func Load() (Config, error) {
	path := Path()
	if path == "" {
		return Config{}, nil
	}
	return LoadFile(path)
}

// LoadFile reads the config at path. A missing file yields a zero Config.
func LoadFile(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, nil
}
