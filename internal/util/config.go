package util

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const DefaultConfigFile = "quill.toml"

type Configuration struct {
	Version   string `toml:"-"`
	BuildDate string `toml:"-"`
	Commit    string `toml:"-"`
	RootPath  string `toml:"root"`
	QuillHome string `toml:"-"`

	LogLevel string      `toml:"log-level"`
	LogFile  string      `toml:"log-file"`
	Trace    TraceConfig `toml:"trace"`
}

// TraceConfig selects the call journal backend. An empty Driver disables it.
type TraceConfig struct {
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

func DefaultConfiguration() Configuration {
	return Configuration{
		RootPath:  ".",
		QuillHome: os.Getenv("QUILL_HOME"),
		LogLevel:  "none",
	}
}

// LoadConfig overlays the TOML file at path onto the defaults. A missing file
// is only an error when required is set.
func LoadConfig(path string, required bool) (Configuration, error) {
	cfg := DefaultConfiguration()
	if path == "" {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return cfg, nil
		}
		return cfg, fmt.Errorf("cannot read %s: %w", path, err)
	}

	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return cfg, fmt.Errorf("parse error in %s: %w", path, err)
	}

	if cfg.Trace.Driver == "sqlite3" && cfg.Trace.DSN != "" && !filepath.IsAbs(cfg.Trace.DSN) && cfg.Trace.DSN != ":memory:" {
		cfg.Trace.DSN = filepath.Join(filepath.Dir(path), cfg.Trace.DSN)
	}
	return cfg, nil
}
