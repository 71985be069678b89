package config

import (
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ConfigFileName is the name of the config file.
const ConfigFileName = "gridview.yaml"

// ConfigFileNameAlt is the alternate name of the config file.
const ConfigFileNameAlt = "gridview.yml"

// LoadFromDir loads a ProjectConfig from the given directory.
// Returns nil, nil if no config file is found.
func LoadFromDir(dir string) (*ProjectConfig, error) {
	// Find config file
	configPath := FindConfigFile(dir)
	if configPath == "" {
		return nil, nil
	}

	// Load with koanf
	k := koanf.New(".")
	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		return nil, err
	}

	// Unmarshal into ProjectConfig
	var cfg ProjectConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	// Dataset paths are relative to the config file; URLs and in-memory
	// databases are left as written.
	if cfg.Source != nil && cfg.Source.Path != "" && !filepath.IsAbs(cfg.Source.Path) &&
		InferSourceType(cfg.Source.Path) != SourceHTTP && cfg.Source.Path != ":memory:" {
		cfg.Source.Path = filepath.Join(dir, cfg.Source.Path)
	}
	// Apply defaults
	cfg.ApplyDefaults()

	return &cfg, nil
}

// FindConfigFile returns the config file in dir, or "" if there is none.
func FindConfigFile(dir string) string {
	for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// FindProjectRoot walks up from startDir to the first directory holding a
// gridview config file. Returns "" if none is found.
func FindProjectRoot(startDir string) string {
	dir := startDir
	for {
		if FindConfigFile(dir) != "" {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return ""
		}
		dir = parent
	}
}
