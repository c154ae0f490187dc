package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"vine/internal/driver"
)

const manifestName = "vine.toml"

type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
}

type projectConfig struct {
	Emit emitConfig `toml:"emit"`
}

type emitConfig struct {
	// Program is the default input bundle, relative to the manifest.
	Program string `toml:"program"`
	// Output is the default output path, relative to the manifest.
	Output string `toml:"output"`
	Format string `toml:"format"`
	Jobs   int    `toml:"jobs"`
}

func findVineToml(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, manifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// loadProjectManifest finds and parses the nearest vine.toml at or above
// startDir. A missing manifest is not an error.
func loadProjectManifest(startDir string) (*projectManifest, bool, error) {
	manifestPath, ok, err := findVineToml(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := loadProjectConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &projectManifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

func loadProjectConfig(path string) (projectConfig, error) {
	var cfg projectConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return projectConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return projectConfig{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if cfg.Emit.Jobs < 0 {
		return projectConfig{}, fmt.Errorf("%s: [emit].jobs must not be negative", path)
	}
	if _, err := driver.ParseOutputFormat(cfg.Emit.Format); err != nil {
		return projectConfig{}, fmt.Errorf("%s: [emit].format: %w", path, err)
	}
	return cfg, nil
}

// resolve returns p relative to the manifest's directory.
func (m *projectManifest) resolve(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Root, filepath.FromSlash(p))
}
