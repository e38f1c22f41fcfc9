package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported config format")
	ErrInvalid           = errors.New("invalid config")
)

type Config struct {
	Catalog   CatalogConfig   `yaml:"catalog" toml:"catalog"`
	Entities  EntitiesConfig  `yaml:"entities" toml:"entities"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
	Inspector InspectorConfig `yaml:"inspector" toml:"inspector"`
	Watch     WatchConfig     `yaml:"watch" toml:"watch"`
}

type CatalogConfig struct {
	// Folders merge in order; a later folder wins on repeated ids.
	Folders []string `yaml:"folders" toml:"folders"`
	Workers int      `yaml:"workers" toml:"workers"`
}

type EntitiesConfig struct {
	CorePath  string `yaml:"core_path" toml:"core_path"`
	ScenesDir string `yaml:"scenes_dir" toml:"scenes_dir"`
	Scene     string `yaml:"scene" toml:"scene"`
	// Override is a path to an entities payload replacing both sources.
	Override string `yaml:"override" toml:"override"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"` // "json" or "console"
}

type InspectorConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Addr    string `yaml:"addr" toml:"addr"`
	Token   string `yaml:"token" toml:"token"`
}

type WatchConfig struct {
	Enabled  bool          `yaml:"enabled" toml:"enabled"`
	Debounce time.Duration `yaml:"debounce" toml:"debounce"`
}

// Load reads path over the defaults. The format follows the extension:
// .yaml/.yml or .toml. Relative data paths resolve against the file's
// directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.resolve(filepath.Dir(path))
	return cfg, cfg.Validate()
}

func Default() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Folders: []string{"data/components"},
		},
		Entities: EntitiesConfig{
			CorePath:  "data/entities/core.json",
			ScenesDir: "data/entities/scenes",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Inspector: InspectorConfig{
			Addr: "127.0.0.1:8088",
		},
		Watch: WatchConfig{
			Debounce: 250 * time.Millisecond,
		},
	}
}

func (c *Config) Validate() error {
	var errs []error
	if len(c.Catalog.Folders) == 0 {
		errs = append(errs, errors.New("catalog.folders is empty"))
	}
	if c.Catalog.Workers < 0 {
		errs = append(errs, errors.New("catalog.workers is negative"))
	}
	if c.Entities.CorePath == "" && c.Entities.ScenesDir == "" && c.Entities.Override == "" {
		errs = append(errs, errors.New("entities: no core_path, scenes_dir or override"))
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q", c.Logging.Format))
	}
	if c.Inspector.Enabled && c.Inspector.Addr == "" {
		errs = append(errs, errors.New("inspector.addr is empty"))
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, errors.New("watch.debounce is negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// WatchDirs lists the directories a reload watcher should observe.
func (c *Config) WatchDirs() []string {
	seen := make(map[string]bool)
	var dirs []string
	add := func(dir string) {
		if dir == "" || seen[dir] {
			return
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}
	for _, f := range c.Catalog.Folders {
		add(f)
	}
	if c.Entities.CorePath != "" {
		add(filepath.Dir(c.Entities.CorePath))
	}
	add(c.Entities.ScenesDir)
	return dirs
}

func (c *Config) resolve(base string) {
	for i, f := range c.Catalog.Folders {
		c.Catalog.Folders[i] = join(base, f)
	}
	c.Entities.CorePath = join(base, c.Entities.CorePath)
	c.Entities.ScenesDir = join(base, c.Entities.ScenesDir)
	c.Entities.Override = join(base, c.Entities.Override)
}

func join(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
