// Package config loads .triage/config.yaml: storage backend, refresh
// interval, tag vocabulary and the timeblock catalog.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pablasso/triage/internal/store"
	"github.com/pablasso/triage/internal/todo"
	"gopkg.in/yaml.v3"
)

const (
	// DirName is the data directory created by `triage init`.
	DirName  = ".triage"
	fileName = "config.yaml"
)

// Config is the full triage configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`

	// How often the board reclassifies against the clock.
	RefreshInterval time.Duration `yaml:"refresh_interval"`

	// Tag vocabulary offered by the board filter keys.
	Tags []string `yaml:"tags"`

	Timeblocks []TimeblockConfig `yaml:"timeblocks"`
}

// StorageConfig selects the task store backend.
type StorageConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path,omitempty"`
}

// TimeblockConfig is one catalog entry. Times are HH:MM; days are weekday
// names or three-letter abbreviations.
type TimeblockConfig struct {
	Name  string   `yaml:"name"`
	Start string   `yaml:"start,omitempty"`
	End   string   `yaml:"end,omitempty"`
	Days  []string `yaml:"days,omitempty,flow"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{
		Storage:         StorageConfig{Backend: store.BackendJSON},
		RefreshInterval: time.Minute,
		Tags:            []string{"Home", "Work", "Groceries", "App", "Mentally Difficult"},
	}
	for _, r := range todo.DefaultRules() {
		cfg.Timeblocks = append(cfg.Timeblocks, fromRule(r))
	}
	return cfg
}

// Path returns the config file inside dataDir.
func Path(dataDir string) string {
	return filepath.Join(dataDir, fileName)
}

// Load reads dataDir/config.yaml over the defaults. A missing file yields
// the defaults.
func Load(dataDir string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(Path(dataDir))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", Path(dataDir), err)
	}
	return cfg, nil
}

// Save writes cfg to dataDir/config.yaml, creating the directory.
func Save(dataDir string, cfg *Config) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("# triage configuration\n")
	buf.WriteString("# storage.backend: json | sqlite | memory\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return os.WriteFile(Path(dataDir), buf.Bytes(), 0644)
}

// WriteDefault writes the default configuration to dataDir.
func WriteDefault(dataDir string) error {
	return Save(dataDir, Default())
}

// Validate checks the backend, the interval and every timeblock.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case store.BackendJSON, store.BackendSQLite, store.BackendMemory:
	case "":
		c.Storage.Backend = store.BackendJSON
	default:
		return fmt.Errorf("storage.backend: unknown backend %q", c.Storage.Backend)
	}

	if c.RefreshInterval < 0 {
		return fmt.Errorf("refresh_interval: must not be negative")
	}
	if c.RefreshInterval == 0 {
		c.RefreshInterval = time.Minute
	}

	for i, tb := range c.Timeblocks {
		if _, err := tb.Rule(); err != nil {
			return fmt.Errorf("timeblocks[%d]: %w", i, err)
		}
	}
	return nil
}

// StoreOptions maps the storage section to store options.
func (c *Config) StoreOptions() store.Options {
	return store.Options{Backend: c.Storage.Backend, Path: c.Storage.Path}
}

// Catalog builds the timeblock catalog. Entries that fail to parse are
// skipped; Load has already rejected them.
func (c *Config) Catalog() *todo.Catalog {
	rules := make([]todo.Rule, 0, len(c.Timeblocks))
	for _, tb := range c.Timeblocks {
		r, err := tb.Rule()
		if err != nil {
			continue
		}
		rules = append(rules, r)
	}
	return todo.NewCatalog(rules...)
}

// Rule parses the entry.
func (tb TimeblockConfig) Rule() (todo.Rule, error) {
	if strings.TrimSpace(tb.Name) == "" {
		return todo.Rule{}, fmt.Errorf("name is required")
	}
	r := todo.Rule{Name: tb.Name}

	var err error
	if r.Start, err = parseClock(tb.Start); err != nil {
		return todo.Rule{}, fmt.Errorf("%s: start: %w", tb.Name, err)
	}
	if r.End, err = parseClock(tb.End); err != nil {
		return todo.Rule{}, fmt.Errorf("%s: end: %w", tb.Name, err)
	}
	for _, d := range tb.Days {
		day, err := ParseWeekday(d)
		if err != nil {
			return todo.Rule{}, fmt.Errorf("%s: %w", tb.Name, err)
		}
		r.Days = append(r.Days, day)
	}
	return r, nil
}

func parseClock(s string) (*todo.ClockTime, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return nil, fmt.Errorf("invalid time %q (expected HH:MM)", s)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return nil, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return nil, fmt.Errorf("invalid minute in %q", s)
	}
	return &todo.ClockTime{Hour: hour, Minute: minute}, nil
}

// ParseWeekday accepts full weekday names or three-letter abbreviations.
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || name == full[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}

func fromRule(r todo.Rule) TimeblockConfig {
	tb := TimeblockConfig{Name: r.Name}
	if r.Start != nil {
		tb.Start = r.Start.String()
	}
	if r.End != nil {
		tb.End = r.End.String()
	}
	for _, d := range r.Days {
		tb.Days = append(tb.Days, strings.ToLower(d.String()[:3]))
	}
	return tb
}
