package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// DefaultSections is the documentation structure used when neither
// DOCS_SECTIONS nor SECTIONS_FILE is set. Order matters: the first section
// with documents is the /docs landing target.
var DefaultSections = []Section{
	{Key: "getting-started", Title: "Getting Started"},
	{Key: "troubleshooting", Title: "Troubleshooting"},
	{Key: "creating-mods", Title: "Creating Mods"},
	{Key: "desktop-mate", Title: "Desktop Mate"},
	{Key: "submitting-mods", Title: "Submitting Mods"},
}

// Section is a configured documentation section.
type Section struct {
	Key   string `yaml:"key" json:"key"`
	Title string `yaml:"title" json:"title"`
}

type Config struct {
	Port string

	// Content
	ContentDir   string
	Sections     []Section
	SectionsFile string

	// Environment; "production" turns on the document cache.
	Env          string
	CacheSetting string // CONTENT_CACHE override: "true"/"false", empty = follow Env

	// Rendering
	HighlightStyle string

	// Sitemap
	BaseURL string

	LogLevel string

	// HTTP server
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

func Load() (Config, error) {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		ContentDir:   envOr("CONTENT_DIR", "content/docs"),
		SectionsFile: os.Getenv("SECTIONS_FILE"),

		Env:          envOr("APP_ENV", "development"),
		CacheSetting: os.Getenv("CONTENT_CACHE"),

		HighlightStyle: envOr("HIGHLIGHT_STYLE", "monokai"),

		BaseURL: strings.TrimRight(envOr("BASE_URL", "https://dskt.cc"), "/"),

		LogLevel: strings.ToLower(envOr("LOG_LEVEL", "info")),

		ReadTimeout:     envDuration("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    envDuration("WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:     envDuration("IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	switch {
	case cfg.SectionsFile != "":
		sections, err := LoadSectionsFile(cfg.SectionsFile)
		if err != nil {
			return cfg, err
		}
		cfg.Sections = sections
	case os.Getenv("DOCS_SECTIONS") != "":
		cfg.Sections = ParseSectionList(os.Getenv("DOCS_SECTIONS"))
	default:
		cfg.Sections = append([]Section(nil), DefaultSections...)
	}

	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 30 * time.Second
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.ContentDir == "" {
		return fmt.Errorf("CONTENT_DIR is required")
	}
	if len(c.Sections) == 0 {
		return fmt.Errorf("at least one documentation section is required")
	}
	seen := make(map[string]bool, len(c.Sections))
	for _, s := range c.Sections {
		if s.Key == "" || s.Key == "." || s.Key == ".." || strings.ContainsAny(s.Key, `/\`) {
			return fmt.Errorf("invalid section key %q", s.Key)
		}
		if seen[s.Key] {
			return fmt.Errorf("duplicate section key %q", s.Key)
		}
		seen[s.Key] = true
	}
	if _, ok := levels[c.LogLevel]; !ok {
		return fmt.Errorf("invalid LOG_LEVEL %q", c.LogLevel)
	}
	if c.CacheSetting != "" {
		if _, err := strconv.ParseBool(c.CacheSetting); err != nil {
			return fmt.Errorf("invalid CONTENT_CACHE %q", c.CacheSetting)
		}
	}
	return nil
}

// CacheEnabled reports whether resolved documents are kept for the process
// lifetime.
func (c Config) CacheEnabled() bool {
	if b, err := strconv.ParseBool(c.CacheSetting); err == nil {
		return b
	}
	return c.Env == "production"
}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	if l, ok := levels[c.LogLevel]; ok {
		return l
	}
	return slog.LevelInfo
}

// LoadSectionsFile reads a YAML document of the form
//
//	sections:
//	  - key: getting-started
//	    title: Getting Started
func LoadSectionsFile(path string) ([]Section, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sections file: %w", err)
	}
	var doc struct {
		Sections []Section `yaml:"sections"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse sections file %s: %w", path, err)
	}
	for i := range doc.Sections {
		doc.Sections[i].Key = strings.TrimSpace(doc.Sections[i].Key)
		if doc.Sections[i].Title == "" {
			doc.Sections[i].Title = TitleFromKey(doc.Sections[i].Key)
		}
	}
	return doc.Sections, nil
}

// ParseSectionList parses a comma-separated list of section keys.
func ParseSectionList(v string) []Section {
	var sections []Section
	for _, key := range strings.Split(v, ",") {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		sections = append(sections, Section{Key: key, Title: TitleFromKey(key)})
	}
	return sections
}

// TitleFromKey turns "creating-mods" into "Creating Mods".
func TitleFromKey(key string) string {
	words := strings.NewReplacer("-", " ", "_", " ").Replace(key)
	return cases.Title(language.English).String(words)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
