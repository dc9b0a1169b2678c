// Package config loads the optional .archmap.yaml project configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mpetrov/archmap/internal/analyzer"
	"github.com/mpetrov/archmap/internal/entity"
	"github.com/mpetrov/archmap/internal/scanner"
	"github.com/mpetrov/archmap/internal/usecase"
)

const (
	// DefaultPath is the config file looked up in the analyzed root.
	DefaultPath = ".archmap.yaml"

	// DefaultDatabase is where analyses are persisted.
	DefaultDatabase = ".archmap.db"
)

// Config holds all analyzer and CLI settings. Every field is optional; a
// missing or empty file yields pure defaults.
type Config struct {
	// IgnoreDirs adds directory names to the scanner's built-in skip list.
	IgnoreDirs []string `yaml:"ignore_dirs"`

	// MaxDepth bounds directory recursion below the root. 0 means unlimited.
	MaxDepth int `yaml:"max_depth"`

	// IncludeTests scans test files too; they are skipped by default.
	IncludeTests bool `yaml:"include_tests"`

	// Extensions maps extra file extensions to a language name:
	// "python", "javascript", "typescript", "ruby" or "go".
	Extensions map[string]string `yaml:"extensions"`

	// AuthMarkers maps extra auth marker substrings to an auth class:
	// "session", "token" or "internal".
	AuthMarkers map[string]string `yaml:"auth_markers"`

	// TraversalDepth bounds use-case graph traversal (default 8).
	TraversalDepth int `yaml:"traversal_depth"`

	// Database is the SQLite file analyses are saved to (default .archmap.db).
	Database string `yaml:"database"`

	// ExportFormat is the default export format: "markdown" or "json".
	ExportFormat string `yaml:"export_format"`
}

// Load reads a configuration YAML file. A missing file is not an error:
// defaults apply. Unknown fields and invalid auth classes are rejected.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		var cfg Config
		cfg.applyDefaults()
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	if _, err := cfg.AuthClasses(); err != nil {
		return Config{}, err
	}
	if _, err := cfg.ExtraExtensions(); err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.TraversalDepth == 0 {
		c.TraversalDepth = usecase.DefaultMaxDepth
	}
	if c.Database == "" {
		c.Database = DefaultDatabase
	}
	if c.ExportFormat == "" {
		c.ExportFormat = "markdown"
	}
}

// AuthClasses converts the configured marker table to typed auth classes.
func (c Config) AuthClasses() (map[string]entity.AuthClass, error) {
	if len(c.AuthMarkers) == 0 {
		return nil, nil
	}
	out := make(map[string]entity.AuthClass, len(c.AuthMarkers))
	for marker, class := range c.AuthMarkers {
		switch entity.AuthClass(class) {
		case entity.AuthSession, entity.AuthToken, entity.AuthInternal:
			out[marker] = entity.AuthClass(class)
		default:
			return nil, fmt.Errorf("config: unknown auth class %q for marker %q", class, marker)
		}
	}
	return out, nil
}

// ExtraExtensions converts the configured extension table to typed
// languages. A leading dot is optional in the config file.
func (c Config) ExtraExtensions() (map[string]entity.Language, error) {
	if len(c.Extensions) == 0 {
		return nil, nil
	}
	out := make(map[string]entity.Language, len(c.Extensions))
	for ext, lang := range c.Extensions {
		switch entity.Language(lang) {
		case entity.LangPython, entity.LangJavaScript, entity.LangTypeScript, entity.LangRuby, entity.LangGo:
		default:
			return nil, fmt.Errorf("config: unknown language %q for extension %q", lang, ext)
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out[strings.ToLower(ext)] = entity.Language(lang)
	}
	return out, nil
}

// ScannerOptions merges the config into the scanner defaults.
func (c Config) ScannerOptions() scanner.Options {
	opts := scanner.DefaultOptions()
	opts.IgnoreDirs = append(opts.IgnoreDirs, c.IgnoreDirs...)
	if c.MaxDepth > 0 {
		opts.MaxDepth = c.MaxDepth
	}
	opts.IncludeTests = c.IncludeTests
	// invalid tables are rejected at load time
	opts.ExtraExtensions, _ = c.ExtraExtensions()
	return opts
}

// AnalyzerOptions assembles the full analyzer configuration.
func (c Config) AnalyzerOptions() (analyzer.Options, error) {
	markers, err := c.AuthClasses()
	if err != nil {
		return analyzer.Options{}, err
	}
	return analyzer.Options{
		Scan:           c.ScannerOptions(),
		TraversalDepth: c.TraversalDepth,
		AuthMarkers:    markers,
	}, nil
}
