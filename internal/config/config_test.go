package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mpetrov/archmap/internal/entity"
)

// writeTemp writes content to a temp file and returns its path.
func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".archmap.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database != DefaultDatabase {
		t.Errorf("Database: got %q, want %q", cfg.Database, DefaultDatabase)
	}
	if cfg.TraversalDepth != 8 {
		t.Errorf("TraversalDepth: got %d, want 8", cfg.TraversalDepth)
	}
	if cfg.ExportFormat != "markdown" {
		t.Errorf("ExportFormat: got %q, want %q", cfg.ExportFormat, "markdown")
	}
}

func TestLoadEmptyFileUsesDefaults(t *testing.T) {
	cfg, err := Load(writeTemp(t, ""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database != DefaultDatabase {
		t.Errorf("Database: got %q, want %q", cfg.Database, DefaultDatabase)
	}
}

func TestLoadParsesAllFields(t *testing.T) {
	cfg, err := Load(writeTemp(t, `
ignore_dirs: [generated, migrations]
max_depth: 6
include_tests: true
extensions:
  .mjs: javascript
  pyi: python
auth_markers:
  acme_guard: token
  staff_only: internal
traversal_depth: 4
database: /tmp/arch.db
export_format: json
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxDepth != 6 || !cfg.IncludeTests || cfg.TraversalDepth != 4 {
		t.Errorf("scalars: %+v", cfg)
	}
	if cfg.Database != "/tmp/arch.db" || cfg.ExportFormat != "json" {
		t.Errorf("paths: %+v", cfg)
	}

	opts := cfg.ScannerOptions()
	found := false
	for _, dir := range opts.IgnoreDirs {
		if dir == "generated" {
			found = true
		}
	}
	if !found {
		t.Errorf("ScannerOptions ignore dirs missing 'generated': %v", opts.IgnoreDirs)
	}
	if opts.MaxDepth != 6 || !opts.IncludeTests {
		t.Errorf("ScannerOptions: %+v", opts)
	}
	if opts.ExtraExtensions[".mjs"] != entity.LangJavaScript {
		t.Errorf("ExtraExtensions .mjs: %v", opts.ExtraExtensions)
	}
	if opts.ExtraExtensions[".pyi"] != entity.LangPython {
		t.Errorf("ExtraExtensions should add the missing dot: %v", opts.ExtraExtensions)
	}

	classes, err := cfg.AuthClasses()
	if err != nil {
		t.Fatal(err)
	}
	if classes["acme_guard"] != entity.AuthToken || classes["staff_only"] != entity.AuthInternal {
		t.Errorf("AuthClasses: %v", classes)
	}
}

func TestLoadRejectsUnknownField(t *testing.T) {
	_, err := Load(writeTemp(t, "databsae: typo.db\n"))
	if err == nil {
		t.Fatal("unknown field accepted")
	}
}

func TestLoadRejectsInvalidAuthClass(t *testing.T) {
	_, err := Load(writeTemp(t, "auth_markers:\n  admin_only: superuser\n"))
	if err == nil {
		t.Fatal("invalid auth class accepted")
	}
	if !strings.Contains(err.Error(), "superuser") {
		t.Errorf("error %q does not name the bad class", err)
	}
}

func TestLoadRejectsUnknownExtensionLanguage(t *testing.T) {
	_, err := Load(writeTemp(t, "extensions:\n  .ml: ocaml\n"))
	if err == nil {
		t.Fatal("unknown language accepted")
	}
	if !strings.Contains(err.Error(), "ocaml") {
		t.Errorf("error %q does not name the bad language", err)
	}
}

func TestAnalyzerOptionsCarryMarkers(t *testing.T) {
	cfg, err := Load(writeTemp(t, "auth_markers:\n  acme_guard: session\n"))
	if err != nil {
		t.Fatal(err)
	}
	opts, err := cfg.AnalyzerOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.AuthMarkers["acme_guard"] != entity.AuthSession {
		t.Errorf("AuthMarkers: %v", opts.AuthMarkers)
	}
	if opts.TraversalDepth != 8 {
		t.Errorf("TraversalDepth: got %d, want 8", opts.TraversalDepth)
	}
}
