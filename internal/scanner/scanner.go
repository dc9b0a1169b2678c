// Package scanner walks a project root and produces the ordered list of
// candidate source files that the extraction passes consume.
package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mpetrov/archmap/internal/entity"
)

// ScanError reports that the scan root itself is missing or unreadable.
// Individual unreadable files never produce a ScanError, only warnings.
type ScanError struct {
	Root string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Root, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }

// Options controls a scan
type Options struct {
	IgnoreDirs   []string // merged with the default ignore set
	MaxDepth     int      // 0 means unlimited
	IncludeTests bool
	CacheSize    int // content cache entries, 0 picks the default

	// ExtraExtensions maps additional file extensions (".mjs") to the
	// language they should be scanned as, layered over the built-ins.
	ExtraExtensions map[string]entity.Language
}

// DefaultOptions returns the options used when none are supplied
func DefaultOptions() Options {
	return Options{CacheSize: defaultCacheSize}
}

const defaultCacheSize = 1024

var defaultIgnoreDirs = []string{
	".git", ".hg", ".svn",
	"node_modules", "vendor", "target", "build", "dist",
	"__pycache__", ".venv", "venv",
	".next", ".cache", ".idea", ".vscode",
	"coverage", "tmp",
}

var languageByExt = map[string]entity.Language{
	".py":  entity.LangPython,
	".js":  entity.LangJavaScript,
	".jsx": entity.LangJavaScript,
	".ts":  entity.LangTypeScript,
	".tsx": entity.LangTypeScript,
	".rb":  entity.LangRuby,
	".go":  entity.LangGo,
}

// tagTable maps path segments to the category they hint at
var tagTable = map[string]entity.Kind{
	"routes": entity.KindEndpoint, "route": entity.KindEndpoint,
	"urls": entity.KindEndpoint, "api": entity.KindEndpoint,
	"controllers": entity.KindEndpoint, "controller": entity.KindEndpoint,
	"handlers": entity.KindEndpoint, "handler": entity.KindEndpoint,
	"endpoints": entity.KindEndpoint, "app": entity.KindEndpoint,

	"models": entity.KindModel, "model": entity.KindModel,
	"schema": entity.KindModel, "schemas": entity.KindModel,
	"entities": entity.KindModel, "entity": entity.KindModel,

	"views": entity.KindView, "view": entity.KindView,
	"templates": entity.KindView, "pages": entity.KindView,
	"components": entity.KindView,

	"services": entity.KindService, "service": entity.KindService,
	"usecases": entity.KindService, "logic": entity.KindService,
	"managers": entity.KindService, "lib": entity.KindService,
}

// Scanner walks a root directory and returns source files tagged by
// path convention. A content cache keyed by path, size and mtime keeps
// repeated scans (watch mode) from re-reading unchanged files.
type Scanner struct {
	opts   Options
	ignore map[string]bool
	exts   map[string]entity.Language
	cache  *lru.Cache[string, []string]

	// readFile is swappable so read-failure paths stay testable
	readFile func(string) ([]byte, error)
}

// New creates a Scanner with the given options
func New(opts Options) *Scanner {
	size := opts.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, _ := lru.New[string, []string](size)

	return &Scanner{
		opts:     opts,
		ignore:   IgnoreSet(opts.IgnoreDirs),
		exts:     ExtensionSet(opts.ExtraExtensions),
		cache:    cache,
		readFile: os.ReadFile,
	}
}

// IgnoreSet merges the default ignored directory names with extra ones.
// Shared with watch mode so both walks skip the same trees.
func IgnoreSet(extra []string) map[string]bool {
	set := make(map[string]bool, len(defaultIgnoreDirs)+len(extra))
	for _, d := range defaultIgnoreDirs {
		set[d] = true
	}
	for _, d := range extra {
		set[d] = true
	}
	return set
}

// ExtensionSet layers extra extension mappings over the built-in table.
// Shared with watch mode so both decide file relevance the same way.
func ExtensionSet(extra map[string]entity.Language) map[string]entity.Language {
	set := make(map[string]entity.Language, len(languageByExt)+len(extra))
	for ext, lang := range languageByExt {
		set[ext] = lang
	}
	for ext, lang := range extra {
		set[strings.ToLower(ext)] = lang
	}
	return set
}

// Scan walks root and returns every recognized source file in lexical
// order. The root missing or unreadable is fatal (*ScanError); individual
// unreadable files are skipped and reported as warnings.
func (s *Scanner) Scan(root string) ([]*entity.SourceFile, []entity.Warning, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, nil, &ScanError{Root: root, Err: err}
	}
	if !info.IsDir() {
		return nil, nil, &ScanError{Root: root, Err: fmt.Errorf("not a directory")}
	}

	var files []*entity.SourceFile
	var warns []entity.Warning

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return &ScanError{Root: root, Err: err}
			}
			rel, _ := filepath.Rel(root, path)
			warns = append(warns, entity.Warning{File: rel, Reason: fmt.Sprintf("unreadable: %v", err)})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			name := d.Name()
			if strings.HasPrefix(name, ".") || s.ignore[name] {
				return filepath.SkipDir
			}
			if s.opts.MaxDepth > 0 && strings.Count(rel, "/")+1 >= s.opts.MaxDepth {
				return filepath.SkipDir
			}
			return nil
		}

		lang, ok := s.exts[strings.ToLower(filepath.Ext(path))]
		if !ok {
			return nil
		}
		if !s.opts.IncludeTests && IsTestFile(d.Name()) {
			return nil
		}

		lines, readErr := s.readLines(path, d)
		if readErr != nil {
			warns = append(warns, entity.Warning{File: rel, Reason: fmt.Sprintf("unreadable: %v", readErr)})
			return nil
		}

		files = append(files, &entity.SourceFile{
			Path:     rel,
			AbsPath:  path,
			Language: lang,
			Tags:     tagsFor(rel),
			Lines:    lines,
		})
		return nil
	})
	if walkErr != nil {
		var se *ScanError
		if errors.As(walkErr, &se) {
			return nil, nil, se
		}
		return nil, nil, &ScanError{Root: root, Err: walkErr}
	}
	return files, warns, nil
}

// readLines returns the file content split into lines, served from the
// cache when the file is unchanged since the last scan.
func (s *Scanner) readLines(path string, d fs.DirEntry) ([]string, error) {
	key := path
	if info, err := d.Info(); err == nil {
		key = fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano())
	}
	if lines, ok := s.cache.Get(key); ok {
		return lines, nil
	}
	data, err := s.readFile(path)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(data), "\n")
	s.cache.Add(key, lines)
	return lines, nil
}

// tagsFor derives category hints from the path segments of rel
func tagsFor(rel string) []entity.Kind {
	seen := make(map[entity.Kind]bool, 2)
	var tags []entity.Kind
	for _, seg := range strings.Split(rel, "/") {
		seg = strings.ToLower(seg)
		if ext := filepath.Ext(seg); ext != "" {
			seg = strings.TrimSuffix(seg, ext)
		}
		if k, ok := tagTable[seg]; ok && !seen[k] {
			seen[k] = true
			tags = append(tags, k)
		}
	}
	return tags
}

// IsTestFile reports whether the file name follows a test naming
// convention in any of the recognized languages.
func IsTestFile(name string) bool {
	base := strings.ToLower(name)
	return strings.HasPrefix(base, "test_") ||
		strings.HasSuffix(base, "_test.go") ||
		strings.Contains(base, ".spec.") ||
		strings.Contains(base, ".test.")
}
