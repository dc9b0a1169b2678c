// Package watcher re-runs the analysis pipeline when project sources change.
package watcher

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mpetrov/archmap/internal/analyzer"
	"github.com/mpetrov/archmap/internal/entity"
	"github.com/mpetrov/archmap/internal/scanner"
	"github.com/mpetrov/archmap/internal/storage"
)

// DefaultDebounce is how long the watcher waits after the last change
// before re-running the analysis.
const DefaultDebounce = 2 * time.Second

// Watcher watches a project tree and triggers reanalysis on change
type Watcher struct {
	root   string
	dbPath string
	opts   analyzer.Options
	fsw    *fsnotify.Watcher
	ignore map[string]bool
	exts   map[string]entity.Language

	debounceDelay time.Duration
	pending       map[string]struct{}
	pendingMu     sync.Mutex
	debounceTimer *time.Timer

	onAnalysisStart func()
	onAnalysisDone  func(stats analyzer.Stats, duration time.Duration)
	onError         func(error)

	done chan struct{}
}

// Option configures the watcher
type Option func(*Watcher)

// WithDebounceDelay sets the debounce delay
func WithDebounceDelay(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounceDelay = d
	}
}

// WithOnAnalysisStart sets the callback for when analysis starts
func WithOnAnalysisStart(fn func()) Option {
	return func(w *Watcher) {
		w.onAnalysisStart = fn
	}
}

// WithOnAnalysisDone sets the callback for when analysis completes
func WithOnAnalysisDone(fn func(stats analyzer.Stats, duration time.Duration)) Option {
	return func(w *Watcher) {
		w.onAnalysisDone = fn
	}
}

// WithOnError sets the callback for errors
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// New creates a Watcher over root that persists each analysis to dbPath
func New(root, dbPath string, opts analyzer.Options, wopts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		root:          root,
		dbPath:        dbPath,
		opts:          opts,
		fsw:           fsw,
		ignore:        scanner.IgnoreSet(opts.Scan.IgnoreDirs),
		exts:          scanner.ExtensionSet(opts.Scan.ExtraExtensions),
		debounceDelay: DefaultDebounce,
		pending:       make(map[string]struct{}),
		done:          make(chan struct{}),
	}

	for _, opt := range wopts {
		opt(w)
	}

	if err := w.addDirs(); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to add directories to watch: %w", err)
	}

	return w, nil
}

// addDirs recursively registers every non-ignored directory under root
func (w *Watcher) addDirs() error {
	return filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != w.root && (strings.HasPrefix(name, ".") || w.ignore[name]) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// Start begins watching for changes
func (w *Watcher) Start() {
	go w.eventLoop()
}

// Stop stops the watcher
func (w *Watcher) Stop() error {
	close(w.done)
	return w.fsw.Close()
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	// New directories need a watch of their own before any extension
	// filtering, directory names rarely carry one.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			name := filepath.Base(event.Name)
			if !strings.HasPrefix(name, ".") && !w.ignore[name] {
				w.fsw.Add(event.Name)
			}
			return
		}
	}

	if !w.relevant(event.Name) {
		return
	}

	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending[event.Name] = struct{}{}

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounceDelay, w.triggerAnalysis)
}

// relevant reports whether a change to path should trigger reanalysis
func (w *Watcher) relevant(path string) bool {
	name := filepath.Base(path)
	if _, ok := w.exts[strings.ToLower(filepath.Ext(name))]; !ok {
		return false
	}
	if !w.opts.Scan.IncludeTests && scanner.IsTestFile(name) {
		return false
	}
	return true
}

// triggerAnalysis drains the pending set and re-runs the full pipeline
func (w *Watcher) triggerAnalysis() {
	w.pendingMu.Lock()
	changed := len(w.pending)
	w.pending = make(map[string]struct{})
	w.pendingMu.Unlock()

	if changed == 0 {
		return
	}

	if w.onAnalysisStart != nil {
		w.onAnalysisStart()
	}

	start := time.Now()
	stats, err := w.runAnalysis()
	if err != nil {
		if w.onError != nil {
			w.onError(fmt.Errorf("analysis failed: %w", err))
		}
		return
	}

	if w.onAnalysisDone != nil {
		w.onAnalysisDone(stats, time.Since(start))
	}
}

// runAnalysis executes the pipeline and persists the replacement result
func (w *Watcher) runAnalysis() (analyzer.Stats, error) {
	pa := analyzer.New(w.root, w.opts)
	if err := pa.Run(); err != nil {
		return analyzer.Stats{}, err
	}

	db, err := storage.Open(w.dbPath)
	if err != nil {
		return analyzer.Stats{}, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.SaveResult(resultFrom(pa)); err != nil {
		return analyzer.Stats{}, fmt.Errorf("failed to save result: %w", err)
	}
	return pa.Stats(), nil
}

func resultFrom(pa *analyzer.ProjectAnalyzer) *storage.Result {
	return &storage.Result{
		Root:       pa.Root(),
		Endpoints:  pa.Endpoints(),
		Models:     pa.Models(),
		Views:      pa.Views(),
		Services:   pa.Services(),
		Features:   pa.Features(),
		Actors:     pa.Actors(),
		Boundaries: pa.Boundaries(),
		Edges:      pa.Graph().Edges(),
		UseCases:   pa.UseCases(),
		Warnings:   pa.Warnings(),
	}
}
