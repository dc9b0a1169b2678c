package scanner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mpetrov/archmap/internal/entity"
)

func write(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestScanFindsSourceFiles(t *testing.T) {
	root := t.TempDir()
	write(t, root, "app/routes.py", "@app.route('/users')\ndef users(): pass\n")
	write(t, root, "app/models.py", "class User: pass\n")
	write(t, root, "web/views.js", "function home() {}\n")
	write(t, root, "README.md", "# readme\n")
	write(t, root, "node_modules/pkg/index.js", "module.exports = {}\n")
	write(t, root, ".git/config", "[core]\n")

	s := New(DefaultOptions())
	files, warns, err := s.Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(warns) != 0 {
		t.Fatalf("unexpected warnings: %v", warns)
	}

	got := make([]string, len(files))
	for i, f := range files {
		got[i] = f.Path
	}
	want := []string{"app/models.py", "app/routes.py", "web/views.js"}
	if len(got) != len(want) {
		t.Fatalf("got files %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("file[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if files[0].Language != entity.LangPython {
		t.Errorf("models.py language = %q, want python", files[0].Language)
	}
	if !files[0].Tagged(entity.KindModel) {
		t.Errorf("models.py not tagged as model: %v", files[0].Tags)
	}
	if !files[1].Tagged(entity.KindEndpoint) {
		t.Errorf("routes.py not tagged as endpoint: %v", files[1].Tags)
	}
	if !files[2].Tagged(entity.KindView) {
		t.Errorf("views.js not tagged as view: %v", files[2].Tags)
	}
}

func TestScanMissingRoot(t *testing.T) {
	s := New(DefaultOptions())
	_, _, err := s.Scan(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Fatal("expected error for missing root")
	}
	var se *ScanError
	if !errors.As(err, &se) {
		t.Fatalf("error %T is not a *ScanError", err)
	}
}

func TestScanRootIsFile(t *testing.T) {
	root := t.TempDir()
	path := write(t, root, "file.py", "x = 1\n")

	s := New(DefaultOptions())
	_, _, err := s.Scan(path)
	var se *ScanError
	if !errors.As(err, &se) {
		t.Fatalf("error %v is not a *ScanError", err)
	}
}

func TestScanUnreadableFileWarns(t *testing.T) {
	root := t.TempDir()
	write(t, root, "ok.py", "x = 1\n")
	write(t, root, "broken.py", "y = 2\n")

	s := New(DefaultOptions())
	s.readFile = func(path string) ([]byte, error) {
		if strings.HasSuffix(path, "broken.py") {
			return nil, fmt.Errorf("permission denied")
		}
		return os.ReadFile(path)
	}

	files, warns, err := s.Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(files) != 1 || files[0].Path != "ok.py" {
		t.Fatalf("got files %v, want just ok.py", files)
	}
	if len(warns) != 1 {
		t.Fatalf("got %d warnings, want 1", len(warns))
	}
	if warns[0].File != "broken.py" {
		t.Errorf("warning file = %q, want broken.py", warns[0].File)
	}
}

func TestScanSkipsTestFiles(t *testing.T) {
	root := t.TempDir()
	write(t, root, "app/routes.py", "@app.route('/x')\n")
	write(t, root, "app/test_routes.py", "def test_x(): pass\n")
	write(t, root, "web/home.test.ts", "it('works')\n")

	s := New(DefaultOptions())
	files, _, err := s.Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(files) != 1 || files[0].Path != "app/routes.py" {
		t.Fatalf("got %v, want just app/routes.py", files)
	}

	opts := DefaultOptions()
	opts.IncludeTests = true
	files, _, err = New(opts).Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("with IncludeTests got %d files, want 3", len(files))
	}
}

func TestScanExtraExtensions(t *testing.T) {
	root := t.TempDir()
	write(t, root, "web/worker.mjs", "export function run() {}\n")
	write(t, root, "web/app.js", "function main() {}\n")

	files, _, err := New(DefaultOptions()).Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("without extras got %v, want just web/app.js", files)
	}

	opts := DefaultOptions()
	opts.ExtraExtensions = map[string]entity.Language{".mjs": entity.LangJavaScript}
	files, _, err = New(opts).Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("with extras got %v, want 2 files", files)
	}
	if files[1].Path != "web/worker.mjs" || files[1].Language != entity.LangJavaScript {
		t.Errorf("worker.mjs = %+v, want javascript", files[1])
	}
}

func TestScanMaxDepth(t *testing.T) {
	root := t.TempDir()
	write(t, root, "top.py", "x = 1\n")
	write(t, root, "a/mid.py", "x = 2\n")
	write(t, root, "a/b/deep.py", "x = 3\n")

	opts := DefaultOptions()
	opts.MaxDepth = 1
	files, _, err := New(opts).Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(files) != 1 || files[0].Path != "top.py" {
		t.Fatalf("got %v, want just top.py", files)
	}
}

func TestScanCachesUnchangedFiles(t *testing.T) {
	root := t.TempDir()
	write(t, root, "app.py", "x = 1\n")

	s := New(DefaultOptions())
	reads := 0
	s.readFile = func(path string) ([]byte, error) {
		reads++
		return os.ReadFile(path)
	}

	if _, _, err := s.Scan(root); err != nil {
		t.Fatalf("first Scan: %v", err)
	}
	if reads != 1 {
		t.Fatalf("first scan did %d reads, want 1", reads)
	}
	if _, _, err := s.Scan(root); err != nil {
		t.Fatalf("second Scan: %v", err)
	}
	if reads != 1 {
		t.Errorf("second scan re-read unchanged file (%d reads)", reads)
	}
}

func TestTagsFor(t *testing.T) {
	cases := []struct {
		rel  string
		want []entity.Kind
	}{
		{"app/routes.py", []entity.Kind{entity.KindEndpoint}},
		{"app/models/user.py", []entity.Kind{entity.KindModel}},
		{"src/pages/Home.tsx", []entity.Kind{entity.KindView}},
		{"internal/services/billing.go", []entity.Kind{entity.KindService}},
		{"api/views.py", []entity.Kind{entity.KindEndpoint, entity.KindView}},
		{"random/thing.py", nil},
	}
	for _, tc := range cases {
		got := tagsFor(tc.rel)
		if len(got) != len(tc.want) {
			t.Errorf("tagsFor(%q) = %v, want %v", tc.rel, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("tagsFor(%q)[%d] = %v, want %v", tc.rel, i, got[i], tc.want[i])
			}
		}
	}
}
