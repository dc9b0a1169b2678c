// Command mockgen generates a synthetic polyglot project for exercising
// archmap against a tree of known shape: per module one Flask route file,
// one Django model, one view and one service, cross-referenced so the
// relationship mapper has edges to find.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config represents the mock project configuration
type Config struct {
	OutputDir          string
	NumModules         int
	EndpointsPerModule int
	Seed               int64
}

var nouns = []string{
	"order", "invoice", "customer", "product", "shipment",
	"payment", "ticket", "report", "account", "catalog",
}

var fieldPool = []struct{ name, decl string }{
	{"name", "models.CharField(max_length=120)"},
	{"status", "models.CharField(max_length=32)"},
	{"total", "models.IntegerField()"},
	{"quantity", "models.IntegerField()"},
	{"created_at", "models.DateTimeField(auto_now_add=True)"},
	{"updated_at", "models.DateTimeField(auto_now=True)"},
	{"notes", "models.TextField(blank=True)"},
}

func main() {
	cfg := Config{}
	flag.StringVar(&cfg.OutputDir, "o", "./mock-project", "output directory")
	flag.IntVar(&cfg.NumModules, "modules", 6, "number of modules")
	flag.IntVar(&cfg.EndpointsPerModule, "endpoints", 4, "endpoints per module")
	flag.Int64Var(&cfg.Seed, "seed", 0, "random seed (0 uses the clock)")
	flag.Parse()

	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	fmt.Printf("Generating mock project...\n")
	fmt.Printf("  modules: %d\n", cfg.NumModules)
	fmt.Printf("  endpoints per module: %d\n", cfg.EndpointsPerModule)
	fmt.Printf("  seed: %d\n", cfg.Seed)

	if err := generateProject(&cfg, rng); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nDone: %s\n", cfg.OutputDir)
	fmt.Printf("\nNext:\n")
	fmt.Printf("  archmap analyze %s\n", cfg.OutputDir)
	fmt.Printf("  archmap usecases\n")
}

func generateProject(cfg *Config, rng *rand.Rand) error {
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return err
	}

	for i := 0; i < cfg.NumModules; i++ {
		name := moduleNoun(i)
		next := moduleNoun((i + 1) % cfg.NumModules)
		if err := generateModule(cfg, rng, name, next); err != nil {
			return err
		}
		fmt.Printf("  generated module %s (%d/%d)\n", name, i+1, cfg.NumModules)
	}
	return nil
}

// moduleNoun picks a noun, suffixing a counter once the pool wraps
func moduleNoun(idx int) string {
	noun := nouns[idx%len(nouns)]
	if idx >= len(nouns) {
		noun = fmt.Sprintf("%s%d", noun, idx/len(nouns))
	}
	return noun
}

func generateModule(cfg *Config, rng *rand.Rand, noun, nextNoun string) error {
	dir := filepath.Join(cfg.OutputDir, "app", noun+"s")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	files := map[string]string{
		"models.py":   generateModels(rng, noun),
		"services.py": generateServices(rng, noun, nextNoun),
		"views.py":    generateViews(noun),
		"routes.py":   generateRoutes(rng, cfg.EndpointsPerModule, noun),
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			return err
		}
	}
	return nil
}

func generateModels(rng *rand.Rand, noun string) string {
	var b strings.Builder
	b.WriteString("from django.db import models\n\n\n")
	fmt.Fprintf(&b, "class %s(models.Model):\n", capitalize(noun))

	count := 2 + rng.Intn(3)
	for _, i := range rng.Perm(len(fieldPool))[:count] {
		fmt.Fprintf(&b, "    %s = %s\n", fieldPool[i].name, fieldPool[i].decl)
	}
	return b.String()
}

func generateServices(rng *rand.Rand, noun, nextNoun string) string {
	model := capitalize(noun)
	var b strings.Builder
	fmt.Fprintf(&b, "class %sService:\n", model)
	fmt.Fprintf(&b, "    def load(self, pk):\n")
	fmt.Fprintf(&b, "        return %s.objects.get(pk=pk)\n\n", model)
	fmt.Fprintf(&b, "    def save(self, record):\n")
	fmt.Fprintf(&b, "        record.save()\n")

	// Half the services call into the next module so traces cross modules
	if nextNoun != noun && rng.Float64() < 0.5 {
		fmt.Fprintf(&b, "\n    def sync(self):\n")
		fmt.Fprintf(&b, "        %sService().save(self)\n", capitalize(nextNoun))
	}
	return b.String()
}

func generateViews(noun string) string {
	model := capitalize(noun)
	var b strings.Builder
	fmt.Fprintf(&b, "class %sListView(ListView):\n", model)
	fmt.Fprintf(&b, "    def get_queryset(self):\n")
	fmt.Fprintf(&b, "        return %sService().load(self.kwargs)\n", model)
	return b.String()
}

func generateRoutes(rng *rand.Rand, count int, noun string) string {
	routes := []struct{ path, verb, suffix string }{
		{"/%ss", "GET", "list"},
		{"/%ss", "POST", "create"},
		{"/%ss/<int:pk>", "GET", "detail"},
		{"/%ss/<int:pk>", "PUT", "update"},
		{"/%ss/<int:pk>", "DELETE", "delete"},
		{"/internal/%ss/reindex", "POST", "reindex"},
	}
	guards := []string{"", "@login_required\n", "@token_required\n"}

	var b strings.Builder
	b.WriteString("from flask import Flask\n\n")
	for i := 0; i < count && i < len(routes); i++ {
		r := routes[i]
		route := fmt.Sprintf(r.path, noun)
		fmt.Fprintf(&b, "\n@app.route('%s', methods=['%s'])\n", route, r.verb)
		b.WriteString(guards[rng.Intn(len(guards))])
		fmt.Fprintf(&b, "def %s_%s():\n", noun, r.suffix)
		fmt.Fprintf(&b, "    return %sService().load(None)\n", capitalize(noun))
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
