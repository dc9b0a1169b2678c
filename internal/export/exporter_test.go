package export

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mpetrov/archmap/internal/entity"
	"github.com/mpetrov/archmap/internal/storage"
)

func openSeededDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "export.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	result := &storage.Result{
		Root: "/srv/shop",
		Endpoints: []entity.Endpoint{
			{ID: 1, Route: "/orders", Verb: "GET", Module: "orders", Handler: "order_list", Auth: entity.AuthSession, File: "app/routes.py", Line: 4, Confidence: 1.0},
			{ID: 2, Route: "/orders", Verb: "POST", Module: "orders", Handler: "order_create", File: "app/routes.py", Line: 9, Confidence: 1.0},
		},
		Models: []entity.Model{
			{ID: 3, Name: "Order", Module: "orders", Fields: []entity.Field{{Name: "total"}, {Name: "placed_at"}}, File: "app/models.py", Line: 3, Confidence: 0.8},
		},
		Views: []entity.View{
			{ID: 4, Name: "OrderPage", Module: "orders", Refs: []string{"OrderService"}, File: "app/views.py", Line: 5, Confidence: 0.6},
		},
		Services: []entity.Service{
			{ID: 5, Name: "OrderService", Module: "orders", Refs: []string{"Order"}, File: "app/services.py", Line: 2, Confidence: 0.6},
		},
		Actors: []entity.Actor{
			{Name: "Registered User", Role: entity.RoleExternalUser, Endpoints: []int64{1, 2}},
		},
		Boundaries: []entity.SystemBoundary{
			{Name: "Session Perimeter", Auth: entity.AuthSession, Members: []int64{1}},
		},
		Edges: []entity.Relationship{
			{SourceID: 1, TargetID: 4, Kind: entity.RelationExposes},
			{SourceID: 4, TargetID: 5, Kind: entity.RelationUses},
			{SourceID: 3, TargetID: 5, Kind: entity.RelationPersists},
		},
		UseCases: []entity.UseCase{
			{
				Name:     "View Orders",
				Actor:    "Registered User",
				Entities: []int64{1, 4, 5, 3},
				Steps: []entity.Relationship{
					{SourceID: 1, TargetID: 4, Kind: entity.RelationExposes},
					{SourceID: 4, TargetID: 5, Kind: entity.RelationUses},
					{SourceID: 3, TargetID: 5, Kind: entity.RelationPersists},
				},
			},
		},
	}
	if err := db.SaveResult(result); err != nil {
		t.Fatalf("SaveResult() error = %v", err)
	}
	return db
}

func TestExportMarkdownSections(t *testing.T) {
	db := openSeededDB(t)
	exp := NewExporter(db)

	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.ProjectName = "Shop"
	if err := exp.Export(&buf, opts); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# Shop Architecture",
		"> Source: /srv/shop",
		"## Actors",
		"| Registered User | external-user | 2 |",
		"## System Boundaries",
		"### Session Perimeter",
		"## Endpoints",
		"| GET | `/orders` | orders | session | app/routes.py:4 |",
		"| POST | `/orders` | orders | - | app/routes.py:9 |",
		"## Models",
		"| Order | orders | total, placed_at | app/models.py:3 |",
		"## Use Cases",
		"### View Orders",
		"**Actor**: Registered User",
		"1. `/orders` exposes `OrderPage`",
		"2. `OrderPage` uses `OrderService`",
		"3. `OrderService` persists `Order`",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q\noutput:\n%s", want, out)
		}
	}
}

func TestExportMarkdownMermaidDiagram(t *testing.T) {
	db := openSeededDB(t)
	exp := NewExporter(db)

	var buf bytes.Buffer
	if err := exp.Export(&buf, DefaultOptions()); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"## Relationship Graph",
		"```mermaid",
		"flowchart LR",
		`e1(["GET /orders"])`,
		`e3[("Order")]`,
		`e5[["OrderService"]]`,
		"e1 -->|exposes| e4",
		"e3 -->|persists| e5",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("diagram missing %q\noutput:\n%s", want, out)
		}
	}
}

func TestExportMarkdownSkipsMermaidWhenDisabled(t *testing.T) {
	db := openSeededDB(t)
	exp := NewExporter(db)

	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.IncludeMermaid = false
	if err := exp.Export(&buf, opts); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if strings.Contains(buf.String(), "mermaid") {
		t.Error("expected no mermaid block when IncludeMermaid is false")
	}
}

func TestExportJSONDocument(t *testing.T) {
	db := openSeededDB(t)
	exp := NewExporter(db)

	var buf bytes.Buffer
	opts := Options{Format: "json", ProjectName: "Shop"}
	if err := exp.Export(&buf, opts); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var doc struct {
		Project   string `json:"project"`
		Root      string `json:"root"`
		Endpoints []struct {
			Route string `json:"route"`
			Verb  string `json:"verb"`
			Auth  string `json:"auth"`
		} `json:"endpoints"`
		Actors []struct {
			Name      string   `json:"name"`
			Endpoints []string `json:"endpoints"`
		} `json:"actors"`
		UseCases []struct {
			Name  string `json:"name"`
			Steps []struct {
				From string `json:"from"`
				To   string `json:"to"`
				Kind string `json:"kind"`
			} `json:"steps"`
		} `json:"use_cases"`
		Edges []struct {
			Kind string `json:"kind"`
		} `json:"relationships"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if doc.Project != "Shop" {
		t.Errorf("project = %q, want Shop", doc.Project)
	}
	if doc.Root != "/srv/shop" {
		t.Errorf("root = %q, want /srv/shop", doc.Root)
	}
	if len(doc.Endpoints) != 2 {
		t.Fatalf("endpoints = %d, want 2", len(doc.Endpoints))
	}
	if doc.Endpoints[0].Verb != "GET" || doc.Endpoints[0].Auth != "session" {
		t.Errorf("first endpoint = %+v", doc.Endpoints[0])
	}
	if len(doc.Actors) != 1 || len(doc.Actors[0].Endpoints) != 2 {
		t.Fatalf("actors = %+v", doc.Actors)
	}
	if doc.Actors[0].Endpoints[0] != "GET /orders" {
		t.Errorf("actor endpoint = %q, want GET /orders", doc.Actors[0].Endpoints[0])
	}
	if len(doc.UseCases) != 1 || len(doc.UseCases[0].Steps) != 3 {
		t.Fatalf("use cases = %+v", doc.UseCases)
	}
	if doc.UseCases[0].Steps[2].Kind != "persists" {
		t.Errorf("last step kind = %q, want persists", doc.UseCases[0].Steps[2].Kind)
	}
	if len(doc.Edges) != 3 {
		t.Errorf("relationships = %d, want 3", len(doc.Edges))
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	db := openSeededDB(t)
	exp := NewExporter(db)

	var buf bytes.Buffer
	err := exp.Export(&buf, Options{Format: "yaml"})
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
	if !strings.Contains(err.Error(), "yaml") {
		t.Errorf("error = %v, want mention of format", err)
	}
}
