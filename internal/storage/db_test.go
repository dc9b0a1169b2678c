package storage

import (
	"path/filepath"
	"testing"

	"github.com/mpetrov/archmap/internal/entity"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "archmap.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// testResult builds a small consistent analysis: two endpoints, one model,
// one view, one service, a three-step use case.
func testResult() *Result {
	return &Result{
		Root: "/tmp/project",
		Endpoints: []entity.Endpoint{
			{ID: 1, Route: "/orders", Verb: "GET", Module: "app", Handler: "order_list", Params: []string{"page"}, Confidence: 1.0},
			{ID: 2, Route: "/orders", Verb: "POST", Module: "app", Auth: entity.AuthSession, Confidence: 1.0},
		},
		Models: []entity.Model{
			{ID: 3, Name: "Order", Module: "app", Fields: []entity.Field{{Name: "name", Type: "CharField"}}, Confidence: 1.0},
		},
		Views: []entity.View{
			{ID: 4, Name: "OrderPage", Module: "app", Confidence: 0.8},
		},
		Services: []entity.Service{
			{ID: 5, Name: "OrderService", Module: "app", Refs: []string{"Order"}, Confidence: 0.9},
		},
		Features: []entity.Feature{
			{Name: "App", Module: "app", Endpoints: []int64{1, 2}, Models: []int64{3}, Views: []int64{4}, Services: []int64{5}},
		},
		Actors: []entity.Actor{
			{Name: "External User", Role: entity.RoleExternalUser, Endpoints: []int64{1}},
			{Name: "Registered User", Role: entity.RoleExternalUser, Endpoints: []int64{2}},
		},
		Boundaries: []entity.SystemBoundary{
			{Name: "Public Web", Members: []int64{1, 5}},
		},
		Edges: []entity.Relationship{
			{SourceID: 1, TargetID: 4, Kind: entity.RelationExposes},
			{SourceID: 4, TargetID: 5, Kind: entity.RelationUses},
			{SourceID: 3, TargetID: 5, Kind: entity.RelationPersists},
		},
		UseCases: []entity.UseCase{
			{Name: "View Order", Actor: "External User", Steps: []entity.Relationship{
				{SourceID: 1, TargetID: 4, Kind: entity.RelationExposes},
				{SourceID: 4, TargetID: 5, Kind: entity.RelationUses},
				{SourceID: 3, TargetID: 5, Kind: entity.RelationPersists},
			}},
		},
		Warnings: []entity.Warning{{File: "app/broken.py", Reason: "unreadable"}},
	}
}

func TestSaveResultRoundTrip(t *testing.T) {
	db := openTestDB(t)
	if err := db.SaveResult(testResult()); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}

	stats, err := db.GetStats()
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.Endpoints != 2 || stats.Models != 1 || stats.Views != 1 || stats.Services != 1 {
		t.Errorf("entity counts = %d/%d/%d/%d, want 2/1/1/1",
			stats.Endpoints, stats.Models, stats.Views, stats.Services)
	}
	if stats.Edges != 3 || stats.Actors != 2 || stats.Boundaries != 1 || stats.UseCases != 1 {
		t.Errorf("derived counts = %d/%d/%d/%d, want 3/2/1/1",
			stats.Edges, stats.Actors, stats.Boundaries, stats.UseCases)
	}
	if stats.Root != "/tmp/project" {
		t.Errorf("root = %q", stats.Root)
	}
	if stats.Warnings != 1 {
		t.Errorf("warnings = %d, want 1", stats.Warnings)
	}
	if stats.AnalyzedAt == "" {
		t.Error("analyzed_at not recorded")
	}
}

func TestSaveResultReplacesPrevious(t *testing.T) {
	db := openTestDB(t)
	if err := db.SaveResult(testResult()); err != nil {
		t.Fatal(err)
	}

	smaller := &Result{
		Root:      "/tmp/project",
		Endpoints: []entity.Endpoint{{ID: 1, Route: "/ping", Verb: "GET"}},
	}
	if err := db.SaveResult(smaller); err != nil {
		t.Fatal(err)
	}

	stats, err := db.GetStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Endpoints != 1 || stats.Models != 0 || stats.UseCases != 0 {
		t.Errorf("stale data survived: %+v", stats)
	}
}

func TestGetEntitiesByKind(t *testing.T) {
	db := openTestDB(t)
	if err := db.SaveResult(testResult()); err != nil {
		t.Fatal(err)
	}

	eps, err := db.GetEntitiesByKind(entity.KindEndpoint)
	if err != nil {
		t.Fatal(err)
	}
	if len(eps) != 2 {
		t.Fatalf("endpoints = %d, want 2", len(eps))
	}
	if eps[0].Verb != "GET" || eps[0].Handler != "order_list" {
		t.Errorf("endpoint[0] = %+v", eps[0])
	}
	if got := eps[0].Params(); len(got) != 1 || got[0] != "page" {
		t.Errorf("params = %v, want [page]", got)
	}

	models, err := db.GetEntitiesByKind(entity.KindModel)
	if err != nil {
		t.Fatal(err)
	}
	if len(models) != 1 {
		t.Fatalf("models = %d, want 1", len(models))
	}
	fields := models[0].Fields()
	if len(fields) != 1 || fields[0].Name != "name" || fields[0].Type != "CharField" {
		t.Errorf("fields = %v", fields)
	}
}

func TestFindEntitiesByPatternOrdersByQuality(t *testing.T) {
	db := openTestDB(t)
	if err := db.SaveResult(testResult()); err != nil {
		t.Fatal(err)
	}

	found, err := db.FindEntitiesByPattern("Order")
	if err != nil {
		t.Fatal(err)
	}
	if len(found) == 0 {
		t.Fatal("no matches")
	}
	if found[0].Name != "Order" {
		t.Errorf("first match = %q, want exact name first", found[0].Name)
	}
	if found[1].Name != "OrderPage" || found[2].Name != "OrderService" {
		t.Errorf("prefix matches out of order: %q, %q", found[1].Name, found[2].Name)
	}
}

func TestGetActorsResolvesEndpoints(t *testing.T) {
	db := openTestDB(t)
	if err := db.SaveResult(testResult()); err != nil {
		t.Fatal(err)
	}

	actors, err := db.GetActors()
	if err != nil {
		t.Fatal(err)
	}
	if len(actors) != 2 {
		t.Fatalf("actors = %d, want 2", len(actors))
	}
	if actors[0].Name != "External User" || actors[0].Role != entity.RoleExternalUser {
		t.Errorf("actor[0] = %+v", actors[0])
	}
	if len(actors[0].Endpoints) != 1 || actors[0].Endpoints[0].Name != "/orders" {
		t.Errorf("actor endpoints = %+v", actors[0].Endpoints)
	}
}

func TestGetUseCasesKeepsStepOrder(t *testing.T) {
	db := openTestDB(t)
	if err := db.SaveResult(testResult()); err != nil {
		t.Fatal(err)
	}

	ucs, err := db.GetUseCases()
	if err != nil {
		t.Fatal(err)
	}
	if len(ucs) != 1 {
		t.Fatalf("use cases = %d, want 1", len(ucs))
	}
	uc := ucs[0]
	if uc.Name != "View Order" || uc.Actor != "External User" {
		t.Errorf("use case = %+v", uc)
	}
	if len(uc.Steps) != 3 {
		t.Fatalf("steps = %d, want 3", len(uc.Steps))
	}
	wantKinds := []entity.RelationKind{entity.RelationExposes, entity.RelationUses, entity.RelationPersists}
	for i, step := range uc.Steps {
		if step.Position != i {
			t.Errorf("step %d position = %d", i, step.Position)
		}
		if step.Kind != wantKinds[i] {
			t.Errorf("step %d kind = %s, want %s", i, step.Kind, wantKinds[i])
		}
	}
	if uc.Steps[0].SourceName != "/orders" || uc.Steps[0].TargetName != "OrderPage" {
		t.Errorf("step 0 names = %q -> %q", uc.Steps[0].SourceName, uc.Steps[0].TargetName)
	}
}

func TestTracesFollowEdges(t *testing.T) {
	db := openTestDB(t)
	if err := db.SaveResult(testResult()); err != nil {
		t.Fatal(err)
	}

	out, err := db.GetOutgoingTrace(1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("outgoing rows = %d, want 2", len(out))
	}
	if out[0].Entity.Name != "OrderPage" || out[0].Depth != 1 {
		t.Errorf("outgoing[0] = %s depth %d", out[0].Entity.Name, out[0].Depth)
	}
	if out[1].Entity.Name != "OrderService" || out[1].Depth != 2 {
		t.Errorf("outgoing[1] = %s depth %d", out[1].Entity.Name, out[1].Depth)
	}

	in, err := db.GetIncomingTrace(5, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(in) != 3 {
		t.Fatalf("incoming rows = %d, want 3", len(in))
	}
	if in[0].Depth != 1 || in[1].Depth != 1 || in[2].Depth != 2 {
		t.Errorf("incoming depths = %d/%d/%d, want 1/1/2", in[0].Depth, in[1].Depth, in[2].Depth)
	}
	if in[2].Entity.Name != "/orders" {
		t.Errorf("incoming[2] = %q, want the endpoint", in[2].Entity.Name)
	}
}

func TestTraceDepthBound(t *testing.T) {
	db := openTestDB(t)
	if err := db.SaveResult(testResult()); err != nil {
		t.Fatal(err)
	}

	out, err := db.GetOutgoingTrace(1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].Entity.Name != "OrderPage" {
		t.Errorf("depth-1 trace = %+v", out)
	}
}
