package usecase

import (
	"errors"
	"testing"

	"github.com/mpetrov/archmap/internal/entity"
	"github.com/mpetrov/archmap/internal/relation"
)

type stubNamer struct {
	names []string
	err   error
}

func (s stubNamer) Suggest(entity.UseCase) ([]string, error) { return s.names, s.err }

func buildGraph(t *testing.T, kinds map[int64]entity.Kind, edges []entity.Relationship) *relation.Graph {
	t.Helper()
	g := relation.NewGraph()
	for id, kind := range kinds {
		g.AddNode(id, kind)
	}
	for _, e := range edges {
		if !g.AddEdge(e.SourceID, e.TargetID, e.Kind) {
			t.Fatalf("AddEdge(%d, %d, %s) rejected", e.SourceID, e.TargetID, e.Kind)
		}
	}
	return g
}

func TestExtractTerminatesOnCyclicGraph(t *testing.T) {
	g := buildGraph(t, map[int64]entity.Kind{
		1: entity.KindEndpoint,
		2: entity.KindView,
		3: entity.KindService,
	}, []entity.Relationship{
		{SourceID: 1, TargetID: 2, Kind: entity.RelationExposes},
		{SourceID: 2, TargetID: 3, Kind: entity.RelationUses},
		{SourceID: 3, TargetID: 2, Kind: entity.RelationUses},
	})

	x := NewExtractor(Options{})
	actors := []entity.Actor{{Name: "External User", Role: entity.RoleExternalUser, Endpoints: []int64{1}}}
	endpoints := []entity.Endpoint{{ID: 1, Verb: "GET", Route: "/orders"}}

	ucs := x.Extract(g, actors, endpoints, nil)
	if len(ucs) != 1 {
		t.Fatalf("use cases = %d, want 1", len(ucs))
	}
	uc := ucs[0]
	if len(uc.Steps) != 2 {
		t.Fatalf("steps = %d, want 2 (cycle must not be re-walked)", len(uc.Steps))
	}
	wantEntities := []int64{1, 2, 3}
	if len(uc.Entities) != len(wantEntities) {
		t.Fatalf("entities = %v, want %v", uc.Entities, wantEntities)
	}
	for i, id := range wantEntities {
		if uc.Entities[i] != id {
			t.Errorf("entities[%d] = %d, want %d", i, uc.Entities[i], id)
		}
	}
	if uc.Actor != "External User" {
		t.Errorf("actor = %q, want %q", uc.Actor, "External User")
	}
}

func TestExtractReachesPersistedModels(t *testing.T) {
	g := buildGraph(t, map[int64]entity.Kind{
		1: entity.KindEndpoint,
		2: entity.KindView,
		3: entity.KindService,
		4: entity.KindModel,
	}, []entity.Relationship{
		{SourceID: 1, TargetID: 2, Kind: entity.RelationExposes},
		{SourceID: 2, TargetID: 3, Kind: entity.RelationUses},
		{SourceID: 4, TargetID: 3, Kind: entity.RelationPersists},
	})

	x := NewExtractor(Options{})
	actors := []entity.Actor{{Name: "External User", Endpoints: []int64{1}}}
	endpoints := []entity.Endpoint{{ID: 1, Verb: "GET", Route: "/orders"}}
	models := []entity.Model{{ID: 4, Name: "Order"}}

	ucs := x.Extract(g, actors, endpoints, models)
	if len(ucs) != 1 {
		t.Fatalf("use cases = %d, want 1", len(ucs))
	}
	uc := ucs[0]
	if len(uc.Steps) != 3 {
		t.Fatalf("steps = %d, want 3", len(uc.Steps))
	}
	last := uc.Steps[len(uc.Steps)-1]
	if last.Kind != entity.RelationPersists || last.SourceID != 4 {
		t.Errorf("last step = %+v, want persists edge from model 4", last)
	}
	if uc.Name != "View Order" {
		t.Errorf("name = %q, want %q", uc.Name, "View Order")
	}
}

func TestExtractSkipsUnconnectedEndpoints(t *testing.T) {
	g := buildGraph(t, map[int64]entity.Kind{1: entity.KindEndpoint}, nil)

	x := NewExtractor(Options{})
	actors := []entity.Actor{{Name: "External User", Endpoints: []int64{1}}}
	endpoints := []entity.Endpoint{{ID: 1, Verb: "GET", Route: "/ping"}}

	if ucs := x.Extract(g, actors, endpoints, nil); len(ucs) != 0 {
		t.Fatalf("use cases = %d, want 0 for edgeless endpoint", len(ucs))
	}
}

func TestExtractRespectsDepthBound(t *testing.T) {
	g := buildGraph(t, map[int64]entity.Kind{
		1: entity.KindEndpoint,
		2: entity.KindView,
		3: entity.KindService,
		4: entity.KindService,
	}, []entity.Relationship{
		{SourceID: 1, TargetID: 2, Kind: entity.RelationExposes},
		{SourceID: 2, TargetID: 3, Kind: entity.RelationUses},
		{SourceID: 3, TargetID: 4, Kind: entity.RelationUses},
	})

	x := NewExtractor(Options{MaxDepth: 1})
	actors := []entity.Actor{{Name: "External User", Endpoints: []int64{1}}}
	endpoints := []entity.Endpoint{{ID: 1, Verb: "GET", Route: "/orders"}}

	ucs := x.Extract(g, actors, endpoints, nil)
	if len(ucs) != 1 {
		t.Fatalf("use cases = %d, want 1", len(ucs))
	}
	if got := len(ucs[0].Steps); got != 1 {
		t.Fatalf("steps = %d, want 1 with depth bound 1", got)
	}
}

func TestExtractOneUseCasePerActorEndpoint(t *testing.T) {
	g := buildGraph(t, map[int64]entity.Kind{
		1: entity.KindEndpoint,
		2: entity.KindEndpoint,
		3: entity.KindView,
	}, []entity.Relationship{
		{SourceID: 1, TargetID: 3, Kind: entity.RelationExposes},
		{SourceID: 2, TargetID: 3, Kind: entity.RelationExposes},
	})

	x := NewExtractor(Options{})
	actors := []entity.Actor{
		{Name: "External User", Endpoints: []int64{1}},
		{Name: "API Client", Endpoints: []int64{2}},
	}
	endpoints := []entity.Endpoint{
		{ID: 1, Verb: "GET", Route: "/orders"},
		{ID: 2, Verb: "POST", Route: "/api/orders"},
	}

	ucs := x.Extract(g, actors, endpoints, nil)
	if len(ucs) != 2 {
		t.Fatalf("use cases = %d, want 2", len(ucs))
	}
	if ucs[0].Actor != "External User" || ucs[1].Actor != "API Client" {
		t.Errorf("actors = %q, %q", ucs[0].Actor, ucs[1].Actor)
	}
	if ucs[0].Name != "View Orders" {
		t.Errorf("name = %q, want %q", ucs[0].Name, "View Orders")
	}
	if ucs[1].Name != "Create Orders" {
		t.Errorf("name = %q, want %q", ucs[1].Name, "Create Orders")
	}
}

func TestExtractPrefersNamerSuggestion(t *testing.T) {
	g := buildGraph(t, map[int64]entity.Kind{
		1: entity.KindEndpoint,
		2: entity.KindView,
	}, []entity.Relationship{
		{SourceID: 1, TargetID: 2, Kind: entity.RelationExposes},
	})
	actors := []entity.Actor{{Name: "External User", Endpoints: []int64{1}}}
	endpoints := []entity.Endpoint{{ID: 1, Verb: "POST", Route: "/orders"}}

	x := NewExtractor(Options{Namer: stubNamer{names: []string{"Place Order", "Submit Order"}}})
	ucs := x.Extract(g, actors, endpoints, nil)
	if len(ucs) != 1 || ucs[0].Name != "Place Order" {
		t.Fatalf("name = %q, want namer's first suggestion", ucs[0].Name)
	}

	x = NewExtractor(Options{Namer: stubNamer{err: errors.New("model unavailable")}})
	ucs = x.Extract(g, actors, endpoints, nil)
	if len(ucs) != 1 || ucs[0].Name != "Create Orders" {
		t.Fatalf("name = %q, want fallback when namer fails", ucs[0].Name)
	}
}

func TestFallbackName(t *testing.T) {
	tests := []struct {
		verb, route, handler string
		models               []string
		want                 string
	}{
		{"GET", "/orders", "", nil, "View Orders"},
		{"POST", "/api/orders", "", nil, "Create Orders"},
		{"DELETE", "/orders/{id}", "", nil, "Delete Orders"},
		{"PATCH", "/orders/:id", "", nil, "Update Orders"},
		{"ANY", "/health", "", nil, "Access Health"},
		{"GET", "/", "home_page", nil, "View Home Page"},
		{"GET", "/orders", "", []string{"Order"}, "View Order"},
		{"GET", "/order-items", "", nil, "View Order Items"},
	}
	for _, tt := range tests {
		ep := entity.Endpoint{Verb: tt.verb, Route: tt.route, Handler: tt.handler}
		if got := FallbackName(ep, tt.models); got != tt.want {
			t.Errorf("FallbackName(%s %s) = %q, want %q", tt.verb, tt.route, got, tt.want)
		}
	}
}
