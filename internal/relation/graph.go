// Package relation owns the directed relationship graph over discovered
// entities and the mapper that builds it from the inventories.
package relation

import (
	"fmt"

	"github.com/mpetrov/archmap/internal/entity"
)

// Graph is a directed multigraph keyed by entity ID, queryable by outgoing
// and incoming edges. Edges are deduplicated on (source, target, kind) and
// both endpoints must be registered nodes, so the graph never dangles.
type Graph struct {
	kinds   map[int64]entity.Kind
	out     map[int64][]entity.Relationship
	in      map[int64][]entity.Relationship
	edges   []entity.Relationship
	edgeSet map[string]bool
}

func NewGraph() *Graph {
	return &Graph{
		kinds:   make(map[int64]entity.Kind),
		out:     make(map[int64][]entity.Relationship),
		in:      make(map[int64][]entity.Relationship),
		edgeSet: make(map[string]bool),
	}
}

// AddNode registers an entity. Adding the same ID twice keeps the first kind.
func (g *Graph) AddNode(id int64, kind entity.Kind) {
	if _, ok := g.kinds[id]; !ok {
		g.kinds[id] = kind
	}
}

// AddEdge links two registered entities. Returns false when either endpoint
// is unknown (the edge would dangle) or the edge already exists.
func (g *Graph) AddEdge(source, target int64, kind entity.RelationKind) bool {
	if _, ok := g.kinds[source]; !ok {
		return false
	}
	if _, ok := g.kinds[target]; !ok {
		return false
	}
	key := fmt.Sprintf("%d->%d:%s", source, target, kind)
	if g.edgeSet[key] {
		return false
	}
	g.edgeSet[key] = true

	rel := entity.Relationship{SourceID: source, TargetID: target, Kind: kind}
	g.edges = append(g.edges, rel)
	g.out[source] = append(g.out[source], rel)
	g.in[target] = append(g.in[target], rel)
	return true
}

// Outgoing returns the edges leaving id, in insertion order
func (g *Graph) Outgoing(id int64) []entity.Relationship { return g.out[id] }

// Incoming returns the edges arriving at id, in insertion order
func (g *Graph) Incoming(id int64) []entity.Relationship { return g.in[id] }

// Edges returns every edge in insertion order
func (g *Graph) Edges() []entity.Relationship { return g.edges }

// KindOf reports the registered category of an entity
func (g *Graph) KindOf(id int64) (entity.Kind, bool) {
	k, ok := g.kinds[id]
	return k, ok
}

func (g *Graph) HasNode(id int64) bool {
	_, ok := g.kinds[id]
	return ok
}

func (g *Graph) NodeCount() int { return len(g.kinds) }

func (g *Graph) EdgeCount() int { return len(g.edges) }
