// Package usecase synthesizes user-facing use cases from the relationship
// graph and the actor set.
package usecase

import (
	"github.com/mpetrov/archmap/internal/entity"
	"github.com/mpetrov/archmap/internal/relation"
)

// DefaultMaxDepth bounds a single traversal
const DefaultMaxDepth = 8

// Options configures an Extractor
type Options struct {
	MaxDepth int   // 0 picks DefaultMaxDepth
	Namer    Namer // optional naming collaborator
}

// Extractor walks the relationship graph breadth-first from each endpoint an
// actor can reach. A visited set guards against cycles: no entity is visited
// twice within one traversal, so the walk terminates on any graph.
type Extractor struct {
	maxDepth int
	namer    Namer
}

func NewExtractor(opts Options) *Extractor {
	depth := opts.MaxDepth
	if depth <= 0 {
		depth = DefaultMaxDepth
	}
	return &Extractor{maxDepth: depth, namer: opts.Namer}
}

// Extract produces one use case per coherent path from an actor's entry
// endpoint. Endpoints whose traversal reaches nothing yield no use case.
func (x *Extractor) Extract(g *relation.Graph, actors []entity.Actor, endpoints []entity.Endpoint, models []entity.Model) []entity.UseCase {
	epByID := make(map[int64]entity.Endpoint, len(endpoints))
	for _, e := range endpoints {
		epByID[e.ID] = e
	}
	modelName := make(map[int64]string, len(models))
	for _, m := range models {
		modelName[m.ID] = m.Name
	}

	var ucs []entity.UseCase
	for _, actor := range actors {
		for _, epID := range actor.Endpoints {
			uc, ok := x.traverse(g, actor.Name, epID)
			if !ok {
				continue
			}
			var reached []string
			for _, id := range uc.Entities {
				if name, isModel := modelName[id]; isModel {
					reached = append(reached, name)
				}
			}
			uc.Name = x.nameFor(uc, epByID[epID], reached)
			ucs = append(ucs, uc)
		}
	}
	return ucs
}

// traverse is a bounded breadth-first walk over outgoing exposes/uses edges.
// Reached services additionally pull their incoming persists edges as
// terminal hops, so the narrative ends at the data.
func (x *Extractor) traverse(g *relation.Graph, actor string, start int64) (entity.UseCase, bool) {
	type item struct {
		id    int64
		depth int
	}
	visited := map[int64]bool{start: true}
	queue := []item{{id: start}}
	uc := entity.UseCase{Actor: actor, Entities: []int64{start}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= x.maxDepth {
			continue
		}

		for _, edge := range g.Outgoing(cur.id) {
			if edge.Kind != entity.RelationExposes && edge.Kind != entity.RelationUses {
				continue
			}
			if visited[edge.TargetID] {
				continue
			}
			visited[edge.TargetID] = true
			uc.Steps = append(uc.Steps, edge)
			uc.Entities = append(uc.Entities, edge.TargetID)
			queue = append(queue, item{id: edge.TargetID, depth: cur.depth + 1})
		}

		if kind, _ := g.KindOf(cur.id); kind == entity.KindService {
			for _, edge := range g.Incoming(cur.id) {
				if edge.Kind != entity.RelationPersists || visited[edge.SourceID] {
					continue
				}
				visited[edge.SourceID] = true
				uc.Steps = append(uc.Steps, edge)
				uc.Entities = append(uc.Entities, edge.SourceID)
			}
		}
	}

	if len(uc.Steps) == 0 {
		return entity.UseCase{}, false
	}
	return uc, true
}

// nameFor asks the naming collaborator first; any failure falls back to the
// deterministic default, so naming never blocks extraction.
func (x *Extractor) nameFor(uc entity.UseCase, ep entity.Endpoint, modelNames []string) string {
	if x.namer != nil {
		if suggestions, err := x.namer.Suggest(uc); err == nil && len(suggestions) > 0 && suggestions[0] != "" {
			return suggestions[0]
		}
	}
	return FallbackName(ep, modelNames)
}
