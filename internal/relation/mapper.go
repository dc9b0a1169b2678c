package relation

import (
	"strings"

	"github.com/mpetrov/archmap/internal/entity"
)

// Mapper links the four inventories into a relationship graph:
// endpoints expose views, views and services use services, models are
// persisted by the services referencing them. References that resolve to
// nothing are dropped rather than dangling.
type Mapper struct{}

func NewMapper() *Mapper { return &Mapper{} }

// Map builds the graph in three passes: register nodes, wire endpoint
// exposure, then resolve name references.
func (m *Mapper) Map(endpoints []entity.Endpoint, models []entity.Model, views []entity.View, services []entity.Service) *Graph {
	g := NewGraph()

	for _, e := range endpoints {
		g.AddNode(e.ID, entity.KindEndpoint)
	}
	for _, md := range models {
		g.AddNode(md.ID, entity.KindModel)
	}
	for _, v := range views {
		g.AddNode(v.ID, entity.KindView)
	}
	for _, s := range services {
		g.AddNode(s.ID, entity.KindService)
	}

	viewIdx := newNameIndex()
	for _, v := range views {
		viewIdx.add(v.Name, v.Module, v.ID)
	}
	serviceIdx := newNameIndex()
	for _, s := range services {
		serviceIdx.add(s.Name, s.Module, s.ID)
	}
	modelIdx := newNameIndex()
	for _, md := range models {
		modelIdx.add(md.Name, md.Module, md.ID)
	}

	viewsPerModule := make(map[string][]int64)
	for _, v := range views {
		viewsPerModule[v.Module] = append(viewsPerModule[v.Module], v.ID)
	}

	// endpoint -> view: by handler name, else by unambiguous co-location
	for _, e := range endpoints {
		if id, ok := viewIdx.resolve(e.Handler, e.Module); ok {
			g.AddEdge(e.ID, id, entity.RelationExposes)
			continue
		}
		if local := viewsPerModule[e.Module]; len(local) == 1 {
			g.AddEdge(e.ID, local[0], entity.RelationExposes)
		}
	}

	// view -> service
	for _, v := range views {
		for _, ref := range v.Refs {
			if id, ok := serviceIdx.resolve(ref, v.Module); ok && id != v.ID {
				g.AddEdge(v.ID, id, entity.RelationUses)
			}
		}
	}

	// service -> service and model -> service
	for _, s := range services {
		for _, ref := range s.Refs {
			if id, ok := serviceIdx.resolve(ref, s.Module); ok && id != s.ID {
				g.AddEdge(s.ID, id, entity.RelationUses)
			}
			if id, ok := modelIdx.resolve(ref, s.Module); ok {
				g.AddEdge(id, s.ID, entity.RelationPersists)
			}
		}
	}

	return g
}

// nameIndex resolves case-insensitive entity names, preferring a candidate
// from the asking module, then the earliest discovered
type nameIndex struct {
	byName map[string][]nameEntry
}

type nameEntry struct {
	module string
	id     int64
}

func newNameIndex() *nameIndex {
	return &nameIndex{byName: make(map[string][]nameEntry)}
}

func (idx *nameIndex) add(name, module string, id int64) {
	key := strings.ToLower(name)
	idx.byName[key] = append(idx.byName[key], nameEntry{module: module, id: id})
}

func (idx *nameIndex) resolve(name, module string) (int64, bool) {
	if name == "" {
		return 0, false
	}
	entries := idx.byName[strings.ToLower(name)]
	if len(entries) == 0 {
		return 0, false
	}
	for _, e := range entries {
		if e.module == module {
			return e.id, true
		}
	}
	return entries[0].id, true
}
