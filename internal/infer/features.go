// Package infer derives the aggregate views over the extracted inventories:
// module features, actors and system boundaries. Everything here is
// heuristic and read-only over the inputs.
package infer

import (
	"sort"
	"strings"

	"github.com/mpetrov/archmap/internal/entity"
)

// Features groups the four inventories by owning module. Output is ordered
// by module path.
func Features(endpoints []entity.Endpoint, models []entity.Model, views []entity.View, services []entity.Service) []entity.Feature {
	byModule := make(map[string]*entity.Feature)
	touch := func(module string) *entity.Feature {
		f, ok := byModule[module]
		if !ok {
			f = &entity.Feature{Module: module}
			byModule[module] = f
		}
		return f
	}

	for _, e := range endpoints {
		f := touch(e.Module)
		f.Endpoints = append(f.Endpoints, e.ID)
	}
	for _, m := range models {
		f := touch(m.Module)
		f.Models = append(f.Models, m.ID)
	}
	for _, v := range views {
		f := touch(v.Module)
		f.Views = append(f.Views, v.ID)
	}
	for _, s := range services {
		f := touch(s.Module)
		f.Services = append(f.Services, s.ID)
	}

	modules := make([]string, 0, len(byModule))
	for m := range byModule {
		modules = append(modules, m)
	}
	sort.Strings(modules)

	// short names collide when two modules share a trailing segment
	lastSeen := make(map[string]int)
	for _, m := range modules {
		lastSeen[lastModuleSegment(m)]++
	}

	features := make([]entity.Feature, 0, len(modules))
	for _, m := range modules {
		f := byModule[m]
		if lastSeen[lastModuleSegment(m)] > 1 {
			f.Name = humanize(m)
		} else {
			f.Name = humanize(lastModuleSegment(m))
		}
		features = append(features, *f)
	}
	return features
}

func lastModuleSegment(module string) string {
	if i := strings.LastIndex(module, "/"); i >= 0 {
		return module[i+1:]
	}
	return module
}

// humanize turns app/invoice_tasks into "App Invoice Tasks"
func humanize(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '/' || r == '_' || r == '-' || r == '.'
	})
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
