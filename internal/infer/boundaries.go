package infer

import (
	"fmt"
	"sort"

	"github.com/mpetrov/archmap/internal/entity"
)

var authLabels = map[entity.AuthClass]string{
	entity.AuthNone:     "Public Web",
	entity.AuthSession:  "Authenticated Web",
	entity.AuthToken:    "Partner API",
	entity.AuthInternal: "Internal Services",
}

// Boundaries groups endpoints by authentication surface and module
// co-location into trust perimeters, then attaches services to the most
// specific boundary whose module matches. An auth surface spanning a single
// module stays one boundary; spanning several, it splits per module.
func Boundaries(endpoints []entity.Endpoint, services []entity.Service) []entity.SystemBoundary {
	if len(endpoints) == 0 {
		return nil
	}

	type bucketKey struct {
		auth   entity.AuthClass
		module string
	}
	buckets := make(map[bucketKey][]int64)
	modulesByAuth := make(map[entity.AuthClass]map[string]bool)
	for _, e := range endpoints {
		k := bucketKey{e.Auth, e.Module}
		buckets[k] = append(buckets[k], e.ID)
		if modulesByAuth[e.Auth] == nil {
			modulesByAuth[e.Auth] = make(map[string]bool)
		}
		modulesByAuth[e.Auth][e.Module] = true
	}

	var boundaries []entity.SystemBoundary
	byModule := make(map[string]int) // module -> boundary index, most specific wins

	// fixed auth order keeps output deterministic
	for _, p := range actorProfiles {
		modules := modulesByAuth[p.auth]
		if len(modules) == 0 {
			continue
		}
		sorted := make([]string, 0, len(modules))
		for m := range modules {
			sorted = append(sorted, m)
		}
		sort.Strings(sorted)

		label := authLabels[p.auth]
		for _, m := range sorted {
			name := label
			if len(sorted) > 1 {
				name = fmt.Sprintf("%s (%s)", label, m)
			}
			b := entity.SystemBoundary{
				Name:    name,
				Auth:    p.auth,
				Module:  m,
				Members: buckets[bucketKey{p.auth, m}],
			}
			boundaries = append(boundaries, b)
			if _, taken := byModule[m]; !taken {
				byModule[m] = len(boundaries) - 1
			}
		}
	}

	// services join the boundary co-located with their module; a service
	// never creates a boundary of its own
	for _, s := range services {
		if i, ok := byModule[s.Module]; ok {
			boundaries[i].Members = append(boundaries[i].Members, s.ID)
		}
	}
	return boundaries
}
