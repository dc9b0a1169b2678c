package infer

import "github.com/mpetrov/archmap/internal/entity"

// actorProfile associates an auth class with the actor it implies
type actorProfile struct {
	auth entity.AuthClass
	name string
	role entity.Role
}

// in presentation order, external first
var actorProfiles = []actorProfile{
	{entity.AuthNone, "External User", entity.RoleExternalUser},
	{entity.AuthSession, "Registered User", entity.RoleExternalUser},
	{entity.AuthToken, "API Client", entity.RoleExternalSystem},
	{entity.AuthInternal, "Internal Service", entity.RoleInternalService},
}

// Actors infers the initiators implied by the endpoint inventory.
// Unauthenticated endpoints imply a generic external user, internal-only
// endpoints imply a service actor. No endpoints, no actors.
func Actors(endpoints []entity.Endpoint) []entity.Actor {
	reach := make(map[entity.AuthClass][]int64)
	for _, e := range endpoints {
		reach[e.Auth] = append(reach[e.Auth], e.ID)
	}

	var actors []entity.Actor
	for _, p := range actorProfiles {
		ids, ok := reach[p.auth]
		if !ok {
			continue
		}
		actors = append(actors, entity.Actor{
			Name:      p.name,
			Role:      p.role,
			Endpoints: ids,
		})
	}
	return actors
}
