package entity

// UseCase is a synthesized narrative path from an actor to data, built from
// traversed relationships
type UseCase struct {
	Name     string         `json:"name"`
	Actor    string         `json:"actor"`
	Entities []int64        `json:"entities,omitempty"` // every entity the path touches
	Steps    []Relationship `json:"steps,omitempty"`    // ordered traversal
}
