package entity

// RelationKind represents the type of relationship between entities
type RelationKind string

const (
	RelationUses     RelationKind = "uses"     // view/service -> service
	RelationExposes  RelationKind = "exposes"  // endpoint -> view
	RelationPersists RelationKind = "persists" // model -> service
)

// Relationship is a directed edge between two discovered entities
type Relationship struct {
	SourceID int64        `json:"source_id"`
	TargetID int64        `json:"target_id"`
	Kind     RelationKind `json:"kind"`
}
