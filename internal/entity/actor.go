package entity

// Role classifies an inferred actor
type Role string

const (
	RoleExternalUser    Role = "external-user"
	RoleExternalSystem  Role = "external-system"
	RoleInternalService Role = "internal-service"
)

// Actor is an inferred initiator of use cases. Derived, never scanned directly.
type Actor struct {
	Name      string  `json:"name"`
	Role      Role    `json:"role"`
	Endpoints []int64 `json:"endpoints,omitempty"` // endpoint IDs reachable by this actor
}

// SystemBoundary is a named grouping of entities sharing a trust perimeter
type SystemBoundary struct {
	Name    string    `json:"name"`
	Auth    AuthClass `json:"auth,omitempty"`
	Module  string    `json:"module,omitempty"` // empty for auth-class-wide boundaries
	Members []int64   `json:"members,omitempty"`
}
