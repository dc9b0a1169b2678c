package entity

// Kind identifies the inventory category an entity belongs to
type Kind string

const (
	KindEndpoint Kind = "endpoint"
	KindModel    Kind = "model"
	KindView     Kind = "view"
	KindService  Kind = "service"
)

// Language is the detected source language of a scanned file
type Language string

const (
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangRuby       Language = "ruby"
	LangGo         Language = "go"
)

// AuthClass is the normalized authentication surface of an endpoint
type AuthClass string

const (
	AuthNone     AuthClass = ""         // no marker found, reachable anonymously
	AuthSession  AuthClass = "session"  // login/session guarded
	AuthToken    AuthClass = "token"    // token or API-key guarded
	AuthInternal AuthClass = "internal" // internal-only, not externally reachable
)

// SourceFile is one scanned source file, immutable once the scanner returns it
type SourceFile struct {
	Path     string   `json:"path"` // relative to the scanned root
	AbsPath  string   `json:"-"`
	Language Language `json:"language"`
	Tags     []Kind   `json:"tags,omitempty"` // path-convention hints
	Lines    []string `json:"-"`
}

// Tagged reports whether the scanner tagged the file with the given category
func (f *SourceFile) Tagged(k Kind) bool {
	for _, t := range f.Tags {
		if t == k {
			return true
		}
	}
	return false
}

// Endpoint is a discovered externally reachable route declaration
type Endpoint struct {
	ID         int64     `json:"id"`
	Route      string    `json:"route"`
	Verb       string    `json:"verb"`
	Module     string    `json:"module"`
	Handler    string    `json:"handler,omitempty"`
	Params     []string  `json:"params,omitempty"`
	Auth       AuthClass `json:"auth,omitempty"`
	File       string    `json:"file"`
	Line       int       `json:"line"`
	Confidence float64   `json:"confidence"`
}

// Field is one declared field of a data model
type Field struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"` // inferred, best effort
}

// Model is a discovered data model declaration
type Model struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Fields     []Field `json:"fields,omitempty"`
	Module     string  `json:"module"`
	File       string  `json:"file"`
	Line       int     `json:"line"`
	Confidence float64 `json:"confidence"`
}

// View is a discovered presentation-layer declaration
type View struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	Module     string   `json:"module"`
	Refs       []string `json:"refs,omitempty"` // names referenced in the body
	File       string   `json:"file"`
	Line       int      `json:"line"`
	Confidence float64  `json:"confidence"`
}

// Service is a discovered service/business-logic declaration
type Service struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	Module     string   `json:"module"`
	Refs       []string `json:"refs,omitempty"` // names referenced in the body
	File       string   `json:"file"`
	Line       int      `json:"line"`
	Confidence float64  `json:"confidence"`
}

// Feature is a module-co-located grouping of discovered entities
type Feature struct {
	Name      string  `json:"name"`
	Module    string  `json:"module"`
	Endpoints []int64 `json:"endpoints,omitempty"`
	Models    []int64 `json:"models,omitempty"`
	Views     []int64 `json:"views,omitempty"`
	Services  []int64 `json:"services,omitempty"`
}

// Warning records a non-fatal problem met while scanning or extracting.
// Warnings accumulate on the analyzer; they never abort a pass.
type Warning struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}
