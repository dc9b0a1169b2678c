// Package export generates architecture documents from a persisted analysis.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mpetrov/archmap/internal/entity"
	"github.com/mpetrov/archmap/internal/storage"
)

// Exporter generates architecture documentation from the analysis database
type Exporter struct {
	db *storage.DB
}

// NewExporter creates a new exporter
func NewExporter(db *storage.DB) *Exporter {
	return &Exporter{db: db}
}

// Options configures the export behavior
type Options struct {
	Format         string // "markdown" or "json"
	IncludeMermaid bool
	ProjectName    string
}

// DefaultOptions returns default export options
func DefaultOptions() Options {
	return Options{
		Format:         "markdown",
		IncludeMermaid: true,
		ProjectName:    "Project",
	}
}

// Export writes the architecture document in the configured format
func (e *Exporter) Export(w io.Writer, opts Options) error {
	switch opts.Format {
	case "", "markdown":
		return e.exportMarkdown(w, opts)
	case "json":
		return e.exportJSON(w, opts)
	default:
		return fmt.Errorf("unknown export format %q", opts.Format)
	}
}

func (e *Exporter) exportMarkdown(w io.Writer, opts Options) error {
	stats, err := e.db.GetStats()
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	fmt.Fprintf(w, "# %s Architecture\n\n", opts.ProjectName)
	fmt.Fprintf(w, "> Generated: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	if stats.Root != "" {
		fmt.Fprintf(w, "> Source: %s\n", stats.Root)
	}
	fmt.Fprintf(w, "> Endpoints: %d | Models: %d | Views: %d | Services: %d | Use cases: %d\n\n",
		stats.Endpoints, stats.Models, stats.Views, stats.Services, stats.UseCases)

	if err := e.writeActors(w); err != nil {
		return err
	}
	if err := e.writeBoundaries(w); err != nil {
		return err
	}
	if err := e.writeEndpoints(w); err != nil {
		return err
	}
	if err := e.writeModels(w); err != nil {
		return err
	}
	if err := e.writeUseCases(w); err != nil {
		return err
	}
	if opts.IncludeMermaid {
		if err := e.writeRelationshipDiagram(w); err != nil {
			return err
		}
	}
	return nil
}

func (e *Exporter) writeActors(w io.Writer) error {
	actors, err := e.db.GetActors()
	if err != nil {
		return fmt.Errorf("failed to get actors: %w", err)
	}
	if len(actors) == 0 {
		return nil
	}

	fmt.Fprintf(w, "## Actors\n\n")
	fmt.Fprintf(w, "| Actor | Role | Reachable endpoints |\n")
	fmt.Fprintf(w, "|-------|------|--------------------|\n")
	for _, a := range actors {
		fmt.Fprintf(w, "| %s | %s | %d |\n", a.Name, a.Role, len(a.Endpoints))
	}
	fmt.Fprintf(w, "\n")
	return nil
}

func (e *Exporter) writeBoundaries(w io.Writer) error {
	boundaries, err := e.db.GetBoundaries()
	if err != nil {
		return fmt.Errorf("failed to get boundaries: %w", err)
	}
	if len(boundaries) == 0 {
		return nil
	}

	fmt.Fprintf(w, "## System Boundaries\n\n")
	for _, b := range boundaries {
		fmt.Fprintf(w, "### %s\n\n", b.Name)
		for _, m := range b.Members {
			fmt.Fprintf(w, "- %s `%s`\n", m.Kind, entityLabel(m))
		}
		fmt.Fprintf(w, "\n")
	}
	return nil
}

func (e *Exporter) writeEndpoints(w io.Writer) error {
	endpoints, err := e.db.GetEntitiesByKind(entity.KindEndpoint)
	if err != nil {
		return fmt.Errorf("failed to get endpoints: %w", err)
	}
	if len(endpoints) == 0 {
		return nil
	}

	fmt.Fprintf(w, "## Endpoints\n\n")
	fmt.Fprintf(w, "| Verb | Route | Module | Auth | Location |\n")
	fmt.Fprintf(w, "|------|-------|--------|------|----------|\n")
	for _, ep := range endpoints {
		auth := string(ep.Auth)
		if auth == "" {
			auth = "-"
		}
		fmt.Fprintf(w, "| %s | `%s` | %s | %s | %s:%d |\n",
			ep.Verb, ep.Name, ep.Module, auth, ep.File, ep.Line)
	}
	fmt.Fprintf(w, "\n")
	return nil
}

func (e *Exporter) writeModels(w io.Writer) error {
	models, err := e.db.GetEntitiesByKind(entity.KindModel)
	if err != nil {
		return fmt.Errorf("failed to get models: %w", err)
	}
	if len(models) == 0 {
		return nil
	}

	fmt.Fprintf(w, "## Models\n\n")
	fmt.Fprintf(w, "| Model | Module | Fields | Location |\n")
	fmt.Fprintf(w, "|-------|--------|--------|----------|\n")
	for _, m := range models {
		var names []string
		for _, f := range m.Fields() {
			names = append(names, f.Name)
		}
		fields := strings.Join(names, ", ")
		if fields == "" {
			fields = "-"
		}
		fmt.Fprintf(w, "| %s | %s | %s | %s:%d |\n", m.Name, m.Module, fields, m.File, m.Line)
	}
	fmt.Fprintf(w, "\n")
	return nil
}

func (e *Exporter) writeUseCases(w io.Writer) error {
	ucs, err := e.db.GetUseCases()
	if err != nil {
		return fmt.Errorf("failed to get use cases: %w", err)
	}
	if len(ucs) == 0 {
		return nil
	}

	fmt.Fprintf(w, "## Use Cases\n\n")
	for _, uc := range ucs {
		fmt.Fprintf(w, "### %s\n\n", uc.Name)
		fmt.Fprintf(w, "**Actor**: %s\n\n", uc.Actor)
		for i, step := range uc.Steps {
			fmt.Fprintf(w, "%d. %s\n", i+1, stepText(step))
		}
		fmt.Fprintf(w, "\n")
	}
	return nil
}

// stepText puts one narrative step into words. Persists edges run model to
// service; the narrative reads service-first.
func stepText(s storage.Step) string {
	switch s.Kind {
	case entity.RelationExposes:
		return fmt.Sprintf("`%s` exposes `%s`", s.SourceName, s.TargetName)
	case entity.RelationPersists:
		return fmt.Sprintf("`%s` persists `%s`", s.TargetName, s.SourceName)
	default:
		return fmt.Sprintf("`%s` uses `%s`", s.SourceName, s.TargetName)
	}
}

func (e *Exporter) writeRelationshipDiagram(w io.Writer) error {
	edges, err := e.db.GetAllEdges()
	if err != nil {
		return fmt.Errorf("failed to get edges: %w", err)
	}
	if len(edges) == 0 {
		return nil
	}

	involved := make(map[int64]bool)
	for _, edge := range edges {
		involved[edge.SourceID] = true
		involved[edge.TargetID] = true
	}

	fmt.Fprintf(w, "## Relationship Graph\n\n```mermaid\nflowchart LR\n")
	for _, kind := range []entity.Kind{entity.KindEndpoint, entity.KindView, entity.KindService, entity.KindModel} {
		rows, err := e.db.GetEntitiesByKind(kind)
		if err != nil {
			return fmt.Errorf("failed to get %s entities: %w", kind, err)
		}
		for _, row := range rows {
			if !involved[row.ID] {
				continue
			}
			fmt.Fprintf(w, "    %s\n", mermaidNode(row))
		}
	}
	fmt.Fprintf(w, "\n")
	for _, edge := range edges {
		fmt.Fprintf(w, "    e%d -->|%s| e%d\n", edge.SourceID, edge.Kind, edge.TargetID)
	}
	fmt.Fprintf(w, "```\n\n")
	return nil
}

// mermaidNode picks a shape per kind: stadium for endpoints, cylinder for
// models, subroutine for services.
func mermaidNode(row *storage.Entity) string {
	label := strings.ReplaceAll(entityLabel(row), `"`, `'`)
	switch row.Kind {
	case entity.KindEndpoint:
		return fmt.Sprintf(`e%d(["%s"])`, row.ID, label)
	case entity.KindModel:
		return fmt.Sprintf(`e%d[("%s")]`, row.ID, label)
	case entity.KindService:
		return fmt.Sprintf(`e%d[["%s"]]`, row.ID, label)
	default:
		return fmt.Sprintf(`e%d["%s"]`, row.ID, label)
	}
}

func entityLabel(row *storage.Entity) string {
	if row.Kind == entity.KindEndpoint && row.Verb != "" {
		return row.Verb + " " + row.Name
	}
	return row.Name
}

// document is the JSON export shape
type document struct {
	Project    string        `json:"project"`
	Root       string        `json:"root,omitempty"`
	AnalyzedAt string        `json:"analyzed_at,omitempty"`
	Endpoints  []endpointDoc `json:"endpoints"`
	Models     []modelDoc    `json:"models"`
	Views      []namedDoc    `json:"views"`
	Services   []namedDoc    `json:"services"`
	Actors     []actorDoc    `json:"actors"`
	Boundaries []boundaryDoc `json:"boundaries"`
	UseCases   []useCaseDoc  `json:"use_cases"`
	Edges      []edgeDoc     `json:"relationships"`
}

type endpointDoc struct {
	Route      string   `json:"route"`
	Verb       string   `json:"verb"`
	Module     string   `json:"module,omitempty"`
	Handler    string   `json:"handler,omitempty"`
	Auth       string   `json:"auth,omitempty"`
	Params     []string `json:"params,omitempty"`
	File       string   `json:"file"`
	Line       int      `json:"line"`
	Confidence float64  `json:"confidence"`
}

type modelDoc struct {
	Name       string         `json:"name"`
	Module     string         `json:"module,omitempty"`
	Fields     []entity.Field `json:"fields,omitempty"`
	File       string         `json:"file"`
	Line       int            `json:"line"`
	Confidence float64        `json:"confidence"`
}

type namedDoc struct {
	Name       string  `json:"name"`
	Module     string  `json:"module,omitempty"`
	File       string  `json:"file"`
	Line       int     `json:"line"`
	Confidence float64 `json:"confidence"`
}

type actorDoc struct {
	Name      string   `json:"name"`
	Role      string   `json:"role"`
	Endpoints []string `json:"endpoints,omitempty"`
}

type boundaryDoc struct {
	Name    string   `json:"name"`
	Auth    string   `json:"auth,omitempty"`
	Module  string   `json:"module,omitempty"`
	Members []string `json:"members,omitempty"`
}

type useCaseDoc struct {
	Name  string    `json:"name"`
	Actor string    `json:"actor"`
	Steps []stepDoc `json:"steps"`
}

type stepDoc struct {
	From string `json:"from"`
	To   string `json:"to"`
	Kind string `json:"kind"`
}

type edgeDoc struct {
	SourceID int64  `json:"source_id"`
	TargetID int64  `json:"target_id"`
	Kind     string `json:"kind"`
}

func (e *Exporter) exportJSON(w io.Writer, opts Options) error {
	stats, err := e.db.GetStats()
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	doc := document{
		Project:    opts.ProjectName,
		Root:       stats.Root,
		AnalyzedAt: stats.AnalyzedAt,
	}

	endpoints, err := e.db.GetEntitiesByKind(entity.KindEndpoint)
	if err != nil {
		return fmt.Errorf("failed to get endpoints: %w", err)
	}
	for _, ep := range endpoints {
		doc.Endpoints = append(doc.Endpoints, endpointDoc{
			Route: ep.Name, Verb: ep.Verb, Module: ep.Module, Handler: ep.Handler,
			Auth: string(ep.Auth), Params: ep.Params(),
			File: ep.File, Line: ep.Line, Confidence: ep.Confidence,
		})
	}

	models, err := e.db.GetEntitiesByKind(entity.KindModel)
	if err != nil {
		return fmt.Errorf("failed to get models: %w", err)
	}
	for _, m := range models {
		doc.Models = append(doc.Models, modelDoc{
			Name: m.Name, Module: m.Module, Fields: m.Fields(),
			File: m.File, Line: m.Line, Confidence: m.Confidence,
		})
	}

	for _, spec := range []struct {
		kind entity.Kind
		dest *[]namedDoc
	}{
		{entity.KindView, &doc.Views},
		{entity.KindService, &doc.Services},
	} {
		rows, err := e.db.GetEntitiesByKind(spec.kind)
		if err != nil {
			return fmt.Errorf("failed to get %s entities: %w", spec.kind, err)
		}
		for _, row := range rows {
			*spec.dest = append(*spec.dest, namedDoc{
				Name: row.Name, Module: row.Module,
				File: row.File, Line: row.Line, Confidence: row.Confidence,
			})
		}
	}

	actors, err := e.db.GetActors()
	if err != nil {
		return fmt.Errorf("failed to get actors: %w", err)
	}
	for _, a := range actors {
		ad := actorDoc{Name: a.Name, Role: string(a.Role)}
		for _, ep := range a.Endpoints {
			ad.Endpoints = append(ad.Endpoints, entityLabel(ep))
		}
		doc.Actors = append(doc.Actors, ad)
	}

	boundaries, err := e.db.GetBoundaries()
	if err != nil {
		return fmt.Errorf("failed to get boundaries: %w", err)
	}
	for _, b := range boundaries {
		bd := boundaryDoc{Name: b.Name, Auth: string(b.Auth), Module: b.Module}
		for _, m := range b.Members {
			bd.Members = append(bd.Members, entityLabel(m))
		}
		doc.Boundaries = append(doc.Boundaries, bd)
	}

	ucs, err := e.db.GetUseCases()
	if err != nil {
		return fmt.Errorf("failed to get use cases: %w", err)
	}
	for _, uc := range ucs {
		ud := useCaseDoc{Name: uc.Name, Actor: uc.Actor}
		for _, step := range uc.Steps {
			ud.Steps = append(ud.Steps, stepDoc{
				From: step.SourceName, To: step.TargetName, Kind: string(step.Kind),
			})
		}
		doc.UseCases = append(doc.UseCases, ud)
	}

	edges, err := e.db.GetAllEdges()
	if err != nil {
		return fmt.Errorf("failed to get edges: %w", err)
	}
	for _, edge := range edges {
		doc.Edges = append(doc.Edges, edgeDoc{
			SourceID: edge.SourceID, TargetID: edge.TargetID, Kind: string(edge.Kind),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
