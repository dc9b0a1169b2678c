// Package analyzer orchestrates the discovery pipeline: scan, the four
// extractors, feature grouping, actor and boundary inference, relationship
// mapping and use-case extraction. Operations must be invoked in dependency
// order; calling one before its dependencies have run yields an empty result,
// not an error. Re-running an operation replaces its own prior result and
// invalidates everything downstream of it.
package analyzer

import (
	"sort"

	"github.com/mpetrov/archmap/internal/entity"
	"github.com/mpetrov/archmap/internal/extract"
	"github.com/mpetrov/archmap/internal/infer"
	"github.com/mpetrov/archmap/internal/relation"
	"github.com/mpetrov/archmap/internal/scanner"
	"github.com/mpetrov/archmap/internal/usecase"
)

type stage int

const (
	stageEndpoints stage = iota
	stageModels
	stageViews
	stageServices
	stageFeatures
	stageActors
	stageBoundaries
	stageRelationships
	stageUseCases
)

var stageOrder = []stage{
	stageEndpoints, stageModels, stageViews, stageServices,
	stageFeatures, stageActors, stageBoundaries, stageRelationships,
	stageUseCases,
}

// dependents lists the stages whose results become stale when the keyed
// stage re-runs. Invalidation cascades through this map.
var dependents = map[stage][]stage{
	stageEndpoints:     {stageFeatures, stageActors, stageBoundaries, stageRelationships},
	stageModels:        {stageFeatures, stageRelationships},
	stageViews:         {stageFeatures, stageRelationships},
	stageServices:      {stageFeatures, stageBoundaries, stageRelationships},
	stageActors:        {stageUseCases},
	stageRelationships: {stageUseCases},
}

// Options configures a ProjectAnalyzer.
type Options struct {
	Scan           scanner.Options
	TraversalDepth int                         // use-case BFS bound, 0 picks the default
	Namer          usecase.Namer               // optional naming collaborator
	AuthMarkers    map[string]entity.AuthClass // extra endpoint auth markers
}

// DefaultOptions returns the zero-config analyzer options.
func DefaultOptions() Options {
	return Options{Scan: scanner.DefaultOptions()}
}

// ProjectAnalyzer owns the result sets of one analysis over one root. It is
// not safe for concurrent use; the pipeline is synchronous by design.
type ProjectAnalyzer struct {
	root string

	scanner   *scanner.Scanner
	endpoints *extract.EndpointExtractor
	models    *extract.ModelExtractor
	views     *extract.ViewExtractor
	services  *extract.ServiceExtractor
	mapper    *relation.Mapper
	usecases  *usecase.Extractor

	files   []*entity.SourceFile
	scanned bool
	seq     int64

	endpointSet []entity.Endpoint
	modelSet    []entity.Model
	viewSet     []entity.View
	serviceSet  []entity.Service
	featureSet  []entity.Feature
	actorSet    []entity.Actor
	boundarySet []entity.SystemBoundary
	graph       *relation.Graph
	useCaseSet  []entity.UseCase

	done          map[stage]bool
	scanWarnings  []entity.Warning
	stageWarnings map[stage][]entity.Warning
}

// New builds an analyzer rooted at the given path. Nothing is read until the
// first discovery call.
func New(root string, opts Options) *ProjectAnalyzer {
	ep := extract.NewEndpointExtractor()
	markers := make([]string, 0, len(opts.AuthMarkers))
	for marker := range opts.AuthMarkers {
		markers = append(markers, marker)
	}
	sort.Strings(markers)
	for _, marker := range markers {
		ep.AddAuthMarker(marker, opts.AuthMarkers[marker])
	}

	return &ProjectAnalyzer{
		root:          root,
		scanner:       scanner.New(opts.Scan),
		endpoints:     ep,
		models:        extract.NewModelExtractor(),
		views:         extract.NewViewExtractor(),
		services:      extract.NewServiceExtractor(),
		mapper:        relation.NewMapper(),
		usecases:      usecase.NewExtractor(usecase.Options{MaxDepth: opts.TraversalDepth, Namer: opts.Namer}),
		done:          make(map[stage]bool),
		stageWarnings: make(map[stage][]entity.Warning),
	}
}

// Root returns the analyzed path.
func (a *ProjectAnalyzer) Root() string { return a.root }

// scan runs lazily inside the first discovery call. A failed scan records no
// state at all, so a retry starts clean.
func (a *ProjectAnalyzer) scan() error {
	if a.scanned {
		return nil
	}
	files, warns, err := a.scanner.Scan(a.root)
	if err != nil {
		return err
	}
	a.files = files
	a.scanWarnings = warns
	a.scanned = true
	return nil
}

// invalidate clears everything downstream of s. Cascades, so re-running
// endpoint discovery also drops use cases built from stale relationships.
func (a *ProjectAnalyzer) invalidate(s stage) {
	for _, d := range dependents[s] {
		switch d {
		case stageFeatures:
			a.featureSet = nil
		case stageActors:
			a.actorSet = nil
		case stageBoundaries:
			a.boundarySet = nil
		case stageRelationships:
			a.graph = nil
		case stageUseCases:
			a.useCaseSet = nil
		}
		delete(a.done, d)
		delete(a.stageWarnings, d)
		a.invalidate(d)
	}
}

func (a *ProjectAnalyzer) complete(s stage, warns []entity.Warning) {
	a.invalidate(s)
	a.done[s] = true
	if len(warns) > 0 {
		a.stageWarnings[s] = warns
	} else {
		delete(a.stageWarnings, s)
	}
}

func (a *ProjectAnalyzer) ready(deps ...stage) bool {
	for _, d := range deps {
		if !a.done[d] {
			return false
		}
	}
	return true
}

func (a *ProjectAnalyzer) nextID() int64 {
	a.seq++
	return a.seq
}

// DiscoverEndpoints scans (on first call) and extracts the endpoint
// inventory. A missing or unreadable root returns a *scanner.ScanError.
func (a *ProjectAnalyzer) DiscoverEndpoints() ([]entity.Endpoint, error) {
	if err := a.scan(); err != nil {
		return nil, err
	}
	eps, warns := a.endpoints.Extract(a.files)
	for i := range eps {
		eps[i].ID = a.nextID()
	}
	a.endpointSet = eps
	a.complete(stageEndpoints, warns)
	return eps, nil
}

// DiscoverModels extracts the model inventory.
func (a *ProjectAnalyzer) DiscoverModels() ([]entity.Model, error) {
	if err := a.scan(); err != nil {
		return nil, err
	}
	models, warns := a.models.Extract(a.files)
	for i := range models {
		models[i].ID = a.nextID()
	}
	a.modelSet = models
	a.complete(stageModels, warns)
	return models, nil
}

// DiscoverViews extracts the view inventory.
func (a *ProjectAnalyzer) DiscoverViews() ([]entity.View, error) {
	if err := a.scan(); err != nil {
		return nil, err
	}
	views, warns := a.views.Extract(a.files)
	for i := range views {
		views[i].ID = a.nextID()
	}
	a.viewSet = views
	a.complete(stageViews, warns)
	return views, nil
}

// DiscoverServices extracts the service inventory.
func (a *ProjectAnalyzer) DiscoverServices() ([]entity.Service, error) {
	if err := a.scan(); err != nil {
		return nil, err
	}
	services, warns := a.services.Extract(a.files)
	for i := range services {
		services[i].ID = a.nextID()
	}
	a.serviceSet = services
	a.complete(stageServices, warns)
	return services, nil
}

// ExtractFeatures groups the four inventories by owning module. Requires all
// four discovery passes; otherwise returns an empty set.
func (a *ProjectAnalyzer) ExtractFeatures() []entity.Feature {
	if !a.ready(stageEndpoints, stageModels, stageViews, stageServices) {
		return nil
	}
	a.featureSet = infer.Features(a.endpointSet, a.modelSet, a.viewSet, a.serviceSet)
	a.complete(stageFeatures, nil)
	return a.featureSet
}

// DiscoverActors infers actors from endpoint auth surfaces. Requires
// endpoint discovery; otherwise returns an empty set.
func (a *ProjectAnalyzer) DiscoverActors() []entity.Actor {
	if !a.ready(stageEndpoints) {
		return nil
	}
	a.actorSet = infer.Actors(a.endpointSet)
	a.complete(stageActors, nil)
	return a.actorSet
}

// DiscoverBoundaries groups endpoints and co-located services into system
// boundaries. Requires endpoint and service discovery.
func (a *ProjectAnalyzer) DiscoverBoundaries() []entity.SystemBoundary {
	if !a.ready(stageEndpoints, stageServices) {
		return nil
	}
	a.boundarySet = infer.Boundaries(a.endpointSet, a.serviceSet)
	a.complete(stageBoundaries, nil)
	return a.boundarySet
}

// MapRelationships builds the directed relationship graph. Requires all four
// discovery passes; otherwise returns an empty graph.
func (a *ProjectAnalyzer) MapRelationships() *relation.Graph {
	if !a.ready(stageEndpoints, stageModels, stageViews, stageServices) {
		return relation.NewGraph()
	}
	a.graph = a.mapper.Map(a.endpointSet, a.modelSet, a.viewSet, a.serviceSet)
	a.complete(stageRelationships, nil)
	return a.graph
}

// ExtractUseCases synthesizes use cases from the graph and actor set.
// Requires relationship mapping and actor discovery.
func (a *ProjectAnalyzer) ExtractUseCases() []entity.UseCase {
	if !a.ready(stageRelationships, stageActors) {
		return nil
	}
	a.useCaseSet = a.usecases.Extract(a.graph, a.actorSet, a.endpointSet, a.modelSet)
	a.complete(stageUseCases, nil)
	return a.useCaseSet
}

// Run executes the full pipeline in dependency order.
func (a *ProjectAnalyzer) Run() error {
	if _, err := a.DiscoverEndpoints(); err != nil {
		return err
	}
	if _, err := a.DiscoverModels(); err != nil {
		return err
	}
	if _, err := a.DiscoverViews(); err != nil {
		return err
	}
	if _, err := a.DiscoverServices(); err != nil {
		return err
	}
	a.ExtractFeatures()
	a.DiscoverActors()
	a.DiscoverBoundaries()
	a.MapRelationships()
	a.ExtractUseCases()
	return nil
}

// Result accessors reflect the latest completed pass.

func (a *ProjectAnalyzer) Endpoints() []entity.Endpoint        { return a.endpointSet }
func (a *ProjectAnalyzer) Models() []entity.Model              { return a.modelSet }
func (a *ProjectAnalyzer) Views() []entity.View                { return a.viewSet }
func (a *ProjectAnalyzer) Services() []entity.Service          { return a.serviceSet }
func (a *ProjectAnalyzer) Features() []entity.Feature          { return a.featureSet }
func (a *ProjectAnalyzer) Actors() []entity.Actor              { return a.actorSet }
func (a *ProjectAnalyzer) Boundaries() []entity.SystemBoundary { return a.boundarySet }
func (a *ProjectAnalyzer) UseCases() []entity.UseCase          { return a.useCaseSet }

// Graph returns the relationship graph, or an empty graph before mapping.
func (a *ProjectAnalyzer) Graph() *relation.Graph {
	if a.graph == nil {
		return relation.NewGraph()
	}
	return a.graph
}

func (a *ProjectAnalyzer) EndpointCount() int { return len(a.endpointSet) }
func (a *ProjectAnalyzer) ModelCount() int    { return len(a.modelSet) }
func (a *ProjectAnalyzer) ViewCount() int     { return len(a.viewSet) }
func (a *ProjectAnalyzer) ServiceCount() int  { return len(a.serviceSet) }
func (a *ProjectAnalyzer) FeatureCount() int  { return len(a.featureSet) }
func (a *ProjectAnalyzer) ActorCount() int    { return len(a.actorSet) }
func (a *ProjectAnalyzer) BoundaryCount() int { return len(a.boundarySet) }
func (a *ProjectAnalyzer) UseCaseCount() int  { return len(a.useCaseSet) }
func (a *ProjectAnalyzer) FileCount() int     { return len(a.files) }

func (a *ProjectAnalyzer) RelationshipCount() int {
	if a.graph == nil {
		return 0
	}
	return a.graph.EdgeCount()
}

// Warnings returns scan and extraction warnings accumulated so far, in
// pipeline order. Re-running a pass replaces its warnings.
func (a *ProjectAnalyzer) Warnings() []entity.Warning {
	out := append([]entity.Warning(nil), a.scanWarnings...)
	for _, s := range stageOrder {
		out = append(out, a.stageWarnings[s]...)
	}
	return out
}

// Stats aggregates the counts of the latest completed passes.
type Stats struct {
	Files         int `json:"files"`
	Endpoints     int `json:"endpoints"`
	Models        int `json:"models"`
	Views         int `json:"views"`
	Services      int `json:"services"`
	Features      int `json:"features"`
	Actors        int `json:"actors"`
	Boundaries    int `json:"boundaries"`
	Relationships int `json:"relationships"`
	UseCases      int `json:"use_cases"`
	Warnings      int `json:"warnings"`
}

func (a *ProjectAnalyzer) Stats() Stats {
	return Stats{
		Files:         a.FileCount(),
		Endpoints:     a.EndpointCount(),
		Models:        a.ModelCount(),
		Views:         a.ViewCount(),
		Services:      a.ServiceCount(),
		Features:      a.FeatureCount(),
		Actors:        a.ActorCount(),
		Boundaries:    a.BoundaryCount(),
		Relationships: a.RelationshipCount(),
		UseCases:      a.UseCaseCount(),
		Warnings:      len(a.Warnings()),
	}
}
