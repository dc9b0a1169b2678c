// Package archmap exposes the project analyzer as a library. The
// canonical definitions live under internal/; this package re-exports
// them through aliases so embedders and the CLI share one implementation.
package archmap

import (
	"github.com/mpetrov/archmap/internal/analyzer"
	"github.com/mpetrov/archmap/internal/entity"
	"github.com/mpetrov/archmap/internal/scanner"
	"github.com/mpetrov/archmap/internal/usecase"
)

type (
	ProjectAnalyzer = analyzer.ProjectAnalyzer
	Options         = analyzer.Options
	Stats           = analyzer.Stats

	Endpoint       = entity.Endpoint
	Field          = entity.Field
	Model          = entity.Model
	View           = entity.View
	Service        = entity.Service
	Feature        = entity.Feature
	Actor          = entity.Actor
	SystemBoundary = entity.SystemBoundary
	UseCase        = entity.UseCase
	Relationship   = entity.Relationship
	Warning        = entity.Warning

	Kind         = entity.Kind
	AuthClass    = entity.AuthClass
	Role         = entity.Role
	RelationKind = entity.RelationKind

	ScanError = scanner.ScanError
)

const (
	KindEndpoint = entity.KindEndpoint
	KindModel    = entity.KindModel
	KindView     = entity.KindView
	KindService  = entity.KindService

	AuthNone     = entity.AuthNone
	AuthSession  = entity.AuthSession
	AuthToken    = entity.AuthToken
	AuthInternal = entity.AuthInternal

	RoleExternalUser    = entity.RoleExternalUser
	RoleExternalSystem  = entity.RoleExternalSystem
	RoleInternalService = entity.RoleInternalService

	RelationUses     = entity.RelationUses
	RelationExposes  = entity.RelationExposes
	RelationPersists = entity.RelationPersists

	// DefaultTraversalDepth bounds use-case graph traversal.
	DefaultTraversalDepth = usecase.DefaultMaxDepth
)

var (
	New            = analyzer.New
	DefaultOptions = analyzer.DefaultOptions
)
