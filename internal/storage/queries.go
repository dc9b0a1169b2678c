package storage

import (
	"database/sql"
	"encoding/json"
	"strconv"
	"time"

	"github.com/mpetrov/archmap/internal/entity"
)

// Result is a completed analysis ready to persist. The CLI assembles one
// from the analyzer's accessors after a full run.
type Result struct {
	Root       string
	Endpoints  []entity.Endpoint
	Models     []entity.Model
	Views      []entity.View
	Services   []entity.Service
	Features   []entity.Feature
	Actors     []entity.Actor
	Boundaries []entity.SystemBoundary
	Edges      []entity.Relationship
	UseCases   []entity.UseCase
	Warnings   []entity.Warning
}

// Entity is one persisted inventory row. Kind-specific attributes (params,
// fields, refs) are JSON-encoded in Detail.
type Entity struct {
	ID         int64            `json:"id"`
	Kind       entity.Kind      `json:"kind"`
	Name       string           `json:"name"`
	Verb       string           `json:"verb,omitempty"`
	Module     string           `json:"module,omitempty"`
	Handler    string           `json:"handler,omitempty"`
	Auth       entity.AuthClass `json:"auth,omitempty"`
	File       string           `json:"file"`
	Line       int              `json:"line"`
	Confidence float64          `json:"confidence"`
	Detail     string           `json:"-"`
}

// Params decodes the declared parameters of an endpoint row
func (e *Entity) Params() []string { return decodeStrings(e.Detail) }

// Refs decodes the referenced names of a view or service row
func (e *Entity) Refs() []string { return decodeStrings(e.Detail) }

// Fields decodes the field list of a model row
func (e *Entity) Fields() []entity.Field {
	var fields []entity.Field
	if e.Detail != "" {
		json.Unmarshal([]byte(e.Detail), &fields)
	}
	return fields
}

func decodeStrings(detail string) []string {
	var out []string
	if detail != "" {
		json.Unmarshal([]byte(detail), &out)
	}
	return out
}

func detailJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

// SaveResult replaces the persisted analysis with r in one transaction.
func (db *DB) SaveResult(r *Result) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := clearTx(tx); err != nil {
		return err
	}

	insertEntity, err := tx.Prepare(
		`INSERT INTO entities (id, kind, name, verb, module, handler, auth, file, line, confidence, detail)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer insertEntity.Close()

	for _, ep := range r.Endpoints {
		if _, err := insertEntity.Exec(ep.ID, entity.KindEndpoint, ep.Route, ep.Verb, ep.Module,
			ep.Handler, string(ep.Auth), ep.File, ep.Line, ep.Confidence, detailJSON(ep.Params)); err != nil {
			return err
		}
	}
	for _, m := range r.Models {
		if _, err := insertEntity.Exec(m.ID, entity.KindModel, m.Name, "", m.Module,
			"", "", m.File, m.Line, m.Confidence, detailJSON(m.Fields)); err != nil {
			return err
		}
	}
	for _, v := range r.Views {
		if _, err := insertEntity.Exec(v.ID, entity.KindView, v.Name, "", v.Module,
			"", "", v.File, v.Line, v.Confidence, detailJSON(v.Refs)); err != nil {
			return err
		}
	}
	for _, s := range r.Services {
		if _, err := insertEntity.Exec(s.ID, entity.KindService, s.Name, "", s.Module,
			"", "", s.File, s.Line, s.Confidence, detailJSON(s.Refs)); err != nil {
			return err
		}
	}

	for _, e := range r.Edges {
		if _, err := tx.Exec(
			`INSERT INTO edges (source_id, target_id, kind) VALUES (?, ?, ?)`,
			e.SourceID, e.TargetID, string(e.Kind)); err != nil {
			return err
		}
	}

	for _, a := range r.Actors {
		res, err := tx.Exec(`INSERT INTO actors (name, role) VALUES (?, ?)`, a.Name, string(a.Role))
		if err != nil {
			return err
		}
		actorID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		for _, epID := range a.Endpoints {
			if _, err := tx.Exec(
				`INSERT INTO actor_endpoints (actor_id, endpoint_id) VALUES (?, ?)`,
				actorID, epID); err != nil {
				return err
			}
		}
	}

	for _, b := range r.Boundaries {
		res, err := tx.Exec(`INSERT INTO boundaries (name, auth, module) VALUES (?, ?, ?)`,
			b.Name, string(b.Auth), b.Module)
		if err != nil {
			return err
		}
		boundaryID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		for _, id := range b.Members {
			if _, err := tx.Exec(
				`INSERT INTO boundary_members (boundary_id, entity_id) VALUES (?, ?)`,
				boundaryID, id); err != nil {
				return err
			}
		}
	}

	for _, f := range r.Features {
		res, err := tx.Exec(`INSERT INTO features (name, module) VALUES (?, ?)`, f.Name, f.Module)
		if err != nil {
			return err
		}
		featureID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		var members []int64
		members = append(members, f.Endpoints...)
		members = append(members, f.Models...)
		members = append(members, f.Views...)
		members = append(members, f.Services...)
		for _, id := range members {
			if _, err := tx.Exec(
				`INSERT INTO feature_members (feature_id, entity_id) VALUES (?, ?)`,
				featureID, id); err != nil {
				return err
			}
		}
	}

	for _, uc := range r.UseCases {
		res, err := tx.Exec(`INSERT INTO usecases (name, actor) VALUES (?, ?)`, uc.Name, uc.Actor)
		if err != nil {
			return err
		}
		ucID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		for i, step := range uc.Steps {
			if _, err := tx.Exec(
				`INSERT INTO usecase_steps (usecase_id, position, source_id, target_id, kind)
				 VALUES (?, ?, ?, ?, ?)`,
				ucID, i, step.SourceID, step.TargetID, string(step.Kind)); err != nil {
				return err
			}
		}
	}

	setMeta := func(key, value string) error {
		_, err := tx.Exec(`INSERT INTO meta (key, value) VALUES (?, ?)`, key, value)
		return err
	}
	if err := setMeta("root", r.Root); err != nil {
		return err
	}
	if err := setMeta("analyzed_at", time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	if err := setMeta("warnings", strconv.Itoa(len(r.Warnings))); err != nil {
		return err
	}

	return tx.Commit()
}

// GetMeta returns a meta value, or "" when absent
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

const entityColumns = `id, kind, name, verb, module, handler, auth, file, line, confidence, detail`

// GetEntityByID returns a single inventory row
func (db *DB) GetEntityByID(id int64) (*Entity, error) {
	row := db.conn.QueryRow(`SELECT `+entityColumns+` FROM entities WHERE id = ?`, id)
	return scanEntity(row)
}

// GetEntitiesByKind lists one inventory, ordered by module then name
func (db *DB) GetEntitiesByKind(kind entity.Kind) ([]*Entity, error) {
	rows, err := db.conn.Query(
		`SELECT `+entityColumns+` FROM entities WHERE kind = ? ORDER BY module, name, id`,
		string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntities(rows)
}

// FindEntitiesByPattern returns entities whose name, handler or module
// matches the pattern, sorted by match quality: exact name first, then
// prefix matches, then anything containing the pattern.
func (db *DB) FindEntitiesByPattern(pattern string) ([]*Entity, error) {
	rows, err := db.conn.Query(
		`SELECT `+entityColumns+` FROM entities
		 WHERE name LIKE ? OR handler LIKE ? OR module LIKE ?
		 ORDER BY
			CASE
				WHEN name = ? THEN 0
				WHEN name LIKE ? || '%' THEN 1
				ELSE 2
			END,
			length(name) ASC`,
		"%"+pattern+"%", "%"+pattern+"%", "%"+pattern+"%", pattern, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntities(rows)
}

// ActorRecord is a persisted actor with its reachable endpoints resolved
type ActorRecord struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Role      entity.Role `json:"role"`
	Endpoints []*Entity   `json:"endpoints,omitempty"`
}

// GetActors returns all persisted actors with their endpoints
func (db *DB) GetActors() ([]*ActorRecord, error) {
	rows, err := db.conn.Query(`SELECT id, name, role FROM actors ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actors []*ActorRecord
	for rows.Next() {
		var a ActorRecord
		var role string
		if err := rows.Scan(&a.ID, &a.Name, &role); err != nil {
			return nil, err
		}
		a.Role = entity.Role(role)
		actors = append(actors, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, a := range actors {
		eps, err := db.getActorEndpoints(a.ID)
		if err != nil {
			return nil, err
		}
		a.Endpoints = eps
	}
	return actors, nil
}

func (db *DB) getActorEndpoints(actorID int64) ([]*Entity, error) {
	rows, err := db.conn.Query(
		`SELECT n.id, n.kind, n.name, n.verb, n.module, n.handler, n.auth, n.file, n.line, n.confidence, n.detail
		 FROM entities n
		 JOIN actor_endpoints ae ON ae.endpoint_id = n.id
		 WHERE ae.actor_id = ?
		 ORDER BY n.id`,
		actorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntities(rows)
}

// BoundaryRecord is a persisted system boundary with members resolved
type BoundaryRecord struct {
	ID      int64            `json:"id"`
	Name    string           `json:"name"`
	Auth    entity.AuthClass `json:"auth,omitempty"`
	Module  string           `json:"module,omitempty"`
	Members []*Entity        `json:"members,omitempty"`
}

// GetBoundaries returns all persisted boundaries with their members
func (db *DB) GetBoundaries() ([]*BoundaryRecord, error) {
	rows, err := db.conn.Query(`SELECT id, name, auth, module FROM boundaries ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var boundaries []*BoundaryRecord
	for rows.Next() {
		var b BoundaryRecord
		var auth string
		if err := rows.Scan(&b.ID, &b.Name, &auth, &b.Module); err != nil {
			return nil, err
		}
		b.Auth = entity.AuthClass(auth)
		boundaries = append(boundaries, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, b := range boundaries {
		rows, err := db.conn.Query(
			`SELECT n.id, n.kind, n.name, n.verb, n.module, n.handler, n.auth, n.file, n.line, n.confidence, n.detail
			 FROM entities n
			 JOIN boundary_members bm ON bm.entity_id = n.id
			 WHERE bm.boundary_id = ?
			 ORDER BY n.id`,
			b.ID)
		if err != nil {
			return nil, err
		}
		members, err := scanEntities(rows)
		rows.Close()
		if err != nil {
			return nil, err
		}
		b.Members = members
	}
	return boundaries, nil
}

// FeatureRecord is a persisted feature grouping
type FeatureRecord struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Module  string `json:"module"`
	Members int    `json:"members"`
}

// GetFeatures returns all persisted features with member counts
func (db *DB) GetFeatures() ([]*FeatureRecord, error) {
	rows, err := db.conn.Query(
		`SELECT f.id, f.name, f.module, COUNT(fm.entity_id)
		 FROM features f
		 LEFT JOIN feature_members fm ON fm.feature_id = f.id
		 GROUP BY f.id
		 ORDER BY f.module, f.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var features []*FeatureRecord
	for rows.Next() {
		var f FeatureRecord
		if err := rows.Scan(&f.ID, &f.Name, &f.Module, &f.Members); err != nil {
			return nil, err
		}
		features = append(features, &f)
	}
	return features, rows.Err()
}

// Step is one resolved narrative step of a persisted use case
type Step struct {
	Position   int                 `json:"position"`
	SourceID   int64               `json:"source_id"`
	TargetID   int64               `json:"target_id"`
	Kind       entity.RelationKind `json:"kind"`
	SourceName string              `json:"source"`
	SourceKind entity.Kind         `json:"source_kind"`
	TargetName string              `json:"target"`
	TargetKind entity.Kind         `json:"target_kind"`
}

// UseCaseRecord is a persisted use case with ordered, name-resolved steps
type UseCaseRecord struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Actor string `json:"actor"`
	Steps []Step `json:"steps,omitempty"`
}

// GetUseCases returns all persisted use cases with their steps in order
func (db *DB) GetUseCases() ([]*UseCaseRecord, error) {
	rows, err := db.conn.Query(`SELECT id, name, actor FROM usecases ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ucs []*UseCaseRecord
	for rows.Next() {
		var uc UseCaseRecord
		if err := rows.Scan(&uc.ID, &uc.Name, &uc.Actor); err != nil {
			return nil, err
		}
		ucs = append(ucs, &uc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, uc := range ucs {
		steps, err := db.getUseCaseSteps(uc.ID)
		if err != nil {
			return nil, err
		}
		uc.Steps = steps
	}
	return ucs, nil
}

func (db *DB) getUseCaseSteps(ucID int64) ([]Step, error) {
	rows, err := db.conn.Query(
		`SELECT s.position, s.source_id, s.target_id, s.kind,
				src.name, src.kind, dst.name, dst.kind
		 FROM usecase_steps s
		 JOIN entities src ON src.id = s.source_id
		 JOIN entities dst ON dst.id = s.target_id
		 WHERE s.usecase_id = ?
		 ORDER BY s.position`,
		ucID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var steps []Step
	for rows.Next() {
		var s Step
		var kind, srcKind, dstKind string
		if err := rows.Scan(&s.Position, &s.SourceID, &s.TargetID, &kind,
			&s.SourceName, &srcKind, &s.TargetName, &dstKind); err != nil {
			return nil, err
		}
		s.Kind = entity.RelationKind(kind)
		s.SourceKind = entity.Kind(srcKind)
		s.TargetKind = entity.Kind(dstKind)
		steps = append(steps, s)
	}
	return steps, rows.Err()
}

// TraceRow is one entity reached by a relationship trace
type TraceRow struct {
	Entity *Entity `json:"entity"`
	Depth  int     `json:"depth"`
}

// defaultTraceDepth caps recursive traversal; the relationship graph can
// contain cycles, so traces are always bounded
const defaultTraceDepth = 25

// GetOutgoingTrace returns every entity transitively reachable from id by
// following edges source to target, with the shortest depth per entity.
func (db *DB) GetOutgoingTrace(id int64, maxDepth int) ([]TraceRow, error) {
	if maxDepth <= 0 {
		maxDepth = defaultTraceDepth
	}
	return db.trace(`
		WITH RECURSIVE reach(id, depth) AS (
			SELECT target_id, 1 FROM edges WHERE source_id = ?
			UNION
			SELECT e.target_id, r.depth + 1
			FROM edges e
			JOIN reach r ON e.source_id = r.id
			WHERE r.depth < ?
		)
		SELECT n.id, n.kind, n.name, n.verb, n.module, n.handler, n.auth, n.file, n.line, n.confidence, n.detail,
			   MIN(r.depth) AS depth
		FROM entities n
		JOIN reach r ON n.id = r.id
		GROUP BY n.id
		ORDER BY depth, n.name`, id, maxDepth)
}

// GetIncomingTrace returns every entity that transitively reaches id.
func (db *DB) GetIncomingTrace(id int64, maxDepth int) ([]TraceRow, error) {
	if maxDepth <= 0 {
		maxDepth = defaultTraceDepth
	}
	return db.trace(`
		WITH RECURSIVE reach(id, depth) AS (
			SELECT source_id, 1 FROM edges WHERE target_id = ?
			UNION
			SELECT e.source_id, r.depth + 1
			FROM edges e
			JOIN reach r ON e.target_id = r.id
			WHERE r.depth < ?
		)
		SELECT n.id, n.kind, n.name, n.verb, n.module, n.handler, n.auth, n.file, n.line, n.confidence, n.detail,
			   MIN(r.depth) AS depth
		FROM entities n
		JOIN reach r ON n.id = r.id
		GROUP BY n.id
		ORDER BY depth, n.name`, id, maxDepth)
}

func (db *DB) trace(query string, id int64, maxDepth int) ([]TraceRow, error) {
	rows, err := db.conn.Query(query, id, maxDepth)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TraceRow
	for rows.Next() {
		var e Entity
		var kind string
		var verb, handler, auth, detail sql.NullString
		var depth int
		if err := rows.Scan(&e.ID, &kind, &e.Name, &verb, &e.Module, &handler, &auth,
			&e.File, &e.Line, &e.Confidence, &detail, &depth); err != nil {
			return nil, err
		}
		e.Kind = entity.Kind(kind)
		e.Verb = verb.String
		e.Handler = handler.String
		e.Auth = entity.AuthClass(auth.String)
		e.Detail = detail.String
		out = append(out, TraceRow{Entity: &e, Depth: depth})
	}
	return out, rows.Err()
}

// GetAllEdges returns every persisted relationship
func (db *DB) GetAllEdges() ([]entity.Relationship, error) {
	rows, err := db.conn.Query(`SELECT source_id, target_id, kind FROM edges ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []entity.Relationship
	for rows.Next() {
		var e entity.Relationship
		var kind string
		if err := rows.Scan(&e.SourceID, &e.TargetID, &kind); err != nil {
			return nil, err
		}
		e.Kind = entity.RelationKind(kind)
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// Stats aggregates the persisted analysis
type Stats struct {
	Root       string `json:"root,omitempty"`
	AnalyzedAt string `json:"analyzed_at,omitempty"`
	Endpoints  int    `json:"endpoints"`
	Models     int    `json:"models"`
	Views      int    `json:"views"`
	Services   int    `json:"services"`
	Features   int    `json:"features"`
	Actors     int    `json:"actors"`
	Boundaries int    `json:"boundaries"`
	Edges      int    `json:"edges"`
	UseCases   int    `json:"use_cases"`
	Warnings   int    `json:"warnings"`
}

// GetStats returns counts for every persisted inventory
func (db *DB) GetStats() (*Stats, error) {
	var s Stats

	rows, err := db.conn.Query(`SELECT kind, COUNT(*) FROM entities GROUP BY kind`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			rows.Close()
			return nil, err
		}
		switch entity.Kind(kind) {
		case entity.KindEndpoint:
			s.Endpoints = count
		case entity.KindModel:
			s.Models = count
		case entity.KindView:
			s.Views = count
		case entity.KindService:
			s.Services = count
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM features`, &s.Features},
		{`SELECT COUNT(*) FROM actors`, &s.Actors},
		{`SELECT COUNT(*) FROM boundaries`, &s.Boundaries},
		{`SELECT COUNT(*) FROM edges`, &s.Edges},
		{`SELECT COUNT(*) FROM usecases`, &s.UseCases},
	}
	for _, c := range counts {
		if err := db.conn.QueryRow(c.query).Scan(c.dest); err != nil {
			return nil, err
		}
	}

	s.Root, _ = db.GetMeta("root")
	s.AnalyzedAt, _ = db.GetMeta("analyzed_at")
	if w, err := db.GetMeta("warnings"); err == nil && w != "" {
		s.Warnings, _ = strconv.Atoi(w)
	}
	return &s, nil
}

func scanEntity(row *sql.Row) (*Entity, error) {
	var e Entity
	var kind string
	var verb, handler, auth, detail sql.NullString
	err := row.Scan(&e.ID, &kind, &e.Name, &verb, &e.Module, &handler, &auth,
		&e.File, &e.Line, &e.Confidence, &detail)
	if err != nil {
		return nil, err
	}
	e.Kind = entity.Kind(kind)
	e.Verb = verb.String
	e.Handler = handler.String
	e.Auth = entity.AuthClass(auth.String)
	e.Detail = detail.String
	return &e, nil
}

func scanEntities(rows *sql.Rows) ([]*Entity, error) {
	var entities []*Entity
	for rows.Next() {
		var e Entity
		var kind string
		var verb, handler, auth, detail sql.NullString
		if err := rows.Scan(&e.ID, &kind, &e.Name, &verb, &e.Module, &handler, &auth,
			&e.File, &e.Line, &e.Confidence, &detail); err != nil {
			return nil, err
		}
		e.Kind = entity.Kind(kind)
		e.Verb = verb.String
		e.Handler = handler.String
		e.Auth = entity.AuthClass(auth.String)
		e.Detail = detail.String
		entities = append(entities, &e)
	}
	return entities, rows.Err()
}
