// Package extract implements the four pattern-based discovery passes.
// Extraction is structural matching against known declaration shapes, not
// semantic analysis: every match carries a confidence score and ambiguous
// input degrades to low-confidence entities instead of errors.
package extract

import (
	"path"
	"regexp"
	"strings"

	"github.com/mpetrov/archmap/internal/entity"
)

// Confidence levels attached by matchers
const (
	ConfExact      = 1.0 // framework-exact declaration shape
	ConfStrong     = 0.8 // clear shape without framework confirmation
	ConfConvention = 0.6 // naming/location convention only
	ConfWeak       = 0.4 // ambiguous, kept best-effort
)

// tagBoost nudges a convention-level match upward when the scanner already
// tagged the file with the matching category
const tagBoost = 0.1

func boost(conf float64, tagged bool) float64 {
	if !tagged || conf >= ConfExact {
		return conf
	}
	if conf+tagBoost > ConfExact {
		return ConfExact
	}
	return conf + tagBoost
}

// pattern is one declaration shape. Submatches are exposed by name, so the
// regexps use named capture groups.
type pattern struct {
	name       string
	langs      []entity.Language // nil matches any language
	re         *regexp.Regexp
	conf       float64
	taggedOnly bool // only applies in files the scanner tagged with the category
}

func (p *pattern) appliesTo(lang entity.Language) bool {
	if len(p.langs) == 0 {
		return true
	}
	for _, l := range p.langs {
		if l == lang {
			return true
		}
	}
	return false
}

// match returns the named submatches of line, or ok=false
func (p *pattern) match(line string) (map[string]string, bool) {
	m := p.re.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	groups := make(map[string]string)
	for i, name := range p.re.SubexpNames() {
		if name != "" && i < len(m) {
			groups[name] = m[i]
		}
	}
	return groups, true
}

var (
	pyFiles = []entity.Language{entity.LangPython}
	jsFiles = []entity.Language{entity.LangJavaScript, entity.LangTypeScript}
	rbFiles = []entity.Language{entity.LangRuby}
)

// moduleOf derives the owning module of a file: its directory path, or the
// file stem for root-level files.
func moduleOf(rel string) string {
	dir := path.Dir(rel)
	if dir == "." || dir == "" {
		base := path.Base(rel)
		return strings.TrimSuffix(base, path.Ext(base))
	}
	return dir
}

// identRe tokenizes candidate identifiers when collecting references
var identRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

var refSuffixes = []string{"service", "manager", "client", "repository", "store"}

var stopwords = map[string]bool{
	"True": true, "False": true, "None": true,
	"Object": true, "String": true, "Number": true, "Boolean": true,
	"Array": true, "Promise": true, "Error": true, "Exception": true,
	"Request": true, "Response": true, "HttpResponse": true, "JsonResponse": true,
	"Model": true, "Schema": true, "Base": true, "Column": true,
	"Integer": true, "Text": true, "DateTime": true, "ForeignKey": true,
	"CharField": true, "IntegerField": true, "TextField": true, "Meta": true,
	"ApplicationRecord": true, "ActiveRecord": true, "ListView": true,
	"DetailView": true, "TemplateView": true, "View": true, "APIView": true,
	"React": true, "Component": true, "Fragment": true,
}

// collectRefs gathers identifiers that plausibly name other discovered
// entities: CamelCase tokens and service-suffixed names. Used to feed the
// relationship mapper, which drops anything that does not resolve.
func collectRefs(lines []string, exclude map[string]bool) []string {
	seen := make(map[string]bool)
	var refs []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "//") {
			continue
		}
		for _, tok := range identRe.FindAllString(line, -1) {
			if len(tok) < 3 || seen[tok] || exclude[tok] || stopwords[tok] {
				continue
			}
			if !looksLikeEntityName(tok) {
				continue
			}
			seen[tok] = true
			refs = append(refs, tok)
		}
	}
	return refs
}

func looksLikeEntityName(tok string) bool {
	if tok[0] >= 'A' && tok[0] <= 'Z' {
		return true
	}
	lower := strings.ToLower(tok)
	for _, suffix := range refSuffixes {
		if strings.HasSuffix(lower, suffix) && lower != suffix {
			return true
		}
	}
	return false
}

// routeParamRe matches flask/django style <int:id>, express/rails style :id
// and chi/gorilla style {id}
var routeParamRe = regexp.MustCompile(`<(?:[a-z_]+:)?(\w+)>|:(\w+)|\{(\w+)\}`)

// routeParams pulls declared parameters out of a route pattern
func routeParams(route string) []string {
	var params []string
	for _, m := range routeParamRe.FindAllStringSubmatch(route, -1) {
		for _, g := range m[1:] {
			if g != "" {
				params = append(params, g)
				break
			}
		}
	}
	return params
}

// authMarker pairs a lowercase marker substring with the auth class it
// implies. Checked in order, most restrictive class first.
type authMarker struct {
	marker string
	class  entity.AuthClass
}

var authMarkers = []authMarker{
	{"internal_only", entity.AuthInternal},
	{"internalonly", entity.AuthInternal},
	{"private_api", entity.AuthInternal},

	{"token_required", entity.AuthToken},
	{"jwt_required", entity.AuthToken},
	{"api_key", entity.AuthToken},
	{"apikey", entity.AuthToken},
	{"verifytoken", entity.AuthToken},
	{"bearer_required", entity.AuthToken},
	{"requirebearertoken", entity.AuthToken},

	{"login_required", entity.AuthSession},
	{"require_login", entity.AuthSession},
	{"requires_auth", entity.AuthSession},
	{"authenticate_user", entity.AuthSession},
	{"before_action :authenticate", entity.AuthSession},
	{"ensureauthenticated", entity.AuthSession},
	{"isauthenticated", entity.AuthSession},
	{"requireauth", entity.AuthSession},
}

// authClassFor inspects nearby source lines (and the route itself) for
// authentication markers. extra comes from configuration and is checked
// before the built-in table.
func authClassFor(route string, context []string, extra []authMarker) entity.AuthClass {
	if strings.HasPrefix(route, "/internal") || strings.HasPrefix(route, "/_internal") {
		return entity.AuthInternal
	}
	for _, line := range context {
		lower := strings.ToLower(line)
		for _, am := range extra {
			if strings.Contains(lower, am.marker) {
				return am.class
			}
		}
		for _, am := range authMarkers {
			if strings.Contains(lower, am.marker) {
				return am.class
			}
		}
	}
	return entity.AuthNone
}
