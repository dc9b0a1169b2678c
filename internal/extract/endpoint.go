package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mpetrov/archmap/internal/entity"
)

// endpointPatterns covers the route declaration shapes we recognize.
// Ordered most specific first; the first match on a line wins.
var endpointPatterns = []pattern{
	{
		name:  "flask-route",
		langs: pyFiles,
		re:    regexp.MustCompile(`@\w+\.route\(\s*['"](?P<route>[^'"]+)['"](?:.*methods\s*=\s*\[(?P<verbs>[^\]]*)\])?`),
		conf:  ConfExact,
	},
	{
		name:  "fastapi-verb",
		langs: pyFiles,
		re:    regexp.MustCompile(`@\w+\.(?P<verb>get|post|put|delete|patch)\(\s*['"](?P<route>[^'"]+)['"]`),
		conf:  ConfExact,
	},
	{
		name:  "django-path",
		langs: pyFiles,
		re:    regexp.MustCompile(`\b(?:re_)?path\(\s*r?['"](?P<route>[^'"]*)['"]\s*,\s*(?P<handler>[\w.]+)`),
		conf:  ConfExact,
	},
	{
		name:  "django-url",
		langs: pyFiles,
		re:    regexp.MustCompile(`\burl\(\s*r?['"](?P<route>[^'"]+)['"]\s*,\s*(?P<handler>[\w.]+)`),
		conf:  ConfStrong,
	},
	{
		name:  "express-verb",
		langs: jsFiles,
		re:    regexp.MustCompile(`\b(?:app|router|server)\.(?P<verb>get|post|put|delete|patch|all)\(\s*['"` + "`" + `](?P<route>[^'"` + "`" + `]+)['"` + "`" + `]\s*,\s*(?P<rest>.*)`),
		conf:  ConfExact,
	},
	{
		name:  "nest-verb",
		langs: jsFiles,
		re:    regexp.MustCompile(`@(?P<verb>Get|Post|Put|Delete|Patch)\(\s*(?:['"](?P<route>[^'"]*)['"])?`),
		conf:  ConfExact,
	},
	{
		name:  "rails-route",
		langs: rbFiles,
		re:    regexp.MustCompile(`^\s*(?P<verb>get|post|put|patch|delete)\s+['"](?P<route>[^'"]+)['"](?:\s*,\s*to:\s*['"](?P<handler>[^'"]+)['"])?`),
		conf:  ConfExact,
	},
}

// routeHintRe flags lines that look route-ish but matched no pattern, so a
// multi-line or otherwise ambiguous declaration still surfaces as a warning
var routeHintRe = regexp.MustCompile(`\.route\(\s*$|\bpath\(\s*$`)

var pyDefRe = regexp.MustCompile(`^\s*(?:async\s+)?def\s+(\w+)\s*\(([^)]*)`)

var identDotRe = regexp.MustCompile(`[\w.]+`)

// EndpointExtractor discovers externally reachable route declarations
type EndpointExtractor struct {
	extra []authMarker
}

func NewEndpointExtractor() *EndpointExtractor { return &EndpointExtractor{} }

// AddAuthMarker registers an additional authentication marker substring,
// checked before the built-in table.
func (e *EndpointExtractor) AddAuthMarker(marker string, class entity.AuthClass) {
	e.extra = append(e.extra, authMarker{marker: strings.ToLower(marker), class: class})
}

// Extract runs over every scanned file
func (e *EndpointExtractor) Extract(files []*entity.SourceFile) ([]entity.Endpoint, []entity.Warning) {
	var eps []entity.Endpoint
	var warns []entity.Warning
	for _, f := range files {
		fe, fw := e.ExtractFile(f)
		eps = append(eps, fe...)
		warns = append(warns, fw...)
	}
	return eps, warns
}

// ExtractFile returns the endpoints declared in one source file. It never
// fails: unmatched or ambiguous declarations degrade to warnings.
func (e *EndpointExtractor) ExtractFile(f *entity.SourceFile) ([]entity.Endpoint, []entity.Warning) {
	if f.Language == entity.LangGo {
		return goEndpoints(f, e.extra)
	}

	tagged := f.Tagged(entity.KindEndpoint)
	module := moduleOf(f.Path)
	seen := make(map[string]bool)

	var eps []entity.Endpoint
	var warns []entity.Warning
	for i, line := range f.Lines {
		matched := false
		for pi := range endpointPatterns {
			p := &endpointPatterns[pi]
			if !p.appliesTo(f.Language) {
				continue
			}
			groups, ok := p.match(line)
			if !ok {
				continue
			}
			matched = true
			for _, ep := range e.build(f, i, p, groups, module, tagged) {
				key := ep.Verb + " " + ep.Route
				if seen[key] {
					continue
				}
				seen[key] = true
				eps = append(eps, ep)
			}
			break
		}
		if !matched && routeHintRe.MatchString(line) {
			warns = append(warns, entity.Warning{
				File:   f.Path,
				Reason: fmt.Sprintf("ambiguous route declaration at line %d", i+1),
			})
		}
	}
	return eps, warns
}

// build turns one pattern match into endpoints, one per declared verb
func (e *EndpointExtractor) build(f *entity.SourceFile, i int, p *pattern, groups map[string]string, module string, tagged bool) []entity.Endpoint {
	route := normalizeRoute(groups["route"])
	handler := lastSegment(groups["handler"])
	params := routeParams(groups["route"])

	// auth marker context: python decorators stack on surrounding lines,
	// everything else declares middleware on the matched line itself
	ctxStart, ctxEnd := i, i+1

	if f.Language == entity.LangPython {
		if ctxStart = i - 3; ctxStart < 0 {
			ctxStart = 0
		}
		if handler == "" {
			// decorator declarations name their handler on the following def
			for j := i + 1; j < len(f.Lines) && j <= i+6; j++ {
				if m := pyDefRe.FindStringSubmatch(f.Lines[j]); m != nil {
					handler = m[1]
					if extracted := defParams(m[2]); len(extracted) > 0 {
						params = extracted
					}
					ctxEnd = j + 1
					break
				}
			}
		}
	} else if groups["rest"] != "" {
		handler = jsHandlerName(groups["rest"])
	}
	if ctxEnd > len(f.Lines) {
		ctxEnd = len(f.Lines)
	}
	auth := authClassFor(route, f.Lines[ctxStart:ctxEnd], e.extra)

	conf := boost(p.conf, tagged)
	var eps []entity.Endpoint
	for _, verb := range verbsOf(groups) {
		eps = append(eps, entity.Endpoint{
			Route:      route,
			Verb:       verb,
			Module:     module,
			Handler:    handler,
			Params:     params,
			Auth:       auth,
			File:       f.Path,
			Line:       i + 1,
			Confidence: conf,
		})
	}
	return eps
}

func normalizeRoute(route string) string {
	if route == "" {
		return "/"
	}
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	return route
}

// verbsOf resolves the verb set of a match: an explicit verb group, a
// methods list, or GET by default
func verbsOf(groups map[string]string) []string {
	if v := groups["verb"]; v != "" {
		return []string{strings.ToUpper(v)}
	}
	if list := groups["verbs"]; list != "" {
		var verbs []string
		for _, v := range strings.Split(list, ",") {
			v = strings.Trim(strings.TrimSpace(v), `'"`)
			if v != "" {
				verbs = append(verbs, strings.ToUpper(v))
			}
		}
		if len(verbs) > 0 {
			return verbs
		}
	}
	return []string{"GET"}
}

// defParams extracts parameter names from a python def signature,
// dropping self/cls and type annotations
func defParams(args string) []string {
	var params []string
	for _, arg := range strings.Split(args, ",") {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		if i := strings.IndexAny(arg, ":="); i >= 0 {
			arg = strings.TrimSpace(arg[:i])
		}
		arg = strings.TrimLeft(arg, "*")
		if arg == "" || arg == "self" || arg == "cls" {
			continue
		}
		params = append(params, arg)
	}
	return params
}

// jsHandlerName picks the handler out of an express argument tail, e.g.
// "requireAuth, listUsers)" -> listUsers. Inline functions yield "".
func jsHandlerName(rest string) string {
	rest = strings.TrimSuffix(strings.TrimSpace(rest), ";")
	if strings.Contains(rest, "=>") || strings.Contains(rest, "function") {
		return ""
	}
	ids := identDotRe.FindAllString(rest, -1)
	if len(ids) == 0 {
		return ""
	}
	return lastSegment(ids[len(ids)-1])
}

// lastSegment strips a qualifier: views.home -> home, users#index -> index
func lastSegment(name string) string {
	if i := strings.LastIndexAny(name, ".#"); i >= 0 {
		return name[i+1:]
	}
	return name
}
