package usecase

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/mpetrov/archmap/internal/entity"
)

// Namer suggests human-readable names for a use case, best first. Errors and
// empty results are tolerated: the caller falls back to FallbackName.
type Namer interface {
	Suggest(uc entity.UseCase) ([]string, error)
}

var verbActions = map[string]string{
	"GET":    "View",
	"POST":   "Create",
	"PUT":    "Update",
	"PATCH":  "Update",
	"DELETE": "Delete",
}

// FallbackName derives a deterministic name from the entry endpoint and the
// models the traversal reached.
func FallbackName(ep entity.Endpoint, modelNames []string) string {
	subject := ""
	if len(modelNames) == 1 {
		subject = modelNames[0]
	}
	if subject == "" {
		subject = routeSubject(ep.Route)
	}
	if subject == "" && ep.Handler != "" {
		subject = titleize(ep.Handler)
	}
	if subject == "" {
		subject = "Service"
	}
	action := verbActions[strings.ToUpper(ep.Verb)]
	if action == "" {
		action = "Access"
	}
	return fmt.Sprintf("%s %s", action, subject)
}

// routeSubject picks the last static segment of a route: "/api/orders/{id}"
// names the Orders subject, parameter segments are skipped.
func routeSubject(route string) string {
	segments := strings.Split(route, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		seg := strings.TrimSpace(segments[i])
		if seg == "" || isParamSegment(seg) {
			continue
		}
		return titleize(seg)
	}
	return ""
}

func isParamSegment(seg string) bool {
	return strings.HasPrefix(seg, "{") || strings.HasPrefix(seg, ":") || strings.HasPrefix(seg, "<")
}

// titleize turns snake_case, kebab-case or camelCase identifiers into
// spaced title words: "order_items" and "orderItems" both become
// "Order Items".
func titleize(name string) string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = nil
		}
	}
	for _, r := range name {
		switch {
		case r == '_' || r == '-' || r == '.' || r == ' ':
			flush()
		case unicode.IsUpper(r):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
