// Package display renders analysis results for the terminal.
package display

import (
	"fmt"
	"strings"

	"github.com/mpetrov/archmap/internal/entity"
	"github.com/mpetrov/archmap/internal/storage"
)

// Truncate shortens s to max runes, ellipsized.
func Truncate(s string, max int) string {
	if max <= 3 || len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// Label renders an entity for narrative output: endpoints show their verb
// and route, everything else its name.
func Label(e *storage.Entity) string {
	if e.Kind == entity.KindEndpoint && e.Verb != "" {
		return e.Verb + " " + e.Name
	}
	return e.Name
}

// FormatEndpoints renders the endpoint inventory as an aligned table.
func FormatEndpoints(endpoints []*storage.Entity) string {
	if len(endpoints) == 0 {
		return "no endpoints\n"
	}

	verbW, routeW, moduleW := len("VERB"), len("ROUTE"), len("MODULE")
	for _, e := range endpoints {
		verbW = maxInt(verbW, len(e.Verb))
		routeW = maxInt(routeW, len(e.Name))
		moduleW = maxInt(moduleW, len(e.Module))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%-*s  %-*s  %-*s  %-8s  %s\n", verbW, "VERB", routeW, "ROUTE", moduleW, "MODULE", "AUTH", "LOCATION")
	for _, e := range endpoints {
		auth := string(e.Auth)
		if auth == "" {
			auth = "-"
		}
		fmt.Fprintf(&sb, "%-*s  %-*s  %-*s  %-8s  %s:%d\n",
			verbW, e.Verb, routeW, e.Name, moduleW, e.Module, auth, e.File, e.Line)
	}
	return sb.String()
}

// FormatModels renders the model inventory with field counts.
func FormatModels(models []*storage.Entity) string {
	if len(models) == 0 {
		return "no models\n"
	}

	nameW, moduleW := len("NAME"), len("MODULE")
	for _, m := range models {
		nameW = maxInt(nameW, len(m.Name))
		moduleW = maxInt(moduleW, len(m.Module))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%-*s  %-*s  %-6s  %s\n", nameW, "NAME", moduleW, "MODULE", "FIELDS", "LOCATION")
	for _, m := range models {
		fmt.Fprintf(&sb, "%-*s  %-*s  %-6d  %s:%d\n",
			nameW, m.Name, moduleW, m.Module, len(m.Fields()), m.File, m.Line)
	}
	return sb.String()
}

// FormatNamedEntities renders views or services: name, module, references.
func FormatNamedEntities(entities []*storage.Entity) string {
	if len(entities) == 0 {
		return "no entries\n"
	}

	nameW, moduleW := len("NAME"), len("MODULE")
	for _, e := range entities {
		nameW = maxInt(nameW, len(e.Name))
		moduleW = maxInt(moduleW, len(e.Module))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%-*s  %-*s  %s\n", nameW, "NAME", moduleW, "MODULE", "LOCATION")
	for _, e := range entities {
		fmt.Fprintf(&sb, "%-*s  %-*s  %s:%d\n", nameW, e.Name, moduleW, e.Module, e.File, e.Line)
	}
	return sb.String()
}

// FormatSearchResults renders mixed-kind matches with a kind column.
func FormatSearchResults(entities []*storage.Entity) string {
	if len(entities) == 0 {
		return "no matches\n"
	}

	kindW, nameW := len("KIND"), len("NAME")
	for _, e := range entities {
		kindW = maxInt(kindW, len(string(e.Kind)))
		nameW = maxInt(nameW, len(Label(e)))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%-*s  %-*s  %s\n", kindW, "KIND", nameW, "NAME", "LOCATION")
	for _, e := range entities {
		fmt.Fprintf(&sb, "%-*s  %-*s  %s:%d\n", kindW, string(e.Kind), nameW, Label(e), e.File, e.Line)
	}
	return sb.String()
}

// describeStep puts one relationship into words. Persists edges run model
// to service, but the narrative reads better the other way around.
func describeStep(s storage.Step) string {
	source := stepLabel(s.SourceKind, s.SourceName)
	target := stepLabel(s.TargetKind, s.TargetName)
	switch s.Kind {
	case entity.RelationExposes:
		return fmt.Sprintf("%s exposes %s", source, target)
	case entity.RelationPersists:
		return fmt.Sprintf("%s persists %s", target, source)
	default:
		return fmt.Sprintf("%s uses %s", source, target)
	}
}

func stepLabel(kind entity.Kind, name string) string {
	return fmt.Sprintf("%s (%s)", name, kind)
}

// FormatSteps renders a use-case narrative as an indented step chain.
func FormatSteps(steps []storage.Step) string {
	var sb strings.Builder
	for i, step := range steps {
		indent := strings.Repeat("    ", i)
		sb.WriteString(fmt.Sprintf("%s└── %s\n", indent, describeStep(step)))
	}
	return sb.String()
}

// FormatTrace renders trace rows grouped by depth with box-drawing prefixes.
func FormatTrace(rows []storage.TraceRow) string {
	if len(rows) == 0 {
		return "nothing reachable\n"
	}

	var sb strings.Builder
	for i, row := range rows {
		prefix := "├──"
		if i == len(rows)-1 {
			prefix = "└──"
		}
		indent := strings.Repeat("    ", row.Depth-1)
		fmt.Fprintf(&sb, "%s%s %s (%s)  %s:%d\n",
			indent, prefix, Label(row.Entity), row.Entity.Kind, row.Entity.File, row.Entity.Line)
	}
	return sb.String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
