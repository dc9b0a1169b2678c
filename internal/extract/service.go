package extract

import (
	"regexp"
	"strings"

	"github.com/mpetrov/archmap/internal/entity"
)

var servicePatterns = []pattern{
	{
		name:  "suffix-class",
		langs: pyFiles,
		re:    regexp.MustCompile(`^\s*class\s+(?P<name>\w+(?:Service|Manager|Client|Repository|Store))\s*[:(]`),
		conf:  ConfStrong,
	},
	{
		name:  "js-suffix-class",
		langs: jsFiles,
		re:    regexp.MustCompile(`\bclass\s+(?P<name>\w+(?:Service|Manager|Client|Repository|Store))\b`),
		conf:  ConfStrong,
	},
	{
		name:  "js-service-object",
		langs: jsFiles,
		re:    regexp.MustCompile(`^\s*(?:export\s+)?(?:const|let)\s+(?P<name>\w+(?:Service|Client|Api))\s*=\s*\{`),
		conf:  ConfStrong,
	},
	{
		name:  "rb-suffix-class",
		langs: rbFiles,
		re:    regexp.MustCompile(`^\s*class\s+(?P<name>\w+(?:Service|Job|Worker))\b`),
		conf:  ConfStrong,
	},
	{
		name:       "tagged-class",
		langs:      pyFiles,
		re:         regexp.MustCompile(`^\s*class\s+(?P<name>\w+)\s*[:(]`),
		conf:       ConfConvention,
		taggedOnly: true,
	},
	{
		name:       "js-tagged-class",
		langs:      jsFiles,
		re:         regexp.MustCompile(`\bclass\s+(?P<name>\w+)\b`),
		conf:       ConfConvention,
		taggedOnly: true,
	},
}

var pyTopLevelDefRe = regexp.MustCompile(`^(?:async\s+)?def\s+\w+`)

// ServiceExtractor discovers service and business-logic declarations
type ServiceExtractor struct{}

func NewServiceExtractor() *ServiceExtractor { return &ServiceExtractor{} }

func (e *ServiceExtractor) Extract(files []*entity.SourceFile) ([]entity.Service, []entity.Warning) {
	var services []entity.Service
	var warns []entity.Warning
	for _, f := range files {
		fs, fw := e.ExtractFile(f)
		services = append(services, fs...)
		warns = append(warns, fw...)
	}
	return services, warns
}

// ExtractFile returns the services declared in one source file. A
// service-tagged module with top-level functions but no classes counts as
// one module-level service, weakly.
func (e *ServiceExtractor) ExtractFile(f *entity.SourceFile) ([]entity.Service, []entity.Warning) {
	if f.Language == entity.LangGo {
		return goServices(f)
	}

	tagged := f.Tagged(entity.KindService)
	module := moduleOf(f.Path)
	seen := make(map[string]bool)

	var services []entity.Service
	for i, line := range f.Lines {
		for pi := range servicePatterns {
			p := &servicePatterns[pi]
			if !p.appliesTo(f.Language) || (p.taggedOnly && !tagged) {
				continue
			}
			groups, ok := p.match(line)
			if !ok {
				continue
			}
			name := groups["name"]
			if name == "" || seen[name] {
				break
			}
			seen[name] = true
			services = append(services, entity.Service{
				Name:       name,
				Module:     module,
				File:       f.Path,
				Line:       i + 1,
				Confidence: boost(p.conf, tagged),
			})
			break
		}
	}

	if len(services) == 0 && tagged && f.Language == entity.LangPython {
		for i, line := range f.Lines {
			if pyTopLevelDefRe.MatchString(line) {
				services = append(services, entity.Service{
					Name:       moduleServiceName(f.Path),
					Module:     module,
					File:       f.Path,
					Line:       i + 1,
					Confidence: ConfWeak,
				})
				break
			}
		}
	}
	if len(services) == 0 {
		return nil, nil
	}

	exclude := make(map[string]bool, len(services))
	for _, s := range services {
		exclude[s.Name] = true
	}
	refs := collectRefs(f.Lines, exclude)
	for i := range services {
		services[i].Refs = refs
	}
	return services, nil
}

// moduleServiceName turns billing_tasks.py into BillingTasks
func moduleServiceName(rel string) string {
	base := rel
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndex(base, "."); i >= 0 {
		base = base[:i]
	}
	var b strings.Builder
	for _, part := range strings.FieldsFunc(base, func(r rune) bool { return r == '_' || r == '-' }) {
		b.WriteString(strings.ToUpper(part[:1]) + part[1:])
	}
	if b.Len() == 0 {
		return base
	}
	return b.String()
}
