package extract

import (
	"regexp"

	"github.com/mpetrov/archmap/internal/entity"
)

var viewPatterns = []pattern{
	{
		name:  "django-class-view",
		langs: pyFiles,
		re:    regexp.MustCompile(`^\s*class\s+(?P<name>\w+)\s*\(\s*(?:\w+\.)?(?:ListView|DetailView|TemplateView|CreateView|UpdateView|DeleteView|FormView|View|APIView|ViewSet|ModelViewSet|GenericAPIView)\b`),
		conf:  ConfExact,
	},
	{
		name:  "django-func-view",
		langs: pyFiles,
		re:    regexp.MustCompile(`^\s*(?:async\s+)?def\s+(?P<name>\w+)\s*\(\s*request\b`),
		conf:  ConfStrong,
	},
	{
		name:  "named-component",
		langs: jsFiles,
		re:    regexp.MustCompile(`\bfunction\s+(?P<name>\w+(?:View|Page|Component|Screen))\s*\(`),
		conf:  ConfStrong,
	},
	{
		name:       "component-function",
		langs:      jsFiles,
		re:         regexp.MustCompile(`^\s*(?:export\s+(?:default\s+)?)?function\s+(?P<name>[A-Z]\w+)\s*\(`),
		conf:       ConfConvention,
		taggedOnly: true,
	},
	{
		name:       "arrow-component",
		langs:      jsFiles,
		re:         regexp.MustCompile(`^\s*(?:export\s+)?const\s+(?P<name>[A-Z]\w+)\s*=\s*(?:\([^)]*\)|\w+)\s*=>`),
		conf:       ConfConvention,
		taggedOnly: true,
	},
}

// ViewExtractor discovers presentation-layer declarations
type ViewExtractor struct{}

func NewViewExtractor() *ViewExtractor { return &ViewExtractor{} }

func (e *ViewExtractor) Extract(files []*entity.SourceFile) ([]entity.View, []entity.Warning) {
	var views []entity.View
	var warns []entity.Warning
	for _, f := range files {
		fv, fw := e.ExtractFile(f)
		views = append(views, fv...)
		warns = append(warns, fw...)
	}
	return views, warns
}

// ExtractFile returns the views declared in one source file. References to
// other entities are collected file-wide and resolved (or dropped) later by
// the relationship mapper.
func (e *ViewExtractor) ExtractFile(f *entity.SourceFile) ([]entity.View, []entity.Warning) {
	tagged := f.Tagged(entity.KindView)
	module := moduleOf(f.Path)
	seen := make(map[string]bool)

	var views []entity.View
	for i, line := range f.Lines {
		for pi := range viewPatterns {
			p := &viewPatterns[pi]
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
			views = append(views, entity.View{
				Name:       name,
				Module:     module,
				File:       f.Path,
				Line:       i + 1,
				Confidence: boost(p.conf, tagged),
			})
			break
		}
	}
	if len(views) == 0 {
		return nil, nil
	}

	exclude := make(map[string]bool, len(views))
	for _, v := range views {
		exclude[v.Name] = true
	}
	refs := collectRefs(f.Lines, exclude)
	for i := range views {
		views[i].Refs = refs
	}
	return views, nil
}
