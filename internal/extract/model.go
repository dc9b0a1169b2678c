package extract

import (
	"regexp"
	"strings"

	"github.com/mpetrov/archmap/internal/entity"
)

var modelPatterns = []pattern{
	{
		name:  "orm-model-class",
		langs: pyFiles,
		re:    regexp.MustCompile(`^\s*class\s+(?P<name>\w+)\s*\(\s*(?:\w+\.)?(?:Model|Base|BaseModel|Document)\s*[,)]`),
		conf:  ConfExact,
	},
	{
		name:  "sequelize-define",
		langs: jsFiles,
		re:    regexp.MustCompile(`\b\w+\s*=\s*sequelize\.define\(\s*['"](?P<name>\w+)['"]`),
		conf:  ConfExact,
	},
	{
		name:  "mongoose-schema",
		langs: jsFiles,
		re:    regexp.MustCompile(`(?:const|let|var)\s+(?P<name>\w+?)(?:Schema)?\s*=\s*new\s+(?:mongoose\.)?Schema\(`),
		conf:  ConfExact,
	},
	{
		name:  "activerecord-model",
		langs: rbFiles,
		re:    regexp.MustCompile(`^\s*class\s+(?P<name>\w+)\s*<\s*(?:ApplicationRecord|ActiveRecord::Base)`),
		conf:  ConfExact,
	},
	{
		name:       "ts-interface",
		langs:      jsFiles,
		re:         regexp.MustCompile(`^\s*(?:export\s+)?interface\s+(?P<name>\w+)`),
		conf:       ConfConvention,
		taggedOnly: true,
	},
	{
		name:       "ts-type-object",
		langs:      jsFiles,
		re:         regexp.MustCompile(`^\s*(?:export\s+)?type\s+(?P<name>\w+)\s*=\s*\{`),
		conf:       ConfConvention,
		taggedOnly: true,
	},
	{
		name:       "plain-class",
		langs:      pyFiles,
		re:         regexp.MustCompile(`^\s*class\s+(?P<name>\w+)\s*[:(]`),
		conf:       ConfConvention,
		taggedOnly: true,
	},
}

var (
	pyDjangoFieldRe     = regexp.MustCompile(`^\s+(?P<fname>\w+)\s*=\s*(?:models|db)\.(?P<ftype>\w+)`)
	pySQLAlchemyFieldRe = regexp.MustCompile(`^\s+(?P<fname>\w+)\s*=\s*Column\(\s*(?P<ftype>\w+)?`)
	pyAnnotationRe      = regexp.MustCompile(`^\s+(?P<fname>\w+)\s*:\s*(?P<ftype>[\w\[\]. ,]+?)\s*(?:=.*)?$`)
	tsFieldRe           = regexp.MustCompile(`^\s*(?:readonly\s+)?(?P<fname>\w+)\??\s*:\s*(?P<ftype>[^;,{]+)`)
	jsSchemaFieldRe     = regexp.MustCompile(`^\s+(?P<fname>\w+)\s*:\s*(?:\{\s*type\s*:\s*)?(?P<ftype>[A-Za-z_][\w.]*)?`)
)

// ModelExtractor discovers data model declarations
type ModelExtractor struct{}

func NewModelExtractor() *ModelExtractor { return &ModelExtractor{} }

func (e *ModelExtractor) Extract(files []*entity.SourceFile) ([]entity.Model, []entity.Warning) {
	var models []entity.Model
	var warns []entity.Warning
	for _, f := range files {
		fm, fw := e.ExtractFile(f)
		models = append(models, fm...)
		warns = append(warns, fw...)
	}
	return models, warns
}

// ExtractFile returns the data models declared in one source file
func (e *ModelExtractor) ExtractFile(f *entity.SourceFile) ([]entity.Model, []entity.Warning) {
	if f.Language == entity.LangGo {
		return goModels(f)
	}

	tagged := f.Tagged(entity.KindModel)
	module := moduleOf(f.Path)
	seen := make(map[string]bool)

	var models []entity.Model
	for i, line := range f.Lines {
		for pi := range modelPatterns {
			p := &modelPatterns[pi]
			if !p.appliesTo(f.Language) || (p.taggedOnly && !tagged) {
				continue
			}
			groups, ok := p.match(line)
			if !ok {
				continue
			}
			name := normalizeModelName(groups["name"])
			if name == "" || seen[name] {
				break
			}
			seen[name] = true

			conf := boost(p.conf, tagged)
			if p.name == "plain-class" && hasDecorator(f.Lines, i, "dataclass") {
				conf = ConfStrong
			}
			models = append(models, entity.Model{
				Name:       name,
				Fields:     modelFields(f, i, p.name),
				Module:     module,
				File:       f.Path,
				Line:       i + 1,
				Confidence: conf,
			})
			break
		}
	}
	return models, nil
}

// normalizeModelName upper-cases the first rune so schema variables
// (userSchema) line up with class-style names (User)
func normalizeModelName(name string) string {
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// hasDecorator reports whether the line right above i carries the decorator
func hasDecorator(lines []string, i int, dec string) bool {
	for j := i - 1; j >= 0 && j >= i-3; j-- {
		trimmed := strings.TrimSpace(lines[j])
		if trimmed == "" {
			continue
		}
		return strings.HasPrefix(trimmed, "@"+dec)
	}
	return false
}

// modelFields captures the declared fields following a model declaration,
// best effort, stopping at the first method or dedent
func modelFields(f *entity.SourceFile, i int, patternName string) []entity.Field {
	var fields []entity.Field
	limit := i + 50
	if limit > len(f.Lines) {
		limit = len(f.Lines)
	}

	for j := i + 1; j < limit; j++ {
		line := f.Lines[j]
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		switch f.Language {
		case entity.LangPython:
			if strings.HasPrefix(trimmed, "def ") || strings.HasPrefix(trimmed, "class ") ||
				strings.HasPrefix(trimmed, "@") || !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") {
				return fields
			}
			if m := matchField(pyDjangoFieldRe, line); m != nil {
				fields = append(fields, *m)
			} else if m := matchField(pySQLAlchemyFieldRe, line); m != nil {
				fields = append(fields, *m)
			} else if m := matchField(pyAnnotationRe, line); m != nil {
				fields = append(fields, *m)
			}
		case entity.LangJavaScript, entity.LangTypeScript:
			if strings.HasPrefix(trimmed, "}") {
				return fields
			}
			re := jsSchemaFieldRe
			if patternName == "ts-interface" || patternName == "ts-type-object" {
				re = tsFieldRe
			}
			if m := matchField(re, line); m != nil {
				fields = append(fields, *m)
			}
		default:
			return fields
		}
	}
	return fields
}

func matchField(re *regexp.Regexp, line string) *entity.Field {
	m := re.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	field := entity.Field{}
	for i, name := range re.SubexpNames() {
		if i >= len(m) {
			break
		}
		switch name {
		case "fname":
			field.Name = m[i]
		case "ftype":
			field.Type = strings.TrimSpace(m[i])
		}
	}
	if field.Name == "" {
		return nil
	}
	return &field
}
