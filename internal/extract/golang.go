package extract

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
	"strings"

	"golang.org/x/tools/go/ast/inspector"

	"github.com/mpetrov/archmap/internal/entity"
)

// Go sources get a structural AST pass instead of line regexes. Parsing is
// syntax-only: analyzed projects are never type-checked or built.

var goVerbMethods = map[string]string{
	"GET": "GET", "POST": "POST", "PUT": "PUT", "DELETE": "DELETE", "PATCH": "PATCH",
	"Get": "GET", "Post": "POST", "Put": "PUT", "Delete": "DELETE", "Patch": "PATCH",
	"HandleFunc": "ANY", "Handle": "ANY",
}

var goServiceSuffixes = []string{"Service", "Manager", "Client", "Repository", "Store"}

func parseGoFile(f *entity.SourceFile) (*token.FileSet, *inspector.Inspector, *entity.Warning) {
	fset := token.NewFileSet()
	src := strings.Join(f.Lines, "\n")
	parsed, err := parser.ParseFile(fset, f.Path, src, parser.SkipObjectResolution)
	if err != nil {
		return nil, nil, &entity.Warning{File: f.Path, Reason: fmt.Sprintf("go parse: %v", err)}
	}
	return fset, inspector.New([]*ast.File{parsed}), nil
}

// goEndpoints matches route registrations: mux.HandleFunc("/x", h),
// r.Get("/x", h), e.POST("/x", h) and the like
func goEndpoints(f *entity.SourceFile, extra []authMarker) ([]entity.Endpoint, []entity.Warning) {
	fset, insp, warn := parseGoFile(f)
	if warn != nil {
		return nil, []entity.Warning{*warn}
	}

	module := moduleOf(f.Path)
	seen := make(map[string]bool)
	var eps []entity.Endpoint

	insp.Preorder([]ast.Node{(*ast.CallExpr)(nil)}, func(n ast.Node) {
		call := n.(*ast.CallExpr)
		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok || len(call.Args) < 1 {
			return
		}
		verb, ok := goVerbMethods[sel.Sel.Name]
		if !ok {
			return
		}
		route, ok := stringArg(call.Args[0])
		if !ok || !strings.HasPrefix(route, "/") {
			return
		}
		key := verb + " " + route
		if seen[key] {
			return
		}
		seen[key] = true

		handler := ""
		if len(call.Args) > 1 {
			handler = exprName(call.Args[1])
		}

		// middleware chains sit on the registration line itself
		line := fset.Position(call.Pos()).Line
		ctxStart := line - 1
		if ctxStart < 0 {
			ctxStart = 0
		}
		ctxEnd := line
		if ctxEnd > len(f.Lines) {
			ctxEnd = len(f.Lines)
		}

		eps = append(eps, entity.Endpoint{
			Route:      route,
			Verb:       verb,
			Module:     module,
			Handler:    handler,
			Params:     routeParams(route),
			Auth:       authClassFor(route, f.Lines[ctxStart:ctxEnd], extra),
			File:       f.Path,
			Line:       line,
			Confidence: ConfExact,
		})
	})
	return eps, nil
}

// goModels matches struct declarations: storage-tagged structs count as
// framework-exact, plain structs only in model-tagged files
func goModels(f *entity.SourceFile) ([]entity.Model, []entity.Warning) {
	fset, insp, warn := parseGoFile(f)
	if warn != nil {
		return nil, []entity.Warning{*warn}
	}

	tagged := f.Tagged(entity.KindModel)
	module := moduleOf(f.Path)

	var models []entity.Model
	insp.Preorder([]ast.Node{(*ast.TypeSpec)(nil)}, func(n ast.Node) {
		spec := n.(*ast.TypeSpec)
		st, ok := spec.Type.(*ast.StructType)
		if !ok {
			return
		}

		conf := 0.0
		hasStorageTag := false
		var fields []entity.Field
		for _, field := range st.Fields.List {
			if field.Tag != nil {
				tag := field.Tag.Value
				if strings.Contains(tag, "db:\"") || strings.Contains(tag, "gorm:\"") || strings.Contains(tag, "bson:\"") {
					hasStorageTag = true
				}
			}
			ftype := exprName(field.Type)
			for _, name := range field.Names {
				fields = append(fields, entity.Field{Name: name.Name, Type: ftype})
			}
		}
		switch {
		case hasStorageTag:
			conf = ConfExact
		case tagged:
			conf = ConfConvention
		default:
			return
		}

		models = append(models, entity.Model{
			Name:       spec.Name.Name,
			Fields:     fields,
			Module:     module,
			File:       f.Path,
			Line:       fset.Position(spec.Pos()).Line,
			Confidence: conf,
		})
	})
	return models, nil
}

// goServices matches service-suffixed type declarations, plus any struct in
// a service-tagged file
func goServices(f *entity.SourceFile) ([]entity.Service, []entity.Warning) {
	fset, insp, warn := parseGoFile(f)
	if warn != nil {
		return nil, []entity.Warning{*warn}
	}

	tagged := f.Tagged(entity.KindService)
	module := moduleOf(f.Path)
	seen := make(map[string]bool)
	var services []entity.Service

	insp.Preorder([]ast.Node{(*ast.TypeSpec)(nil)}, func(n ast.Node) {
		spec := n.(*ast.TypeSpec)
		switch spec.Type.(type) {
		case *ast.StructType, *ast.InterfaceType:
		default:
			return
		}
		name := spec.Name.Name
		if seen[name] {
			return
		}

		conf := 0.0
		switch {
		case hasSuffix(name, goServiceSuffixes):
			conf = ConfStrong
		case tagged:
			conf = ConfConvention
		default:
			return
		}
		seen[name] = true

		services = append(services, entity.Service{
			Name:       name,
			Module:     module,
			File:       f.Path,
			Line:       fset.Position(spec.Pos()).Line,
			Confidence: conf,
		})
	})
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

func stringArg(arg ast.Expr) (string, bool) {
	lit, ok := arg.(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return "", false
	}
	s, err := strconv.Unquote(lit.Value)
	if err != nil {
		return "", false
	}
	return s, true
}

// exprName renders a short name for an expression: idents, selector tails,
// pointers and containers, best effort
func exprName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.SelectorExpr:
		return e.Sel.Name
	case *ast.StarExpr:
		return "*" + exprName(e.X)
	case *ast.ArrayType:
		return "[]" + exprName(e.Elt)
	case *ast.MapType:
		return "map[" + exprName(e.Key) + "]" + exprName(e.Value)
	case *ast.CallExpr:
		return exprName(e.Fun)
	case *ast.FuncLit:
		return ""
	default:
		return ""
	}
}

func hasSuffix(name string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(name, s) && name != s {
			return true
		}
	}
	return false
}
