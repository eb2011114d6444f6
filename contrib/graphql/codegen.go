package graphql

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"
	"github.com/go-openapi/inflect"
	"github.com/vektah/gqlparser/v2/ast"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/tools/imports"

	"github.com/syssam/vertexql/compiler/gen"
)

// initialisms are upper-cased as a whole in Go identifiers.
var initialisms = map[string]bool{
	"ID": true, "VID": true, "URL": true, "URI": true, "API": true, "HTTP": true,
	"JSON": true, "SQL": true, "UUID": true, "IP": true, "UTC": true,
}

var titleCaser = cases.Title(language.English, cases.NoLower)

// GoName returns the exported Go identifier of a GraphQL name, e.g.
// "first_name" becomes "FirstName" and "user_id" becomes "UserID".
func GoName(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == ' ' || r == '.'
	})
	var b strings.Builder
	for _, w := range words {
		if up := strings.ToUpper(w); initialisms[up] {
			b.WriteString(up)
			continue
		}
		b.WriteString(titleCaser.String(w))
	}
	s := b.String()
	if s == "" || !unicode.IsLetter(rune(s[0])) {
		s = "X" + s
	}
	return s
}

// goScalar returns the Go type of a built-in scalar.
func goScalar(name string) *jen.Statement {
	switch name {
	case "Int":
		return jen.Int64()
	case "Float":
		return jen.Float64()
	case "Boolean":
		return jen.Bool()
	default:
		return jen.String()
	}
}

// GenerateModels renders Go model structs for the object types of s into
// package pkg. Every property becomes a pointer field, so absent and null
// values are told apart from zero values.
func GenerateModels(s *gen.Schema, pkg string) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("graphql: generate models: nil schema")
	}
	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by vertexql, DO NOT EDIT.")

	names := make([]jen.Code, 0, len(s.Types()))
	for _, def := range s.Types() {
		model := GoName(def.Name)
		names = append(names, jen.Lit(def.Name))
		f.Comment(fmt.Sprintf("%s is the model of the %s vertex type.", model, def.Name))
		f.Type().Id(model).StructFunc(func(g *jen.Group) {
			for _, fd := range def.Fields {
				if strings.HasPrefix(fd.Name, "__") {
					continue
				}
				field := g.Id(GoName(fd.Name)).Op("*").Add(goScalar(fd.Type.Name())).Tag(map[string]string{
					"json": fd.Name + ",omitempty",
				})
				if fd.Description != "" {
					field.Comment(oneLine(fd.Description))
				}
			}
		})
		if plural := inflect.Pluralize(model); plural != model {
			f.Comment(fmt.Sprintf("%s is a list of %s vertices.", plural, def.Name))
			f.Type().Id(plural).Index().Op("*").Id(model)
		}
	}

	f.Comment("Root query fields.")
	f.Const().DefsFunc(func(g *jen.Group) {
		for _, fd := range s.RootFields() {
			g.Id("Query" + GoName(fd.Name)).Op("=").Lit(fd.Name)
		}
	})
	f.Comment("VertexTypes lists the vertex types of the schema.")
	f.Var().Id("VertexTypes").Op("=").Index().String().Values(names...)
	f.Comment("SchemaHash identifies the schema the models were generated from.")
	f.Const().Id("SchemaHash").Op("=").Lit(s.Hash())

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("graphql: render models: %w", err)
	}
	out, err := imports.Process("models.go", buf.Bytes(), nil)
	if err != nil {
		return nil, fmt.Errorf("graphql: format models: %w", err)
	}
	return out, nil
}

// WriteModels generates the models of s and writes them to path.
func WriteModels(s *gen.Schema, pkg, path string) error {
	src, err := GenerateModels(s, pkg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	return os.WriteFile(path, src, 0o644)
}

// WriteSDL writes the schema definition of s to path.
func WriteSDL(s *gen.Schema, path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	return os.WriteFile(path, []byte(s.SDL()), 0o644)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// objectNames returns the names of the object types of s.
func objectNames(s *gen.Schema) []string {
	var names []string
	for _, def := range s.Types() {
		if def.Kind == ast.Object {
			names = append(names, def.Name)
		}
	}
	return names
}
