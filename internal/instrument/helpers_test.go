package instrument

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"go/types"
	"strings"
	"testing"
	"unicode"
)

// stubImporter provides the packages test sources import.
type stubImporter map[string]*types.Package

func newStubImporter() stubImporter {
	logPkg := types.NewPackage("log", "log")
	anySlice := types.NewSlice(types.Universe.Lookup("any").Type())
	for _, name := range []string{"Printf", "Print"} {
		var params []*types.Var
		if name == "Printf" {
			params = append(params, types.NewParam(token.NoPos, logPkg, "format", types.Typ[types.String]))
		}
		params = append(params, types.NewParam(token.NoPos, logPkg, "v", anySlice))
		sig := types.NewSignatureType(nil, nil, nil, types.NewTuple(params...), nil, true)
		logPkg.Scope().Insert(types.NewFunc(token.NoPos, logPkg, name, sig))
	}
	logPkg.MarkComplete()

	annPkg := types.NewPackage("example.com/ann", "ann")
	marker := types.NewTypeName(token.NoPos, annPkg, "Marker", nil)
	types.NewNamed(marker, types.NewStruct(nil, nil), nil)
	annPkg.Scope().Insert(marker)
	annPkg.MarkComplete()

	return stubImporter{
		logPkg.Path(): logPkg,
		annPkg.Path(): annPkg,
	}
}

func (s stubImporter) Import(path string) (*types.Package, error) {
	if p, ok := s[path]; ok {
		return p, nil
	}

	return nil, fmt.Errorf("package %s is not available", path)
}

// loadUnit parses and type checks a single file package.
func loadUnit(t *testing.T, pkgPath, filename, src string) (*PackageUnit, *ast.File) {
	t.Helper()

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		t.Fatalf("parse %s: %s", filename, err)
	}

	info := &types.Info{
		Types:  map[ast.Expr]types.TypeAndValue{},
		Defs:   map[*ast.Ident]types.Object{},
		Uses:   map[*ast.Ident]types.Object{},
		Scopes: map[ast.Node]*types.Scope{},
	}
	conf := types.Config{Importer: newStubImporter()}
	if _, err := conf.Check(pkgPath, fset, []*ast.File{file}, info); err != nil {
		t.Fatalf("type check %s: %s", filename, err)
	}

	return NewPackageUnit(fset, pkgPath, []*ast.File{file}, info), file
}

// parseUnit parses a file without type information.
func parseUnit(t *testing.T, pkgPath, src string) *PackageUnit {
	t.Helper()

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "src.go", src, parser.ParseComments)
	if err != nil {
		t.Fatalf("parse: %s", err)
	}

	return NewPackageUnit(fset, pkgPath, []*ast.File{file}, nil)
}

// typeCheckSource makes sure the source compiles against stub packages.
func typeCheckSource(t *testing.T, pkgPath string, src []byte) {
	t.Helper()

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "printed.go", src, parser.ParseComments)
	if err != nil {
		t.Fatalf("parse printed source: %s\n%s", err, src)
	}

	conf := types.Config{Importer: newStubImporter()}
	if _, err := conf.Check(pkgPath, fset, []*ast.File{file}, nil); err != nil {
		t.Fatalf("type check printed source: %s\n%s", err, src)
	}
}

// formatAST prints the syntax tree of a file, replaced bodies included.
func formatAST(fset *token.FileSet, file *ast.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := format.Node(&buf, fset, file); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
