package instrument

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/sirkon/debuglog/internal/config"
)

const keepSource = `package keep

import "log"

// @Debug
func addOne(n int) int {
	// increment it
	n++ // now bigger
	return n
} // addOne ends here

// @Debug
//go:noinline
func next(v string) {
	log.Print(v)
}

func plain() int { return 1 }
`

func TestPrintKeepsComments(t *testing.T) {
	const pkgPath = "example.com/keep"

	unit, file := loadUnit(t, pkgPath, "keep.go", keepSource)
	rw, err := NewRewriter(config.New(true, pkgPath+".Debug"))
	if err != nil {
		t.Fatal(err)
	}
	res, err := rw.Rewrite(unit)
	if err != nil {
		t.Fatalf("rewrite: %s", err)
	}
	if len(res.Replaced()) != 2 {
		t.Fatalf("expected 2 replaced declarations, got %d", len(res.Replaced()))
	}

	out, err := Print(unit.Fset(), file, []byte(keepSource), res.Outcomes)
	if err != nil {
		t.Fatalf("print: %s", err)
	}
	typeCheckSource(t, pkgPath, out)
	text := string(out)

	order := []string{
		`__debuglog_log.Printf("-> addOne(%v)", n)`,
		"// increment it",
		"n++ // now bigger",
		"return n",
		`__debuglog_log.Printf("<- addOne = %v", __debuglog_res0)`,
		"// addOne ends here",
		"// @Debug\n//go:noinline\nfunc next(v string) {",
		`__debuglog_log.Printf("-> next(%v)", v)`,
		"log.Print(v)",
		`__debuglog_log.Printf("<- next = void")`,
		"func plain() int { return 1 }",
	}
	last := -1
	for _, s := range order {
		i := strings.Index(text, s)
		if i < 0 {
			t.Fatalf("%q not found in\n%s", s, text)
		}
		if i < last {
			t.Errorf("%q is out of place in\n%s", s, text)
		}
		last = i
	}

	// Line directives keep original lines.
	fset := token.NewFileSet()
	printed, err := parser.ParseFile(fset, "printed.go", out, parser.ParseComments)
	if err != nil {
		t.Fatalf("parse printed source: %s", err)
	}
	lines := map[string]int{}
	ast.Inspect(printed, func(n ast.Node) bool {
		switch v := n.(type) {
		case *ast.FuncDecl:
			lines["func "+v.Name.Name] = fset.Position(v.Pos()).Line
			if v.Name.Name == "next" && (v.Doc == nil || v.Doc.List[len(v.Doc.List)-1].Text != "//go:noinline") {
				t.Error("next lost its directive")
			}
		case *ast.ReturnStmt:
			if len(v.Results) == 1 {
				if id, ok := v.Results[0].(*ast.Ident); ok && id.Name == "n" {
					lines["return n"] = fset.Position(v.Pos()).Line
				}
			}
		case *ast.CallExpr:
			if sel, ok := v.Fun.(*ast.SelectorExpr); ok && sel.Sel.Name == "Print" {
				lines["log.Print"] = fset.Position(v.Pos()).Line
			}
		}
		return true
	})
	want := map[string]int{
		"func addOne": 6,
		"return n":    9,
		"func next":   14,
		"log.Print":   15,
		"func plain":  18,
	}
	for k, line := range want {
		if lines[k] != line {
			t.Errorf("%s: expected line %d, got %d", k, line, lines[k])
		}
	}

	pretty, err := Format(unit.Fset(), file, []byte(keepSource), res.Outcomes)
	if err != nil {
		t.Fatalf("format: %s", err)
	}
	typeCheckSource(t, pkgPath, pretty)
	if strings.Contains(string(pretty), "/*line") {
		t.Errorf("line directives in formatted source:\n%s", pretty)
	}
	if !strings.Contains(string(pretty), "// @Debug\n//go:noinline\nfunc next(v string) {") {
		t.Errorf("directive moved:\n%s", pretty)
	}
}

func TestPrintUnchanged(t *testing.T) {
	unit, file := loadUnit(t, "example.com/keep", "keep.go", keepSource)
	rw, err := NewRewriter(config.New(true, "example.com/keep.Other"))
	if err != nil {
		t.Fatal(err)
	}
	res, err := rw.Rewrite(unit)
	if err != nil {
		t.Fatal(err)
	}

	out, err := Print(unit.Fset(), file, []byte(keepSource), res.Outcomes)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != keepSource {
		t.Errorf("source changed:\n%s", out)
	}
}
