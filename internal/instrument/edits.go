package instrument

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/token"
	"strconv"
	"strings"
)

// Edit replaces the source between Pos and End with Text.
type Edit struct {
	Pos  token.Pos
	End  token.Pos
	Text string
}

// Edits turns the replacement of a declaration into source edits. The original
// body stays where it is: code goes right after its opening and its closing
// braces, so edits of declarations nested into it never overlap with these.
func (o *Outcome) Edits(fset *token.FileSet) ([]Edit, error) {
	rep := o.Replacement
	if o.Status != Replaced || rep == nil {
		return nil, nil
	}

	edits, err := bodyEdits(rep)
	if err != nil {
		return nil, fmt.Errorf("edit %s: %w", o.Decl.Name, err)
	}

	if rep.Params != nil {
		text, err := paramsText(fset, rep.Params)
		if err != nil {
			return nil, fmt.Errorf("edit %s: %w", o.Decl.Name, err)
		}
		edits = append(edits, Edit{
			Pos:  rep.Params.Opening,
			End:  rep.Params.Closing + 1,
			Text: text,
		})
	}

	return edits, nil
}

// ImportEdit adds the log import right after the package clause. It returns
// false when the source already has it.
func ImportEdit(file *ast.File) (Edit, bool) {
	for _, spec := range file.Imports {
		// Imports added by Commit have no position.
		if spec.Name != nil && spec.Name.Name == LogPackageName && spec.Name.NamePos.IsValid() {
			return Edit{}, false
		}
	}

	return Edit{
		Pos:  file.Name.End(),
		End:  file.Name.End(),
		Text: "\n\nimport " + LogPackageName + " " + strconv.Quote(LogPackagePath),
	}, true
}

// bodyMarker stands for the original body in the replacement template.
const bodyMarker = "__debuglog_body"

// bodyEdits splits the printed replacement around the original statements:
//
//	{ + head + original statements + } + tail
//
// The original opening brace stays with the outer block, the closing one ends
// the inner literal.
func bodyEdits(rep *Replacement) ([]Edit, error) {
	body := rep.Inner.Body

	inner := *rep.Inner
	inner.Body = &ast.BlockStmt{
		List: []ast.Stmt{&ast.ExprStmt{X: ast.NewIdent(bodyMarker)}},
	}

	// The template shares nothing with the package syntax but the inner literal.
	tmpl := &ast.BlockStmt{List: make([]ast.Stmt, len(rep.Body.List))}
	for i, stmt := range rep.Body.List {
		tmpl.List[i] = substitute(stmt, rep.Inner, &inner)
	}

	var buf bytes.Buffer
	if err := format.Node(&buf, token.NewFileSet(), tmpl); err != nil {
		return nil, fmt.Errorf("format replacement: %w", err)
	}
	text := buf.String()

	mark := strings.Index(text, bodyMarker)
	open := strings.IndexByte(text, '{')
	if mark < 0 || open < 0 || open > mark {
		return nil, fmt.Errorf("malformed replacement template:\n%s", text)
	}
	head := strings.TrimRight(text[open+1:mark], " \t\n")

	rest := text[mark+len(bodyMarker):]
	closing := strings.IndexByte(rest, '}')
	if closing < 0 {
		return nil, fmt.Errorf("malformed replacement template:\n%s", text)
	}
	tail := rest[closing+1:]

	return []Edit{
		{
			Pos:  body.Lbrace + 1,
			End:  body.Lbrace + 1,
			Text: head,
		},
		{
			Pos:  body.Rbrace + 1,
			End:  body.Rbrace + 1,
			Text: tail,
		},
	}, nil
}

// substitute returns a shallow copy of a synthesized statement with the inner
// literal replaced.
func substitute(stmt ast.Stmt, from, to *ast.FuncLit) ast.Stmt {
	call := func(e ast.Expr) ast.Expr {
		c, ok := e.(*ast.CallExpr)
		if !ok || c.Fun != from {
			return e
		}
		cc := *c
		cc.Fun = to
		return &cc
	}

	switch s := stmt.(type) {
	case *ast.ExprStmt:
		return &ast.ExprStmt{X: call(s.X)}
	case *ast.AssignStmt:
		cp := *s
		cp.Rhs = []ast.Expr{call(s.Rhs[0])}
		return &cp
	default:
		return stmt
	}
}

// paramsText renders a parameter list with parentheses.
func paramsText(fset *token.FileSet, params *ast.FieldList) (string, error) {
	var buf bytes.Buffer
	if err := format.Node(&buf, fset, &ast.FuncType{Params: params}); err != nil {
		return "", fmt.Errorf("format parameters: %w", err)
	}

	return strings.TrimPrefix(buf.String(), "func"), nil
}
