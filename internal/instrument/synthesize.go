package instrument

import (
	"fmt"
	"go/ast"
	"go/token"
	"strconv"
	"strings"
)

const (
	// LogPackageName is the import name synthesized code refers to the log package with.
	LogPackageName = namePrefix + "log"

	// LogPackagePath is the package the synthesized code logs with.
	LogPackagePath = "log"

	// VoidPlaceholder stands for the result of declarations producing no value.
	VoidPlaceholder = "void"
)

// Synthesizer builds replacement bodies. It is stateless.
type Synthesizer struct{}

// Synthesize builds the replacement for a matched declaration. Nothing is
// mutated: the original body is only referenced by the replacement.
func (s *Synthesizer) Synthesize(u Unit, d *Declaration) (*Replacement, error) {
	body := d.Body()
	if body == nil {
		return nil, synthesisErrorf(d, "declaration has no body")
	}

	results, err := u.Results(d)
	if err != nil {
		return nil, err
	}

	nm := newNamer(d)
	if nm.isUsed(LogPackageName) && shadowsLog(d) {
		return nil, synthesisErrorf(d, "reserved identifier %s is used", LogPackageName)
	}
	if err := checkResultScope(d, results); err != nil {
		return nil, err
	}

	rep := &Replacement{}
	params := u.Parameters(d)
	if needNames(params) {
		rep.Params, params = nameParams(d.Type().Params, nm)
	}

	resultTypes, err := cloneFieldList(results.Fields)
	if err != nil {
		return nil, synthesisErrorf(d, "copy results: %s", err)
	}

	rep.Inner = &ast.FuncLit{
		Type: &ast.FuncType{
			Params:  &ast.FieldList{},
			Results: resultTypes,
		},
		Body: body,
	}
	inner := &ast.CallExpr{Fun: rep.Inner}

	stmts := []ast.Stmt{entryLog(d.Name, params)}
	if results.Void() {
		stmts = append(
			stmts,
			&ast.ExprStmt{X: inner},
			logStmt("<- "+d.Name+" = "+VoidPlaceholder),
		)
	} else {
		names := make([]string, results.Len)
		for i := range names {
			names[i] = nm.fresh("res" + strconv.Itoa(i))
		}
		stmts = append(
			stmts,
			&ast.AssignStmt{
				Lhs: idents(names),
				Tok: token.DEFINE,
				Rhs: []ast.Expr{inner},
			},
			exitLog(d.Name, names),
			&ast.ReturnStmt{Results: idents(names)},
		)
	}

	rep.Body = &ast.BlockStmt{
		Lbrace: body.Lbrace,
		List:   stmts,
		Rbrace: body.Rbrace,
	}
	return rep, nil
}

// shadowsLog reports whether the log package name is used for anything but
// selecting from the package. Code wrapped earlier only selects from it.
func shadowsLog(d *Declaration) bool {
	selected := map[*ast.Ident]struct{}{}
	var res bool
	ast.Inspect(d.Node(), func(n ast.Node) bool {
		switch v := n.(type) {
		case *ast.SelectorExpr:
			if id, ok := v.X.(*ast.Ident); ok {
				selected[id] = struct{}{}
			}
		case *ast.Ident:
			if _, ok := selected[v]; !ok && v.Name == LogPackageName {
				res = true
			}
		}
		return !res
	})

	return res
}

// checkResultScope makes sure result types mean the same inside the body,
// where parameters and named results shadow outer identifiers.
func checkResultScope(d *Declaration, results Results) error {
	if results.Fields == nil {
		return nil
	}

	refs := typeIdents(results.Fields)
	lists := []*ast.FieldList{d.Type().Params, results.Fields}
	if d.Func != nil {
		lists = append(lists, d.Func.Recv)
	}
	for _, fl := range lists {
		if fl == nil {
			continue
		}
		for _, f := range fl.List {
			for _, name := range f.Names {
				if _, ok := refs[name.Name]; ok && name.Name != "_" {
					return synthesisErrorf(d, "result type refers to %s which is shadowed in the body", name.Name)
				}
			}
		}
	}

	return nil
}

func needNames(params []Param) bool {
	for _, p := range params {
		if p.Name == "" || p.Name == "_" {
			return true
		}
	}

	return false
}

// nameParams copies the parameter list giving names to unnamed and blank parameters.
func nameParams(fl *ast.FieldList, nm *namer) (*ast.FieldList, []Param) {
	res := &ast.FieldList{
		Opening: fl.Opening,
		List:    make([]*ast.Field, 0, len(fl.List)),
		Closing: fl.Closing,
	}

	var params []Param
	for _, f := range fl.List {
		field := *f
		field.Names = nil
		if len(f.Names) == 0 {
			name := nm.fresh("param" + strconv.Itoa(len(params)))
			field.Names = []*ast.Ident{ast.NewIdent(name)}
			params = append(params, Param{Name: name, Type: f.Type})
		} else {
			for _, id := range f.Names {
				if id.Name == "_" {
					id = ast.NewIdent(nm.fresh("param" + strconv.Itoa(len(params))))
				}
				field.Names = append(field.Names, id)
				params = append(params, Param{Name: id.Name, Type: f.Type})
			}
		}
		res.List = append(res.List, &field)
	}

	return res, params
}

// entryLog builds: log.Printf("-> name(%v, %v)", p0, p1).
func entryLog(name string, params []Param) ast.Stmt {
	verbs := make([]string, len(params))
	args := make([]string, len(params))
	for i, p := range params {
		verbs[i] = "%v"
		args[i] = p.Name
	}

	format := fmt.Sprintf("-> %s(%s)", name, strings.Join(verbs, ", "))
	return logStmt(format, idents(args)...)
}

// exitLog builds: log.Printf("<- name = %v", r0) or with (%v, %v) for multiple results.
func exitLog(name string, results []string) ast.Stmt {
	verbs := make([]string, len(results))
	for i := range verbs {
		verbs[i] = "%v"
	}

	value := verbs[0]
	if len(verbs) > 1 {
		value = "(" + strings.Join(verbs, ", ") + ")"
	}

	return logStmt("<- "+name+" = "+value, idents(results)...)
}

func logStmt(format string, args ...ast.Expr) ast.Stmt {
	return &ast.ExprStmt{
		X: &ast.CallExpr{
			Fun: &ast.SelectorExpr{
				X:   ast.NewIdent(LogPackageName),
				Sel: ast.NewIdent("Printf"),
			},
			Args: append(
				[]ast.Expr{&ast.BasicLit{Kind: token.STRING, Value: strconv.Quote(format)}},
				args...,
			),
		},
	}
}

func idents(names []string) []ast.Expr {
	res := make([]ast.Expr, len(names))
	for i, name := range names {
		res[i] = ast.NewIdent(name)
	}

	return res
}
