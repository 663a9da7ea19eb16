package instrument

import (
	"go/ast"
	"go/token"
)

// DeclKind tells how a declaration is written in the source.
type DeclKind int

const (
	_ DeclKind = iota

	// DeclFunc is a function or a method declaration.
	DeclFunc

	// DeclVar is a package level variable initialized with a function literal.
	DeclVar

	// DeclLocal is a local variable assigned or initialized with a function literal.
	DeclLocal
)

func (k DeclKind) String() string {
	switch k {
	case DeclFunc:
		return "func"
	case DeclVar:
		return "var"
	case DeclLocal:
		return "local"
	default:
		return "invalid"
	}
}

// Declaration is a named callable unit of a package.
type Declaration struct {
	// Name is the simple name: function, method or variable name.
	Name string
	Kind DeclKind
	File *ast.File
	Doc  *ast.CommentGroup

	// Func is set for DeclFunc.
	Func *ast.FuncDecl

	// Lit is set for DeclVar and DeclLocal.
	Lit *ast.FuncLit
}

// Node returns the syntax node owning the signature and the body.
func (d *Declaration) Node() ast.Node {
	if d.Func != nil {
		return d.Func
	}
	return d.Lit
}

// Type returns the declaration signature.
func (d *Declaration) Type() *ast.FuncType {
	if d.Func != nil {
		return d.Func.Type
	}
	return d.Lit.Type
}

// Body returns the current body, nil for external functions.
func (d *Declaration) Body() *ast.BlockStmt {
	if d.Func != nil {
		return d.Func.Body
	}
	return d.Lit.Body
}

func (d *Declaration) Pos() token.Pos { return d.Node().Pos() }
func (d *Declaration) End() token.Pos { return d.Node().End() }

// Param is a parameter of a declaration, the receiver is not included.
// Name is empty for unnamed parameters.
type Param struct {
	Name string
	Type ast.Expr
}

// Results describes the result list of a declaration.
type Results struct {
	// Fields is the syntactic result list, nil when there are no results.
	Fields *ast.FieldList

	// Len is the number of result values.
	Len int
}

// Void reports whether the declaration produces no value.
func (r Results) Void() bool {
	return r.Len == 0
}

// Replacement is what a matched declaration gets instead of its body.
type Replacement struct {
	// Params replaces the parameter list when some parameters had to be named.
	// It is nil otherwise.
	Params *ast.FieldList

	Body *ast.BlockStmt

	// Inner is the literal within Body the original body was moved into.
	Inner *ast.FuncLit
}
