package instrument

import (
	"fmt"
	"go/ast"
)

// cloneFieldList deep copies a field list. Positions are dropped.
func cloneFieldList(fl *ast.FieldList) (*ast.FieldList, error) {
	if fl == nil {
		return nil, nil
	}

	res := &ast.FieldList{List: make([]*ast.Field, 0, len(fl.List))}
	for _, f := range fl.List {
		typ, err := cloneExpr(f.Type)
		if err != nil {
			return nil, err
		}

		field := &ast.Field{Type: typ}
		for _, name := range f.Names {
			field.Names = append(field.Names, ast.NewIdent(name.Name))
		}
		if f.Tag != nil {
			field.Tag = &ast.BasicLit{Kind: f.Tag.Kind, Value: f.Tag.Value}
		}
		res.List = append(res.List, field)
	}

	return res, nil
}

// cloneExpr deep copies expressions that may appear in type positions.
func cloneExpr(e ast.Expr) (ast.Expr, error) {
	if e == nil {
		return nil, nil
	}

	switch v := e.(type) {
	case *ast.Ident:
		return ast.NewIdent(v.Name), nil

	case *ast.BasicLit:
		return &ast.BasicLit{Kind: v.Kind, Value: v.Value}, nil

	case *ast.SelectorExpr:
		x, err := cloneExpr(v.X)
		if err != nil {
			return nil, err
		}
		return &ast.SelectorExpr{X: x, Sel: ast.NewIdent(v.Sel.Name)}, nil

	case *ast.StarExpr:
		x, err := cloneExpr(v.X)
		if err != nil {
			return nil, err
		}
		return &ast.StarExpr{X: x}, nil

	case *ast.ParenExpr:
		x, err := cloneExpr(v.X)
		if err != nil {
			return nil, err
		}
		return &ast.ParenExpr{X: x}, nil

	case *ast.UnaryExpr:
		x, err := cloneExpr(v.X)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: v.Op, X: x}, nil

	case *ast.BinaryExpr:
		x, err := cloneExpr(v.X)
		if err != nil {
			return nil, err
		}
		y, err := cloneExpr(v.Y)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{X: x, Op: v.Op, Y: y}, nil

	case *ast.CallExpr:
		fun, err := cloneExpr(v.Fun)
		if err != nil {
			return nil, err
		}
		args, err := cloneExprs(v.Args)
		if err != nil {
			return nil, err
		}
		return &ast.CallExpr{Fun: fun, Args: args}, nil

	case *ast.Ellipsis:
		elt, err := cloneExpr(v.Elt)
		if err != nil {
			return nil, err
		}
		return &ast.Ellipsis{Elt: elt}, nil

	case *ast.ArrayType:
		l, err := cloneExpr(v.Len)
		if err != nil {
			return nil, err
		}
		elt, err := cloneExpr(v.Elt)
		if err != nil {
			return nil, err
		}
		return &ast.ArrayType{Len: l, Elt: elt}, nil

	case *ast.MapType:
		k, err := cloneExpr(v.Key)
		if err != nil {
			return nil, err
		}
		val, err := cloneExpr(v.Value)
		if err != nil {
			return nil, err
		}
		return &ast.MapType{Key: k, Value: val}, nil

	case *ast.ChanType:
		val, err := cloneExpr(v.Value)
		if err != nil {
			return nil, err
		}
		return &ast.ChanType{Dir: v.Dir, Value: val}, nil

	case *ast.FuncType:
		params, err := cloneFieldList(v.Params)
		if err != nil {
			return nil, err
		}
		if params == nil {
			params = &ast.FieldList{}
		}
		results, err := cloneFieldList(v.Results)
		if err != nil {
			return nil, err
		}
		return &ast.FuncType{Params: params, Results: results}, nil

	case *ast.InterfaceType:
		methods, err := cloneFieldList(v.Methods)
		if err != nil {
			return nil, err
		}
		if methods == nil {
			methods = &ast.FieldList{}
		}
		return &ast.InterfaceType{Methods: methods}, nil

	case *ast.StructType:
		fields, err := cloneFieldList(v.Fields)
		if err != nil {
			return nil, err
		}
		if fields == nil {
			fields = &ast.FieldList{}
		}
		return &ast.StructType{Fields: fields}, nil

	case *ast.IndexExpr:
		x, err := cloneExpr(v.X)
		if err != nil {
			return nil, err
		}
		idx, err := cloneExpr(v.Index)
		if err != nil {
			return nil, err
		}
		return &ast.IndexExpr{X: x, Index: idx}, nil

	case *ast.IndexListExpr:
		x, err := cloneExpr(v.X)
		if err != nil {
			return nil, err
		}
		indices, err := cloneExprs(v.Indices)
		if err != nil {
			return nil, err
		}
		return &ast.IndexListExpr{X: x, Indices: indices}, nil

	default:
		return nil, fmt.Errorf("unsupported type expression %T", e)
	}
}

func cloneExprs(list []ast.Expr) ([]ast.Expr, error) {
	res := make([]ast.Expr, 0, len(list))
	for _, e := range list {
		c, err := cloneExpr(e)
		if err != nil {
			return nil, err
		}
		res = append(res, c)
	}

	return res, nil
}

// typeIdents collects identifiers a field list's types refer to.
func typeIdents(fl *ast.FieldList) map[string]struct{} {
	res := map[string]struct{}{}
	if fl == nil {
		return res
	}
	for _, f := range fl.List {
		collectTypeIdents(f.Type, res)
	}

	return res
}

func collectTypeIdents(root ast.Node, res map[string]struct{}) {
	if root == nil {
		return
	}
	ast.Inspect(root, func(n ast.Node) bool {
		switch v := n.(type) {
		case *ast.SelectorExpr:
			collectTypeIdents(v.X, res)
			return false
		case *ast.Field:
			// Field and method names of inline struct and interface types.
			collectTypeIdents(v.Type, res)
			return false
		case *ast.Ident:
			res[v.Name] = struct{}{}
		}
		return true
	})
}
