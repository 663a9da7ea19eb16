package instrument

import (
	"go/ast"
	"go/token"
	"go/types"
	"iter"
	"path"
	"strconv"
	"strings"

	"golang.org/x/tools/go/ast/astutil"

	"github.com/sirkon/debuglog/internal/config"
)

// PackageUnit implements Unit over a type-checked package.
//
// Type information is optional: with nil info annotation qualifiers are
// resolved through import specs only and result lists are taken from the
// syntax as is.
type PackageUnit struct {
	fset    *token.FileSet
	pkgPath string
	files   []*ast.File
	info    *types.Info

	cmaps   map[*ast.File]ast.CommentMap
	touched []*ast.File
	seen    map[*ast.File]struct{}
}

// NewPackageUnit creates a unit for the given package files.
func NewPackageUnit(fset *token.FileSet, pkgPath string, files []*ast.File, info *types.Info) *PackageUnit {
	return &PackageUnit{
		fset:    fset,
		pkgPath: pkgPath,
		files:   files,
		info:    info,
		cmaps:   make(map[*ast.File]ast.CommentMap),
		seen:    make(map[*ast.File]struct{}),
	}
}

// Fset returns the file set positions of the unit belong to.
func (u *PackageUnit) Fset() *token.FileSet {
	return u.fset
}

// Path returns the package import path.
func (u *PackageUnit) Path() string {
	return u.pkgPath
}

// Touched returns files having at least one replaced declaration, in the
// order they were touched.
func (u *PackageUnit) Touched() []*ast.File {
	return u.touched
}

// --- Traversal ------------------------------------------------------------------------------------------------------

func (u *PackageUnit) Declarations() iter.Seq[*Declaration] {
	return func(yield func(*Declaration) bool) {
		for _, file := range u.files {
			w := &declWalker{unit: u, file: file, yield: yield}
			for _, decl := range file.Decls {
				if !w.decl(decl) {
					return
				}
			}
		}
	}
}

// DeclarationsOf lists declarations found in a single top level declaration of the file.
func (u *PackageUnit) DeclarationsOf(file *ast.File, decl ast.Decl) iter.Seq[*Declaration] {
	return func(yield func(*Declaration) bool) {
		w := &declWalker{unit: u, file: file, yield: yield}
		w.decl(decl)
	}
}

type declWalker struct {
	unit  *PackageUnit
	file  *ast.File
	yield func(*Declaration) bool
	stop  bool
}

func (w *declWalker) decl(decl ast.Decl) bool {
	switch d := decl.(type) {
	case *ast.FuncDecl:
		if d.Name == nil || d.Name.Name == "_" {
			return true
		}

		// Keep the original body: the yielded declaration can get a new one.
		body := d.Body
		if !w.emit(&Declaration{
			Name: d.Name.Name,
			Kind: DeclFunc,
			File: w.file,
			Doc:  d.Doc,
			Func: d,
		}) {
			return false
		}
		if body != nil {
			w.nested(body)
		}

	case *ast.GenDecl:
		w.genDecl(d, DeclVar)
		if w.stop {
			return false
		}
		for _, spec := range d.Specs {
			if vs, ok := spec.(*ast.ValueSpec); ok {
				for _, v := range vs.Values {
					w.nested(v)
				}
			}
		}
	}

	return !w.stop
}

func (w *declWalker) emit(d *Declaration) bool {
	if w.stop {
		return false
	}
	if !w.yield(d) {
		w.stop = true
	}
	return !w.stop
}

// genDecl emits variables initialized with function literals.
func (w *declWalker) genDecl(gd *ast.GenDecl, kind DeclKind) {
	if gd.Tok != token.VAR {
		return
	}

	for _, spec := range gd.Specs {
		vs, ok := spec.(*ast.ValueSpec)
		if !ok || len(vs.Names) != len(vs.Values) {
			continue
		}

		doc := vs.Doc
		if doc == nil && !gd.Lparen.IsValid() {
			doc = gd.Doc
		}
		for i, name := range vs.Names {
			lit, ok := vs.Values[i].(*ast.FuncLit)
			if !ok || name.Name == "_" {
				continue
			}
			if !w.emit(&Declaration{
				Name: name.Name,
				Kind: kind,
				File: w.file,
				Doc:  doc,
				Lit:  lit,
			}) {
				return
			}
		}
	}
}

// nested looks for local named function literals at any depth.
func (w *declWalker) nested(root ast.Node) {
	ast.Inspect(root, func(n ast.Node) bool {
		if w.stop {
			return false
		}

		switch s := n.(type) {
		case *ast.AssignStmt:
			if s.Tok != token.DEFINE && s.Tok != token.ASSIGN {
				return true
			}
			if len(s.Lhs) != 1 || len(s.Rhs) != 1 {
				return true
			}
			id, ok := s.Lhs[0].(*ast.Ident)
			if !ok || id.Name == "_" {
				return true
			}
			lit, ok := s.Rhs[0].(*ast.FuncLit)
			if !ok {
				return true
			}
			w.emit(&Declaration{
				Name: id.Name,
				Kind: DeclLocal,
				File: w.file,
				Doc:  w.unit.leadingComment(w.file, s),
				Lit:  lit,
			})

		case *ast.DeclStmt:
			if gd, ok := s.Decl.(*ast.GenDecl); ok {
				w.genDecl(gd, DeclLocal)
			}
		}

		return !w.stop
	})
}

// leadingComment returns the comment group ending on the line right above the statement.
func (u *PackageUnit) leadingComment(file *ast.File, stmt ast.Stmt) *ast.CommentGroup {
	if u.fset == nil {
		return nil
	}

	cmap, ok := u.cmaps[file]
	if !ok {
		cmap = ast.NewCommentMap(u.fset, file, file.Comments)
		u.cmaps[file] = cmap
	}

	line := u.fset.Position(stmt.Pos()).Line
	var res *ast.CommentGroup
	for _, cg := range cmap[stmt] {
		if cg.End() < stmt.Pos() && u.fset.Position(cg.End()).Line == line-1 {
			res = cg
		}
	}

	return res
}

// --- Declaration facts ----------------------------------------------------------------------------------------------

func (u *PackageUnit) Annotations(d *Declaration) []string {
	if d.Doc == nil {
		return nil
	}

	var res []string
	for _, line := range strings.Split(d.Doc.Text(), "\n") {
		raw, ok := annotationText(line)
		if !ok {
			continue
		}
		ref, err := config.ParseReference(raw)
		if err != nil {
			// Just a comment looking alike.
			continue
		}
		res = append(res, u.qualify(d.File, ref, strings.HasPrefix(raw, `"`)))
	}

	return res
}

// annotationText extracts the reference part of "@ref", "@ref(args)" or "@ref rest".
func annotationText(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "@") {
		return "", false
	}
	line = line[1:]

	end := strings.IndexAny(line, " \t(")
	if end >= 0 {
		line = line[:end]
	}
	if line == "" {
		return "", false
	}

	return line, true
}

// qualify turns an annotation reference into a fully qualified name.
func (u *PackageUnit) qualify(file *ast.File, ref config.Reference, quoted bool) string {
	switch {
	case ref.Package == "":
		if u.pkgPath == "" {
			return ref.Name
		}
		return u.pkgPath + "." + ref.Name

	case quoted || strings.ContainsAny(ref.Package, "/."):
		return ref.FQN()
	}

	if p, ok := u.importPath(file, ref.Package); ok {
		return p + "." + ref.Name
	}

	return ref.FQN()
}

// importPath resolves a package name visible in the file.
func (u *PackageUnit) importPath(file *ast.File, name string) (string, bool) {
	if u.info != nil {
		if scope := u.info.Scopes[file]; scope != nil {
			if pn, ok := scope.Lookup(name).(*types.PkgName); ok {
				return pn.Imported().Path(), true
			}
		}
	}

	for _, spec := range file.Imports {
		p, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}

		local := guessPackageName(p)
		if spec.Name != nil {
			local = spec.Name.Name
		}
		if local == name {
			return p, true
		}
	}

	return "", false
}

// guessPackageName takes the last path element skipping major version suffixes.
func guessPackageName(importPath string) string {
	base := path.Base(importPath)
	if len(base) > 1 && base[0] == 'v' && strings.Trim(base[1:], "0123456789") == "" {
		base = path.Base(path.Dir(importPath))
	}

	return strings.TrimPrefix(base, "go-")
}

func (u *PackageUnit) Parameters(d *Declaration) []Param {
	fields := d.Type().Params
	if fields == nil {
		return nil
	}

	var res []Param
	for _, f := range fields.List {
		if len(f.Names) == 0 {
			res = append(res, Param{Type: f.Type})
			continue
		}
		for _, name := range f.Names {
			res = append(res, Param{Name: name.Name, Type: f.Type})
		}
	}

	return res
}

func (u *PackageUnit) Results(d *Declaration) (Results, error) {
	fields := d.Type().Results
	res := Results{
		Fields: fields,
		Len:    fields.NumFields(),
	}

	if u.info == nil {
		return res, nil
	}

	sig := u.signature(d)
	if sig == nil {
		return Results{}, synthesisErrorf(d, "no resolved signature")
	}
	if sig.Results().Len() != res.Len {
		return Results{}, synthesisErrorf(
			d,
			"resolved signature has %d results while the syntax has %d",
			sig.Results().Len(),
			res.Len,
		)
	}

	return res, nil
}

func (u *PackageUnit) signature(d *Declaration) *types.Signature {
	if d.Func != nil {
		fn, ok := u.info.Defs[d.Func.Name].(*types.Func)
		if !ok {
			return nil
		}
		sig, _ := fn.Type().(*types.Signature)
		return sig
	}

	tv, ok := u.info.Types[d.Lit]
	if !ok {
		return nil
	}
	sig, _ := tv.Type.(*types.Signature)
	return sig
}

// --- Mutation -------------------------------------------------------------------------------------------------------

func (u *PackageUnit) ReplaceBody(d *Declaration, r *Replacement) {
	if r.Params != nil {
		d.Type().Params = r.Params
	}
	if d.Func != nil {
		d.Func.Body = r.Body
	} else {
		d.Lit.Body = r.Body
	}

	if _, ok := u.seen[d.File]; !ok {
		u.seen[d.File] = struct{}{}
		u.touched = append(u.touched, d.File)
	}
}

// Commit adds the log import to every touched file.
func (u *PackageUnit) Commit() error {
	for _, file := range u.touched {
		astutil.AddNamedImport(u.fset, file, LogPackageName, LogPackagePath)
	}

	return nil
}
