package overlay

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"log/slog"
	"os"
	"runtime"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/go/packages"

	"github.com/sirkon/debuglog/internal/instrument"
)

// Driver rewrites packages.
type Driver struct {
	rw *instrument.Rewriter

	dir        string
	env        []string
	buildFlags []string
	tests      bool
	jobs       int
	logger     *slog.Logger
}

// Option customizes a Driver.
type Option func(d *Driver)

// WithDir sets the directory patterns are resolved in.
func WithDir(dir string) Option {
	return func(d *Driver) {
		d.dir = dir
	}
}

// WithEnv sets the environment of the underlying go command.
func WithEnv(env []string) Option {
	return func(d *Driver) {
		d.env = env
	}
}

// WithBuildFlags passes build flags like -tags to the package loader.
func WithBuildFlags(flags []string) Option {
	return func(d *Driver) {
		d.buildFlags = flags
	}
}

// WithTests makes test files part of the rewrite.
func WithTests(tests bool) Option {
	return func(d *Driver) {
		d.tests = tests
	}
}

// WithJobs limits the number of packages rewritten at once.
func WithJobs(jobs int) Option {
	return func(d *Driver) {
		d.jobs = jobs
	}
}

// WithLogger sets the logger for progress messages.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		d.logger = logger
	}
}

// New creates a driver over the rewriter.
func New(rw *instrument.Rewriter, opts ...Option) *Driver {
	d := &Driver{
		rw:     rw,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.jobs <= 0 {
		d.jobs = runtime.GOMAXPROCS(0)
	}

	return d
}

// Package is a rewritten package.
type Package struct {
	Path  string
	Files []*File
	Decls []Decl
}

// File is a rewritten source file.
type File struct {
	// Path of the original file.
	Path    string
	Content []byte
}

// Decl is an instrumented declaration.
type Decl struct {
	Name       string
	Kind       string
	Annotation string
	Enclosing  string
	Pos        token.Position
}

type printFunc func(fset *token.FileSet, file *ast.File, src []byte, outcomes []*instrument.Outcome) ([]byte, error)

// Rewrite loads packages and returns the ones having anything instrumented.
// File contents carry line directives, they are meant for compilation.
func (d *Driver) Rewrite(ctx context.Context, patterns ...string) ([]*Package, error) {
	return d.rewrite(ctx, instrument.Print, patterns)
}

// Preview is Rewrite producing human readable sources.
func (d *Driver) Preview(ctx context.Context, patterns ...string) ([]*Package, error) {
	return d.rewrite(ctx, instrument.Format, patterns)
}

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedCompiledGoFiles |
	packages.NeedImports |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo

func (d *Driver) rewrite(ctx context.Context, render printFunc, patterns []string) ([]*Package, error) {
	if !d.rw.Config().Enabled() {
		d.logger.Debug("instrumentation is disabled")
		return nil, nil
	}

	cfg := &packages.Config{
		Context:    ctx,
		Mode:       loadMode,
		Dir:        d.dir,
		Env:        d.env,
		BuildFlags: d.buildFlags,
		Tests:      d.tests,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("load packages: %w", err)
	}
	if err := loadErrors(pkgs); err != nil {
		return nil, err
	}
	d.logger.Debug("packages loaded", slog.Int("count", len(pkgs)))

	var (
		mu   sync.Mutex
		seen = map[string]struct{}{}
		res  = make([]*Package, len(pkgs))
	)
	// Test variants share files with the package under test, the first
	// variant to claim a file rewrites it.
	claim := func(path string) bool {
		mu.Lock()
		defer mu.Unlock()
		if _, ok := seen[path]; ok {
			return false
		}
		seen[path] = struct{}{}
		return true
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.jobs)
	for i, pkg := range pkgs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			p, err := d.rewritePackage(pkg, render, claim)
			if err != nil {
				return fmt.Errorf("rewrite %s: %w", pkg.ID, err)
			}
			res[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res = slices.DeleteFunc(res, func(p *Package) bool {
		return p == nil || len(p.Files) == 0
	})
	return res, nil
}

func (d *Driver) rewritePackage(pkg *packages.Package, render printFunc, claim func(string) bool) (*Package, error) {
	goFiles := map[string]struct{}{}
	for _, f := range pkg.GoFiles {
		goFiles[f] = struct{}{}
	}

	// Generated files of cgo packages cannot be replaced.
	var files []*ast.File
	for _, f := range pkg.Syntax {
		name := pkg.Fset.File(f.Pos()).Name()
		if _, ok := goFiles[name]; ok && claim(name) {
			files = append(files, f)
		}
	}
	if len(files) == 0 {
		return nil, nil
	}

	unit := instrument.NewPackageUnit(pkg.Fset, pkg.PkgPath, files, pkg.TypesInfo)
	res, err := d.rw.Rewrite(unit)
	if err != nil {
		return nil, err
	}
	if !res.Changed() {
		return nil, nil
	}

	p := &Package{Path: pkg.PkgPath}
	for _, f := range res.Files {
		path := pkg.Fset.File(f.Pos()).Name()
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read source: %w", err)
		}
		data, err := render(pkg.Fset, f, src, res.Outcomes)
		if err != nil {
			return nil, err
		}
		p.Files = append(p.Files, &File{
			Path:    path,
			Content: data,
		})
	}
	for _, o := range res.Replaced() {
		decl := Decl{
			Name:       o.Decl.Name,
			Kind:       o.Decl.Kind.String(),
			Annotation: o.Annotation,
			Pos:        pkg.Fset.Position(o.Decl.Pos()),
		}
		if o.Enclosing != nil {
			decl.Enclosing = o.Enclosing.Name
		}
		p.Decls = append(p.Decls, decl)
	}

	d.logger.Debug(
		"package rewritten",
		slog.String("package", pkg.ID),
		slog.Int("files", len(p.Files)),
		slog.Int("declarations", len(p.Decls)),
	)
	return p, nil
}

func loadErrors(pkgs []*packages.Package) error {
	var errs []error
	packages.Visit(pkgs, nil, func(p *packages.Package) {
		for _, e := range p.Errors {
			errs = append(errs, e)
		}
	})

	return errors.Join(errs...)
}
