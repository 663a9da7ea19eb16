// Package analyzer reports declarations debuglog would instrument and
// suggests the instrumented code as a fix.
package analyzer

import (
	"flag"
	"fmt"
	"go/ast"
	"go/token"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"

	"github.com/sirkon/debuglog/internal/config"
	"github.com/sirkon/debuglog/internal/dlrules"
	"github.com/sirkon/debuglog/internal/instrument"
)

const doc = `debuglog reports functions annotated for entry/exit logging

With -enabled and at least one -annotation every declaration carrying one of
the annotations in its doc comment is reported together with a suggested fix
holding the instrumented code.`

// Analyzer is the main entry point for the checker.
var Analyzer = New()

// New creates an analyzer with its own flag set.
func New() *analysis.Analyzer {
	s := &settings{}
	a := &analysis.Analyzer{
		Name:     "debuglog",
		Doc:      doc,
		Requires: []*analysis.Analyzer{inspect.Analyzer},
		Run:      s.run,
	}
	a.Flags.BoolVar(&s.enabled, "enabled", false, "turn instrumentation on")
	a.Flags.Var(&s.annotations, "annotation", "fully qualified annotation name, can be repeated")
	a.Flags.Var(&s.options, "option", "plugin option in key=value form, can be repeated")

	return a
}

type settings struct {
	enabled     bool
	annotations stringList
	options     stringList
}

// config merges options with flags, flags going last.
func (s *settings) config() (*config.Config, error) {
	cfg, err := config.ParseOptionStrings(s.options)
	if err != nil {
		return nil, err
	}

	annotations := append(cfg.Annotations(), s.annotations...)
	return config.New(cfg.Enabled() || s.enabled, annotations...), nil
}

func (s *settings) run(pass *analysis.Pass) (any, error) {
	cfg, err := s.config()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", dlrules.InvalidOption(), err)
	}
	rw, err := instrument.NewRewriter(cfg)
	if err != nil {
		return nil, err
	}
	if !cfg.Enabled() {
		return nil, nil
	}

	pector := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	unit := instrument.NewPackageUnit(pass.Fset, pass.Pkg.Path(), pass.Files, pass.TypesInfo)
	imported := map[*ast.File]bool{}

	nodeFilter := []ast.Node{
		(*ast.FuncDecl)(nil),
		(*ast.GenDecl)(nil),
	}

	var runErr error
	pector.WithStack(nodeFilter, func(node ast.Node, push bool, stack []ast.Node) bool {
		if !push || runErr != nil || len(stack) != 2 {
			return false
		}
		file := stack[0].(*ast.File)

		res, err := rw.PlanSeq(unit, unit.DeclarationsOf(file, node.(ast.Decl)))
		if err != nil {
			runErr = err
			return false
		}

		for _, o := range res.Replaced() {
			diag, err := diagnostic(pass.Fset, o, !imported[file], file)
			if err != nil {
				runErr = err
				return false
			}
			imported[file] = true
			pass.Report(diag)
		}

		// Nested declarations are handled by DeclarationsOf.
		return false
	})
	if runErr != nil {
		if e, ok := instrument.AsSynthesisError(runErr); ok {
			pass.Report(analysis.Diagnostic{
				Pos:      e.Pos,
				Category: dlrules.SynthesisFailed().String(),
				Message:  runErr.Error(),
			})
			return nil, nil
		}
		return nil, runErr
	}

	return nil, nil
}

func diagnostic(fset *token.FileSet, o *instrument.Outcome, withImport bool, file *ast.File) (analysis.Diagnostic, error) {
	d := o.Decl
	msg := d.Name + " is instrumented by " + o.Annotation
	if o.Enclosing != nil {
		msg += " (nested in " + o.Enclosing.Name + ")"
	}

	edits, err := o.Edits(fset)
	if err != nil {
		return analysis.Diagnostic{}, fmt.Errorf("build fix: %w", err)
	}
	if withImport {
		if imp, ok := instrument.ImportEdit(file); ok {
			edits = append(edits, imp)
		}
	}

	fix := analysis.SuggestedFix{Message: "Instrument " + d.Name}
	for _, e := range edits {
		fix.TextEdits = append(fix.TextEdits, analysis.TextEdit{
			Pos:     e.Pos,
			End:     e.End,
			NewText: []byte(e.Text),
		})
	}

	return analysis.Diagnostic{
		Pos:            d.Pos(),
		End:            d.End(),
		Category:       dlrules.Instrumented().String(),
		Message:        msg,
		SuggestedFixes: []analysis.SuggestedFix{fix},
	}, nil
}

// stringList is a repeatable string flag.
type stringList []string

var _ flag.Value = (*stringList)(nil)

func (l *stringList) String() string {
	if l == nil {
		return ""
	}
	return strings.Join(*l, ",")
}

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}
