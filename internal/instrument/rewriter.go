package instrument

import (
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"iter"

	"github.com/sirkon/debuglog/internal/config"
	"github.com/sirkon/debuglog/internal/dlrules"
)

// Rewriter wraps annotated declarations of compilation units. A single
// instance can serve many units concurrently: the configuration is read-only
// and the reporter is synchronized.
//
// Rewriting is not idempotent. Running it over already instrumented code
// wraps matched declarations once again.
type Rewriter struct {
	cfg      *config.Config
	matcher  *Matcher
	synth    Synthesizer
	reporter *Reporter
}

// Option customizes a Rewriter.
type Option func(r *Rewriter)

// WithReporter makes the rewriter record what it does.
func WithReporter(rep *Reporter) Option {
	return func(r *Rewriter) {
		r.reporter = rep
	}
}

// NewRewriter validates the configuration and creates a rewriter over it.
// A validation failure is reported too.
func NewRewriter(cfg *config.Config, opts ...Option) (*Rewriter, error) {
	r := &Rewriter{
		cfg:     cfg,
		matcher: NewMatcher(cfg),
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := config.Validate(cfg); err != nil {
		if r.reporter != nil {
			r.reporter.Phase(ReportConfig).Report(dlrules.MissingAnnotations(), "", "", token.Position{}, nil)
		}
		return nil, err
	}

	return r, nil
}

// Config returns the configuration the rewriter was created with.
func (r *Rewriter) Config() *config.Config {
	return r.cfg
}

// Status of a visited declaration.
type Status int

const (
	_ Status = iota
	Unchanged
	Replaced
)

func (s Status) String() string {
	switch s {
	case Unchanged:
		return "unchanged"
	case Replaced:
		return "replaced"
	default:
		return fmt.Sprintf("unknown-status(%d)", s)
	}
}

// Outcome is what happened to a single declaration.
type Outcome struct {
	Decl *Declaration

	// Enclosing is the innermost declaration around a nested one.
	Enclosing *Declaration

	Status Status

	// Annotation is the configured annotation the declaration matched.
	Annotation string

	Replacement *Replacement
}

// Result of processing a unit.
type Result struct {
	// Outcomes go in declaration order.
	Outcomes []*Outcome

	// Files having at least one replaced declaration. Filled by Apply.
	Files []*ast.File
}

// Replaced returns outcomes of replaced declarations.
func (r *Result) Replaced() []*Outcome {
	var res []*Outcome
	for _, o := range r.Outcomes {
		if o.Status == Replaced {
			res = append(res, o)
		}
	}

	return res
}

// Changed reports whether anything is to be replaced.
func (r *Result) Changed() bool {
	for _, o := range r.Outcomes {
		if o.Status == Replaced {
			return true
		}
	}

	return false
}

// Rewrite plans and applies replacements for the unit.
func (r *Rewriter) Rewrite(u Unit) (*Result, error) {
	res, err := r.Plan(u)
	if err != nil {
		return nil, err
	}

	if err := r.Apply(u, res); err != nil {
		return nil, err
	}

	return res, nil
}

// Plan visits every declaration of the unit and builds replacements for the
// matched ones. The unit is not modified.
func (r *Rewriter) Plan(u Unit) (*Result, error) {
	return r.PlanSeq(u, u.Declarations())
}

// PlanSeq is Plan over a subset of the unit declarations, such as the ones
// found within a single top level declaration.
func (r *Rewriter) PlanSeq(u Unit, decls iter.Seq[*Declaration]) (*Result, error) {
	res := &Result{}
	idx := newDeclIndex()
	for d := range decls {
		encl := idx.Enclosing(d.Pos())
		idx.Add(d)

		o, err := r.Visit(u, d)
		if err != nil {
			return nil, err
		}
		o.Enclosing = encl
		res.Outcomes = append(res.Outcomes, o)
	}

	return res, nil
}

// Visit decides the outcome for a single declaration. The unit is not modified.
func (r *Rewriter) Visit(u Unit, d *Declaration) (*Outcome, error) {
	o := &Outcome{
		Decl:   d,
		Status: Unchanged,
	}

	ann, ok := r.matcher.Match(u.Annotations(d))
	if !ok {
		return o, nil
	}

	rep, err := r.synth.Synthesize(u, d)
	if err != nil {
		r.report(u, dlrules.SynthesisFailed(), d, err.Error(), d.Name)
		return nil, fmt.Errorf("synthesize replacement: %w", err)
	}

	o.Status = Replaced
	o.Annotation = ann
	o.Replacement = rep
	r.report(u, dlrules.Instrumented(), d, d.Name, ann)

	return o, nil
}

// Apply installs planned replacements and commits the unit.
func (r *Rewriter) Apply(u Unit, res *Result) error {
	if !res.Changed() {
		return nil
	}

	seen := map[*ast.File]struct{}{}
	for _, o := range res.Replaced() {
		u.ReplaceBody(o.Decl, o.Replacement)
		if _, ok := seen[o.Decl.File]; !ok {
			seen[o.Decl.File] = struct{}{}
			res.Files = append(res.Files, o.Decl.File)
		}
	}

	if err := u.Commit(); err != nil {
		return fmt.Errorf("commit unit: %w", err)
	}

	return nil
}

// positioned is implemented by units able to tell where declarations are.
type positioned interface {
	Fset() *token.FileSet
	Path() string
}

func (r *Rewriter) report(u Unit, code dlrules.Code, d *Declaration, msg string, details any) {
	if r.reporter == nil {
		return
	}

	var (
		pos token.Position
		pkg string
	)
	if p, ok := u.(positioned); ok {
		pkg = p.Path()
		if fset := p.Fset(); fset != nil {
			pos = fset.Position(d.Pos())
		}
	}

	r.reporter.Phase(ReportRewrite).Report(code, pkg, msg, pos, details)
}

// AsSynthesisError extracts a synthesis failure from an error chain.
func AsSynthesisError(err error) (*SynthesisError, bool) {
	var e *SynthesisError
	if errors.As(err, &e) {
		return e, true
	}

	return nil, false
}
