// Package report stores and prints manifests of instrumented declarations.
package report

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fatih/color"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/sirkon/debuglog/internal/overlay"
)

// Current schema version, increment when Manifest format changes.
const schemaVersion uint16 = 1

const fileExt = ".mp"

// Manifest lists instrumented declarations of a package.
type Manifest struct {
	Schema  uint16
	Package string
	Entries []Entry
}

// Entry is an instrumented declaration.
type Entry struct {
	Name       string
	Kind       string
	Annotation string
	Enclosing  string
	File       string
	Line       int
	Column     int
}

// FromPackage builds a manifest of a rewritten package.
func FromPackage(p *overlay.Package) *Manifest {
	m := &Manifest{
		Schema:  schemaVersion,
		Package: p.Path,
	}
	for _, d := range p.Decls {
		m.Entries = append(m.Entries, Entry{
			Name:       d.Name,
			Kind:       d.Kind,
			Annotation: d.Annotation,
			Enclosing:  d.Enclosing,
			File:       d.Pos.Filename,
			Line:       d.Pos.Line,
			Column:     d.Pos.Column,
		})
	}

	return m
}

// FileName returns the manifest file name of a package.
func FileName(pkgPath string) string {
	return fmt.Sprintf("%016x%s", xxhash.Sum64String(pkgPath), fileExt)
}

// Write stores the manifest in dir, replacing the previous one of the package.
func Write(dir string, m *Manifest) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		// Already renamed on success.
		_ = os.Remove(f.Name())
	}()

	if err := msgpack.NewEncoder(f).Encode(m); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode manifest of %s: %w", m.Package, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close manifest of %s: %w", m.Package, err)
	}

	if err := os.Rename(f.Name(), filepath.Join(dir, FileName(m.Package))); err != nil {
		return fmt.Errorf("store manifest of %s: %w", m.Package, err)
	}

	return nil
}

// Load reads all manifests from dir ordered by package path. Manifests of
// other schema versions are skipped.
func Load(dir string) ([]*Manifest, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list report dir: %w", err)
	}

	var res []*Manifest
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}

		m, err := loadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		if m.Schema != schemaVersion {
			continue
		}
		res = append(res, m)
	}

	slices.SortFunc(res, func(a, b *Manifest) int {
		return strings.Compare(a.Package, b.Package)
	})
	return res, nil
}

func loadFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	var m Manifest
	if err := msgpack.NewDecoder(f).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", path, err)
	}

	return &m, nil
}

// Printer renders manifests.
type Printer struct {
	pkg  *color.Color
	pos  *color.Color
	name *color.Color
	ann  *color.Color
}

// NewPrinter creates a printer, colored or not.
func NewPrinter(colored bool) *Printer {
	p := &Printer{
		pkg:  color.New(color.FgCyan, color.Bold),
		pos:  color.New(color.Faint),
		name: color.New(color.FgGreen),
		ann:  color.New(color.FgYellow),
	}
	for _, c := range []*color.Color{p.pkg, p.pos, p.name, p.ann} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return p
}

// Print writes manifests in a human readable form.
func (p *Printer) Print(w io.Writer, ms []*Manifest) error {
	for _, m := range ms {
		if _, err := p.pkg.Fprintln(w, m.Package); err != nil {
			return err
		}

		for _, e := range m.Entries {
			kind := e.Kind
			if e.Enclosing != "" {
				kind += " in " + e.Enclosing
			}

			_, err := fmt.Fprintf(
				w,
				"  %s  %s  %s  %s\n",
				p.pos.Sprintf("%s:%d:%d", filepath.Base(e.File), e.Line, e.Column),
				p.name.Sprint(e.Name),
				kind,
				p.ann.Sprint("@"+e.Annotation),
			)
			if err != nil {
				return err
			}
		}
	}

	return nil
}
