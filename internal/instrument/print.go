package instrument

import (
	"cmp"
	"fmt"
	"go/ast"
	"go/format"
	"go/token"
	"slices"
	"strings"
)

// Print applies replacements planned for the file to its source. A line
// directive follows every insertion spanning lines, so compiler messages and
// stack traces keep pointing at the original source.
func Print(fset *token.FileSet, file *ast.File, src []byte, outcomes []*Outcome) ([]byte, error) {
	edits, err := fileEdits(fset, file, outcomes)
	if err != nil {
		return nil, err
	}

	return Patch(fset, src, edits, true)
}

// Format is Print for humans: no line directives, gofmt layout.
func Format(fset *token.FileSet, file *ast.File, src []byte, outcomes []*Outcome) ([]byte, error) {
	edits, err := fileEdits(fset, file, outcomes)
	if err != nil {
		return nil, err
	}

	out, err := Patch(fset, src, edits, false)
	if err != nil {
		return nil, err
	}
	res, err := format.Source(out)
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", fset.File(file.Pos()).Name(), err)
	}

	return res, nil
}

func fileEdits(fset *token.FileSet, file *ast.File, outcomes []*Outcome) ([]Edit, error) {
	var edits []Edit
	for _, o := range outcomes {
		if o.Status != Replaced || o.Decl.File != file {
			continue
		}
		e, err := o.Edits(fset)
		if err != nil {
			return nil, err
		}
		edits = append(edits, e...)
	}

	if len(edits) > 0 {
		if imp, ok := ImportEdit(file); ok {
			edits = append(edits, imp)
		}
	}

	return edits, nil
}

// Patch applies edits to the source of a single file. Edits must not overlap.
func Patch(fset *token.FileSet, src []byte, edits []Edit, directives bool) ([]byte, error) {
	if len(edits) == 0 {
		return src, nil
	}

	edits = slices.Clone(edits)
	slices.SortStableFunc(edits, func(a, b Edit) int {
		return cmp.Compare(a.Pos, b.Pos)
	})

	tf := fset.File(edits[0].Pos)
	if tf == nil {
		return nil, fmt.Errorf("edit position %d is out of the file set", edits[0].Pos)
	}

	var buf strings.Builder
	last := 0
	for _, e := range edits {
		if fset.File(e.Pos) != tf || e.End < e.Pos {
			return nil, fmt.Errorf("invalid edit at %s", fset.Position(e.Pos))
		}
		from, to := tf.Offset(e.Pos), tf.Offset(e.End)
		if from < last || to > len(src) {
			return nil, fmt.Errorf("overlapping edit at %s", fset.Position(e.Pos))
		}

		buf.Write(src[last:from])
		buf.WriteString(e.Text)
		if directives && strings.Contains(e.Text, "\n") {
			pos := fset.Position(e.End)
			_, _ = fmt.Fprintf(&buf, "/*line %s:%d:%d*/", pos.Filename, pos.Line, pos.Column)
		}
		last = to
	}
	buf.Write(src[last:])

	return []byte(buf.String()), nil
}
