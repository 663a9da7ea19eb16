package instrument

import (
	"go/token"

	"github.com/sirkon/rbtree"
)

// declIndex tells which already visited declaration a position belongs to.
// Top level declarations form the root tree, every declaration keeps the ones
// nested into its body in a tree of its own.
type declIndex struct {
	tree *rbtree.Tree[*declSpan]
}

func newDeclIndex() *declIndex {
	return &declIndex{tree: rbtree.New[*declSpan]()}
}

type declSpan struct {
	start token.Pos
	end   token.Pos

	decl   *Declaration
	nested *rbtree.Tree[*declSpan]
}

// Cmp treats spans sharing any position as equal: for declarations this means
// one of them is inside the other.
func (n *declSpan) Cmp(other *declSpan) int {
	switch {
	case n.end < other.start:
		return -1
	case n.start > other.end:
		return 1
	default:
		return 0
	}
}

func (n *declSpan) covers(other *declSpan) bool {
	return n.start <= other.start && n.end >= other.end
}

func (n *declSpan) nestedTree() *rbtree.Tree[*declSpan] {
	if n.nested == nil {
		n.nested = rbtree.New[*declSpan]()
	}
	return n.nested
}

// Add registers a declaration.
func (x *declIndex) Add(d *Declaration) {
	insertSpan(x.tree, &declSpan{start: d.Pos(), end: d.End(), decl: d})
}

// Enclosing returns the innermost registered declaration containing pos.
func (x *declIndex) Enclosing(pos token.Pos) *Declaration {
	found := x.tree.Search(&declSpan{start: pos, end: pos})
	if found == nil {
		return nil
	}
	return innermost(found, pos)
}

// insertSpan puts a declaration span into the tree of its level. Declarations
// can be added in any order, the span being inserted may be the outer one.
func insertSpan(t *rbtree.Tree[*declSpan], s *declSpan) {
	existing := t.InsertReturn(s)
	switch {
	case existing == s:
	case s.covers(existing):
		inner := *existing
		*existing = *s
		insertSpan(existing.nestedTree(), &inner)
	case existing.covers(s):
		insertSpan(existing.nestedTree(), s)
	default:
		panic("declarations overlap partially")
	}
}

func innermost(n *declSpan, pos token.Pos) *Declaration {
	if n.nested == nil {
		return n.decl
	}
	if child := n.nested.Search(&declSpan{start: pos, end: pos}); child != nil {
		return innermost(child, pos)
	}
	return n.decl
}
