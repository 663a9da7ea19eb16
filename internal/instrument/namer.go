package instrument

import (
	"go/ast"
	"strconv"
)

// Synthesized identifiers share this prefix.
const namePrefix = "__debuglog_"

// namer hands out identifiers not used anywhere in a declaration.
type namer struct {
	used map[string]struct{}
}

func newNamer(d *Declaration) *namer {
	n := &namer{used: map[string]struct{}{}}
	ast.Inspect(d.Node(), func(node ast.Node) bool {
		if id, ok := node.(*ast.Ident); ok {
			n.used[id.Name] = struct{}{}
		}
		return true
	})

	return n
}

func (n *namer) isUsed(name string) bool {
	_, ok := n.used[name]
	return ok
}

// fresh returns __debuglog_<base>, adding a numeric suffix on collisions.
func (n *namer) fresh(base string) string {
	name := namePrefix + base
	for i := 1; n.isUsed(name); i++ {
		name = namePrefix + base + "_" + strconv.Itoa(i)
	}
	n.used[name] = struct{}{}

	return name
}
