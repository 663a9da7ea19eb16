package instrument

import (
	"reflect"
	"testing"

	"github.com/sirkon/deepequal"
)

func TestPackageUnitAnnotations(t *testing.T) {
	const src = `package p

import (
	"example.com/ann"
	alias "example.com/ann"
	yaml "gopkg.in/yaml.v3"
	"example.com/mod/v2"
)

var (
	_ ann.Marker
	_ alias.Marker
)

// Plain has no annotations. The @ sign in the middle is not one.
func Plain() {}

// Qualified uses an import.
//
// @ann.Debug
// @alias.Trace("with arguments")
// @yaml.Node some trailing text
// @mod.Thing
func Qualified() {}

// @"example.com/quoted/pkg".Debug
// @example.com/raw.Debug
// @Local
// @nope.Debug
// @
// @1bad
func Other() {}
`
	unit := parseUnit(t, "example.com/p", src)

	got := map[string][]string{}
	for d := range unit.Declarations() {
		got[d.Name] = unit.Annotations(d)
	}

	expected := map[string][]string{
		"Plain": nil,
		"Qualified": {
			"example.com/ann.Debug",
			"example.com/ann.Trace",
			"gopkg.in/yaml.v3.Node",
			"example.com/mod/v2.Thing",
		},
		"Other": {
			"example.com/quoted/pkg.Debug",
			"example.com/raw.Debug",
			"example.com/p.Local",
			"nope.Debug",
		},
	}
	if !reflect.DeepEqual(expected, got) {
		deepequal.SideBySide(t, "annotations", expected, got)
	}
}

func TestPackageUnitDeclarations(t *testing.T) {
	const src = `package p

func A() {
	b := func() {
		c := func() {}
		c()
	}
	b()
}

var d, e = func() {}, 1

func (T) M() {
	var f = func() {}
	f()
	if true {
		g := func() {}
		g()
	}
}

func _() {}

type T struct{}
`
	unit := parseUnit(t, "example.com/p", src)

	type item struct {
		Name string
		Kind string
	}
	var got []item
	for d := range unit.Declarations() {
		got = append(got, item{Name: d.Name, Kind: d.Kind.String()})
	}

	expected := []item{
		{Name: "A", Kind: "func"},
		{Name: "b", Kind: "local"},
		{Name: "c", Kind: "local"},
		{Name: "d", Kind: "var"},
		{Name: "M", Kind: "func"},
		{Name: "f", Kind: "local"},
		{Name: "g", Kind: "local"},
	}
	if !reflect.DeepEqual(expected, got) {
		deepequal.SideBySide(t, "declarations", expected, got)
	}

	// Stopping early and restarting.
	var first []string
	for d := range unit.Declarations() {
		first = append(first, d.Name)
		if len(first) == 2 {
			break
		}
	}
	if !reflect.DeepEqual([]string{"A", "b"}, first) {
		t.Errorf("unexpected early stop result %v", first)
	}
}

func TestPackageUnitParameters(t *testing.T) {
	const src = `package p

func f(a, b int, _ string, c ...any) {}

func g(int, string) {}
`
	unit := parseUnit(t, "example.com/p", src)

	got := map[string][]string{}
	for d := range unit.Declarations() {
		var names []string
		for _, p := range unit.Parameters(d) {
			names = append(names, p.Name)
		}
		got[d.Name] = names
	}

	expected := map[string][]string{
		"f": {"a", "b", "_", "c"},
		"g": {"", ""},
	}
	if !reflect.DeepEqual(expected, got) {
		deepequal.SideBySide(t, "parameters", expected, got)
	}
}
