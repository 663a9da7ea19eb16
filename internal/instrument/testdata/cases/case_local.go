package local

import "example.com/ann"

var _ ann.Marker

// @Traced
func outer(xs []int) int {
	// @"example.com/ann".Debug
	sum := func(v []int) (s int) {
		for _, x := range v {
			s += x
		}
		return s
	}

	// @nope.Debug
	skip := func() {}
	skip()

	return sum(xs)
}

// @ann.Debug
var handler = func(name string) string {
	return "hi " + name
}

var (
	// @ann.Debug
	first = func() {}

	second = func() {}
)

func nested() {
	var inner func(int) int

	// @ann.Debug
	inner = func(v int) int {
		return v
	}
	_ = inner
}
