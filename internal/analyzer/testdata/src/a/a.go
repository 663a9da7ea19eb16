package a

import "ann"

var _ ann.Marker

// @ann.Debug
func addOne(n int) int { // want `addOne is instrumented by ann.Debug`
	return n + 1
}

func untouched(n int) int {
	return n - 1
}

type T struct{ n int }

// @ann.Debug
func (t *T) Reset(int) { // want `Reset is instrumented by ann.Debug`
	t.n = 0
}

func host() int {
	// @ann.Debug
	twice := func(v int) int { return v * 2 } // want `twice is instrumented by ann.Debug \(nested in host\)`
	return twice(2)
}
