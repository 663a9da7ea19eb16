package basic

import "example.com/ann"

var _ ann.Marker

// @ann.Debug
func addOne(n int) int {
	return n + 1
}

func untouched(n int) int {
	return n - 1
}

// Twice the annotation still means a single wrap.
// @ann.Debug
// @"example.com/ann".Debug
func double(n int) int {
	return n * 2
}
