package b

// @ann.Debug
func silent(n int) int {
	return n
}
