package results

import "example.com/ann"

var _ ann.Marker

// @ann.Debug
func divmod(a, b int) (q, r int) {
	defer func() {
		if b == 0 {
			q, r = -1, -1
		}
	}()
	if b == 0 {
		return
	}
	q = a / b
	r = a % b
	return
}

// @ann.Debug
func pair(name string, values ...int) (string, []int, map[string]*int) {
	return name, values, nil
}

// @ann.Debug
func collide(__debuglog_res0 int) int {
	return __debuglog_res0
}
