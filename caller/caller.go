// Package caller renders a call-stack backtrace for invariant-violation
// panics raised elsewhere in this module.
package caller

import (
	"fmt"
	"runtime"
)

// Dump returns a formatted call stack starting at the given skip depth
// (as passed to runtime.Caller). Unlike the teacher's Callerdump, it
// returns the string instead of printing it directly, so callers can
// fold it into a panic value.
func Dump(skip int) string {
	i := skip
	s := ""
	for {
		_, f, l, ok := runtime.Caller(i)
		if !ok {
			break
		}
		i++
		if s == "" {
			s = fmt.Sprintf("%s:%d\n", f, l)
		} else {
			s += fmt.Sprintf("\t<-%s:%d\n", f, l)
		}
	}
	return s
}
