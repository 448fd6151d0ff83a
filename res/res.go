// Package res is the global resource pool the copy and fault paths draw
// against before doing work, grounded on the teacher's Resadd_noblock
// call sites (vm/as.go, vm/userbuf.go) which reserve a bounds.Bounds
// amount against a system-wide budget and back out cleanly on failure.
package res

import "github.com/DiorAdama/xv6-riscv/limits"

// pool is the system-wide reservation budget. It starts large; it
// exists to give a caller a clean ENOHEAP instead of an unbounded
// recursive/loop blowup, not to model real physical memory (package mem
// already does that).
var pool = limits.NewBudget(1 << 24)

// Resadd_noblock reserves n units from the pool without blocking. It
// returns false, reserving nothing, if the pool cannot cover n.
func Resadd_noblock(n uint) bool {
	return pool.Taken(n)
}

// Resdel returns n units previously reserved with Resadd_noblock.
func Resdel(n uint) {
	pool.Given(n)
}
