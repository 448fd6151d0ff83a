// Package bounds assigns a fixed resource-reservation size to each
// recursive or loop-driven call site in the VM subsystem, mirroring the
// teacher's bounds.Bounds(tag) call sites in vm/as.go and vm/userbuf.go.
// The sizes are conservative stack-frame-equivalent costs: a call site
// reserves its Bounds() amount from package res before doing work, so a
// deeply recursive walk or a long copy loop cannot run the kernel out of
// stack/heap headroom silently.
package bounds

// Tag names one reservation call site.
type Tag int

const (
	// B_COPYIN is charged once per page touched by CopyIn.
	B_COPYIN Tag = iota
	// B_COPYOUT is charged once per page touched by CopyOut.
	B_COPYOUT
	// B_COPYINSTR is charged once per page touched by CopyInStr.
	B_COPYINSTR
	// B_RESOLVEFAULT is charged once per call to ResolveFault.
	B_RESOLVEFAULT
)

// perCallBudget is the reservation size, in abstract resource units, for
// each tag. The numbers are not byte-exact; they only need to be large
// enough relative to each other that a pathological caller (very long
// copy, deeply nested fault) exhausts the pool before exhausting real
// memory.
var perCallBudget = map[Tag]uint{
	B_COPYIN:       1,
	B_COPYOUT:      1,
	B_COPYINSTR:    1,
	B_RESOLVEFAULT: 2,
}

// Bounds returns the reservation size for tag.
func Bounds(tag Tag) uint {
	n, ok := perCallBudget[tag]
	if !ok {
		panic("bounds: unknown tag")
	}
	return n
}
