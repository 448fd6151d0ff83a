package vm

import (
	"fmt"

	"github.com/DiorAdama/xv6-riscv/caller"
	"github.com/DiorAdama/xv6-riscv/mem"
)

// MapPages installs leaf PTEs covering [va, va+size) in root, mapping
// each page to the corresponding physical frame starting at pa. size
// and va must already be page aligned; pa need not be (it is rounded
// down), matching the teacher's Map_pages contract.
//
// Grounded on the teacher's Vm_t.Page_insert loop in vm/as.go,
// generalized from single-page insertion to a page run.
func MapPages(root *mem.PageTable, va mem.VA, pa mem.PA, size int, perm mem.PTE, alloc mem.FrameAllocator) bool {
	if size <= 0 {
		panic("vm: MapPages with non-positive size")
	}
	if uintptr(va)%mem.PGSIZE != 0 {
		panic("vm: MapPages with unaligned va")
	}
	start := va
	last := va + mem.VA(size-1)
	a, p := start, pa.Rounddown()
	for {
		pte, ok := Walk(root, a, alloc)
		if !ok {
			return false
		}
		if pte.Kind() != mem.Invalid {
			panic("vm: remap of address " + fmt.Sprint(a) + "\n" + caller.Dump(2))
		}
		*pte = mem.MakePTE(p, perm|mem.PteV)
		if a == PGRoundDown(last) {
			break
		}
		a += mem.PGSIZE
		p += mem.PGSIZE
	}
	return true
}

// Unmap clears n consecutive leaf PTEs starting at va. If freeFrames is
// true, each mapped frame is also returned to alloc. Unmap panics if a
// covered entry is not a present leaf, unless allowAbsent is set, in
// which case absent entries are silently skipped (used when tearing
// down a VMA that was never fully faulted in).
//
// Grounded on the teacher's Uvmclear / Uvmfree absent-PTE handling in
// vm/as.go.
func Unmap(root *mem.PageTable, va mem.VA, n int, freeFrames bool, allowAbsent bool, alloc mem.FrameAllocator) {
	if uintptr(va)%mem.PGSIZE != 0 {
		panic("vm: Unmap with unaligned va")
	}
	for i := 0; i < n; i++ {
		a := va + mem.VA(i*mem.PGSIZE)
		pte, ok := Walk(root, a, noAlloc{alloc})
		if !ok {
			if allowAbsent {
				continue
			}
			panic("vm: unmap of address with no branch path: " + caller.Dump(2))
		}
		switch pte.Kind() {
		case mem.Invalid:
			if allowAbsent {
				continue
			}
			panic("vm: unmap of unmapped address: " + caller.Dump(2))
		case mem.Branch:
			panic("vm: unmap hit a branch PTE at the leaf level: " + caller.Dump(2))
		case mem.Leaf:
			if freeFrames {
				alloc.Free(pte.PA())
			}
			*pte = 0
		}
	}
}

// FreeWalk recursively frees every page table page in the subtree
// rooted at table, at the given level (Levels-1 for the top level).
// It panics if it encounters a leaf entry, since callers must Unmap
// all leaves before calling FreeWalk: a leaf found here would silently
// leak or double-free the frame it maps.
//
// Grounded on the teacher's Uvmfree three-level walk in vm/as.go.
func FreeWalk(table *mem.PageTable, level int, alloc mem.FrameAllocator) {
	for i := range table {
		pte := &table[i]
		switch pte.Kind() {
		case mem.Invalid:
			continue
		case mem.Leaf:
			panic("vm: freewalk encountered a leaf PTE: " + caller.Dump(2))
		case mem.Branch:
			child := tableAt(alloc.Deref(pte.PA()))
			if level > 0 {
				FreeWalk(child, level-1, alloc)
			}
			alloc.Free(pte.PA())
			*pte = 0
		}
	}
}
