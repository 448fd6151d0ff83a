package vm

import (
	"unsafe"

	"github.com/DiorAdama/xv6-riscv/mem"
)

func tableAt(frame *[mem.PGSIZE]byte) *mem.PageTable {
	return (*mem.PageTable)(unsafe.Pointer(frame))
}

// Walk descends the three-level Sv39 table rooted at root and returns a
// pointer to the level-0 (leaf) PTE that would map va. If an
// intermediate branch page is missing and alloc allows allocation, Walk
// allocates and installs a fresh page table page for it; the returned
// bool is false if such an allocation is required and fails, or if va
// is outside the Sv39 range: a bogus user pointer must come back as
// not-mapped, not crash the caller.
//
// Grounded on the teacher's recursive-self-map walker (vm/as.go
// Pgdir_walk et al.), reconstructed as a plain two-hop loop since Sv39
// has no recursive self-mapping to exploit.
func Walk(root *mem.PageTable, va mem.VA, alloc mem.FrameAllocator) (*mem.PTE, bool) {
	if uintptr(va) >= MAXVA {
		return nil, false
	}
	table := root
	for level := Levels - 1; level > 0; level-- {
		pte := &table[px(level, va)]
		switch pte.Kind() {
		case mem.Leaf:
			panic("vm: walk hit a leaf PTE at a branch level")
		case mem.Branch:
			table = tableAt(alloc.Deref(pte.PA()))
		case mem.Invalid:
			frame, pa, ok := alloc.Alloc()
			if !ok {
				return nil, false
			}
			*pte = mem.MakePTE(pa, mem.PteV)
			table = tableAt(frame)
		}
	}
	return &table[px(0, va)], true
}

// noAlloc wraps a FrameAllocator so Walk can dereference existing
// branch pages without being permitted to install new ones, used by
// lookups that must not allocate (WalkAddr, the fault resolver's
// present-mapping check).
type noAlloc struct{ mem.FrameAllocator }

func (noAlloc) Alloc() (*[mem.PGSIZE]byte, mem.PA, bool) { return nil, 0, false }

// WalkAddr resolves a user or kernel virtual address to the physical
// address it is currently mapped to. It returns ok=false if no valid,
// leaf mapping covers va, and never allocates.
func WalkAddr(root *mem.PageTable, va mem.VA, deref mem.FrameAllocator) (mem.PA, mem.PTE, bool) {
	pte, ok := Walk(root, va, noAlloc{deref})
	if !ok || pte.Kind() != mem.Leaf {
		return 0, 0, false
	}
	return pte.PA(), *pte, true
}
