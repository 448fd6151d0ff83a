package vm

import (
	"github.com/DiorAdama/xv6-riscv/caller"
	"github.com/DiorAdama/xv6-riscv/limits"
	"github.com/DiorAdama/xv6-riscv/mem"
	"github.com/DiorAdama/xv6-riscv/oommsg"
)

// UvmCreate allocates an empty top-level page table for a new user
// address space, returning it alongside the physical frame backing it
// so a matching UvmFree can reclaim that frame too.
func UvmCreate(alloc mem.FrameAllocator) (*mem.PageTable, mem.PA, bool) {
	frame, pa, ok := alloc.Alloc()
	if !ok {
		return nil, 0, false
	}
	return tableAt(frame), pa, true
}

// UvmInitImage copies a small program image (the first user process's
// text+data, small enough to fit in a single page in the teacher's
// original use) into a freshly allocated, mapped page at virtual
// address 0.
//
// Grounded on the teacher's Vmregion/Page_insert sequence used to set up
// the initial process image in vm/as.go.
func UvmInitImage(root *mem.PageTable, image []byte, alloc mem.FrameAllocator) bool {
	if len(image) > mem.PGSIZE {
		panic("vm: init image larger than one page")
	}
	frame, pa, ok := alloc.Alloc()
	if !ok {
		return false
	}
	copy(frame[:], image)
	return MapPages(root, 0, pa, mem.PGSIZE, mem.PteR|mem.PteW|mem.PteX|mem.PteU, alloc)
}

// UvmAlloc grows a user address space's allocated region from oldsz to
// newsz, page-aligned upward, allocating and mapping a fresh
// zero-filled frame for each new page. It consults lim before
// attempting any allocation and fails closed, returning oldsz
// unchanged, if newsz would exceed lim.MaxSize. If a frame allocation
// or mapping fails partway, it unmaps and frees the pages this call
// already installed (via UvmDealloc) and likewise returns oldsz, false.
// On success it returns newsz, true.
func UvmAlloc(root *mem.PageTable, oldsz, newsz mem.VA, perm mem.PTE, lim *limits.AddressSpace, alloc mem.FrameAllocator) (mem.VA, bool) {
	if newsz < oldsz {
		return oldsz, true
	}
	if newsz > lim.MaxSize {
		return oldsz, false
	}
	a := PGRoundUp(oldsz)
	for ; a < newsz; a += mem.PGSIZE {
		_, pa, ok := alloc.Alloc()
		if !ok {
			oommsg.Notify(mem.PGSIZE)
			UvmDealloc(root, a, oldsz, alloc)
			return oldsz, false
		}
		if !MapPages(root, a, pa, mem.PGSIZE, perm|mem.PteU, alloc) {
			alloc.Free(pa)
			UvmDealloc(root, a, oldsz, alloc)
			return oldsz, false
		}
	}
	return newsz, true
}

// UvmDealloc shrinks a user address space's allocated region from oldsz
// down to newsz, unmapping and freeing every page no longer covered.
func UvmDealloc(root *mem.PageTable, oldsz, newsz mem.VA, alloc mem.FrameAllocator) mem.VA {
	if newsz >= oldsz {
		return oldsz
	}
	lo := PGRoundUp(newsz)
	hi := PGRoundUp(oldsz)
	n := int((hi - lo) / mem.PGSIZE)
	if n > 0 {
		Unmap(root, lo, n, true, true, alloc)
	}
	return newsz
}

// UvmCopy duplicates a user address space: every mapped page in
// [0, sz) of src is copied into a freshly allocated frame installed at
// the same virtual address in dst. On failure it unmaps and frees
// whatever pages it had already installed into dst before returning
// false; page table pages the walker added to dst along the way stay
// in place.
//
// Grounded on the teacher's fork-time address-space duplication walk in
// vm/as.go (there implemented with refcounted COW pages; this module
// has no COW, so every page is eagerly copied) and the real
// xv6-riscv uvmcopy's `err: uvmunmap(new, 0, i/PGSIZE, 1)` cleanup on
// the same failure paths.
func UvmCopy(dst, src *mem.PageTable, sz mem.VA, alloc mem.FrameAllocator) bool {
	i := 0
	for va := mem.VA(0); va < sz; va, i = va+mem.PGSIZE, i+1 {
		pa, pte, ok := WalkAddr(src, va, alloc)
		if !ok {
			continue
		}
		frame, newPA, ok := alloc.Alloc()
		if !ok {
			Unmap(dst, 0, i, true, true, alloc)
			return false
		}
		copy(frame[:], alloc.Deref(pa)[:])
		if !MapPages(dst, va, newPA, mem.PGSIZE, pte.Flags(), alloc) {
			alloc.Free(newPA)
			Unmap(dst, 0, i, true, true, alloc)
			return false
		}
	}
	return true
}

// UvmFree tears down an entire user address space: every mapped leaf
// page in [0, sz) is unmapped and freed, every page table page below
// root is freed by FreeWalk, and finally root's own frame (returned
// alongside root by UvmCreate) is freed too, so the frame allocator's
// free count returns to exactly what it was before UvmCreate.
func UvmFree(root *mem.PageTable, rootPA mem.PA, sz mem.VA, alloc mem.FrameAllocator) {
	if sz > 0 {
		n := int(PGRoundUp(sz) / mem.PGSIZE)
		Unmap(root, 0, n, true, true, alloc)
	}
	FreeWalk(root, Levels-1, alloc)
	alloc.Free(rootPA)
}

// UvmClear removes the PteU bit from the PTE mapping va, used when
// marking a page inaccessible to user mode (e.g. a guard page below a
// grown stack) without unmapping it. It panics if va has no PTE
// installed at all, mirroring the teacher's Uvmclear invariant that
// this is only ever called on an already-mapped page.
func UvmClear(root *mem.PageTable, va mem.VA, alloc mem.FrameAllocator) {
	pte, ok := Walk(root, va, noAlloc{alloc})
	if !ok || pte.Kind() == mem.Invalid {
		panic("vm: uvmclear of unmapped address\n" + caller.Dump(2))
	}
	*pte &^= mem.PteU
}
