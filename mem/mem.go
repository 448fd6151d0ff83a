// Package mem defines the physical/virtual address vocabulary and page
// table entry encoding for Sv39, plus a reference frame allocator.
// Grounded on the teacher's mem/mem.go (Pa_t, PTE_* flag constants,
// Pmap_t, Page_i, Physmem_t free-list allocator), rewritten from a
// 4-level x86-64 refcounted/COW-aware allocator down to Sv39's simpler
// leaf-frames-never-aliased contract: no refcounting.
package mem

import (
	"sync"

	"github.com/DiorAdama/xv6-riscv/util"
)

// PGSHIFT is the base-2 exponent of the page size.
const PGSHIFT uint = 12

// PGSIZE is the size of a single page in bytes.
const PGSIZE = 1 << PGSHIFT

// PA is a physical address.
type PA uintptr

// VA is a Sv39 virtual address, an unsigned value below 1<<39.
type VA uintptr

// Rounddown rounds pa down to the start of its page, using the same
// generic alignment helper the teacher's util package provides for
// every other fixed-size-record rounding in this module.
func (pa PA) Rounddown() PA { return PA(util.Rounddown(uintptr(pa), uintptr(PGSIZE))) }

// Roundup rounds pa up to the start of the next page, unless already
// page aligned.
func (pa PA) Roundup() PA { return PA(util.Roundup(uintptr(pa), uintptr(PGSIZE))) }

// Sv39 PTE flag bits (RISC-V privileged spec table 4.3).
const (
	PteV PTE = 1 << 0 // valid
	PteR PTE = 1 << 1 // readable
	PteW PTE = 1 << 2 // writable
	PteX PTE = 1 << 3 // executable
	PteU PTE = 1 << 4 // user-accessible
	PteG PTE = 1 << 5 // global
	PteA PTE = 1 << 6 // accessed
	PteD PTE = 1 << 7 // dirty

	pteFlagBits = 10
	pteAddrMask = (uint64(1)<<(pteFlagBits+44) - 1) &^ (1<<pteFlagBits - 1)
)

// PTE is one Sv39 page table entry: a 44-bit physical page number
// shifted left by 10, with a 10-bit flag field below it (8 of those
// bits defined above; bits 8-9 are reserved for software use and unused
// here).
type PTE uint64

// Kind classifies a PTE for the walker: Invalid if V is clear, Leaf if
// any of R/W/X is set (a mapping, per the Sv39 rule that a pointer-to-
// next-level PTE has R=W=X=0), otherwise Branch (a pointer to the next
// page table level).
type Kind int

const (
	Invalid Kind = iota
	Branch
	Leaf
)

// Kind classifies the entry per the Sv39 encoding rule.
func (p PTE) Kind() Kind {
	if p&PteV == 0 {
		return Invalid
	}
	if p&(PteR|PteW|PteX) != 0 {
		return Leaf
	}
	return Branch
}

// PA returns the physical page address this entry points to, whether a
// next-level table (Branch) or a mapped frame (Leaf).
func (p PTE) PA() PA {
	return PA((uint64(p) & pteAddrMask) >> pteFlagBits << PGSHIFT)
}

// Flags returns the low 10 bits of the entry.
func (p PTE) Flags() PTE {
	return p & (1<<pteFlagBits - 1)
}

// MakePTE encodes a physical address and flag set into a PTE.
func MakePTE(pa PA, flags PTE) PTE {
	ppn := uint64(pa) >> PGSHIFT
	return PTE(ppn<<pteFlagBits) | (flags & (1<<pteFlagBits - 1))
}

// PageTable is one level of an Sv39 page table: 512 eight-byte entries
// filling a single page.
type PageTable [512]PTE

// FrameAllocator abstracts physical frame allocation so the walker,
// mapper and fault resolver are testable without real physical memory,
// mirroring the teacher's Page_i interface.
type FrameAllocator interface {
	// Alloc returns a zeroed, page-aligned frame and its physical
	// address, or ok=false if no frame is available.
	Alloc() (frame *[PGSIZE]byte, pa PA, ok bool)
	// Free returns a previously allocated frame to the pool.
	Free(pa PA)
	// Deref resolves a physical address previously returned by Alloc
	// back to its backing frame, mirroring the teacher's
	// Physmem_t.Dmap direct-map lookup. It panics if pa is not a frame
	// this allocator owns.
	Deref(pa PA) *[PGSIZE]byte
}

// Pool is a reference FrameAllocator: a simple mutex-protected free
// list over a fixed backing array, grounded on the teacher's
// Physmem_t free-list allocator with the per-CPU free lists and
// refcounting machinery dropped (Sv39 leaf frames in this design are
// never aliased, so nothing needs a refcount).
type Pool struct {
	mu    sync.Mutex
	pages []page
	free  []int
	base  PA
}

type page struct {
	bytes [PGSIZE]byte
	pa    PA
}

// NewPool builds a Pool of n frames, numbering their physical addresses
// starting at base (which must be page aligned).
func NewPool(base PA, n int) *Pool {
	p := &Pool{
		pages: make([]page, n),
		free:  make([]int, n),
		base:  base,
	}
	for i := 0; i < n; i++ {
		p.pages[i].pa = base + PA(i*PGSIZE)
		p.free[i] = i
	}
	return p
}

// Alloc implements FrameAllocator.
func (p *Pool) Alloc() (*[PGSIZE]byte, PA, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.free) == 0 {
		return nil, 0, false
	}
	idx := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	pg := &p.pages[idx]
	for i := range pg.bytes {
		pg.bytes[i] = 0
	}
	return &pg.bytes, pg.pa, true
}

// Free implements FrameAllocator.
func (p *Pool) Free(pa PA) {
	p.mu.Lock()
	defer p.mu.Unlock()
	idx := int((pa - p.base) / PGSIZE)
	if idx < 0 || idx >= len(p.pages) {
		panic("mem: free of address outside pool")
	}
	p.free = append(p.free, idx)
}

// Deref implements FrameAllocator.
func (p *Pool) Deref(pa PA) *[PGSIZE]byte {
	idx := int((pa - p.base) / PGSIZE)
	if idx < 0 || idx >= len(p.pages) {
		panic("mem: deref of address outside pool")
	}
	return &p.pages[idx].bytes
}

// Len reports the pool's total frame capacity, used by diagnostics.
func (p *Pool) Len() int {
	return len(p.pages)
}

// Avail reports the pool's currently free frame count.
func (p *Pool) Avail() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}
