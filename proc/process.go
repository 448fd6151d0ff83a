// Package proc holds the per-process VMA registry and page table
// handle the fault resolver consults.
//
// Grounded on the teacher's vm/as.go Vm_t (embedded sync.Mutex,
// Vmregion/Pmap fields, Lock_pmap/Unlock_pmap/Lockassert_pmap) for the
// process-handle shape, with accnt/accnt.go's atomic-nanosecond-counter
// accounting folded in directly (it has exactly one consumer here,
// unlike biscuit where several subsystems report accounting) and a VMA
// lookup cache modeled on hashtable.go's lock-free single-bucket read
// path, scaled down to the single entry a process's last fault needs.
package proc

import (
	"sync"
	"sync/atomic"

	"github.com/DiorAdama/xv6-riscv/defs"
	"github.com/DiorAdama/xv6-riscv/fs"
	"github.com/DiorAdama/xv6-riscv/limits"
	"github.com/DiorAdama/xv6-riscv/mem"
)

// Kind distinguishes how a VMA's pages are filled on first fault.
type Kind int

const (
	Anon Kind = iota
	File
)

// VMA describes one mapped region of a process's address space: a
// virtual range, its permissions, and (for file-backed regions) the
// inode, file offset and file length backing it. Nbytes bounds how
// much of the VMA is actually backed by file content: pages beyond
// Off+Nbytes are zero-filled regardless of how long the inode itself
// is, the same way a binary's bss trails its data segment on disk.
//
// Grounded on the teacher's Vmregion_t entry fields in vm/as.go.
type VMA struct {
	Lo, Hi mem.VA
	Perm   mem.PTE
	Kind   Kind
	Inode  fs.Inode
	Off    int64
	Nbytes int64
}

// Contains reports whether va falls within the VMA's range.
func (v *VMA) Contains(va mem.VA) bool {
	return va >= v.Lo && va < v.Hi
}

// Accounting is a point-in-time snapshot of a process's VM activity,
// grounded on the teacher's accnt/accnt.go atomic-counter-with-snapshot
// pattern.
type Accounting struct {
	MinorFaults int64
	MajorFaults int64
	PagesMapped int64
}

// Process is a single address space: its root page table, the VMAs
// mapped into it, and VM-related accounting. The fault resolver takes a
// *Process rather than reaching for ambient thread-local state (the
// teacher's Gptr-based "current thread" has no stdlib Go equivalent and
// was dropped; callers pass the Process explicitly instead, matching
// how spec.md already models current_process() as an external handle).
type Process struct {
	mu    sync.Mutex
	Root  *mem.PageTable
	Limit *limits.AddressSpace
	vmas  []*VMA

	minorFaults int64
	majorFaults int64
	pagesMapped int64

	// cache is a single-entry lookup cache: the last VMA found by
	// LookupVMA, read via an atomic pointer so a repeated fault on the
	// same region can skip the linear scan entirely.
	cache atomic.Pointer[VMA]
}

// Lock acquires the process's address-space lock. The fault resolver
// holds it across VMA lookup, permission check and PTE installation,
// releasing it only around a blocking file read, mirroring the
// teacher's Lock_pmap/Unlock_pmap discipline in vm/as.go.
func (p *Process) Lock() { p.mu.Lock() }

// Unlock releases the address-space lock.
func (p *Process) Unlock() { p.mu.Unlock() }

// NewProcess builds an empty address space rooted at root.
func NewProcess(root *mem.PageTable) *Process {
	return &Process{Root: root, Limit: limits.DefaultAddressSpace()}
}

// AddAnon registers a new anonymous VMA covering [lo, hi) with the given
// permissions. It returns defs.ErrNoHeap if the process's VMA or
// anonymous-page budget is exhausted.
func (p *Process) AddAnon(lo, hi mem.VA, perm mem.PTE) defs.Err {
	return p.add(&VMA{Lo: lo, Hi: hi, Perm: perm, Kind: Anon})
}

// AddFile registers a new file-backed VMA covering [lo, hi), reading up
// to nbytes bytes of its contents from inode starting at off; bytes of
// the VMA beyond off+nbytes are zero-filled on fault rather than read.
func (p *Process) AddFile(lo, hi mem.VA, perm mem.PTE, inode fs.Inode, off, nbytes int64) defs.Err {
	return p.add(&VMA{Lo: lo, Hi: hi, Perm: perm, Kind: File, Inode: inode, Off: off, Nbytes: nbytes})
}

func (p *Process) add(v *VMA) defs.Err {
	if !p.Limit.VMAs.Taken(1) {
		return defs.ErrNoHeap
	}
	npages := uint((v.Hi - v.Lo + mem.PGSIZE - 1) / mem.PGSIZE)
	if v.Kind == Anon && !p.Limit.AnonPages.Taken(npages) {
		p.Limit.VMAs.Given(1)
		return defs.ErrNoHeap
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, existing := range p.vmas {
		if v.Lo < existing.Hi && existing.Lo < v.Hi {
			panic("proc: overlapping VMA")
		}
	}
	p.vmas = append(p.vmas, v)
	return defs.OK
}

// LookupVMA returns the VMA covering va, if any. It checks the
// single-entry cache first; on a miss it falls back to a linear scan
// and refreshes the cache. It does not take the process lock itself:
// the caller holds it (Lock) across the call, as the fault resolver
// does across lookup, permission check and install.
func (p *Process) LookupVMA(va mem.VA) (*VMA, bool) {
	if v := p.cache.Load(); v != nil && v.Contains(va) {
		return v, true
	}
	for _, v := range p.vmas {
		if v.Contains(va) {
			p.cache.Store(v)
			return v, true
		}
	}
	return nil, false
}

// RecordFault updates fault accounting. major distinguishes a fault
// that required a file read from one resolved by zero-filling or
// installing an already-present frame.
func (p *Process) RecordFault(major bool) {
	atomic.AddInt64(&p.minorFaults, 1)
	if major {
		atomic.AddInt64(&p.majorFaults, 1)
	}
}

// RecordMapped adds n to the count of pages currently mapped.
func (p *Process) RecordMapped(n int64) {
	atomic.AddInt64(&p.pagesMapped, n)
}

// Snapshot returns the process's current accounting totals.
func (p *Process) Snapshot() Accounting {
	return Accounting{
		MinorFaults: atomic.LoadInt64(&p.minorFaults),
		MajorFaults: atomic.LoadInt64(&p.majorFaults),
		PagesMapped: atomic.LoadInt64(&p.pagesMapped),
	}
}
