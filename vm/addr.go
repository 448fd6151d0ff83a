// Package vm implements the Sv39 three-level page table walker, mapper,
// kernel/user address space builders, demand-paging fault resolver and
// the user/kernel copy routines built on top of them.
//
// Grounded on the teacher's vm/as.go (Vm_t, Pgfault, K2user/User2k,
// Mkuserbuf) and vm/userbuf.go (Userbuf_t, Useriovec_t), rewritten from
// x86-64's 4-level recursively-self-mapped paging to RISC-V Sv39's
// 3-level, non-recursive scheme.
package vm

import "github.com/DiorAdama/xv6-riscv/mem"

// Levels is the number of page table levels Sv39 walks: two branch
// levels above a leaf level.
const Levels = 3

// pxshift returns the bit position of the index field for the given
// level (0 = innermost, closest to the page offset).
func pxshift(level int) uint {
	return mem.PGSHIFT + 9*uint(level)
}

const pxmask = 0x1ff

// px extracts the level's 9-bit index out of a virtual address.
func px(level int, va mem.VA) uint {
	return uint(va>>pxshift(level)) & pxmask
}

// MAXVA is one past the highest valid Sv39 virtual address: bit 38 is
// the top index bit, so the valid range is [0, 1<<39). This module
// treats a virtual address as an unsigned value below MAXVA and never
// builds the sign-extended form of an address.
const MAXVA = 1 << (9 + 9 + 9 + 12)

// PGRoundDown rounds a virtual address down to its containing page.
func PGRoundDown(va mem.VA) mem.VA {
	return mem.VA(mem.PA(va).Rounddown())
}

// PGRoundUp rounds a virtual address up to the next page boundary,
// unless already aligned.
func PGRoundUp(va mem.VA) mem.VA {
	return mem.VA(mem.PA(va).Roundup())
}
