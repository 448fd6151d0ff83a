// Package limits tracks the per-address-space resource caps the VM
// subsystem enforces, using the teacher's atomic take/give budget
// discipline (Sysatomic_t.Taken/Given) narrowed from system-wide
// counters to a per-process cap.
package limits

import (
	"sync/atomic"
	"unsafe"

	"github.com/DiorAdama/xv6-riscv/mem"
)

// Budget is a numeric cap that can be atomically reserved and
// released. The zero value has zero capacity; use NewBudget to start
// with room.
type Budget int64

func (b *Budget) aptr() *int64 {
	return (*int64)(unsafe.Pointer(b))
}

// Taken tries to decrement the budget by n. It returns true on
// success; on failure the budget is left unchanged.
func (b *Budget) Taken(n uint) bool {
	delta := int64(n)
	left := atomic.AddInt64(b.aptr(), -delta)
	if left >= 0 {
		return true
	}
	atomic.AddInt64(b.aptr(), delta)
	return false
}

// Given returns n units of capacity to the budget.
func (b *Budget) Given(n uint) {
	atomic.AddInt64(b.aptr(), int64(n))
}

// Load returns the budget's current remaining capacity.
func (b *Budget) Load() int64 {
	return atomic.LoadInt64(b.aptr())
}

// NewBudget returns a Budget with the given starting capacity.
func NewBudget(capacity uint) *Budget {
	b := Budget(capacity)
	return &b
}

// AddressSpace bounds one process's virtual memory accounting: how
// many VMAs it may hold, how many anonymous pages it may back, and the
// largest size uvm_alloc may ever grow the address space to.
type AddressSpace struct {
	VMAs      *Budget
	AnonPages *Budget
	MaxSize   mem.VA
}

// DefaultAddressSpace returns the out-of-the-box per-process caps.
func DefaultAddressSpace() *AddressSpace {
	return &AddressSpace{
		VMAs:      NewBudget(1024),
		AnonPages: NewBudget(1 << 18), // 1GB worth of 4K pages
		MaxSize:   1 << 32,            // 4GB, large enough not to interfere with ordinary growth
	}
}
