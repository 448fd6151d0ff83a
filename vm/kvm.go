package vm

import "github.com/DiorAdama/xv6-riscv/mem"

// Physical layout constants, grounded on the teacher's region-by-region
// Dmap_init construction in mem/dmap.go, re-targeted from x86-64's
// direct-map window scheme to Sv39's kernel identity map.
const (
	// UART0 is the NS16550a UART MMIO base.
	UART0 mem.PA = 0x10000000
	// VIRTIO0 is the first virtio-mmio disk's base.
	VIRTIO0 mem.PA = 0x10001000
	// VIRTIO1 is the second virtio-mmio disk's base.
	VIRTIO1 mem.PA = VIRTIO0 + 0x1000
	// CLINT is the core-local interruptor's base.
	CLINT mem.PA = 0x2000000
	// PLIC is the platform-level interrupt controller's base.
	PLIC mem.PA = 0xc000000
	// KERNBASE is where the kernel's text segment is linked and loaded.
	KERNBASE mem.PA = 0x80000000
	// PHYSTOP is one past the last physical address of ordinary RAM.
	PHYSTOP mem.PA = KERNBASE + 128*1024*1024
	// TRAMPOLINE is the highest user/kernel-shared virtual page: the
	// trap entry/exit code, mapped at the same VA in every page table
	// so the trap handler survives the satp switch.
	TRAMPOLINE mem.VA = MAXVA - mem.PGSIZE
)

// Region names one kernel mapping built by KvmMake; KvmMake returns the
// list so a caller can see which ranges it mapped and with which
// permissions.
type Region struct {
	Name string
	Lo   mem.VA
	Hi   mem.VA
	Perm mem.PTE
}

// KvmMake builds a fresh kernel page table mapping UART, the two
// virtio disks, PLIC, CLINT, the kernel text (read+exec), the kernel
// data and free RAM (read+write), and the trampoline page. trampPA is
// the physical address of the single shared trampoline frame.
//
// Grounded on the teacher's region-classified identity map construction
// (mem/dmap.go Dmap_init, and the switch-based region builder in the
// pack's ARM64 MMU reference for per-region perm selection).
func KvmMake(alloc mem.FrameAllocator, trampPA mem.PA, etext mem.PA) (*mem.PageTable, []Region, bool) {
	root := &mem.PageTable{}
	regions := []Region{
		{"uart", mem.VA(UART0), mem.VA(UART0) + mem.PGSIZE, mem.PteR | mem.PteW},
		{"virtio0", mem.VA(VIRTIO0), mem.VA(VIRTIO0) + mem.PGSIZE, mem.PteR | mem.PteW},
		{"virtio1", mem.VA(VIRTIO1), mem.VA(VIRTIO1) + mem.PGSIZE, mem.PteR | mem.PteW},
		{"clint", mem.VA(CLINT), mem.VA(CLINT) + 0x10000, mem.PteR | mem.PteW},
		{"plic", mem.VA(PLIC), mem.VA(PLIC) + 0x400000, mem.PteR | mem.PteW},
		{"kerntext", mem.VA(KERNBASE), mem.VA(etext), mem.PteR | mem.PteX},
		{"kerndata", mem.VA(etext), mem.VA(PHYSTOP), mem.PteR | mem.PteW},
	}
	for _, r := range regions {
		size := int(r.Hi - r.Lo)
		if size <= 0 {
			continue
		}
		if !MapPages(root, r.Lo, mem.PA(r.Lo), size, r.Perm, alloc) {
			return nil, nil, false
		}
	}
	if !MapPages(root, TRAMPOLINE, trampPA, mem.PGSIZE, mem.PteR|mem.PteX, alloc) {
		return nil, nil, false
	}
	regions = append(regions, Region{"trampoline", TRAMPOLINE, TRAMPOLINE + mem.PGSIZE, mem.PteR | mem.PteX})
	return root, regions, true
}
