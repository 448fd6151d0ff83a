package vm

import (
	"testing"

	"github.com/DiorAdama/xv6-riscv/limits"
	"github.com/DiorAdama/xv6-riscv/mem"
)

func TestUvmCreate(t *testing.T) {
	alloc := newAlloc(t, 4)
	root, _, ok := UvmCreate(alloc)
	if !ok {
		t.Fatal("UvmCreate failed")
	}
	for i, pte := range root {
		if pte.Kind() != mem.Invalid {
			t.Fatalf("slot %d of fresh root not invalid: %v", i, pte)
		}
	}
}

func TestUvmInitImage(t *testing.T) {
	alloc := newAlloc(t, 8)
	root, _, ok := UvmCreate(alloc)
	if !ok {
		t.Fatal("UvmCreate failed")
	}

	image := []byte("entry code")
	if !UvmInitImage(root, image, alloc) {
		t.Fatal("UvmInitImage failed")
	}

	pa, pte, ok := WalkAddr(root, 0, alloc)
	if !ok {
		t.Fatal("init image page not mapped at va 0")
	}
	if pte.Flags()&mem.PteU == 0 {
		t.Fatal("init image page should be user accessible")
	}
	got := alloc.Deref(pa)
	if string(got[:len(image)]) != string(image) {
		t.Fatal("init image bytes not copied correctly")
	}
}

func TestUvmAllocAndDealloc(t *testing.T) {
	alloc := newAlloc(t, 32)
	root, _, _ := UvmCreate(alloc)
	lim := limits.DefaultAddressSpace()

	newsz, ok := UvmAlloc(root, 0, mem.VA(3*mem.PGSIZE), mem.PteR|mem.PteW, lim, alloc)
	if !ok {
		t.Fatal("UvmAlloc failed")
	}
	if newsz != mem.VA(3*mem.PGSIZE) {
		t.Fatalf("UvmAlloc returned size %d, want %d", newsz, 3*mem.PGSIZE)
	}
	for i := 0; i < 3; i++ {
		va := mem.VA(i * mem.PGSIZE)
		if _, _, ok := WalkAddr(root, va, alloc); !ok {
			t.Fatalf("page %d not mapped after UvmAlloc", i)
		}
	}

	before := alloc.Avail()
	shrunk := UvmDealloc(root, newsz, mem.VA(mem.PGSIZE), alloc)
	if shrunk != mem.VA(mem.PGSIZE) {
		t.Fatalf("UvmDealloc returned %d, want %d", shrunk, mem.PGSIZE)
	}
	if alloc.Avail() <= before {
		t.Fatal("UvmDealloc did not free any frames")
	}
	if _, _, ok := WalkAddr(root, mem.VA(2*mem.PGSIZE), alloc); ok {
		t.Fatal("page beyond new size still mapped")
	}
	if _, _, ok := WalkAddr(root, 0, alloc); !ok {
		t.Fatal("page within new size was unmapped")
	}
}

func TestUvmAllocFailsClosedAboveSizeCap(t *testing.T) {
	alloc := newAlloc(t, 32)
	root, _, _ := UvmCreate(alloc)
	lim := limits.DefaultAddressSpace()
	lim.MaxSize = mem.VA(2 * mem.PGSIZE)

	before := alloc.Avail()
	newsz, ok := UvmAlloc(root, 0, mem.VA(3*mem.PGSIZE), mem.PteR|mem.PteW, lim, alloc)
	if ok {
		t.Fatal("UvmAlloc should fail closed above the address-space size cap")
	}
	if newsz != 0 {
		t.Fatalf("UvmAlloc returned newsz=%d on cap failure, want oldsz (0)", newsz)
	}
	if alloc.Avail() != before {
		t.Fatal("UvmAlloc should not allocate any frame when rejected by the size cap")
	}
}

func TestUvmCopyDuplicatesPages(t *testing.T) {
	alloc := newAlloc(t, 32)
	src, _, _ := UvmCreate(alloc)
	dst, _, _ := UvmCreate(alloc)
	lim := limits.DefaultAddressSpace()

	sz := mem.VA(2 * mem.PGSIZE)
	if _, ok := UvmAlloc(src, 0, sz, mem.PteR|mem.PteW, lim, alloc); !ok {
		t.Fatal("UvmAlloc on src failed")
	}
	srcPA, _, _ := WalkAddr(src, 0, alloc)
	alloc.Deref(srcPA)[0] = 0x42

	if !UvmCopy(dst, src, sz, alloc) {
		t.Fatal("UvmCopy failed")
	}
	dstPA, _, ok := WalkAddr(dst, 0, alloc)
	if !ok {
		t.Fatal("dst missing page after UvmCopy")
	}
	if dstPA == srcPA {
		t.Fatal("UvmCopy aliased the source frame instead of copying it")
	}
	if alloc.Deref(dstPA)[0] != 0x42 {
		t.Fatal("UvmCopy did not copy the page contents")
	}

	alloc.Deref(srcPA)[0] = 0x99
	if alloc.Deref(dstPA)[0] != 0x42 {
		t.Fatal("mutating src after UvmCopy is visible in dst")
	}
	alloc.Deref(dstPA)[0] = 0x11
	if alloc.Deref(srcPA)[0] != 0x99 {
		t.Fatal("mutating dst after UvmCopy is visible in src")
	}
}

func TestUvmCopyUnwindsOnFailure(t *testing.T) {
	// Exactly enough frames for both roots, src's three pages and its
	// two branch pages, dst's two branch pages (built up front by Walk,
	// since unwinding leaves branch pages in place), and one more for
	// UvmCopy's first page: the second page's Alloc must fail, forcing
	// UvmCopy to unwind the page it already installed into dst.
	alloc := newAlloc(t, 10)
	src, _, _ := UvmCreate(alloc)
	dst, _, _ := UvmCreate(alloc)
	lim := limits.DefaultAddressSpace()

	sz := mem.VA(3 * mem.PGSIZE)
	if _, ok := UvmAlloc(src, 0, sz, mem.PteR|mem.PteW, lim, alloc); !ok {
		t.Fatal("UvmAlloc on src failed")
	}
	if _, ok := Walk(dst, 0, alloc); !ok {
		t.Fatal("Walk failed to build dst's branch pages")
	}

	before := alloc.Avail()
	if UvmCopy(dst, src, sz, alloc) {
		t.Fatal("UvmCopy should have failed: pool is exhausted")
	}
	if alloc.Avail() != before {
		t.Fatalf("Avail() after failed UvmCopy = %d, want %d (fully unwound)", alloc.Avail(), before)
	}
	for i := 0; i < 3; i++ {
		va := mem.VA(i * mem.PGSIZE)
		if _, _, ok := WalkAddr(dst, va, alloc); ok {
			t.Fatalf("dst page %d still mapped after failed UvmCopy", i)
		}
	}
}

func TestUvmFreeReclaimsEverything(t *testing.T) {
	alloc := newAlloc(t, 32)
	beforeCreate := alloc.Avail()
	root, rootPA, _ := UvmCreate(alloc)
	lim := limits.DefaultAddressSpace()

	sz := mem.VA(3 * mem.PGSIZE)
	if _, ok := UvmAlloc(root, 0, sz, mem.PteR|mem.PteW, lim, alloc); !ok {
		t.Fatal("UvmAlloc failed")
	}

	UvmFree(root, rootPA, sz, alloc)
	if alloc.Avail() != beforeCreate {
		t.Fatalf("Avail() after UvmFree = %d, want %d (state before UvmCreate)", alloc.Avail(), beforeCreate)
	}
}

func TestUvmClearRemovesUserBit(t *testing.T) {
	alloc := newAlloc(t, 8)
	root, _, _ := UvmCreate(alloc)
	_, pa, _ := alloc.Alloc()
	if !MapPages(root, 0x1000, pa, mem.PGSIZE, mem.PteR|mem.PteW|mem.PteU, alloc) {
		t.Fatal("MapPages failed")
	}

	UvmClear(root, 0x1000, alloc)

	_, pte, ok := WalkAddr(root, 0x1000, alloc)
	if !ok {
		t.Fatal("page unexpectedly unmapped by UvmClear")
	}
	if pte.Flags()&mem.PteU != 0 {
		t.Fatal("UvmClear did not remove PteU")
	}
}

func TestUvmClearOfUnmappedPanics(t *testing.T) {
	alloc := newAlloc(t, 8)
	root, _, _ := UvmCreate(alloc)

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected UvmClear to panic on an unmapped address")
		}
	}()
	UvmClear(root, 0x9000, alloc)
}
