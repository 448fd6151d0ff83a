package vm

import (
	"strings"
	"testing"

	"github.com/DiorAdama/xv6-riscv/mem"
)

func TestPrintShowsMappedLeaf(t *testing.T) {
	alloc := newAlloc(t, 8)
	root := newRoot(t, alloc)
	_, pa, _ := alloc.Alloc()
	if !MapPages(root, 0x1000, pa, mem.PGSIZE, mem.PteR|mem.PteW, alloc) {
		t.Fatal("MapPages failed")
	}

	out := Print(root, alloc)
	if !strings.Contains(out, "leaf") {
		t.Fatalf("Print() output missing a leaf entry: %q", out)
	}
	if !strings.Contains(out, "va=[0x1000-0x1fff]") {
		t.Fatalf("Print() output missing the leaf's VA range: %q", out)
	}
	if !strings.Contains(out, "page_faults=") {
		t.Fatalf("Print() output missing counters summary: %q", out)
	}
}

func TestFlagString(t *testing.T) {
	pte := mem.MakePTE(0x1000, mem.PteV|mem.PteR|mem.PteW)
	got := flagString(pte)
	if got[0] != 'r' || got[1] != 'w' || got[2] != '-' {
		t.Fatalf("flagString() = %q, want starting r, w, -", got)
	}
}
