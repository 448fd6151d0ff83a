package vm

import (
	"testing"

	"github.com/DiorAdama/xv6-riscv/mem"
)

func TestPGRoundDownUp(t *testing.T) {
	va := mem.VA(0x1800)
	if got := PGRoundDown(va); got != 0x1000 {
		t.Fatalf("PGRoundDown(%#x) = %#x, want %#x", va, got, mem.VA(0x1000))
	}
	if got := PGRoundUp(va); got != 0x2000 {
		t.Fatalf("PGRoundUp(%#x) = %#x, want %#x", va, got, mem.VA(0x2000))
	}
}

func TestMAXVAIsSv39Limit(t *testing.T) {
	if MAXVA != 1<<39 {
		t.Fatalf("MAXVA = %#x, want %#x", MAXVA, uintptr(1<<39))
	}
}
