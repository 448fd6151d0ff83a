package fs

import (
	"testing"

	"github.com/DiorAdama/xv6-riscv/ustr"
)

func TestFileReadAt(t *testing.T) {
	m := NewFile([]byte("hello world"))
	buf := make([]byte, 5)
	n, err := m.ReadAt(buf, 6)
	if err != nil {
		t.Fatalf("ReadAt failed: %v", err)
	}
	if n != 5 || string(buf) != "world" {
		t.Fatalf("ReadAt = (%q, %d), want (\"world\", 5)", buf, n)
	}
}

func TestFileReadAtPastEnd(t *testing.T) {
	m := NewFile([]byte("short"))
	buf := make([]byte, 10)
	n, err := m.ReadAt(buf, 3)
	if err != nil {
		t.Fatalf("ReadAt failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("ReadAt returned %d bytes, want 2 (only 2 remain)", n)
	}
}

func TestFileSize(t *testing.T) {
	m := NewFile([]byte("0123456789"))
	if m.Size() != 10 {
		t.Fatalf("Size() = %d, want 10", m.Size())
	}
}

func TestMemFSLookup(t *testing.T) {
	m := NewMemFS(map[string][]byte{
		"/etc/motd": []byte("welcome"),
	})

	inode, err := m.Lookup(ustr.MkUstr("/etc/motd"))
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	buf := make([]byte, 7)
	if _, err := inode.ReadAt(buf, 0); err != nil {
		t.Fatalf("ReadAt failed: %v", err)
	}
	if string(buf) != "welcome" {
		t.Fatalf("ReadAt = %q, want \"welcome\"", buf)
	}
}

func TestMemFSLookupMissing(t *testing.T) {
	m := NewMemFS(map[string][]byte{"/a": []byte("x")})
	if _, err := m.Lookup(ustr.MkUstr("/b")); err == nil {
		t.Fatal("Lookup of a missing path should fail")
	}
}

func TestMemFSLookupRelativePathRejected(t *testing.T) {
	m := NewMemFS(map[string][]byte{"/a": []byte("x")})
	if _, err := m.Lookup(ustr.MkUstr("a")); err == nil {
		t.Fatal("Lookup of a relative path should fail")
	}
}
