package fs

import "testing"

type countingInode struct {
	Inode
	reads int
}

func (c *countingInode) ReadAt(buf []byte, off int64) (int, error) {
	c.reads++
	return c.Inode.ReadAt(buf, off)
}

func TestReadaheadServesFromWindow(t *testing.T) {
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}
	inode := &countingInode{Inode: NewFile(data)}
	ra := NewReadahead(inode, 64)

	buf, n := ra.Fill(0, 16)
	if n != 16 {
		t.Fatalf("Fill returned %d bytes, want 16", n)
	}
	if buf[0] != 0 || buf[15] != 15 {
		t.Fatalf("unexpected bytes from first fill: %v", buf)
	}
	if inode.reads != 1 {
		t.Fatalf("reads = %d, want 1", inode.reads)
	}

	// Second request within the same cached window must not re-read.
	buf2, n2 := ra.Fill(16, 16)
	if n2 != 16 || buf2[0] != 16 {
		t.Fatalf("unexpected second fill: buf=%v n=%d", buf2, n2)
	}
	if inode.reads != 1 {
		t.Fatalf("reads after cached hit = %d, want 1", inode.reads)
	}
}

func TestReadaheadRefillsOutsideWindow(t *testing.T) {
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}
	inode := &countingInode{Inode: NewFile(data)}
	ra := NewReadahead(inode, 32)

	ra.Fill(0, 16)
	buf, n := ra.Fill(200, 16)
	if n != 16 || buf[0] != 200 {
		t.Fatalf("unexpected out-of-window fill: buf=%v n=%d", buf, n)
	}
	if inode.reads != 2 {
		t.Fatalf("reads = %d, want 2 (window missed, refilled)", inode.reads)
	}
}
