// Package fs is the filesystem collaborator the file-backed fault path
// calls into: an Inode abstraction narrow enough to back a VMA (ReadAt,
// Lock/Unlock) plus a reference in-memory implementation and a small
// per-inode readahead cache.
//
// Grounded on fs/super.go's field-accessor style for Inode, and
// fs/blk.go's Bdev_block_t/BlkList_t block-cache shape cross-grounded
// with circbuf/circbuf.go's head/tail modulo arithmetic for the
// readahead cache (the Userio_i socket coupling circbuf.go has is
// dropped: a file readahead cache copies plain []byte, not sockets).
package fs

import (
	"fmt"
	"sync"

	"github.com/DiorAdama/xv6-riscv/ustr"
)

// Inode is the narrow interface a file-backed VMA needs from the
// filesystem: sized random-access reads under an explicit lock, taken
// across the read the way the teacher's block cache is locked while a
// disk transfer is outstanding.
type Inode interface {
	// ReadAt fills buf from the file starting at off, like io.ReaderAt,
	// returning the number of bytes read.
	ReadAt(buf []byte, off int64) (int, error)
	// Size returns the file's current length in bytes.
	Size() int64
	Lock()
	Unlock()
}

// Txn brackets a logical transaction the same way the teacher's
// filesystem brackets a log transaction around a block write; the VM
// subsystem only ever reads through Inode, so Begin/End here are a
// stub a real filesystem collaborator would replace.
type Txn struct{}

// Begin starts a transaction. The reference implementation performs no
// logging; it exists so fault-handling code that wraps a read in
// Begin/End compiles the same way it would against a journaling
// filesystem.
func Begin() *Txn { return &Txn{} }

// End closes the transaction.
func (t *Txn) End() {}

// memFile is a reference Inode backed by an in-memory byte slice.
type memFile struct {
	mu   sync.Mutex
	data []byte
}

// NewFile wraps data as a standalone in-memory Inode, for callers that
// already have an inode handle in hand and don't need to go through a
// path lookup (e.g. a VMA built directly against a known file).
func NewFile(data []byte) Inode {
	return &memFile{data: data}
}

// ReadAt implements Inode.
func (m *memFile) ReadAt(buf []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(m.data)) {
		return 0, nil
	}
	n := copy(buf, m.data[off:])
	return n, nil
}

// Size implements Inode.
func (m *memFile) Size() int64 {
	return int64(len(m.data))
}

// Lock implements Inode.
func (m *memFile) Lock() { m.mu.Lock() }

// Unlock implements Inode.
func (m *memFile) Unlock() { m.mu.Unlock() }

// MemFS is a reference filesystem collaborator: a flat namespace of
// in-memory files, keyed by absolute path, used by tests that exercise
// the file-backed fault path without a real disk.
//
// Grounded on fs/super.go's field-accessor style; trimmed to the flat
// lookup(path)->inode surface spec.md names, with no directory tree to
// walk (the hierarchical path-component resolution ustr/ustr.go's
// dropped Extend/Isdot/DotDot helpers supported has no consumer here).
type MemFS struct {
	mu    sync.Mutex
	files map[string]*memFile
}

// NewMemFS builds a filesystem from a path-to-contents map.
func NewMemFS(files map[string][]byte) *MemFS {
	m := &MemFS{files: make(map[string]*memFile, len(files))}
	for path, data := range files {
		m.files[path] = &memFile{data: data}
	}
	return m
}

// Lookup resolves path to the Inode backing it.
func (m *MemFS) Lookup(path ustr.Ustr) (Inode, error) {
	if !path.IsAbsolute() {
		return nil, fmt.Errorf("fs: path %q is not absolute", path)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[path.String()]
	if !ok {
		return nil, fmt.Errorf("fs: no such file: %q", path)
	}
	return f, nil
}
