package fs

import "github.com/DiorAdama/xv6-riscv/util"

// Readahead is a single-file read-ahead cache: one contiguous window of
// an Inode's bytes held in memory so repeated nearby page faults
// against the same file don't each take a fresh ReadAt. It is not
// concurrency safe: refill takes the Inode's lock only around its own
// ReadAt, so callers must serialize calls to Fill themselves and must
// not hold the Inode's lock when calling it (see DESIGN.md's note on
// circbuf.go: a readahead cache over plain bytes needs none of
// circbuf's page-backed allocation, only its head/tail window
// bookkeeping).
type Readahead struct {
	inode Inode
	buf   []byte
	// base is the file offset the first byte of buf corresponds to.
	base int64
	// head/tail delimit the valid region of buf as [tail, head), mirroring
	// circbuf.go's Used/Left/Full accounting.
	head, tail int
}

// NewReadahead builds a cache over inode with a window of winSize
// bytes.
func NewReadahead(inode Inode, winSize int) *Readahead {
	return &Readahead{inode: inode, buf: make([]byte, winSize)}
}

// used reports how many valid bytes the window currently holds.
func (r *Readahead) used() int {
	return r.head - r.tail
}

// covers reports whether [off, off+n) falls entirely within the
// window's current [base+tail, base+head) range.
func (r *Readahead) covers(off int64, n int) bool {
	if r.used() == 0 {
		return false
	}
	lo := r.base + int64(r.tail)
	hi := r.base + int64(r.head)
	return off >= lo && off+int64(n) <= hi
}

// Fill satisfies a read of n bytes at off, refilling the window from
// the backing Inode if the requested range isn't already cached. It
// returns the bytes read and the number actually available (short of n
// at end of file).
func (r *Readahead) Fill(off int64, n int) ([]byte, int) {
	n = util.Min(n, len(r.buf))
	if !r.covers(off, n) {
		r.refill(off)
	}
	start := int(off - r.base)
	avail := r.head - start
	if avail < 0 {
		avail = 0
	}
	avail = util.Min(avail, n)
	return r.buf[start : start+avail], avail
}

func (r *Readahead) refill(off int64) {
	r.inode.Lock()
	defer r.inode.Unlock()
	got, _ := r.inode.ReadAt(r.buf, off)
	r.base = off
	r.tail = 0
	r.head = got
}
