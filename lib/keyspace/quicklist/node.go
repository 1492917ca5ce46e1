package quicklist

import "github.com/pierrec/lz4/v4"

// fillSizeTable maps a negative fill policy value (-1..-5) to the byte-size
// limit it represents: 4KB, 8KB, 16KB, 32KB, 64KB.
var fillSizeTable = [5]int{4 << 10, 8 << 10, 16 << 10, 32 << 10, 64 << 10}

// FillPolicy bounds how large a single node may grow. A positive value
// caps the element count; a value in -1..-5 caps the packed byte size per
// fillSizeTable.
type FillPolicy int

func (f FillPolicy) byteLimit() (limit int, ok bool) {
	if f >= 0 {
		return 0, false
	}
	idx := -int(f) - 1
	if idx < 0 || idx >= len(fillSizeTable) {
		idx = len(fillSizeTable) - 1
	}
	return fillSizeTable[idx], true
}

func (f FillPolicy) countLimit() (limit int, ok bool) {
	if f <= 0 {
		return 0, false
	}
	return int(f), true
}

// node is one link in the quicklist chain. A node is either "plain" - a
// single oversized element stored without packing - or holds a packed run
// of elements, which may currently be raw or LZ4-compressed.
type node struct {
	prev, next *node

	plain   bool
	plainV  []byte
	rawData packed // nil when compressed

	compressed []byte // nil when raw
	rawLen     int    // decompressed length, valid even while compressed

	count int // element count (always 1 for plain nodes)
	size  int // decompressed packed byte size, or len(plainV) for plain

	recompressPending bool
}

func newPackedNode() *node {
	return &node{rawData: packed{}}
}

func newPlainNode(val []byte) *node {
	v := append([]byte{}, val...)
	return &node{plain: true, plainV: v, count: 1, size: len(v)}
}

func (n *node) isCompressed() bool { return !n.plain && n.rawData == nil && n.compressed != nil }

// decompress restores n.rawData from n.compressed if needed, and flags the
// node for a later recompress pass.
func (n *node) decompress() {
	if n.plain || n.rawData != nil {
		return
	}
	buf := make([]byte, n.rawLen)
	nDec, err := lz4.UncompressBlock(n.compressed, buf)
	if err != nil {
		panic("quicklist: corrupt compressed node: " + err.Error())
	}
	n.rawData = packed(buf[:nDec])
	n.recompressPending = true
}

// compress replaces n.rawData with an LZ4-compressed buffer if doing so
// shrinks the node, clearing the recompress-pending flag either way.
func (n *node) compress() {
	n.recompressPending = false
	if n.plain || n.rawData == nil {
		return
	}
	bound := lz4.CompressBlockBound(len(n.rawData))
	dst := make([]byte, bound)
	var c lz4.Compressor
	written, err := c.CompressBlock(n.rawData, dst)
	if err != nil || written == 0 || written >= len(n.rawData) {
		// incompressible or pierrec signaled "store as-is": keep raw.
		return
	}
	n.rawLen = len(n.rawData)
	n.compressed = dst[:written]
	n.rawData = nil
}

func (n *node) entries(fn func(i int, val []byte)) {
	if n.plain {
		fn(0, n.plainV)
		return
	}
	n.decompress()
	packedForEach(n.rawData, fn)
}

func (n *node) at(i int) ([]byte, bool) {
	if n.plain {
		if i == 0 {
			return n.plainV, true
		}
		return nil, false
	}
	n.decompress()
	v, _, ok := packedAt(n.rawData, i)
	return v, ok
}

func (n *node) insertAt(i int, val []byte) {
	n.decompress()
	n.rawData = packedInsertAt(n.rawData, i, val)
	n.count++
	n.size = len(n.rawData)
}

func (n *node) deleteAt(i int) {
	n.decompress()
	n.rawData = packedDeleteAt(n.rawData, i)
	n.count--
	n.size = len(n.rawData)
}

// exceeds reports whether the node currently violates fp.
func (n *node) exceeds(fp FillPolicy) bool {
	if n.plain {
		return false
	}
	if limit, ok := fp.countLimit(); ok {
		return n.count > limit
	}
	if limit, ok := fp.byteLimit(); ok {
		return n.size > limit
	}
	return false
}
