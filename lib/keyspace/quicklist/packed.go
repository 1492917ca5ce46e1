package quicklist

import "encoding/binary"

// packed is a contiguous run of length-prefixed byte-string entries, the
// node-level equivalent of a tiny ziplist. Each entry is stored as a
// varint byte-length followed by the raw bytes.
//
// This codec is intentionally simple: the orchestration above it (splits,
// compression, iteration) is where the interesting quicklist behavior
// lives, not the byte layout of a single node's payload.
type packed []byte

func packedEntryCount(buf packed) int {
	n := 0
	for off := 0; off < len(buf); {
		l, adv := binary.Uvarint(buf[off:])
		off += adv + int(l)
		n++
	}
	return n
}

// packedAt returns the entry at position i (0-based) and the byte offset
// of its length prefix, or ok=false if i is out of range.
func packedAt(buf packed, i int) (val []byte, offset int, ok bool) {
	off := 0
	idx := 0
	for off < len(buf) {
		l, adv := binary.Uvarint(buf[off:])
		if idx == i {
			return buf[off+adv : off+adv+int(l)], off, true
		}
		off += adv + int(l)
		idx++
	}
	return nil, 0, false
}

func packedEntryWidth(val []byte) int {
	return binary.MaxVarintLen64 + len(val) // upper bound; trimmed on write
}

func appendEntry(dst packed, val []byte) packed {
	var lenBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenBuf[:], uint64(len(val)))
	dst = append(dst, lenBuf[:n]...)
	dst = append(dst, val...)
	return dst
}

// packedInsertAt inserts val so that it becomes entry i (shifting entry i
// and everything after it to the right). i may equal the current entry
// count to append.
func packedInsertAt(buf packed, i int, val []byte) packed {
	if i >= packedEntryCount(buf) {
		return appendEntry(buf, val)
	}
	_, offset, _ := packedAt(buf, i)
	var lenBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenBuf[:], uint64(len(val)))

	out := make(packed, 0, len(buf)+n+len(val))
	out = append(out, buf[:offset]...)
	out = append(out, lenBuf[:n]...)
	out = append(out, val...)
	out = append(out, buf[offset:]...)
	return out
}

// packedDeleteAt removes entry i from buf.
func packedDeleteAt(buf packed, i int) packed {
	_, offset, ok := packedAt(buf, i)
	if !ok {
		return buf
	}
	l, adv := binary.Uvarint(buf[offset:])
	end := offset + adv + int(l)
	out := make(packed, 0, len(buf)-(end-offset))
	out = append(out, buf[:offset]...)
	out = append(out, buf[end:]...)
	return out
}

// packedSplit divides buf into the entries [0,i) and [i,count), used when a
// node must be bisected because it grew past its fill limit.
func packedSplit(buf packed, i int) (left, right packed) {
	if i <= 0 {
		return nil, buf
	}
	_, offset, ok := packedAt(buf, i)
	if !ok {
		return buf, nil
	}
	left = append(packed{}, buf[:offset]...)
	right = append(packed{}, buf[offset:]...)
	return left, right
}

func packedForEach(buf packed, fn func(i int, val []byte)) {
	off := 0
	idx := 0
	for off < len(buf) {
		l, adv := binary.Uvarint(buf[off:])
		fn(idx, buf[off+adv:off+adv+int(l)])
		off += adv + int(l)
		idx++
	}
}
