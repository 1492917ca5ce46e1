// Package listvalue adapts a quicklist into the value-level list
// operations a keyspace exposes externally: push/pop at either end,
// length, positional insert relative to a pivot element, equality checks,
// and a directional iterator. Every element enters and leaves as an
// opaque byte-string; numeric-looking elements are never given special
// internal representation here, matching the quicklist's own packed codec.
package listvalue

import (
	"github.com/kvquill/quill/lib/keyspace/quicklist"
)

// Where selects which end of the list an operation targets.
type Where int

const (
	Head Where = iota
	Tail
)

// List is a list value: an ordered sequence of byte-strings backed by a
// quicklist.
type List struct {
	ql *quicklist.QuickList
}

// New creates an empty list governed by fill/compress policies.
func New(fill quicklist.FillPolicy, compressDepth int) *List {
	return &List{ql: quicklist.New(fill, compressDepth)}
}

// Len reports the number of elements in the list.
func (l *List) Len() int { return l.ql.Count() }

// NodeCount returns the number of backing quicklist nodes.
func (l *List) NodeCount() int { return l.ql.NodeCount() }

// Empty reports whether the list has no elements. Callers use this to
// decide whether the owning key should be evicted from the keyspace.
func (l *List) Empty() bool { return l.ql.Empty() }

// Push appends (Tail) or prepends (Head) val.
func (l *List) Push(where Where, val []byte) {
	if where == Head {
		l.ql.PushHead(val)
	} else {
		l.ql.PushTail(val)
	}
}

// Pop removes and returns the element at the given end.
func (l *List) Pop(where Where) ([]byte, bool) {
	if where == Head {
		return l.ql.PopHead()
	}
	return l.ql.PopTail()
}

// Index returns the element at position i (negative counts from the
// tail).
func (l *List) Index(i int) ([]byte, bool) {
	return l.ql.ValueAt(i)
}

// Set overwrites the element at position i.
func (l *List) Set(i int, val []byte) bool {
	return l.ql.ReplaceAt(i, val)
}

// Range materializes the elements from start to stop inclusive (both
// negative-indexable), the backing for LRANGE-style reads. Callers own
// the returned slices.
func (l *List) Range(start, stop int) [][]byte {
	n := l.Len()
	if n == 0 {
		return nil
	}
	start = normalizeIndex(start, n)
	stop = normalizeIndex(stop, n)
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop {
		return nil
	}

	out := make([][]byte, 0, stop-start+1)
	it, ok := l.ql.NewIterator(start, quicklist.Forward)
	if !ok {
		return nil
	}
	for i := start; i <= stop; i++ {
		v, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, append([]byte{}, v...))
	}
	return out
}

func normalizeIndex(i, n int) int {
	if i < 0 {
		i = n + i
	}
	return i
}

// Trim keeps only the elements between start and stop inclusive, removing
// everything else.
func (l *List) Trim(start, stop int) {
	n := l.Len()
	if n == 0 {
		return
	}
	start = normalizeIndex(start, n)
	stop = normalizeIndex(stop, n)
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop {
		l.ql.DelRange(0, n)
		return
	}
	if stop+1 < n {
		l.ql.DelRange(stop+1, n-stop-1)
	}
	if start > 0 {
		l.ql.DelRange(0, start)
	}
}

// Pivot selects Before/After semantics for InsertAt.
type Pivot int

const (
	Before Pivot = iota
	After
)

// InsertAt inserts val relative to the first element equal to pivot,
// reporting whether such a pivot was found.
func (l *List) InsertAt(pivot []byte, where Pivot, val []byte) bool {
	it, ok := l.ql.NewIterator(0, quicklist.Forward)
	if !ok {
		return false
	}
	idx := 0
	for {
		v, ok := it.Next()
		if !ok {
			return false
		}
		if equalBytes(v, pivot) {
			e, _ := l.ql.Index(idx)
			if where == Before {
				l.ql.InsertBefore(e, val)
			} else {
				l.ql.InsertAfter(e, val)
			}
			return true
		}
		idx++
	}
}

// Remove deletes up to count occurrences of val. count>0 scans head to
// tail, count<0 scans tail to head, count==0 removes every occurrence. It
// returns the number of elements actually removed.
func (l *List) Remove(val []byte, count int) int {
	dir := quicklist.Forward
	start := 0
	if count < 0 {
		dir = quicklist.Backward
		start = -1
		count = -count
	}
	unlimited := count == 0

	it, ok := l.ql.NewIterator(start, dir)
	if !ok {
		return 0
	}
	removed := 0
	for unlimited || removed < count {
		v, ok := it.Next()
		if !ok {
			break
		}
		if equalBytes(v, val) {
			it.DeleteViaIter()
			removed++
		}
	}
	return removed
}

// Iterator exposes a directional read-only walk over the list's elements.
type Iterator struct {
	it *quicklist.Iterator
}

// NewIterator starts an iterator at position i (negative counts from the
// tail) walking in the given direction.
func (l *List) NewIterator(i int, dir quicklist.Direction) (*Iterator, bool) {
	it, ok := l.ql.NewIterator(i, dir)
	if !ok {
		return nil, false
	}
	return &Iterator{it: it}, true
}

// Next returns the next element, or ok=false once the walk is exhausted.
func (it *Iterator) Next() ([]byte, bool) { return it.it.Next() }

func equalBytes(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
