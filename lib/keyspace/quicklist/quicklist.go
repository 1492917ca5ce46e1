package quicklist

// plainThreshold is the element size above which newNodeFor creates a plain
// node instead of a packed one. It applies only where a push or insert
// starts a new node; a value of any size that goes into an existing packed
// node (one with room under a count-based fill policy, or either half of a
// split) is packed there.
const plainThreshold = 1 << 20 // 1 MiB

// QuickList is a doubly-linked chain of packed nodes backing a list value.
type QuickList struct {
	head, tail *node
	len        int // total element count across all nodes

	fill     FillPolicy
	compress int // depth: this many nodes at each end stay raw
}

// New creates an empty list governed by the given fill and compress
// policies.
func New(fill FillPolicy, compressDepth int) *QuickList {
	return &QuickList{fill: fill, compress: compressDepth}
}

// Count returns the total number of elements in the list.
func (q *QuickList) Count() int { return q.len }

// Empty reports whether the list has no elements.
func (q *QuickList) Empty() bool { return q.len == 0 }

func (q *QuickList) newNodeFor(val []byte) *node {
	if len(val) > plainThreshold {
		return newPlainNode(val)
	}
	return newPackedNode()
}

func (q *QuickList) linkHead(n *node) {
	n.prev = nil
	n.next = q.head
	if q.head != nil {
		q.head.prev = n
	}
	q.head = n
	if q.tail == nil {
		q.tail = n
	}
}

func (q *QuickList) linkTail(n *node) {
	n.next = nil
	n.prev = q.tail
	if q.tail != nil {
		q.tail.next = n
	}
	q.tail = n
	if q.head == nil {
		q.head = n
	}
}

func (q *QuickList) linkAfter(at, n *node) {
	n.prev = at
	n.next = at.next
	if at.next != nil {
		at.next.prev = n
	} else {
		q.tail = n
	}
	at.next = n
}

func (q *QuickList) linkBefore(at, n *node) {
	n.next = at
	n.prev = at.prev
	if at.prev != nil {
		at.prev.next = n
	} else {
		q.head = n
	}
	at.prev = n
}

func (q *QuickList) unlink(n *node) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		q.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		q.tail = n.prev
	}
	n.prev, n.next = nil, nil
}

// PushHead prepends val as a new element at the front of the list.
func (q *QuickList) PushHead(val []byte) {
	q.len++
	if n := q.head; n != nil && !n.plain && !q.fillWouldExceedOnInsertVal(n, len(val)) {
		n.insertAt(0, val)
		q.enforceCompress()
		return
	}
	n := q.newNodeFor(val)
	if !n.plain {
		n.insertAt(0, val)
	}
	q.linkHead(n)
	q.enforceCompress()
}

// PushTail appends val as a new element at the back of the list.
func (q *QuickList) PushTail(val []byte) {
	q.len++
	if n := q.tail; n != nil && !n.plain && !q.fillWouldExceedOnInsertVal(n, len(val)) {
		n.insertAt(n.count, val)
		q.enforceCompress()
		return
	}
	n := q.newNodeFor(val)
	if !n.plain {
		n.insertAt(0, val)
	}
	q.linkTail(n)
	q.enforceCompress()
}

func (q *QuickList) fillWouldExceedOnInsertVal(n *node, valLen int) bool {
	if limit, ok := q.fill.countLimit(); ok {
		return n.count+1 > limit
	}
	if limit, ok := q.fill.byteLimit(); ok {
		n.decompress()
		return n.count > 0 && n.size+valLen > limit
	}
	return false
}

// PopHead removes and returns the first element, or ok=false if empty.
func (q *QuickList) PopHead() (val []byte, ok bool) {
	if q.head == nil {
		return nil, false
	}
	n := q.head
	val, _ = n.at(0)
	val = append([]byte{}, val...)
	n.deleteAt(0)
	q.len--
	if n.count == 0 {
		q.unlink(n)
	}
	q.enforceCompress()
	return val, true
}

// PopTail removes and returns the last element, or ok=false if empty.
func (q *QuickList) PopTail() (val []byte, ok bool) {
	if q.tail == nil {
		return nil, false
	}
	n := q.tail
	val, _ = n.at(n.count - 1)
	val = append([]byte{}, val...)
	n.deleteAt(n.count - 1)
	q.len--
	if n.count == 0 {
		q.unlink(n)
	}
	q.enforceCompress()
	return val, true
}

// Entry addresses one element's position within the chain: the node that
// holds it and its offset within that node.
type Entry struct {
	n      *node
	offset int
}

// Index resolves a 0-based position (negative counted from the tail) to
// an Entry, or ok=false if out of range.
func (q *QuickList) Index(i int) (Entry, bool) {
	if i < 0 {
		i = q.len + i
	}
	if i < 0 || i >= q.len {
		return Entry{}, false
	}
	n := q.head
	base := 0
	for n != nil {
		if i < base+n.count {
			return Entry{n: n, offset: i - base}, true
		}
		base += n.count
		n = n.next
	}
	return Entry{}, false
}

// Get returns the value addressed by e.
func (e Entry) Get() ([]byte, bool) { return e.n.at(e.offset) }

// ValueAt returns the value at position i.
func (q *QuickList) ValueAt(i int) ([]byte, bool) {
	e, ok := q.Index(i)
	if !ok {
		return nil, false
	}
	return e.Get()
}

// ReplaceAt overwrites the value at position i, splitting/merging as
// needed. It reports whether i was in range.
func (q *QuickList) ReplaceAt(i int, val []byte) bool {
	e, ok := q.Index(i)
	if !ok {
		return false
	}
	q.deleteEntry(e)
	q.insertAt(i, val)
	return true
}

func (q *QuickList) insertAt(i int, val []byte) {
	if q.len == 0 || i >= q.len {
		q.PushTail(val)
		return
	}
	e, _ := q.Index(i)
	q.insertBeforeEntry(e, val)
}

// InsertBefore inserts val immediately before e.
func (q *QuickList) InsertBefore(e Entry, val []byte) {
	q.insertBeforeEntry(e, val)
}

// InsertAfter inserts val immediately after e.
func (q *QuickList) InsertAfter(e Entry, val []byte) {
	if e.offset == e.n.count-1 {
		q.insertAfterNode(e.n, val)
		return
	}
	q.insertBeforeEntry(Entry{n: e.n, offset: e.offset + 1}, val)
}

func (q *QuickList) insertBeforeEntry(e Entry, val []byte) {
	q.len++
	n := e.n
	if n.plain || q.fillWouldExceedOnInsertVal(n, len(val)) {
		q.splitAndInsert(e, val, true)
		return
	}
	n.insertAt(e.offset, val)
	q.enforceCompress()
}

func (q *QuickList) insertAfterNode(n *node, val []byte) {
	q.len++
	if !n.plain && !q.fillWouldExceedOnInsertVal(n, len(val)) {
		n.insertAt(n.count, val)
		q.enforceCompress()
		return
	}
	nn := q.newNodeFor(val)
	if !nn.plain {
		nn.insertAt(0, val)
	}
	q.linkAfter(n, nn)
	q.enforceCompress()
}

// splitAndInsert bisects e.n at e.offset, inserting val into the left half
// when before=true, else the right half. Used when a node's fill policy
// or its plain status forbids an in-place insert.
func (q *QuickList) splitAndInsert(e Entry, val []byte, before bool) {
	n := e.n
	if n.plain {
		nn := q.newNodeFor(val)
		if !nn.plain {
			nn.insertAt(0, val)
		}
		if before {
			q.linkBefore(n, nn)
		} else {
			q.linkAfter(n, nn)
		}
		q.enforceCompress()
		return
	}

	n.decompress()
	leftData, rightData := packedSplit(n.rawData, e.offset)

	left := &node{rawData: leftData, count: e.offset, size: len(leftData)}
	right := &node{rawData: rightData, count: n.count - e.offset, size: len(rightData)}

	if before {
		left = left.insertedCopy(left.count, val)
	} else {
		right = right.insertedCopy(0, val)
	}

	q.linkAfter(n, right)
	q.linkAfter(n, left)
	q.unlink(n)
	q.enforceCompress()
}

func (n *node) insertedCopy(at int, val []byte) *node {
	n.rawData = packedInsertAt(n.rawData, at, val)
	n.count++
	n.size = len(n.rawData)
	return n
}

// Delete removes the element addressed by e.
func (q *QuickList) Delete(e Entry) {
	q.deleteEntry(e)
}

func (q *QuickList) deleteEntry(e Entry) {
	n := e.n
	n.deleteAt(e.offset)
	q.len--
	if n.count == 0 {
		q.unlink(n)
	}
	q.mergeAround(n)
	q.enforceCompress()
}

// mergeAround merges n with a neighbor if both are under half their size
// policy, keeping long-lived lists from fragmenting into many tiny nodes.
func (q *QuickList) mergeAround(n *node) {
	if n == nil || n.plain {
		return
	}
	if next := n.next; next != nil && !next.plain && q.bothUnderHalf(n, next) {
		q.mergeNodes(n, next)
	}
}

func (q *QuickList) bothUnderHalf(a, b *node) bool {
	if limit, ok := q.fill.countLimit(); ok {
		return a.count*2 < limit && b.count*2 < limit
	}
	if limit, ok := q.fill.byteLimit(); ok {
		a.decompress()
		b.decompress()
		return a.size*2 < limit && b.size*2 < limit
	}
	return false
}

func (q *QuickList) mergeNodes(a, b *node) {
	a.decompress()
	b.decompress()
	a.rawData = append(a.rawData, b.rawData...)
	a.count += b.count
	a.size = len(a.rawData)
	q.unlink(b)
}

// DelRange removes count elements starting at start (negative start counts
// from the tail), returning the number actually removed.
func (q *QuickList) DelRange(start, count int) int {
	if count <= 0 {
		return 0
	}
	if start < 0 {
		start = q.len + start
	}
	if start < 0 {
		start = 0
	}
	removed := 0
	for removed < count {
		e, ok := q.Index(start)
		if !ok {
			break
		}
		q.deleteEntry(e)
		removed++
	}
	return removed
}

// enforceCompress keeps the `compress` raw nodes at each end raw and
// compresses everything else, called after any structural mutation.
func (q *QuickList) enforceCompress() {
	if q.compress <= 0 {
		return
	}
	depth := q.compress
	i := 0
	for n := q.head; n != nil; n = n.next {
		if i < depth {
			n.decompress()
		}
		i++
	}
	i = 0
	for n := q.tail; n != nil; n = n.prev {
		if i < depth {
			n.decompress()
		}
		i++
	}

	total := q.nodeCount()
	i = 0
	for n := q.head; n != nil; n = n.next {
		interior := i >= depth && (total-i) > depth
		if interior && !n.plain && (n.recompressPending || n.compressed == nil) {
			n.compress()
		}
		i++
	}
}

func (q *QuickList) nodeCount() int {
	c := 0
	for n := q.head; n != nil; n = n.next {
		c++
	}
	return c
}

// NodeCount returns the number of nodes in the chain, used as the cheap
// "effort" estimate a lazy-free policy weighs a deletion against.
func (q *QuickList) NodeCount() int { return q.nodeCount() }
