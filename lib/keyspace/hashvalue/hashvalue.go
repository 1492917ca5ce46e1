// Package hashvalue implements the dual-encoded hash value: a small hash
// stays packed as a flat, linearly-scanned sequence of field/value pairs;
// once it grows past a size threshold it promotes, one-way, to a backing
// hashtable.HashTable. Promotion never reverses.
package hashvalue

import (
	"errors"
	"math"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/kvquill/quill/lib/keyspace/hashtable"
)

// SetResult reports whether Set inserted a new field or overwrote one.
type SetResult int

const (
	Inserted SetResult = iota
	Updated
)

// Numeric update errors, returned by IncrBy/IncrByFloat.
var (
	ErrNotANumber = errors.New("hashvalue: value is not a number")
	ErrOverflow   = errors.New("hashvalue: increment would overflow")
)

// Limits governs when a hash promotes from packed to table form.
type Limits struct {
	MaxPackEntries int // pair count above which the hash promotes
	MaxPackValue   int // field/value byte length above which the hash promotes
}

// DefaultLimits mirrors the common out-of-the-box hash-max-listpack
// defaults: 128 entries, 64-byte fields/values.
var DefaultLimits = Limits{MaxPackEntries: 128, MaxPackValue: 64}

type pairs [][2][]byte

// Hash is a field -> value map with the packed/table dual encoding.
type Hash struct {
	limits Limits

	packed pairs // nil once promoted
	table  *hashtable.HashTable[string, []byte]
}

// New creates an empty hash governed by limits.
func New(limits Limits) *Hash {
	return &Hash{limits: limits, packed: pairs{}}
}

func fieldPolicy() hashtable.Policy[string, []byte] {
	return hashtable.Policy[string, []byte]{
		Hash:  func(k string) uint64 { return xxhash.Sum64String(k) },
		Equal: func(a, b string) bool { return a == b },
	}
}

func (h *Hash) promoted() bool { return h.table != nil }

// IsPromoted reports whether this hash has been promoted from packed to
// table encoding. Promotion is one-way.
func (h *Hash) IsPromoted() bool { return h.promoted() }

// Set installs value for field, returning Inserted or Updated.
func (h *Hash) Set(field string, value []byte) SetResult {
	if h.promoted() {
		r := h.table.Replace(field, append([]byte{}, value...))
		if r == hashtable.Inserted {
			return Inserted
		}
		return Updated
	}

	for i := range h.packed {
		if string(h.packed[i][0]) == field {
			h.packed[i][1] = append([]byte{}, value...)
			h.maybePromote()
			return Updated
		}
	}
	h.packed = append(h.packed, [2][]byte{[]byte(field), append([]byte{}, value...)})
	h.maybePromote()
	return Inserted
}

func (h *Hash) maybePromote() {
	if h.promoted() {
		return
	}
	promote := len(h.packed) > h.limits.MaxPackEntries
	if !promote {
		for _, p := range h.packed {
			if len(p[0]) > h.limits.MaxPackValue || len(p[1]) > h.limits.MaxPackValue {
				promote = true
				break
			}
		}
	}
	if !promote {
		return
	}

	t := hashtable.New(fieldPolicy())
	for _, p := range h.packed {
		field := string(p[0])
		if _, existing := t.Find(field); existing {
			panic("hashvalue: duplicate field during packed->table promotion")
		}
		if err := t.Add(field, p[1]); err != nil {
			panic("hashvalue: " + err.Error())
		}
	}
	h.table = t
	h.packed = nil
}

// Get returns field's value.
func (h *Hash) Get(field string) ([]byte, bool) {
	if h.promoted() {
		e, ok := h.table.Find(field)
		if !ok {
			return nil, false
		}
		return e.Value(), true
	}
	for _, p := range h.packed {
		if string(p[0]) == field {
			return p[1], true
		}
	}
	return nil, false
}

// Exists reports whether field is present.
func (h *Hash) Exists(field string) bool {
	_, ok := h.Get(field)
	return ok
}

// Delete removes field, reporting whether it was present.
func (h *Hash) Delete(field string) bool {
	if h.promoted() {
		return h.table.Delete(field)
	}
	for i, p := range h.packed {
		if string(p[0]) == field {
			h.packed = append(h.packed[:i], h.packed[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of fields.
func (h *Hash) Len() int {
	if h.promoted() {
		return h.table.Used()
	}
	return len(h.packed)
}

// ValueLength returns the byte length of field's value.
func (h *Hash) ValueLength(field string) (int, bool) {
	v, ok := h.Get(field)
	if !ok {
		return 0, false
	}
	return len(v), true
}

// ForEach visits every field/value pair. Order is unspecified once
// promoted.
func (h *Hash) ForEach(fn func(field string, value []byte)) {
	if h.promoted() {
		cursor := uint64(0)
		for {
			cursor = h.table.Scan(cursor, func(e *hashtable.Entry[string, []byte]) {
				fn(e.Key(), e.Value())
			})
			if cursor == 0 {
				break
			}
		}
		return
	}
	for _, p := range h.packed {
		fn(string(p[0]), p[1])
	}
}

// IncrBy parses field as a signed 64-bit integer, adds delta, and stores
// the result as its decimal string representation.
func (h *Hash) IncrBy(field string, delta int64) (int64, error) {
	cur := int64(0)
	if v, ok := h.Get(field); ok {
		n, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return 0, ErrNotANumber
		}
		cur = n
	}

	if (delta > 0 && cur > math.MaxInt64-delta) ||
		(delta < 0 && cur < math.MinInt64-delta) {
		return 0, ErrOverflow
	}

	next := cur + delta
	h.Set(field, []byte(strconv.FormatInt(next, 10)))
	return next, nil
}

// IncrByFloat parses field as a float, adds delta, and stores a canonical
// fixed-precision decimal representation. The caller is responsible for
// ensuring any replication stream observes this as an absolute SET, not
// an increment.
func (h *Hash) IncrByFloat(field string, delta float64) (float64, error) {
	cur := 0.0
	if v, ok := h.Get(field); ok {
		n, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			return 0, ErrNotANumber
		}
		cur = n
	}
	next := cur + delta
	h.Set(field, []byte(strconv.FormatFloat(next, 'f', 17, 64)))
	return next, nil
}
