package corekv

import (
	"errors"
	"fmt"

	"github.com/kvquill/quill/lib/keyspace"
	"github.com/kvquill/quill/lib/keyspace/listvalue"
)

// Sentinel errors for the spec.md §7 error kinds corekv's list/hash
// operations can produce. Each is a distinct value wrapped via %w so
// callers can distinguish them with errors.Is instead of matching strings.
var (
	// ErrWrongType is returned when a key holds a value of a different kind
	// than the operation expects.
	ErrWrongType = errors.New("corekv: wrong type")
	// ErrNoSuchKey is returned by operations that require the key to
	// already exist, such as LSET.
	ErrNoSuchKey = errors.New("corekv: no such key")
	// ErrOutOfRange is returned when an index argument falls outside the
	// addressable range of the target value.
	ErrOutOfRange = errors.New("corekv: index out of range")
)

// errWrongType mirrors the WRONGTYPE error Redis-style list/hash commands
// return when a key holds a value of a different kind.
func errWrongType(key string) error {
	return fmt.Errorf("%w: key %q holds a value of the wrong type", ErrWrongType, key)
}

// errNoSuchKey mirrors the "no such key" error for operations, like LSET,
// that require the key to already exist.
func errNoSuchKey(key string) error {
	return fmt.Errorf("%w: %q", ErrNoSuchKey, key)
}

// errOutOfRange mirrors the "index out of range" error for operations that
// address a list by position.
func errOutOfRange(key string, index int) error {
	return fmt.Errorf("%w: index %d for key %q", ErrOutOfRange, index, key)
}

func (e *Engine) push(key string, vals [][]byte, where listvalue.Where, writeIndex uint64) (int, error) {
	e.SetWriteIdx(writeIndex)
	l, ok := e.keyspace.GetOrCreateList(key, int(e.fill), e.compress)
	if !ok {
		return 0, errWrongType(key)
	}
	for _, v := range vals {
		l.Push(where, v)
	}
	e.keyspace.AfterListMutation(key, pushEventName(where))
	return l.Len(), nil
}

func pushEventName(where listvalue.Where) string {
	if where == listvalue.Head {
		return "lpush"
	}
	return "rpush"
}

func popEventName(where listvalue.Where) string {
	if where == listvalue.Head {
		return "lpop"
	}
	return "rpop"
}

func (e *Engine) LPush(key string, vals [][]byte, writeIndex uint64) (int, error) {
	return e.push(key, vals, listvalue.Head, writeIndex)
}

func (e *Engine) RPush(key string, vals [][]byte, writeIndex uint64) (int, error) {
	return e.push(key, vals, listvalue.Tail, writeIndex)
}

func (e *Engine) pop(key string, count int, where listvalue.Where, writeIndex uint64) ([][]byte, bool, error) {
	e.SetWriteIdx(writeIndex)
	v, ok := e.keyspace.Get(key)
	if !ok {
		return nil, false, nil
	}
	if v.Kind != keyspace.KindList {
		return nil, false, errWrongType(key)
	}
	if count <= 0 {
		count = 1
	}
	var out [][]byte
	for i := 0; i < count; i++ {
		val, ok := v.List.Pop(where)
		if !ok {
			break
		}
		out = append(out, val)
	}
	if len(out) > 0 {
		e.keyspace.AfterListMutation(key, popEventName(where))
	}
	e.keyspace.DeleteIfEmptyList(key)
	return out, len(out) > 0, nil
}

func (e *Engine) LPop(key string, count int, writeIndex uint64) ([][]byte, bool, error) {
	return e.pop(key, count, listvalue.Head, writeIndex)
}

func (e *Engine) RPop(key string, count int, writeIndex uint64) ([][]byte, bool, error) {
	return e.pop(key, count, listvalue.Tail, writeIndex)
}

func (e *Engine) LLen(key string) (int, error) {
	v, ok := e.keyspace.Get(key)
	if !ok {
		return 0, nil
	}
	if v.Kind != keyspace.KindList {
		return 0, errWrongType(key)
	}
	return v.List.Len(), nil
}

func (e *Engine) LIndex(key string, index int) ([]byte, bool, error) {
	v, ok := e.keyspace.Get(key)
	if !ok {
		return nil, false, nil
	}
	if v.Kind != keyspace.KindList {
		return nil, false, errWrongType(key)
	}
	val, ok := v.List.Index(index)
	return val, ok, nil
}

func (e *Engine) LSet(key string, index int, val []byte, writeIndex uint64) error {
	e.SetWriteIdx(writeIndex)
	v, ok := e.keyspace.Get(key)
	if !ok {
		return errNoSuchKey(key)
	}
	if v.Kind != keyspace.KindList {
		return errWrongType(key)
	}
	if !v.List.Set(index, val) {
		return errOutOfRange(key, index)
	}
	e.keyspace.AfterListMutation(key, "lset")
	return nil
}

func (e *Engine) LRange(key string, start, stop int) ([][]byte, error) {
	v, ok := e.keyspace.Get(key)
	if !ok {
		return nil, nil
	}
	if v.Kind != keyspace.KindList {
		return nil, errWrongType(key)
	}
	return v.List.Range(start, stop), nil
}

func (e *Engine) LTrim(key string, start, stop int, writeIndex uint64) error {
	e.SetWriteIdx(writeIndex)
	v, ok := e.keyspace.Get(key)
	if !ok {
		return nil
	}
	if v.Kind != keyspace.KindList {
		return errWrongType(key)
	}
	v.List.Trim(start, stop)
	e.keyspace.AfterListMutation(key, "ltrim")
	e.keyspace.DeleteIfEmptyList(key)
	return nil
}

func (e *Engine) LInsert(key string, pivot []byte, where listvalue.Pivot, val []byte, writeIndex uint64) (bool, error) {
	e.SetWriteIdx(writeIndex)
	v, ok := e.keyspace.Get(key)
	if !ok {
		return false, nil
	}
	if v.Kind != keyspace.KindList {
		return false, errWrongType(key)
	}
	inserted := v.List.InsertAt(pivot, where, val)
	if inserted {
		e.keyspace.AfterListMutation(key, "linsert")
	}
	return inserted, nil
}

func (e *Engine) LRem(key string, val []byte, count int, writeIndex uint64) (int, error) {
	e.SetWriteIdx(writeIndex)
	v, ok := e.keyspace.Get(key)
	if !ok {
		return 0, nil
	}
	if v.Kind != keyspace.KindList {
		return 0, errWrongType(key)
	}
	removed := v.List.Remove(val, count)
	if removed > 0 {
		e.keyspace.AfterListMutation(key, "lrem")
	}
	e.keyspace.DeleteIfEmptyList(key)
	return removed, nil
}
