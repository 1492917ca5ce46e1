package corekv

import (
	"github.com/kvquill/quill/lib/keyspace"
	"github.com/kvquill/quill/lib/keyspace/hashvalue"
)

func (e *Engine) HSet(key string, fields map[string][]byte, writeIndex uint64) (int, error) {
	e.SetWriteIdx(writeIndex)
	h, ok := e.keyspace.GetOrCreateHash(key, e.hlimits)
	if !ok {
		return 0, errWrongType(key)
	}
	inserted := 0
	for field, value := range fields {
		if h.Set(field, value) == hashvalue.Inserted {
			inserted++
		}
	}
	e.keyspace.AfterHashMutation(key, "hset")
	return inserted, nil
}

func (e *Engine) HGet(key, field string) ([]byte, bool, error) {
	v, ok := e.keyspace.Get(key)
	if !ok {
		return nil, false, nil
	}
	if v.Kind != keyspace.KindHash {
		return nil, false, errWrongType(key)
	}
	val, ok := v.Hash.Get(field)
	return val, ok, nil
}

func (e *Engine) HDel(key string, fields []string, writeIndex uint64) (int, error) {
	e.SetWriteIdx(writeIndex)
	v, ok := e.keyspace.Get(key)
	if !ok {
		return 0, nil
	}
	if v.Kind != keyspace.KindHash {
		return 0, errWrongType(key)
	}
	removed := 0
	for _, f := range fields {
		if v.Hash.Delete(f) {
			removed++
		}
	}
	if removed > 0 {
		e.keyspace.AfterHashMutation(key, "hdel")
	}
	if v.Hash.Len() == 0 {
		e.keyspace.Delete(key)
	}
	return removed, nil
}

func (e *Engine) HLen(key string) (int, error) {
	v, ok := e.keyspace.Get(key)
	if !ok {
		return 0, nil
	}
	if v.Kind != keyspace.KindHash {
		return 0, errWrongType(key)
	}
	return v.Hash.Len(), nil
}

func (e *Engine) HExists(key, field string) (bool, error) {
	v, ok := e.keyspace.Get(key)
	if !ok {
		return false, nil
	}
	if v.Kind != keyspace.KindHash {
		return false, errWrongType(key)
	}
	return v.Hash.Exists(field), nil
}

func (e *Engine) HGetAll(key string) (map[string][]byte, error) {
	v, ok := e.keyspace.Get(key)
	if !ok {
		return nil, nil
	}
	if v.Kind != keyspace.KindHash {
		return nil, errWrongType(key)
	}
	out := make(map[string][]byte, v.Hash.Len())
	v.Hash.ForEach(func(field string, value []byte) {
		out[field] = append([]byte{}, value...)
	})
	return out, nil
}

func (e *Engine) HIncrBy(key, field string, delta int64, writeIndex uint64) (int64, error) {
	e.SetWriteIdx(writeIndex)
	h, ok := e.keyspace.GetOrCreateHash(key, e.hlimits)
	if !ok {
		return 0, errWrongType(key)
	}
	result, err := h.IncrBy(field, delta)
	if err != nil {
		return 0, err
	}
	e.keyspace.AfterHashMutation(key, "hincrby")
	return result, nil
}

func (e *Engine) HIncrByFloat(key, field string, delta float64, writeIndex uint64) (float64, error) {
	e.SetWriteIdx(writeIndex)
	h, ok := e.keyspace.GetOrCreateHash(key, e.hlimits)
	if !ok {
		return 0, errWrongType(key)
	}
	result, err := h.IncrByFloat(field, delta)
	if err != nil {
		return 0, err
	}
	e.keyspace.AfterHashMutation(key, "hincrbyfloat")
	return result, nil
}
