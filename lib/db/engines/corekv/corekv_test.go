package corekv

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/kvquill/quill/lib/blocking"
	"github.com/kvquill/quill/lib/db"
	dbtesting "github.com/kvquill/quill/lib/db/testing"
	"github.com/kvquill/quill/lib/keyspace/listvalue"
)

// syncEngine serializes every call behind a mutex. Engine itself takes no
// locks - exactly one command runs against its keyspace at a time, the same
// invariant lib/store/lstore enforces for real callers - so the shared
// conformance suite's concurrent subtests need this wrapper to exercise the
// engine safely instead of racing its keyspace directly.
type syncEngine struct {
	mu sync.Mutex
	e  *Engine
}

func newSyncEngine() db.KVDB {
	return &syncEngine{e: New(DefaultOptions(), nil)}
}

func (s *syncEngine) Set(key string, value []byte, writeIndex uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.e.Set(key, value, writeIndex)
}

func (s *syncEngine) SetEIfUnset(key string, value []byte, writeIndex uint64, expireIn, deleteIn uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.e.SetEIfUnset(key, value, writeIndex, expireIn, deleteIn)
}

func (s *syncEngine) SetE(key string, value []byte, writeIndex uint64, expireIn, deleteIn uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.e.SetE(key, value, writeIndex, expireIn, deleteIn)
}

func (s *syncEngine) Expire(key string, writeIndex uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.e.Expire(key, writeIndex)
}

func (s *syncEngine) Delete(key string, writeIndex uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.e.Delete(key, writeIndex)
}

func (s *syncEngine) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.e.Get(key)
}

func (s *syncEngine) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.e.Has(key)
}

func (s *syncEngine) Save(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.e.Save(w)
}

func (s *syncEngine) Load(r io.Reader) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.e.Load(r)
}

func (s *syncEngine) SupportsFeature(feature db.Feature) bool {
	return s.e.SupportsFeature(feature)
}

func (s *syncEngine) GetInfo() db.DatabaseInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.e.GetInfo()
}

func (s *syncEngine) SetWriteIdx(index uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.e.SetWriteIdx(index)
}

func (s *syncEngine) WriteIdx() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.e.WriteIdx()
}

func (s *syncEngine) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.e.Close()
}

func (s *syncEngine) LPush(key string, vals [][]byte, writeIndex uint64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.e.LPush(key, vals, writeIndex)
}

func (s *syncEngine) RPush(key string, vals [][]byte, writeIndex uint64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.e.RPush(key, vals, writeIndex)
}

func (s *syncEngine) LPop(key string, count int, writeIndex uint64) ([][]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.e.LPop(key, count, writeIndex)
}

func (s *syncEngine) RPop(key string, count int, writeIndex uint64) ([][]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.e.RPop(key, count, writeIndex)
}

func (s *syncEngine) LLen(key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.e.LLen(key)
}

func (s *syncEngine) LIndex(key string, index int) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.e.LIndex(key, index)
}

func (s *syncEngine) LSet(key string, index int, val []byte, writeIndex uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.e.LSet(key, index, val, writeIndex)
}

func (s *syncEngine) LRange(key string, start, stop int) ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.e.LRange(key, start, stop)
}

func (s *syncEngine) LTrim(key string, start, stop int, writeIndex uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.e.LTrim(key, start, stop, writeIndex)
}

func (s *syncEngine) LInsert(key string, pivot []byte, where listvalue.Pivot, val []byte, writeIndex uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.e.LInsert(key, pivot, where, val, writeIndex)
}

func (s *syncEngine) LRem(key string, val []byte, count int, writeIndex uint64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.e.LRem(key, val, count, writeIndex)
}

func (s *syncEngine) HSet(key string, fields map[string][]byte, writeIndex uint64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.e.HSet(key, fields, writeIndex)
}

func (s *syncEngine) HGet(key, field string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.e.HGet(key, field)
}

func (s *syncEngine) HDel(key string, fields []string, writeIndex uint64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.e.HDel(key, fields, writeIndex)
}

func (s *syncEngine) HLen(key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.e.HLen(key)
}

func (s *syncEngine) HExists(key, field string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.e.HExists(key, field)
}

func (s *syncEngine) HGetAll(key string) (map[string][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.e.HGetAll(key)
}

func (s *syncEngine) HIncrBy(key, field string, delta int64, writeIndex uint64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.e.HIncrBy(key, field, delta, writeIndex)
}

func (s *syncEngine) HIncrByFloat(key, field string, delta float64, writeIndex uint64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.e.HIncrByFloat(key, field, delta, writeIndex)
}

func (s *syncEngine) BlockingPop(c *blocking.Client, keys []string, dir listvalue.Where, timeout time.Duration, target string, targetWhere listvalue.Where, inMulti bool) (*blocking.Reply, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.e.BlockingPop(c, keys, dir, timeout, target, targetWhere, inMulti)
}

func (s *syncEngine) ProcessReadyKeys() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.e.ProcessReadyKeys()
}

func (s *syncEngine) ExpireBlockingTimeouts(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.e.ExpireBlockingTimeouts(now)
}

func (s *syncEngine) DisconnectBlockingClient(c *blocking.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.e.DisconnectBlockingClient(c)
}

var _ db.KVDB = (*syncEngine)(nil)

func TestEngine(t *testing.T) {
	dbtesting.RunKVDBTests(t, "corekv", newSyncEngine)
}

func BenchmarkEngine(b *testing.B) {
	dbtesting.RunKVDBBenchmarks(b, "corekv", newSyncEngine)
}
