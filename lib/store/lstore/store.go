package lstore

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/kvquill/quill/lib/blocking"
	"github.com/kvquill/quill/lib/db"
	"github.com/kvquill/quill/lib/keyspace/listvalue"
	"github.com/kvquill/quill/lib/store"
)

// storeImpl serializes every command against a single db.KVDB behind a
// mutex. The underlying corekv engine is deliberately not safe for
// concurrent use on its own - exactly one command may run against its
// keyspace at a time - so this is where that invariant is enforced for a
// store reached by many connection goroutines.
type storeImpl struct {
	mu    sync.Mutex
	db    db.KVDB
	index atomic.Uint64
}

// NewLocalStore creates a new local store instance.
// This store implementation is not distributed and only works on a single node.
// It wraps the db.KVDB returned by factory.
func NewLocalStore(factory store.DBFactory) store.IStore {
	return &storeImpl{
		db:    factory(),
		index: atomic.Uint64{},
	}
}

// incAndGetIndex increments the index and returns the new value.
// It is used to ensure that each write operation has a unique index.
func (s *storeImpl) incAndGetIndex() uint64 {
	return s.index.Add(1)
}

// processReadyLocked delivers to any blocked clients the most recent
// mutation made ready, then returns. Callers must hold s.mu.
func (s *storeImpl) processReadyLocked() {
	s.db.ProcessReadyKeys()
}

// --------------------------------------------------------------------------
// String Operations (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.db.SupportsFeature(db.FeatureSet) {
		return store.NewError(store.RetCUnsupportedOperation, "Set operation is not supported")
	}
	s.db.Set(key, value, s.incAndGetIndex())
	return nil
}

func (s *storeImpl) SetE(key string, value []byte, expireIn, deleteIn uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.db.SupportsFeature(db.FeatureSetE) {
		return store.NewError(store.RetCUnsupportedOperation, "SetE operation is not supported")
	}
	s.db.SetE(key, value, s.incAndGetIndex(), expireIn, deleteIn)
	return nil
}

func (s *storeImpl) SetEIfUnset(key string, value []byte, expireIn, deleteIn uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.db.SupportsFeature(db.FeatureSetEIfUnset) {
		return store.NewError(store.RetCUnsupportedOperation, "SetEIfUnset operation is not supported")
	}
	s.db.SetEIfUnset(key, value, s.incAndGetIndex(), expireIn, deleteIn)
	return nil
}

func (s *storeImpl) Expire(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.db.SupportsFeature(db.FeatureExpire) {
		return store.NewError(store.RetCUnsupportedOperation, "Expire operation is not supported")
	}
	s.db.Expire(key, s.incAndGetIndex())
	return nil
}

func (s *storeImpl) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.db.SupportsFeature(db.FeatureDelete) {
		return store.NewError(store.RetCUnsupportedOperation, "Delete operation is not supported")
	}
	s.db.Delete(key, s.incAndGetIndex())
	return nil
}

func (s *storeImpl) Get(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.db.SupportsFeature(db.FeatureGet) {
		return nil, false, store.NewError(store.RetCUnsupportedOperation, "Get operation is not supported")
	}
	val, ok := s.db.Get(key)
	return val, ok, nil
}

func (s *storeImpl) Has(key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.db.SupportsFeature(db.FeatureHas) {
		return false, store.NewError(store.RetCUnsupportedOperation, "Has operation is not supported")
	}
	return s.db.Has(key), nil
}

func (s *storeImpl) GetDBInfo() (db.DatabaseInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.GetInfo(), nil
}

// --------------------------------------------------------------------------
// List Operations (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) requireList() error {
	if !s.db.SupportsFeature(db.FeatureList) {
		return store.NewError(store.RetCUnsupportedOperation, "list operations are not supported")
	}
	return nil
}

func (s *storeImpl) LPush(key string, vals [][]byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireList(); err != nil {
		return 0, err
	}
	n, err := s.db.LPush(key, vals, s.incAndGetIndex())
	s.processReadyLocked()
	return n, wrapErr(err)
}

func (s *storeImpl) RPush(key string, vals [][]byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireList(); err != nil {
		return 0, err
	}
	n, err := s.db.RPush(key, vals, s.incAndGetIndex())
	s.processReadyLocked()
	return n, wrapErr(err)
}

func (s *storeImpl) LPop(key string, count int) ([][]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireList(); err != nil {
		return nil, false, err
	}
	vals, ok, err := s.db.LPop(key, count, s.incAndGetIndex())
	return vals, ok, wrapErr(err)
}

func (s *storeImpl) RPop(key string, count int) ([][]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireList(); err != nil {
		return nil, false, err
	}
	vals, ok, err := s.db.RPop(key, count, s.incAndGetIndex())
	return vals, ok, wrapErr(err)
}

func (s *storeImpl) LLen(key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireList(); err != nil {
		return 0, err
	}
	n, err := s.db.LLen(key)
	return n, wrapErr(err)
}

func (s *storeImpl) LIndex(key string, index int) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireList(); err != nil {
		return nil, false, err
	}
	val, ok, err := s.db.LIndex(key, index)
	return val, ok, wrapErr(err)
}

func (s *storeImpl) LSet(key string, index int, val []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireList(); err != nil {
		return err
	}
	return wrapErr(s.db.LSet(key, index, val, s.incAndGetIndex()))
}

func (s *storeImpl) LRange(key string, start, stop int) ([][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireList(); err != nil {
		return nil, err
	}
	vals, err := s.db.LRange(key, start, stop)
	return vals, wrapErr(err)
}

func (s *storeImpl) LTrim(key string, start, stop int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireList(); err != nil {
		return err
	}
	return wrapErr(s.db.LTrim(key, start, stop, s.incAndGetIndex()))
}

func (s *storeImpl) LInsert(key string, pivot []byte, where listvalue.Pivot, val []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireList(); err != nil {
		return false, err
	}
	inserted, err := s.db.LInsert(key, pivot, where, val, s.incAndGetIndex())
	return inserted, wrapErr(err)
}

func (s *storeImpl) LRem(key string, val []byte, count int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireList(); err != nil {
		return 0, err
	}
	removed, err := s.db.LRem(key, val, count, s.incAndGetIndex())
	return removed, wrapErr(err)
}

// --------------------------------------------------------------------------
// Hash Operations (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) requireHash() error {
	if !s.db.SupportsFeature(db.FeatureHash) {
		return store.NewError(store.RetCUnsupportedOperation, "hash operations are not supported")
	}
	return nil
}

func (s *storeImpl) HSet(key string, fields map[string][]byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireHash(); err != nil {
		return 0, err
	}
	n, err := s.db.HSet(key, fields, s.incAndGetIndex())
	return n, wrapErr(err)
}

func (s *storeImpl) HGet(key, field string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireHash(); err != nil {
		return nil, false, err
	}
	val, ok, err := s.db.HGet(key, field)
	return val, ok, wrapErr(err)
}

func (s *storeImpl) HDel(key string, fields []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireHash(); err != nil {
		return 0, err
	}
	removed, err := s.db.HDel(key, fields, s.incAndGetIndex())
	return removed, wrapErr(err)
}

func (s *storeImpl) HLen(key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireHash(); err != nil {
		return 0, err
	}
	n, err := s.db.HLen(key)
	return n, wrapErr(err)
}

func (s *storeImpl) HExists(key, field string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireHash(); err != nil {
		return false, err
	}
	ok, err := s.db.HExists(key, field)
	return ok, wrapErr(err)
}

func (s *storeImpl) HGetAll(key string) (map[string][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireHash(); err != nil {
		return nil, err
	}
	fields, err := s.db.HGetAll(key)
	return fields, wrapErr(err)
}

func (s *storeImpl) HIncrBy(key, field string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireHash(); err != nil {
		return 0, err
	}
	result, err := s.db.HIncrBy(key, field, delta, s.incAndGetIndex())
	return result, wrapErr(err)
}

func (s *storeImpl) HIncrByFloat(key, field string, delta float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireHash(); err != nil {
		return 0, err
	}
	result, err := s.db.HIncrByFloat(key, field, delta, s.incAndGetIndex())
	return result, wrapErr(err)
}

// --------------------------------------------------------------------------
// Blocking List Operations (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) NewBlockingClient(id string) *blocking.Client {
	return blocking.NewClient(id)
}

func (s *storeImpl) BlockingPop(c *blocking.Client, keys []string, dir listvalue.Where, timeout time.Duration, target string, targetWhere listvalue.Where, inMulti bool) (*blocking.Reply, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := requireFeature(s.db, db.FeatureBlocking); err != nil {
		return &blocking.Reply{Err: err}, false
	}
	reply, blocked := s.db.BlockingPop(c, keys, dir, timeout, target, targetWhere, inMulti)
	if !blocked {
		s.processReadyLocked()
	}
	return reply, blocked
}

func (s *storeImpl) ProcessReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processReadyLocked()
}

func (s *storeImpl) ExpireBlockingTimeouts(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.db.ExpireBlockingTimeouts(now)
}

func (s *storeImpl) DisconnectBlockingClient(c *blocking.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.db.DisconnectBlockingClient(c)
}

func requireFeature(d db.KVDB, f db.Feature) error {
	if !d.SupportsFeature(f) {
		return store.NewError(store.RetCUnsupportedOperation, "operation is not supported")
	}
	return nil
}

func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	return store.NewError(store.RetCInvalidOperation, err.Error())
}
