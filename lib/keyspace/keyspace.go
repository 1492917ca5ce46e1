// Package keyspace implements the per-database keyspace: a dictionary of
// values, their expirations, and the bookkeeping a blocking command needs
// to find out which keys just became non-empty. It is deliberately not
// safe for concurrent use - exactly one command runs against a KeyspaceDB
// at a time, and nothing here takes a lock.
package keyspace

import (
	"github.com/cespare/xxhash/v2"
	"github.com/kvquill/quill/lib/keyspace/hashtable"
	"github.com/kvquill/quill/lib/keyspace/hashvalue"
	"github.com/kvquill/quill/lib/keyspace/listvalue"
	"github.com/kvquill/quill/lib/keyspace/quicklist"
)

// Kind tags which representation a Value currently holds.
type Kind int

const (
	KindString Kind = iota
	KindList
	KindHash
)

// Value is the tagged union every key maps to. Only the field matching
// Kind is meaningful.
type Value struct {
	Kind Kind
	Str  []byte
	List *listvalue.List
	Hash *hashvalue.Hash
}

func stringPolicy[V any]() hashtable.Policy[string, V] {
	return hashtable.Policy[string, V]{
		Hash:  func(k string) uint64 { return xxhash.Sum64String(k) },
		Equal: func(a, b string) bool { return a == b },
	}
}

// Event is a keyspace notification, matching notify_keyspace_event's
// (class, event, key) shape. Class groups events for subscriber-side
// filtering (list/hash/generic).
type Event struct {
	Class EventClass
	Name  string
	Key   string
}

type EventClass int

const (
	ClassGeneric EventClass = iota
	ClassList
	ClassHash
)

// DB is one numbered keyspace: a dict of values, an expire table, and the
// ready_keys bookkeeping BlockingRendezvous needs after every command.
type DB struct {
	dict    *hashtable.HashTable[string, *Value]
	expires *hashtable.HashTable[string, int64] // unix-milli deadlines

	blockingKeys map[string]bool // keys some client is currently blocked on
	readySet     map[string]bool
	readyOrder   []string

	dirty    uint64
	notifyFn func(Event)
}

// New creates an empty, numbered keyspace.
func New() *DB {
	return &DB{
		dict:         hashtable.New(stringPolicy[*Value]()),
		expires:      hashtable.New(stringPolicy[int64]()),
		blockingKeys: make(map[string]bool),
		readySet:     make(map[string]bool),
	}
}

// SetNotifyFunc installs the sink events are delivered to; nil disables
// delivery (events are still dropped, not buffered, when no sink is set).
func (db *DB) SetNotifyFunc(fn func(Event)) { db.notifyFn = fn }

func (db *DB) notify(class EventClass, name, key string) {
	ev := Event{Class: class, Name: name, Key: key}
	if db.notifyFn != nil {
		db.notifyFn(ev)
	}
}

// Dirty returns the per-server dirty counter, bumped on every committed
// mutation.
func (db *DB) Dirty() uint64 { return db.dirty }

func (db *DB) bumpDirty() { db.dirty++ }

// Get returns key's value for read, ignoring expiry.
func (db *DB) Get(key string) (*Value, bool) {
	e, ok := db.dict.Find(key)
	if !ok {
		return nil, false
	}
	return e.Value(), true
}

// LookupForRead returns key's value only if it has not expired,
// lazily evicting it otherwise.
func (db *DB) LookupForRead(key string, nowMs int64) (*Value, bool) {
	if db.expired(key, nowMs) {
		db.Delete(key)
		return nil, false
	}
	return db.Get(key)
}

// LookupForWrite behaves like LookupForRead; a separate method exists
// because callers that intend to mutate the value may need to bypass
// additional read-path bookkeeping the core end-to-end acquires.
func (db *DB) LookupForWrite(key string, nowMs int64) (*Value, bool) {
	return db.LookupForRead(key, nowMs)
}

func (db *DB) expired(key string, nowMs int64) bool {
	e, ok := db.expires.Find(key)
	if !ok {
		return false
	}
	return e.Value() <= nowMs
}

// Set installs val at key, overwriting any previous value and clearing any
// expiration.
func (db *DB) Set(key string, val *Value) {
	db.dict.Replace(key, val)
	db.expires.Delete(key)
	db.bumpDirty()
}

// SetEntry installs val at key without touching the expiration - used by
// in-place mutators (list push, hash set) that already hold the entry.
func (db *DB) SetEntry(key string, val *Value) {
	db.dict.Replace(key, val)
}

// Expire sets key's expiration to an absolute unix-millisecond deadline.
func (db *DB) Expire(key string, atMs int64) bool {
	if _, ok := db.dict.Find(key); !ok {
		return false
	}
	db.expires.Replace(key, atMs)
	return true
}

// Delete removes key from dict and expires, reporting whether it was
// present. This is the *deletion path* §4.5 refers to: list/hash values
// that became empty must go through here so the "del" event fires.
func (db *DB) Delete(key string) bool {
	ok := db.dict.Delete(key)
	db.expires.Delete(key)
	if ok {
		db.notify(ClassGeneric, "del", key)
		db.bumpDirty()
	}
	return ok
}

// Has reports whether key is present (ignoring expiry).
func (db *DB) Has(key string) bool {
	_, ok := db.dict.Find(key)
	return ok
}

// GetOrCreateList fetches key's list, creating one if absent. It returns
// an error-like false if key exists but is not a list.
func (db *DB) GetOrCreateList(key string, fill, compress int) (*listvalue.List, bool) {
	if v, ok := db.Get(key); ok {
		if v.Kind != KindList {
			return nil, false
		}
		return v.List, true
	}
	l := listvalue.New(quicklist.FillPolicy(fill), compress)
	db.dict.Replace(key, &Value{Kind: KindList, List: l})
	return l, true
}

// GetOrCreateHash fetches key's hash, creating one if absent. It returns
// false if key exists but is not a hash.
func (db *DB) GetOrCreateHash(key string, limits hashvalue.Limits) (*hashvalue.Hash, bool) {
	if v, ok := db.Get(key); ok {
		if v.Kind != KindHash {
			return nil, false
		}
		return v.Hash, true
	}
	h := hashvalue.New(limits)
	db.dict.Replace(key, &Value{Kind: KindHash, Hash: h})
	return h, true
}

// AfterListMutation implements the §4.5 contract that runs whenever a
// list-producing mutation commits on key: it marks the key ready if
// someone is blocked on it, fires the notification, and bumps dirty.
func (db *DB) AfterListMutation(key, eventName string) {
	if db.blockingKeys[key] && !db.readySet[key] {
		db.readySet[key] = true
		db.readyOrder = append(db.readyOrder, key)
	}
	db.notify(ClassList, eventName, key)
	db.bumpDirty()
}

// AfterHashMutation fires the notification and dirty bump for a committed
// hash-value mutation. Hash keys never have blocking waiters, so unlike
// AfterListMutation this never touches the ready-keys bookkeeping.
func (db *DB) AfterHashMutation(key, eventName string) {
	db.notify(ClassHash, eventName, key)
	db.bumpDirty()
}

// MarkBlocking records that some client is now blocked on key.
func (db *DB) MarkBlocking(key string) { db.blockingKeys[key] = true }

// ClearBlocking records that no client remains blocked on key.
func (db *DB) ClearBlocking(key string) { delete(db.blockingKeys, key) }

// IsBlocking reports whether any client is currently blocked on key.
func (db *DB) IsBlocking(key string) bool { return db.blockingKeys[key] }

// DrainReadyKeys snapshots and clears the ready-keys queue, matching the
// "replace the server-level ref with a fresh empty one" step of the
// unblock-side protocol so re-entrant pushes during delivery accumulate
// into a new list rather than the one being drained.
func (db *DB) DrainReadyKeys() []string {
	drained := db.readyOrder
	db.readyOrder = nil
	db.readySet = make(map[string]bool)
	return drained
}

// UnmarkReady removes key from the ready index so a subsequent push during
// this same drain cycle can re-queue it.
func (db *DB) UnmarkReady(key string) { delete(db.readySet, key) }

// SwapForFlush atomically replaces db's dict and expires tables with
// fresh empty ones, returning the old pair packaged as a detached *DB so
// a lazy-reclaim worker can walk and release it off the command thread.
// The blocking-keys/ready-keys indices are left untouched since they key
// off clients, not off the tables being replaced.
func (db *DB) SwapForFlush() *DB {
	old := &DB{dict: db.dict, expires: db.expires}
	db.dict = hashtable.New(stringPolicy[*Value]())
	db.expires = hashtable.New(stringPolicy[int64]())
	db.bumpDirty()
	return old
}

// ForEachKey walks every key currently in dict, for use by a background
// release worker walking a swapped-out DB.
func (db *DB) ForEachKey(fn func(key string, v *Value)) {
	cursor := uint64(0)
	for {
		cursor = db.dict.Scan(cursor, func(e *hashtable.Entry[string, *Value]) {
			fn(e.Key(), e.Value())
		})
		if cursor == 0 {
			break
		}
	}
}

// DeleteIfEmptyList deletes key if it holds an empty list, per the
// deletion-path contract in §4.5/§4.6(f).
func (db *DB) DeleteIfEmptyList(key string) {
	v, ok := db.Get(key)
	if !ok || v.Kind != KindList || !v.List.Empty() {
		return
	}
	db.Delete(key)
}
