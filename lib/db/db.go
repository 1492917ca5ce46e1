package db

import (
	"io"
	"time"

	"github.com/kvquill/quill/lib/blocking"
	"github.com/kvquill/quill/lib/keyspace/listvalue"
)

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

type Implementation string

const (
	ImplCoreKV Implementation = "corekv"
)

// Feature represents database features as bit flags
type Feature uint64

const (
	FeatureSet            Feature = 1 << iota // Support for Set operations
	FeatureSetE                               // Support for SetE operations
	FeatureSetEIfUnset                        // Support for SetEIfUnset operations
	FeatureGet                                // Support for Get operations
	FeatureExpire                             // Support for Expire operations
	FeatureDelete                             // Support for Delete operations
	FeatureHas                                // Support for Has operations
	FeatureSave                               // Support for Save operations
	FeatureLoad                               // Support for Load operations
	FeatureGarbageCollect                     // Support for GarbageCollect operations
	FeatureList                               // Support for list-value operations (LPUSH/LPOP/...)
	FeatureHash                               // Support for hash-value operations (HSET/HGET/...)
	FeatureBlocking                           // Support for blocking list operations (BLPOP/BRPOPLPUSH)
)

func (f Feature) String() string {
	switch f {
	case FeatureSet:
		return "Set"
	case FeatureGet:
		return "Get"
	case FeatureSetE:
		return "SetE"
	case FeatureSetEIfUnset:
		return "SetEIfUnset"
	case FeatureDelete:
		return "Delete"
	case FeatureHas:
		return "Has"
	case FeatureSave:
		return "Save"
	case FeatureLoad:
		return "Load"
	case FeatureGarbageCollect:
		return "GarbageCollect"
	case FeatureList:
		return "List"
	case FeatureHash:
		return "Hash"
	case FeatureBlocking:
		return "Blocking"
	default:
		return "Unknown"
	}
}

type DatabaseInfo struct {
	SizeBytes         int            `json:"size_bytes"`
	DbType            Implementation `json:"db_type"`
	SupportedFeatures []Feature      `json:"supported_features"`
	Metadata          interface{}    `json:"metadata"`
}

// --------------------------------------------------------------------------
// Database Interface
// --------------------------------------------------------------------------

// KVDB defines an interface for key-value database implementations.
// It provides methods for basic operations like Set, Get, Delete, and various utility functions.
// Any implementation of this interface must manage keys in a consistent way.
// Implementations can vary in their feature support, which can be queried with SupportsFeature.
type KVDB interface {

	// --------------------------------------------------------------------------
	// Write Operations
	// --------------------------------------------------------------------------

	// Set inserts or updates an entry with the given key, value, and currentIndex.
	// If the key already exists, the old value should be overwritten.
	// The writeIndex parameter is used as a logical timestamp for the entry.
	Set(key string, value []byte, writeIndex uint64)

	// SetEIfUnset inserts an entry with the given key, value, and currentIndex.
	// If the key already exists, the old value is not updated.
	// The writeIndex parameter is used as a logical timestamp for the entry.
	// The expireIn parameter is used to set an expiration time for the entry, the entry is still findable after expiration with the Has() method.
	// The deleteIn parameter is used to set a deletion time for the entry, the entry is not findable after deletion.
	// Note: expireIn=0 and deleteIn=0 means no expiration or deletion. Setting expireIn=0 and deleteIn=N is equivalent to expireIn=N and deleteIn=N.
	SetEIfUnset(key string, value []byte, writeIndex uint64, expireIn, deleteIn uint64)

	// SetE inserts or updates an entry with the given key, value, timestamp and a ttl (time to live).
	// If the key already exists, the old value should be overwritten.
	// The writeIndex parameter is used as a logical timestamp for the entry.
	// The expireIn parameter is used to set an expiration time for the entry, the entry is still findable after expiration with the Has() method.
	// The deleteIn parameter is used to set a deletion time for the entry, the entry is not findable after deletion.
	// Note: expireIn=0 and deleteIn=0 means no expiration or deletion. Setting expireIn=0 and deleteIn=N is equivalent to expireIn=N and deleteIn=N.
	SetE(key string, value []byte, writeIndex uint64, expireIn, deleteIn uint64)

	// Expire marks the entry with the specified key as expired.
	// The entry is key findable with the Has() method.
	Expire(key string, writeIndex uint64)

	// Delete removes an entry with the specified key.
	// The key should be removed from the database and not be findable anymore.
	Delete(key string, writeIndex uint64)

	// --------------------------------------------------------------------------
	// Query Operations
	// --------------------------------------------------------------------------

	// Get retrieves the value for an exact key.
	// The boolean return value indicates whether a value for the key was found.
	Get(key string) (value []byte, loaded bool)

	// Has checks whether a key exists in the database.
	// This method should return true even if the value for the key is expired.
	Has(key string) (loaded bool)

	// --------------------------------------------------------------------------
	// Persistence Operations
	// --------------------------------------------------------------------------

	// Save persists the current state of the database to the provided io.Writer.
	Save(w io.Writer) (err error)

	// Load restores the database state data provided by an io.Reader.
	Load(r io.Reader) (err error)

	// --------------------------------------------------------------------------
	// Feature Support
	// --------------------------------------------------------------------------

	// SupportsFeature checks if the database implementation supports the specified feature.
	// Returns true if the feature is supported, false otherwise.
	// Multiple features can be checked at once using bitwise OR (|) operator.
	SupportsFeature(feature Feature) (ok bool)

	// GetInfo returns information about the database.
	GetInfo() (info DatabaseInfo)

	// --------------------------------------------------------------------------
	// Write Index Operations
	// --------------------------------------------------------------------------

	// SetWriteIdx sets the current index of the database only if the provided index is greater than the current index.
	SetWriteIdx(index uint64)

	// WriteIdx returns the current index of the database .
	WriteIdx() (index uint64)

	// Close closes the database.
	Close() (err error)

	// --------------------------------------------------------------------------
	// List Operations
	// --------------------------------------------------------------------------

	// LPush/RPush push vals onto key's list (creating it if absent),
	// returning the resulting length. They fail if key holds a non-list
	// value.
	LPush(key string, vals [][]byte, writeIndex uint64) (length int, err error)
	RPush(key string, vals [][]byte, writeIndex uint64) (length int, err error)

	// LPop/RPop remove up to count elements from either end of key's list.
	// ok is false if key does not exist.
	LPop(key string, count int, writeIndex uint64) (vals [][]byte, ok bool, err error)
	RPop(key string, count int, writeIndex uint64) (vals [][]byte, ok bool, err error)

	// LLen returns the length of key's list, 0 if key does not exist.
	LLen(key string) (length int, err error)

	// LIndex returns the element at index (negative counts from the tail).
	LIndex(key string, index int) (val []byte, ok bool, err error)

	// LSet overwrites the element at index.
	LSet(key string, index int, val []byte, writeIndex uint64) (err error)

	// LRange materializes the elements between start and stop, inclusive.
	LRange(key string, start, stop int) (vals [][]byte, err error)

	// LTrim keeps only the elements between start and stop, inclusive.
	LTrim(key string, start, stop int, writeIndex uint64) (err error)

	// LInsert inserts val before or after the first element equal to
	// pivot, reporting whether a pivot was found.
	LInsert(key string, pivot []byte, where listvalue.Pivot, val []byte, writeIndex uint64) (inserted bool, err error)

	// LRem removes up to count occurrences of val (see listvalue.Remove
	// for the sign convention), returning the number removed.
	LRem(key string, val []byte, count int, writeIndex uint64) (removed int, err error)

	// --------------------------------------------------------------------------
	// Hash Operations
	// --------------------------------------------------------------------------

	// HSet installs fields into key's hash (creating it if absent),
	// returning the number of fields newly inserted (as opposed to
	// overwritten).
	HSet(key string, fields map[string][]byte, writeIndex uint64) (inserted int, err error)

	// HGet returns field's value.
	HGet(key, field string) (val []byte, ok bool, err error)

	// HDel removes fields, returning the number actually removed.
	HDel(key string, fields []string, writeIndex uint64) (removed int, err error)

	// HLen returns the number of fields in key's hash.
	HLen(key string) (length int, err error)

	// HExists reports whether field is present in key's hash.
	HExists(key, field string) (ok bool, err error)

	// HGetAll materializes every field/value pair in key's hash.
	HGetAll(key string) (fields map[string][]byte, err error)

	// HIncrBy/HIncrByFloat apply a numeric increment to field, creating
	// both key and field with a zero base value if absent.
	HIncrBy(key, field string, delta int64, writeIndex uint64) (result int64, err error)
	HIncrByFloat(key, field string, delta float64, writeIndex uint64) (result float64, err error)

	// --------------------------------------------------------------------------
	// Blocking List Operations
	// --------------------------------------------------------------------------

	// BlockingPop implements BLPOP/BRPOP/BRPOPLPUSH: see
	// blocking.Rendezvous.BlockingPop for the exact contract.
	BlockingPop(c *blocking.Client, keys []string, dir listvalue.Where, timeout time.Duration, target string, targetWhere listvalue.Where, inMulti bool) (reply *blocking.Reply, blocked bool)

	// ProcessReadyKeys drains the keys made ready by the most recent
	// write and delivers to any clients parked on them. Callers invoke
	// this once after every command that may have mutated a list.
	ProcessReadyKeys()

	// ExpireBlockingTimeouts delivers a nil reply to every client whose
	// blocking deadline has passed as of now.
	ExpireBlockingTimeouts(now time.Time)

	// DisconnectBlockingClient cancels c's blocking wait without
	// delivering a reply, for use when its connection has already gone
	// away.
	DisconnectBlockingClient(c *blocking.Client)
}
