// Package hashtable implements an incrementally-rehashed, chained open
// hash table keyed by caller-defined key/value types.
//
// The table keeps two bucket arrays, T0 and T1. Under normal operation only
// T0 is live. When the load factor crosses the grow threshold, T1 is
// allocated at double the size and the table enters "rehashing" mode:
// inserts land in T1, lookups fall through T0 then T1, and a bounded number
// of buckets are migrated from T0 to T1 on every subsequent Add/Find/Delete
// call (plus whenever the caller explicitly drives Rehash). Once T0 is
// drained, T1 is promoted to T0 and rehashing ends.
//
// This design - lifted from the dict.c incremental-rehashing scheme - lets a
// single-writer keyspace grow or shrink without ever pausing to copy the
// whole table in one step.
package hashtable
