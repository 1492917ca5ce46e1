// Package corekv is the in-memory engine backing every numbered database:
// it wires together a keyspace.DB, a blocking.Rendezvous for list-blocking
// commands, and a lazyfree.Reclaimer for expensive deletions, and exposes
// them through the db.KVDB interface the rest of the server depends on.
package corekv
