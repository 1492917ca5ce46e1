// Package blocking implements the rendezvous protocol between clients
// waiting on an empty list key (BLPOP/BRPOP/BRPOPLPUSH) and the pushes
// that eventually satisfy them.
//
// A blocked client is parked in two places at once: its own blocking-keys
// set, and the tail of a per-key FIFO owned by the keyspace. After every
// command the server drains the keyspace's ready_keys queue and, for each
// key that just became non-empty, walks that key's FIFO delivering one
// popped element per waiter until either the FIFO or the list runs dry.
package blocking
