package blocking

import (
	"time"

	"github.com/kvquill/quill/lib/keyspace/listvalue"
)

// PendingCommand records what a blocked client is waiting for: the pop
// direction it wants, and, for an atomic pop-and-push (BRPOPLPUSH), the
// destination key and the side it should be pushed onto.
type PendingCommand struct {
	Dir         listvalue.Where
	Target      string // empty means "no target"
	TargetWhere listvalue.Where
}

// HasTarget reports whether this is an atomic pop-and-push.
func (p *PendingCommand) HasTarget() bool { return p != nil && p.Target != "" }

// Reply is what the rendezvous hands back to a client, either
// synchronously (an immediate non-blocking pop) or asynchronously once a
// blocked wait is satisfied, times out, or is cancelled.
type Reply struct {
	Nil   bool
	Key   string
	Value []byte
	Err   error
}

// Client is one connection's blocking state. The rendezvous owns every
// field here; callers only construct a Client and read its Deliver
// channel (or poll Blocked after invoking the synchronous
// entry points).
type Client struct {
	ID string

	keys     map[string]bool // this client's own blocking-keys set
	pending  *PendingCommand
	deadline time.Time
	blocked  bool

	Deliver chan Reply
}

// NewClient creates a client identity for use with a Rendezvous. Deliver
// is buffered so the unblock-side delivery never blocks on a slow reader.
func NewClient(id string) *Client {
	return &Client{
		ID:      id,
		keys:    make(map[string]bool),
		Deliver: make(chan Reply, 1),
	}
}

// Blocked reports whether the client is currently parked waiting on a key.
func (c *Client) Blocked() bool { return c.blocked }
