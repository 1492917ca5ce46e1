package blocking

import (
	"errors"
	"time"

	"github.com/kvquill/quill/lib/keyspace"
	"github.com/kvquill/quill/lib/keyspace/listvalue"
	"github.com/kvquill/quill/lib/keyspace/quicklist"
)

// ErrWrongType is delivered to a BRPOPLPUSH-style waiter when its target
// key exists but is not a list; delivery aborts and the popped element is
// pushed back onto the source.
var ErrWrongType = errors.New("blocking: target exists and is not a list")

// Rendezvous owns the blocking-keys FIFOs for one KeyspaceDB and drives
// both the pop side (parking a client) and the unblock side (draining
// ready_keys after every command).
type Rendezvous struct {
	db    *keyspace.DB
	fifos map[string][]*Client // blocking_keys: key -> FIFO of waiters
	all   map[string]*Client   // every currently-blocked client, by ID

	fill     quicklist.FillPolicy
	compress int
}

// New creates a Rendezvous bound to db. fill/compress are the policy used
// when a target list must be created on delivery.
func New(db *keyspace.DB, fill quicklist.FillPolicy, compress int) *Rendezvous {
	return &Rendezvous{
		db:       db,
		fifos:    make(map[string][]*Client),
		all:      make(map[string]*Client),
		fill:     fill,
		compress: compress,
	}
}

// BlockingPop implements the pop side of §4.6. keys are tried in order for
// an immediate pop; if none is ready and inMulti is false, c is parked on
// all of them and blocked=true is returned. inMulti=true short-circuits to
// an immediate nil reply, since blocking inside a transaction is
// prohibited.
func (r *Rendezvous) BlockingPop(c *Client, keys []string, dir listvalue.Where, timeout time.Duration, target string, targetWhere listvalue.Where, inMulti bool) (reply *Reply, blocked bool) {
	for _, k := range keys {
		v, ok := r.db.Get(k)
		if !ok || v.Kind != keyspace.KindList || v.List.Empty() {
			continue
		}
		val, _ := v.List.Pop(dir)
		if target != "" {
			if _, err := r.deliverTarget(k, target, targetWhere, val); err != nil {
				v.List.Push(dir, val)
				return &Reply{Err: err}, false
			}
		}
		r.db.DeleteIfEmptyList(k)
		return &Reply{Key: k, Value: val}, false
	}

	if inMulti {
		return &Reply{Nil: true}, false
	}

	for _, k := range keys {
		if c.keys[k] {
			continue
		}
		c.keys[k] = true
		r.fifos[k] = append(r.fifos[k], c)
		r.db.MarkBlocking(k)
	}
	c.pending = &PendingCommand{Dir: dir, Target: target, TargetWhere: targetWhere}
	if timeout > 0 {
		c.deadline = time.Now().Add(timeout)
	}
	c.blocked = true
	r.all[c.ID] = c
	return nil, true
}

// deliverTarget pushes val onto target (creating it if absent), returning
// ErrWrongType if target exists but is not a list.
func (r *Rendezvous) deliverTarget(source, target string, where listvalue.Where, val []byte) (bool, error) {
	tv, ok := r.db.Get(target)
	if ok && tv.Kind != keyspace.KindList {
		return false, ErrWrongType
	}
	l, ok := r.db.GetOrCreateList(target, int(r.fill), r.compress)
	if !ok {
		return false, ErrWrongType
	}
	l.Push(where, val)
	r.db.AfterListMutation(target, pushEventName(where))
	return true, nil
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

// ProcessReadyKeys implements the unblock side of §4.6: while the
// keyspace's ready_keys queue is non-empty, it drains it and, for each key,
// walks its waiter FIFO delivering one popped element per waiter until the
// FIFO or the list runs dry. A delivery can itself push onto another key
// (BRPOPLPUSH's target) and mark that key ready again; because the loop
// keeps draining within this same call, such re-entrant keys are served in
// the same pass rather than deferred to whatever command happens to call
// ProcessReadyKeys next.
func (r *Rendezvous) ProcessReadyKeys() {
	for {
		keys := r.db.DrainReadyKeys()
		if len(keys) == 0 {
			return
		}
		for _, key := range keys {
			r.db.UnmarkReady(key)
			r.serveKey(key)
		}
	}
}

func (r *Rendezvous) serveKey(key string) {
	for {
		v, ok := r.db.Get(key)
		if !ok || v.Kind != keyspace.KindList || v.List.Empty() {
			return
		}

		fifo := r.fifos[key]
		if len(fifo) == 0 {
			return
		}
		c := fifo[0]

		dir := listvalue.Head
		if c.pending != nil {
			dir = c.pending.Dir
		}

		val, ok := v.List.Pop(dir)
		listNowEmpty := v.List.Empty()

		target := ""
		targetWhere := listvalue.Head
		if c.pending != nil && c.pending.HasTarget() {
			target = c.pending.Target
			targetWhere = c.pending.TargetWhere
		}

		r.unblock(c)

		if ok {
			r.db.AfterListMutation(key, popEventName(dir))
			if target == "" {
				c.Deliver <- Reply{Key: key, Value: val}
			} else {
				if _, err := r.deliverTarget(key, target, targetWhere, val); err != nil {
					// Abort: push the element back where it came from and
					// report an error instead of a value.
					v.List.Push(dir, val)
					r.db.AfterListMutation(key, pushEventName(dir))
					c.Deliver <- Reply{Err: err}
				} else {
					c.Deliver <- Reply{Key: key, Value: val}
				}
			}
		}

		if listNowEmpty {
			r.db.DeleteIfEmptyList(key)
			return
		}
	}
}

// unblock removes c from every per-key FIFO it sits in (deleting now-empty
// FIFOs and clearing blocking_keys), clears its own blocking-keys set, and
// marks it unblocked. All three cancellation paths (delivery, timeout,
// disconnect) converge here.
func (r *Rendezvous) unblock(c *Client) {
	for k := range c.keys {
		fifo := r.fifos[k]
		for i, waiter := range fifo {
			if waiter == c {
				fifo = append(fifo[:i], fifo[i+1:]...)
				break
			}
		}
		if len(fifo) == 0 {
			delete(r.fifos, k)
			r.db.ClearBlocking(k)
		} else {
			r.fifos[k] = fifo
		}
	}
	c.keys = make(map[string]bool)
	c.pending = nil
	c.blocked = false
	delete(r.all, c.ID)
}

// ExpireTimeouts unblocks and delivers a nil reply to every client whose
// deadline has passed by now.
func (r *Rendezvous) ExpireTimeouts(now time.Time) {
	var timedOut []*Client
	for _, c := range r.all {
		if !c.deadline.IsZero() && !now.Before(c.deadline) {
			timedOut = append(timedOut, c)
		}
	}
	for _, c := range timedOut {
		r.unblock(c)
		c.Deliver <- Reply{Nil: true}
	}
}

// Disconnect cancels a blocked client without delivering a reply - the
// caller's connection is already gone.
func (r *Rendezvous) Disconnect(c *Client) {
	if !c.blocked {
		return
	}
	r.unblock(c)
}
