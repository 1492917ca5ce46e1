package corekv

import (
	"time"

	"github.com/kvquill/quill/lib/blocking"
	"github.com/kvquill/quill/lib/keyspace/listvalue"
)

// rendezvous lazily creates and caches the blocking.Rendezvous for this
// engine; most engines never serve a blocking command, so paying for one
// only on first use avoids the allocation for plain string/list workloads.
func (e *Engine) rendezvous() *blocking.Rendezvous {
	if e.rz == nil {
		e.rz = blocking.New(e.keyspace, e.fill, e.compress)
	}
	return e.rz
}

func (e *Engine) BlockingPop(c *blocking.Client, keys []string, dir listvalue.Where, timeout time.Duration, target string, targetWhere listvalue.Where, inMulti bool) (*blocking.Reply, bool) {
	return e.rendezvous().BlockingPop(c, keys, dir, timeout, target, targetWhere, inMulti)
}

func (e *Engine) ProcessReadyKeys() {
	if e.rz == nil {
		return
	}
	e.rz.ProcessReadyKeys()
}

func (e *Engine) ExpireBlockingTimeouts(now time.Time) {
	if e.rz == nil {
		return
	}
	e.rz.ExpireTimeouts(now)
}

func (e *Engine) DisconnectBlockingClient(c *blocking.Client) {
	if e.rz == nil {
		return
	}
	e.rz.Disconnect(c)
}
