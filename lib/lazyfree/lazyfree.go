package lazyfree

import (
	"runtime"
	"sync/atomic"

	"github.com/kvquill/quill/lib/db/util"
	"github.com/kvquill/quill/lib/keyspace"
	"github.com/rcrowley/go-metrics"
)

// DefaultThreshold is the effort value above which a deletion is deferred
// to a background worker rather than released inline.
const DefaultThreshold = 64

// maxWorkers bounds the background pool regardless of core count, so a
// very large host doesn't spin up dozens of idle goroutines for what is,
// in practice, a light workload.
const maxWorkers = 8

// Effort estimates how expensive it would be to synchronously free v,
// following the same cheap heuristic the command thread uses to decide
// whether a deletion should be deferred: list length in nodes, hash
// element count once promoted to table encoding, and 1 for anything else
// (strings, and hashes still small enough to be packed).
func Effort(v *keyspace.Value) int {
	if v == nil {
		return 1
	}
	switch v.Kind {
	case keyspace.KindList:
		return v.List.NodeCount()
	case keyspace.KindHash:
		if v.Hash.IsPromoted() {
			return v.Hash.Len()
		}
		return 1
	default:
		return 1
	}
}

// Reclaimer defers destruction of values past a configurable effort
// threshold to a small pool of background workers. The only state shared
// with the command thread is the pending-object counter and the queue
// itself; once a value is handed to Reclaim, the command thread must
// never touch it again.
type Reclaimer struct {
	threshold int
	pending   atomic.Int64
	queue     *util.LockFreeMPSC[reclaimItem]

	pendingGauge metrics.Gauge
}

type reclaimItem struct {
	value *keyspace.Value
	db    *keyspace.DB
}

// New creates a Reclaimer with the given effort threshold and worker
// count (clamped to [1, maxWorkers]; 0 selects runtime.NumCPU()). Gauges
// tracking pending objects are registered under "lazyfree.pending" in
// registry if non-nil.
func New(threshold, workers int, registry metrics.Registry) *Reclaimer {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > maxWorkers {
		workers = maxWorkers
	}
	if workers < 1 {
		workers = 1
	}

	r := &Reclaimer{
		threshold: threshold,
		queue:     util.NewLockFreeMPSC[reclaimItem](),
	}
	if registry != nil {
		r.pendingGauge = metrics.NewRegisteredGauge("lazyfree.pending", registry)
	}

	for i := 0; i < workers; i++ {
		go r.work()
	}
	return r
}

// Pending returns the current number of objects awaiting background
// release.
func (r *Reclaimer) Pending() int64 { return r.pending.Load() }

// Reclaim decides whether v should be released inline or deferred. It
// returns true if v was handed to a background worker (the caller must
// not touch v again); false means the caller should free it itself (in
// Go, simply drop the reference and let the garbage collector do so).
func (r *Reclaimer) Reclaim(v *keyspace.Value) bool {
	if Effort(v) <= r.threshold {
		return false
	}
	r.enqueue(reclaimItem{value: v})
	return true
}

// ReclaimDB defers release of an entire swapped-out keyspace (the
// coarse-grained flush-async path): the caller must have already called
// DB.SwapForFlush and must not touch the returned snapshot again.
func (r *Reclaimer) ReclaimDB(old *keyspace.DB) {
	r.enqueue(reclaimItem{db: old})
}

func (r *Reclaimer) enqueue(item reclaimItem) {
	r.pending.Add(1)
	if r.pendingGauge != nil {
		r.pendingGauge.Update(r.pending.Load())
	}
	r.queue.Push(&item)
}

// work drains the queue, "releasing" each item (a no-op in a garbage
// collected runtime beyond walking the structure once, which is enough to
// fault in and drop every backing allocation before the counter ticks
// down) and decrementing the pending counter on completion.
func (r *Reclaimer) work() {
	for item := range r.queue.Recv() {
		release(*item)
		r.pending.Add(-1)
		if r.pendingGauge != nil {
			r.pendingGauge.Update(r.pending.Load())
		}
	}
}

func release(item reclaimItem) {
	switch {
	case item.value != nil:
		releaseValue(item.value)
	case item.db != nil:
		item.db.ForEachKey(func(_ string, v *keyspace.Value) {
			releaseValue(v)
		})
	}
}

func releaseValue(v *keyspace.Value) {
	if v == nil {
		return
	}
	switch v.Kind {
	case keyspace.KindList:
		for {
			if _, ok := v.List.Pop(0); !ok {
				break
			}
		}
	case keyspace.KindHash:
		var fields []string
		v.Hash.ForEach(func(field string, _ []byte) { fields = append(fields, field) })
		for _, f := range fields {
			v.Hash.Delete(f)
		}
	}
}

// Close stops accepting new work once the queue drains. Intended for
// tests and graceful shutdown; normal operation never calls it.
func (r *Reclaimer) Close() { r.queue.Close() }
