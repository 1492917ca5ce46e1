package lazyfree

import (
	"testing"
	"time"

	"github.com/kvquill/quill/lib/keyspace"
	"github.com/kvquill/quill/lib/keyspace/listvalue"
)

func TestEffortSmallListIsInline(t *testing.T) {
	db := keyspace.New()
	l, _ := db.GetOrCreateList("k", 128, 0)
	l.Push(listvalue.Tail, []byte("v"))
	v, _ := db.Get("k")

	r := New(DefaultThreshold, 1, nil)
	defer r.Close()

	if r.Reclaim(v) {
		t.Fatalf("a one-node list should be released inline, not deferred")
	}
}

func TestEffortLargeListIsDeferred(t *testing.T) {
	db := keyspace.New()
	// fill=1 forces one element per node so NodeCount() tracks element count.
	l, _ := db.GetOrCreateList("k", 1, 0)
	for i := 0; i < 100; i++ {
		l.Push(listvalue.Tail, []byte("x"))
	}
	v, _ := db.Get("k")

	r := New(64, 2, nil)
	defer r.Close()

	if !r.Reclaim(v) {
		t.Fatalf("a 100-node list should be deferred past the threshold")
	}

	deadline := time.Now().Add(time.Second)
	for r.Pending() != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if r.Pending() != 0 {
		t.Fatalf("pending counter did not drain to zero")
	}
}

func TestReclaimDB(t *testing.T) {
	db := keyspace.New()
	l, _ := db.GetOrCreateList("k", 1, 0)
	for i := 0; i < 10; i++ {
		l.Push(listvalue.Tail, []byte("x"))
	}

	old := db.SwapForFlush()
	if db.Has("k") {
		t.Fatalf("key should be gone from the live db after SwapForFlush")
	}

	r := New(1, 1, nil)
	defer r.Close()
	r.ReclaimDB(old)

	deadline := time.Now().Add(time.Second)
	for r.Pending() != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if r.Pending() != 0 {
		t.Fatalf("pending counter did not drain to zero after ReclaimDB")
	}
}
