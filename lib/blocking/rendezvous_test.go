package blocking

import (
	"testing"
	"time"

	"github.com/kvquill/quill/lib/keyspace"
	"github.com/kvquill/quill/lib/keyspace/listvalue"
)

func TestImmediatePopWhenListNonEmpty(t *testing.T) {
	db := keyspace.New()
	l, _ := db.GetOrCreateList("k", 128, 0)
	l.Push(listvalue.Tail, []byte("v"))

	r := New(db, 128, 0)
	c := NewClient("c1")

	reply, blocked := r.BlockingPop(c, []string{"k"}, listvalue.Head, time.Second, "", listvalue.Head, false)
	if blocked {
		t.Fatalf("BlockingPop should not block when the list is non-empty")
	}
	if reply.Nil || reply.Key != "k" || string(reply.Value) != "v" {
		t.Fatalf("reply = %+v, want immediate pop of v from k", reply)
	}
}

func TestBlockThenDeliverOnPush(t *testing.T) {
	db := keyspace.New()
	r := New(db, 128, 0)
	c := NewClient("c1")

	reply, blocked := r.BlockingPop(c, []string{"k"}, listvalue.Head, time.Second, "", listvalue.Head, false)
	if !blocked || reply != nil {
		t.Fatalf("BlockingPop should block on an absent key")
	}
	if !c.Blocked() {
		t.Fatalf("client should be marked blocked")
	}

	l, _ := db.GetOrCreateList("k", 128, 0)
	l.Push(listvalue.Tail, []byte("v"))
	db.AfterListMutation("k", "rpush")

	r.ProcessReadyKeys()

	select {
	case got := <-c.Deliver:
		if got.Nil || got.Key != "k" || string(got.Value) != "v" {
			t.Fatalf("delivered reply = %+v, want v from k", got)
		}
	default:
		t.Fatalf("expected a delivered reply after ProcessReadyKeys")
	}
	if c.Blocked() {
		t.Fatalf("client should no longer be blocked after delivery")
	}
}

func TestFIFOOrderAcrossWaiters(t *testing.T) {
	db := keyspace.New()
	r := New(db, 128, 0)
	c1 := NewClient("c1")
	c2 := NewClient("c2")

	r.BlockingPop(c1, []string{"k"}, listvalue.Head, time.Second, "", listvalue.Head, false)
	r.BlockingPop(c2, []string{"k"}, listvalue.Head, time.Second, "", listvalue.Head, false)

	l, _ := db.GetOrCreateList("k", 128, 0)
	l.Push(listvalue.Tail, []byte("first"))
	l.Push(listvalue.Tail, []byte("second"))
	db.AfterListMutation("k", "rpush")

	r.ProcessReadyKeys()

	got1 := <-c1.Deliver
	got2 := <-c2.Deliver
	if string(got1.Value) != "first" {
		t.Fatalf("first-blocked client got %q, want first", got1.Value)
	}
	if string(got2.Value) != "second" {
		t.Fatalf("second-blocked client got %q, want second", got2.Value)
	}
}

func TestBRPOPLPUSHDeliversToTarget(t *testing.T) {
	db := keyspace.New()
	r := New(db, 128, 0)
	c := NewClient("c1")

	r.BlockingPop(c, []string{"src"}, listvalue.Tail, time.Second, "dst", listvalue.Head, false)

	l, _ := db.GetOrCreateList("src", 128, 0)
	l.Push(listvalue.Tail, []byte("v"))
	db.AfterListMutation("src", "rpush")

	r.ProcessReadyKeys()

	got := <-c.Deliver
	if got.Err != nil || string(got.Value) != "v" {
		t.Fatalf("delivery = %+v, want v with no error", got)
	}

	dst, ok := db.Get("dst")
	if !ok || dst.Kind != keyspace.KindList || dst.List.Len() != 1 {
		t.Fatalf("target list was not populated")
	}
	v, _ := dst.List.Index(0)
	if string(v) != "v" {
		t.Fatalf("target list head = %q, want v", v)
	}
}

func TestBRPOPLPUSHWrongTypeTargetAbortsAndRollsBack(t *testing.T) {
	db := keyspace.New()
	db.Set("dst", &keyspace.Value{Kind: keyspace.KindString, Str: []byte("not-a-list")})

	r := New(db, 128, 0)
	c := NewClient("c1")
	r.BlockingPop(c, []string{"src"}, listvalue.Tail, time.Second, "dst", listvalue.Head, false)

	l, _ := db.GetOrCreateList("src", 128, 0)
	l.Push(listvalue.Tail, []byte("v"))
	db.AfterListMutation("src", "rpush")

	r.ProcessReadyKeys()

	got := <-c.Deliver
	if got.Err != ErrWrongType {
		t.Fatalf("delivery error = %v, want ErrWrongType", got.Err)
	}

	src, ok := db.Get("src")
	if !ok || src.List.Len() != 1 {
		t.Fatalf("popped element should have been pushed back onto src on abort")
	}
}

// TestProcessReadyKeysServesReentrantTargetInSamePass reproduces: C1 blocks
// BLPOP dst, C2 blocks BRPOPLPUSH src dst, then a non-blocking RPUSH src v
// marks src ready. Serving C2 pops from src and pushes v onto dst, which
// itself becomes ready - that must be served within this same
// ProcessReadyKeys call so C1 sees it immediately, not on some future call.
func TestProcessReadyKeysServesReentrantTargetInSamePass(t *testing.T) {
	db := keyspace.New()
	r := New(db, 128, 0)
	c1 := NewClient("c1")
	c2 := NewClient("c2")

	if _, blocked := r.BlockingPop(c1, []string{"dst"}, listvalue.Head, time.Second, "", listvalue.Head, false); !blocked {
		t.Fatalf("c1 should block on absent dst")
	}
	if _, blocked := r.BlockingPop(c2, []string{"src"}, listvalue.Tail, time.Second, "dst", listvalue.Head, false); !blocked {
		t.Fatalf("c2 should block on absent src")
	}

	l, _ := db.GetOrCreateList("src", 128, 0)
	l.Push(listvalue.Tail, []byte("v"))
	db.AfterListMutation("src", "rpush")

	r.ProcessReadyKeys()

	select {
	case got := <-c2.Deliver:
		if got.Err != nil || string(got.Value) != "v" {
			t.Fatalf("c2 delivery = %+v, want v with no error", got)
		}
	default:
		t.Fatalf("c2 should have been served by the same ProcessReadyKeys call")
	}

	select {
	case got := <-c1.Deliver:
		if got.Err != nil || got.Key != "dst" || string(got.Value) != "v" {
			t.Fatalf("c1 delivery = %+v, want v from dst with no error", got)
		}
	default:
		t.Fatalf("c1 should have been served in the same ProcessReadyKeys call dst's delivery re-entered, not on a later call")
	}
}

func TestTimeoutDeliversNil(t *testing.T) {
	db := keyspace.New()
	r := New(db, 128, 0)
	c := NewClient("c1")

	r.BlockingPop(c, []string{"k"}, listvalue.Head, time.Millisecond, "", listvalue.Head, false)
	r.ExpireTimeouts(time.Now().Add(time.Second))

	got := <-c.Deliver
	if !got.Nil {
		t.Fatalf("timed-out client should get a nil reply, got %+v", got)
	}
	if c.Blocked() {
		t.Fatalf("client should be unblocked after timeout")
	}
}

func TestDisconnectCleansUpFifo(t *testing.T) {
	db := keyspace.New()
	r := New(db, 128, 0)
	c := NewClient("c1")

	r.BlockingPop(c, []string{"k"}, listvalue.Head, time.Second, "", listvalue.Head, false)
	r.Disconnect(c)

	if db.IsBlocking("k") {
		t.Fatalf("key should no longer be marked blocking after disconnect")
	}
	if len(r.fifos["k"]) != 0 {
		t.Fatalf("fifo for k should be empty after disconnect")
	}
}
