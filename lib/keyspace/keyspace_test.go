package keyspace

import (
	"testing"

	"github.com/kvquill/quill/lib/keyspace/hashvalue"
)

func TestSetGetDelete(t *testing.T) {
	db := New()

	db.Set("k", &Value{Kind: KindString, Str: []byte("v")})
	v, ok := db.Get("k")
	if !ok || string(v.Str) != "v" {
		t.Fatalf("Get(k) = %v, %v; want v, true", v, ok)
	}

	if !db.Delete("k") {
		t.Fatalf("Delete(k) should succeed")
	}
	if db.Has("k") {
		t.Fatalf("k should no longer exist")
	}
}

func TestExpireLazyEviction(t *testing.T) {
	db := New()
	db.Set("k", &Value{Kind: KindString, Str: []byte("v")})
	db.Expire("k", 1000)

	if _, ok := db.LookupForRead("k", 500); !ok {
		t.Fatalf("key should still be live before its deadline")
	}
	if _, ok := db.LookupForRead("k", 1500); ok {
		t.Fatalf("key should have lazily expired")
	}
	if db.Has("k") {
		t.Fatalf("expired key should have been evicted from dict")
	}
}

func TestGetOrCreateListTypeMismatch(t *testing.T) {
	db := New()
	db.Set("k", &Value{Kind: KindString, Str: []byte("v")})

	if _, ok := db.GetOrCreateList("k", 128, 0); ok {
		t.Fatalf("GetOrCreateList should fail on a string key")
	}
}

func TestAfterListMutationMarksReady(t *testing.T) {
	db := New()
	db.MarkBlocking("k")

	l, ok := db.GetOrCreateList("k", 128, 0)
	if !ok {
		t.Fatalf("GetOrCreateList(k) failed")
	}
	l.Push(0, []byte("x"))
	db.AfterListMutation("k", "lpush")

	ready := db.DrainReadyKeys()
	if len(ready) != 1 || ready[0] != "k" {
		t.Fatalf("DrainReadyKeys() = %v, want [k]", ready)
	}

	// draining clears the index so a second drain is empty
	if got := db.DrainReadyKeys(); len(got) != 0 {
		t.Fatalf("second DrainReadyKeys() = %v, want empty", got)
	}
}

func TestAfterListMutationIgnoresNonBlockedKeys(t *testing.T) {
	db := New()
	l, _ := db.GetOrCreateList("k", 128, 0)
	l.Push(0, []byte("x"))
	db.AfterListMutation("k", "lpush")

	if got := db.DrainReadyKeys(); len(got) != 0 {
		t.Fatalf("DrainReadyKeys() = %v, want empty when nobody is blocked", got)
	}
}

func TestDeleteIfEmptyList(t *testing.T) {
	db := New()
	l, _ := db.GetOrCreateList("k", 128, 0)
	l.Push(0, []byte("x"))
	l.Pop(0)

	db.DeleteIfEmptyList("k")
	if db.Has("k") {
		t.Fatalf("empty list should have been deleted")
	}
}

func TestGetOrCreateHash(t *testing.T) {
	db := New()
	h, ok := db.GetOrCreateHash("k", hashvalue.DefaultLimits)
	if !ok {
		t.Fatalf("GetOrCreateHash(k) failed")
	}
	h.Set("f", []byte("v"))

	h2, ok := db.GetOrCreateHash("k", hashvalue.DefaultLimits)
	if !ok || h2 != h {
		t.Fatalf("GetOrCreateHash should return the same hash on the second call")
	}
}

func TestNotifyFunc(t *testing.T) {
	db := New()
	var got []Event
	db.SetNotifyFunc(func(e Event) { got = append(got, e) })

	db.Set("k", &Value{Kind: KindString, Str: []byte("v")})
	db.Delete("k")

	if len(got) != 1 || got[0].Name != "del" || got[0].Key != "k" {
		t.Fatalf("notify events = %v, want one del(k)", got)
	}
}
