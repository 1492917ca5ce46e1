package hashvalue

import (
	"fmt"
	"testing"
)

func TestSetGetDelete(t *testing.T) {
	h := New(DefaultLimits)

	if r := h.Set("f1", []byte("v1")); r != Inserted {
		t.Fatalf("Set(f1) = %v, want Inserted", r)
	}
	if r := h.Set("f1", []byte("v1b")); r != Updated {
		t.Fatalf("Set(f1) again = %v, want Updated", r)
	}

	v, ok := h.Get("f1")
	if !ok || string(v) != "v1b" {
		t.Fatalf("Get(f1) = %q, %v; want v1b, true", v, ok)
	}

	if !h.Delete("f1") {
		t.Fatalf("Delete(f1) should succeed")
	}
	if h.Exists("f1") {
		t.Fatalf("f1 should no longer exist")
	}
}

func TestPromotionByEntryCount(t *testing.T) {
	h := New(Limits{MaxPackEntries: 128, MaxPackValue: 64})

	for i := 0; i < 129; i++ {
		h.Set(fmt.Sprintf("f%d", i), []byte(fmt.Sprintf("v%d", i)))
	}

	if !h.promoted() {
		t.Fatalf("hash should have promoted to table form after 129 entries")
	}
	if h.Len() != 129 {
		t.Fatalf("Len() = %d, want 129", h.Len())
	}

	for i := 0; i < 129; i++ {
		v, ok := h.Get(fmt.Sprintf("f%d", i))
		if !ok || string(v) != fmt.Sprintf("v%d", i) {
			t.Fatalf("Get(f%d) = %q, %v; want v%d, true", i, v, ok, i)
		}
	}
}

func TestPromotionByValueSize(t *testing.T) {
	h := New(Limits{MaxPackEntries: 128, MaxPackValue: 8})
	h.Set("f1", []byte("short"))
	if h.promoted() {
		t.Fatalf("small hash should not have promoted yet")
	}
	h.Set("f2", make([]byte, 9))
	if !h.promoted() {
		t.Fatalf("hash should promote once a value exceeds MaxPackValue")
	}
}

func TestIncrBy(t *testing.T) {
	h := New(DefaultLimits)

	n, err := h.IncrBy("counter", 5)
	if err != nil || n != 5 {
		t.Fatalf("IncrBy(counter, 5) = %d, %v; want 5, nil", n, err)
	}
	n, err = h.IncrBy("counter", -2)
	if err != nil || n != 3 {
		t.Fatalf("IncrBy(counter, -2) = %d, %v; want 3, nil", n, err)
	}

	h.Set("notanumber", []byte("abc"))
	if _, err := h.IncrBy("notanumber", 1); err != ErrNotANumber {
		t.Fatalf("IncrBy on non-numeric field = %v, want ErrNotANumber", err)
	}
}

func TestIncrByOverflow(t *testing.T) {
	h := New(DefaultLimits)
	h.Set("max", []byte("9223372036854775807"))
	if _, err := h.IncrBy("max", 1); err != ErrOverflow {
		t.Fatalf("IncrBy overflow = %v, want ErrOverflow", err)
	}
}

func TestIncrByFloat(t *testing.T) {
	h := New(DefaultLimits)
	n, err := h.IncrByFloat("f", 1.5)
	if err != nil || n != 1.5 {
		t.Fatalf("IncrByFloat(f, 1.5) = %v, %v; want 1.5, nil", n, err)
	}
	n, err = h.IncrByFloat("f", 2.25)
	if err != nil || n != 3.75 {
		t.Fatalf("IncrByFloat(f, 2.25) = %v, %v; want 3.75, nil", n, err)
	}
}

func TestForEachVisitsAllPairs(t *testing.T) {
	h := New(Limits{MaxPackEntries: 4, MaxPackValue: 64})
	want := map[string]string{}
	for i := 0; i < 20; i++ {
		k := fmt.Sprintf("f%d", i)
		v := fmt.Sprintf("v%d", i)
		h.Set(k, []byte(v))
		want[k] = v
	}

	got := map[string]string{}
	h.ForEach(func(field string, value []byte) {
		got[field] = string(value)
	})

	if len(got) != len(want) {
		t.Fatalf("ForEach visited %d pairs, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("ForEach[%q] = %q, want %q", k, got[k], v)
		}
	}
}
