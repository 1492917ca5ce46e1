package hashtable

import (
	"strconv"
	"testing"

	"github.com/cespare/xxhash/v2"
)

func stringPolicy() Policy[string, int] {
	return Policy[string, int]{
		Hash:  func(k string) uint64 { return xxhash.Sum64String(k) },
		Equal: func(a, b string) bool { return a == b },
	}
}

func TestAddFindDelete(t *testing.T) {
	h := New(stringPolicy())

	if err := h.Add("a", 1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := h.Add("a", 2); err == nil {
		t.Fatalf("expected ErrKeyExists on duplicate Add")
	}

	e, ok := h.Find("a")
	if !ok || e.Value() != 1 {
		t.Fatalf("Find(a) = %v, %v; want 1, true", e, ok)
	}

	if _, ok := h.Find("missing"); ok {
		t.Fatalf("Find(missing) should not be found")
	}

	if !h.Delete("a") {
		t.Fatalf("Delete(a) should succeed")
	}
	if h.Delete("a") {
		t.Fatalf("second Delete(a) should report false")
	}
}

func TestReplace(t *testing.T) {
	h := New(stringPolicy())

	if r := h.Replace("a", 1); r != Inserted {
		t.Fatalf("first Replace should insert, got %v", r)
	}
	if r := h.Replace("a", 2); r != Updated {
		t.Fatalf("second Replace should update, got %v", r)
	}

	e, ok := h.Find("a")
	if !ok || e.Value() != 2 {
		t.Fatalf("Find(a) after Replace = %v, %v; want 2, true", e, ok)
	}
}

func TestGrowthTriggersRehash(t *testing.T) {
	h := New(stringPolicy())

	const n = 1000
	for i := 0; i < n; i++ {
		if err := h.Add(strconv.Itoa(i), i); err != nil {
			t.Fatalf("Add(%d): %v", i, err)
		}
	}

	if h.Used() != n {
		t.Fatalf("Used() = %d, want %d", h.Used(), n)
	}

	// Finish any pending rehash explicitly and verify every key is still
	// reachable afterward.
	h.RehashForMs(1000)
	if h.IsRehashing() {
		t.Fatalf("table should have finished rehashing")
	}

	for i := 0; i < n; i++ {
		e, ok := h.Find(strconv.Itoa(i))
		if !ok || e.Value() != i {
			t.Fatalf("Find(%d) = %v, %v; want %d, true", i, e, ok, i)
		}
	}
}

func TestDeleteDuringRehash(t *testing.T) {
	h := New(stringPolicy())

	const n = 500
	for i := 0; i < n; i++ {
		_ = h.Add(strconv.Itoa(i), i)
	}
	if !h.IsRehashing() {
		// Force it so the test is meaningful regardless of the exact
		// growth threshold.
		_ = h.Expand(h.tabs[0].size() * 2)
	}

	for i := 0; i < n; i += 2 {
		if !h.Delete(strconv.Itoa(i)) {
			t.Fatalf("Delete(%d) failed mid-rehash", i)
		}
	}

	for i := 0; i < n; i++ {
		_, ok := h.Find(strconv.Itoa(i))
		want := i%2 != 0
		if ok != want {
			t.Fatalf("Find(%d) = %v, want %v", i, ok, want)
		}
	}
}

func TestScanVisitsEveryStableKey(t *testing.T) {
	h := New(stringPolicy())

	const n = 2000
	for i := 0; i < n; i++ {
		_ = h.Add(strconv.Itoa(i), i)
	}

	seen := make(map[string]int)
	cursor := uint64(0)
	iterations := 0
	for {
		cursor = h.Scan(cursor, func(e *Entry[string, int]) {
			seen[e.Key()]++
		})
		iterations++
		if cursor == 0 {
			break
		}
		if iterations > n*4 {
			t.Fatalf("scan did not terminate")
		}
	}

	for i := 0; i < n; i++ {
		if seen[strconv.Itoa(i)] == 0 {
			t.Fatalf("key %d never visited by scan", i)
		}
	}
}

func TestGetRandomEntry(t *testing.T) {
	h := New(stringPolicy())

	if _, ok := h.GetRandomEntry(); ok {
		t.Fatalf("empty table should not yield a random entry")
	}

	for i := 0; i < 100; i++ {
		_ = h.Add(strconv.Itoa(i), i)
	}

	for i := 0; i < 50; i++ {
		e, ok := h.GetRandomEntry()
		if !ok {
			t.Fatalf("expected a random entry from a non-empty table")
		}
		if e.Value() < 0 || e.Value() >= 100 {
			t.Fatalf("random entry value out of range: %d", e.Value())
		}
	}
}

func TestUnlinkHandsOffOwnership(t *testing.T) {
	freed := 0
	h := New(Policy[string, int]{
		Hash:    func(k string) uint64 { return xxhash.Sum64String(k) },
		Equal:   func(a, b string) bool { return a == b },
		FreeVal: func(int) { freed++ },
	})

	_ = h.Add("a", 1)
	e, ok := h.Unlink("a")
	if !ok || e.Value() != 1 {
		t.Fatalf("Unlink(a) = %v, %v; want 1, true", e, ok)
	}
	if freed != 0 {
		t.Fatalf("Unlink must not invoke FreeVal, got %d calls", freed)
	}

	_ = h.Add("b", 2)
	h.Delete("b")
	if freed != 1 {
		t.Fatalf("Delete must invoke FreeVal exactly once, got %d", freed)
	}
}

func TestSafeIteratorInhibitsRehash(t *testing.T) {
	h := New(stringPolicy())
	for i := 0; i < 4; i++ {
		_ = h.Add("k"+strconv.Itoa(i), i)
	}
	if err := h.Expand(8); err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if !h.IsRehashing() {
		t.Fatalf("expected table to be mid-rehash right after Expand")
	}

	it := h.NewSafeIterator()
	if got := h.ActiveIterators(); got != 1 {
		t.Fatalf("ActiveIterators() = %d, want 1 while a safe iterator is open", got)
	}

	beforeIdx := h.rehashIdx
	_ = h.Add("trigger-step", 999)
	if h.rehashIdx != beforeIdx {
		t.Fatalf("rehash advanced while a safe iterator was open: %d -> %d", beforeIdx, h.rehashIdx)
	}

	it.Close()
	if got := h.ActiveIterators(); got != 0 {
		t.Fatalf("ActiveIterators() = %d, want 0 after Close", got)
	}
}

func TestSafeIteratorVisitsEveryKey(t *testing.T) {
	h := New(stringPolicy())
	want := map[string]int{}
	for i := 0; i < 10; i++ {
		k := "k" + strconv.Itoa(i)
		_ = h.Add(k, i)
		want[k] = i
	}

	it := h.NewSafeIterator()
	got := map[string]int{}
	for {
		e, ok := it.Next()
		if !ok {
			break
		}
		got[e.Key()] = e.Value()
	}
	it.Close()

	if len(got) != len(want) {
		t.Fatalf("safe iterator visited %d keys, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("safe iterator entry %q = %d, want %d", k, got[k], v)
		}
	}
}

func TestUnsafeIteratorAssertsOnMutation(t *testing.T) {
	h := New(stringPolicy())
	_ = h.Add("a", 1)

	it := h.NewUnsafeIterator()
	_ = h.Add("b", 2)

	defer func() {
		if recover() == nil {
			t.Fatalf("Close should panic: table mutated while an unsafe iterator was open")
		}
	}()
	it.Close()
}

func TestUnsafeIteratorClosesCleanlyWithoutMutation(t *testing.T) {
	h := New(stringPolicy())
	_ = h.Add("a", 1)
	_ = h.Add("b", 2)

	it := h.NewUnsafeIterator()
	count := 0
	for {
		if _, ok := it.Next(); !ok {
			break
		}
		count++
	}
	if count != 2 {
		t.Fatalf("unsafe iterator visited %d entries, want 2", count)
	}
	it.Close() // must not panic
}
