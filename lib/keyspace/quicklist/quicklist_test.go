package quicklist

import (
	"fmt"
	"testing"
)

func collect(q *QuickList) []string {
	out := make([]string, 0, q.Count())
	it, ok := q.NewIterator(0, Forward)
	if !ok {
		return out
	}
	for {
		v, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, string(v))
	}
	return out
}

func TestPushPopBasic(t *testing.T) {
	q := New(FillPolicy(128), 0)

	q.PushTail([]byte("b"))
	q.PushTail([]byte("c"))
	q.PushHead([]byte("a"))

	if q.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", q.Count())
	}

	got := collect(q)
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("collect() = %v, want %v", got, want)
		}
	}

	v, ok := q.PopHead()
	if !ok || string(v) != "a" {
		t.Fatalf("PopHead() = %q, %v; want a, true", v, ok)
	}
	v, ok = q.PopTail()
	if !ok || string(v) != "c" {
		t.Fatalf("PopTail() = %q, %v; want c, true", v, ok)
	}
	if q.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", q.Count())
	}
}

func TestIndexNegative(t *testing.T) {
	q := New(FillPolicy(128), 0)
	for i := 0; i < 10; i++ {
		q.PushTail([]byte(fmt.Sprintf("%d", i)))
	}
	v, ok := q.ValueAt(-1)
	if !ok || string(v) != "9" {
		t.Fatalf("ValueAt(-1) = %q, %v; want 9, true", v, ok)
	}
	v, ok = q.ValueAt(-10)
	if !ok || string(v) != "0" {
		t.Fatalf("ValueAt(-10) = %q, %v; want 0, true", v, ok)
	}
	if _, ok := q.ValueAt(-11); ok {
		t.Fatalf("ValueAt(-11) should be out of range")
	}
}

func TestSplitOnSmallFill(t *testing.T) {
	// fill=2 forces a new node every 2 elements, exercising the split path.
	q := New(FillPolicy(2), 0)
	for i := 0; i < 9; i++ {
		q.PushTail([]byte(fmt.Sprintf("%d", i)))
	}

	if q.Count() != 9 {
		t.Fatalf("Count() = %d, want 9", q.Count())
	}
	if q.nodeCount() < 4 {
		t.Fatalf("nodeCount() = %d, expected split into multiple nodes", q.nodeCount())
	}

	got := collect(q)
	for i := 0; i < 9; i++ {
		if got[i] != fmt.Sprintf("%d", i) {
			t.Fatalf("collect()[%d] = %q, want %q", i, got[i], fmt.Sprintf("%d", i))
		}
	}
}

func TestInsertBeforeAfter(t *testing.T) {
	q := New(FillPolicy(128), 0)
	q.PushTail([]byte("a"))
	q.PushTail([]byte("c"))

	e, ok := q.Index(1)
	if !ok {
		t.Fatalf("Index(1) not found")
	}
	q.InsertBefore(e, []byte("b"))

	got := collect(q)
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("collect() = %v, want %v", got, want)
		}
	}

	e, _ = q.Index(2)
	q.InsertAfter(e, []byte("d"))
	got = collect(q)
	want = []string{"a", "b", "c", "d"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("collect() = %v, want %v", got, want)
		}
	}
}

func TestDelRange(t *testing.T) {
	q := New(FillPolicy(3), 0)
	for i := 0; i < 10; i++ {
		q.PushTail([]byte(fmt.Sprintf("%d", i)))
	}

	removed := q.DelRange(2, 3)
	if removed != 3 {
		t.Fatalf("DelRange removed %d, want 3", removed)
	}
	got := collect(q)
	want := []string{"0", "1", "5", "6", "7", "8", "9"}
	if len(got) != len(want) {
		t.Fatalf("collect() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("collect() = %v, want %v", got, want)
		}
	}
}

func TestDeleteViaIterForward(t *testing.T) {
	q := New(FillPolicy(3), 0)
	for i := 0; i < 6; i++ {
		q.PushTail([]byte(fmt.Sprintf("%d", i)))
	}

	it, _ := q.NewIterator(0, Forward)
	for {
		v, ok := it.Next()
		if !ok {
			break
		}
		if string(v) == "2" || string(v) == "3" {
			it.DeleteViaIter()
		}
	}

	got := collect(q)
	want := []string{"0", "1", "4", "5"}
	if len(got) != len(want) {
		t.Fatalf("collect() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("collect() = %v, want %v", got, want)
		}
	}
}

func TestCompressDepthKeepsEndsRaw(t *testing.T) {
	q := New(FillPolicy(2), 1)
	for i := 0; i < 20; i++ {
		q.PushTail([]byte(fmt.Sprintf("item-%d", i)))
	}

	if q.head.isCompressed() {
		t.Fatalf("head node must stay raw under compress depth")
	}
	if q.tail.isCompressed() {
		t.Fatalf("tail node must stay raw under compress depth")
	}
}

func TestReplaceAt(t *testing.T) {
	q := New(FillPolicy(128), 0)
	q.PushTail([]byte("a"))
	q.PushTail([]byte("b"))
	q.PushTail([]byte("c"))

	if !q.ReplaceAt(1, []byte("B")) {
		t.Fatalf("ReplaceAt(1) should succeed")
	}
	got := collect(q)
	want := []string{"a", "B", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("collect() = %v, want %v", got, want)
		}
	}

	if q.ReplaceAt(10, []byte("x")) {
		t.Fatalf("ReplaceAt out of range should fail")
	}
}

func TestPlainNodeForLargeValue(t *testing.T) {
	q := New(FillPolicy(128), 0)
	big := make([]byte, plainThreshold+1)
	q.PushTail(big)
	q.PushTail([]byte("small"))

	if !q.head.plain {
		t.Fatalf("oversized element should live in a plain node")
	}
	got := collect(q)
	if len(got) != 2 || len(got[0]) != len(big) || got[1] != "small" {
		t.Fatalf("unexpected collect() result around plain node")
	}
}
