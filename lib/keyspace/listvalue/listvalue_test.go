package listvalue

import (
	"fmt"
	"testing"
)

func TestPushPopAndLen(t *testing.T) {
	l := New(128, 0)

	l.Push(Tail, []byte("a"))
	l.Push(Tail, []byte("b"))
	l.Push(Head, []byte("z"))

	if l.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", l.Len())
	}

	v, ok := l.Pop(Head)
	if !ok || string(v) != "z" {
		t.Fatalf("Pop(Head) = %q, %v; want z, true", v, ok)
	}
	if l.Empty() {
		t.Fatalf("list should not be empty yet")
	}
}

func TestRangeAndTrim(t *testing.T) {
	l := New(128, 0)
	for i := 0; i < 10; i++ {
		l.Push(Tail, []byte(fmt.Sprintf("%d", i)))
	}

	got := l.Range(2, 5)
	want := []string{"2", "3", "4", "5"}
	if len(got) != len(want) {
		t.Fatalf("Range(2,5) = %v, want %v", got, want)
	}
	for i := range want {
		if string(got[i]) != want[i] {
			t.Fatalf("Range(2,5)[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	l.Trim(2, 5)
	if l.Len() != 4 {
		t.Fatalf("Len() after Trim = %d, want 4", l.Len())
	}
	got = l.Range(0, -1)
	for i := range want {
		if string(got[i]) != want[i] {
			t.Fatalf("Range(0,-1) after Trim = %v, want %v", got, want)
		}
	}
}

func TestInsertAtPivot(t *testing.T) {
	l := New(128, 0)
	l.Push(Tail, []byte("a"))
	l.Push(Tail, []byte("c"))

	if !l.InsertAt([]byte("c"), Before, []byte("b")) {
		t.Fatalf("InsertAt(pivot=c, Before) should find the pivot")
	}
	got := l.Range(0, -1)
	want := []string{"a", "b", "c"}
	for i := range want {
		if string(got[i]) != want[i] {
			t.Fatalf("Range() = %v, want %v", got, want)
		}
	}

	if l.InsertAt([]byte("missing"), Before, []byte("x")) {
		t.Fatalf("InsertAt with missing pivot should fail")
	}
}

func TestRemove(t *testing.T) {
	l := New(128, 0)
	for _, v := range []string{"a", "b", "a", "c", "a"} {
		l.Push(Tail, []byte(v))
	}

	removed := l.Remove([]byte("a"), 2)
	if removed != 2 {
		t.Fatalf("Remove(a, 2) removed %d, want 2", removed)
	}
	got := l.Range(0, -1)
	want := []string{"b", "c", "a"}
	if len(got) != len(want) {
		t.Fatalf("Range() = %v, want %v", got, want)
	}
	for i := range want {
		if string(got[i]) != want[i] {
			t.Fatalf("Range() = %v, want %v", got, want)
		}
	}
}

func TestRemoveAllFromTail(t *testing.T) {
	l := New(128, 0)
	for _, v := range []string{"a", "b", "a", "c", "a"} {
		l.Push(Tail, []byte(v))
	}

	removed := l.Remove([]byte("a"), 0)
	if removed != 3 {
		t.Fatalf("Remove(a, 0) removed %d, want 3", removed)
	}
	got := l.Range(0, -1)
	want := []string{"b", "c"}
	if len(got) != len(want) {
		t.Fatalf("Range() = %v, want %v", got, want)
	}
}
