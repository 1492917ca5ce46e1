package util

import (
	"container/heap"
	"sort"
	"testing"
)

func TestNewMapHeap(t *testing.T) {
	mh := NewMapHeap[uint64]()

	if mh == nil {
		t.Fatal("NewMapHeap() returned nil")
	}

	if mh.Len() != 0 {
		t.Errorf("New heap should be empty, but has length %d", mh.Len())
	}

	if len(mh.itemsMap) != 0 {
		t.Errorf("New heap's map should be empty, but has %d items", len(mh.itemsMap))
	}
}

func TestMapHeapAddItem(t *testing.T) {
	mh := NewMapHeap[uint64]()

	mh.AddItem(1, 100)
	mh.AddItem(2, 200)
	mh.AddItem(3, 50)

	if mh.Len() != 3 {
		t.Errorf("Heap should have 3 items, but has %d", mh.Len())
	}

	if !mh.Contains(1) || !mh.Contains(2) || !mh.Contains(3) {
		t.Error("Heap should contain keys 1, 2 and 3")
	}

	key, priority, ok := mh.Peek()
	if !ok {
		t.Fatal("Peek() should return an item")
	}
	if key != 3 || priority != 50 {
		t.Errorf("Expected min item to be (3,50), got (%d,%d)", key, priority)
	}
}

func TestMapHeapUpdateItem(t *testing.T) {
	mh := NewMapHeap[uint64]()

	mh.AddItem(1, 100)
	mh.AddItem(2, 200)

	mh.AddItem(1, 300) // raise priority of item 1

	priority, ok := mh.GetPriority(1)
	if !ok {
		t.Fatal("key 1 should exist")
	}
	if priority != 300 {
		t.Errorf("key 1 should have priority 300, got %d", priority)
	}

	minKey, _, _ := mh.Peek()
	if minKey != 2 {
		t.Errorf("min item should now be key 2, got %d", minKey)
	}

	mh.AddItem(2, 50)

	minKey, minPriority, _ := mh.Peek()
	if minKey != 2 || minPriority != 50 {
		t.Errorf("min item should now be (2,50), got (%d,%d)", minKey, minPriority)
	}
}

func TestMapHeapRemoveByKey(t *testing.T) {
	mh := NewMapHeap[uint64]()

	mh.AddItem(1, 100)
	mh.AddItem(2, 200)
	mh.AddItem(3, 300)

	priority, ok := mh.RemoveByKey(2)
	if !ok {
		t.Fatal("RemoveByKey should return true for existing key")
	}
	if priority != 200 {
		t.Errorf("RemoveByKey should return priority 200, got %d", priority)
	}
	if mh.Len() != 2 {
		t.Errorf("heap should have 2 items after removal, has %d", mh.Len())
	}
	if mh.Contains(2) {
		t.Error("heap should not contain key 2 after removal")
	}

	if _, ok := mh.RemoveByKey(99); ok {
		t.Error("RemoveByKey should return false for non-existent key")
	}
}

func TestMapHeapPopOrder(t *testing.T) {
	mh := NewMapHeap[uint64]()
	heap.Init(mh)

	entries := []struct {
		key      uint64
		priority uint64
	}{
		{5, 50},
		{3, 30},
		{1, 10},
		{4, 40},
		{2, 20},
	}

	for _, e := range entries {
		mh.AddItem(e.key, e.priority)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].priority < entries[j].priority })

	for i, expected := range entries {
		if mh.Len() == 0 {
			t.Fatalf("heap empty after %d items, expected %d items", i, len(entries))
		}
		it := heap.Pop(mh).(*item[uint64])
		if it.Key != expected.key || it.Priority != expected.priority {
			t.Errorf("pop %d: expected (%d,%d), got (%d,%d)", i, expected.key, expected.priority, it.Key, it.Priority)
		}
	}

	if mh.Len() != 0 {
		t.Errorf("heap should be empty after popping all items, has %d items", mh.Len())
	}
}

func TestMapHeapPeekEmpty(t *testing.T) {
	mh := NewMapHeap[uint64]()

	if _, _, ok := mh.Peek(); ok {
		t.Error("Peek on empty heap should return ok=false")
	}
}

func TestMapHeapGetPriority(t *testing.T) {
	mh := NewMapHeap[uint64]()

	mh.AddItem(1, 100)
	mh.AddItem(2, 200)

	priority, ok := mh.GetPriority(1)
	if !ok || priority != 100 {
		t.Errorf("GetPriority(1) = (%d,%v), want (100,true)", priority, ok)
	}

	if _, ok := mh.GetPriority(99); ok {
		t.Error("GetPriority should return ok=false for non-existent key")
	}
}

func TestMapHeapStringKeys(t *testing.T) {
	mh := NewMapHeap[string]()

	mh.AddItem("z", 30)
	mh.AddItem("a", 10)
	mh.AddItem("m", 20)

	key, priority, ok := mh.Peek()
	if !ok || key != "a" || priority != 10 {
		t.Errorf("Peek() = (%s,%d,%v), want (a,10,true)", key, priority, ok)
	}
}
