// Package util
//
// This file provides a specialized priority queue combining a binary heap
// with a hash map, giving both efficient priority-based operations and
// O(1) key-based access to the same items. It is generic over the key type
// so it can back things like a deadline-ordered expiry index (key: the
// stored key, priority: the deadline) as well as the original
// object-id/age garbage-collection use case.
//
// Time complexity:
//   - O(log n) for priority operations (Push, Pop, Update)
//   - O(1) for key-based lookups and existence checks
//   - O(log n) for key-based removal
//
// Not thread-safe; callers needing concurrent access must synchronize
// externally.
package util

import (
	"container/heap"
)

// item is one entry in a MapHeap, addressable both by heap position and by
// key.
type item[K comparable] struct {
	Key      K      // identifies the item for key-based access
	Priority uint64 // orders the item in the heap; lower sorts first
	index    int    // position in the heap, maintained by container/heap
}

// MapHeap is a min-heap ordered by Priority with O(1) key-based lookup and
// removal layered on top.
type MapHeap[K comparable] struct {
	items    []*item[K]
	itemsMap map[K]*item[K]
}

// NewMapHeap creates an empty MapHeap.
func NewMapHeap[K comparable]() *MapHeap[K] {
	return &MapHeap[K]{
		items:    make([]*item[K], 0),
		itemsMap: make(map[K]*item[K]),
	}
}

// Len returns the number of items in the queue (part of heap.Interface).
func (h *MapHeap[K]) Len() int { return len(h.items) }

// Less compares items by priority (part of heap.Interface).
func (h *MapHeap[K]) Less(i, j int) bool {
	return h.items[i].Priority < h.items[j].Priority
}

// Swap exchanges items at positions i and j (part of heap.Interface).
func (h *MapHeap[K]) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.items[i].index = i
	h.items[j].index = j
}

// Push adds an item to the heap (part of heap.Interface; use AddItem).
func (h *MapHeap[K]) Push(x interface{}) {
	n := len(h.items)
	it := x.(*item[K])
	it.index = n
	h.items = append(h.items, it)
	h.itemsMap[it.Key] = it
}

// Pop removes and returns the minimum item (part of heap.Interface; use
// RemoveByKey or the container/heap functions directly).
func (h *MapHeap[K]) Pop() interface{} {
	old := h.items
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	h.items = old[:n-1]
	delete(h.itemsMap, it.Key)
	return it
}

// AddItem inserts key with priority, or updates its priority (fixing the
// heap) if key is already present.
func (h *MapHeap[K]) AddItem(key K, priority uint64) {
	if it, exists := h.itemsMap[key]; exists {
		it.Priority = priority
		heap.Fix(h, it.index)
		return
	}
	heap.Push(h, &item[K]{Key: key, Priority: priority})
}

// RemoveByKey removes key, reporting its priority if it was present.
func (h *MapHeap[K]) RemoveByKey(key K) (uint64, bool) {
	it, exists := h.itemsMap[key]
	if !exists {
		return 0, false
	}
	heap.Remove(h, it.index)
	return it.Priority, true
}

// Peek returns the minimum-priority key/priority pair without removing it.
func (h *MapHeap[K]) Peek() (key K, priority uint64, ok bool) {
	if len(h.items) == 0 {
		return key, 0, false
	}
	return h.items[0].Key, h.items[0].Priority, true
}

// Contains reports whether key is present.
func (h *MapHeap[K]) Contains(key K) bool {
	_, exists := h.itemsMap[key]
	return exists
}

// GetPriority returns key's current priority without removing it.
func (h *MapHeap[K]) GetPriority(key K) (uint64, bool) {
	it, exists := h.itemsMap[key]
	if !exists {
		return 0, false
	}
	return it.Priority, true
}
