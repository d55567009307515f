package scheduler

import (
	"container/heap"
	"time"

	"accountpool/internal/credential"
)

// entry is one pending job. seq keeps jobs with the same trigger time in
// submission order.
type entry struct {
	at  time.Time
	seq uint64
	job credential.Job
}

// jobHeap implements container/heap.Interface, earliest trigger first.
type jobHeap []entry

func (h jobHeap) Len() int { return len(h) }

func (h jobHeap) Less(i, j int) bool {
	if h[i].at.Equal(h[j].at) {
		return h[i].seq < h[j].seq
	}
	return h[i].at.Before(h[j].at)
}

func (h jobHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *jobHeap) Push(x any) {
	*h = append(*h, x.(entry))
}

func (h *jobHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

func heapPush(h *jobHeap, e entry) {
	heap.Push(h, e)
}

// heapPop removes and returns the earliest entry. Panics if the heap is empty.
func heapPop(h *jobHeap) entry {
	return heap.Pop(h).(entry)
}

// heapRemoveByID removes the first entry whose job has the given ID.
func heapRemoveByID(h *jobHeap, id string) bool {
	for i, e := range *h {
		if e.job.ID == id {
			heap.Remove(h, i)
			return true
		}
	}
	return false
}
