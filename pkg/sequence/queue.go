package sequence

import "container/heap"

// Queue is a growable FIFO ring buffer. It is not safe for concurrent use.
type Queue[T any] struct {
	buf  []T
	head int
	size int
}

const minQueueCap = 8

// NewQueue creates an empty Queue.
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Enqueue appends a value to the tail of the queue.
func (q *Queue[T]) Enqueue(value T) {
	if q.size == len(q.buf) {
		q.grow()
	}
	q.buf[(q.head+q.size)%len(q.buf)] = value
	q.size++
}

// Dequeue removes and returns the value at the head of the queue.
func (q *Queue[T]) Dequeue() (T, bool) {
	var zero T
	if q.size == 0 {
		return zero, false
	}
	value := q.buf[q.head]
	q.buf[q.head] = zero
	q.head = (q.head + 1) % len(q.buf)
	q.size--
	return value, true
}

// Peek returns the value at the head of the queue without removing it.
func (q *Queue[T]) Peek() (T, bool) {
	if q.size == 0 {
		var zero T
		return zero, false
	}
	return q.buf[q.head], true
}

// Len returns the number of queued values.
func (q *Queue[T]) Len() int {
	return q.size
}

// IsEmpty reports whether the queue holds no values.
func (q *Queue[T]) IsEmpty() bool {
	return q.size == 0
}

// Values returns the queued values in FIFO order without consuming them.
func (q *Queue[T]) Values() []T {
	out := make([]T, 0, q.size)
	for i := 0; i < q.size; i++ {
		out = append(out, q.buf[(q.head+i)%len(q.buf)])
	}
	return out
}

func (q *Queue[T]) grow() {
	capacity := len(q.buf) * 2
	if capacity < minQueueCap {
		capacity = minQueueCap
	}
	buf := make([]T, capacity)
	for i := 0; i < q.size; i++ {
		buf[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	q.buf = buf
	q.head = 0
}

type PriorityItem[T any] struct {
	Value    T
	Priority int
	index    int
}

type priorityQueue[T any] struct {
	items []*PriorityItem[T]
}

func (pq *priorityQueue[T]) Len() int {
	return len(pq.items)
}

func (pq *priorityQueue[T]) Less(i, j int) bool {
	return pq.items[i].Priority > pq.items[j].Priority
}

func (pq *priorityQueue[T]) Swap(i, j int) {
	pq.items[i], pq.items[j] = pq.items[j], pq.items[i]
	pq.items[i].index = i
	pq.items[j].index = j
}

func (pq *priorityQueue[T]) Push(x any) {
	item := x.(*PriorityItem[T])
	item.index = len(pq.items)
	pq.items = append(pq.items, item)
}

func (pq *priorityQueue[T]) Pop() any {
	old := pq.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil  // avoid memory leak
	item.index = -1 // for safety
	pq.items = old[0 : n-1]
	return item
}

// PriorityQueue dequeues the highest-priority value first.
// It is not safe for concurrent use.
type PriorityQueue[T any] struct {
	pq priorityQueue[T]
}

func NewPriorityQueue[T any]() *PriorityQueue[T] {
	pq := &PriorityQueue[T]{}
	heap.Init(&pq.pq)
	return pq
}

func (pq *PriorityQueue[T]) Enqueue(value T, priority int) *PriorityItem[T] {
	item := &PriorityItem[T]{
		Value:    value,
		Priority: priority,
	}
	heap.Push(&pq.pq, item)
	return item
}

func (pq *PriorityQueue[T]) Dequeue() (T, bool) {
	if pq.pq.Len() == 0 {
		var zero T
		return zero, false
	}
	item := heap.Pop(&pq.pq).(*PriorityItem[T])
	return item.Value, true
}

func (pq *PriorityQueue[T]) Peek() (T, bool) {
	if pq.pq.Len() == 0 {
		var zero T
		return zero, false
	}
	return pq.pq.items[0].Value, true
}

// PeekPriority returns the priority of the head item without removing it.
func (pq *PriorityQueue[T]) PeekPriority() (int, bool) {
	if pq.pq.Len() == 0 {
		return 0, false
	}
	return pq.pq.items[0].Priority, true
}

func (pq *PriorityQueue[T]) Update(item *PriorityItem[T], value T, priority int) {
	item.Value = value
	item.Priority = priority
	heap.Fix(&pq.pq, item.index)
}

func (pq *PriorityQueue[T]) Len() int {
	return pq.pq.Len()
}

func (pq *PriorityQueue[T]) IsEmpty() bool {
	return pq.pq.Len() == 0
}
