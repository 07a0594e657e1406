package scene

// Task is a deferred, zero-argument action. Structural mutation
// requested from inside an event handler is unsafe while the firing
// that triggered the handler is still walking the tree; enqueue it
// instead and it runs at the node's next drain point.
type Task func() error

// Enqueue appends a task to the node's FIFO queue. Nil tasks are
// ignored.
func (n *Node) Enqueue(task Task) {
	if task == nil {
		return
	}
	n.tasks.Enqueue(task)
}

// PendingTasks returns the number of queued tasks.
func (n *Node) PendingTasks() int {
	return n.tasks.Len()
}

// drainTasks runs the queue as it stood at drain start, in order.
// Tasks enqueued by a running task land behind the snapshot and wait
// for the next drain. A task error aborts the drain; the remaining
// tasks stay queued.
func (n *Node) drainTasks() error {
	for remaining := n.tasks.Len(); remaining > 0; remaining-- {
		task, ok := n.tasks.Dequeue()
		if !ok {
			return ErrIllegalState
		}
		if err := task(); err != nil {
			return err
		}
	}
	return nil
}
