package driver

import (
	"github.com/banyantree/banyan/internal/core/scene"
	"github.com/banyantree/banyan/pkg/sequence"
)

// pending is one scheduled hand-off: at due time the task joins the
// node's own queue.
type pending struct {
	due  float64
	node *scene.Node
	task scene.Task
}

// Scheduler hands tasks to nodes at a future point on the loop clock.
// Dispatch only moves a due task onto its node's task queue; execution
// still happens at that node's drain point inside the tick, so
// scheduled work obeys the same marshaling rule as directly enqueued
// work.
type Scheduler struct {
	queue *sequence.PriorityQueue[pending]
	now   float64
}

func NewScheduler() *Scheduler {
	return &Scheduler{queue: sequence.NewPriorityQueue[pending]()}
}

// Now returns the loop clock in seconds.
func (s *Scheduler) Now() float64 {
	return s.now
}

// Pending returns the number of tasks not yet handed off.
func (s *Scheduler) Pending() int {
	return s.queue.Len()
}

// After hands task to n once delay seconds of loop time have passed.
// Nil nodes, nil tasks and negative delays degrade to the next tick.
func (s *Scheduler) After(delay float64, n *scene.Node, task scene.Task) {
	if n == nil || task == nil {
		return
	}
	if delay < 0 {
		delay = 0
	}
	due := s.now + delay
	s.queue.Enqueue(pending{due: due, node: n, task: task}, duePriority(due))
}

// Advance moves the clock forward by tpf seconds and dispatches every
// task that has come due, earliest deadline first.
func (s *Scheduler) Advance(tpf float64) {
	s.now += tpf
	for {
		head, ok := s.queue.Peek()
		if !ok || head.due > s.now {
			return
		}
		item, _ := s.queue.Dequeue()
		item.node.Enqueue(item.task)
	}
}

// duePriority orders earlier deadlines first on a max-priority heap,
// with microsecond resolution.
func duePriority(due float64) int {
	return -int(due * 1e6)
}
