// Package scene implements the hierarchical node graph that backs a
// real-time simulation: ordered children, a root-owned identifier
// registry, synchronous event routing and per-node deferred tasks.
//
// The package is single-threaded by contract. A tree is mutated only
// from one logical driver thread per tick; foreign goroutines must
// marshal their intent through a task queue reachable from the next
// update instead of touching the tree directly.
package scene

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/tidwall/btree"

	"github.com/banyantree/banyan/pkg/sequence"
)

// Node is the unit of the tree. It owns its children and keeps a
// non-owning back-reference to the parent, so ownership stays a strict
// tree while traversal works in both directions.
type Node struct {
	name       string
	id         uuid.UUID
	orderIndex int
	cacheIndex int

	parent  *Node
	buckets btree.Map[int, *bucket]
	cache   []*Node

	registry *Registry
	events   map[Kind]Targets
	tasks    sequence.Queue[Task]
	props    map[string]any
	hooks    Hooks
}

// NewNode creates an unattached node: its own root, with a fresh
// identifier already bound in its own registry fragment and the
// built-in kinds wired to the subtree view.
func NewNode(name string) *Node {
	n := &Node{
		name:     name,
		id:       uuid.New(),
		registry: newRegistry(),
		events:   make(map[Kind]Targets),
		props:    make(map[string]any),
	}
	n.Wire(KindAttached, n.SubtreeTargets())
	n.Wire(KindDetached, n.SubtreeTargets())
	n.Wire(KindUpdate, n.SubtreeTargets())
	n.registry.put(n.id, n)
	return n
}

// Name returns the display name.
func (n *Node) Name() string {
	return n.name
}

// SetName replaces the display name.
func (n *Node) SetName(name string) {
	n.name = name
}

// Parent returns the owning parent, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// HasParent reports whether the node is owned by a parent.
func (n *Node) HasParent() bool {
	return n.parent != nil
}

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool {
	return n.parent == nil
}

// Root walks the parent chain and returns the first node without a
// parent, which is the node itself for a root.
func (n *Node) Root() *Node {
	root := n
	for root.parent != nil {
		root = root.parent
	}
	return root
}

// OrderIndex returns the ordering index that determines the node's
// position among its siblings.
func (n *Node) OrderIndex() int {
	return n.orderIndex
}

// SetOrderIndex changes the ordering index. When the node is attached
// it moves between its parent's buckets, joining the destination
// bucket behind the children already there, and invalidates the
// parent's child cache.
func (n *Node) SetOrderIndex(index int) error {
	if index == n.orderIndex {
		return nil
	}
	if n.parent != nil {
		old, ok := n.parent.buckets.Get(n.orderIndex)
		if !ok {
			return fmt.Errorf("%w: node %q has no bucket for order %d", ErrIllegalState, n.name, n.orderIndex)
		}
		if !old.remove(n) {
			return fmt.Errorf("%w: node %q missing from bucket %d", ErrIllegalState, n.name, n.orderIndex)
		}
		if !n.parent.lazyBucket(index).add(n) {
			return fmt.Errorf("%w: node %q already present in bucket %d", ErrIllegalState, n.name, index)
		}
		n.parent.invalidateCache()
		if err := n.parent.removeBucketIfEmpty(n.orderIndex, old); err != nil {
			return err
		}
	}
	n.orderIndex = index
	return nil
}

// Attach makes every given node a child of n, in argument order.
// A nil child or self-attachment fails with ErrInvalidArgument. A
// child already under n is left alone; a child owned by another parent
// is detached from it first. The child's registry fragment is absorbed
// by n's root before KindAttached fires twice: once rooted at n, once
// rooted at the child, so both subtrees observe the change.
func (n *Node) Attach(children ...*Node) error {
	for _, child := range children {
		if err := n.attachOne(child); err != nil {
			return err
		}
	}
	return nil
}

// AttachFrom attaches every node produced by the iterator, in order.
func (n *Node) AttachFrom(children *sequence.Iterator[*Node]) error {
	if children == nil {
		return fmt.Errorf("%w: attach from nil iterator", ErrInvalidArgument)
	}
	return n.Attach(children.Collect()...)
}

func (n *Node) attachOne(child *Node) error {
	if child == nil {
		return fmt.Errorf("%w: attach nil child to %q", ErrInvalidArgument, n.name)
	}
	if child == n {
		return fmt.Errorf("%w: attach %q to itself", ErrInvalidArgument, n.name)
	}
	if child.parent != nil {
		if child.parent == n {
			return nil
		}
		detached, err := child.parent.detachOne(child)
		if err != nil {
			return err
		}
		if !detached {
			return fmt.Errorf("%w: node %q could not leave its parent", ErrIllegalState, child.name)
		}
	}

	if !n.lazyBucket(child.orderIndex).add(child) {
		return fmt.Errorf("%w: node %q already present in bucket %d", ErrIllegalState, child.name, child.orderIndex)
	}

	// The new root absorbs the child's whole fragment before anything
	// observes the link.
	n.Root().registry.absorb(child.registry)
	child.parent = n
	n.invalidateCache()

	ev := Event{Kind: KindAttached, Parent: n, Child: child}
	if err := n.FireEvent(ev); err != nil {
		return err
	}
	return child.FireEvent(ev)
}

// Detach removes every given node from n's children, in argument
// order. The boolean result is the AND of the per-child outcomes: a
// node that is not currently a child of n yields false and leaves the
// tree untouched. Nil children and self-detachment fail with
// ErrInvalidArgument, bookkeeping inconsistencies with ErrIllegalState.
func (n *Node) Detach(children ...*Node) (bool, error) {
	all := true
	for _, child := range children {
		detached, err := n.detachOne(child)
		if err != nil {
			return false, err
		}
		if !detached {
			all = false
		}
	}
	return all, nil
}

// DetachFrom detaches every node produced by the iterator, in order.
func (n *Node) DetachFrom(children *sequence.Iterator[*Node]) (bool, error) {
	if children == nil {
		return false, fmt.Errorf("%w: detach from nil iterator", ErrInvalidArgument)
	}
	return n.Detach(children.Collect()...)
}

// DetachAll detaches every current child of n.
func (n *Node) DetachAll() (bool, error) {
	return n.DetachFrom(n.Walk(false, false))
}

// DetachFromParent detaches n from its parent. Without a parent it
// reports false and does nothing.
func (n *Node) DetachFromParent() (bool, error) {
	if n.parent == nil {
		return false, nil
	}
	return n.parent.Detach(n)
}

func (n *Node) detachOne(child *Node) (bool, error) {
	if child == nil {
		return false, fmt.Errorf("%w: detach nil child from %q", ErrInvalidArgument, n.name)
	}
	if child == n {
		return false, fmt.Errorf("%w: detach %q from itself", ErrInvalidArgument, n.name)
	}
	if child.parent != n {
		return false, nil
	}

	b, ok := n.buckets.Get(child.orderIndex)
	if !ok {
		return false, fmt.Errorf("%w: node %q has no bucket for order %d", ErrIllegalState, n.name, child.orderIndex)
	}
	if !b.remove(child) {
		return false, fmt.Errorf("%w: node %q missing from bucket %d", ErrIllegalState, child.name, child.orderIndex)
	}

	// Every identifier below the child leaves this tree's registry and
	// reconstitutes the child's own fragment, making it self-sufficient.
	root := n.Root()
	for sub := range child.Walk(true, true).Seq() {
		root.registry.remove(sub.id)
		child.registry.put(sub.id, sub)
	}

	if err := n.removeBucketIfEmpty(child.orderIndex, b); err != nil {
		return false, err
	}
	child.parent = nil
	n.invalidateCache()

	ev := Event{Kind: KindDetached, Parent: n, Child: child}
	if err := n.FireEvent(ev); err != nil {
		return true, err
	}
	if err := child.FireEvent(ev); err != nil {
		return true, err
	}
	return true, nil
}

// Update fires KindUpdate at n. With the default wiring the whole
// subtree is visited in pre-order; each visited node drains its task
// queue before its own update hook runs.
func (n *Node) Update(tpf float64, filters ...Filter) error {
	return n.FireEvent(Event{Kind: KindUpdate, TPF: tpf}, filters...)
}

func (n *Node) String() string {
	return fmt.Sprintf("[name=%s order=%d id=%s]", n.name, n.orderIndex, n.id)
}
