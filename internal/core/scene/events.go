package scene

import (
	"fmt"

	"github.com/banyantree/banyan/pkg/sequence"
)

// Kind names an event category. Custom kinds are open; the built-ins
// below are wired on every new node.
type Kind string

const (
	// KindAttached fires twice per attach: once rooted at the parent,
	// once rooted at the child, after the link is established.
	KindAttached Kind = "attached"
	// KindDetached mirrors KindAttached, fired after the unlink.
	KindDetached Kind = "detached"
	// KindUpdate drives one simulation tick through the tree.
	KindUpdate Kind = "update"
)

// Role classifies a receiver's relation to a structural event. The
// classification compares pointers, in order, so a degenerate
// parent == child event resolves to RoleParent.
type Role uint8

const (
	// RoleNone marks a plain observer elsewhere in the walk.
	RoleNone Role = iota
	// RoleParent marks the node that gained or lost the child.
	RoleParent
	// RoleChild marks the node that was attached or detached.
	RoleChild
	// RoleBelowChild marks a node whose own parent is the moved child.
	RoleBelowChild
)

func (r Role) String() string {
	switch r {
	case RoleParent:
		return "parent"
	case RoleChild:
		return "child"
	case RoleBelowChild:
		return "below-child"
	default:
		return "none"
	}
}

// Event is the tagged union delivered to hooks. Parent and Child are
// set for the structural kinds, TPF for updates, Data for custom
// kinds. Role is filled in per receiver during dispatch.
type Event struct {
	Kind   Kind
	Source *Node
	Role   Role
	Parent *Node
	Child  *Node
	TPF    float64
	Data   any
}

// Filter accepts or rejects a receiver during a firing.
type Filter func(*Node) bool

// Targets produces the receivers for one event kind. The view is
// evaluated on every firing, never cached, so membership changes
// between firings participate correctly.
type Targets func() *sequence.Iterator[*Node]

// Hooks is the per-node extension surface. Implementations embed
// BaseHooks and override what they need; there is no inheritance
// chain. OnEvent observes every delivery, OnUpdate runs once per tick
// after the node's task queue drained.
type Hooks interface {
	OnEvent(n *Node, ev Event) error
	OnUpdate(n *Node, tpf float64) error
}

// BaseHooks is the no-op Hooks implementation meant for embedding.
type BaseHooks struct{}

var _ Hooks = (*BaseHooks)(nil)

func (BaseHooks) OnEvent(*Node, Event) error    { return nil }
func (BaseHooks) OnUpdate(*Node, float64) error { return nil }

// SetHooks installs the node's hooks. Nil keeps the structural
// bookkeeping (task drains, registry moves) and skips user logic.
func (n *Node) SetHooks(hooks Hooks) {
	n.hooks = hooks
}

// Hooks returns the installed hooks, or nil.
func (n *Node) Hooks() Hooks {
	return n.hooks
}

// SubtreeTargets is the default target view: the node plus its whole
// subtree, pre-order, recomputed at fire time.
func (n *Node) SubtreeTargets() Targets {
	return func() *sequence.Iterator[*Node] {
		return n.Walk(true, true)
	}
}

// Wire binds a kind to a target view. A node must have a kind wired
// both to originate it and to receive it. Wiring a nil view removes
// the kind.
func (n *Node) Wire(kind Kind, targets Targets) {
	if targets == nil {
		n.Unwire(kind)
		return
	}
	n.events[kind] = targets
}

// Unwire removes a kind from the node's event map. The node stops
// originating and receiving that kind; its subtree is unaffected.
func (n *Node) Unwire(kind Kind) {
	delete(n.events, kind)
}

// Wired reports whether the kind is present in the node's event map.
func (n *Node) Wired(kind Kind) bool {
	_, ok := n.events[kind]
	return ok
}

// Kinds iterates the wired kinds in no particular order.
func (n *Node) Kinds() *sequence.Iterator[Kind] {
	return sequence.FromSeq(func(yield func(Kind) bool) {
		for kind := range n.events {
			if !yield(kind) {
				return
			}
		}
	})
}

// FireEvent walks the node's target view for the event's kind and
// delivers the event to each receiver, with n recorded as the source.
// A kind the source has not wired is a silent no-op. Receivers that
// unwired the kind are skipped without affecting the rest of the walk;
// filters must all accept a receiver for it to see the event.
//
// Dispatch is synchronous and single-threaded. The first delivery
// error aborts the remainder of the walk.
func (n *Node) FireEvent(ev Event, filters ...Filter) error {
	targets, ok := n.events[ev.Kind]
	if !ok {
		return nil
	}
	view := targets()
	if view == nil {
		return nil
	}
	ev.Source = n

receivers:
	for receiver := range view.Seq() {
		if receiver == nil || !receiver.Wired(ev.Kind) {
			continue
		}
		for _, filter := range filters {
			if filter != nil && !filter(receiver) {
				continue receivers
			}
		}
		if err := receiver.deliver(ev); err != nil {
			return fmt.Errorf("scene: %s delivery to %q: %w", ev.Kind, receiver.name, err)
		}
	}
	return nil
}

// deliver runs the built-in processing for one receiver, then the
// receiver's hooks.
func (n *Node) deliver(ev Event) error {
	switch ev.Kind {
	case KindAttached, KindDetached:
		ev.Role = classifyRole(n, ev.Parent, ev.Child)
	case KindUpdate:
		if err := n.drainTasks(); err != nil {
			return err
		}
	}
	if n.hooks == nil {
		return nil
	}
	if err := n.hooks.OnEvent(n, ev); err != nil {
		return err
	}
	if ev.Kind == KindUpdate {
		return n.hooks.OnUpdate(n, ev.TPF)
	}
	return nil
}

func classifyRole(receiver, parent, child *Node) Role {
	switch {
	case receiver == parent:
		return RoleParent
	case receiver == child:
		return RoleChild
	case receiver.parent == child:
		return RoleBelowChild
	default:
		return RoleNone
	}
}
