package scene

import "github.com/banyantree/banyan/pkg/sequence"

// Walks read the child cache as it stands when iteration begins.
// Structural mutation during an active walk is unsupported; route it
// through the task queue instead.

// Parents iterates the ancestor chain up to and including the root.
func (n *Node) Parents(includeSelf bool) *sequence.Iterator[*Node] {
	return sequence.FromSeq(func(yield func(*Node) bool) {
		current := n
		if !includeSelf {
			current = n.parent
		}
		for current != nil {
			if !yield(current) {
				return
			}
			current = current.parent
		}
	})
}

// Walk iterates the children in cache order. With recursive set the
// walk is pre-order: a node first, then each child's own recursive
// walk.
func (n *Node) Walk(includeSelf, recursive bool) *sequence.Iterator[*Node] {
	return sequence.FromSeq(func(yield func(*Node) bool) {
		if includeSelf && !yield(n) {
			return
		}
		if recursive {
			walkChildren(n, yield)
			return
		}
		for _, child := range n.Children() {
			if !yield(child) {
				return
			}
		}
	})
}

func walkChildren(n *Node, yield func(*Node) bool) bool {
	for _, child := range n.Children() {
		if !yield(child) {
			return false
		}
		if !walkChildren(child, yield) {
			return false
		}
	}
	return true
}

// Siblings iterates the other entries of the parent's child cache,
// optionally followed by the parent itself. A root has no siblings.
func (n *Node) Siblings(includeParent bool) *sequence.Iterator[*Node] {
	return sequence.FromSeq(func(yield func(*Node) bool) {
		if n.parent == nil {
			return
		}
		for _, sibling := range n.parent.Children() {
			if sibling == n {
				continue
			}
			if !yield(sibling) {
				return
			}
		}
		if includeParent {
			yield(n.parent)
		}
	})
}

// FindParent returns the first ancestor matching the filter.
func (n *Node) FindParent(filter Filter, includeSelf bool) (*Node, bool) {
	return n.Parents(includeSelf).Filter(filter).First()
}

// FindChild returns the first child of the walk matching the filter.
func (n *Node) FindChild(filter Filter, includeSelf, recursive bool) (*Node, bool) {
	return n.Walk(includeSelf, recursive).Filter(filter).First()
}

// FindSibling returns the first sibling matching the filter.
func (n *Node) FindSibling(filter Filter, includeParent bool) (*Node, bool) {
	return n.Siblings(includeParent).Filter(filter).First()
}

// ByName is a filter matching nodes by display name.
func ByName(name string) Filter {
	return func(n *Node) bool {
		return n.Name() == name
	}
}

// ByTag is a filter matching tagged nodes.
func ByTag(tag string) Filter {
	return func(n *Node) bool {
		return n.Tagged(tag)
	}
}
