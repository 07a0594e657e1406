package scene

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/banyantree/banyan/pkg/sequence"
)

// Registry maps identifiers to live nodes for one tree. Every node
// carries a fragment; only a root's fragment is populated, covering
// its whole subtree. Attaching merges the child's fragment into the
// new root, detaching splits the subtree's identifiers back out, both
// atomically with the structural change they accompany.
//
// The exported surface is read-only; mutation happens through the
// structural operations of Node.
type Registry struct {
	nodes map[uuid.UUID]*Node
}

func newRegistry() *Registry {
	return &Registry{nodes: make(map[uuid.UUID]*Node)}
}

// Lookup resolves an identifier to its node.
func (r *Registry) Lookup(id uuid.UUID) (*Node, bool) {
	n, ok := r.nodes[id]
	return n, ok
}

// Len returns the number of bound identifiers.
func (r *Registry) Len() int {
	return len(r.nodes)
}

// IDs iterates the bound identifiers in no particular order.
func (r *Registry) IDs() *sequence.Iterator[uuid.UUID] {
	return sequence.FromSeq(func(yield func(uuid.UUID) bool) {
		for id := range r.nodes {
			if !yield(id) {
				return
			}
		}
	})
}

// Nodes iterates the registered nodes in no particular order.
func (r *Registry) Nodes() *sequence.Iterator[*Node] {
	return sequence.FromSeq(func(yield func(*Node) bool) {
		for _, n := range r.nodes {
			if !yield(n) {
				return
			}
		}
	})
}

// Digest folds the identifier set into an order-independent checksum.
// Two trees bind the same identifiers exactly when their digests match,
// which gives replicas a cheap consistency probe.
func (r *Registry) Digest() uint64 {
	var digest uint64
	for id := range r.nodes {
		digest ^= xxhash.Sum64(id[:])
	}
	return digest
}

func (r *Registry) put(id uuid.UUID, n *Node) {
	r.nodes[id] = n
}

func (r *Registry) remove(id uuid.UUID) {
	delete(r.nodes, id)
}

// absorb moves every binding of the other fragment into r, leaving the
// other fragment empty.
func (r *Registry) absorb(other *Registry) {
	for id, n := range other.nodes {
		r.nodes[id] = n
	}
	clear(other.nodes)
}

// ID returns the node's global identifier.
func (n *Node) ID() uuid.UUID {
	return n.id
}

// Rebind changes the node's identifier. The root's registry is
// consulted first: an identifier bound to a different live node fails
// with ErrInvalidArgument and leaves both bindings untouched, an
// identifier already bound to this node is a no-op, and an unbound one
// replaces the old binding.
func (n *Node) Rebind(id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: rebind %q to the nil identifier", ErrInvalidArgument, n.name)
	}
	registry := n.Root().registry
	if bound, ok := registry.Lookup(id); ok {
		if bound != n {
			return fmt.Errorf("%w: identifier %s is already bound to %q", ErrInvalidArgument, id, bound.name)
		}
		return nil
	}
	registry.remove(n.id)
	n.id = id
	registry.put(id, n)
	return nil
}

// Registry returns the read-only registry view of the node's current
// root, so any node can resolve any identifier reachable in its tree.
func (n *Node) Registry() *Registry {
	return n.Root().registry
}
