package scene

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestRebindCollisionFailsAndKeepsBindings(t *testing.T) {
	root := NewNode("root")
	x := NewNode("x")
	y := NewNode("y")
	if err := root.Attach(x, y); err != nil {
		t.Fatalf("attach: %v", err)
	}

	xID, yID := x.ID(), y.ID()
	err := x.Rebind(yID)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if x.ID() != xID {
		t.Fatal("x identifier changed after a failed rebind")
	}
	if n, ok := root.Registry().Lookup(xID); !ok || n != x {
		t.Fatal("x binding lost after a failed rebind")
	}
	if n, ok := root.Registry().Lookup(yID); !ok || n != y {
		t.Fatal("y binding lost after a failed rebind")
	}
}

func TestRebindToOwnIDIsNoop(t *testing.T) {
	n := NewNode("n")
	id := n.ID()
	if err := n.Rebind(id); err != nil {
		t.Fatalf("rebind to own id: %v", err)
	}
	if n.ID() != id || n.Registry().Len() != 1 {
		t.Fatal("no-op rebind changed state")
	}
}

func TestRebindInstallsNewBinding(t *testing.T) {
	root := NewNode("root")
	child := NewNode("child")
	if err := root.Attach(child); err != nil {
		t.Fatalf("attach: %v", err)
	}

	oldID := child.ID()
	newID := uuid.New()
	if err := child.Rebind(newID); err != nil {
		t.Fatalf("rebind: %v", err)
	}
	if child.ID() != newID {
		t.Fatalf("expected id %s, got %s", newID, child.ID())
	}
	if _, ok := root.Registry().Lookup(oldID); ok {
		t.Fatal("old binding must be removed")
	}
	if n, ok := root.Registry().Lookup(newID); !ok || n != child {
		t.Fatal("new binding missing")
	}
}

func TestRebindNilIdentifier(t *testing.T) {
	n := NewNode("n")
	if err := n.Rebind(uuid.Nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestRegistryResolvesFromAnyNode(t *testing.T) {
	root := NewNode("root")
	mid := NewNode("mid")
	leaf := NewNode("leaf")
	if err := root.Attach(mid); err != nil {
		t.Fatalf("attach mid: %v", err)
	}
	if err := mid.Attach(leaf); err != nil {
		t.Fatalf("attach leaf: %v", err)
	}

	if n, ok := leaf.Registry().Lookup(root.ID()); !ok || n != root {
		t.Fatal("leaf cannot resolve the root")
	}
	if n, ok := root.Registry().Lookup(leaf.ID()); !ok || n != leaf {
		t.Fatal("root cannot resolve the leaf")
	}
	if got := root.Registry().Len(); got != 3 {
		t.Fatalf("expected 3 bindings, got %d", got)
	}
	if got := root.Registry().Nodes().Count(); got != 3 {
		t.Fatalf("expected 3 nodes, got %d", got)
	}
}

func TestDigestIsOrderIndependent(t *testing.T) {
	idA := uuid.New()
	idB := uuid.New()
	idC := uuid.New()

	build := func(order []uuid.UUID) *Node {
		root := NewNode("root")
		if err := root.Rebind(order[0]); err != nil {
			t.Fatalf("rebind root: %v", err)
		}
		for _, id := range order[1:] {
			child := NewNode("child")
			if err := child.Rebind(id); err != nil {
				t.Fatalf("rebind child: %v", err)
			}
			if err := root.Attach(child); err != nil {
				t.Fatalf("attach: %v", err)
			}
		}
		return root
	}

	first := build([]uuid.UUID{idA, idB, idC})
	second := build([]uuid.UUID{idA, idC, idB})
	if first.Registry().Digest() != second.Registry().Digest() {
		t.Fatal("digest must not depend on attach order")
	}

	third := build([]uuid.UUID{idA, idB, uuid.New()})
	if first.Registry().Digest() == third.Registry().Digest() {
		t.Fatal("different identifier sets should disagree")
	}
}

func TestDetachSplitsDigest(t *testing.T) {
	root := NewNode("root")
	branch := NewNode("branch")
	leaf := NewNode("leaf")
	if err := branch.Attach(leaf); err != nil {
		t.Fatalf("attach leaf: %v", err)
	}
	branchDigest := branch.Registry().Digest()

	if err := root.Attach(branch); err != nil {
		t.Fatalf("attach branch: %v", err)
	}
	if _, err := root.Detach(branch); err != nil {
		t.Fatalf("detach: %v", err)
	}
	if branch.Registry().Digest() != branchDigest {
		t.Fatal("split fragment should reproduce the original digest")
	}
}
