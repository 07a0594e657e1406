package scene

import (
	"errors"
	"testing"
)

func TestAttachLinksChildAndRegistry(t *testing.T) {
	parent := NewNode("parent")
	child := NewNode("child")

	if err := parent.Attach(child); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if child.Parent() != parent {
		t.Fatalf("expected parent %q, got %v", parent.Name(), child.Parent())
	}
	seen := 0
	for _, c := range parent.Children() {
		if c == child {
			seen++
		}
	}
	if seen != 1 {
		t.Fatalf("expected child to appear exactly once, appeared %d times", seen)
	}
	resolved, ok := parent.Root().Registry().Lookup(child.ID())
	if !ok || resolved != child {
		t.Fatalf("registry lookup after attach: got %v, ok=%v", resolved, ok)
	}
	if child.Registry() != parent.Registry() {
		t.Fatal("child must resolve through the root registry while attached")
	}
}

func TestAttachValidation(t *testing.T) {
	n := NewNode("n")
	if err := n.Attach(nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("nil child: expected ErrInvalidArgument, got %v", err)
	}
	if err := n.Attach(n); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("self attach: expected ErrInvalidArgument, got %v", err)
	}
}

func TestAttachSameParentIsNoop(t *testing.T) {
	parent := NewNode("parent")
	child := NewNode("child")
	if err := parent.Attach(child); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := parent.Attach(child); err != nil {
		t.Fatalf("re-attach to same parent: %v", err)
	}
	if len(parent.Children()) != 1 {
		t.Fatalf("expected 1 child, got %d", len(parent.Children()))
	}
}

func TestOrderIndexDeterminesPosition(t *testing.T) {
	parent := NewNode("parent")
	c5 := NewNode("c5")
	c1a := NewNode("c1a")
	c3 := NewNode("c3")
	c1b := NewNode("c1b")

	for n, order := range map[*Node]int{c5: 5, c1a: 1, c3: 3, c1b: 1} {
		if err := n.SetOrderIndex(order); err != nil {
			t.Fatalf("set order %d on %q: %v", order, n.Name(), err)
		}
	}
	if err := parent.Attach(c5, c1a, c3, c1b); err != nil {
		t.Fatalf("attach: %v", err)
	}

	want := []*Node{c1a, c1b, c3, c5}
	got := parent.Children()
	if len(got) != len(want) {
		t.Fatalf("expected %d children, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected %q, got %q", i, want[i].Name(), got[i].Name())
		}
	}
}

func TestSetOrderIndexMovesBetweenBuckets(t *testing.T) {
	parent := NewNode("parent")
	a := NewNode("a")
	b := NewNode("b")
	if err := parent.Attach(a, b); err != nil {
		t.Fatalf("attach: %v", err)
	}

	if err := a.SetOrderIndex(7); err != nil {
		t.Fatalf("set order: %v", err)
	}
	children := parent.Children()
	if children[0] != b || children[1] != a {
		t.Fatalf("expected [b a], got [%q %q]", children[0].Name(), children[1].Name())
	}
	if a.OrderIndex() != 7 {
		t.Fatalf("expected order 7, got %d", a.OrderIndex())
	}
}

func TestDetachSoftFailureLeavesTreeUntouched(t *testing.T) {
	parent := NewNode("parent")
	child := NewNode("child")
	stranger := NewNode("stranger")
	if err := parent.Attach(child); err != nil {
		t.Fatalf("attach: %v", err)
	}
	before := parent.Registry().Len()

	detached, err := parent.Detach(stranger)
	if err != nil {
		t.Fatalf("detach stranger: %v", err)
	}
	if detached {
		t.Fatal("expected soft failure for a non-child")
	}
	if len(parent.Children()) != 1 || parent.Children()[0] != child {
		t.Fatal("tree structure changed by a failed detach")
	}
	if parent.Registry().Len() != before {
		t.Fatal("registry changed by a failed detach")
	}
	if !stranger.IsRoot() {
		t.Fatal("stranger lost root status")
	}
}

func TestDetachValidation(t *testing.T) {
	n := NewNode("n")
	if _, err := n.Detach(nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("nil child: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := n.Detach(n); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("self detach: expected ErrInvalidArgument, got %v", err)
	}
}

func TestAttachDetachRoundTrip(t *testing.T) {
	parent := NewNode("parent")
	child := NewNode("child")
	grandchild := NewNode("grandchild")
	if err := child.Attach(grandchild); err != nil {
		t.Fatalf("attach grandchild: %v", err)
	}

	wantIDs := map[string]bool{
		child.ID().String():      true,
		grandchild.ID().String(): true,
	}

	if err := parent.Attach(child); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if child.Registry().Len() != 3 {
		t.Fatalf("root registry should hold 3 ids, got %d", child.Registry().Len())
	}

	detached, err := parent.Detach(child)
	if err != nil {
		t.Fatalf("detach: %v", err)
	}
	if !detached {
		t.Fatal("expected detach to succeed")
	}
	if !child.IsRoot() {
		t.Fatal("child must be a root again")
	}
	if child.Registry().Len() != len(wantIDs) {
		t.Fatalf("expected %d ids after split, got %d", len(wantIDs), child.Registry().Len())
	}
	for id := range child.Registry().IDs().Seq() {
		if !wantIDs[id.String()] {
			t.Fatalf("unexpected id %s in split fragment", id)
		}
	}
	if parent.Registry().Len() != 1 {
		t.Fatalf("old root should keep only itself, got %d ids", parent.Registry().Len())
	}
}

func TestReparentingMovesRegistryEntries(t *testing.T) {
	r1 := NewNode("r1")
	r2 := NewNode("r2")
	a := NewNode("a")
	if err := r1.Attach(a); err != nil {
		t.Fatalf("attach to r1: %v", err)
	}

	if err := r2.Attach(a); err != nil {
		t.Fatalf("reparent to r2: %v", err)
	}
	if a.Parent() != r2 {
		t.Fatalf("expected parent r2, got %v", a.Parent())
	}
	for _, c := range r1.Children() {
		if c == a {
			t.Fatal("r1 still lists a as child")
		}
	}
	if _, ok := r2.Registry().Lookup(a.ID()); !ok {
		t.Fatal("r2 registry must hold a")
	}
	if _, ok := r1.Registry().Lookup(a.ID()); ok {
		t.Fatal("r1 registry must not hold a anymore")
	}
}

func TestDetachAll(t *testing.T) {
	parent := NewNode("parent")
	a := NewNode("a")
	b := NewNode("b")
	c := NewNode("c")
	if err := parent.Attach(a, b, c); err != nil {
		t.Fatalf("attach: %v", err)
	}

	detached, err := parent.DetachAll()
	if err != nil {
		t.Fatalf("detach all: %v", err)
	}
	if !detached {
		t.Fatal("expected all detaches to succeed")
	}
	if parent.HasChildren() {
		t.Fatal("expected no children left")
	}
	for _, n := range []*Node{a, b, c} {
		if !n.IsRoot() {
			t.Fatalf("%q should be a root", n.Name())
		}
		if n.Registry().Len() != 1 {
			t.Fatalf("%q fragment should hold itself, got %d", n.Name(), n.Registry().Len())
		}
	}
}

func TestDetachFromParent(t *testing.T) {
	parent := NewNode("parent")
	child := NewNode("child")
	if err := parent.Attach(child); err != nil {
		t.Fatalf("attach: %v", err)
	}

	detached, err := child.DetachFromParent()
	if err != nil {
		t.Fatalf("detach from parent: %v", err)
	}
	if !detached || child.Parent() != nil {
		t.Fatal("expected child to leave its parent")
	}

	detached, err = child.DetachFromParent()
	if err != nil {
		t.Fatalf("detach without parent: %v", err)
	}
	if detached {
		t.Fatal("expected soft failure without a parent")
	}
}

func TestCacheIndexValidity(t *testing.T) {
	parent := NewNode("parent")
	a := NewNode("a")
	b := NewNode("b")
	if err := parent.Attach(a, b); err != nil {
		t.Fatalf("attach: %v", err)
	}

	if a.CacheIndexValid() {
		t.Fatal("cache index cannot be valid before the cache is built")
	}
	children := parent.Children()
	if !a.CacheIndexValid() || !b.CacheIndexValid() {
		t.Fatal("cache indices must be valid right after a rebuild")
	}
	if a.CacheIndex() != 0 || b.CacheIndex() != 1 {
		t.Fatalf("expected cache indices 0 and 1, got %d and %d", a.CacheIndex(), b.CacheIndex())
	}
	if parent.ChildAt(1) != b {
		t.Fatal("ChildAt(1) should be b")
	}

	extra := NewNode("extra")
	if err := extra.SetOrderIndex(-1); err != nil {
		t.Fatalf("set order: %v", err)
	}
	if err := parent.Attach(extra); err != nil {
		t.Fatalf("attach extra: %v", err)
	}
	if a.CacheIndexValid() {
		t.Fatal("structural change must invalidate the cache lazily")
	}
	_ = parent.Children()
	if !a.CacheIndexValid() || a.CacheIndex() != 1 {
		t.Fatalf("after rebuild a should sit at index 1, got %d (valid=%v)", a.CacheIndex(), a.CacheIndexValid())
	}
	_ = children
}

func TestRootWalksParentChain(t *testing.T) {
	root := NewNode("root")
	mid := NewNode("mid")
	leaf := NewNode("leaf")
	if err := root.Attach(mid); err != nil {
		t.Fatalf("attach mid: %v", err)
	}
	if err := mid.Attach(leaf); err != nil {
		t.Fatalf("attach leaf: %v", err)
	}
	if leaf.Root() != root || mid.Root() != root || root.Root() != root {
		t.Fatal("root resolution broken")
	}
	if !root.IsRoot() || mid.IsRoot() || leaf.IsRoot() {
		t.Fatal("IsRoot disagrees with structure")
	}
}

func TestSetName(t *testing.T) {
	n := NewNode("before")
	n.SetName("after")
	if n.Name() != "after" {
		t.Fatalf("expected %q, got %q", "after", n.Name())
	}
}
