package scene

import "fmt"

// bucket holds the children sharing one order index, in insertion
// order. Sibling sets stay small, so membership checks scan.
type bucket struct {
	nodes []*Node
}

func (b *bucket) contains(n *Node) bool {
	for _, c := range b.nodes {
		if c == n {
			return true
		}
	}
	return false
}

func (b *bucket) add(n *Node) bool {
	if b.contains(n) {
		return false
	}
	b.nodes = append(b.nodes, n)
	return true
}

func (b *bucket) remove(n *Node) bool {
	for i, c := range b.nodes {
		if c == n {
			b.nodes = append(b.nodes[:i], b.nodes[i+1:]...)
			return true
		}
	}
	return false
}

// lazyBucket returns the bucket for the given order, creating it on
// first use.
func (n *Node) lazyBucket(order int) *bucket {
	if b, ok := n.buckets.Get(order); ok {
		return b
	}
	b := &bucket{}
	n.buckets.Set(order, b)
	return b
}

// removeBucketIfEmpty drops the bucket once its last child left.
func (n *Node) removeBucketIfEmpty(order int, b *bucket) error {
	if b == nil || len(b.nodes) > 0 {
		return nil
	}
	removed, _ := n.buckets.Delete(order)
	if removed != b {
		if removed != nil {
			n.buckets.Set(order, removed)
		}
		return fmt.Errorf("%w: bucket for order %d does not match its key", ErrIllegalState, order)
	}
	return nil
}

func (n *Node) invalidateCache() {
	n.cache = nil
}

// Children returns the flattened snapshot of all children: buckets in
// ascending order-index, insertion order inside a bucket. The snapshot
// is rebuilt lazily after structural changes; rebuilding assigns every
// child its position as cache index. The returned slice is the live
// cache and must not be mutated.
func (n *Node) Children() []*Node {
	if n.cache == nil {
		cache := make([]*Node, 0, n.buckets.Len())
		counter := 0
		n.buckets.Scan(func(_ int, b *bucket) bool {
			for _, child := range b.nodes {
				child.cacheIndex = counter
				counter++
				cache = append(cache, child)
			}
			return true
		})
		n.cache = cache
	}
	return n.cache
}

// ChildAt returns the child at the given cache index.
func (n *Node) ChildAt(index int) *Node {
	return n.Children()[index]
}

// HasChildren reports whether any bucket exists.
func (n *Node) HasChildren() bool {
	return n.buckets.Len() > 0
}

// CacheIndex returns the node's last-known position in its parent's
// flattened child list. The value is meaningful only while
// CacheIndexValid reports true.
func (n *Node) CacheIndex() int {
	return n.cacheIndex
}

// CacheIndexValid reports whether the cache index still equals the
// node's position in the parent's most recently rebuilt child cache.
func (n *Node) CacheIndexValid() bool {
	if n.parent == nil || n.parent.cache == nil || n.cacheIndex >= len(n.parent.cache) {
		return false
	}
	return n.parent.cache[n.cacheIndex] == n
}
