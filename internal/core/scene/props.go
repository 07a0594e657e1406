package scene

import "github.com/banyantree/banyan/pkg/sequence"

// tagMarker is the private value stored for tag-style keys.
type tagMarker struct{}

// SetProp stores a value in the node's open property store, replacing
// any previous value or tag under the key.
func (n *Node) SetProp(key string, value any) {
	n.props[key] = value
}

// Prop returns the value stored under the key.
func (n *Node) Prop(key string) (any, bool) {
	v, ok := n.props[key]
	return v, ok
}

// DelProp removes the key from the store.
func (n *Node) DelProp(key string) {
	delete(n.props, key)
}

// PropString returns the value under the key when it is a string.
func (n *Node) PropString(key string) (string, bool) {
	v, ok := n.props[key].(string)
	return v, ok
}

// PropInt returns the value under the key when it is an int.
func (n *Node) PropInt(key string) (int, bool) {
	v, ok := n.props[key].(int)
	return v, ok
}

// PropFloat returns the value under the key when it is a float64.
func (n *Node) PropFloat(key string) (float64, bool) {
	v, ok := n.props[key].(float64)
	return v, ok
}

// PropBool returns the value under the key when it is a bool.
func (n *Node) PropBool(key string) (bool, bool) {
	v, ok := n.props[key].(bool)
	return v, ok
}

// PropKeys iterates the stored keys, tags included, in no particular
// order.
func (n *Node) PropKeys() *sequence.Iterator[string] {
	return sequence.FromSeq(func(yield func(string) bool) {
		for key := range n.props {
			if !yield(key) {
				return
			}
		}
	})
}

// Tag marks the node with a boolean-style tag. Tags share the property
// store, so a tag and a prop under the same key replace each other.
func (n *Node) Tag(tag string) {
	n.props[tag] = tagMarker{}
}

// Untag removes the tag.
func (n *Node) Untag(tag string) {
	delete(n.props, tag)
}

// Tagged reports whether the tag is set.
func (n *Node) Tagged(tag string) bool {
	_, ok := n.props[tag].(tagMarker)
	return ok
}
