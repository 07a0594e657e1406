// Package snapshot captures a subtree into a portable record and
// rebuilds it later. It is layered strictly on the public scene
// operations, so a restored tree goes through the same attach and
// rebind paths as a hand-built one.
package snapshot

import (
	"fmt"
	"io"
	"sort"

	"github.com/google/uuid"

	"github.com/banyantree/banyan/internal/core/scene"
	"github.com/banyantree/banyan/pkg/encoding"
)

// Record is the serialized form of one node and its subtree. Property
// values ride through gob; callers storing exotic concrete types in
// props must gob.Register them.
type Record struct {
	ID       string
	Name     string
	Order    int
	Tags     []string
	Props    map[string]any
	Children []Record
}

var _ encoding.Serializable[Record] = (*Record)(nil)

// Capture walks n's subtree and returns its record. Tags are sorted so
// equal trees capture to equal records.
func Capture(n *scene.Node) Record {
	rec := Record{
		ID:    n.ID().String(),
		Name:  n.Name(),
		Order: n.OrderIndex(),
	}
	for _, key := range n.PropKeys().Collect() {
		if n.Tagged(key) {
			rec.Tags = append(rec.Tags, key)
			continue
		}
		if rec.Props == nil {
			rec.Props = make(map[string]any)
		}
		value, _ := n.Prop(key)
		rec.Props[key] = value
	}
	sort.Strings(rec.Tags)
	for _, child := range n.Children() {
		rec.Children = append(rec.Children, Capture(child))
	}
	return rec
}

// Restore rebuilds the recorded subtree as a fresh unattached tree.
// Recorded identifiers are rebound onto the new nodes.
func (r *Record) Restore() (*scene.Node, error) {
	n := scene.NewNode(r.Name)
	if err := n.SetOrderIndex(r.Order); err != nil {
		return nil, err
	}
	if r.ID != "" {
		id, err := uuid.Parse(r.ID)
		if err != nil {
			return nil, fmt.Errorf("snapshot: node %q: bad id %q: %v", r.Name, r.ID, err)
		}
		if err := n.Rebind(id); err != nil {
			return nil, err
		}
	}
	for _, tag := range r.Tags {
		n.Tag(tag)
	}
	for key, value := range r.Props {
		n.SetProp(key, value)
	}
	for i := range r.Children {
		child, err := r.Children[i].Restore()
		if err != nil {
			return nil, err
		}
		if err := n.Attach(child); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func (r *Record) Serialize() ([]byte, error) {
	return encoding.MarshalGob(r)
}

func (r *Record) Deserialize(data []byte) error {
	return encoding.UnmarshalGob(data, r)
}

// Encode captures n and writes the gob-encoded record to w.
func Encode(w io.Writer, n *scene.Node) error {
	rec := Capture(n)
	return encoding.EncodeGob(w, &rec)
}

// Decode reads a gob-encoded record from r and restores the tree.
func Decode(r io.Reader) (*scene.Node, error) {
	var rec Record
	if err := encoding.DecodeGob(r, &rec); err != nil {
		return nil, err
	}
	return rec.Restore()
}
