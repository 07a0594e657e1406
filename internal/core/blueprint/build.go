package blueprint

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/banyantree/banyan/internal/core/scene"
	"github.com/banyantree/banyan/pkg/concurrent"
	"github.com/banyantree/banyan/pkg/sequence"
)

// Build constructs the tree rooted at c.Root. Nodes are created on
// demand with memoization, children attached in declaration order, and
// a reference cycle reachable from the root fails the build.
func (c *Config) Build(reg *Registry) (*scene.Node, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	built := make(map[string]*scene.Node, len(c.Nodes))
	building := make(map[string]bool)
	var buildNode func(ref string) (*scene.Node, error)
	buildNode = func(ref string) (*scene.Node, error) {
		if n, ok := built[ref]; ok {
			return n, nil
		}
		if building[ref] {
			return nil, fmt.Errorf("%w: reference cycle through %q", ErrInvalidConfig, ref)
		}
		nc, ok := c.Nodes[ref]
		if !ok {
			return nil, fmt.Errorf("%w: unknown node %q", ErrInvalidConfig, ref)
		}
		building[ref] = true
		defer delete(building, ref)

		n, err := c.assemble(reg, ref, nc)
		if err != nil {
			return nil, err
		}
		for _, childRef := range nc.Children {
			child, err := buildNode(childRef)
			if err != nil {
				return nil, err
			}
			if err := n.Attach(child); err != nil {
				return nil, fmt.Errorf("node %q: attach %q: %w", ref, childRef, err)
			}
		}
		built[ref] = n
		return n, nil
	}
	return buildNode(c.Root)
}

// assemble creates a single node and applies everything that does not
// involve other nodes. The order index is set while the node is still
// detached so attachment places it in the right bucket.
func (c *Config) assemble(reg *Registry, ref string, nc NodeConfig) (*scene.Node, error) {
	kind := nc.Kind
	if kind == "" {
		kind = KindNode
	}
	name := nc.Name
	if name == "" {
		name = ref
	}
	n, err := reg.New(kind, name)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", ref, err)
	}
	if err := n.SetOrderIndex(nc.Order); err != nil {
		return nil, fmt.Errorf("node %q: %w", ref, err)
	}
	if nc.ID != "" {
		id, err := uuid.Parse(nc.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: node %q: bad id %q: %v", ErrInvalidConfig, ref, nc.ID, err)
		}
		if err := n.Rebind(id); err != nil {
			return nil, fmt.Errorf("node %q: %w", ref, err)
		}
	}
	for _, tag := range nc.Tags {
		n.Tag(tag)
	}
	for key, value := range nc.Props {
		n.SetProp(key, value)
	}
	for _, k := range nc.Unwire {
		n.Unwire(scene.Kind(k))
	}
	return n, nil
}

// BuildAll builds several independent configs concurrently. The result
// slice matches the input order; the first failure cancels the rest.
func BuildAll(reg *Registry, cfgs ...*Config) ([]*scene.Node, error) {
	type job struct {
		index  int
		config *Config
	}
	jobs := make([]job, len(cfgs))
	for i, cfg := range cfgs {
		jobs[i] = job{index: i, config: cfg}
	}

	roots := make([]*scene.Node, len(cfgs))
	err := concurrent.Concurrent(sequence.From(jobs), func(j job) error {
		root, err := j.config.Build(reg)
		if err != nil {
			return fmt.Errorf("config %d: %w", j.index, err)
		}
		roots[j.index] = root
		return nil
	})
	if err != nil {
		return nil, err
	}
	return roots, nil
}
