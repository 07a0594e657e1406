package blueprint

import (
	"fmt"
	"sync"

	"github.com/banyantree/banyan/internal/core/scene"
)

// KindNode is the factory kind every registry ships with; it builds a
// plain scene node.
const KindNode = "node"

// Factory builds a node for a config entry. Factories run concurrently
// under BuildAll and must not share mutable state.
type Factory func(name string) (*scene.Node, error)

// Registry maps config kinds to node factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns a registry with the "node" kind preregistered.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register(KindNode, func(name string) (*scene.Node, error) {
		return scene.NewNode(name), nil
	})
	return r
}

func (r *Registry) Register(kind string, factory Factory) {
	r.mu.Lock()
	r.factories[kind] = factory
	r.mu.Unlock()
}

func (r *Registry) New(kind, name string) (*scene.Node, error) {
	r.mu.RLock()
	f := r.factories[kind]
	r.mu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidConfig, kind)
	}
	return f(name)
}
