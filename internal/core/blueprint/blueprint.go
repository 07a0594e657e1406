// Package blueprint loads declarative scene descriptions from YAML or
// JSON and builds them into node trees through a named factory registry.
package blueprint

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every structural defect found while validating
// or building a config: unknown references, duplicate ownership,
// reference cycles, malformed identifiers.
var ErrInvalidConfig = errors.New("blueprint: invalid config")

// Config is a unified structure able to describe a scene tree in JSON
// or YAML. Nodes are keyed by reference name; Root names the entry to
// build from.
type Config struct {
	Version int                   `json:"version" yaml:"version"`
	Root    string                `json:"root" yaml:"root"`
	Nodes   map[string]NodeConfig `json:"nodes" yaml:"nodes"`
}

type NodeConfig struct {
	Kind     string         `json:"kind,omitempty" yaml:"kind,omitempty"`
	Name     string         `json:"name,omitempty" yaml:"name,omitempty"`
	Order    int            `json:"order,omitempty" yaml:"order,omitempty"`
	ID       string         `json:"id,omitempty" yaml:"id,omitempty"`
	Tags     []string       `json:"tags,omitempty" yaml:"tags,omitempty"`
	Props    map[string]any `json:"props,omitempty" yaml:"props,omitempty"`
	Unwire   []string       `json:"unwire,omitempty" yaml:"unwire,omitempty"`
	Children []string       `json:"children,omitempty" yaml:"children,omitempty"`
}

// LoadYAML decodes a config from a YAML reader. Unknown fields are
// rejected.
func LoadYAML(r io.Reader) (*Config, error) {
	var c Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &c, nil
}

// LoadJSON decodes a config from a JSON reader. Unknown fields are
// rejected.
func LoadJSON(r io.Reader) (*Config, error) {
	var c Config
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &c, nil
}

// Validate checks the reference structure without building anything:
// the root must exist, every child reference must resolve, and no node
// may be claimed by more than one parent.
func (c *Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("%w: no root", ErrInvalidConfig)
	}
	if _, ok := c.Nodes[c.Root]; !ok {
		return fmt.Errorf("%w: unknown root %q", ErrInvalidConfig, c.Root)
	}
	owners := make(map[string]string, len(c.Nodes))
	for ref, nc := range c.Nodes {
		for _, child := range nc.Children {
			if _, ok := c.Nodes[child]; !ok {
				return fmt.Errorf("%w: node %q references unknown child %q", ErrInvalidConfig, ref, child)
			}
			if owner, claimed := owners[child]; claimed {
				return fmt.Errorf("%w: node %q claimed by both %q and %q", ErrInvalidConfig, child, owner, ref)
			}
			owners[child] = ref
		}
	}
	return nil
}
