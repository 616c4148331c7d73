// Package circuit holds the ordered element list and the node-name
// directory that the driver and the step assembler operate on.
package circuit

import (
	"fmt"

	"github.com/nrogoz/mnasim/pkg/element"
	"github.com/nrogoz/mnasim/pkg/system"
)

// Circuit is an ordered list of elements, a node map, node count N, a
// ground index (always 0), and a sticky has-nonlinear flag.
type Circuit struct {
	name     string
	nodeMap  map[string]int
	elements []element.Element

	hasNonlinear bool
}

// New creates an empty circuit. Ground ("0" or "gnd") always resolves to
// index 0 and is never counted in NumNodes.
func New(name string) *Circuit {
	return &Circuit{
		name:    name,
		nodeMap: make(map[string]int),
	}
}

// Node is idempotent: the first use of a name allocates the next free
// index; later uses of the same name return the same index. "0" and "gnd"
// always resolve to the ground index 0.
func (c *Circuit) Node(name string) int {
	if name == "0" || name == "gnd" || name == "" {
		return 0
	}
	if idx, ok := c.nodeMap[name]; ok {
		return idx
	}
	idx := len(c.nodeMap) + 1
	c.nodeMap[name] = idx
	return idx
}

// Add appends e to the ordered element list and ORs its nonlinear flag
// into has_nonlinear.
func (c *Circuit) Add(e element.Element) {
	c.elements = append(c.elements, e)
	if e.Nonlinear() {
		c.hasNonlinear = true
	}
}

// NumNodes returns N, excluding ground.
func (c *Circuit) NumNodes() int { return len(c.nodeMap) }

// HasNonlinear reports whether any added element declared itself nonlinear.
func (c *Circuit) HasNonlinear() bool { return c.hasNonlinear }

// Elements returns the ordered element list.
func (c *Circuit) Elements() []element.Element { return c.elements }

// NodeNames returns the node-name to index map.
func (c *Circuit) NodeNames() map[string]int { return c.nodeMap }

// Name returns the circuit's title, carried over from the netlist's first
// line when parsed from text.
func (c *Circuit) Name() string { return c.name }

// MaxSystemSize returns a safe upper bound M for Assembler preallocation:
// the node count plus one auxiliary branch per element, times two to cover
// elements (like CCVS) that claim a pair of branches in one stamp.
func (c *Circuit) MaxSystemSize() int {
	return c.NumNodes() + 1 + 2*len(c.elements)
}

// Stamp runs every element's Stamp method in insertion order into as,
// using st as the shared step state.
func (c *Circuit) Stamp(as *system.Assembler, st *system.State) error {
	for _, e := range c.elements {
		if err := e.Stamp(as, st); err != nil {
			return fmt.Errorf("stamping %s: %w", e.Name(), err)
		}
	}
	return nil
}

// UpdateState calls UpdateState on every element, latching companion-model
// state (capacitor terminal voltage, inductor branch current) from the
// accepted solution x.
func (c *Circuit) UpdateState(x []float64, st *system.State) {
	for _, e := range c.elements {
		e.UpdateState(x, st)
	}
}
