// Package element implements every MNA element's stamp contract: resistor,
// capacitor, inductor, piecewise-linear resistor, ideal and finite-gain
// op-amps, independent and controlled sources, diode, BJT, MOSFET, and
// logic gates.
package element

import "github.com/nrogoz/mnasim/pkg/system"

// Element is the capability set every stamped circuit member implements.
// The spec's four-capability set (stamp_backward / stamp_trapezoidal /
// stamp_forward / stamp_fourier) is realized here as one Stamp entry point
// that switches internally on st.Mode/st.Method, the same single-method
// convention the reference device model uses (Stamp(matrix, status)):
// elements that don't care about the integration method (everything but
// capacitors) simply ignore that branch. The Inductor stamps its
// backward-Euler companion under every method.
type Element interface {
	// Name identifies the element for error messages and result-table keys.
	Name() string
	// Nonlinear reports whether this element must consume the most recent
	// Newton-Raphson iterate rather than stamping identically every
	// iteration.
	Nonlinear() bool
	// Stamp writes this element's linearized contribution into (A, b) for
	// the given step state.
	Stamp(as *system.Assembler, st *system.State) error
	// UpdateState latches companion-model state from the accepted
	// solution x. Stateless elements use the no-op embedded in Base.
	UpdateState(x []float64, st *system.State)
}

// Base carries the name every element needs and supplies the no-op
// UpdateState that most elements never override.
type Base struct {
	name string
}

// NewBase constructs a Base with the given element name.
func NewBase(name string) Base { return Base{name: name} }

// Name returns the element's name.
func (b Base) Name() string { return b.name }

// UpdateState is a no-op; reactive elements (Capacitor, Inductor) override
// it.
func (b Base) UpdateState(x []float64, st *system.State) {}

// ModelParam carries .MODEL overrides keyed by model name. The netlist
// parser resolves a diode line's model reference to concrete IS/N floats
// (via its own paramOrDefault) before calling NewDiode, so element
// constructors never see a *ModelParam directly. BJT and MOSFET lines do
// not look up models; they take inline numeric fields or defaults.
type ModelParam struct {
	Type   string
	Name   string
	Params map[string]float64
}
