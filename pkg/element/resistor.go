package element

import (
	"github.com/nrogoz/mnasim/pkg/system"
)

// Resistor stamps a fixed conductance between two nodes. No auxiliary
// branch is claimed.
type Resistor struct {
	Base
	A, B int
	R    float64

	// Tc1/Tc2 are optional temperature coefficients, carried over from the
	// reference device model; they default to zero and no-op unless set on
	// the struct. The netlist parser never sets them.
	Tc1, Tc2, Tnom float64
}

// NewResistor constructs a Resistor between nodes a and b with resistance
// r ohms.
func NewResistor(name string, a, b int, r float64) *Resistor {
	return &Resistor{Base: NewBase(name), A: a, B: b, R: r, Tnom: 300.15}
}

func (r *Resistor) Nonlinear() bool { return false }

func (r *Resistor) temperatureAdjusted(temp float64) float64 {
	if temp == 0 {
		return r.R
	}
	dt := temp - r.Tnom
	return r.R * (1 + r.Tc1*dt + r.Tc2*dt*dt)
}

func (r *Resistor) Stamp(as *system.Assembler, st *system.State) error {
	g := 1.0 / r.temperatureAdjusted(st.Temp)

	if st.Mode == system.ModeAC {
		as.ConductanceComplex(r.A, r.B, g, 0)
		return nil
	}
	as.Conductance(r.A, r.B, g)
	return nil
}

// Current reports the resistor's branch current using V=IR, derived from
// the solved node voltages (resistors never claim an auxiliary branch).
func (r *Resistor) Current(x []float64) float64 {
	v1, v2 := 0.0, 0.0
	if r.A != 0 {
		v1 = x[r.A]
	}
	if r.B != 0 {
		v2 = x[r.B]
	}
	return (v1 - v2) / r.R
}
