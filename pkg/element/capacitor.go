package element

import "github.com/nrogoz/mnasim/pkg/system"

// Capacitor stamps a companion conductance plus an equivalent current
// source derived from its stored terminal voltage v0 (and, under
// trapezoidal integration, its last branch current iPrev). No auxiliary
// branch is claimed.
type Capacitor struct {
	Base
	A, B int
	C    float64
	v0   float64 // stored state: terminal voltage at the end of the last accepted step
	iC   float64 // stored state: branch current at the end of the last accepted step
}

// NewCapacitor constructs a Capacitor between nodes a and b with
// capacitance c farads and initial condition ic volts.
func NewCapacitor(name string, a, b int, c, ic float64) *Capacitor {
	return &Capacitor{Base: NewBase(name), A: a, B: b, C: c, v0: ic}
}

func (c *Capacitor) Nonlinear() bool { return false }

func (c *Capacitor) Stamp(as *system.Assembler, st *system.State) error {
	if st.Mode == system.ModeAC {
		// jωC: purely imaginary conductance.
		as.ConductanceComplex(c.A, c.B, 0, st.Omega*c.C)
		return nil
	}

	switch st.Method {
	case system.FE:
		// Forward Euler treats the capacitor as a fixed current source
		// derived entirely from the last accepted current; no conductance
		// term, since the next voltage is extrapolated from past state
		// alone.
		as.AddB(c.A, c.iC)
		as.AddB(c.B, -c.iC)
	case system.TR:
		// Trapezoidal: i_C(t) = geq*(v(t)-v0) - iPrev, geq = 2C/Δt.
		geq := 2 * c.C / st.Step
		ieq := geq*c.v0 + c.iC
		as.Conductance(c.A, c.B, geq)
		as.AddB(c.A, ieq)
		as.AddB(c.B, -ieq)
	default: // BE
		geq := c.C / st.Step
		ieq := geq * c.v0
		as.Conductance(c.A, c.B, geq)
		as.AddB(c.A, ieq)
		as.AddB(c.B, -ieq)
	}
	return nil
}

// UpdateState latches v0 ← x[a] - x[b] and recomputes the branch current
// at the end of the accepted step: iC = 2C*(v0_new - v0_old)/Δt - iC under
// trapezoidal integration, iC = C*(v0_new - v0_old)/Δt otherwise.
func (c *Capacitor) UpdateState(x []float64, st *system.State) {
	v1, v2 := 0.0, 0.0
	if c.A != 0 {
		v1 = x[c.A]
	}
	if c.B != 0 {
		v2 = x[c.B]
	}
	vNew := v1 - v2
	if st.Step != 0 {
		if st.Method == system.TR {
			c.iC = 2*c.C*(vNew-c.v0)/st.Step - c.iC
		} else {
			c.iC = c.C * (vNew - c.v0) / st.Step
		}
	}
	c.v0 = vNew
}

// Voltage returns the last latched terminal voltage.
func (c *Capacitor) Voltage() float64 { return c.v0 }
