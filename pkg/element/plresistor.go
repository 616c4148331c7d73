package element

import (
	"github.com/nrogoz/mnasim/pkg/stamp"
	"github.com/nrogoz/mnasim/pkg/system"
)

// PWLResistor is a nonlinear resistor defined by four (V,I) breakpoints
// ordered V1<V2<V3<V4. Its companion model is the conductance/intercept
// pair of whichever segment contains the previous NR iterate's voltage
// drop.
type PWLResistor struct {
	Base
	A, B                   int
	V1, I1, V2, I2, V3, I3, V4, I4 float64
}

// NewPWLResistor constructs a piecewise-linear resistor between nodes a
// and b from four breakpoints.
func NewPWLResistor(name string, a, b int, v1, i1, v2, i2, v3, i3, v4, i4 float64) *PWLResistor {
	return &PWLResistor{
		Base: NewBase(name), A: a, B: b,
		V1: v1, I1: i1, V2: v2, I2: i2, V3: v3, I3: i3, V4: v4, I4: i4,
	}
}

func (p *PWLResistor) Nonlinear() bool { return true }

func (p *PWLResistor) Stamp(as *system.Assembler, st *system.State) error {
	if st.Mode == system.ModeAC {
		// No Fourier formula: the piecewise segment a Newton-Raphson
		// iterate lands on has no meaning outside a transient solve, so
		// the capability is a no-op rather than a wrong guess.
		return nil
	}

	deltaV := 0.0
	if st.XPrev != nil {
		va, vb := 0.0, 0.0
		if p.A != 0 {
			va = st.XPrev[p.A]
		}
		if p.B != 0 {
			vb = st.XPrev[p.B]
		}
		deltaV = va - vb
	}

	seg := stamp.PWLSegment(deltaV, p.V1, p.I1, p.V2, p.I2, p.V3, p.I3, p.V4, p.I4)
	as.Conductance(p.A, p.B, seg.G)
	as.CurrentSource(p.A, p.B, seg.I0)
	return nil
}
