package element

import (
	"github.com/nrogoz/mnasim/pkg/stamp"
	"github.com/nrogoz/mnasim/pkg/system"
)

// Mosfet is a square-law N- or P-channel device with cutoff, triode, and
// saturation regions. The terminal "above" the other is chosen at stamp
// time so that VDS is always non-negative; a P-channel device mirrors the
// sign of every terminal voltage before applying the N-channel equations.
type Mosfet struct {
	Base
	D, G, S int
	W, L    float64
	K       float64 // transconductance coefficient
	Vth     float64
	Lambda  float64 // channel-length modulation
	PChan   bool
}

// NewMosfet constructs a MOSFET with drain d, gate g, source s, geometry
// w/l, transconductance coefficient k, threshold vth, and channel-length
// modulation lambda.
func NewMosfet(name string, d, g, s int, w, l, k, vth, lambda float64, pChan bool) *Mosfet {
	return &Mosfet{Base: NewBase(name), D: d, G: g, S: s, W: w, L: l, K: k, Vth: vth, Lambda: lambda, PChan: pChan}
}

func (m *Mosfet) Nonlinear() bool { return true }

func (m *Mosfet) Stamp(as *system.Assembler, st *system.State) error {
	if st.Mode == system.ModeAC {
		// No Fourier formula: small-signal AC behavior depends on a DC
		// operating point this driver never solves for, so the capability
		// is a no-op rather than a wrong guess.
		return nil
	}

	vd, vg, vs := 0.0, 0.0, 0.0
	if st.XPrev != nil {
		if m.D != 0 {
			vd = st.XPrev[m.D]
		}
		if m.G != 0 {
			vg = st.XPrev[m.G]
		}
		if m.S != 0 {
			vs = st.XPrev[m.S]
		}
	}
	if m.PChan {
		vd, vg, vs = -vd, -vg, -vs
	}

	// Choose drain/source so VDS >= 0; swap the sense the stamp uses
	// without swapping the caller's node assignment.
	drain, source := m.D, m.S
	if vd < vs {
		drain, source = m.S, m.D
		vd, vs = vs, vd
	}
	vgs := vg - vs
	vds := vd - vs

	region := stamp.Mosfet(vgs, vds, m.K, m.W/m.L, m.Vth, m.Lambda)

	gds, gm, id := region.Gds, region.Gm, region.Id
	if m.PChan {
		id = -id
	}

	as.Conductance(drain, source, gds)
	as.Transconductance(drain, source, m.G, source, gm)
	as.CurrentSource(drain, source, id)
	return nil
}
