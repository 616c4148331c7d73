package element

import (
	"github.com/nrogoz/mnasim/internal/consts"
	"github.com/nrogoz/mnasim/pkg/stamp"
	"github.com/nrogoz/mnasim/pkg/system"
)

// Bjt is an Ebers-Moll bipolar transistor, decomposed per spec.md's design
// notes into companion sub-elements rather than owned sub-objects: its
// Stamp calls the diode helper twice (base-emitter, base-collector) and
// stamps the two current sources / VCCS pairs those diodes drive. NPN and
// PNP share one implementation; PNP simply mirrors the terminal voltages
// it reads.
type Bjt struct {
	Base
	C, B, E int
	IS      float64
	AlphaF  float64
	AlphaR  float64
	N       float64
	PNP     bool
}

// NewBjt constructs a BJT with collector c, base b, emitter e, saturation
// current is, forward/reverse common-base current gains alphaF/alphaR, and
// emission coefficient n.
func NewBjt(name string, c, b, e int, is, alphaF, alphaR, n float64, pnp bool) *Bjt {
	if n == 0 {
		n = 1
	}
	return &Bjt{Base: NewBase(name), C: c, B: b, E: e, IS: is, AlphaF: alphaF, AlphaR: alphaR, N: n, PNP: pnp}
}

func (q *Bjt) Nonlinear() bool { return true }

func (q *Bjt) junctionVoltages(st *system.State) (vbe, vbc float64) {
	if st.XPrev == nil {
		return 0, 0
	}
	vb, ve, vc := 0.0, 0.0, 0.0
	if q.B != 0 {
		vb = st.XPrev[q.B]
	}
	if q.E != 0 {
		ve = st.XPrev[q.E]
	}
	if q.C != 0 {
		vc = st.XPrev[q.C]
	}
	if q.PNP {
		return ve - vb, vc - vb
	}
	return vb - ve, vb - vc
}

func (q *Bjt) Stamp(as *system.Assembler, st *system.State) error {
	if st.Mode == system.ModeAC {
		// No Fourier formula: small-signal AC behavior depends on a DC
		// operating point this driver never solves for, so the capability
		// is a no-op rather than a wrong guess.
		return nil
	}

	vt := q.N * consts.ThermalVoltage(pickTemp(st.Temp))
	firstGuess := st.Time == 0 && st.InternalStep == 0

	vbe, vbc := q.junctionVoltages(st)

	be := stamp.Diode(vbe, q.IS, vt, firstGuess)
	bc := stamp.Diode(vbc, q.IS, vt, firstGuess)

	base, emitter, collector := q.B, q.E, q.C
	if q.PNP {
		// PNP: junctions point the other way, so the companion stamps
		// below use (emitter,base) and (collector,base) in place of
		// (base,emitter) and (base,collector).
		base, emitter = q.B, q.E
	}

	// Base-emitter diode plus the forward current source/VCCS it drives
	// from collector to base.
	as.Conductance(base, emitter, be.G)
	as.CurrentSource(base, emitter, be.Id)
	if q.PNP {
		as.CurrentSource(emitter, collector, q.AlphaF*be.Id)
		as.Transconductance(emitter, collector, base, emitter, q.AlphaF*be.G)
	} else {
		as.CurrentSource(collector, base, q.AlphaF*be.Id)
		as.Transconductance(collector, base, base, emitter, q.AlphaF*be.G)
	}

	// Base-collector diode plus the mirrored reverse current source/VCCS
	// it drives from emitter to base.
	as.Conductance(base, collector, bc.G)
	as.CurrentSource(base, collector, bc.Id)
	if q.PNP {
		as.CurrentSource(collector, emitter, q.AlphaR*bc.Id)
		as.Transconductance(collector, emitter, base, collector, q.AlphaR*bc.G)
	} else {
		as.CurrentSource(emitter, base, q.AlphaR*bc.Id)
		as.Transconductance(emitter, base, base, collector, q.AlphaR*bc.G)
	}

	return nil
}

func pickTemp(t float64) float64 {
	if t == 0 {
		return consts.TNOM
	}
	return t
}
